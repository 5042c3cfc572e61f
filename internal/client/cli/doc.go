// Package cli provides the interactive usermgr terminal client.
//
// App is the shell around the workflows: it is the Navigator, the
// Confirmer and the Notifier they talk to, mounts the workflow that owns the
// current route, renders its state after every command and dispatches the
// typed commands to it. Routes mirror the screens: "/" (landing), "/signin",
// "/users" (list with the create modal) and "/users/<id>" (edit form).
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends.
package cli
