// Package workflow implements the screens of the client as explicit view
// state machines: landing, sign-in, the user list with its create modal,
// and the user edit form.
//
// Each workflow owns a mutex-guarded state value. Callers read a snapshot
// through State and change it only through the workflow's methods, which
// perform the API round trips and translate their failures into view state.
// Methods return an error only when the action itself was refused (ErrBusy,
// ErrDisposed, ErrAdminOnly) or when local storage failed; server errors end
// up in the state's Error field.
package workflow
