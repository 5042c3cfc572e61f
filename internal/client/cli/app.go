package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/usermgr/internal/client/client"
	"github.com/dmitrijs2005/usermgr/internal/client/nav"
	"github.com/dmitrijs2005/usermgr/internal/client/session"
	"github.com/dmitrijs2005/usermgr/internal/client/workflow"
	"github.com/dmitrijs2005/usermgr/internal/logging"
)

// maxRedirects bounds chained navigations caused by a single mount.
const maxRedirects = 8

type App struct {
	client client.Client
	store  *session.Store
	log    logging.Logger
	deps   workflow.Deps
	router *nav.Router

	reader *bufio.Reader
	inFd   int
	out    io.Writer

	route   nav.Route
	pending []nav.Route

	signIn *workflow.SignIn
	list   *workflow.UserList
	edit   *workflow.EditUser
}

// NewApp builds the shell. It starts on the landing route; nothing is
// fetched until the user enters.
func NewApp(c client.Client, store *session.Store, log logging.Logger, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.Nop()
	}
	a := &App{
		client: c,
		store:  store,
		log:    log,
		router: nav.NewRouter(nav.Home),
		reader: bufio.NewReader(in),
		inFd:   terminalFd(in),
		out:    out,
		route:  nav.Home,
	}
	a.deps = workflow.Deps{
		Client:    c,
		Session:   store,
		Nav:       a,
		Confirmer: a,
		Notifier:  a,
		Log:       log,
	}
	return a
}

// Navigate queues a route change. The switch happens after the current
// command returns, so workflows never see their own disposal mid-call.
func (a *App) Navigate(to nav.Route) {
	a.router.Navigate(to)
	a.pending = append(a.pending, to)
}

// Confirm implements workflow.Confirmer on the terminal.
func (a *App) Confirm(_ context.Context, prompt string) bool {
	ok, err := Confirm(a.reader, prompt, a.out)
	return err == nil && ok
}

// Notify implements workflow.Notifier on the terminal.
func (a *App) Notify(_ context.Context, message string) {
	fmt.Fprintf(a.out, "* %s\n", message)
}

// Route returns the mounted route.
func (a *App) Route() nav.Route { return a.route }

// settle mounts the last queued route, following any redirects the mount
// itself causes. A screen that redirects while mounting is rendered once so
// its message, e.g. an expired session, is not lost.
func (a *App) settle(ctx context.Context) {
	for i := 0; len(a.pending) > 0 && i < maxRedirects; i++ {
		to := a.pending[len(a.pending)-1]
		a.pending = a.pending[:0]
		a.mount(ctx, to)
		if len(a.pending) > 0 {
			a.render()
		}
	}
	a.pending = a.pending[:0]
}

func (a *App) mount(ctx context.Context, to nav.Route) {
	a.unmount()
	a.route = to
	a.log.Debug(ctx, "route changed", "route", to)

	if id, ok := to.UserID(); ok {
		a.edit = workflow.NewEditUser(a.deps, id)
		if err := a.edit.Load(ctx); err != nil {
			a.report(ctx, err)
		}
		return
	}

	switch to {
	case nav.SignIn:
		a.signIn = workflow.NewSignIn(a.deps)
	case nav.Users:
		a.list = workflow.NewUserList(a.deps)
		if err := a.list.Mount(ctx); err != nil {
			a.report(ctx, err)
		}
	}
}

func (a *App) unmount() {
	if a.signIn != nil {
		a.signIn.Dispose()
		a.signIn = nil
	}
	if a.list != nil {
		a.list.Dispose()
		a.list = nil
	}
	if a.edit != nil {
		a.edit.Dispose()
		a.edit = nil
	}
}

// report prints a refused action. Failures from the server are already part
// of the rendered view state and do not come through here.
func (a *App) report(ctx context.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrBusy):
		fmt.Fprintln(a.out, "Please wait, the previous action is still running.")
	case errors.Is(err, workflow.ErrAdminOnly):
		fmt.Fprintln(a.out, workflow.MsgAdminOnly)
	case errors.Is(err, workflow.ErrIncomplete):
		fmt.Fprintln(a.out, "Email and password are required.")
	case errors.Is(err, workflow.ErrNotEditable):
		fmt.Fprintln(a.out, "Nothing to save.")
	case errors.Is(err, workflow.ErrDisposed):
	default:
		a.log.Error(ctx, "command failed", "route", a.route, "error", err)
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

// Run starts the REPL and blocks until the user exits, input ends or ctx is
// cancelled. Cancellation is noticed between commands and returns ctx.Err().
// The API client is closed on return.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.client.Close(); err != nil {
			a.log.Warn(ctx, "failed to close client", "error", err)
		}
	}()

	fmt.Fprintln(a.out, "usermgr client (type 'help' for commands)")
	a.render()
	return runREPL(ctx, a)
}

func (a *App) status(ctx context.Context) string {
	sess, err := a.store.Load(ctx)
	if err != nil || !sess.Active() {
		return string(a.route)
	}
	return fmt.Sprintf("(%s) %s", sess.UserEmail, a.route)
}
