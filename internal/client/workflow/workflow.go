package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/usermgr/internal/client/client"
	"github.com/dmitrijs2005/usermgr/internal/client/nav"
	"github.com/dmitrijs2005/usermgr/internal/client/session"
	"github.com/dmitrijs2005/usermgr/internal/logging"
)

var (
	// ErrBusy is returned when the same action is already in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrDisposed is returned by workflows that were torn down.
	ErrDisposed = errors.New("workflow disposed")
	// ErrAdminOnly is returned for management actions by non-admin users.
	ErrAdminOnly = errors.New("only admins can manage users")
	// ErrIncomplete is returned when a required input is missing.
	ErrIncomplete = errors.New("all fields are required")
)

// Confirmer asks the user a yes/no question and blocks until answered.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Notifier shows a one-off message that needs no answer.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Timer is a pending callback started by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc is the default.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Deps are the collaborators shared by every workflow.
type Deps struct {
	Client    client.Client
	Session   *session.Store
	Nav       nav.Navigator
	Confirmer Confirmer
	Notifier  Notifier
	Log       logging.Logger
	AfterFunc AfterFunc
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	if d.AfterFunc == nil {
		d.AfterFunc = realAfterFunc
	}
	if d.Confirmer == nil {
		d.Confirmer = alwaysConfirm{}
	}
	if d.Notifier == nil {
		d.Notifier = discardNotifier{}
	}
	return d
}

type alwaysConfirm struct{}

func (alwaysConfirm) Confirm(context.Context, string) bool { return true }

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, string) {}

// displayMessage returns the server text of err, or fallback when there is
// none.
func displayMessage(err error, fallback string) string {
	if msg := client.Message(err); msg != "" {
		return msg
	}
	return fallback
}

// sessionExpired reports whether err means the stored token is no longer
// accepted.
func sessionExpired(err error) bool {
	if errors.Is(err, client.ErrUnauthorized) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "401") || strings.Contains(msg, "Unauthorized")
}
