package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/usermgr/internal/client/client"
	"github.com/dmitrijs2005/usermgr/internal/client/nav"
	"github.com/dmitrijs2005/usermgr/internal/client/session"
)

const MsgInvalidCredentials = "Invalid credentials. Please try again."

// SignInState is the sign-in form.
type SignInState struct {
	Email      string
	Password   string
	Submitting bool
	Error      string
}

// SignIn collects credentials and opens a session.
type SignIn struct {
	deps Deps

	mu       sync.Mutex
	state    SignInState
	disposed bool
}

func NewSignIn(d Deps) *SignIn {
	return &SignIn{deps: d.withDefaults()}
}

func (w *SignIn) State() SignInState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *SignIn) SetEmail(v string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Email = v
}

func (w *SignIn) SetPassword(v string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Password = v
}

// Submit logs in with the entered credentials. On success the session is
// stored and the user is sent to the list; on failure the translated message
// is shown and the form goes back to idle.
func (w *SignIn) Submit(ctx context.Context) error {
	w.mu.Lock()
	switch {
	case w.disposed:
		w.mu.Unlock()
		return ErrDisposed
	case w.state.Submitting:
		w.mu.Unlock()
		return ErrBusy
	case w.state.Email == "" || w.state.Password == "":
		w.mu.Unlock()
		return ErrIncomplete
	}
	w.state.Submitting = true
	w.state.Error = ""
	email, password := w.state.Email, w.state.Password
	w.mu.Unlock()

	token, err := w.deps.Client.Login(ctx, email, password)
	if err == nil {
		err = w.deps.Session.Save(ctx, session.Session{Token: token, UserEmail: email})
		if err != nil {
			err = fmt.Errorf("sign in: %w", err)
		}
	}

	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return nil
	}
	w.state.Submitting = false
	if err != nil {
		w.state.Error = TranslateLoginError(err)
	} else {
		w.state.Password = ""
	}
	w.mu.Unlock()

	if err != nil {
		w.deps.Log.Warn(ctx, "sign in failed", "email", email, "error", err)
		return nil
	}

	w.deps.Log.Info(ctx, "signed in", "email", email)
	w.deps.Nav.Navigate(nav.Users)
	return nil
}

// Dispose discards the form; late results are ignored.
func (w *SignIn) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disposed = true
}

// TranslateLoginError maps the known rejection phrases to a single friendly
// message and passes anything else through.
func TranslateLoginError(err error) string {
	msg := client.Message(err)
	if msg == "" {
		msg = err.Error()
	}
	if msg == "Falha ao fazer login" || msg == "Unauthorized" || strings.Contains(msg, "incorrect") {
		return MsgInvalidCredentials
	}
	return msg
}
