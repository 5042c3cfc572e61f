package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/usermgr/internal/client/client"
	"github.com/dmitrijs2005/usermgr/internal/client/models"
	"github.com/dmitrijs2005/usermgr/internal/client/nav"
	"github.com/dmitrijs2005/usermgr/internal/client/validation"
)

const (
	EditTitle              = "Editar Usuário"
	LabelSave              = "Salvar Alterações"
	LabelCancel            = "Cancelar"
	PasswordHint           = "Deixe em branco para manter a senha atual"
	MsgLoadingUser         = "Carregando dados do usuário..."
	MsgUserNotFound        = "Usuário não encontrado."
	MsgLoadUserFailed      = "Erro ao carregar dados do usuário."
	MsgNameEmailRequired   = "Nome e Email são obrigatórios."
	MsgUpdateFailed        = "Falha ao atualizar usuário."
	MsgUpdated             = "Usuário atualizado com sucesso!"
	loadErrorMessagePrefix = "Erro ao carregar dados: "
)

// ErrNotEditable is returned when the form is submitted before a user was
// loaded.
var ErrNotEditable = errors.New("no user loaded")

// EditPhase is the render state of the edit screen.
type EditPhase int

const (
	EditLoading EditPhase = iota
	EditLoadFailed
	EditNotFound
	EditReady
)

func (p EditPhase) String() string {
	switch p {
	case EditLoading:
		return "loading"
	case EditLoadFailed:
		return "load-failed"
	case EditNotFound:
		return "not-found"
	case EditReady:
		return "ready"
	}
	return fmt.Sprintf("EditPhase(%d)", int(p))
}

// EditUserState is the edit form. NewPassword starts blank, which means
// "keep the current password".
type EditUserState struct {
	ID          models.UserID
	Phase       EditPhase
	Name        string
	Email       string
	Type        models.UserType
	NewPassword string
	LoadError   string
	Error       string
	Saving      bool
}

// Notice is the single line shown instead of the form in every phase but
// EditReady.
func (s EditUserState) Notice() string {
	switch s.Phase {
	case EditLoading:
		return MsgLoadingUser
	case EditLoadFailed:
		return loadErrorMessagePrefix + s.LoadError
	case EditNotFound:
		return MsgUserNotFound
	}
	return ""
}

// Update returns the update the form would submit.
func (s EditUserState) Update() models.UserUpdate {
	return models.NewUserUpdate(s.Name, s.Email, s.Type, s.NewPassword)
}

// ValidateEdit returns the message for an invalid edit form, or "".
func ValidateEdit(name, email string) string {
	if validation.Blank(name) || validation.Blank(email) {
		return MsgNameEmailRequired
	}
	if !validation.ValidEmail(email) {
		return MsgEmailInvalid
	}
	return ""
}

// EditUser is the edit screen of one user.
type EditUser struct {
	deps Deps

	mu       sync.Mutex
	state    EditUserState
	loading  bool
	disposed bool
}

func NewEditUser(d Deps, id models.UserID) *EditUser {
	return &EditUser{deps: d.withDefaults(), state: EditUserState{ID: id, Phase: EditLoading}}
}

func (w *EditUser) State() EditUserState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Load fetches the user. A missing record, whether reported as 404 or as an
// empty response, ends in EditNotFound. An expired session is cleared and
// the user is sent to sign-in.
func (w *EditUser) Load(ctx context.Context) error {
	w.mu.Lock()
	switch {
	case w.disposed:
		w.mu.Unlock()
		return ErrDisposed
	case w.loading:
		w.mu.Unlock()
		return ErrBusy
	}
	w.loading = true
	w.state.Phase = EditLoading
	w.state.LoadError = ""
	w.state.Error = ""
	id := w.state.ID
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.loading = false
		w.mu.Unlock()
	}()

	token, err := w.deps.Session.Token(ctx)
	if err != nil {
		w.apply(func(s *EditUserState) {
			s.Phase = EditLoadFailed
			s.LoadError = MsgLoadUserFailed
		})
		return fmt.Errorf("load user %s: %w", id, err)
	}
	if token == "" {
		w.deps.Nav.Navigate(nav.SignIn)
		return nil
	}

	u, err := w.deps.Client.Get(ctx, id, token)
	switch {
	case err != nil && errors.Is(err, client.ErrNotFound):
		w.apply(func(s *EditUserState) { s.Phase = EditNotFound })
	case err != nil && sessionExpired(err):
		w.deps.Log.Warn(ctx, "session expired", "error", err)
		if !w.apply(func(s *EditUserState) {
			s.Phase = EditLoadFailed
			s.LoadError = MsgSessionExpired
		}) {
			return nil
		}
		if cerr := w.deps.Session.Clear(ctx); cerr != nil {
			w.deps.Log.Error(ctx, "failed to clear session", "error", cerr)
		}
		w.deps.Nav.Navigate(nav.SignIn)
	case err != nil:
		w.deps.Log.Warn(ctx, "failed to load user", "id", id, "error", err)
		w.apply(func(s *EditUserState) {
			s.Phase = EditLoadFailed
			s.LoadError = displayMessage(err, MsgLoadUserFailed)
		})
	case u == nil:
		w.apply(func(s *EditUserState) { s.Phase = EditNotFound })
	default:
		w.apply(func(s *EditUserState) {
			s.Phase = EditReady
			s.Name = u.Name
			s.Email = u.Email
			s.Type = u.Type.Normalize()
			s.NewPassword = ""
		})
	}
	return nil
}

// apply runs f under the lock unless the workflow was disposed.
func (w *EditUser) apply(f func(*EditUserState)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed {
		return false
	}
	f(&w.state)
	return true
}

func (w *EditUser) edit(f func(*EditUserState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f(&w.state)
	w.state.Error = ""
}

func (w *EditUser) SetName(v string) {
	w.edit(func(s *EditUserState) { s.Name = v })
}

func (w *EditUser) SetEmail(v string) {
	w.edit(func(s *EditUserState) { s.Email = v })
}

func (w *EditUser) SetType(t models.UserType) {
	w.edit(func(s *EditUserState) { s.Type = t.Normalize() })
}

func (w *EditUser) SetNewPassword(v string) {
	w.edit(func(s *EditUserState) { s.NewPassword = v })
}

// Submit validates and saves the form. The password is sent only when a new
// one was typed. On success the user is notified and sent back to the list;
// on failure the form keeps its values.
func (w *EditUser) Submit(ctx context.Context) error {
	w.mu.Lock()
	switch {
	case w.disposed:
		w.mu.Unlock()
		return ErrDisposed
	case w.state.Phase != EditReady:
		w.mu.Unlock()
		return ErrNotEditable
	case w.state.Saving:
		w.mu.Unlock()
		return ErrBusy
	}
	w.state.Error = ""
	if msg := ValidateEdit(w.state.Name, w.state.Email); msg != "" {
		w.state.Error = msg
		w.mu.Unlock()
		return nil
	}
	w.state.Saving = true
	id, update := w.state.ID, w.state.Update()
	w.mu.Unlock()

	token, err := w.deps.Session.Token(ctx)
	if err != nil {
		w.apply(func(s *EditUserState) {
			s.Saving = false
			s.Error = MsgUpdateFailed
		})
		return fmt.Errorf("update user %s: %w", id, err)
	}
	if token == "" {
		w.apply(func(s *EditUserState) { s.Saving = false })
		w.deps.Nav.Navigate(nav.SignIn)
		return nil
	}

	_, err = w.deps.Client.Update(ctx, id, update, token)
	if !w.apply(func(s *EditUserState) {
		s.Saving = false
		if err != nil {
			s.Error = displayMessage(err, MsgUpdateFailed)
		}
	}) {
		return nil
	}

	if err != nil {
		w.deps.Log.Warn(ctx, "failed to update user", "id", id, "error", err)
		return nil
	}

	_, withPassword := update.(models.FullUpdateWithPassword)
	w.deps.Log.Info(ctx, "user updated", "id", id, "password_changed", withPassword)
	w.deps.Notifier.Notify(ctx, MsgUpdated)
	w.deps.Nav.Navigate(nav.Users)
	return nil
}

// Cancel leaves the form without saving.
func (w *EditUser) Cancel() {
	w.deps.Nav.Navigate(nav.Users)
}

func (w *EditUser) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disposed = true
}
