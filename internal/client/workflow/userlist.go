package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/usermgr/internal/client/models"
	"github.com/dmitrijs2005/usermgr/internal/client/nav"
)

const (
	ListTitle          = "Lista de Usuários"
	ActionCreate       = "Criar Usuário"
	ActionLogout       = "Sair"
	ActionEdit         = "Editar"
	ActionDelete       = "Deletar"
	MsgLoadingUsers    = "Loading users..."
	MsgSessionExpired  = "Your session has expired. Please log in again."
	MsgLoadFailed      = "Failed to load users."
	MsgAdminOnly       = "Somente os admins podem editar e deletar usuários."
	MsgProtectedDelete = "O Usuário com ID 1 não pode ser deletado"

	// ProtectedErrorTTL is how long a failed delete of the protected record
	// stays on screen.
	ProtectedErrorTTL = 3 * time.Second
)

// DeletePrompt is the confirmation question asked before deleting id.
func DeletePrompt(id models.UserID) string {
	return fmt.Sprintf("Are you sure you want to delete the user with ID %s?", id)
}

func deleteFailedMessage(id models.UserID) string {
	return fmt.Sprintf("Failed to delete user with ID %s", id)
}

// UserListState is the list screen. Role is empty until the first
// successful load.
type UserListState struct {
	Loading        bool
	Users          []models.User
	Role           models.UserType
	Error          string
	SessionExpired bool
	ModalOpen      bool
	Deleting       bool
}

// IsAdmin reports whether management actions are shown.
func (s UserListState) IsAdmin() bool { return s.Role == models.TypeAdmin }

// LoadingOnly reports whether the screen shows nothing but the loading
// notice.
func (s UserListState) LoadingOnly() bool { return s.Loading && len(s.Users) == 0 }

// ShowTable is false while the session-expired error is displayed.
func (s UserListState) ShowTable() bool { return !s.SessionExpired }

// HeaderActions lists the buttons above the table.
func (s UserListState) HeaderActions() []string {
	if s.IsAdmin() {
		return []string{ActionCreate, ActionLogout}
	}
	return []string{ActionLogout}
}

// Columns lists the table headings for the current role.
func (s UserListState) Columns() []string {
	if s.IsAdmin() {
		return []string{"ID", "Name", "Email", "Type", "Actions"}
	}
	return []string{"ID", "Name", "Actions"}
}

// Row is one rendered table row. Admins get Actions; everybody else gets
// Message in the actions cell.
type Row struct {
	ID      models.UserID
	Cells   []string
	Actions []string
	Message string
}

// Rows renders the users for the current role.
func (s UserListState) Rows() []Row {
	rows := make([]Row, 0, len(s.Users))
	for _, u := range s.Users {
		if s.IsAdmin() {
			rows = append(rows, Row{
				ID:      u.ID,
				Cells:   []string{u.ID.String(), u.Name, u.Email, string(u.Type)},
				Actions: []string{ActionEdit, ActionDelete},
			})
			continue
		}
		rows = append(rows, Row{
			ID:      u.ID,
			Cells:   []string{u.ID.String(), u.Name},
			Message: MsgAdminOnly,
		})
	}
	return rows
}

// DeriveRole finds the signed-in user in users by email and returns their
// type, or TypeRegular when there is no match.
func DeriveRole(users []models.User, email string) models.UserType {
	for _, u := range users {
		if u.Email == email {
			return u.Type.Normalize()
		}
	}
	return models.TypeRegular
}

// UserList is the list screen. It also hosts the create modal.
type UserList struct {
	deps Deps

	mu         sync.Mutex
	state      UserListState
	disposed   bool
	loadSeq    uint64
	errGen     uint64
	clearTimer Timer
	modal      *CreateUser
}

func NewUserList(d Deps) *UserList {
	return &UserList{deps: d.withDefaults(), state: UserListState{Loading: true}}
}

// State returns a snapshot; the Users slice is a copy.
func (w *UserList) State() UserListState {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	s.Users = append([]models.User(nil), w.state.Users...)
	return s
}

// Mount performs the initial load.
func (w *UserList) Mount(ctx context.Context) error {
	return w.load(ctx)
}

// Refresh reloads the list. It is refused while a load is running.
func (w *UserList) Refresh(ctx context.Context) error {
	w.mu.Lock()
	busy := w.state.Loading && w.loadSeq > 0
	w.mu.Unlock()
	if busy {
		return ErrBusy
	}
	return w.load(ctx)
}

// setErrorLocked replaces the displayed error. Every change invalidates a
// pending auto-clear.
func (w *UserList) setErrorLocked(msg string, expired bool) uint64 {
	w.errGen++
	w.state.Error = msg
	w.state.SessionExpired = expired
	if w.clearTimer != nil {
		w.clearTimer.Stop()
		w.clearTimer = nil
	}
	return w.errGen
}

func (w *UserList) load(ctx context.Context) error {
	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return ErrDisposed
	}
	w.loadSeq++
	seq := w.loadSeq
	w.state.Loading = true
	w.setErrorLocked("", false)
	w.mu.Unlock()

	sess, err := w.deps.Session.Load(ctx)
	if err != nil {
		w.finishLoad(seq, func() { w.setErrorLocked(MsgLoadFailed, false) })
		return fmt.Errorf("load users: %w", err)
	}
	if !sess.Active() {
		if w.finishLoad(seq, nil) {
			w.deps.Nav.Navigate(nav.SignIn)
		}
		return nil
	}

	users, err := w.deps.Client.List(ctx, sess.Token)
	if err != nil && sessionExpired(err) {
		w.deps.Log.Warn(ctx, "session expired", "error", err)
		if !w.finishLoad(seq, func() { w.setErrorLocked(MsgSessionExpired, true) }) {
			return nil
		}
		if cerr := w.deps.Session.Clear(ctx); cerr != nil {
			w.deps.Log.Error(ctx, "failed to clear session", "error", cerr)
		}
		w.deps.Nav.Navigate(nav.SignIn)
		return nil
	}
	if err != nil {
		w.deps.Log.Warn(ctx, "failed to load users", "error", err)
		w.finishLoad(seq, func() { w.setErrorLocked(displayMessage(err, MsgLoadFailed), false) })
		return nil
	}

	role := DeriveRole(users, sess.UserEmail)
	w.finishLoad(seq, func() {
		w.state.Users = users
		w.state.Role = role
	})
	w.deps.Log.Debug(ctx, "users loaded", "count", len(users), "role", role)
	return nil
}

// finishLoad applies f and clears the loading flag if the load numbered seq
// is still the latest one and the workflow is alive. It reports whether the
// result was applied.
func (w *UserList) finishLoad(seq uint64, f func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed || seq != w.loadSeq {
		return false
	}
	w.state.Loading = false
	if f != nil {
		f()
	}
	return true
}

// Delete asks for confirmation and deletes id. A successful delete removes
// the row locally. A failed delete of the protected record shows an error
// that disappears after ProtectedErrorTTL; other failures stay until
// replaced.
func (w *UserList) Delete(ctx context.Context, id models.UserID) error {
	w.mu.Lock()
	switch {
	case w.disposed:
		w.mu.Unlock()
		return ErrDisposed
	case !w.state.IsAdmin():
		w.mu.Unlock()
		return ErrAdminOnly
	case w.state.Deleting:
		w.mu.Unlock()
		return ErrBusy
	}
	w.state.Deleting = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.state.Deleting = false
		w.mu.Unlock()
	}()

	if !w.deps.Confirmer.Confirm(ctx, DeletePrompt(id)) {
		return nil
	}

	token, err := w.deps.Session.Token(ctx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if token == "" {
		w.deps.Nav.Navigate(nav.SignIn)
		return nil
	}

	err = w.deps.Client.Delete(ctx, id, token)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed {
		return nil
	}

	if err == nil {
		w.deps.Log.Info(ctx, "user deleted", "id", id)
		kept := make([]models.User, 0, len(w.state.Users))
		for _, u := range w.state.Users {
			if u.ID != id {
				kept = append(kept, u)
			}
		}
		w.state.Users = kept
		return nil
	}

	w.deps.Log.Warn(ctx, "failed to delete user", "id", id, "error", err)
	if !id.IsProtected() {
		w.setErrorLocked(displayMessage(err, deleteFailedMessage(id)), false)
		return nil
	}

	gen := w.setErrorLocked(displayMessage(err, MsgProtectedDelete), false)
	w.clearTimer = w.deps.AfterFunc(ProtectedErrorTTL, func() { w.clearError(gen) })
	return nil
}

// clearError removes the error set at generation gen unless a newer one has
// replaced it.
func (w *UserList) clearError(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed || gen != w.errGen {
		return
	}
	w.setErrorLocked("", false)
}

// Logout clears the session and goes to sign-in whatever else is running.
func (w *UserList) Logout(ctx context.Context) error {
	err := w.deps.Session.Clear(ctx)
	if err != nil {
		w.deps.Log.Error(ctx, "failed to clear session", "error", err)
		err = fmt.Errorf("logout: %w", err)
	}
	w.deps.Nav.Navigate(nav.SignIn)
	return err
}

// OpenModal shows the create form. Opening an already open modal returns
// the existing form. The list is not reloaded.
func (w *UserList) OpenModal() (*CreateUser, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.disposed:
		return nil, ErrDisposed
	case !w.state.IsAdmin():
		return nil, ErrAdminOnly
	case w.modal != nil:
		return w.modal, nil
	}
	w.modal = NewCreateUser(w.deps, w.userCreated)
	w.state.ModalOpen = true
	return w.modal, nil
}

// Modal returns the open create form or nil.
func (w *UserList) Modal() *CreateUser {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.modal
}

// CloseModal hides the create form without reloading.
func (w *UserList) CloseModal() {
	w.mu.Lock()
	m := w.modal
	w.modal = nil
	w.state.ModalOpen = false
	w.mu.Unlock()

	if m != nil {
		m.Dispose()
	}
}

// userCreated closes the modal and reloads the list.
func (w *UserList) userCreated(ctx context.Context) {
	w.CloseModal()
	if err := w.load(ctx); err != nil && !errors.Is(err, ErrDisposed) {
		w.deps.Log.Error(ctx, "failed to reload users", "error", err)
	}
}

// Dispose stops the pending auto-clear and the modal; late results are
// ignored.
func (w *UserList) Dispose() {
	w.mu.Lock()
	w.disposed = true
	if w.clearTimer != nil {
		w.clearTimer.Stop()
		w.clearTimer = nil
	}
	m := w.modal
	w.modal = nil
	w.mu.Unlock()

	if m != nil {
		m.Dispose()
	}
}
