package workflow

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/usermgr/internal/client/models"
	"github.com/dmitrijs2005/usermgr/internal/client/validation"
)

// Form field names used as FieldErrors keys.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldType     = "type"
)

const (
	CreateTitle         = "Criar Novo Usuário"
	LabelCreate         = "Criar"
	LabelCreating       = "Criando..."
	MsgNameRequired     = "O nome é obrigatório."
	MsgEmailRequired    = "O email é obrigatório."
	MsgEmailInvalid     = "O formato do email é inválido."
	MsgPasswordRequired = "A senha é obrigatória."
	MsgCreateFailed     = "Falha ao criar usuário. Verifique os dados e tente novamente."
	MsgCreated          = "Usuário criado com sucesso!"
)

// CreateUserState is the create form. Type starts as TypeRegular.
type CreateUserState struct {
	Name        string
	Email       string
	Password    string
	Type        models.UserType
	FieldErrors validation.Errors
	Error       string
	Loading     bool
}

// SubmitLabel is the caption of the submit button.
func (s CreateUserState) SubmitLabel() string {
	if s.Loading {
		return LabelCreating
	}
	return LabelCreate
}

// ValidateDraft checks a create form and returns one message per failing
// field.
func ValidateDraft(d models.UserDraft) validation.Errors {
	errs := validation.Errors{}
	if validation.Blank(d.Name) {
		errs.Add(FieldName, MsgNameRequired)
	}
	switch {
	case validation.Blank(d.Email):
		errs.Add(FieldEmail, MsgEmailRequired)
	case !validation.ValidEmail(d.Email):
		errs.Add(FieldEmail, MsgEmailInvalid)
	}
	if d.Password == "" {
		errs.Add(FieldPassword, MsgPasswordRequired)
	}
	return errs
}

// CreateUser is the modal create form hosted by UserList.
type CreateUser struct {
	deps      Deps
	onCreated func(context.Context)

	mu       sync.Mutex
	state    CreateUserState
	disposed bool
}

// NewCreateUser returns an empty form. onCreated runs after a successful
// create, outside the form's lock.
func NewCreateUser(d Deps, onCreated func(context.Context)) *CreateUser {
	return &CreateUser{
		deps:      d.withDefaults(),
		onCreated: onCreated,
		state:     CreateUserState{Type: models.TypeRegular, FieldErrors: validation.Errors{}},
	}
}

func (w *CreateUser) State() CreateUserState {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	s.FieldErrors = w.state.FieldErrors.Clone()
	return s
}

// edit applies one field change, drops that field's error and the API error.
func (w *CreateUser) edit(field string, apply func(*CreateUserState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	apply(&w.state)
	delete(w.state.FieldErrors, field)
	w.state.Error = ""
}

func (w *CreateUser) SetName(v string) {
	w.edit(FieldName, func(s *CreateUserState) { s.Name = v })
}

func (w *CreateUser) SetEmail(v string) {
	w.edit(FieldEmail, func(s *CreateUserState) { s.Email = v })
}

func (w *CreateUser) SetPassword(v string) {
	w.edit(FieldPassword, func(s *CreateUserState) { s.Password = v })
}

// SetType accepts only the two known roles; anything else selects regular.
func (w *CreateUser) SetType(t models.UserType) {
	w.edit(FieldType, func(s *CreateUserState) { s.Type = t.Normalize() })
}

// Submit validates the form and creates the user. Validation failures set
// FieldErrors and never reach the server. Entered values are kept on
// failure.
func (w *CreateUser) Submit(ctx context.Context) error {
	w.mu.Lock()
	switch {
	case w.disposed:
		w.mu.Unlock()
		return ErrDisposed
	case w.state.Loading:
		w.mu.Unlock()
		return ErrBusy
	}
	w.state.Error = ""
	draft := models.UserDraft{
		Name:     w.state.Name,
		Email:    w.state.Email,
		Password: w.state.Password,
		Type:     w.state.Type.Normalize(),
	}
	w.state.FieldErrors = ValidateDraft(draft)
	if !w.state.FieldErrors.Empty() {
		w.mu.Unlock()
		return nil
	}
	w.state.Loading = true
	w.mu.Unlock()

	token, err := w.deps.Session.Token(ctx)
	if err == nil {
		_, err = w.deps.Client.Create(ctx, draft, token)
	}

	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return nil
	}
	w.state.Loading = false
	if err != nil {
		w.state.Error = displayMessage(err, MsgCreateFailed)
	}
	w.mu.Unlock()

	if err != nil {
		w.deps.Log.Warn(ctx, "failed to create user", "email", draft.Email, "error", err)
		return nil
	}

	w.deps.Log.Info(ctx, "user created", "email", draft.Email, "type", draft.Type)
	w.deps.Notifier.Notify(ctx, MsgCreated)
	if w.onCreated != nil {
		w.onCreated(ctx)
	}
	return nil
}

// Dispose discards the form; a create already sent still completes on the
// server but its result is ignored.
func (w *CreateUser) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disposed = true
}
