package workflow

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/usermgr/internal/client/client"
	"github.com/dmitrijs2005/usermgr/internal/client/models"
	"github.com/dmitrijs2005/usermgr/internal/client/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name  string
		draft models.UserDraft
		want  validation.Errors
	}{
		{"valid", models.UserDraft{Name: "A", Email: "a@b.co", Password: "x"}, validation.Errors{}},
		{"all empty", models.UserDraft{}, validation.Errors{
			FieldName:     MsgNameRequired,
			FieldEmail:    MsgEmailRequired,
			FieldPassword: MsgPasswordRequired,
		}},
		{"blank name", models.UserDraft{Name: "  ", Email: "a@b.co", Password: "x"}, validation.Errors{FieldName: MsgNameRequired}},
		{"email no at", models.UserDraft{Name: "A", Email: "foo", Password: "x"}, validation.Errors{FieldEmail: MsgEmailInvalid}},
		{"email no dot", models.UserDraft{Name: "A", Email: "foo@bar", Password: "x"}, validation.Errors{FieldEmail: MsgEmailInvalid}},
		{"spaces password is present", models.UserDraft{Name: "A", Email: "a@b.co", Password: " "}, validation.Errors{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateDraft(tt.draft))
		})
	}
}

func newCreate(t *testing.T, e *env) (*CreateUser, *int) {
	t.Helper()
	e.signIn(t, "a@x.com")
	created := 0
	return NewCreateUser(e.deps, func(context.Context) { created++ }), &created
}

func TestCreateUser_Defaults(t *testing.T) {
	e := newEnv(t)
	w, _ := newCreate(t, e)

	st := w.State()
	assert.Equal(t, models.TypeRegular, st.Type)
	assert.Equal(t, LabelCreate, st.SubmitLabel())
	assert.True(t, st.FieldErrors.Empty())
}

func TestCreateUser_ValidationBlocksSubmit(t *testing.T) {
	for _, missing := range []string{FieldName, FieldEmail, FieldPassword} {
		t.Run(missing, func(t *testing.T) {
			e := newEnv(t)
			w, created := newCreate(t, e)
			if missing != FieldName {
				w.SetName("Dave")
			}
			if missing != FieldEmail {
				w.SetEmail("dave@x.com")
			}
			if missing != FieldPassword {
				w.SetPassword("pw")
			}

			require.NoError(t, w.Submit(context.Background()))

			st := w.State()
			assert.Len(t, st.FieldErrors, 1)
			assert.NotEmpty(t, st.FieldErrors[missing])
			assert.Zero(t, e.client.count("create"))
			assert.Zero(t, *created)
		})
	}
}

func TestCreateUser_EditingClearsFieldAndAPIErrors(t *testing.T) {
	e := newEnv(t)
	w, _ := newCreate(t, e)

	require.NoError(t, w.Submit(context.Background()))
	require.Len(t, w.State().FieldErrors, 3)

	w.SetEmail("x")
	st := w.State()
	assert.NotContains(t, st.FieldErrors, FieldEmail)
	assert.Contains(t, st.FieldErrors, FieldName)
	assert.Contains(t, st.FieldErrors, FieldPassword)

	w.SetName("Dave")
	w.SetPassword("pw")
	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, MsgEmailInvalid, w.State().FieldErrors[FieldEmail])

	e.client.CreateFn = func(context.Context, models.UserDraft, string) (*models.User, error) {
		return nil, client.NewStatusError(http.StatusConflict, "Email already in use")
	}
	w.SetEmail("dave@x.com")
	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, "Email already in use", w.State().Error)

	w.SetType(models.TypeAdmin)
	assert.Empty(t, w.State().Error)
}

func TestCreateUser_Success(t *testing.T) {
	e := newEnv(t)
	w, created := newCreate(t, e)
	e.client.CreateFn = func(_ context.Context, d models.UserDraft, token string) (*models.User, error) {
		assert.Equal(t, "tok", token)
		return &models.User{ID: "9", Name: d.Name, Email: d.Email, Type: d.Type}, nil
	}

	w.SetName("Dave")
	w.SetEmail("dave@x.com")
	w.SetPassword("pw")
	w.SetType("superuser")
	require.NoError(t, w.Submit(context.Background()))

	require.Len(t, e.client.drafts, 1)
	assert.Equal(t, models.UserDraft{Name: "Dave", Email: "dave@x.com", Password: "pw", Type: models.TypeRegular}, e.client.drafts[0])
	assert.Equal(t, 1, *created)
	assert.Equal(t, []string{MsgCreated}, e.notifier.messages)
	assert.False(t, w.State().Loading)
}

func TestCreateUser_FailureKeepsValues(t *testing.T) {
	e := newEnv(t)
	w, created := newCreate(t, e)
	e.client.CreateFn = func(context.Context, models.UserDraft, string) (*models.User, error) {
		return nil, client.NewStatusError(http.StatusInternalServerError, "")
	}

	w.SetName("Dave")
	w.SetEmail("dave@x.com")
	w.SetPassword("pw")
	w.SetType(models.TypeAdmin)
	require.NoError(t, w.Submit(context.Background()))

	st := w.State()
	assert.Equal(t, MsgCreateFailed, st.Error)
	assert.Equal(t, "Dave", st.Name)
	assert.Equal(t, "dave@x.com", st.Email)
	assert.Equal(t, "pw", st.Password)
	assert.Equal(t, models.TypeAdmin, st.Type)
	assert.Zero(t, *created)
	assert.Empty(t, e.notifier.messages)
}

func TestCreateUser_BusyWhileSubmitting(t *testing.T) {
	e := newEnv(t)
	w, _ := newCreate(t, e)
	entered := make(chan struct{})
	release := make(chan struct{})
	e.client.CreateFn = func(context.Context, models.UserDraft, string) (*models.User, error) {
		close(entered)
		<-release
		return &models.User{ID: "9"}, nil
	}
	w.SetName("Dave")
	w.SetEmail("dave@x.com")
	w.SetPassword("pw")

	done := make(chan error)
	go func() { done <- w.Submit(context.Background()) }()
	<-entered

	st := w.State()
	assert.True(t, st.Loading)
	assert.Equal(t, LabelCreating, st.SubmitLabel())
	assert.ErrorIs(t, w.Submit(context.Background()), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, e.client.count("create"))
}
