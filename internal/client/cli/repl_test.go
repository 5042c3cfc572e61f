package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/usermgr/internal/client/client"
	"github.com/dmitrijs2005/usermgr/internal/client/models"
	"github.com/dmitrijs2005/usermgr/internal/client/nav"
	"github.com/dmitrijs2005/usermgr/internal/client/session"
	"github.com/dmitrijs2005/usermgr/internal/client/usertest"
	"github.com/dmitrijs2005/usermgr/internal/client/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv   *usertest.Server
	store *session.Store
	out   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	stubTerminal(t, false, nil, nil)
	return &harness{
		srv:   usertest.New(),
		store: session.NewStore(session.NewMemory()),
		out:   &bytes.Buffer{},
	}
}

func (h *harness) run(t *testing.T, lines ...string) *App {
	t.Helper()
	ts := h.srv.Start(t)
	c, err := client.NewHTTPClient(ts.URL, client.WithTimeout(5*time.Second))
	require.NoError(t, err)

	app := NewApp(c, h.store, nil, strings.NewReader(strings.Join(lines, "\n")+"\n"), h.out)
	require.NoError(t, app.Run(context.Background()))
	return app
}

func TestRun_AdminSession(t *testing.T) {
	h := newHarness(t)

	app := h.run(t,
		"help",
		"enter",
		"signin", usertest.SeedAdminEmail, usertest.SeedAdminPassword,
		"create", "Dave", "dave@x.io", "pw", "",
		"edit 2",
		"save", "Davey", "", "", "admin",
		"delete 1", "y",
		"delete 2", "n",
		"delete 2", "y",
		"logout",
		"exit",
	)

	out := h.out.String()
	assert.Contains(t, out, workflow.LandingTitle)
	assert.Contains(t, out, "Available commands: enter")
	assert.Contains(t, out, workflow.MsgCreated)
	assert.Contains(t, out, workflow.MsgUpdated)
	assert.Contains(t, out, "Cannot delete the primary admin user")
	assert.Contains(t, out, workflow.DeletePrompt("2"))
	assert.Contains(t, out, "Bye!")

	assert.Equal(t, 2, h.srv.CountRequests("DELETE", "/users/2")+h.srv.CountRequests("DELETE", "/users/1"))
	users := h.srv.Users()
	require.Len(t, users, 1)
	assert.Equal(t, models.UserID("1"), users[0].ID)

	put, ok := h.srv.LastRequest("PUT", "/users/2")
	require.True(t, ok)
	assert.Equal(t, "Davey", put.JSON()["name"])
	assert.Equal(t, "admin", put.JSON()["type"])
	_, hasPassword := put.JSON()["password"]
	assert.False(t, hasPassword)

	sess, err := h.store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, sess.Active())
	assert.Equal(t, nav.SignIn, app.Route())
}

func TestRun_RegularUserView(t *testing.T) {
	h := newHarness(t)
	h.srv.AddUser("Bob", "bob@x.io", "pw", models.TypeRegular)

	h.run(t,
		"enter",
		"login", "bob@x.io", "pw",
		"help",
		"delete 1",
		"create",
		"edit 1",
		"quit",
	)

	out := h.out.String()
	assert.Contains(t, out, workflow.MsgAdminOnly)
	assert.Contains(t, out, "Available commands: refresh, logout")
	assert.NotContains(t, out, "admin@example.com")
	assert.Zero(t, h.srv.CountRequests("DELETE", "/users/1"))
	assert.Zero(t, h.srv.CountRequests("GET", "/users/1"))
}

func TestRun_WrongPassword(t *testing.T) {
	h := newHarness(t)

	app := h.run(t,
		"enter",
		"signin", usertest.SeedAdminEmail, "nope",
		"exit",
	)

	assert.Contains(t, h.out.String(), workflow.MsgInvalidCredentials)
	assert.Equal(t, nav.SignIn, app.Route())
}

func TestRun_ExpiredSessionRedirects(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Save(context.Background(), session.Session{Token: "stale", UserEmail: "a@x.com"}))

	app := h.run(t, "enter", "exit")

	assert.Contains(t, h.out.String(), workflow.MsgSessionExpired)
	assert.Equal(t, nav.SignIn, app.Route())
	sess, err := h.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.Session{}, sess)
}

func TestRun_CreateValidationKeepsModalOpen(t *testing.T) {
	h := newHarness(t)

	h.run(t,
		"enter",
		"signin", usertest.SeedAdminEmail, usertest.SeedAdminPassword,
		"create", "", "foo@bar", "", "",
		"close",
		"exit",
	)

	out := h.out.String()
	assert.Contains(t, out, workflow.MsgNameRequired)
	assert.Contains(t, out, workflow.MsgEmailInvalid)
	assert.Contains(t, out, workflow.MsgPasswordRequired)
	assert.Zero(t, h.srv.CountRequests("POST", "/users"))
}

func TestRun_EditUnknownUser(t *testing.T) {
	h := newHarness(t)

	app := h.run(t,
		"enter",
		"signin", usertest.SeedAdminEmail, usertest.SeedAdminPassword,
		"go /users/99",
		"save",
		"cancel",
		"exit",
	)

	out := h.out.String()
	assert.Contains(t, out, workflow.MsgUserNotFound)
	assert.Contains(t, out, "Nothing to save.")
	assert.Equal(t, nav.Users, app.Route())
}

func TestRun_UnknownCommandAndRoute(t *testing.T) {
	h := newHarness(t)

	h.run(t, "foobar", "go /nowhere", "go", "")

	out := h.out.String()
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "Unknown route: /nowhere")
	assert.Contains(t, out, "Usage: go <route>")
}

func TestRun_CancelledContextStopsBeforeCommands(t *testing.T) {
	h := newHarness(t)
	ts := h.srv.Start(t)
	c, err := client.NewHTTPClient(ts.URL, client.WithTimeout(5*time.Second))
	require.NoError(t, err)

	in := strings.NewReader(strings.Join([]string{
		"enter",
		"signin", usertest.SeedAdminEmail, usertest.SeedAdminPassword,
		"help",
	}, "\n") + "\n")
	app := NewApp(c, h.store, nil, in, h.out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = app.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Zero(t, h.srv.CountRequests("POST", "/login"))
	assert.NotContains(t, h.out.String(), "Available commands")
	assert.Equal(t, nav.Home, app.Route())
}
