package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/usermgr/internal/client/models"
	"github.com/dmitrijs2005/usermgr/internal/client/nav"
	"github.com/dmitrijs2005/usermgr/internal/client/session"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu sync.Mutex

	LoginFn  func(ctx context.Context, email, password string) (string, error)
	ListFn   func(ctx context.Context, token string) ([]models.User, error)
	GetFn    func(ctx context.Context, id models.UserID, token string) (*models.User, error)
	CreateFn func(ctx context.Context, d models.UserDraft, token string) (*models.User, error)
	UpdateFn func(ctx context.Context, id models.UserID, u models.UserUpdate, token string) (*models.User, error)
	DeleteFn func(ctx context.Context, id models.UserID, token string) error

	calls   []string
	drafts  []models.UserDraft
	updates []models.UserUpdate
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (string, error) {
	f.record("login")
	return f.LoginFn(ctx, email, password)
}

func (f *fakeClient) List(ctx context.Context, token string) ([]models.User, error) {
	f.record("list")
	return f.ListFn(ctx, token)
}

func (f *fakeClient) Get(ctx context.Context, id models.UserID, token string) (*models.User, error) {
	f.record("get")
	return f.GetFn(ctx, id, token)
}

func (f *fakeClient) Create(ctx context.Context, d models.UserDraft, token string) (*models.User, error) {
	f.record("create")
	f.mu.Lock()
	f.drafts = append(f.drafts, d)
	f.mu.Unlock()
	return f.CreateFn(ctx, d, token)
}

func (f *fakeClient) Update(ctx context.Context, id models.UserID, u models.UserUpdate, token string) (*models.User, error) {
	f.record("update")
	f.mu.Lock()
	f.updates = append(f.updates, u)
	f.mu.Unlock()
	return f.UpdateFn(ctx, id, u, token)
}

func (f *fakeClient) Delete(ctx context.Context, id models.UserID, token string) error {
	f.record("delete")
	return f.DeleteFn(ctx, id, token)
}

func (f *fakeClient) Close() error { return nil }

type fakeConfirmer struct {
	answer  bool
	prompts []string
}

func (c *fakeConfirmer) Confirm(_ context.Context, prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

// fakeTimers records scheduled callbacks; tests fire them by hand.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (ft *fakeTimers) AfterFunc(d time.Duration, f func()) Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	ft.timers = append(ft.timers, t)
	return t
}

// fire runs timer i even if it was stopped, the way a timer that already
// fired before Stop would.
func (ft *fakeTimers) fire(i int) {
	ft.mu.Lock()
	t := ft.timers[i]
	ft.mu.Unlock()
	t.f()
}

type env struct {
	client   *fakeClient
	store    *session.Store
	router   *nav.Router
	confirm  *fakeConfirmer
	notifier *fakeNotifier
	timers   *fakeTimers
	deps     Deps
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		client:   &fakeClient{},
		store:    session.NewStore(session.NewMemory()),
		router:   nav.NewRouter(nav.Home),
		confirm:  &fakeConfirmer{answer: true},
		notifier: &fakeNotifier{},
		timers:   &fakeTimers{},
	}
	e.deps = Deps{
		Client:    e.client,
		Session:   e.store,
		Nav:       e.router,
		Confirmer: e.confirm,
		Notifier:  e.notifier,
		AfterFunc: e.timers.AfterFunc,
	}
	return e
}

func (e *env) signIn(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, e.store.Save(context.Background(), session.Session{Token: "tok", UserEmail: email}))
}

func (e *env) session(t *testing.T) session.Session {
	t.Helper()
	s, err := e.store.Load(context.Background())
	require.NoError(t, err)
	return s
}

var seedUsers = []models.User{
	{ID: "1", Name: "Admin", Email: "a@x.com", Type: models.TypeAdmin},
	{ID: "2", Name: "Bob", Email: "bob@x.com", Type: models.TypeRegular},
	{ID: "3", Name: "Carol", Email: "carol@x.com"},
}

func listOf(users ...models.User) func(context.Context, string) ([]models.User, error) {
	return func(context.Context, string) ([]models.User, error) {
		return append([]models.User(nil), users...), nil
	}
}
