package usertest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/usermgr/internal/client/models"
	"github.com/dmitrijs2005/usermgr/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"golang.org/x/crypto/bcrypt"
)

const (
	SeedAdminEmail    = "admin@example.com"
	SeedAdminPassword = "admin"
)

type record struct {
	id           int
	name         string
	email        string
	passwordHash []byte
	userType     models.UserType
}

func (r record) user() models.User {
	return models.User{ID: models.UserID(strconv.Itoa(r.id)), Name: r.name, Email: r.email, Type: r.userType}
}

// Request is a request as received by the fake, body included.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

// JSON decodes the request body into a generic map.
func (r Request) JSON() map[string]any {
	m := map[string]any{}
	_ = json.Unmarshal(r.Body, &m)
	return m
}

type failure struct {
	status  int
	message string
}

// Server is the fake User Service.
type Server struct {
	mu         sync.Mutex
	users      map[int]*record
	nextID     int
	secret     []byte
	ttl        time.Duration
	generation int
	failures   map[string]failure
	requests   []Request
	loginLimit int
	log        logging.Logger
}

// Option customises a Server.
type Option func(*Server)

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option { return func(s *Server) { s.ttl = d } }

// WithLogger logs every request received.
func WithLogger(l logging.Logger) Option { return func(s *Server) { s.log = l } }

// WithSecret sets the HS256 signing key.
func WithSecret(key []byte) Option { return func(s *Server) { s.secret = key } }

// WithLoginLimit sets how many logins per minute one client address may try.
func WithLoginLimit(n int) Option { return func(s *Server) { s.loginLimit = n } }

// New returns a Server seeded with the protected admin (id 1).
func New(opts ...Option) *Server {
	s := &Server{
		users:      make(map[int]*record),
		nextID:     1,
		secret:     []byte("usertest-secret"),
		ttl:        time.Hour,
		failures:   make(map[string]failure),
		loginLimit: 60,
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.AddUser("Admin", SeedAdminEmail, SeedAdminPassword, models.TypeAdmin)
	return s
}

// Start serves s on a local listener; the server is closed by Cleanup.
func (s *Server) Start(t interface{ Cleanup(func()) }) *httptest.Server {
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// AddUser inserts a user directly and returns it.
func (s *Server) AddUser(name, email, password string, t models.UserType) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, hash, t)
}

func (s *Server) addUserLocked(name, email string, hash []byte, t models.UserType) models.User {
	r := &record{id: s.nextID, name: name, email: email, passwordHash: hash, userType: t.Normalize()}
	s.users[r.id] = r
	s.nextID++
	return r.user()
}

// Users returns the stored users ordered by id.
func (s *Server) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// PasswordMatches reports whether the stored password of id equals password.
func (s *Server) PasswordMatches(id models.UserID, password string) bool {
	n, err := strconv.Atoi(id.String())
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.users[n]
	return ok && bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)) == nil
}

// ExpireTokens invalidates every token issued so far.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// FailNext makes the next request matching method and path answer with
// status and message instead of being served.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request for method and path.
func (s *Server) LastRequest(method, path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if r := s.requests[i]; r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Request{}, false
}

// CountRequests counts received requests for method and path.
func (s *Server) CountRequests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Handler returns the HTTP surface of the fake.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.With(httprate.LimitByIP(s.loginLimit, time.Minute)).Post("/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/users", s.list)
		r.Get("/users/{id}", s.get)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/users", s.create)
			r.Put("/users/{id}", s.update)
			r.Delete("/users/{id}", s.delete)
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		s.mu.Unlock()

		s.log.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get("X-Request-ID"),
		)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		f, ok := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()

		if ok {
			respondError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) issueToken(r record) (string, error) {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()
	return GenerateToken(r.id, r.email, gen, s.secret, s.ttl)
}

type ctxUserKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c, err := ParseToken(raw, s.secret)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		id, err := c.UserID()
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		s.mu.Lock()
		current := s.generation
		_, exists := s.users[id]
		s.mu.Unlock()
		if c.Generation != current || !exists {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), id)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := caller(r.Context())
		s.mu.Lock()
		u, ok := s.users[id]
		isAdmin := ok && u.userType == models.TypeAdmin
		s.mu.Unlock()

		if !isAdmin {
			respondError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	var (
		found record
		ok    bool
	)
	for _, u := range s.users {
		if u.email == req.Email {
			found, ok = *u, true
			break
		}
	}
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(found.passwordHash, []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "Falha ao fazer login")
		return
	}

	token, err := s.issueToken(found)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.Users())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	rec, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rec.user())
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var d models.UserDraft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Email) == "" || d.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(d.Password), bcrypt.MinCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	if s.emailTakenLocked(d.Email, 0) {
		s.mu.Unlock()
		respondError(w, http.StatusConflict, "Email already in use")
		return
	}
	u := s.addUserLocked(d.Name, d.Email, hash, d.Type)
	s.mu.Unlock()

	respondJSON(w, http.StatusCreated, u)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	rec, err := s.lookup(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	var p models.UpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Email) == "" {
		respondError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if p.Password != nil && *p.Password == "" {
		respondError(w, http.StatusBadRequest, "password must not be empty")
		return
	}
	var hash []byte
	if p.Password != nil {
		hash, err = bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.MinCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	s.mu.Lock()
	stored, ok := s.users[rec.id]
	if !ok {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, errUserNotFound.Error())
		return
	}
	if s.emailTakenLocked(p.Email, rec.id) {
		s.mu.Unlock()
		respondError(w, http.StatusConflict, "Email already in use")
		return
	}
	stored.name, stored.email, stored.userType = p.Name, p.Email, p.Type.Normalize()
	if hash != nil {
		stored.passwordHash = hash
	}
	u := stored.user()
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, u)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, errUserNotFound.Error())
		return
	}

	s.mu.Lock()
	rec, ok := s.users[id]
	switch {
	case !ok:
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, errUserNotFound.Error())
		return
	case rec.user().ID.IsProtected():
		s.mu.Unlock()
		respondError(w, http.StatusForbidden, "Cannot delete the primary admin user")
		return
	}
	delete(s.users, id)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

var errUserNotFound = errors.New("User not found")

// lookup returns a copy of the stored record, taken under the lock.
func (s *Server) lookup(raw string) (record, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return record{}, errUserNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return record{}, errUserNotFound
	}
	return *rec, nil
}

func (s *Server) emailTakenLocked(email string, except int) bool {
	for id, u := range s.users {
		if id != except && strings.EqualFold(u.email, email) {
			return true
		}
	}
	return false
}

func (s *Server) sortedLocked() []models.User {
	ids := make([]int, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.users[id].user())
	}
	return out
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// String is handy in test failure output.
func (r Request) String() string {
	return fmt.Sprintf("%s %s %s", r.Method, r.Path, r.Body)
}
