// Package nav defines the client's routes and the Navigator that moves
// between them.
package nav

import (
	"strings"
	"sync"

	"github.com/dmitrijs2005/usermgr/internal/client/models"
)

// Route is a location in the client, e.g. "/users/3".
type Route string

const (
	Home   Route = "/"
	SignIn Route = "/signin"
	Users  Route = "/users"
)

// UserRoute is the edit route of one user.
func UserRoute(id models.UserID) Route {
	return Route(string(Users) + "/" + id.String())
}

// UserID returns the id of an edit route, or false for any other route.
func (r Route) UserID() (models.UserID, bool) {
	rest, ok := strings.CutPrefix(string(r), string(Users)+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return models.UserID(rest), true
}

// Parse maps user input to a known route. Unknown paths are reported as not
// ok.
func Parse(s string) (Route, bool) {
	s = strings.TrimSpace(s)
	if s != "/" {
		s = strings.TrimRight(s, "/")
	}
	r := Route(s)
	switch r {
	case Home, SignIn, Users:
		return r, true
	}
	if _, ok := r.UserID(); ok {
		return r, true
	}
	return "", false
}

// Navigator changes the current route.
type Navigator interface {
	Navigate(Route)
}

// Router is an in-memory Navigator that remembers the current route and the
// history of visited ones.
type Router struct {
	mu      sync.Mutex
	current Route
	history []Route
}

// NewRouter starts at initial.
func NewRouter(initial Route) *Router {
	return &Router{current: initial}
}

func (r *Router) Navigate(to Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = to
	r.history = append(r.history, to)
}

// Current returns the route last navigated to.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns every Navigate call in order.
func (r *Router) History() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.history...)
}
