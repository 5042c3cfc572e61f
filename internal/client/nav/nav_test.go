package nav

import (
	"testing"

	"github.com/dmitrijs2005/usermgr/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func TestUserRoute(t *testing.T) {
	r := UserRoute("42")
	assert.Equal(t, Route("/users/42"), r)

	id, ok := r.UserID()
	assert.True(t, ok)
	assert.Equal(t, models.UserID("42"), id)

	_, ok = Users.UserID()
	assert.False(t, ok)
	_, ok = Route("/users/1/x").UserID()
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Route
		ok   bool
	}{
		{"/", Home, true},
		{"/signin", SignIn, true},
		{"/users/", Users, true},
		{" /users/7 ", "/users/7", true},
		{"/admin", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRouter(t *testing.T) {
	r := NewRouter(Home)
	assert.Equal(t, Home, r.Current())
	assert.Empty(t, r.History())

	r.Navigate(SignIn)
	r.Navigate(Users)
	assert.Equal(t, Users, r.Current())
	assert.Equal(t, []Route{SignIn, Users}, r.History())
}
