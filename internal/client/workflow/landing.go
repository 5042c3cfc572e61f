package workflow

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/usermgr/internal/client/nav"
	"github.com/dmitrijs2005/usermgr/internal/client/session"
)

const (
	LandingTitle  = "Sistema de Gestão de Usuários"
	LandingAction = "Entrar"
)

// Landing sends the user to the list when a token is stored and to sign-in
// otherwise. A storage failure counts as signed out.
func Landing(ctx context.Context, store *session.Store, n nav.Navigator) (nav.Route, error) {
	token, err := store.Token(ctx)
	if err != nil {
		n.Navigate(nav.SignIn)
		return nav.SignIn, fmt.Errorf("landing: %w", err)
	}

	to := nav.SignIn
	if token != "" {
		to = nav.Users
	}
	n.Navigate(to)
	return to, nil
}
