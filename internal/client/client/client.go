package client

import (
	"context"

	"github.com/dmitrijs2005/usermgr/internal/client/models"
)

// Client is the User Service API used by the workflows.
type Client interface {
	Login(ctx context.Context, email, password string) (string, error)
	List(ctx context.Context, token string) ([]models.User, error)
	Get(ctx context.Context, id models.UserID, token string) (*models.User, error)
	Create(ctx context.Context, draft models.UserDraft, token string) (*models.User, error)
	Update(ctx context.Context, id models.UserID, update models.UserUpdate, token string) (*models.User, error)
	Delete(ctx context.Context, id models.UserID, token string) error
	Close() error
}
