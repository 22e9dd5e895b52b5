package user

import (
	"context"

	"github.com/kedai/backoffice-service/internal/model"
)

type Repository interface {
	FindAll(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateRole(ctx context.Context, id, role string) error

	// Watch emits a full collection snapshot after every change.
	Watch(ctx context.Context) (<-chan []model.User, error)
}
