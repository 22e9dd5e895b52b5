package user

import (
	"context"

	"github.com/kedai/backoffice-service/internal/model"
	"github.com/kedai/backoffice-service/internal/user/dto"
)

type UseCase interface {
	// Login verifies credentials and returns a signed session token.
	Login(ctx context.Context, email, password string) (string, *model.User, error)

	ListUsers(ctx context.Context, filters *dto.UserFilters) ([]model.User, int, error)
	ChangeRole(ctx context.Context, id, role string) (*model.User, error)
	WatchUsers(ctx context.Context) (<-chan []model.User, error)
}
