package usecase

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/kedai/backoffice-service/internal/auth"
	"github.com/kedai/backoffice-service/internal/model"
	"github.com/kedai/backoffice-service/internal/user"
	"github.com/kedai/backoffice-service/internal/user/dto"
	"github.com/kedai/backoffice-service/pkg/logger"
)

type userUseCase struct {
	repo   user.Repository
	jwt    *auth.JWTManager
	logger logger.ZapLogger
}

func NewUserUseCase(repo user.Repository, jwt *auth.JWTManager, log logger.ZapLogger) user.UseCase {
	return &userUseCase{repo: repo, jwt: jwt, logger: log}
}

func (uc *userUseCase) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, user.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, user.ErrInvalidCredentials
	}

	token, err := uc.jwt.Generate(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (uc *userUseCase) ListUsers(ctx context.Context, filters *dto.UserFilters) ([]model.User, int, error) {
	users, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := filterUsers(users, filters)
	total := len(filtered)

	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filters.PageSize
		if start > total {
			start = total
		}
		end := start + filters.PageSize
		if end > total {
			end = total
		}
		filtered = filtered[start:end]
	}

	return filtered, total, nil
}

// filterUsers applies the dashboard's search and role filters over a full
// snapshot, mirroring the derived-view style of the low-stock filter.
func filterUsers(users []model.User, filters *dto.UserFilters) []model.User {
	query := strings.ToLower(filters.SearchQuery)
	var out []model.User
	for _, u := range users {
		if query != "" &&
			!strings.Contains(strings.ToLower(u.Name), query) &&
			!strings.Contains(strings.ToLower(u.Email), query) {
			continue
		}
		if filters.Role != "" && u.Role != filters.Role {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (uc *userUseCase) ChangeRole(ctx context.Context, id, role string) (*model.User, error) {
	if !model.IsValidRole(role) {
		return nil, user.ErrInvalidRole
	}

	if err := uc.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}

	u, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (uc *userUseCase) WatchUsers(ctx context.Context) (<-chan []model.User, error) {
	return uc.repo.Watch(ctx)
}
