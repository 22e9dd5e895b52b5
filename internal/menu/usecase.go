package menu

import (
	"context"
	"io"

	"github.com/kedai/backoffice-service/internal/menu/dto"
	"github.com/kedai/backoffice-service/internal/model"
)

type UseCase interface {
	CreateMenuItem(ctx context.Context, input *dto.CreateMenuItemInput) (*model.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*model.MenuItem, error)
	ListMenuItems(ctx context.Context, filters *dto.MenuFilters) ([]model.MenuItem, int, error)
	UpdateMenuItem(ctx context.Context, input *dto.UpdateMenuItemInput) (*model.MenuItem, error)

	// DeleteMenuItem deletes the item and then strips it from every cart.
	// Deletion failure aborts before any cart is read; cleanup failure is
	// reported in the result, independently of the (already final) deletion.
	DeleteMenuItem(ctx context.Context, id string) (*dto.DeleteResult, error)

	AttachImage(ctx context.Context, id, contentType string, body io.Reader) (string, error)
	TopSelling(ctx context.Context, limit int) ([]model.MenuItem, error)
	WatchMenu(ctx context.Context) (<-chan []model.MenuItem, error)
}
