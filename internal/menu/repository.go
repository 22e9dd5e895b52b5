package menu

import (
	"context"
	"io"

	"github.com/kedai/backoffice-service/internal/menu/dto"
	"github.com/kedai/backoffice-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, item *model.MenuItem) error
	FindByID(ctx context.Context, id string) (*model.MenuItem, error)
	FindAll(ctx context.Context, filters *dto.MenuFilters) ([]model.MenuItem, int, error)
	FindTopSelling(ctx context.Context, limit int) ([]model.MenuItem, error)

	// Replace overwrites the whole document (full-record edit).
	Replace(ctx context.Context, item *model.MenuItem) error
	SetImageURL(ctx context.Context, id, url string) error

	// Delete returns ErrNotFound when the item is already gone.
	Delete(ctx context.Context, id string) error

	// Watch emits a full collection snapshot after every change. The channel
	// is closed when ctx is done or the underlying stream fails.
	Watch(ctx context.Context) (<-chan []model.MenuItem, error)
}

// ImageStore uploads a menu image and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}
