package cart

import (
	"context"

	"github.com/kedai/backoffice-service/internal/model"
)

// ItemsUpdate replaces a cart's entire items array.
type ItemsUpdate struct {
	CartID string
	Items  []model.CartItem
}

type Repository interface {
	// FindAll returns every cart in the store. The cleanup workflow scans
	// all of them; there is no server-side "carts containing item" filter.
	FindAll(ctx context.Context) ([]model.Cart, error)

	// ApplyItemUpdates commits all updates atomically: either every staged
	// cart gets its new items array or none do.
	ApplyItemUpdates(ctx context.Context, updates []ItemsUpdate) error

	CreateIndexes(ctx context.Context) error
}
