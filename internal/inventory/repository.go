package inventory

import (
	"context"

	"github.com/kedai/backoffice-service/internal/inventory/dto"
	"github.com/kedai/backoffice-service/internal/model"
)

// Repository reads and writes the stock counter on menu documents and keeps
// the movement audit trail.
type Repository interface {
	FindItem(ctx context.Context, id string) (*model.MenuItem, error)
	FindAllItems(ctx context.Context) ([]model.MenuItem, error)

	// UpdateStock overwrites the counter with the caller-computed value.
	// This is a plain write, not an atomic increment; see the usecase.
	UpdateStock(ctx context.Context, id string, stock int) error
	IncrementSold(ctx context.Context, id string, qty int) error

	LogMovement(ctx context.Context, movement *model.StockMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
