package inventory

import (
	"context"

	"github.com/kedai/backoffice-service/internal/inventory/dto"
	"github.com/kedai/backoffice-service/internal/model"
)

type UseCase interface {
	// Single-step variants, delta is always ±1.
	IncrementStock(ctx context.Context, itemID, actorID string) (*model.MenuItem, error)
	DecrementStock(ctx context.Context, itemID, actorID string) (*model.MenuItem, error)

	// Bulk variant with an explicit direction and positive magnitude.
	BulkAdjustStock(ctx context.Context, input *dto.BulkAdjustInput) (*model.MenuItem, error)

	// ApplySale decrements stock and bumps the sold counter for one order line.
	ApplySale(ctx context.Context, input *dto.SaleInput) error

	ListLowStock(ctx context.Context) ([]model.MenuItem, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
