package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kedai/backoffice-service/internal/inventory"
	"github.com/kedai/backoffice-service/internal/inventory/dto"
	"github.com/kedai/backoffice-service/internal/model"
	"github.com/kedai/backoffice-service/pkg/logger"
)

// Items with stock below this threshold show up in the low-stock view.
const LowStockThreshold = 10

const (
	reasonManual = "manual"
	reasonBulk   = "bulk"
	reasonSale   = "sale"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{repo: repo, logger: log}
}

func (uc *inventoryUseCase) IncrementStock(ctx context.Context, itemID, actorID string) (*model.MenuItem, error) {
	return uc.adjust(ctx, itemID, 1, reasonManual, "", actorID)
}

func (uc *inventoryUseCase) DecrementStock(ctx context.Context, itemID, actorID string) (*model.MenuItem, error) {
	return uc.adjust(ctx, itemID, -1, reasonManual, "", actorID)
}

func (uc *inventoryUseCase) BulkAdjustStock(ctx context.Context, input *dto.BulkAdjustInput) (*model.MenuItem, error) {
	if input.Amount <= 0 {
		return nil, inventory.ErrInvalidAdjustment
	}

	var delta int
	switch input.Direction {
	case dto.DirectionAdd:
		delta = input.Amount
	case dto.DirectionRemove:
		delta = -input.Amount
	default:
		return nil, inventory.ErrInvalidAdjustment
	}

	return uc.adjust(ctx, input.ItemID, delta, reasonBulk, "", input.ActorID)
}

func (uc *inventoryUseCase) ApplySale(ctx context.Context, input *dto.SaleInput) error {
	if input.Quantity <= 0 {
		return inventory.ErrInvalidAdjustment
	}

	if _, err := uc.adjust(ctx, input.ItemID, -input.Quantity, reasonSale, input.OrderID, "system"); err != nil {
		return err
	}
	return uc.repo.IncrementSold(ctx, input.ItemID, input.Quantity)
}

// adjust performs a plain read-then-write on the stock counter. Two
// concurrent adjustments can both observe the same value and the last write
// wins; that lost-update window is the accepted behavior of this workflow.
func (uc *inventoryUseCase) adjust(ctx context.Context, itemID string, delta int, reason, referenceID, actorID string) (*model.MenuItem, error) {
	item, err := uc.repo.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, inventory.ErrItemNotFound
	}

	before := item.Stock
	after := clampStock(before, delta)

	if err := uc.repo.UpdateStock(ctx, itemID, after); err != nil {
		return nil, err
	}
	item.Stock = after

	movement := &model.StockMovement{
		ID:          uuid.New().String(),
		MenuItemID:  itemID,
		Delta:       delta,
		StockBefore: before,
		StockAfter:  after,
		Reason:      reason,
		ReferenceID: referenceID,
		ActorID:     actorID,
		CreatedAt:   time.Now(),
	}
	if err := uc.repo.LogMovement(ctx, movement); err != nil {
		// The counter write already succeeded; a missing audit row is not
		// worth failing the whole adjustment over.
		uc.logger.Error("failed to log stock movement",
			zap.String("menu_item_id", itemID),
			zap.Int("delta", delta),
			zap.Error(err),
		)
	}

	return item, nil
}

// clampStock never lets the counter go negative.
func clampStock(current, delta int) int {
	next := current + delta
	if next < 0 {
		return 0
	}
	return next
}

func (uc *inventoryUseCase) ListLowStock(ctx context.Context) ([]model.MenuItem, error) {
	items, err := uc.repo.FindAllItems(ctx)
	if err != nil {
		return nil, err
	}
	return filterLowStock(items), nil
}

// filterLowStock is a pure derived view over a snapshot; nothing is persisted.
func filterLowStock(items []model.MenuItem) []model.MenuItem {
	var low []model.MenuItem
	for _, item := range items {
		if item.Stock < LowStockThreshold {
			low = append(low, item)
		}
	}
	return low
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}
