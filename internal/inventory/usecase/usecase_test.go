package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedai/backoffice-service/internal/inventory"
	"github.com/kedai/backoffice-service/internal/inventory/dto"
	"github.com/kedai/backoffice-service/internal/model"
	"github.com/kedai/backoffice-service/pkg/logger"
)

type mockRepository struct {
	m         sync.Mutex
	items     map[string]*model.MenuItem
	movements []model.StockMovement
	sold      map[string]int

	// staleStock, when set, makes every read observe the same stock value
	// regardless of intervening writes.
	staleStock  *int
	findErr     error
	updateErr   error
	movementErr error
}

func newMockRepository(items ...*model.MenuItem) *mockRepository {
	m := &mockRepository{items: map[string]*model.MenuItem{}, sold: map[string]int{}}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *mockRepository) FindItem(_ context.Context, id string) (*model.MenuItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	clone := *item
	if m.staleStock != nil {
		clone.Stock = *m.staleStock
	}
	return &clone, nil
}

func (m *mockRepository) FindAllItems(context.Context) ([]model.MenuItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var items []model.MenuItem
	for _, item := range m.items {
		items = append(items, *item)
	}
	return items, nil
}

func (m *mockRepository) UpdateStock(_ context.Context, id string, stock int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	item, ok := m.items[id]
	if !ok {
		return inventory.ErrItemNotFound
	}
	item.Stock = stock
	return nil
}

func (m *mockRepository) IncrementSold(_ context.Context, id string, qty int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.items[id]; !ok {
		return inventory.ErrItemNotFound
	}
	m.sold[id] += qty
	return nil
}

func (m *mockRepository) LogMovement(_ context.Context, movement *model.StockMovement) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.movementErr != nil {
		return m.movementErr
	}
	m.movements = append(m.movements, *movement)
	return nil
}

func (m *mockRepository) ListMovements(context.Context, *dto.MovementFilters) ([]model.StockMovement, int, error) {
	m.m.Lock()
	defer m.m.Unlock()
	return m.movements, len(m.movements), nil
}

func testLogger() logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{Level: "fatal", Encoding: "console"})
}

func menuItem(id string, stock int) *model.MenuItem {
	return &model.MenuItem{BaseModel: model.BaseModel{ID: id}, Name: id, Stock: stock}
}

func TestClampStock(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		delta    int
		expected int
	}{
		{"increment from zero", 0, 1, 1},
		{"increment adds exactly", 7, 5, 12},
		{"decrement stays positive", 5, -2, 3},
		{"decrement clamps at zero", 3, -10, 0},
		{"decrement to exactly zero", 4, -4, 0},
		{"zero delta", 9, 0, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clampStock(tt.current, tt.delta))
		})
	}
}

func TestIncrementStock(t *testing.T) {
	repo := newMockRepository(menuItem("espresso", 4))
	uc := NewInventoryUseCase(repo, testLogger())

	item, err := uc.IncrementStock(context.Background(), "espresso", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 5, item.Stock)
	assert.Equal(t, 5, repo.items["espresso"].Stock)
}

func TestDecrementStockClampsAtZero(t *testing.T) {
	repo := newMockRepository(menuItem("espresso", 0))
	uc := NewInventoryUseCase(repo, testLogger())

	item, err := uc.DecrementStock(context.Background(), "espresso", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 0, item.Stock)
}

func TestAdjustStockItemMissing(t *testing.T) {
	repo := newMockRepository()
	uc := NewInventoryUseCase(repo, testLogger())

	_, err := uc.IncrementStock(context.Background(), "gone", "admin-1")
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)
}

func TestAdjustStockRecordsMovement(t *testing.T) {
	repo := newMockRepository(menuItem("espresso", 8))
	uc := NewInventoryUseCase(repo, testLogger())

	_, err := uc.DecrementStock(context.Background(), "espresso", "admin-1")
	require.NoError(t, err)

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	assert.Equal(t, "espresso", m.MenuItemID)
	assert.Equal(t, -1, m.Delta)
	assert.Equal(t, 8, m.StockBefore)
	assert.Equal(t, 7, m.StockAfter)
	assert.Equal(t, "manual", m.Reason)
	assert.Equal(t, "admin-1", m.ActorID)
}

func TestAdjustStockSurvivesMovementLogFailure(t *testing.T) {
	repo := newMockRepository(menuItem("espresso", 8))
	repo.movementErr = errors.New("audit collection down")
	uc := NewInventoryUseCase(repo, testLogger())

	item, err := uc.DecrementStock(context.Background(), "espresso", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 7, item.Stock)
}

func TestBulkAdjustStock(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		direction string
		amount    int
		expected  int
		wantErr   error
	}{
		{"add", 5, dto.DirectionAdd, 10, 15, nil},
		{"remove", 20, dto.DirectionRemove, 5, 15, nil},
		{"remove clamps at zero", 3, dto.DirectionRemove, 50, 0, nil},
		{"zero amount rejected", 5, dto.DirectionAdd, 0, 5, inventory.ErrInvalidAdjustment},
		{"negative amount rejected", 5, dto.DirectionRemove, -2, 5, inventory.ErrInvalidAdjustment},
		{"unknown direction rejected", 5, "sideways", 2, 5, inventory.ErrInvalidAdjustment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository(menuItem("espresso", tt.start))
			uc := NewInventoryUseCase(repo, testLogger())

			item, err := uc.BulkAdjustStock(context.Background(), &dto.BulkAdjustInput{
				ItemID:    "espresso",
				Direction: tt.direction,
				Amount:    tt.amount,
				ActorID:   "admin-1",
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.expected, repo.items["espresso"].Stock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, item.Stock)
		})
	}
}

func TestApplySale(t *testing.T) {
	repo := newMockRepository(menuItem("espresso", 10))
	uc := NewInventoryUseCase(repo, testLogger())

	err := uc.ApplySale(context.Background(), &dto.SaleInput{
		ItemID:   "espresso",
		Quantity: 3,
		OrderID:  "order-42",
	})
	require.NoError(t, err)

	assert.Equal(t, 7, repo.items["espresso"].Stock)
	assert.Equal(t, 3, repo.sold["espresso"])
	require.Len(t, repo.movements, 1)
	assert.Equal(t, "sale", repo.movements[0].Reason)
	assert.Equal(t, "order-42", repo.movements[0].ReferenceID)
}

func TestListLowStockBoundary(t *testing.T) {
	repo := newMockRepository(
		menuItem("a", 3),
		menuItem("b", 15),
		menuItem("c", 9),
		menuItem("d", 10),
	)
	uc := NewInventoryUseCase(repo, testLogger())

	low, err := uc.ListLowStock(context.Background())
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, item := range low {
		ids[item.ID] = true
	}
	// threshold is stock < 10: the boundary value 10 stays out
	assert.Equal(t, map[string]bool{"a": true, "c": true}, ids)
}

// TestConcurrentDecrementsLoseUpdates documents the lost-update window of the
// read-then-write mutation: two mutators that observe the same snapshot both
// write the same result, and one decrement disappears. This is the current
// behavior, not an endorsement of it.
func TestConcurrentDecrementsLoseUpdates(t *testing.T) {
	repo := newMockRepository(menuItem("espresso", 5))
	stale := 5
	repo.staleStock = &stale
	uc := NewInventoryUseCase(repo, testLogger())

	_, err := uc.DecrementStock(context.Background(), "espresso", "admin-1")
	require.NoError(t, err)
	_, err = uc.DecrementStock(context.Background(), "espresso", "admin-2")
	require.NoError(t, err)

	// Two decrements from 5, yet the counter lands on 4.
	assert.Equal(t, 4, repo.items["espresso"].Stock)
}
