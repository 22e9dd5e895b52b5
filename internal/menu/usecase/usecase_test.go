package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedai/backoffice-service/internal/cart"
	"github.com/kedai/backoffice-service/internal/menu"
	"github.com/kedai/backoffice-service/internal/menu/dto"
	"github.com/kedai/backoffice-service/internal/model"
	"github.com/kedai/backoffice-service/pkg/logger"
)

type mockMenuRepository struct {
	m     sync.Mutex
	items map[string]*model.MenuItem

	deleteErr   error
	deleteCalls int
}

func newMockMenuRepository(items ...*model.MenuItem) *mockMenuRepository {
	m := &mockMenuRepository{items: map[string]*model.MenuItem{}}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *mockMenuRepository) Create(_ context.Context, item *model.MenuItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *mockMenuRepository) FindByID(_ context.Context, id string) (*model.MenuItem, error) {
	m.m.Lock()
	defer m.m.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	clone := *item
	return &clone, nil
}

func (m *mockMenuRepository) FindAll(context.Context, *dto.MenuFilters) ([]model.MenuItem, int, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var items []model.MenuItem
	for _, item := range m.items {
		items = append(items, *item)
	}
	return items, len(items), nil
}

func (m *mockMenuRepository) FindTopSelling(context.Context, int) ([]model.MenuItem, error) {
	return nil, nil
}

func (m *mockMenuRepository) Replace(_ context.Context, item *model.MenuItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return menu.ErrNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockMenuRepository) SetImageURL(_ context.Context, id, url string) error {
	m.m.Lock()
	defer m.m.Unlock()
	item, ok := m.items[id]
	if !ok {
		return menu.ErrNotFound
	}
	item.ImageURL = url
	return nil
}

func (m *mockMenuRepository) Delete(_ context.Context, id string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.items[id]; !ok {
		return menu.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockMenuRepository) Watch(context.Context) (<-chan []model.MenuItem, error) {
	ch := make(chan []model.MenuItem)
	close(ch)
	return ch, nil
}

type mockCartRepository struct {
	m     sync.Mutex
	carts map[string]*model.Cart

	findAllCalls int
	applyCalls   int
	findAllErr   error
	applyErr     error
}

func newMockCartRepository(carts ...*model.Cart) *mockCartRepository {
	m := &mockCartRepository{carts: map[string]*model.Cart{}}
	for _, c := range carts {
		m.carts[c.ID] = c
	}
	return m
}

func (m *mockCartRepository) FindAll(context.Context) ([]model.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.findAllCalls++
	if m.findAllErr != nil {
		return nil, m.findAllErr
	}
	var carts []model.Cart
	for _, c := range m.carts {
		clone := *c
		clone.Items = append([]model.CartItem(nil), c.Items...)
		carts = append(carts, clone)
	}
	return carts, nil
}

// ApplyItemUpdates mirrors the transactional contract: on error nothing is
// written.
func (m *mockCartRepository) ApplyItemUpdates(_ context.Context, updates []cart.ItemsUpdate) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.applyCalls++
	if m.applyErr != nil {
		return m.applyErr
	}
	for _, u := range updates {
		c, ok := m.carts[u.CartID]
		if !ok {
			return errors.New("unknown cart " + u.CartID)
		}
		c.Items = u.Items
	}
	return nil
}

func (m *mockCartRepository) CreateIndexes(context.Context) error { return nil }

func (m *mockCartRepository) itemIDs(cartID string) []string {
	m.m.Lock()
	defer m.m.Unlock()
	var ids []string
	for _, item := range m.carts[cartID].Items {
		ids = append(ids, item.MenuItemID)
	}
	return ids
}

func testLogger() logger.ZapLogger {
	return logger.NewZapLogger(&logger.ZapLoggerConfig{Level: "fatal", Encoding: "console"})
}

func newTestUseCase(repo *mockMenuRepository, carts *mockCartRepository) menu.UseCase {
	return NewMenuUseCase(repo, carts, nil, nil, nil, "menuImages", testLogger())
}

func cartRef(menuItemID string) model.CartItem {
	return model.CartItem{MenuItemID: menuItemID, Name: menuItemID, Price: 2.5, Quantity: 1}
}

func cartWith(id string, items ...model.CartItem) *model.Cart {
	return &model.Cart{ID: id, UserID: "user-" + id, Items: items}
}

func TestCreateMenuItemAssignsIdentity(t *testing.T) {
	repo := newMockMenuRepository()
	uc := newTestUseCase(repo, newMockCartRepository())

	item, err := uc.CreateMenuItem(context.Background(), &dto.CreateMenuItemInput{
		Name:     "Espresso",
		Category: "coffee",
		Price:    2.5,
		Stock:    12,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)
	assert.Contains(t, repo.items, item.ID)
}

func TestGetMenuItemNotFound(t *testing.T) {
	uc := newTestUseCase(newMockMenuRepository(), newMockCartRepository())

	_, err := uc.GetMenuItem(context.Background(), "missing")
	assert.ErrorIs(t, err, menu.ErrNotFound)
}

func TestUpdateMenuItemNotFound(t *testing.T) {
	uc := newTestUseCase(newMockMenuRepository(), newMockCartRepository())

	_, err := uc.UpdateMenuItem(context.Background(), &dto.UpdateMenuItemInput{
		ID:    "missing",
		Name:  "Espresso",
		Price: 2.5,
	})
	assert.ErrorIs(t, err, menu.ErrNotFound)
}

func TestDeleteMenuItemNoReferencingCarts(t *testing.T) {
	repo := newMockMenuRepository(&model.MenuItem{BaseModel: model.BaseModel{ID: "m1"}, Name: "Espresso"})
	carts := newMockCartRepository(cartWith("c4", cartRef("other")))
	uc := newTestUseCase(repo, carts)

	result, err := uc.DeleteMenuItem(context.Background(), "m1")
	require.NoError(t, err)

	assert.True(t, result.Deleted)
	assert.Equal(t, 1, result.CartsScanned)
	assert.Equal(t, 0, result.CartsUpdated)
	assert.NoError(t, result.CleanupErr)
	// no staged updates means the batch write never runs
	assert.Equal(t, 0, carts.applyCalls)
}

func TestDeleteMenuItemCleansExactlyReferencingCarts(t *testing.T) {
	repo := newMockMenuRepository(&model.MenuItem{BaseModel: model.BaseModel{ID: "m1"}, Name: "Espresso"})
	carts := newMockCartRepository(
		cartWith("c1", cartRef("m1"), cartRef("x")),
		cartWith("c2", cartRef("m1"), cartRef("m1")),
		cartWith("c3", cartRef("y"), cartRef("m1")),
		cartWith("c4", cartRef("z")),
	)
	uc := newTestUseCase(repo, carts)

	result, err := uc.DeleteMenuItem(context.Background(), "m1")
	require.NoError(t, err)

	assert.True(t, result.Deleted)
	assert.Equal(t, 4, result.CartsScanned)
	assert.Equal(t, 3, result.CartsUpdated)
	assert.NoError(t, result.CleanupErr)

	assert.Equal(t, []string{"x"}, carts.itemIDs("c1"))
	// only the first occurrence is removed; the duplicate stays behind
	assert.Equal(t, []string{"m1"}, carts.itemIDs("c2"))
	assert.Equal(t, []string{"y"}, carts.itemIDs("c3"))
	assert.Equal(t, []string{"z"}, carts.itemIDs("c4"))
}

func TestDeleteMenuItemDeletionFailureSkipsCleanup(t *testing.T) {
	repo := newMockMenuRepository(&model.MenuItem{BaseModel: model.BaseModel{ID: "m1"}})
	repo.deleteErr = errors.New("write conflict")
	carts := newMockCartRepository(cartWith("c1", cartRef("m1")))
	uc := newTestUseCase(repo, carts)

	_, err := uc.DeleteMenuItem(context.Background(), "m1")
	require.Error(t, err)

	// carts are never touched when the deletion itself fails
	assert.Equal(t, 0, carts.findAllCalls)
	assert.Equal(t, 0, carts.applyCalls)
}

func TestDeleteMenuItemScanFailureReportedSeparately(t *testing.T) {
	repo := newMockMenuRepository(&model.MenuItem{BaseModel: model.BaseModel{ID: "m1"}})
	carts := newMockCartRepository()
	carts.findAllErr = errors.New("cursor timeout")
	uc := newTestUseCase(repo, carts)

	result, err := uc.DeleteMenuItem(context.Background(), "m1")
	require.NoError(t, err)

	// the item is gone even though the cleanup never ran
	assert.True(t, result.Deleted)
	assert.NotContains(t, repo.items, "m1")
	assert.Error(t, result.CleanupErr)
	assert.Equal(t, 0, result.CartsUpdated)
}

func TestDeleteMenuItemBatchFailureLeavesCartsUntouched(t *testing.T) {
	repo := newMockMenuRepository(&model.MenuItem{BaseModel: model.BaseModel{ID: "m1"}})
	carts := newMockCartRepository(
		cartWith("c1", cartRef("m1")),
		cartWith("c2", cartRef("m1"), cartRef("x")),
	)
	carts.applyErr = errors.New("transaction aborted")
	uc := newTestUseCase(repo, carts)

	result, err := uc.DeleteMenuItem(context.Background(), "m1")
	require.NoError(t, err)

	assert.True(t, result.Deleted)
	assert.Error(t, result.CleanupErr)
	assert.Equal(t, 0, result.CartsUpdated)
	assert.Equal(t, []string{"m1"}, carts.itemIDs("c1"))
	assert.Equal(t, []string{"m1", "x"}, carts.itemIDs("c2"))
}

func TestStaleRefUpdatesIdempotent(t *testing.T) {
	carts := []model.Cart{
		*cartWith("c1", cartRef("m1"), cartRef("x")),
		*cartWith("c2", cartRef("y")),
	}

	first := staleRefUpdates(carts, "m1")
	require.Len(t, first, 1)
	assert.Equal(t, "c1", first[0].CartID)

	// re-running over the cleaned state stages nothing
	carts[0].Items = first[0].Items
	second := staleRefUpdates(carts, "m1")
	assert.Empty(t, second)
}

func TestRemoveFirstRef(t *testing.T) {
	items := []model.CartItem{cartRef("a"), cartRef("m1"), cartRef("b"), cartRef("m1")}

	updated, removed := removeFirstRef(items, "m1")
	require.True(t, removed)
	require.Len(t, updated, 3)
	assert.Equal(t, "a", updated[0].MenuItemID)
	assert.Equal(t, "b", updated[1].MenuItemID)
	assert.Equal(t, "m1", updated[2].MenuItemID)

	same, removed := removeFirstRef(items, "nope")
	assert.False(t, removed)
	assert.Equal(t, items, same)
}

func TestAttachImageWithoutStorage(t *testing.T) {
	repo := newMockMenuRepository(&model.MenuItem{BaseModel: model.BaseModel{ID: "m1"}, Name: "Espresso"})
	uc := newTestUseCase(repo, newMockCartRepository())

	_, err := uc.AttachImage(context.Background(), "m1", "image/png", nil)
	assert.Error(t, err)
}
