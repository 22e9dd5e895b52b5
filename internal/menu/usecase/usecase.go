package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kedai/backoffice-service/internal/cart"
	"github.com/kedai/backoffice-service/internal/menu"
	"github.com/kedai/backoffice-service/internal/menu/dto"
	"github.com/kedai/backoffice-service/internal/model"
	"github.com/kedai/backoffice-service/pkg/cache"
	"github.com/kedai/backoffice-service/pkg/logger"
	"github.com/kedai/backoffice-service/pkg/search"
)

const menuIndex = "menu"

type menuUseCase struct {
	repo        menu.Repository
	carts       cart.Repository
	cache       *cache.RedisClient
	es          *search.Client
	images      menu.ImageStore
	imagePrefix string
	logger      logger.ZapLogger
}

func NewMenuUseCase(
	repo menu.Repository,
	carts cart.Repository,
	cacheClient *cache.RedisClient,
	es *search.Client,
	images menu.ImageStore,
	imagePrefix string,
	log logger.ZapLogger,
) menu.UseCase {
	return &menuUseCase{
		repo:        repo,
		carts:       carts,
		cache:       cacheClient,
		es:          es,
		images:      images,
		imagePrefix: imagePrefix,
		logger:      log,
	}
}

func (uc *menuUseCase) CreateMenuItem(ctx context.Context, input *dto.CreateMenuItemInput) (*model.MenuItem, error) {
	now := time.Now()
	item := &model.MenuItem{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
	}

	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), item)

	return item, nil
}

func (uc *menuUseCase) GetMenuItem(ctx context.Context, id string) (*model.MenuItem, error) {
	item, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, menu.ErrNotFound
	}
	return item, nil
}

func (uc *menuUseCase) ListMenuItems(ctx context.Context, filters *dto.MenuFilters) ([]model.MenuItem, int, error) {
	// The cache is consulted before the search path, so a search result
	// cached while elasticsearch was down keeps being served from the store
	// fallback until the next write invalidates the list keys.
	cacheKey := uc.listCacheKey(filters)
	if uc.cache != nil && cacheKey != "" {
		if val, err := uc.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var cached struct {
				Items []model.MenuItem
				Count int
			}
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached.Items, cached.Count, nil
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		items, count, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return items, count, nil
		}
		uc.logger.Error("menu search failed, falling back to store", zap.Error(err))
	}

	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if uc.cache != nil && cacheKey != "" {
		cached := struct {
			Items []model.MenuItem
			Count int
		}{Items: items, Count: count}
		if data, err := json.Marshal(cached); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	return items, count, nil
}

func (uc *menuUseCase) UpdateMenuItem(ctx context.Context, input *dto.UpdateMenuItemInput) (*model.MenuItem, error) {
	existing, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, menu.ErrNotFound
	}

	// Full-record overwrite, matching the dashboard's edit form.
	item := &model.MenuItem{
		BaseModel:   model.BaseModel{ID: existing.ID, CreatedAt: existing.CreatedAt, UpdatedAt: time.Now()},
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		Stock:       input.Stock,
		Sold:        input.Sold,
		ImageURL:    input.ImageURL,
	}
	if err := uc.repo.Replace(ctx, item); err != nil {
		return nil, err
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), item)

	return item, nil
}

// DeleteMenuItem removes the item first; only then are carts scanned. The two
// phases are not jointly atomic: a cleanup failure leaves the item deleted
// and is reported separately, without compensating rollback. The cleanup
// batch itself is all-or-nothing.
func (uc *menuUseCase) DeleteMenuItem(ctx context.Context, id string) (*dto.DeleteResult, error) {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	result := &dto.DeleteResult{Deleted: true}

	go uc.invalidateListCache(context.Background())
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), menuIndex, id); err != nil {
				uc.logger.Error("failed to remove menu item from search index", zap.Error(err))
			}
		}()
	}

	carts, err := uc.carts.FindAll(ctx)
	if err != nil {
		result.CleanupErr = fmt.Errorf("failed to scan carts: %w", err)
		uc.logger.Error("cart cleanup aborted", zap.String("menu_item_id", id), zap.Error(err))
		return result, nil
	}
	result.CartsScanned = len(carts)

	updates := staleRefUpdates(carts, id)
	if len(updates) == 0 {
		return result, nil
	}

	if err := uc.carts.ApplyItemUpdates(ctx, updates); err != nil {
		result.CleanupErr = fmt.Errorf("failed to update carts: %w", err)
		uc.logger.Error("cart cleanup batch failed", zap.String("menu_item_id", id), zap.Error(err))
		return result, nil
	}
	result.CartsUpdated = len(updates)

	return result, nil
}

// staleRefUpdates stages one update per cart that references the deleted
// item. Only the first matching entry is removed per cart; carts without a
// match are not staged at all.
func staleRefUpdates(carts []model.Cart, menuItemID string) []cart.ItemsUpdate {
	var updates []cart.ItemsUpdate
	for _, c := range carts {
		items, removed := removeFirstRef(c.Items, menuItemID)
		if removed {
			updates = append(updates, cart.ItemsUpdate{CartID: c.ID, Items: items})
		}
	}
	return updates
}

func removeFirstRef(items []model.CartItem, menuItemID string) ([]model.CartItem, bool) {
	for i, item := range items {
		if item.MenuItemID == menuItemID {
			updated := make([]model.CartItem, 0, len(items)-1)
			updated = append(updated, items[:i]...)
			updated = append(updated, items[i+1:]...)
			return updated, true
		}
	}
	return items, false
}

func (uc *menuUseCase) AttachImage(ctx context.Context, id, contentType string, body io.Reader) (string, error) {
	if uc.images == nil {
		return "", errors.New("image storage is not configured")
	}

	item, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", menu.ErrNotFound
	}

	// Keyed by item name so re-uploads replace the previous image.
	key := fmt.Sprintf("%s/%s", uc.imagePrefix, item.Name)
	url, err := uc.images.Upload(ctx, key, contentType, body)
	if err != nil {
		return "", err
	}

	if err := uc.repo.SetImageURL(ctx, id, url); err != nil {
		return "", err
	}

	item.ImageURL = url
	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), item)

	return url, nil
}

func (uc *menuUseCase) TopSelling(ctx context.Context, limit int) ([]model.MenuItem, error) {
	if limit <= 0 {
		limit = 5
	}
	return uc.repo.FindTopSelling(ctx, limit)
}

func (uc *menuUseCase) WatchMenu(ctx context.Context) (<-chan []model.MenuItem, error) {
	return uc.repo.Watch(ctx)
}

func (uc *menuUseCase) listCacheKey(filters *dto.MenuFilters) string {
	data, err := json.Marshal(filters)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("menu:list:%x", md5.Sum(data))
}

func (uc *menuUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	keys, err := uc.cache.Client.Keys(ctx, "menu:list:*").Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *menuUseCase) syncToElastic(ctx context.Context, item *model.MenuItem) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"name": { "type": "text" },
				"description": { "type": "text" },
				"category": { "type": "keyword" },
				"price": { "type": "double" },
				"stock": { "type": "integer" },
				"sold": { "type": "integer" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, menuIndex, mapping)

	if err := uc.es.Index(ctx, menuIndex, item.ID, item); err != nil {
		uc.logger.Error("failed to index menu item", zap.Error(err))
	}
}

func (uc *menuUseCase) searchElastic(ctx context.Context, filters *dto.MenuFilters) ([]model.MenuItem, int, error) {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
				"fields": []string{"name^3", "category", "description"},
			},
		},
	}
	if filters.Category != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"category": filters.Category},
		})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
	}
	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		q["from"] = (page - 1) * filters.PageSize
		q["size"] = filters.PageSize
	}

	res, err := uc.es.Search(ctx, menuIndex, q)
	if err != nil {
		return nil, 0, err
	}

	var items []model.MenuItem
	for _, hit := range res.Hits.Hits {
		var item model.MenuItem
		if err := json.Unmarshal(hit.Source, &item); err == nil {
			items = append(items, item)
		}
	}
	return items, res.Hits.Total.Value, nil
}
