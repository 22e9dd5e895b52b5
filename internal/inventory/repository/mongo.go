package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kedai/backoffice-service/internal/inventory"
	"github.com/kedai/backoffice-service/internal/inventory/dto"
	"github.com/kedai/backoffice-service/internal/model"
)

type MongoRepository struct {
	menu      *mongo.Collection
	movements *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		menu:      db.Collection("menu"),
		movements: db.Collection("stock_movements"),
	}
}

func (r *MongoRepository) FindItem(ctx context.Context, id string) (*model.MenuItem, error) {
	var item model.MenuItem
	err := r.menu.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return &item, nil
}

func (r *MongoRepository) FindAllItems(ctx context.Context) ([]model.MenuItem, error) {
	cursor, err := r.menu.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []model.MenuItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode menu items: %w", err)
	}
	return items, nil
}

func (r *MongoRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	result, err := r.menu.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"stock": stock}})
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return inventory.ErrItemNotFound
	}
	return nil
}

func (r *MongoRepository) IncrementSold(ctx context.Context, id string, qty int) error {
	result, err := r.menu.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"sold": qty}})
	if err != nil {
		return fmt.Errorf("failed to increment sold counter: %w", err)
	}
	if result.MatchedCount == 0 {
		return inventory.ErrItemNotFound
	}
	return nil
}

func (r *MongoRepository) LogMovement(ctx context.Context, movement *model.StockMovement) error {
	if _, err := r.movements.InsertOne(ctx, movement); err != nil {
		return fmt.Errorf("failed to log stock movement: %w", err)
	}
	return nil
}

func (r *MongoRepository) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	filter := bson.M{}
	if filters.ItemID != "" {
		filter["menu_item_id"] = filters.ItemID
	}
	if filters.Reason != "" {
		filter["reason"] = filters.Reason
	}

	count, err := r.movements.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count stock movements: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * filters.PageSize)).SetLimit(int64(filters.PageSize))
	}

	cursor, err := r.movements.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock movements: %w", err)
	}
	defer cursor.Close(ctx)

	var movements []model.StockMovement
	if err := cursor.All(ctx, &movements); err != nil {
		return nil, 0, fmt.Errorf("failed to decode stock movements: %w", err)
	}
	return movements, int(count), nil
}
