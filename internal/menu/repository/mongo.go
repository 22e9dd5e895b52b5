package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kedai/backoffice-service/internal/menu"
	"github.com/kedai/backoffice-service/internal/menu/dto"
	"github.com/kedai/backoffice-service/internal/model"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("menu")}
}

func (r *MongoRepository) Create(ctx context.Context, item *model.MenuItem) error {
	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*model.MenuItem, error) {
	var item model.MenuItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // caller decides whether missing is an error
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return &item, nil
}

func (r *MongoRepository) FindAll(ctx context.Context, filters *dto.MenuFilters) ([]model.MenuItem, int, error) {
	filter := bson.M{}
	if filters.SearchQuery != "" {
		filter["name"] = bson.M{"$regex": primitive.Regex{Pattern: filters.SearchQuery, Options: "i"}}
	}
	if filters.Category != "" {
		filter["category"] = filters.Category
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count menu items: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * filters.PageSize)).SetLimit(int64(filters.PageSize))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []model.MenuItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode menu items: %w", err)
	}
	return items, int(count), nil
}

func (r *MongoRepository) FindTopSelling(ctx context.Context, limit int) ([]model.MenuItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "sold", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list top selling items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []model.MenuItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode top selling items: %w", err)
	}
	return items, nil
}

func (r *MongoRepository) Replace(ctx context.Context, item *model.MenuItem) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return fmt.Errorf("failed to replace menu item: %w", err)
	}
	if result.MatchedCount == 0 {
		return menu.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) SetImageURL(ctx context.Context, id, url string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"image_url": url}})
	if err != nil {
		return fmt.Errorf("failed to set image url: %w", err)
	}
	if result.MatchedCount == 0 {
		return menu.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if result.DeletedCount == 0 {
		return menu.ErrNotFound
	}
	return nil
}

// Watch re-lists the collection after every change event and emits the full
// snapshot, last-snapshot-wins. Consumers replace their state wholesale.
func (r *MongoRepository) Watch(ctx context.Context) (<-chan []model.MenuItem, error) {
	stream, err := r.collection.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream: %w", err)
	}

	out := make(chan []model.MenuItem, 1)
	go func() {
		defer close(out)
		defer stream.Close(context.Background())

		emit := func() {
			items, _, err := r.FindAll(ctx, &dto.MenuFilters{})
			if err != nil {
				return // next event retries the listing
			}
			pushLatest(out, items)
		}

		emit() // initial snapshot
		for stream.Next(ctx) {
			emit()
		}
	}()
	return out, nil
}

// pushLatest replaces a pending, unread snapshot instead of blocking.
func pushLatest(ch chan []model.MenuItem, snapshot []model.MenuItem) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
