package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kedai/backoffice-service/internal/cart"
	"github.com/kedai/backoffice-service/internal/model"
)

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("carts")}
}

func (r *MongoRepository) FindAll(ctx context.Context) ([]model.Cart, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	defer cursor.Close(ctx)

	var carts []model.Cart
	if err := cursor.All(ctx, &carts); err != nil {
		return nil, fmt.Errorf("failed to decode carts: %w", err)
	}
	return carts, nil
}

// ApplyItemUpdates stages one update per cart and commits them in a single
// transaction, so a mid-batch failure leaves every cart untouched.
func (r *MongoRepository) ApplyItemUpdates(ctx context.Context, updates []cart.ItemsUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(updates))
	now := time.Now()
	for _, u := range updates {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.CartID}).
			SetUpdate(bson.M{"$set": bson.M{"items": u.Items, "updated_at": now}}))
	}

	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return r.collection.BulkWrite(sessCtx, models, options.BulkWrite().SetOrdered(true))
	})
	if err != nil {
		return fmt.Errorf("failed to commit cart updates: %w", err)
	}
	return nil
}

func (r *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "items.menu_item_id", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}
