package repository

import (
	"context"
	"fmt"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/infrastructure/repository/entity"
	"store-generator/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDeployedStoreRepository implements DeployedStoreRepository using MongoDB
type MongoDeployedStoreRepository struct {
	collection *mongo.Collection
}

// NewMongoDeployedStoreRepository creates a new MongoDB deployed store repository
func NewMongoDeployedStoreRepository(db *mongo.Database) ports.DeployedStoreRepository {
	return &MongoDeployedStoreRepository{
		collection: db.Collection(CollectionDeployedStores),
	}
}

// Upsert writes the store keyed by (subdomain, userId). A subdomain owned by another
// user makes the insert hit the unique index and is reported as ErrSubdomainTaken.
// Visit and order counters are never overwritten.
func (r *MongoDeployedStoreRepository) Upsert(ctx context.Context, store *domain.DeployedStore) error {
	now := time.Now()
	if store.CreatedAt.IsZero() {
		store.CreatedAt = now
	}
	store.UpdatedAt = now

	filter := bson.M{"subdomain": store.Subdomain, "userId": store.UserID}
	update := bson.M{
		"$set": bson.M{
			"sourceUrl": store.SourceURL,
			"data":      entity.MongoStoreDataDocFromDomain(store.Data),
			"status":    string(store.Status),
			"payment":   entity.MongoPaymentDocFromDomain(store.Payment),
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       store.ID,
			"createdAt": store.CreatedAt,
			"visits":    int64(0),
			"orders":    int64(0),
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrSubdomainTaken
	}
	if err != nil {
		return fmt.Errorf("failed to save deployed store: %w", err)
	}
	return nil
}

// GetBySubdomain retrieves a store by its subdomain, whoever owns it
func (r *MongoDeployedStoreRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.DeployedStore, error) {
	return r.findOne(ctx, bson.M{"subdomain": subdomain})
}

// Get retrieves a store by id for a user
func (r *MongoDeployedStoreRepository) Get(ctx context.Context, userID, id string) (*domain.DeployedStore, error) {
	return r.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (r *MongoDeployedStoreRepository) findOne(ctx context.Context, filter bson.M) (*domain.DeployedStore, error) {
	var doc entity.MongoDeployedStoreDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deployed store: %w", err)
	}
	return doc.ToDomain(), nil
}

// List retrieves the stores of a user, most recently updated first
func (r *MongoDeployedStoreRepository) List(ctx context.Context, userID string) ([]*domain.DeployedStore, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployed stores: %w", err)
	}
	defer cursor.Close(ctx)

	stores := []*domain.DeployedStore{}
	for cursor.Next(ctx) {
		var doc entity.MongoDeployedStoreDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode deployed store: %w", err)
		}
		stores = append(stores, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return stores, nil
}

// UpdateStatus changes the status of a store
func (r *MongoDeployedStoreRepository) UpdateStatus(ctx context.Context, userID, id string, status domain.StoreStatus) error {
	return r.updateOwned(ctx, userID, id, bson.M{"status": string(status)})
}

// UpdatePayment replaces the payment configuration of a store
func (r *MongoDeployedStoreRepository) UpdatePayment(ctx context.Context, userID, id string, payment *domain.PaymentConfig) error {
	return r.updateOwned(ctx, userID, id, bson.M{"payment": entity.MongoPaymentDocFromDomain(payment)})
}

func (r *MongoDeployedStoreRepository) updateOwned(ctx context.Context, userID, id string, set bson.M) error {
	set["updatedAt"] = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "userId": userID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update deployed store: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.NewError(domain.KindNotFound, "store not found", nil)
	}
	return nil
}

// IncrementVisits counts one storefront visit
func (r *MongoDeployedStoreRepository) IncrementVisits(ctx context.Context, subdomain string) error {
	return r.increment(ctx, subdomain, "visits")
}

// IncrementOrders counts one checkout redirect
func (r *MongoDeployedStoreRepository) IncrementOrders(ctx context.Context, subdomain string) error {
	return r.increment(ctx, subdomain, "orders")
}

func (r *MongoDeployedStoreRepository) increment(ctx context.Context, subdomain, field string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"subdomain": subdomain}, bson.M{"$inc": bson.M{field: 1}})
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}
	return nil
}

// Delete deletes a store by id for a user
func (r *MongoDeployedStoreRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete deployed store: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.NewError(domain.KindNotFound, "store not found", nil)
	}
	return nil
}
