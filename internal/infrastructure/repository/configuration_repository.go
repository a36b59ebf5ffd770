package repository

import (
	"context"
	"fmt"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/infrastructure/repository/entity"
	"store-generator/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfigurationRepository implements ConfigurationRepository using MongoDB
type MongoConfigurationRepository struct {
	collection *mongo.Collection
}

// NewMongoConfigurationRepository creates a new MongoDB configuration repository
func NewMongoConfigurationRepository(db *mongo.Database) ports.ConfigurationRepository {
	return &MongoConfigurationRepository{
		collection: db.Collection(CollectionConfigurations),
	}
}

// Upsert saves the configuration of (userId, sourceUrl), updating it in place when it
// exists. cfg.ID and timestamps are set from the stored document.
func (r *MongoConfigurationRepository) Upsert(ctx context.Context, cfg *domain.SavedConfiguration) error {
	now := time.Now()
	filter := bson.M{"userId": cfg.UserID, "sourceUrl": cfg.SourceURL}
	update := bson.M{
		"$set": bson.M{
			"language":  cfg.Language,
			"data":      entity.MongoStoreDataDocFromDomain(cfg.Data),
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc entity.MongoConfigurationDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cfg.ID = doc.ID.Hex()
	cfg.CreatedAt = doc.CreatedAt
	cfg.UpdatedAt = doc.UpdatedAt
	return nil
}

// Get retrieves a configuration by id for a user
func (r *MongoConfigurationRepository) Get(ctx context.Context, userID, id string) (*domain.SavedConfiguration, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": objID, "userId": userID})
}

// GetBySourceURL retrieves the configuration of a source URL for a user
func (r *MongoConfigurationRepository) GetBySourceURL(ctx context.Context, userID, sourceURL string) (*domain.SavedConfiguration, error) {
	return r.findOne(ctx, bson.M{"userId": userID, "sourceUrl": sourceURL})
}

func (r *MongoConfigurationRepository) findOne(ctx context.Context, filter bson.M) (*domain.SavedConfiguration, error) {
	var doc entity.MongoConfigurationDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	return doc.ToDomain(), nil
}

// List retrieves the configurations of a user, most recently updated first
func (r *MongoConfigurationRepository) List(ctx context.Context, userID string) ([]*domain.SavedConfiguration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*domain.SavedConfiguration{}
	for cursor.Next(ctx) {
		var doc entity.MongoConfigurationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode configuration: %w", err)
		}
		items = append(items, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return items, nil
}

// Delete deletes a configuration by id for a user
func (r *MongoConfigurationRepository) Delete(ctx context.Context, userID, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.NewError(domain.KindNotFound, "configuration not found", nil)
	}
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID, "userId": userID}); err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	return nil
}
