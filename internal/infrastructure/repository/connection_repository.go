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

// MongoConnectionRepository implements ConnectionRepository using MongoDB
type MongoConnectionRepository struct {
	collection *mongo.Collection
}

// NewMongoConnectionRepository creates a new MongoDB connection repository
func NewMongoConnectionRepository(db *mongo.Database) ports.ConnectionRepository {
	return &MongoConnectionRepository{
		collection: db.Collection(CollectionConnections),
	}
}

// Upsert creates or replaces the connection for (userId, shopDomain). Reconnecting
// keeps the original id and creation time.
func (r *MongoConnectionRepository) Upsert(ctx context.Context, conn *domain.ExternalConnection) error {
	doc := entity.MongoConnectionDocFromDomain(conn)
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"userId": doc.UserID, "shopDomain": doc.ShopDomain}
	update := bson.M{
		"$set": bson.M{
			"accessToken": doc.AccessToken,
			"scopes":      doc.Scopes,
			"active":      true,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"_id":       doc.ID,
			"createdAt": doc.CreatedAt,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}
	return nil
}

// GetActive retrieves the active connection of a user for a shop
func (r *MongoConnectionRepository) GetActive(ctx context.Context, userID, shopDomain string) (*domain.ExternalConnection, error) {
	var doc entity.MongoConnectionDoc
	filter := bson.M{
		"userId":     userID,
		"shopDomain": shopDomain,
		"active":     true,
	}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	return doc.ToDomain(), nil
}

// ListByUser retrieves every connection of a user
func (r *MongoConnectionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ExternalConnection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer cursor.Close(ctx)

	conns := []*domain.ExternalConnection{}
	for cursor.Next(ctx) {
		var doc entity.MongoConnectionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode connection: %w", err)
		}
		conns = append(conns, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return conns, nil
}

// DeactivateByShop marks every connection to a shop inactive
func (r *MongoConnectionRepository) DeactivateByShop(ctx context.Context, shopDomain string) (int64, error) {
	filter := bson.M{"shopDomain": shopDomain, "active": true}
	update := bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate connections: %w", err)
	}
	return result.ModifiedCount, nil
}

// Delete deletes the connection of a user for a shop
func (r *MongoConnectionRepository) Delete(ctx context.Context, userID, shopDomain string) error {
	filter := bson.M{"userId": userID, "shopDomain": shopDomain}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.NewError(domain.KindNotFound, "connection not found", nil)
	}
	return nil
}
