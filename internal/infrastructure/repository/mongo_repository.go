package repository

import (
	"context"
	"fmt"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	CollectionConfigurations = "configurations"
	CollectionDeployedStores = "deployed_stores"
	CollectionConnections    = "connections"
	CollectionExportRecords  = "export_records"
	CollectionOAuthSessions  = "oauth_sessions"
)

// EnsureIndexes creates the unique indexes the repositories rely on for their upserts,
// and the TTL index that expires pending OAuth sessions.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionConfigurations: {{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "sourceUrl", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		CollectionDeployedStores: {
			{
				Keys:    bson.D{{Key: "subdomain", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		CollectionConnections: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "shopDomain", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "shopDomain", Value: 1}}},
		},
		CollectionExportRecords: {{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "sourceUrl", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		CollectionOAuthSessions: {
			{
				Keys:    bson.D{{Key: "state", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0),
			},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// MongoSessionRepository implements SessionRepository using MongoDB
type MongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new MongoDB OAuth session repository
func NewMongoSessionRepository(db *mongo.Database) ports.SessionRepository {
	return &MongoSessionRepository{
		collection: db.Collection(CollectionOAuthSessions),
	}
}

// CreateSession stores a pending OAuth session
func (r *MongoSessionRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by its state parameter
func (r *MongoSessionRepository) GetSession(ctx context.Context, state string) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"state": state}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// DeleteSession deletes a session by its state parameter
func (r *MongoSessionRepository) DeleteSession(ctx context.Context, state string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"state": state})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
