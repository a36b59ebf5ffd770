package repository

import (
	"context"
	"fmt"

	"store-generator/internal/domain"
	"store-generator/internal/infrastructure/repository/entity"
	"store-generator/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoExportRecordRepository implements ExportRecordRepository using MongoDB
type MongoExportRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoExportRecordRepository creates a new MongoDB export record repository
func NewMongoExportRecordRepository(db *mongo.Database) ports.ExportRecordRepository {
	return &MongoExportRecordRepository{
		collection: db.Collection(CollectionExportRecords),
	}
}

// Upsert replaces the record of (userId, sourceUrl)
func (r *MongoExportRecordRepository) Upsert(ctx context.Context, record *domain.ExportRecord) error {
	doc := entity.MongoExportRecordDocFromDomain(record)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"userId": doc.UserID, "sourceUrl": doc.SourceURL}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save export record: %w", err)
	}
	return nil
}

// GetBySourceURL retrieves the last export of a source URL for a user
func (r *MongoExportRecordRepository) GetBySourceURL(ctx context.Context, userID, sourceURL string) (*domain.ExportRecord, error) {
	var doc entity.MongoExportRecordDoc
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "sourceUrl": sourceURL}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export record: %w", err)
	}
	return doc.ToDomain(), nil
}

// List retrieves the export records of a user, most recent first
func (r *MongoExportRecordRepository) List(ctx context.Context, userID string) ([]*domain.ExportRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "exportedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list export records: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*domain.ExportRecord{}
	for cursor.Next(ctx) {
		var doc entity.MongoExportRecordDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode export record: %w", err)
		}
		records = append(records, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return records, nil
}
