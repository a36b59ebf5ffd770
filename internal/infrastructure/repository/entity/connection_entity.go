package entity

import (
	"time"

	"store-generator/internal/domain"
)

// MongoConnectionDoc represents a Shopify connection in MongoDB
type MongoConnectionDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"userId"`
	ShopDomain  string    `bson:"shopDomain"`
	AccessToken string    `bson:"accessToken"` // encrypted
	Scopes      []string  `bson:"scopes"`
	Active      bool      `bson:"active"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoConnectionDoc) ToDomain() *domain.ExternalConnection {
	return &domain.ExternalConnection{
		ID:          d.ID,
		UserID:      d.UserID,
		ShopDomain:  d.ShopDomain,
		AccessToken: d.AccessToken,
		Scopes:      d.Scopes,
		Active:      d.Active,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoConnectionDocFromDomain converts a domain entity to a MongoDB document
func MongoConnectionDocFromDomain(conn *domain.ExternalConnection) *MongoConnectionDoc {
	return &MongoConnectionDoc{
		ID:          conn.ID,
		UserID:      conn.UserID,
		ShopDomain:  conn.ShopDomain,
		AccessToken: conn.AccessToken,
		Scopes:      conn.Scopes,
		Active:      conn.Active,
		CreatedAt:   conn.CreatedAt,
		UpdatedAt:   conn.UpdatedAt,
	}
}
