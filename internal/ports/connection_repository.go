package ports

import (
	"context"

	"store-generator/internal/domain"
)

// ConnectionRepository defines persistence for Shopify connections
type ConnectionRepository interface {
	// Upsert creates or replaces the connection for (UserID, ShopDomain)
	Upsert(ctx context.Context, conn *domain.ExternalConnection) error

	// GetActive returns the active connection of a user for a shop, or nil
	GetActive(ctx context.Context, userID, shopDomain string) (*domain.ExternalConnection, error)

	// ListByUser lists every connection of a user
	ListByUser(ctx context.Context, userID string) ([]*domain.ExternalConnection, error)

	// DeactivateByShop marks every connection to a shop inactive and returns how many changed
	DeactivateByShop(ctx context.Context, shopDomain string) (int64, error)

	// Delete removes the connection of a user for a shop
	Delete(ctx context.Context, userID, shopDomain string) error
}
