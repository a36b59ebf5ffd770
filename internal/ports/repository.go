package ports

import (
	"context"

	"store-generator/internal/domain"
)

// ConfigurationRepository persists the generation history, one record per (user, source URL).
type ConfigurationRepository interface {
	Upsert(ctx context.Context, cfg *domain.SavedConfiguration) error
	Get(ctx context.Context, userID, id string) (*domain.SavedConfiguration, error)
	GetBySourceURL(ctx context.Context, userID, sourceURL string) (*domain.SavedConfiguration, error)
	List(ctx context.Context, userID string) ([]*domain.SavedConfiguration, error)
	Delete(ctx context.Context, userID, id string) error
}

// DeployedStoreRepository persists stores published on internal subdomains.
type DeployedStoreRepository interface {
	// Upsert writes the store keyed by subdomain. It fails with domain.ErrSubdomainTaken
	// when the subdomain belongs to another user.
	Upsert(ctx context.Context, store *domain.DeployedStore) error
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.DeployedStore, error)
	Get(ctx context.Context, userID, id string) (*domain.DeployedStore, error)
	List(ctx context.Context, userID string) ([]*domain.DeployedStore, error)
	UpdateStatus(ctx context.Context, userID, id string, status domain.StoreStatus) error
	UpdatePayment(ctx context.Context, userID, id string, payment *domain.PaymentConfig) error
	IncrementVisits(ctx context.Context, subdomain string) error
	IncrementOrders(ctx context.Context, subdomain string) error
	Delete(ctx context.Context, userID, id string) error
}

// ExportRecordRepository persists the last export per (user, source URL).
type ExportRecordRepository interface {
	Upsert(ctx context.Context, record *domain.ExportRecord) error
	GetBySourceURL(ctx context.Context, userID, sourceURL string) (*domain.ExportRecord, error)
	List(ctx context.Context, userID string) ([]*domain.ExportRecord, error)
}

// SessionRepository persists pending OAuth sessions keyed by state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, state string) (*domain.Session, error)
	DeleteSession(ctx context.Context, state string) error
}
