package ports

import (
	"context"
	"time"

	"store-generator/internal/domain"
)

// DraftStore holds drafts between requests.
type DraftStore interface {
	Save(ctx context.Context, draft *domain.Draft) error
	// Get returns nil, nil when the draft does not exist or has expired.
	Get(ctx context.Context, id string) (*domain.Draft, error)
	Delete(ctx context.Context, id string) error
}

// StatusCache caches subscription gate decisions per user.
type StatusCache interface {
	Get(ctx context.Context, userID string) (*domain.GateDecision, error)
	Set(ctx context.Context, userID string, decision domain.GateDecision, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}

// EncryptionService encrypts secrets stored at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// EventPublisher emits domain events to the message bus.
type EventPublisher interface {
	PublishExport(ctx context.Context, event domain.ExportEvent) error
}
