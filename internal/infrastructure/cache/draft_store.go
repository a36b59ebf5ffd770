package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisDraftStore keeps drafts as JSON with a sliding TTL; every save extends it.
type RedisDraftStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisDraftStore creates a draft store on top of a redis client
func NewRedisDraftStore(client redis.Cmdable, ttl time.Duration) ports.DraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

func (s *RedisDraftStore) Save(ctx context.Context, draft *domain.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKeyPrefix+draft.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Get(ctx context.Context, id string) (*domain.Draft, error) {
	payload, err := s.client.Get(ctx, draftKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	var draft domain.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &draft, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, draftKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
