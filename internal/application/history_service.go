package application

import (
	"context"
	"fmt"

	"store-generator/internal/domain"
	"store-generator/internal/ports"

	"github.com/rs/zerolog"
)

// HistoryService exposes the saved configurations and export records of a user.
type HistoryService struct {
	configs ports.ConfigurationRepository
	records ports.ExportRecordRepository
	drafts  *DraftService
	logger  zerolog.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(configs ports.ConfigurationRepository, records ports.ExportRecordRepository, drafts *DraftService, logger zerolog.Logger) *HistoryService {
	return &HistoryService{
		configs: configs,
		records: records,
		drafts:  drafts,
		logger:  logger,
	}
}

// List returns saved configurations, most recent first.
func (s *HistoryService) List(ctx context.Context, userID string) ([]*domain.SavedConfiguration, error) {
	items, err := s.configs.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	return items, nil
}

// Get returns one saved configuration.
func (s *HistoryService) Get(ctx context.Context, userID, id string) (*domain.SavedConfiguration, error) {
	cfg, err := s.configs.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	if cfg == nil {
		return nil, domain.NewError(domain.KindNotFound, "configuration not found", nil)
	}
	return cfg, nil
}

// Delete removes a saved configuration.
func (s *HistoryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.configs.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	return nil
}

// Reopen starts a new draft from a saved configuration.
func (s *HistoryService) Reopen(ctx context.Context, userID, id string) (*domain.Draft, error) {
	cfg, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	draft, err := s.drafts.Reopen(ctx, userID, cfg)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("userId", userID).Str("configurationId", id).Str("draftId", draft.ID).Msg("Reopened configuration")
	return draft, nil
}

// Exports lists the export records of a user.
func (s *HistoryService) Exports(ctx context.Context, userID string) ([]*domain.ExportRecord, error) {
	records, err := s.records.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return records, nil
}
