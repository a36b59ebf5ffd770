package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/infrastructure/metrics"
	"store-generator/internal/ports"

	"github.com/rs/zerolog"
)

// DefaultLanguage is used when a generation request does not name one.
const DefaultLanguage = "fr"

// PreviewKind selects which page a preview renders.
type PreviewKind string

const (
	PreviewProduct PreviewKind = "product"
	PreviewHome    PreviewKind = "home"
	PreviewLanding PreviewKind = "landing"
)

// DraftService owns the draft lifecycle: generation from a source URL, edits,
// image curation and previews.
type DraftService struct {
	fetcher      *SourceFetcher
	reformulator *Reformulator
	images       ports.ImageGenerator
	drafts       ports.DraftStore
	configs      ports.ConfigurationRepository
	renderer     ports.Renderer
	prompts      *Prompts
	imageTimeout time.Duration
	metrics      *metrics.PipelineMetrics
	logger       zerolog.Logger
}

// DraftServiceDeps groups the collaborators of a DraftService.
type DraftServiceDeps struct {
	Fetcher      *SourceFetcher
	Reformulator *Reformulator
	Images       ports.ImageGenerator
	Drafts       ports.DraftStore
	Configs      ports.ConfigurationRepository
	Renderer     ports.Renderer
	Prompts      *Prompts
	ImageTimeout time.Duration
	Metrics      *metrics.PipelineMetrics
}

// NewDraftService creates a new draft service
func NewDraftService(deps DraftServiceDeps, logger zerolog.Logger) *DraftService {
	if deps.ImageTimeout <= 0 {
		deps.ImageTimeout = 90 * time.Second
	}
	return &DraftService{
		fetcher:      deps.Fetcher,
		reformulator: deps.Reformulator,
		images:       deps.Images,
		drafts:       deps.Drafts,
		configs:      deps.Configs,
		renderer:     deps.Renderer,
		prompts:      deps.Prompts,
		imageTimeout: deps.ImageTimeout,
		metrics:      deps.Metrics,
		logger:       logger,
	}
}

// GenerateInput starts a new draft from a product URL.
type GenerateInput struct {
	UserID   string
	URL      string
	Language string
}

// Generate runs fetch, reformulation and curation, then stores the draft and its
// history entry.
func (s *DraftService) Generate(ctx context.Context, input GenerateInput) (*domain.Draft, error) {
	if input.UserID == "" {
		return nil, domain.Validationf("user is required")
	}
	language := strings.ToLower(strings.TrimSpace(input.Language))
	if language == "" {
		language = DefaultLanguage
	}

	product, err := s.fetcher.Fetch(ctx, input.URL)
	if err != nil {
		s.metrics.RecordGeneration("fetch_failed")
		return nil, err
	}

	mc, degraded := s.reformulator.Reformulate(ctx, ReformulationInput{
		Title:       product.Title,
		Description: product.Description,
		Language:    language,
	})

	data := s.buildStoreData(product, mc, language)
	draft := domain.NewDraft(input.UserID, product.SourceURL, language, data, domain.NewImageCurator(product.Images))
	draft.ReformulationDegraded = degraded

	if err := s.drafts.Save(ctx, draft); err != nil {
		s.metrics.RecordGeneration("error")
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	s.saveHistory(ctx, draft)

	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	s.metrics.RecordGeneration(outcome)

	s.logger.Info().
		Str("userId", input.UserID).
		Str("draftId", draft.ID).
		Str("sourceUrl", product.SourceURL).
		Bool("degraded", degraded).
		Int("images", len(product.Images)).
		Msg("Generated store draft")

	return draft, nil
}

// buildStoreData assembles a fresh draft. Displayed prices follow the display pricing
// rule applied to the real supplier price.
func (s *DraftService) buildStoreData(product *domain.ScrapedProduct, mc domain.MarketingCopy, language string) domain.StoreData {
	price, original := domain.DisplayPricing(product.Price)
	fb := s.prompts.FallbackFor(language)

	return domain.StoreData{
		StoreName:       storeNameFrom(mc.Title),
		ProductName:     mc.Title,
		Headline:        mc.Headline,
		Description:     mc.Description,
		Benefits:        mc.Benefits,
		CTA:             mc.CTA,
		ProductPrice:    price,
		OriginalPrice:   original,
		Currency:        domain.DefaultCurrency,
		Rating:          product.Rating,
		Reviews:         product.Reviews,
		PrimaryColor:    domain.DefaultPrimaryColor,
		AccentColor:     domain.DefaultAccentColor,
		BackgroundColor: domain.DefaultBackgroundColor,
		TextColor:       domain.DefaultTextColor,
		AnnouncementBar: fb.Announcement,
		FinalCTATitle:   mc.Headline,
	}
}

// storeNameFrom keeps the first two words of the product name.
func storeNameFrom(title string) string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return "My Store"
	}
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

func (s *DraftService) saveHistory(ctx context.Context, draft *domain.Draft) {
	if s.configs == nil {
		return
	}
	cfg := &domain.SavedConfiguration{
		UserID:    draft.UserID,
		SourceURL: draft.SourceURL,
		Language:  draft.Language,
		Data:      draft.Snapshot(),
	}
	if err := s.configs.Upsert(ctx, cfg); err != nil {
		s.logger.Warn().
			Err(err).
			Str("kind", string(domain.KindPersistenceWarning)).
			Str("sourceUrl", draft.SourceURL).
			Msg("Failed to save configuration history")
	}
}

// Get loads a draft owned by userID.
func (s *DraftService) Get(ctx context.Context, userID, draftID string) (*domain.Draft, error) {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if draft == nil || draft.UserID != userID {
		return nil, domain.NewError(domain.KindNotFound, "draft not found", nil)
	}
	draft.SyncImages()
	return draft, nil
}

// Patch applies user edits to the store data.
func (s *DraftService) Patch(ctx context.Context, userID, draftID string, patch domain.StoreDataPatch) (*domain.Draft, error) {
	draft, err := s.Get(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	draft.Apply(patch)
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	s.saveHistory(ctx, draft)
	return draft, nil
}

// ToggleImage flips the selection of one curated image.
func (s *DraftService) ToggleImage(ctx context.Context, userID, draftID, imageID string) (*domain.Draft, error) {
	draft, err := s.Get(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	if err := draft.Curator.Toggle(imageID); err != nil {
		if errors.Is(err, domain.ErrImageNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "image not found", err)
		}
		return nil, err
	}
	draft.SyncImages()
	draft.Touch()
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return draft, nil
}

// RequestAIVariant generates a styled image from the draft's reference image and
// prepends it. On failure the draft is left untouched.
func (s *DraftService) RequestAIVariant(ctx context.Context, userID, draftID, style string) (*domain.CuratedImage, error) {
	imageStyle, err := domain.ParseImageStyle(style)
	if err != nil {
		return nil, err
	}
	draft, err := s.Get(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	reference, err := draft.Curator.ReferenceImage()
	if err != nil {
		s.metrics.RecordImageVariant(string(imageStyle), string(domain.KindNoReferenceImage))
		return nil, err
	}
	if s.images == nil {
		return nil, domain.NewImageGenerationError(domain.ReasonGeneric, "image generation is not available", nil)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.imageTimeout)
	defer cancel()

	started := time.Now()
	imageURL, err := s.images.Generate(genCtx, s.prompts.ImagePrompt(imageStyle, draft.Data.ProductName), reference.URL)
	if err != nil {
		genErr := asImageGenerationError(err)
		s.metrics.RecordProviderCall("image", started, string(domain.KindImageGenerationFailed))
		s.metrics.RecordImageVariant(string(imageStyle), genErr.Reason)
		s.logger.Warn().
			Err(err).
			Str("draftId", draftID).
			Str("style", string(imageStyle)).
			Str("reason", genErr.Reason).
			Msg("AI image variant failed")
		return nil, genErr
	}
	s.metrics.RecordProviderCall("image", started, "")

	img := draft.Curator.PrependGenerated(imageURL)
	draft.SyncImages()
	draft.Touch()
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	s.metrics.RecordImageVariant(string(imageStyle), "ok")
	return &img, nil
}

func asImageGenerationError(err error) *domain.PipelineError {
	var pe *domain.PipelineError
	if errors.As(err, &pe) && pe.Kind == domain.KindImageGenerationFailed {
		if pe.Reason == "" {
			pe.Reason = domain.ReasonGeneric
		}
		return pe
	}
	return domain.NewImageGenerationError(domain.ReasonGeneric, "image generation failed", err)
}

// Preview renders one page of the draft.
func (s *DraftService) Preview(ctx context.Context, userID, draftID string, kind PreviewKind) (string, error) {
	draft, err := s.Get(ctx, userID, draftID)
	if err != nil {
		return "", err
	}
	data := draft.Snapshot()
	switch kind {
	case PreviewProduct, "":
		return s.renderer.ProductPage(data)
	case PreviewHome:
		return s.renderer.HomePage(data)
	case PreviewLanding:
		return s.renderer.LandingPage(data)
	}
	return "", domain.Validationf("unknown preview kind %q", kind)
}

// Delete discards a draft (finish or start over).
func (s *DraftService) Delete(ctx context.Context, userID, draftID string) error {
	if _, err := s.Get(ctx, userID, draftID); err != nil {
		return err
	}
	if err := s.drafts.Delete(ctx, draftID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// Reopen starts a new draft from a saved configuration.
func (s *DraftService) Reopen(ctx context.Context, userID string, cfg *domain.SavedConfiguration) (*domain.Draft, error) {
	data := cfg.Data.Clone()
	draft := domain.NewDraft(userID, cfg.SourceURL, cfg.Language, data, domain.NewImageCurator(data.ProductImages))
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return draft, nil
}
