package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/infrastructure/metrics"
	"store-generator/internal/infrastructure/shopify"
	"store-generator/internal/ports"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	skuPrefix             = "SG-"
	defaultAssetUploads   = 3
	defaultShopifyTimeout = 30 * time.Second
)

// ExportGate is the part of the subscription gate the orchestrator needs.
type ExportGate interface {
	IsExportAllowed(ctx context.Context, user domain.UserRef) domain.GateDecision
}

// ExportOrchestrator publishes a store snapshot either on an internal subdomain or
// to a connected Shopify shop. Steps run strictly in order; only theme asset uploads
// fan out.
type ExportOrchestrator struct {
	shopify      ports.ShopifyClient
	connections  ports.ConnectionRepository
	stores       ports.DeployedStoreRepository
	records      ports.ExportRecordRepository
	events       ports.EventPublisher
	renderer     ports.Renderer
	gate         ExportGate
	tokens       *shopify.TokenManager
	storeURL     func(subdomain string) string
	callTimeout  time.Duration
	assetUploads int
	newSKU       func() string
	metrics      *metrics.PipelineMetrics
	logger       zerolog.Logger
}

// ExportOrchestratorDeps groups the collaborators of an ExportOrchestrator.
type ExportOrchestratorDeps struct {
	Shopify      ports.ShopifyClient
	Connections  ports.ConnectionRepository
	Stores       ports.DeployedStoreRepository
	Records      ports.ExportRecordRepository
	Events       ports.EventPublisher
	Renderer     ports.Renderer
	Gate         ExportGate
	Tokens       *shopify.TokenManager
	StoreURL     func(subdomain string) string
	CallTimeout  time.Duration
	AssetUploads int
	Metrics      *metrics.PipelineMetrics
}

// NewExportOrchestrator creates a new export orchestrator
func NewExportOrchestrator(deps ExportOrchestratorDeps, logger zerolog.Logger) (*ExportOrchestrator, error) {
	idGenerator, err := nanoid.Standard(12)
	if err != nil {
		return nil, fmt.Errorf("failed to create sku generator: %w", err)
	}
	if deps.CallTimeout <= 0 {
		deps.CallTimeout = defaultShopifyTimeout
	}
	if deps.AssetUploads <= 0 {
		deps.AssetUploads = defaultAssetUploads
	}
	if deps.StoreURL == nil {
		deps.StoreURL = func(subdomain string) string { return "https://" + subdomain }
	}
	return &ExportOrchestrator{
		shopify:      deps.Shopify,
		connections:  deps.Connections,
		stores:       deps.Stores,
		records:      deps.Records,
		events:       deps.Events,
		renderer:     deps.Renderer,
		gate:         deps.Gate,
		tokens:       deps.Tokens,
		storeURL:     deps.StoreURL,
		callTimeout:  deps.CallTimeout,
		assetUploads: deps.AssetUploads,
		newSKU:       func() string { return skuPrefix + idGenerator() },
		metrics:      deps.Metrics,
		logger:       logger,
	}, nil
}

// exportRun carries the state of one export through its steps.
type exportRun struct {
	req          domain.ExportRequest
	result       domain.ExportResult
	record       domain.ExportRecord
	stageStarted time.Time
	accessToken  string
}

func (o *ExportOrchestrator) enter(run *exportRun, state domain.ExportState) {
	if run.result.State != domain.StateIdle && !run.stageStarted.IsZero() {
		o.metrics.RecordStage(string(run.result.State), run.stageStarted)
	}
	run.result.State = state
	run.stageStarted = time.Now()
	o.logger.Debug().
		Str("userId", run.req.UserID).
		Str("destination", string(run.req.Destination)).
		Str("state", string(state)).
		Msg("Export state changed")
}

// fail moves the run to Failed and returns the result together with the classified
// error. Anything not yet classified leaves as a ProviderError.
func (o *ExportOrchestrator) fail(run *exportRun, err error) (domain.ExportResult, error) {
	failedIn := run.result.State
	o.enter(run, domain.StateFailed)
	run.result.Success = false

	var pe *domain.PipelineError
	if !errors.As(err, &pe) {
		pe = domain.NewError(domain.KindProviderError, "export failed", err)
		err = pe
	}
	run.result.Message = pe.Message
	o.metrics.RecordExport(string(run.req.Destination), string(domain.StateFailed))
	o.logger.Error().
		Err(err).
		Str("userId", run.req.UserID).
		Str("destination", string(run.req.Destination)).
		Str("failedIn", string(failedIn)).
		Str("kind", string(domain.KindOf(err))).
		Msg("Export failed")
	return run.result, err
}

// Export runs the export state machine. The returned result always carries the final
// state; the error is non-nil exactly when that state is Failed.
func (o *ExportOrchestrator) Export(ctx context.Context, req domain.ExportRequest) (domain.ExportResult, error) {
	if req.Mode == "" {
		req.Mode = domain.ModePage
	}
	run := &exportRun{
		req:    req,
		result: domain.ExportResult{State: domain.StateIdle, Destination: req.Destination},
	}

	o.enter(run, domain.StateValidating)
	if req.UserID == "" {
		return o.fail(run, domain.Validationf("user is required"))
	}
	if req.Destination != domain.DestinationInternal && req.Destination != domain.DestinationShopify {
		return o.fail(run, domain.Validationf("unknown destination %q", req.Destination))
	}
	if req.Mode != domain.ModePage && req.Mode != domain.ModeTheme {
		return o.fail(run, domain.Validationf("unknown export mode %q", req.Mode))
	}
	if err := req.Data.ValidateForExport(); err != nil {
		return o.fail(run, err)
	}
	if err := o.gate.IsExportAllowed(ctx, domain.UserRef{ID: req.UserID, Email: req.Email}).Err(); err != nil {
		return o.fail(run, err)
	}

	if req.Destination == domain.DestinationInternal {
		return o.deployInternal(ctx, run)
	}
	return o.exportShopify(ctx, run)
}

func (o *ExportOrchestrator) exportShopify(ctx context.Context, run *exportRun) (domain.ExportResult, error) {
	shop, err := domain.NormalizeShopDomain(run.req.ShopDomain)
	if err != nil {
		return o.fail(run, err)
	}
	run.req.ShopDomain = shop

	conn, err := o.connections.GetActive(ctx, run.req.UserID, shop)
	if err != nil {
		return o.fail(run, domain.NewError(domain.KindProviderError, "could not read your shop connection", fmt.Errorf("failed to get connection: %w", err)))
	}
	if conn == nil {
		return o.fail(run, domain.NewError(domain.KindNotConnected, "connect your Shopify shop before exporting", nil))
	}
	token, err := o.tokens.DecryptToken(conn.AccessToken)
	if err != nil {
		return o.fail(run, domain.NewError(domain.KindNotConnected, "stored Shopify credential is unreadable, reconnect the shop", err))
	}
	run.accessToken = token

	data := run.req.Data
	handle := domain.StableHandle(data.ProductName, "product")

	o.enter(run, domain.StateCreatingProduct)
	product, err := o.upsertProduct(ctx, run, handle)
	if err != nil {
		return o.fail(run, err)
	}
	run.record.ProductID = product.ID
	run.record.ProductHandle = product.Handle
	run.result.ProductURL = fmt.Sprintf("https://%s/products/%s", shop, product.Handle)
	if product.VariantID != 0 {
		run.result.CheckoutURL = domain.CartPermalink(shop, product.VariantID)
	}

	o.enter(run, domain.StateCreatingPageOrTheme)
	var publish func(ctx context.Context) error
	switch run.req.Mode {
	case domain.ModeTheme:
		theme, err := o.buildTheme(ctx, run)
		if err != nil {
			return o.fail(run, err)
		}
		run.record.ThemeID = theme.ID
		if run.result.ThemeUploaded {
			publish = func(ctx context.Context) error {
				return o.shopify.PublishTheme(ctx, shop, token, theme.ID)
			}
		}
	default:
		page, err := o.upsertPage(ctx, run, handle)
		if err != nil {
			return o.fail(run, err)
		}
		run.record.PageID = page.ID
		run.result.PageURL = fmt.Sprintf("https://%s/pages/%s", shop, page.Handle)
		publish = func(ctx context.Context) error {
			return o.shopify.PublishPage(ctx, shop, token, page.ID)
		}
	}

	o.enter(run, domain.StatePublishing)
	if publish == nil {
		run.result.ManualStepRequired = true
	} else if err := o.call(ctx, publish); err != nil {
		o.logger.Warn().Err(err).Str("shop", shop).Str("mode", string(run.req.Mode)).Msg("Publishing failed, manual activation needed")
		run.result.ManualStepRequired = true
	}
	if run.result.ManualStepRequired {
		run.result.Warnings = append(run.result.Warnings, domain.ManualActivationNote)
	}

	return o.finish(ctx, run)
}

// call bounds one outbound platform call by the configured timeout.
func (o *ExportOrchestrator) call(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	return fn(ctx)
}

// upsertProduct updates the product with the same handle, or creates it.
func (o *ExportOrchestrator) upsertProduct(ctx context.Context, run *exportRun, handle string) (*domain.ProductRef, error) {
	data := run.req.Data
	shop := run.req.ShopDomain

	body, err := o.renderer.ProductBody(data)
	if err != nil {
		return nil, fmt.Errorf("failed to render product body: %w", err)
	}
	input := domain.ProductInput{
		Title:          data.ProductName,
		Handle:         handle,
		BodyHTML:       body,
		Vendor:         data.StoreName,
		Price:          data.ProductPrice,
		CompareAtPrice: data.OriginalPrice,
		Images:         firstImages(data.ProductImages, domain.MaxExportImages),
	}

	var existing *domain.ProductRef
	if err := o.call(ctx, func(ctx context.Context) error {
		var err error
		existing, err = o.shopify.FindProductByHandle(ctx, shop, run.accessToken, handle)
		return err
	}); err != nil {
		return nil, err
	}

	input.SKU = o.newSKU()
	if existing != nil && existing.SKU != "" {
		input.SKU = existing.SKU
	}

	var product *domain.ProductRef
	err = o.call(ctx, func(ctx context.Context) error {
		var err error
		if existing != nil {
			input.VariantID = existing.VariantID
			product, err = o.shopify.UpdateProduct(ctx, shop, run.accessToken, existing.ID, input)
		} else {
			product, err = o.shopify.CreateProduct(ctx, shop, run.accessToken, input)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info().
		Str("shop", shop).
		Str("handle", product.Handle).
		Uint64("productId", product.ID).
		Bool("updated", existing != nil).
		Msg("Exported product")
	return product, nil
}

// upsertPage writes the landing page unpublished; Publishing flips it.
func (o *ExportOrchestrator) upsertPage(ctx context.Context, run *exportRun, handle string) (*domain.PageRef, error) {
	shop := run.req.ShopDomain
	html, err := o.renderer.LandingPage(run.req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to render landing page: %w", err)
	}
	input := domain.PageInput{
		Title:     run.req.Data.ProductName,
		Handle:    handle,
		BodyHTML:  html,
		Published: false,
	}

	var page *domain.PageRef
	err = o.call(ctx, func(ctx context.Context) error {
		existing, err := o.shopify.FindPageByHandle(ctx, shop, run.accessToken, handle)
		if err != nil {
			return err
		}
		if existing != nil {
			page, err = o.shopify.UpdatePage(ctx, shop, run.accessToken, existing.ID, input)
		} else {
			page, err = o.shopify.CreatePage(ctx, shop, run.accessToken, input)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// buildTheme finds or creates the unpublished theme and uploads every asset with
// bounded concurrency. Individual asset failures are collected, not fatal.
func (o *ExportOrchestrator) buildTheme(ctx context.Context, run *exportRun) (*domain.ThemeRef, error) {
	shop := run.req.ShopDomain
	assets, err := o.renderer.ThemeAssets(run.req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to render theme assets: %w", err)
	}

	name := themeName(run.req.Data)
	var theme *domain.ThemeRef
	err = o.call(ctx, func(ctx context.Context) error {
		var err error
		theme, err = o.shopify.FindThemeByName(ctx, shop, run.accessToken, name)
		if err != nil || theme != nil {
			return err
		}
		theme, err = o.shopify.CreateTheme(ctx, shop, run.accessToken, name)
		return err
	})
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		failed   []string
		uploaded int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.assetUploads)
	for _, asset := range assets {
		g.Go(func() error {
			err := o.call(gctx, func(ctx context.Context) error {
				return o.shopify.UploadAsset(ctx, shop, run.accessToken, theme.ID, asset)
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.Warn().Err(err).Str("shop", shop).Str("asset", asset.Key).Msg("Theme asset upload failed")
				failed = append(failed, asset.Key)
				return nil
			}
			uploaded++
			return nil
		})
	}
	_ = g.Wait()

	run.result.ThemeUploaded = uploaded > 0
	if len(failed) > 0 {
		run.result.FailedAssets = failed
		run.result.Partial = true
		run.result.Warnings = append(run.result.Warnings, fmt.Sprintf("%d of %d theme files failed to upload", len(failed), len(assets)))
	}

	o.logger.Info().
		Str("shop", shop).
		Uint64("themeId", theme.ID).
		Int("uploaded", uploaded).
		Int("failed", len(failed)).
		Msg("Uploaded theme assets")
	return theme, nil
}

func themeName(data domain.StoreData) string {
	if data.StoreName != "" {
		return data.StoreName
	}
	return data.ProductName
}

func firstImages(images []string, n int) []string {
	out := make([]string, 0, n)
	for _, img := range images {
		if img == "" {
			continue
		}
		if len(out) == n {
			break
		}
		out = append(out, img)
	}
	return out
}

func (o *ExportOrchestrator) deployInternal(ctx context.Context, run *exportRun) (domain.ExportResult, error) {
	requested := run.req.Subdomain
	if requested == "" {
		requested = domain.StableHandle(run.req.Data.StoreName, "store")
	}
	subdomain, err := domain.NormalizeSubdomain(requested)
	if err != nil {
		return o.fail(run, err)
	}
	run.req.Subdomain = subdomain

	existing, err := o.stores.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return o.fail(run, domain.NewError(domain.KindProviderError, "could not check the subdomain, try again", fmt.Errorf("failed to check subdomain: %w", err)))
	}
	if existing != nil && existing.UserID != run.req.UserID {
		return o.fail(run, domain.NewError(domain.KindConflict, "this subdomain is already taken", domain.ErrSubdomainTaken))
	}

	o.enter(run, domain.StateCreatingProduct)
	now := time.Now().UTC()
	store := &domain.DeployedStore{
		ID:        uuid.NewString(),
		UserID:    run.req.UserID,
		Subdomain: subdomain,
		SourceURL: run.req.SourceURL,
		Data:      run.req.Data.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		store.ID = existing.ID
		store.Visits = existing.Visits
		store.Orders = existing.Orders
		store.Payment = existing.Payment
		store.CreatedAt = existing.CreatedAt
	}

	o.enter(run, domain.StateCreatingPageOrTheme)
	if _, err := o.renderer.LandingPage(store.Data); err != nil {
		return o.fail(run, fmt.Errorf("failed to render storefront: %w", err))
	}

	o.enter(run, domain.StatePublishing)
	store.Status = domain.StoreActive
	if err := o.stores.Upsert(ctx, store); err != nil {
		if errors.Is(err, domain.ErrSubdomainTaken) {
			return o.fail(run, domain.NewError(domain.KindConflict, "this subdomain is already taken", err))
		}
		return o.fail(run, domain.NewError(domain.KindProviderError, "could not save the store, try again", fmt.Errorf("failed to save deployed store: %w", err)))
	}

	run.result.StoreURL = o.storeURL(subdomain)
	run.result.ProductURL = run.result.StoreURL
	o.logger.Info().
		Str("userId", run.req.UserID).
		Str("subdomain", subdomain).
		Bool("redeploy", existing != nil).
		Msg("Deployed store")

	return o.finish(ctx, run)
}

// finish persists the record and emits the event. Neither can fail the export.
func (o *ExportOrchestrator) finish(ctx context.Context, run *exportRun) (domain.ExportResult, error) {
	o.enter(run, domain.StatePersistingRecord)

	outcome := domain.OutcomeExported
	if run.result.Partial {
		outcome = domain.OutcomePartial
	}
	record := run.record
	record.UserID = run.req.UserID
	record.SourceURL = run.req.SourceURL
	record.Destination = run.req.Destination
	record.ShopDomain = run.req.ShopDomain
	record.Subdomain = run.req.Subdomain
	record.ProductURL = run.result.ProductURL
	record.PageURL = run.result.PageURL
	record.CheckoutURL = run.result.CheckoutURL
	record.Outcome = outcome
	record.Warnings = run.result.Warnings
	record.ExportedAt = time.Now().UTC()

	if o.records != nil {
		if err := o.records.Upsert(ctx, &record); err != nil {
			o.logger.Warn().
				Err(err).
				Str("kind", string(domain.KindPersistenceWarning)).
				Str("userId", record.UserID).
				Str("sourceUrl", record.SourceURL).
				Msg("Failed to save export record")
			run.result.Warnings = append(run.result.Warnings, "export record could not be saved")
		}
	}

	if o.events != nil {
		event := domain.ExportEvent{
			EventID:     uuid.NewString(),
			UserID:      record.UserID,
			SourceURL:   record.SourceURL,
			Destination: record.Destination,
			ShopDomain:  record.ShopDomain,
			Subdomain:   record.Subdomain,
			ProductURL:  record.ProductURL,
			Outcome:     outcome,
			OccurredAt:  record.ExportedAt,
		}
		if err := o.events.PublishExport(ctx, event); err != nil {
			o.logger.Warn().Err(err).Str("eventId", event.EventID).Msg("Failed to publish export event")
		}
	}

	o.enter(run, domain.StateDone)
	run.result.Success = true
	switch {
	case run.result.Partial:
		run.result.Message = "exported with some theme files missing"
	case run.result.ManualStepRequired:
		run.result.Message = "exported, " + domain.ManualActivationNote
	default:
		run.result.Message = "exported"
	}
	o.metrics.RecordExport(string(run.req.Destination), string(domain.StateDone))
	return run.result, nil
}
