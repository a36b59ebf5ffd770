package application

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/infrastructure/metrics"
	"store-generator/internal/ports"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

const renderedPageCacheSize = 512

// DeploymentService manages stores published on internal subdomains and serves the
// public storefront.
type DeploymentService struct {
	stores     ports.DeployedStoreRepository
	renderer   ports.Renderer
	encryption ports.EncryptionService
	checkout   ports.MerchantCheckout
	storeURL   func(subdomain string) string
	timeout    time.Duration
	pages      *lru.Cache[string, string]
	metrics    *metrics.PipelineMetrics
	logger     zerolog.Logger
}

// NewDeploymentService creates a new deployment service
func NewDeploymentService(
	stores ports.DeployedStoreRepository,
	renderer ports.Renderer,
	encryption ports.EncryptionService,
	checkout ports.MerchantCheckout,
	storeURL func(subdomain string) string,
	timeout time.Duration,
	m *metrics.PipelineMetrics,
	logger zerolog.Logger,
) *DeploymentService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	pages, _ := lru.New[string, string](renderedPageCacheSize)
	return &DeploymentService{
		stores:     stores,
		renderer:   renderer,
		encryption: encryption,
		checkout:   checkout,
		storeURL:   storeURL,
		timeout:    timeout,
		pages:      pages,
		metrics:    m,
		logger:     logger,
	}
}

// List returns the deployed stores of a user.
func (s *DeploymentService) List(ctx context.Context, userID string) ([]*domain.DeployedStore, error) {
	stores, err := s.stores.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

// Get returns one store owned by userID.
func (s *DeploymentService) Get(ctx context.Context, userID, id string) (*domain.DeployedStore, error) {
	store, err := s.stores.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	if store == nil {
		return nil, domain.NewError(domain.KindNotFound, "store not found", nil)
	}
	return store, nil
}

// UpdateData applies owner edits to the published snapshot.
func (s *DeploymentService) UpdateData(ctx context.Context, userID, id string, patch domain.StoreDataPatch) (*domain.DeployedStore, error) {
	store, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(&store.Data)
	if err := store.Data.ValidateForExport(); err != nil {
		return nil, err
	}
	store.UpdatedAt = time.Now().UTC()
	if err := s.stores.Upsert(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to save store: %w", err)
	}
	return store, nil
}

// SetStatus toggles a store between active and paused.
func (s *DeploymentService) SetStatus(ctx context.Context, userID, id, status string) (*domain.DeployedStore, error) {
	st, err := domain.ParseStoreStatus(status)
	if err != nil {
		return nil, err
	}
	store, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.stores.UpdateStatus(ctx, userID, id, st); err != nil {
		return nil, fmt.Errorf("failed to update store status: %w", err)
	}
	store.Status = st
	s.logger.Info().Str("userId", userID).Str("subdomain", store.Subdomain).Str("status", string(st)).Msg("Store status changed")
	return store, nil
}

// PaymentInput configures checkout of a store. Exactly one field may be set; both
// empty clears the configuration.
type PaymentInput struct {
	PaymentLinkURL  string `json:"paymentLinkUrl"`
	StripeSecretKey string `json:"stripeSecretKey"`
}

// SetPayment stores the payment configuration, encrypting a Stripe secret.
func (s *DeploymentService) SetPayment(ctx context.Context, userID, id string, input PaymentInput) (*domain.DeployedStore, error) {
	link := strings.TrimSpace(input.PaymentLinkURL)
	secret := strings.TrimSpace(input.StripeSecretKey)
	if link != "" && secret != "" {
		return nil, domain.Validationf("set either a payment link or a Stripe key, not both")
	}

	store, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var payment *domain.PaymentConfig
	switch {
	case link != "":
		u, err := url.Parse(link)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return nil, domain.Validationf("payment link must be an https URL")
		}
		payment = &domain.PaymentConfig{PaymentLinkURL: u.String()}
	case secret != "":
		if !strings.HasPrefix(secret, "sk_") && !strings.HasPrefix(secret, "rk_") {
			return nil, domain.Validationf("invalid Stripe secret key")
		}
		encrypted, err := s.encryption.Encrypt(secret)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt stripe key: %w", err)
		}
		payment = &domain.PaymentConfig{EncryptedStripeSecret: encrypted}
	}

	if err := s.stores.UpdatePayment(ctx, userID, id, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	store.Payment = payment
	return store, nil
}

// Delete removes a store. Only an explicit owner action deletes a deployment.
func (s *DeploymentService) Delete(ctx context.Context, userID, id string) error {
	store, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.stores.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}
	s.logger.Info().Str("userId", userID).Str("subdomain", store.Subdomain).Msg("Deleted store")
	return nil
}

// PublicStore returns an active store by subdomain. Paused and unknown stores are
// both NotFound.
func (s *DeploymentService) PublicStore(ctx context.Context, subdomain string) (*domain.DeployedStore, error) {
	store, err := s.stores.GetBySubdomain(ctx, strings.ToLower(subdomain))
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	if !store.IsPublic() {
		return nil, domain.NewError(domain.KindNotFound, "store not found", nil)
	}
	return store, nil
}

// Visit renders the public landing page and counts the visit.
func (s *DeploymentService) Visit(ctx context.Context, subdomain string) (string, error) {
	store, err := s.PublicStore(ctx, subdomain)
	if err != nil {
		return "", err
	}
	html, err := s.renderStorefront(store)
	if err != nil {
		return "", err
	}
	if err := s.stores.IncrementVisits(ctx, store.Subdomain); err != nil {
		s.logger.Warn().Err(err).Str("subdomain", store.Subdomain).Msg("Failed to count visit")
	}
	s.metrics.RecordVisit()
	return html, nil
}

// renderStorefront caches rendered pages per store revision; any edit bumps UpdatedAt
// and therefore the key.
func (s *DeploymentService) renderStorefront(store *domain.DeployedStore) (string, error) {
	key := fmt.Sprintf("%s:%d", store.ID, store.UpdatedAt.UnixNano())
	if html, ok := s.pages.Get(key); ok {
		return html, nil
	}
	html, err := s.renderer.LandingPage(store.Data)
	if err != nil {
		return "", fmt.Errorf("failed to render store: %w", err)
	}
	s.pages.Add(key, html)
	return html, nil
}

// Checkout returns where to send a buyer: the payment link, or a Stripe checkout
// created with the merchant's own key. The order is counted on redirect.
func (s *DeploymentService) Checkout(ctx context.Context, subdomain string) (string, error) {
	store, err := s.PublicStore(ctx, subdomain)
	if err != nil {
		return "", err
	}

	var target string
	switch {
	case store.Payment != nil && store.Payment.PaymentLinkURL != "":
		target = store.Payment.PaymentLinkURL
	case store.Payment.HasStripeSecret():
		if s.checkout == nil {
			return "", domain.NewError(domain.KindProviderError, "checkout is not available", nil)
		}
		secret, err := s.encryption.Decrypt(store.Payment.EncryptedStripeSecret)
		if err != nil {
			return "", fmt.Errorf("failed to decrypt stripe key: %w", err)
		}
		base := s.storeURL(store.Subdomain)
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		target, err = s.checkout.CreateProductCheckout(cctx, secret, store.Data, base+"?order=success", base)
		if err != nil {
			s.logger.Error().Err(err).Str("subdomain", store.Subdomain).Msg("Failed to create merchant checkout")
			return "", toProviderError("stripe", err)
		}
	default:
		return "", domain.NewError(domain.KindNotFound, "this store does not accept payments yet", nil)
	}

	if err := s.stores.IncrementOrders(ctx, store.Subdomain); err != nil {
		s.logger.Warn().Err(err).Str("subdomain", store.Subdomain).Msg("Failed to count order")
	}
	return target, nil
}
