package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/ports"

	"github.com/rs/zerolog"
)

// BillingService exposes checkout, status and portal sessions, and reacts to
// billing webhooks.
type BillingService struct {
	billing ports.BillingProvider
	gate    *SubscriptionGate
	appURL  string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(billing ports.BillingProvider, gate *SubscriptionGate, frontendURL string, timeout time.Duration, logger zerolog.Logger) *BillingService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &BillingService{
		billing: billing,
		gate:    gate,
		appURL:  strings.TrimSuffix(frontendURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

// Checkout returns the URL of a hosted checkout page for plan and period.
func (s *BillingService) Checkout(ctx context.Context, user domain.UserRef, plan string, period string) (string, error) {
	if plan == "" {
		return "", domain.Validationf("plan is required")
	}
	p := domain.BillingPeriod(strings.ToLower(period))
	if p == "" {
		p = domain.PeriodMonthly
	}
	if p != domain.PeriodMonthly && p != domain.PeriodYearly {
		return "", domain.Validationf("unknown billing period %q", period)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url, err := s.billing.CreateCheckoutSession(ctx, domain.CheckoutRequest{
		User:       user,
		Plan:       plan,
		Period:     p,
		SuccessURL: s.appURL + "/billing/success",
		CancelURL:  s.appURL + "/billing/cancel",
	})
	if err != nil {
		return "", toProviderError("billing", err)
	}
	s.logger.Info().Str("userId", user.ID).Str("plan", plan).Str("period", string(p)).Msg("Created checkout session")
	return url, nil
}

// Status reports the subscription of a user straight from the provider.
func (s *BillingService) Status(ctx context.Context, user domain.UserRef) (*domain.SubscriptionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status, err := s.billing.GetSubscriptionStatus(ctx, user)
	if err != nil {
		s.logger.Error().Err(err).Str("userId", user.ID).Msg("Failed to get subscription status")
		return nil, domain.NewError(domain.KindSubscriptionUnknown, "subscription status unknown, try again shortly", err)
	}
	return status, nil
}

// Portal returns the URL of the customer self-service portal.
func (s *BillingService) Portal(ctx context.Context, user domain.UserRef) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url, err := s.billing.CreatePortalSession(ctx, user, s.appURL+"/account")
	if err != nil {
		return "", toProviderError("billing", err)
	}
	return url, nil
}

// HandleWebhook verifies a billing event and invalidates the cached gate decision of
// the affected user.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	userID, eventType, err := s.billing.ParseWebhook(payload, signature)
	if err != nil {
		return domain.NewError(domain.KindValidation, "invalid webhook signature", err)
	}
	s.logger.Info().Str("type", eventType).Str("userId", userID).Msg("Billing webhook received")
	if userID != "" {
		s.gate.Invalidate(ctx, userID)
	}
	return nil
}

// toProviderError keeps classified errors and wraps the rest as ProviderError.
func toProviderError(provider string, err error) error {
	if domain.KindOf(err) != "" {
		return err
	}
	return domain.NewError(domain.KindProviderError, provider+" request failed", fmt.Errorf("failed to call %s: %w", provider, err))
}
