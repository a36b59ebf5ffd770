package application

import (
	"context"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/infrastructure/metrics"
	"store-generator/internal/ports"

	"github.com/rs/zerolog"
)

// SubscriptionGate decides whether a user may publish. Decisions are cached per user;
// a failed billing lookup fails closed with status unknown and is never cached.
type SubscriptionGate struct {
	billing ports.BillingProvider
	cache   ports.StatusCache
	ttl     time.Duration
	timeout time.Duration
	metrics *metrics.PipelineMetrics
	logger  zerolog.Logger
}

// NewSubscriptionGate creates a new subscription gate
func NewSubscriptionGate(
	billing ports.BillingProvider,
	cache ports.StatusCache,
	ttl time.Duration,
	timeout time.Duration,
	m *metrics.PipelineMetrics,
	logger zerolog.Logger,
) *SubscriptionGate {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SubscriptionGate{
		billing: billing,
		cache:   cache,
		ttl:     ttl,
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// IsExportAllowed never returns an error; an unreachable billing provider yields
// Allowed=false with Status=unknown.
func (g *SubscriptionGate) IsExportAllowed(ctx context.Context, user domain.UserRef) domain.GateDecision {
	if g.cache != nil {
		cached, err := g.cache.Get(ctx, user.ID)
		if err != nil {
			g.logger.Warn().Err(err).Str("userId", user.ID).Msg("Failed to read cached subscription status")
		} else if cached != nil {
			g.metrics.RecordGateDecision(string(cached.Status))
			return *cached
		}
	}

	decision := g.lookup(ctx, user)
	g.metrics.RecordGateDecision(string(decision.Status))

	if decision.Status != domain.SubscriptionUnknown && g.cache != nil {
		if err := g.cache.Set(ctx, user.ID, decision, g.ttl); err != nil {
			g.logger.Warn().Err(err).Str("userId", user.ID).Msg("Failed to cache subscription status")
		}
	}
	return decision
}

func (g *SubscriptionGate) lookup(ctx context.Context, user domain.UserRef) domain.GateDecision {
	unknown := domain.GateDecision{Allowed: false, Status: domain.SubscriptionUnknown}
	if g.billing == nil {
		return unknown
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	status, err := g.billing.GetSubscriptionStatus(ctx, user)
	if err != nil {
		g.metrics.RecordProviderCall("billing", started, string(domain.KindSubscriptionUnknown))
		g.logger.Error().Err(err).Str("userId", user.ID).Msg("Subscription lookup failed")
		return unknown
	}
	g.metrics.RecordProviderCall("billing", started, "")

	if status == nil || !status.Subscribed {
		return domain.GateDecision{Allowed: false, Status: domain.SubscriptionNone}
	}
	return domain.GateDecision{Allowed: true, PlanName: status.PlanName, Status: domain.SubscriptionActive}
}

// Invalidate drops the cached decision of a user.
func (g *SubscriptionGate) Invalidate(ctx context.Context, userID string) {
	if g.cache == nil || userID == "" {
		return
	}
	if err := g.cache.Invalidate(ctx, userID); err != nil {
		g.logger.Warn().Err(err).Str("userId", userID).Msg("Failed to invalidate subscription status")
	}
}
