package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"store-generator/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const userIDMetadataKey = "user_id"

// StripeProvider implements ports.BillingProvider. Customers are matched to users by
// the user_id metadata key, set when the first checkout creates the customer.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	// priceIDs maps "<plan>_<period>" to a Stripe price id
	priceIDs map[string]string
	logger   zerolog.Logger
}

// NewStripeProvider creates the billing provider
func NewStripeProvider(secretKey, webhookSecret string, priceIDs map[string]string, logger zerolog.Logger) *StripeProvider {
	return &StripeProvider{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
		priceIDs:      priceIDs,
		logger:        logger,
	}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (string, error) {
	priceID, ok := p.priceIDs[req.Plan+"_"+string(req.Period)]
	if !ok {
		return "", domain.Validationf("unknown plan %q for period %q", req.Plan, req.Period)
	}

	cust, err := p.findCustomer(ctx, req.User)
	if err != nil {
		return "", err
	}
	if cust == nil {
		params := &stripe.CustomerParams{Email: stripe.String(req.User.Email)}
		params.Context = ctx
		params.AddMetadata(userIDMetadataKey, req.User.ID)
		cust, err = p.api.Customers.New(params)
		if err != nil {
			return "", fmt.Errorf("failed to create customer: %w", err)
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(cust.ID),
		ClientReferenceID: stripe.String(req.User.ID),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{userIDMetadataKey: req.User.ID},
		},
	}
	params.Context = ctx

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session.URL, nil
}

func (p *StripeProvider) GetSubscriptionStatus(ctx context.Context, user domain.UserRef) (*domain.SubscriptionStatus, error) {
	cust, err := p.findCustomer(ctx, user)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return &domain.SubscriptionStatus{Subscribed: false}, nil
	}

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(cust.ID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx

	status := &domain.SubscriptionStatus{CustomerID: cust.ID}
	iter := p.api.Subscriptions.List(params)
	for iter.Next() {
		sub := iter.Subscription()
		if sub.Status != stripe.SubscriptionStatusActive && sub.Status != stripe.SubscriptionStatusTrialing {
			continue
		}
		status.Subscribed = true
		status.PlanName = p.planName(sub)
		if sub.CurrentPeriodEnd > 0 {
			renewal := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
			status.RenewalDate = &renewal
		}
		break
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return status, nil
}

// planName resolves the configured plan key of the first subscription item.
func (p *StripeProvider) planName(sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return ""
	}
	price := sub.Items.Data[0].Price
	for key, id := range p.priceIDs {
		if id == price.ID {
			plan, _, _ := strings.Cut(key, "_")
			return plan
		}
	}
	if price.Nickname != "" {
		return price.Nickname
	}
	return price.LookupKey
}

func (p *StripeProvider) CreatePortalSession(ctx context.Context, user domain.UserRef, returnURL string) (string, error) {
	cust, err := p.findCustomer(ctx, user)
	if err != nil {
		return "", err
	}
	if cust == nil {
		return "", domain.NewError(domain.KindNotFound, "no billing account yet, subscribe first", nil)
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(cust.ID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	session, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return session.URL, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the affected user.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (string, string, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to verify webhook: %w", err)
	}

	eventType := string(event.Type)
	switch {
	case strings.HasPrefix(eventType, "checkout.session."):
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return "", eventType, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		return session.ClientReferenceID, eventType, nil
	case strings.HasPrefix(eventType, "customer.subscription."):
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return "", eventType, fmt.Errorf("failed to decode subscription: %w", err)
		}
		return sub.Metadata[userIDMetadataKey], eventType, nil
	}
	return "", eventType, nil
}

// findCustomer looks the user up by metadata, then by email. nil when absent.
func (p *StripeProvider) findCustomer(ctx context.Context, user domain.UserRef) (*stripe.Customer, error) {
	if user.ID != "" {
		params := &stripe.CustomerSearchParams{
			SearchParams: stripe.SearchParams{
				Query:   fmt.Sprintf("metadata['%s']:'%s'", userIDMetadataKey, escapeQuery(user.ID)),
				Context: ctx,
			},
		}
		iter := p.api.Customers.Search(params)
		if iter.Next() {
			return iter.Customer(), nil
		}
		if err := iter.Err(); err != nil {
			return nil, fmt.Errorf("failed to search customers: %w", err)
		}
	}

	if user.Email == "" {
		return nil, nil
	}
	params := &stripe.CustomerListParams{Email: stripe.String(user.Email)}
	params.Context = ctx
	iter := p.api.Customers.List(params)
	if iter.Next() {
		return iter.Customer(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return nil, nil
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}
