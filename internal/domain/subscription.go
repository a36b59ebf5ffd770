package domain

import "time"

// UserRef identifies the caller for billing lookups.
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SubscriptionState is the gate's view of a user's plan.
type SubscriptionState string

const (
	SubscriptionActive  SubscriptionState = "subscribed"
	SubscriptionNone    SubscriptionState = "not_subscribed"
	SubscriptionUnknown SubscriptionState = "unknown"
)

// SubscriptionStatus is what the billing provider reports.
type SubscriptionStatus struct {
	Subscribed  bool       `json:"subscribed"`
	PlanName    string     `json:"planName,omitempty"`
	RenewalDate *time.Time `json:"renewalDate,omitempty"`
	CustomerID  string     `json:"-"`
}

// GateDecision is the answer of the subscription gate.
type GateDecision struct {
	Allowed  bool              `json:"allowed"`
	PlanName string            `json:"planName,omitempty"`
	Status   SubscriptionState `json:"status"`
}

// Err converts a refusal into the matching classified error.
func (g GateDecision) Err() error {
	switch {
	case g.Allowed:
		return nil
	case g.Status == SubscriptionUnknown:
		return NewError(KindSubscriptionUnknown, "subscription status unknown, try again shortly", nil)
	default:
		return NewError(KindSubscriptionRequired, "an active subscription is required to publish", nil)
	}
}

// BillingPeriod of a checkout.
type BillingPeriod string

const (
	PeriodMonthly BillingPeriod = "monthly"
	PeriodYearly  BillingPeriod = "yearly"
)

// CheckoutRequest asks the billing provider for a hosted checkout page.
type CheckoutRequest struct {
	User       UserRef
	Plan       string
	Period     BillingPeriod
	SuccessURL string
	CancelURL  string
}
