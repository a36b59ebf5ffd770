package ports

import (
	"context"

	"store-generator/internal/domain"
)

// ScrapeOptions are forwarded to the extraction provider.
type ScrapeOptions struct {
	Formats         []string
	OnlyMainContent bool
	WaitForMillis   int
}

// ExtractionProvider renders and extracts a web page.
type ExtractionProvider interface {
	Scrape(ctx context.Context, url string, opts ScrapeOptions) (*domain.ExtractedPage, error)
}

// TextGenerator produces a completion for a system instruction and a user message.
type TextGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ImageGenerator produces a new image from a prompt and a reference image.
// Failures are *domain.PipelineError of kind ImageGenerationFailed with a reason.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, referenceURL string) (string, error)
}

// BillingProvider is the subscription and payment backend.
type BillingProvider interface {
	CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (string, error)
	GetSubscriptionStatus(ctx context.Context, user domain.UserRef) (*domain.SubscriptionStatus, error)
	CreatePortalSession(ctx context.Context, user domain.UserRef, returnURL string) (string, error)
	// ParseWebhook verifies the signature and returns the id of the affected user, if any.
	ParseWebhook(payload []byte, signature string) (userID string, eventType string, err error)
}

// MerchantCheckout creates a one-off payment page with a merchant's own secret key.
type MerchantCheckout interface {
	CreateProductCheckout(ctx context.Context, secretKey string, data domain.StoreData, successURL, cancelURL string) (string, error)
}
