package domain

import (
	"fmt"
	"time"
)

// Destination is where a store is published.
type Destination string

const (
	DestinationInternal Destination = "internal"
	DestinationShopify  Destination = "shopify"
)

// ExportMode selects what is created next to the product on an external platform.
type ExportMode string

const (
	ModePage  ExportMode = "page"
	ModeTheme ExportMode = "theme"
)

// ExportState is the position of an export in its state machine.
type ExportState string

const (
	StateIdle                ExportState = "idle"
	StateValidating          ExportState = "validating"
	StateCreatingProduct     ExportState = "creating_product"
	StateCreatingPageOrTheme ExportState = "creating_page_or_theme"
	StatePublishing          ExportState = "publishing"
	StatePersistingRecord    ExportState = "persisting_record"
	StateDone                ExportState = "done"
	StateFailed              ExportState = "failed"
)

// ExportOutcome is stored on the export record.
type ExportOutcome string

const (
	OutcomeExported ExportOutcome = "exported"
	OutcomePartial  ExportOutcome = "partial"
)

// ManualActivationNote is appended when publishing could not be completed automatically.
const ManualActivationNote = "manual activation may be required"

// ExportRequest is a snapshot of the draft plus where to send it.
type ExportRequest struct {
	UserID      string
	Email       string
	SourceURL   string
	Data        StoreData
	Destination Destination
	Mode        ExportMode
	ShopDomain  string
	Subdomain   string
}

// ExportResult is returned to the caller whatever the final state.
type ExportResult struct {
	Success            bool        `json:"success"`
	State              ExportState `json:"state"`
	Destination        Destination `json:"destination"`
	ProductURL         string      `json:"productUrl,omitempty"`
	PageURL            string      `json:"pageUrl,omitempty"`
	StoreURL           string      `json:"storeUrl,omitempty"`
	CheckoutURL        string      `json:"checkoutUrl,omitempty"`
	ThemeUploaded      bool        `json:"themeUploaded"`
	FailedAssets       []string    `json:"failedAssets,omitempty"`
	Partial            bool        `json:"partial"`
	ManualStepRequired bool        `json:"manualStepRequired"`
	Message            string      `json:"message,omitempty"`
	Warnings           []string    `json:"warnings,omitempty"`
}

// ExportRecord remembers the last export of a source URL for a user. Informational only.
type ExportRecord struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	SourceURL     string        `json:"sourceUrl"`
	Destination   Destination   `json:"destination"`
	ShopDomain    string        `json:"shopDomain,omitempty"`
	ProductID     uint64        `json:"productId,omitempty"`
	ProductHandle string        `json:"productHandle,omitempty"`
	PageID        uint64        `json:"pageId,omitempty"`
	ThemeID       uint64        `json:"themeId,omitempty"`
	Subdomain     string        `json:"subdomain,omitempty"`
	ProductURL    string        `json:"productUrl,omitempty"`
	PageURL       string        `json:"pageUrl,omitempty"`
	CheckoutURL   string        `json:"checkoutUrl,omitempty"`
	Outcome       ExportOutcome `json:"outcome"`
	Warnings      []string      `json:"warnings,omitempty"`
	ExportedAt    time.Time     `json:"exportedAt"`
}

// ExportEvent is published once per successful export or deployment.
type ExportEvent struct {
	EventID     string        `json:"event_id"`
	UserID      string        `json:"user_id"`
	SourceURL   string        `json:"source_url"`
	Destination Destination   `json:"destination"`
	ShopDomain  string        `json:"shop_domain,omitempty"`
	Subdomain   string        `json:"subdomain,omitempty"`
	ProductURL  string        `json:"product_url,omitempty"`
	Outcome     ExportOutcome `json:"outcome"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

// CartPermalink builds the one-click checkout URL of a variant.
func CartPermalink(shopDomain string, variantID uint64) string {
	return fmt.Sprintf("https://%s/cart/%d:1", shopDomain, variantID)
}
