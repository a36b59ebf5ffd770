package domain

import (
	"regexp"
	"strings"
	"time"
)

// StoreStatus is the publication status of a deployed store.
type StoreStatus string

const (
	StoreActive StoreStatus = "active"
	StorePaused StoreStatus = "paused"
)

// ParseStoreStatus validates a status name.
func ParseStoreStatus(s string) (StoreStatus, error) {
	switch StoreStatus(s) {
	case StoreActive, StorePaused:
		return StoreStatus(s), nil
	}
	return "", Validationf("unknown store status %q", s)
}

// PaymentConfig tells the public storefront how to take payment. At most one of the
// two is set; the Stripe secret is stored encrypted.
type PaymentConfig struct {
	PaymentLinkURL        string `json:"paymentLinkUrl,omitempty"`
	EncryptedStripeSecret string `json:"-"`
}

// HasStripeSecret reports whether checkout goes through the merchant's Stripe account.
func (p *PaymentConfig) HasStripeSecret() bool {
	return p != nil && p.EncryptedStripeSecret != ""
}

// DeployedStore is a store published on an internal subdomain.
type DeployedStore struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Subdomain string         `json:"subdomain"`
	SourceURL string         `json:"sourceUrl,omitempty"`
	Data      StoreData      `json:"data"`
	Status    StoreStatus    `json:"status"`
	Visits    int64          `json:"visits"`
	Orders    int64          `json:"orders"`
	Payment   *PaymentConfig `json:"payment,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// IsPublic reports whether the public storefront may serve the store.
func (s *DeployedStore) IsPublic() bool {
	return s != nil && s.Status == StoreActive
}

var (
	subdomainInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	subdomainDashes       = regexp.MustCompile(`-{2,}`)
	reservedSubdomains    = map[string]bool{"www": true, "api": true, "app": true, "admin": true, "mail": true}
)

// NormalizeSubdomain lowercases and slugs a requested subdomain and validates it.
func NormalizeSubdomain(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "-")
	s = subdomainInvalidChars.ReplaceAllString(s, "")
	s = subdomainDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) < 3 || len(s) > 63 {
		return "", Validationf("subdomain must be between 3 and 63 characters")
	}
	if reservedSubdomains[s] {
		return "", Validationf("subdomain %q is reserved", s)
	}
	return s, nil
}
