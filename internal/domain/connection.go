package domain

import (
	"regexp"
	"strings"
	"time"
)

// ExternalConnection is a user's OAuth credential for one Shopify shop.
// At most one active connection exists per (UserID, ShopDomain).
type ExternalConnection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ShopDomain  string    `json:"shopDomain"`
	AccessToken string    `json:"-"` // encrypted at rest
	Scopes      []string  `json:"scopes"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var shopDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)

// NormalizeShopDomain accepts "my-shop", "my-shop.myshopify.com" or a full admin URL.
func NormalizeShopDomain(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	if s != "" && !strings.Contains(s, ".") {
		s += ".myshopify.com"
	}
	if !shopDomainPattern.MatchString(s) {
		return "", Validationf("invalid shop %q (expected like your-store.myshopify.com)", raw)
	}
	return s, nil
}
