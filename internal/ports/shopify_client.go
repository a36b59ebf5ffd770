package ports

import (
	"context"
	"net/http"
	"net/url"

	"store-generator/internal/domain"
)

// ShopifyClient defines the Shopify Admin API operations the pipeline needs.
// Payloads are domain types; the adapter owns the wire format.
type ShopifyClient interface {
	// Authentication
	GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error)
	VerifyAuthorizationURL(u *url.URL) (bool, error)
	ExchangeToken(ctx context.Context, shop string, code string) (string, error)
	VerifyWebhookRequest(r *http.Request) bool

	// Shop API
	GetShop(ctx context.Context, shop string, accessToken string) (*domain.ShopInfo, error)

	// Product API
	FindProductByHandle(ctx context.Context, shop string, accessToken string, handle string) (*domain.ProductRef, error)
	CreateProduct(ctx context.Context, shop string, accessToken string, product domain.ProductInput) (*domain.ProductRef, error)
	UpdateProduct(ctx context.Context, shop string, accessToken string, productID uint64, product domain.ProductInput) (*domain.ProductRef, error)

	// Page API
	FindPageByHandle(ctx context.Context, shop string, accessToken string, handle string) (*domain.PageRef, error)
	CreatePage(ctx context.Context, shop string, accessToken string, page domain.PageInput) (*domain.PageRef, error)
	UpdatePage(ctx context.Context, shop string, accessToken string, pageID uint64, page domain.PageInput) (*domain.PageRef, error)
	PublishPage(ctx context.Context, shop string, accessToken string, pageID uint64) error

	// Theme API
	FindThemeByName(ctx context.Context, shop string, accessToken string, name string) (*domain.ThemeRef, error)
	CreateTheme(ctx context.Context, shop string, accessToken string, name string) (*domain.ThemeRef, error)
	UploadAsset(ctx context.Context, shop string, accessToken string, themeID uint64, asset domain.ThemeAsset) error
	PublishTheme(ctx context.Context, shop string, accessToken string, themeID uint64) error
}
