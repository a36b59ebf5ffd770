package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"store-generator/internal/domain"
	"store-generator/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// DefaultAPIVersion is the Admin API version used when none is configured.
const DefaultAPIVersion = "2024-10"

// Options tune the per-shop clients.
type Options struct {
	APIVersion string
	Retries    int
	HTTPClient *http.Client
}

type client struct {
	apiKey    string
	apiSecret string
	app       goshopify.App
	opts      Options
	logger    zerolog.Logger
}

// NewClientWithOptions creates a client with API version and retry options
func NewClientWithOptions(apiKey, apiSecret string, opts Options, logger zerolog.Logger) ports.ShopifyClient {
	if opts.APIVersion == "" {
		opts.APIVersion = DefaultAPIVersion
	}
	app := goshopify.App{
		ApiKey:    apiKey,
		ApiSecret: apiSecret,
	}
	return &client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		app:       app,
		opts:      opts,
		logger:    logger,
	}
}

// createClient is a helper to create a goshopify client
func (c *client) createClient(shopDomain string, accessToken string) (*goshopify.Client, error) {
	options := []goshopify.Option{goshopify.WithVersion(c.opts.APIVersion)}
	if c.opts.Retries > 0 {
		options = append(options, goshopify.WithRetry(c.opts.Retries))
	}
	if c.opts.HTTPClient != nil {
		options = append(options, goshopify.WithHTTPClient(c.opts.HTTPClient))
	}
	client, err := goshopify.NewClient(c.app, shopDomain, accessToken, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// Authentication methods

func (c *client) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	// Shopify expects scopes to be comma-separated (no spaces)
	scopesStr := strings.Join(scopes, ",")

	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		c.apiKey,
		url.QueryEscape(scopesStr),
		url.QueryEscape(redirectURI),
		url.QueryEscape(state),
	)

	c.logger.Info().
		Str("shop", shop).
		Str("scopes", scopesStr).
		Msg("Generated OAuth authorization URL")

	return authURL, nil
}

func (c *client) VerifyAuthorizationURL(u *url.URL) (bool, error) {
	return c.app.VerifyAuthorizationURL(u)
}

func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (string, error) {
	token, err := c.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", classify("exchange token", err)
	}
	return token, nil
}

func (c *client) VerifyWebhookRequest(r *http.Request) bool {
	return c.app.VerifyWebhookRequest(r)
}

// Shop API

func (c *client) GetShop(ctx context.Context, shopDomain string, accessToken string) (*domain.ShopInfo, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	shop, err := client.Shop.Get(ctx, nil)
	if err != nil {
		return nil, classify("get shop", err)
	}
	return &domain.ShopInfo{
		Domain:          shop.Domain,
		MyshopifyDomain: shop.MyshopifyDomain,
		Name:            shop.Name,
		Currency:        shop.Currency,
	}, nil
}

// Product API

type handleOptions struct {
	Handle string `url:"handle,omitempty"`
	Limit  int    `url:"limit,omitempty"`
}

func (c *client) FindProductByHandle(ctx context.Context, shopDomain string, accessToken string, handle string) (*domain.ProductRef, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	products, err := client.Product.List(ctx, handleOptions{Handle: handle, Limit: 1})
	if err != nil {
		return nil, classify("list products", err)
	}
	for _, p := range products {
		if p.Handle == handle {
			return productRef(&p), nil
		}
	}
	return nil, nil
}

func (c *client) CreateProduct(ctx context.Context, shopDomain string, accessToken string, input domain.ProductInput) (*domain.ProductRef, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	created, err := client.Product.Create(ctx, toProduct(input))
	if err != nil {
		return nil, classify("create product", err)
	}
	return productRef(created), nil
}

func (c *client) UpdateProduct(ctx context.Context, shopDomain string, accessToken string, productID uint64, input domain.ProductInput) (*domain.ProductRef, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	product := toProduct(input)
	product.Id = productID
	updated, err := client.Product.Update(ctx, product)
	if err != nil {
		return nil, classify("update product", err)
	}
	return productRef(updated), nil
}

func toProduct(input domain.ProductInput) goshopify.Product {
	price := input.Price
	variant := goshopify.Variant{
		Id:    input.VariantID,
		Price: &price,
		Sku:   input.SKU,
	}
	if input.CompareAtPrice.GreaterThan(input.Price) {
		compareAt := input.CompareAtPrice
		variant.CompareAtPrice = &compareAt
	}

	images := make([]goshopify.Image, 0, len(input.Images))
	for i, src := range input.Images {
		if i == domain.MaxExportImages {
			break
		}
		images = append(images, goshopify.Image{Src: src, Position: i + 1})
	}

	return goshopify.Product{
		Title:    input.Title,
		Handle:   input.Handle,
		BodyHTML: input.BodyHTML,
		Vendor:   input.Vendor,
		Variants: []goshopify.Variant{variant},
		Images:   images,
	}
}

func productRef(p *goshopify.Product) *domain.ProductRef {
	ref := &domain.ProductRef{ID: p.Id, Handle: p.Handle}
	if len(p.Variants) > 0 {
		ref.VariantID = p.Variants[0].Id
		ref.SKU = p.Variants[0].Sku
	}
	return ref
}

// Page API

func (c *client) FindPageByHandle(ctx context.Context, shopDomain string, accessToken string, handle string) (*domain.PageRef, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	pages, err := client.Page.List(ctx, handleOptions{Handle: handle})
	if err != nil {
		return nil, classify("list pages", err)
	}
	for _, p := range pages {
		if p.Handle == handle {
			return &domain.PageRef{ID: p.Id, Handle: p.Handle}, nil
		}
	}
	return nil, nil
}

func (c *client) CreatePage(ctx context.Context, shopDomain string, accessToken string, input domain.PageInput) (*domain.PageRef, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	published := input.Published
	created, err := client.Page.Create(ctx, goshopify.Page{
		Title:     input.Title,
		Handle:    input.Handle,
		BodyHTML:  input.BodyHTML,
		Published: &published,
	})
	if err != nil {
		return nil, classify("create page", err)
	}
	return &domain.PageRef{ID: created.Id, Handle: created.Handle}, nil
}

func (c *client) UpdatePage(ctx context.Context, shopDomain string, accessToken string, pageID uint64, input domain.PageInput) (*domain.PageRef, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	published := input.Published
	updated, err := client.Page.Update(ctx, goshopify.Page{
		Id:        pageID,
		Title:     input.Title,
		Handle:    input.Handle,
		BodyHTML:  input.BodyHTML,
		Published: &published,
	})
	if err != nil {
		return nil, classify("update page", err)
	}
	return &domain.PageRef{ID: updated.Id, Handle: updated.Handle}, nil
}

func (c *client) PublishPage(ctx context.Context, shopDomain string, accessToken string, pageID uint64) error {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return err
	}
	published := true
	if _, err := client.Page.Update(ctx, goshopify.Page{Id: pageID, Published: &published}); err != nil {
		return classify("publish page", err)
	}
	return nil
}

// Theme API

// goshopify.Theme serializes every field, so a role change through it would also
// send an empty name. Theme writes use these sparse payloads instead.
type themeWrite struct {
	Theme themeFields `json:"theme"`
}

type themeFields struct {
	ID   uint64 `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

func (c *client) FindThemeByName(ctx context.Context, shopDomain string, accessToken string, name string) (*domain.ThemeRef, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	themes, err := client.Theme.List(ctx, nil)
	if err != nil {
		return nil, classify("list themes", err)
	}
	for _, t := range themes {
		if t.Name == name {
			return &domain.ThemeRef{ID: t.Id, Name: t.Name, Role: domain.ThemeRole(t.Role)}, nil
		}
	}
	return nil, nil
}

func (c *client) CreateTheme(ctx context.Context, shopDomain string, accessToken string, name string) (*domain.ThemeRef, error) {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	resource := new(goshopify.ThemeResource)
	body := themeWrite{Theme: themeFields{Name: name, Role: string(domain.ThemeRoleUnpublished)}}
	if err := client.Post(ctx, "themes.json", body, resource); err != nil {
		return nil, classify("create theme", err)
	}
	if resource.Theme == nil {
		return nil, domain.NewError(domain.KindProviderError, "Shopify request failed", errors.New("create theme: empty response"))
	}
	created := resource.Theme
	return &domain.ThemeRef{ID: created.Id, Name: created.Name, Role: domain.ThemeRole(created.Role)}, nil
}

func (c *client) UploadAsset(ctx context.Context, shopDomain string, accessToken string, themeID uint64, asset domain.ThemeAsset) error {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return err
	}
	_, err = client.Asset.Update(ctx, themeID, goshopify.Asset{Key: asset.Key, Value: asset.Value})
	if err != nil {
		return classify("upload asset "+asset.Key, err)
	}
	return nil
}

func (c *client) PublishTheme(ctx context.Context, shopDomain string, accessToken string, themeID uint64) error {
	client, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return err
	}
	body := themeWrite{Theme: themeFields{ID: themeID, Role: string(domain.ThemeRoleMain)}}
	if err := client.Put(ctx, fmt.Sprintf("themes/%d.json", themeID), body, nil); err != nil {
		return classify("publish theme", err)
	}
	return nil
}

// classify converts a go-shopify error into a pipeline error: 401/403 are AuthFailed,
// everything else ProviderError. The raw message stays on the wrapped cause.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewError(domain.KindProviderError, "Shopify did not answer in time", fmt.Errorf("failed to %s: %w", op, err))
	}

	status := 0
	var withStatus interface{ GetStatus() int }
	if errors.As(err, &withStatus) {
		status = withStatus.GetStatus()
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden ||
		(status == 0 && containsAny(err.Error(), []string{"401", "403", "unauthorized", "forbidden", "invalid api key or access token"})) {
		return domain.NewError(domain.KindAuthFailed, "Shopify rejected the access token, reconnect the shop", fmt.Errorf("failed to %s: %w", op, err))
	}
	return domain.NewError(domain.KindProviderError, "Shopify request failed", fmt.Errorf("failed to %s: %w", op, err))
}

// containsAny checks if a string contains any of the substrings (case-insensitive)
func containsAny(s string, substrings []string) bool {
	sLower := strings.ToLower(s)
	for _, substr := range substrings {
		if strings.Contains(sLower, strings.ToLower(substr)) {
			return true
		}
	}
	return false
}
