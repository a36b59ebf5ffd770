package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"store-generator/internal/domain"
	"store-generator/internal/ports"

	"github.com/rs/zerolog"
)

// AppUninstalledHandler handles app uninstalled webhook events
type AppUninstalledHandler struct {
	logger      zerolog.Logger
	connections ports.ConnectionRepository
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler
func NewAppUninstalledHandler(logger zerolog.Logger, connections ports.ConnectionRepository) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		logger:      logger,
		connections: connections,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == "app/uninstalled"
}

type uninstalledPayload struct {
	Domain          string `json:"domain"`
	MyshopifyDomain string `json:"myshopify_domain"`
}

// Handle deactivates every connection to the shop. The token is revoked on Shopify's
// side, so exports must fail with NotConnected until the merchant reconnects.
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shopDomain := event.Shop
	if shopDomain == "" {
		var payload uninstalledPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("failed to parse app uninstalled webhook payload: %w", err)
		}
		shopDomain = payload.MyshopifyDomain
		if shopDomain == "" {
			shopDomain = payload.Domain
		}
	}

	shop, err := domain.NormalizeShopDomain(shopDomain)
	if err != nil {
		return err
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", shop).
		Msg("Processing app uninstalled webhook event")

	n, err := h.connections.DeactivateByShop(ctx, shop)
	if err != nil {
		return fmt.Errorf("failed to deactivate connections: %w", err)
	}

	h.logger.Info().
		Str("shop", shop).
		Int64("deactivated", n).
		Msg("App uninstalled - connections deactivated")
	return nil
}
