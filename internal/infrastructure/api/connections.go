package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"store-generator/internal/domain"

	"github.com/go-chi/chi/v5"
)

// startAuthorization redirects the browser to the shop's consent screen.
func (h *Handler) startAuthorization(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	authURL, err := h.svc.Connections.StartAuthorization(r.Context(), userID(r), q.Get("shop"), q.Get("return_url"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// authorizationCallback completes the OAuth flow and sends the user back to the wizard.
func (h *Handler) authorizationCallback(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Connections.HandleCallback(r.Context(), r.URL)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if result.ReturnURL == "" {
		writeJSON(w, http.StatusOK, result.Connection)
		return
	}

	sep := "?"
	if strings.Contains(result.ReturnURL, "?") {
		sep = "&"
	}
	redirectURL := fmt.Sprintf("%s%sshopify_oauth=success&shop=%s",
		result.ReturnURL,
		sep,
		url.QueryEscape(result.Connection.ShopDomain),
	)

	h.logger.Info().
		Str("shop", result.Connection.ShopDomain).
		Str("returnURL", redirectURL).
		Msg("Redirecting to frontend after successful OAuth")

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

func (h *Handler) listConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.svc.Connections.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, conns)
}

func (h *Handler) disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Connections.Disconnect(r.Context(), userID(r), chi.URLParam(r, "shop")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// shopifyWebhook verifies and dispatches a Shopify webhook.
func (h *Handler) shopifyWebhook(w http.ResponseWriter, r *http.Request) {
	topic := r.Header.Get("X-Shopify-Topic")
	if topic == "" {
		h.logger.Warn().Msg("Missing X-Shopify-Topic header")
		http.Error(w, "Missing X-Shopify-Topic header", http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read webhook payload")
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(payload))

	if !h.svc.Connections.VerifyWebhook(r) {
		h.logger.Warn().Str("topic", topic).Msg("Webhook signature verification failed")
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event := &domain.WebhookEvent{
		Topic:    topic,
		Shop:     r.Header.Get("X-Shopify-Shop-Domain"),
		Payload:  payload,
		Verified: true,
	}

	if h.svc.Webhooks != nil {
		if _, err := h.svc.Webhooks.Dispatch(r.Context(), event); err != nil {
			h.logger.Error().
				Err(err).
				Str("topic", topic).
				Str("shop", event.Shop).
				Msg("Failed to dispatch webhook event")

			// 500 makes Shopify retry
			http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
