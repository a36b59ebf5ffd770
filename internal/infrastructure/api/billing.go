package api

import (
	"io"
	"net/http"

	"store-generator/internal/domain"
)

type checkoutRequest struct {
	Plan   string `json:"plan"`
	Period string `json:"period"`
}

type redirectResponse struct {
	URL string `json:"url"`
}

func (h *Handler) billingCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	checkoutURL, err := h.svc.Billing.Checkout(r.Context(), domain.UserFromContext(r.Context()), req.Plan, req.Period)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, redirectResponse{URL: checkoutURL})
}

func (h *Handler) billingStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Billing.Status(r.Context(), domain.UserFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) billingPortal(w http.ResponseWriter, r *http.Request) {
	portalURL, err := h.svc.Billing.Portal(r.Context(), domain.UserFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, redirectResponse{URL: portalURL})
}

// gateDecision tells the wizard whether publishing is currently allowed.
func (h *Handler) gateDecision(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Gate.IsExportAllowed(r.Context(), domain.UserFromContext(r.Context())))
}

func (h *Handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read Stripe webhook payload")
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.Billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			h.logger.Warn().Err(err).Msg("Rejected Stripe webhook")
			http.Error(w, "Invalid signature", http.StatusBadRequest)
			return
		}
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
