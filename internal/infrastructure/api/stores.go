package api

import (
	"net/http"

	"store-generator/internal/application"
	"store-generator/internal/domain"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.svc.Deployments.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	store, err := h.svc.Deployments.Get(r.Context(), userID(r), chi.URLParam(r, "storeID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, store)
}

func (h *Handler) updateStoreData(w http.ResponseWriter, r *http.Request) {
	var patch domain.StoreDataPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	store, err := h.svc.Deployments.UpdateData(r.Context(), userID(r), chi.URLParam(r, "storeID"), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, store)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setStoreStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	store, err := h.svc.Deployments.SetStatus(r.Context(), userID(r), chi.URLParam(r, "storeID"), req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, store)
}

func (h *Handler) setStorePayment(w http.ResponseWriter, r *http.Request) {
	var req application.PaymentInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	store, err := h.svc.Deployments.SetPayment(r.Context(), userID(r), chi.URLParam(r, "storeID"), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, store)
}

func (h *Handler) deleteStore(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Deployments.Delete(r.Context(), userID(r), chi.URLParam(r, "storeID")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Public storefront

// storefrontRedirect adds the trailing slash so the page's relative checkout form
// posts under the store path.
func (h *Handler) storefrontRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/s/"+chi.URLParam(r, "subdomain")+"/", http.StatusMovedPermanently)
}

func (h *Handler) storefront(w http.ResponseWriter, r *http.Request) {
	html, err := h.svc.Deployments.Visit(r.Context(), chi.URLParam(r, "subdomain"))
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			http.NotFound(w, r)
			return
		}
		writeError(w, r, h.logger, err)
		return
	}
	writeHTML(w, http.StatusOK, html)
}

func (h *Handler) storefrontCheckout(w http.ResponseWriter, r *http.Request) {
	checkoutURL, err := h.svc.Deployments.Checkout(r.Context(), chi.URLParam(r, "subdomain"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, checkoutURL, http.StatusSeeOther)
}

type publicStoreResponse struct {
	Subdomain string           `json:"subdomain"`
	Data      domain.StoreData `json:"data"`
}

func (h *Handler) publicStore(w http.ResponseWriter, r *http.Request) {
	store, err := h.svc.Deployments.PublicStore(r.Context(), chi.URLParam(r, "subdomain"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, publicStoreResponse{Subdomain: store.Subdomain, Data: store.Data})
}
