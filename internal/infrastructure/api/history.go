package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	configs, err := h.svc.History.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.History.Get(r.Context(), userID(r), chi.URLParam(r, "configID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) deleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.History.Delete(r.Context(), userID(r), chi.URLParam(r, "configID")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reopenHistory(w http.ResponseWriter, r *http.Request) {
	draft, err := h.svc.History.Reopen(r.Context(), userID(r), chi.URLParam(r, "configID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (h *Handler) listExports(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.History.Exports(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
