package api

import (
	"net/http"

	"store-generator/internal/application"
	"store-generator/internal/domain"

	"github.com/go-chi/chi/v5"
)

type generateRequest struct {
	URL      string `json:"url"`
	Language string `json:"language"`
}

func (h *Handler) generateDraft(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	draft, err := h.svc.Drafts.Generate(r.Context(), application.GenerateInput{
		UserID:   userID(r),
		URL:      req.URL,
		Language: req.Language,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.svc.Drafts.Get(r.Context(), userID(r), chi.URLParam(r, "draftID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) patchDraft(w http.ResponseWriter, r *http.Request) {
	var patch domain.StoreDataPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	draft, err := h.svc.Drafts.Patch(r.Context(), userID(r), chi.URLParam(r, "draftID"), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) deleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Drafts.Delete(r.Context(), userID(r), chi.URLParam(r, "draftID")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleImage(w http.ResponseWriter, r *http.Request) {
	draft, err := h.svc.Drafts.ToggleImage(r.Context(), userID(r), chi.URLParam(r, "draftID"), chi.URLParam(r, "imageID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

type variantRequest struct {
	Style string `json:"style"`
}

func (h *Handler) requestVariant(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	img, err := h.svc.Drafts.RequestAIVariant(r.Context(), userID(r), chi.URLParam(r, "draftID"), req.Style)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

func (h *Handler) previewDraft(w http.ResponseWriter, r *http.Request) {
	kind := application.PreviewKind(r.URL.Query().Get("kind"))
	html, err := h.svc.Drafts.Preview(r.Context(), userID(r), chi.URLParam(r, "draftID"), kind)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeHTML(w, http.StatusOK, html)
}

type exportRequest struct {
	Destination domain.Destination `json:"destination"`
	Mode        domain.ExportMode  `json:"mode"`
	ShopDomain  string             `json:"shopDomain"`
	Subdomain   string             `json:"subdomain"`
}

// exportResponse carries the result even when the export failed, so the wizard can
// show how far it got.
type exportResponse struct {
	domain.ExportResult
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func (h *Handler) exportDraft(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	ctx := r.Context()
	draft, err := h.svc.Drafts.Get(ctx, userID(r), chi.URLParam(r, "draftID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user := domain.UserFromContext(ctx)
	result, err := h.svc.Exports.Export(ctx, domain.ExportRequest{
		UserID:      user.ID,
		Email:       user.Email,
		SourceURL:   draft.SourceURL,
		Data:        draft.Snapshot(),
		Destination: req.Destination,
		Mode:        req.Mode,
		ShopDomain:  req.ShopDomain,
		Subdomain:   req.Subdomain,
	})
	if err != nil {
		status, body := errorBody(h.logger, r, err)
		writeJSON(w, status, exportResponse{ExportResult: result, Error: body.Error, Kind: body.Kind})
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{ExportResult: result})
}
