package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"store-generator/internal/domain"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed API call. Provider details never reach it.
type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeHTML(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, html)
}

// statusFor maps a classified error to its HTTP status.
func statusFor(pe *domain.PipelineError) int {
	switch pe.Kind {
	case domain.KindValidation, domain.KindNoReferenceImage:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotConnected, domain.KindAuthFailed:
		return http.StatusForbidden
	case domain.KindSubscriptionRequired:
		return http.StatusPaymentRequired
	case domain.KindSubscriptionUnknown:
		return http.StatusServiceUnavailable
	case domain.KindImageGenerationFailed:
		switch pe.Reason {
		case domain.ReasonRateLimited:
			return http.StatusTooManyRequests
		case domain.ReasonQuotaExceeded:
			return http.StatusPaymentRequired
		}
		return http.StatusBadGateway
	case domain.KindFetchFailed, domain.KindProviderError:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// errorBody converts err into a status and a user-safe body, logging the cause of
// anything that is not the caller's fault.
func errorBody(logger zerolog.Logger, r *http.Request, err error) (int, errorResponse) {
	var pe *domain.PipelineError
	if !errors.As(err, &pe) {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled request error")
		return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
	}

	status := statusFor(pe)
	msg := pe.Message
	if msg == "" {
		msg = string(pe.Kind)
	}
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Str("kind", string(pe.Kind)).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Str("path", r.URL.Path).Str("kind", string(pe.Kind)).Msg("Request rejected")
	}
	return status, errorResponse{Error: msg, Kind: string(pe.Kind), Reason: pe.Reason}
}

func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	status, body := errorBody(logger, r, err)
	writeJSON(w, status, body)
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewError(domain.KindValidation, "invalid request body", err)
	}
	return nil
}
