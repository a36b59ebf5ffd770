package api

import (
	"net/http"
	"strings"

	"store-generator/internal/domain"

	"github.com/rs/zerolog"
)

// Identity headers set by the upstream auth gateway.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
)

// UserMiddleware copies the gateway identity headers into the request context.
// It never rejects; RequireUser does.
func UserMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}
			email := strings.TrimSpace(r.Header.Get(HeaderUserEmail))
			next.ServeHTTP(w, r.WithContext(domain.WithUser(r.Context(), userID, email)))
		})
	}
}

// RequireUser rejects requests without a caller identity.
func RequireUser(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if domain.GetUserIDFromContext(r.Context()) == "" {
				logger.Debug().Str("path", r.URL.Path).Msg("Request without user identity")
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: HeaderUserID + " header is required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
