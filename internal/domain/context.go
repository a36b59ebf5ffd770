package domain

import "context"

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	userEmailKey contextKey = "user_email"
)

// WithUser stores the caller identity set by the upstream gateway.
func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userEmailKey, email)
}

// GetUserIDFromContext returns the caller id, or "" when absent.
func GetUserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// GetUserEmailFromContext returns the caller email, or "" when absent.
func GetUserEmailFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userEmailKey).(string); ok {
		return v
	}
	return ""
}

// UserFromContext builds a UserRef from the request context.
func UserFromContext(ctx context.Context) UserRef {
	return UserRef{ID: GetUserIDFromContext(ctx), Email: GetUserEmailFromContext(ctx)}
}
