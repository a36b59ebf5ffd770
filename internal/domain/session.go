package domain

import "time"

// Session is a pending Shopify OAuth authorization. State is the random value sent to
// Shopify and echoed back on the callback; it binds the grant to the initiating user.
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	Shop      string    `json:"shop" bson:"shop"`
	State     string    `json:"state" bson:"state"`
	Scopes    []string  `json:"scopes" bson:"scopes"`
	UserID    string    `json:"user_id" bson:"user_id"`
	ReturnURL string    `json:"return_url" bson:"return_url"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Expired reports whether the session can no longer complete.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
