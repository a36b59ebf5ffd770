package domain

// WebhookEvent is a Shopify webhook delivery after HMAC verification.
type WebhookEvent struct {
	Topic    string
	Shop     string
	Payload  []byte
	Verified bool
}
