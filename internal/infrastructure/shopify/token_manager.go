package shopify

import (
	"context"
	"errors"
	"fmt"

	"store-generator/internal/domain"
	"store-generator/internal/ports"

	"github.com/rs/zerolog"
)

// TokenManager encrypts Shopify access tokens for storage and checks them against the API
type TokenManager struct {
	encryptionSvc ports.EncryptionService
	logger        zerolog.Logger
}

// NewTokenManager creates a new token manager
func NewTokenManager(encryptionSvc ports.EncryptionService, logger zerolog.Logger) *TokenManager {
	return &TokenManager{
		encryptionSvc: encryptionSvc,
		logger:        logger,
	}
}

// EncryptToken encrypts an access token before storage
func (tm *TokenManager) EncryptToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token cannot be empty")
	}
	return tm.encryptionSvc.Encrypt(token)
}

// DecryptToken decrypts an access token after retrieval
func (tm *TokenManager) DecryptToken(encryptedToken string) (string, error) {
	if encryptedToken == "" {
		return "", fmt.Errorf("encrypted token cannot be empty")
	}
	return tm.encryptionSvc.Decrypt(encryptedToken)
}

// ValidateToken makes a lightweight shop lookup with the token.
// Shopify tokens don't expire unless revoked, so only an auth rejection makes it invalid;
// network errors are returned to the caller.
func (tm *TokenManager) ValidateToken(ctx context.Context, client ports.ShopifyClient, token string, shopDomain string) (*domain.ShopInfo, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	if shopDomain == "" {
		return nil, fmt.Errorf("shop domain is required for token validation")
	}

	shop, err := client.GetShop(ctx, shopDomain, token)
	if err != nil {
		if errors.Is(err, domain.ErrAuthFailed) {
			tm.logger.Warn().
				Str("shop", shopDomain).
				Msg("Token validation failed: token is invalid or revoked")
		}
		return nil, err
	}

	tm.logger.Debug().
		Str("shop", shopDomain).
		Msg("Token validation successful")
	return shop, nil
}
