package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/infrastructure/shopify"
	"store-generator/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const oauthSessionTTL = 10 * time.Minute

// ConnectionService runs the Shopify OAuth flow and manages the stored connections
type ConnectionService struct {
	client      ports.ShopifyClient
	sessions    ports.SessionRepository
	connections ports.ConnectionRepository
	tokens      *shopify.TokenManager
	scopes      []string
	appURL      string
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewConnectionService creates a new connection service
func NewConnectionService(
	client ports.ShopifyClient,
	sessions ports.SessionRepository,
	connections ports.ConnectionRepository,
	tokens *shopify.TokenManager,
	scopes []string,
	appURL string,
	timeout time.Duration,
	logger zerolog.Logger,
) *ConnectionService {
	if timeout <= 0 {
		timeout = defaultShopifyTimeout
	}
	return &ConnectionService{
		client:      client,
		sessions:    sessions,
		connections: connections,
		tokens:      tokens,
		scopes:      scopes,
		appURL:      strings.TrimSuffix(appURL, "/"),
		timeout:     timeout,
		logger:      logger,
	}
}

// StartAuthorization stores a pending session for the user and returns the Shopify
// authorization URL. The state parameter binds the callback to this user.
func (s *ConnectionService) StartAuthorization(ctx context.Context, userID, rawShop, returnURL string) (string, error) {
	if userID == "" {
		return "", domain.Validationf("user is required")
	}
	shop, err := domain.NormalizeShopDomain(rawShop)
	if err != nil {
		return "", err
	}

	state, err := newState()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		Shop:      shop,
		State:     state,
		Scopes:    s.scopes,
		UserID:    userID,
		ReturnURL: returnURL,
		ExpiresAt: now.Add(oauthSessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to save OAuth session")
		return "", fmt.Errorf("failed to save oauth session: %w", err)
	}

	authURL, err := s.client.GenerateAuthURL(shop, s.scopes, s.appURL+"/auth/callback", state)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to generate auth URL")
		return "", fmt.Errorf("failed to generate auth URL: %w", err)
	}

	s.logger.Info().
		Str("userId", userID).
		Str("shop", shop).
		Strs("scopes", s.scopes).
		Msg("Started Shopify authorization")
	return authURL, nil
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CallbackResult is what the callback handler needs to redirect the user.
type CallbackResult struct {
	Connection *domain.ExternalConnection
	ReturnURL  string
}

// HandleCallback verifies the callback HMAC and state, exchanges the code, validates
// the token against the shop and stores it encrypted.
func (s *ConnectionService) HandleCallback(ctx context.Context, callback *url.URL) (*CallbackResult, error) {
	ok, err := s.client.VerifyAuthorizationURL(callback)
	if err != nil || !ok {
		s.logger.Warn().Err(err).Msg("OAuth callback failed HMAC verification")
		return nil, domain.NewError(domain.KindAuthFailed, "invalid authorization callback", err)
	}

	q := callback.Query()
	state := q.Get("state")
	code := q.Get("code")
	if state == "" || code == "" {
		return nil, domain.Validationf("missing state or code")
	}

	session, err := s.sessions.GetSession(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth session: %w", err)
	}
	if session == nil || session.Expired(time.Now()) {
		return nil, domain.NewError(domain.KindAuthFailed, "authorization session expired, start again", nil)
	}
	shop, err := domain.NormalizeShopDomain(q.Get("shop"))
	if err != nil || shop != session.Shop {
		return nil, domain.NewError(domain.KindAuthFailed, "shop does not match the authorization request", err)
	}
	if err := s.sessions.DeleteSession(ctx, state); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to delete OAuth session")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	accessToken, err := s.client.ExchangeToken(ctx, shop, code)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange token")
		return nil, err
	}
	if _, err := s.tokens.ValidateToken(ctx, s.client, accessToken, shop); err != nil {
		return nil, err
	}
	encrypted, err := s.tokens.EncryptToken(accessToken)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to encrypt access token")
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	now := time.Now().UTC()
	conn := &domain.ExternalConnection{
		ID:          uuid.NewString(),
		UserID:      session.UserID,
		ShopDomain:  shop,
		AccessToken: encrypted,
		Scopes:      session.Scopes,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.connections.Upsert(ctx, conn); err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to save connection")
		return nil, fmt.Errorf("failed to save connection: %w", err)
	}

	s.logger.Info().
		Str("userId", session.UserID).
		Str("shop", shop).
		Msg("Shopify shop connected")
	return &CallbackResult{Connection: conn, ReturnURL: session.ReturnURL}, nil
}

// List returns the connections of a user.
func (s *ConnectionService) List(ctx context.Context, userID string) ([]*domain.ExternalConnection, error) {
	conns, err := s.connections.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("userId", userID).Msg("Failed to list connections")
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return conns, nil
}

// Disconnect removes the connection of a user to a shop.
func (s *ConnectionService) Disconnect(ctx context.Context, userID, rawShop string) error {
	shop, err := domain.NormalizeShopDomain(rawShop)
	if err != nil {
		return err
	}
	if err := s.connections.Delete(ctx, userID, shop); err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	s.logger.Info().Str("userId", userID).Str("shop", shop).Msg("Shopify shop disconnected")
	return nil
}

// VerifyWebhook checks the HMAC header of a Shopify webhook request.
func (s *ConnectionService) VerifyWebhook(r *http.Request) bool {
	return s.client.VerifyWebhookRequest(r)
}
