package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/infrastructure/shopify"

	"github.com/rs/zerolog"
)

type connectionFixture struct {
	service     *ConnectionService
	client      *fakeShopify
	sessions    *fakeSessions
	connections *fakeConnections
}

func newConnectionFixture() *connectionFixture {
	f := &connectionFixture{
		client:      newFakeShopify(),
		sessions:    newFakeSessions(),
		connections: newFakeConnections(),
	}
	f.service = NewConnectionService(
		f.client,
		f.sessions,
		f.connections,
		shopify.NewTokenManager(fakeEncryption{}, zerolog.Nop()),
		[]string{"write_products", "write_content", "write_themes"},
		"https://app.example.com/",
		time.Second,
		zerolog.Nop(),
	)
	return f
}

// start begins an authorization and returns the state it was bound to.
func (f *connectionFixture) start(t *testing.T) string {
	t.Helper()
	authURL, err := f.service.StartAuthorization(context.Background(), "user-1", "demo", "https://app.example.com/wizard")
	if err != nil {
		t.Fatalf("StartAuthorization: %v", err)
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("auth url: %v", err)
	}
	return u.Query().Get("state")
}

func callbackURL(shop, state string) *url.URL {
	q := url.Values{}
	q.Set("code", "auth-code")
	q.Set("shop", shop)
	q.Set("state", state)
	q.Set("hmac", "signature")
	return &url.URL{Scheme: "https", Host: "app.example.com", Path: "/auth/callback", RawQuery: q.Encode()}
}

func TestStartAuthorization(t *testing.T) {
	f := newConnectionFixture()
	authURL, err := f.service.StartAuthorization(context.Background(), "user-1", "Demo.myshopify.com", "")
	if err != nil {
		t.Fatalf("StartAuthorization: %v", err)
	}
	if !strings.HasPrefix(authURL, "https://demo.myshopify.com/admin/oauth/authorize") {
		t.Errorf("authURL = %q", authURL)
	}
	if !strings.Contains(authURL, url.QueryEscape("https://app.example.com/auth/callback")) {
		t.Errorf("authURL lacks the callback: %q", authURL)
	}
	if len(f.sessions.sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(f.sessions.sessions))
	}
	for state, s := range f.sessions.sessions {
		if len(state) != 64 || s.UserID != "user-1" || s.Shop != "demo.myshopify.com" {
			t.Errorf("session = %+v", s)
		}
	}

	if _, err := f.service.StartAuthorization(context.Background(), "user-1", "bad shop!", ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad shop: err = %v", err)
	}
}

func TestHandleCallbackStoresEncryptedToken(t *testing.T) {
	f := newConnectionFixture()
	state := f.start(t)

	result, err := f.service.HandleCallback(context.Background(), callbackURL("demo.myshopify.com", state))
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if result.ReturnURL != "https://app.example.com/wizard" {
		t.Errorf("ReturnURL = %q", result.ReturnURL)
	}
	conn, _ := f.connections.GetActive(context.Background(), "user-1", "demo.myshopify.com")
	if conn == nil {
		t.Fatal("connection not stored")
	}
	if conn.AccessToken != "enc:shpat_token" {
		t.Errorf("AccessToken = %q, want encrypted", conn.AccessToken)
	}
	if len(f.sessions.sessions) != 0 {
		t.Error("session not consumed")
	}
}

func TestHandleCallbackRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *connectionFixture, state string) *url.URL
	}{
		{"bad hmac", func(f *connectionFixture, state string) *url.URL {
			f.client.verifyURL = false
			return callbackURL("demo.myshopify.com", state)
		}},
		{"unknown state", func(f *connectionFixture, state string) *url.URL {
			return callbackURL("demo.myshopify.com", "forged")
		}},
		{"expired session", func(f *connectionFixture, state string) *url.URL {
			f.sessions.sessions[state].ExpiresAt = time.Now().Add(-time.Minute)
			return callbackURL("demo.myshopify.com", state)
		}},
		{"shop mismatch", func(f *connectionFixture, state string) *url.URL {
			return callbackURL("other.myshopify.com", state)
		}},
		{"token rejected", func(f *connectionFixture, state string) *url.URL {
			f.client.shopErr = domain.NewError(domain.KindAuthFailed, "Shopify rejected the access token", nil)
			return callbackURL("demo.myshopify.com", state)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConnectionFixture()
			state := f.start(t)

			_, err := f.service.HandleCallback(context.Background(), tt.setup(f, state))
			if !errors.Is(err, domain.ErrAuthFailed) {
				t.Fatalf("err = %v, want auth failed", err)
			}
			if conns, _ := f.connections.ListByUser(context.Background(), "user-1"); len(conns) != 0 {
				t.Errorf("connections = %d, want 0", len(conns))
			}
		})
	}
}

func TestDisconnect(t *testing.T) {
	f := newConnectionFixture()
	state := f.start(t)
	if _, err := f.service.HandleCallback(context.Background(), callbackURL("demo.myshopify.com", state)); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	if err := f.service.Disconnect(context.Background(), "user-1", "demo"); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	conns, err := f.service.List(context.Background(), "user-1")
	if err != nil || len(conns) != 0 {
		t.Errorf("List = %v, %v; want empty", conns, err)
	}
}
