package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/ports"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *FirecrawlClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewFirecrawlClient(server.URL+"/", "fc-key", server.Client(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewFirecrawlClient: %v", err)
	}
	return c
}

func TestScrape(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/scrape") || r.Header.Get("Authorization") != "Bearer fc-key" {
			t.Errorf("request = %s %s auth=%q", r.Method, r.URL.Path, r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"markdown":"# Lamp","rawHtml":"<img src=\"x\">","metadata":{"title":"Lamp | AliExpress","description":"Soft"}}}`))
	})

	page, err := c.Scrape(context.Background(), "https://www.aliexpress.com/item/1.html", ports.ScrapeOptions{
		Formats:         []string{"markdown", "html"},
		OnlyMainContent: true,
		WaitForMillis:   5000,
	})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if got["url"] != "https://www.aliexpress.com/item/1.html" || got["onlyMainContent"] != true || got["waitFor"] != float64(5000) {
		t.Errorf("request body = %v", got)
	}
	if page.Markdown != "# Lamp" || page.HTML != `<img src="x">` || page.Title != "Lamp | AliExpress" || page.Description != "Soft" {
		t.Errorf("page = %+v", page)
	}
}

func TestScrapeFailuresAreFetchFailed(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`},
		{"quota", http.StatusPaymentRequired, `{"error":"no credits"}`},
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"unsuccessful", http.StatusOK, `{"success":false,"error":"blocked by robots"}`},
		{"not json", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Scrape(context.Background(), "https://www.aliexpress.com/item/1.html", ports.ScrapeOptions{})
			var pe *domain.PipelineError
			if !errors.As(err, &pe) || pe.Kind != domain.KindFetchFailed {
				t.Fatalf("err = %v, want fetch failed", err)
			}
			if pe.Message == "" || strings.Contains(pe.Message, "boom") {
				t.Errorf("Message = %q", pe.Message)
			}
		})
	}
}

func TestScrapeHonorsContext(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Scrape(ctx, "https://www.aliexpress.com/item/1.html", ports.ScrapeOptions{})
	if !errors.Is(err, domain.ErrFetchFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want fetch failed on deadline", err)
	}
}

func TestScrapeFailureMessages(t *testing.T) {
	tests := []struct {
		err  string
		want string
	}{
		{"Payment Required: Failed to scrape URL. Insufficient credits", "the extraction service quota is exhausted"},
		{"Unexpected error during scrape URL: Status code 429. Rate limit exceeded", "too many extraction requests, try again in a minute"},
		{"Unexpected error during scrape URL: Status code 401. Unauthorized", "the extraction service rejected our credentials"},
		{"Request Timeout: Failed to scrape URL as the request timed out", "the page took too long to load"},
		{"failed to unmarshal scrape response: invalid character '<'", "unexpected answer from the extraction service"},
		{"Internal Server Error: Failed to scrape URL. boom", "the extraction service failed"},
	}
	for _, tt := range tests {
		pe := scrapeFailure(errors.New(tt.err))
		if pe.Kind != domain.KindFetchFailed || pe.Message != tt.want {
			t.Errorf("scrapeFailure(%q) = %s %q, want %q", tt.err, pe.Kind, pe.Message, tt.want)
		}
	}
}

func TestMetadataText(t *testing.T) {
	title, desc := metadataText(map[string]any{"title": "Lamp", "description": []string{"", "Soft"}})
	if title != "Lamp" || desc != "Soft" {
		t.Errorf("metadataText = %q, %q", title, desc)
	}
	if title, desc := metadataText(nil); title != "" || desc != "" {
		t.Errorf("nil metadata = %q, %q", title, desc)
	}
}
