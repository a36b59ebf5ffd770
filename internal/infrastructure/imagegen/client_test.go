package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"store-generator/internal/domain"

	"github.com/rs/zerolog"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.ImageURL != "https://ae01.alicdn.com/kf/a.jpg" || req.Prompt == "" {
			t.Errorf("request = %+v", req)
		}
		if r.Header.Get("Authorization") != "Bearer img-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"image_url":"https://cdn.example.com/out.png"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "img-key", server.Client(), zerolog.Nop())
	got, err := c.Generate(context.Background(), "studio shot", "https://ae01.alicdn.com/kf/a.jpg")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "https://cdn.example.com/out.png" {
		t.Errorf("url = %q", got)
	}
}

func TestGenerateFailureReasons(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"rate limited", http.StatusTooManyRequests, `{}`, domain.ReasonRateLimited},
		{"quota", http.StatusPaymentRequired, `{}`, domain.ReasonQuotaExceeded},
		{"server error", http.StatusInternalServerError, `oops`, domain.ReasonGeneric},
		{"no image", http.StatusOK, `{"error":"nsfw"}`, domain.ReasonGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(server.URL, "", server.Client(), zerolog.Nop())
			_, err := c.Generate(context.Background(), "p", "r")
			var pe *domain.PipelineError
			if !errors.As(err, &pe) || pe.Kind != domain.KindImageGenerationFailed {
				t.Fatalf("err = %v, want image generation failure", err)
			}
			if pe.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", pe.Reason, tt.reason)
			}
		})
	}
}
