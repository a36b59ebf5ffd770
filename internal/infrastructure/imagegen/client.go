package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"store-generator/internal/domain"

	"github.com/rs/zerolog"
)

// Client calls a JSON image-generation endpoint: {prompt, image_url} -> {image_url}.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an image generator
func NewClient(endpoint, apiKey string, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

type generateRequest struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"image_url"`
}

type generateResponse struct {
	ImageURL string `json:"image_url"`
	Error    string `json:"error,omitempty"`
}

// Generate returns the URL of the new image. Every failure is an
// ImageGenerationFailed error whose reason is rate_limited, quota_exceeded or generic.
func (c *Client) Generate(ctx context.Context, prompt, referenceURL string) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt, ImageURL: referenceURL})
	if err != nil {
		return "", domain.NewImageGenerationError(domain.ReasonGeneric, "image generation failed", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", domain.NewImageGenerationError(domain.ReasonGeneric, "image generation failed", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		msg := "image generation failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "image generation timed out"
		}
		return "", domain.NewImageGenerationError(domain.ReasonGeneric, msg, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusTooManyRequests:
		return "", domain.NewImageGenerationError(domain.ReasonRateLimited, "too many image requests, try again in a moment", nil)
	case http.StatusPaymentRequired:
		return "", domain.NewImageGenerationError(domain.ReasonQuotaExceeded, "image generation quota exceeded", nil)
	default:
		c.logger.Warn().Int("status", resp.StatusCode).Str("body", string(raw)).Msg("Image generation rejected")
		return "", domain.NewImageGenerationError(domain.ReasonGeneric, "image generation failed", fmt.Errorf("status %d", resp.StatusCode))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", domain.NewImageGenerationError(domain.ReasonGeneric, "image generation failed", err)
	}
	if out.ImageURL == "" {
		c.logger.Warn().Str("error", out.Error).Msg("Image generation returned no image")
		return "", domain.NewImageGenerationError(domain.ReasonGeneric, "image generation returned no image", nil)
	}
	return out.ImageURL, nil
}
