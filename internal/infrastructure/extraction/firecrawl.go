package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"store-generator/internal/domain"
	"store-generator/internal/ports"

	"github.com/mendableai/firecrawl-go/v2"
	"github.com/rs/zerolog"
)

// FirecrawlClient scrapes pages through the Firecrawl SDK.
type FirecrawlClient struct {
	app    *firecrawl.FirecrawlApp
	logger zerolog.Logger
}

// NewFirecrawlClient creates an extraction provider. httpClient bounds every scrape;
// nil keeps the SDK's own client.
func NewFirecrawlClient(baseURL, apiKey string, httpClient *http.Client, logger zerolog.Logger) (*FirecrawlClient, error) {
	app, err := firecrawl.NewFirecrawlApp(apiKey, strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to create firecrawl client: %w", err)
	}
	if httpClient != nil {
		app.Client = httpClient
	}
	return &FirecrawlClient{app: app, logger: logger}, nil
}

type scrapeOutcome struct {
	doc *firecrawl.FirecrawlDocument
	err error
}

// Scrape renders url and returns its content. Failures carry a short message; the
// raw provider error is only logged.
func (c *FirecrawlClient) Scrape(ctx context.Context, url string, opts ports.ScrapeOptions) (*domain.ExtractedPage, error) {
	onlyMain := opts.OnlyMainContent
	params := &firecrawl.ScrapeParams{
		Formats:         opts.Formats,
		OnlyMainContent: &onlyMain,
	}
	if opts.WaitForMillis > 0 {
		wait := opts.WaitForMillis
		params.WaitFor = &wait
	}

	// The SDK call takes no context; the HTTP client timeout ends it after ctx is gone.
	done := make(chan scrapeOutcome, 1)
	go func() {
		doc, err := c.app.ScrapeURL(url, params)
		done <- scrapeOutcome{doc: doc, err: err}
	}()

	var out scrapeOutcome
	select {
	case <-ctx.Done():
		return nil, domain.NewError(domain.KindFetchFailed, "the page took too long to load", ctx.Err())
	case out = <-done:
	}

	if out.err != nil {
		c.logger.Warn().Err(out.err).Str("url", url).Msg("Scrape request failed")
		return nil, scrapeFailure(out.err)
	}
	if out.doc == nil {
		return nil, domain.NewError(domain.KindFetchFailed, "the page could not be extracted", nil)
	}

	html := out.doc.HTML
	if html == "" {
		html = out.doc.RawHTML
	}
	title, description := metadataText(out.doc.Metadata)
	return &domain.ExtractedPage{
		URL:         url,
		HTML:        html,
		Markdown:    out.doc.Markdown,
		Links:       out.doc.Links,
		Title:       title,
		Description: description,
	}, nil
}

// scrapeFailure maps an SDK error to FetchFailed with a message the user can act on.
// The SDK only reports the HTTP status inside its error text.
func scrapeFailure(err error) *domain.PipelineError {
	msg := strings.ToLower(err.Error())
	hasAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(msg, w) {
				return true
			}
		}
		return false
	}

	text := "the extraction service failed"
	switch {
	case hasAny("402", "payment required", "insufficient credits"):
		text = "the extraction service quota is exhausted"
	case hasAny("429", "rate limit"):
		text = "too many extraction requests, try again in a minute"
	case hasAny("401", "403", "unauthorized", "forbidden", "invalid token"):
		text = "the extraction service rejected our credentials"
	case hasAny("408", "timeout", "timed out", "deadline exceeded"):
		text = "the page took too long to load"
	case hasAny("unmarshal", "invalid character"):
		text = "unexpected answer from the extraction service"
	}
	return domain.NewError(domain.KindFetchFailed, text, err)
}

// metadataText reads title and description whatever shape the SDK gives them
// (plain strings or string lists).
func metadataText(meta any) (title, description string) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", ""
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", ""
	}
	return firstString(fields["title"]), firstString(fields["description"])
}

func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
