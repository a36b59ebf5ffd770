package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/infrastructure/metrics"
	"store-generator/internal/ports"

	"github.com/rs/zerolog"
)

const (
	maxTitleRunes   = 60
	benefitCount    = 3
	placeholderText = "Product description coming soon."
)

// ReformulationInput is the scraped copy to rewrite.
type ReformulationInput struct {
	Title       string
	Description string
	Language    string
}

// Reformulator rewrites scraped product copy into marketing copy. It never fails:
// any provider or parsing problem yields a deterministic fallback.
type Reformulator struct {
	generator ports.TextGenerator
	prompts   *Prompts
	timeout   time.Duration
	metrics   *metrics.PipelineMetrics
	logger    zerolog.Logger
}

// NewReformulator creates a new reformulator
func NewReformulator(generator ports.TextGenerator, prompts *Prompts, timeout time.Duration, m *metrics.PipelineMetrics, logger zerolog.Logger) *Reformulator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Reformulator{
		generator: generator,
		prompts:   prompts,
		timeout:   timeout,
		metrics:   m,
		logger:    logger,
	}
}

// Reformulate returns the marketing copy and whether it is the degraded fallback.
func (r *Reformulator) Reformulate(ctx context.Context, in ReformulationInput) (domain.MarketingCopy, bool) {
	if r.generator == nil {
		return r.fallback(in, "no text generator configured")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	started := time.Now()
	raw, err := r.generator.Complete(ctx, r.prompts.SystemInstruction(in.Language), r.prompts.UserMessage(in.Title, in.Description))
	if err != nil {
		r.metrics.RecordProviderCall("text", started, string(domain.KindProviderError))
		r.logger.Warn().Err(err).Msg("Text generation failed, using fallback copy")
		return r.fallback(in, "provider error")
	}
	r.metrics.RecordProviderCall("text", started, "")

	out, ok := parseMarketingCopy(raw)
	if !ok {
		r.logger.Warn().Str("response", truncateRunes(raw, 500)).Msg("Unusable reformulation response, using fallback copy")
		return r.fallback(in, "invalid response")
	}
	return out, false
}

func (r *Reformulator) fallback(in ReformulationInput, reason string) (domain.MarketingCopy, bool) {
	r.metrics.RecordReformulationFallback()
	r.logger.Info().Str("reason", reason).Str("language", in.Language).Msg("Reformulation degraded")

	fb := r.prompts.FallbackFor(in.Language)
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = fb.Description
	}
	if description == "" {
		description = placeholderText
	}
	return domain.MarketingCopy{
		Title:       truncateRunes(title, maxTitleRunes),
		Headline:    title,
		Description: description,
		Benefits:    append([]string(nil), fb.Benefits...),
		CTA:         fb.CTA,
	}, true
}

// parseMarketingCopy accepts a JSON object optionally wrapped in markdown fences.
func parseMarketingCopy(raw string) (domain.MarketingCopy, bool) {
	var out domain.MarketingCopy
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return domain.MarketingCopy{}, false
	}

	out.Title = strings.TrimSpace(out.Title)
	out.Headline = strings.TrimSpace(out.Headline)
	out.Description = strings.TrimSpace(out.Description)
	out.CTA = strings.TrimSpace(out.CTA)
	if out.Title == "" || out.Headline == "" || out.Description == "" || out.CTA == "" {
		return domain.MarketingCopy{}, false
	}

	benefits := make([]string, 0, benefitCount)
	for _, b := range out.Benefits {
		if b = strings.TrimSpace(b); b != "" {
			benefits = append(benefits, b)
		}
	}
	if len(benefits) < benefitCount {
		return domain.MarketingCopy{}, false
	}
	out.Benefits = benefits[:benefitCount]
	out.Title = truncateRunes(out.Title, maxTitleRunes)
	return out, true
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
