package application

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"

	"store-generator/internal/domain"
	"store-generator/internal/infrastructure/metrics"
	"store-generator/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	maxScrapedImages     = 10
	defaultRating        = "4.8"
	defaultReviews       = "1500"
	renderWaitMillis     = 5000
	fallbackDiscountRate = "1.5"
)

// priceAmount accepts grouped thousands ("1 299,00", "1.299,00", "1,299.00") as well
// as plain amounts.
const (
	priceAmount = `((?:\d{1,3}(?:[ \x{00a0}\x{202f}.,]\d{3})+|\d{1,7})(?:[.,]\d{1,2})?)`
	priceGap    = `[\s\x{00a0}\x{202f}]?`
)

var (
	imgSrcPattern     = regexp.MustCompile(`(?i)\ssrc="([^"]+)"`)
	imgDataSrcPattern = regexp.MustCompile(`(?i)data-src="([^"]+)"`)
	sizeSuffixPattern = regexp.MustCompile(`(?i)(\.(?:jpe?g|png|webp))_[^/]*$`)
	chromePattern     = regexp.MustCompile(`(?i)(icon|flag|logo|avatar|sprite|\.gif)`)
	pricePattern      = regexp.MustCompile(`(?:€` + priceGap + priceAmount + `|` + priceAmount + priceGap + `€|(?:US\s?)?\$` + priceGap + priceAmount + `|£` + priceGap + priceAmount + `)`)
	ratingPattern     = regexp.MustCompile(`(?i)(\d(?:[.,]\d)?)\s*(?:stars?|étoiles?)`)
	reviewsPattern    = regexp.MustCompile(`(?i)(\d[\d .,]*\+?)\s*(?:reviews?|avis|vendus?|sold)`)
	titleSuffix       = regexp.MustCompile(`\s*[-|]\s*AliExpress.*$`)
	headingPattern    = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	descriptionTitles = regexp.MustCompile(`(?i)(description|features|caractéristiques|descriptif|specifications)`)
)

// SourceFetcher turns a product URL into a ScrapedProduct using the extraction provider
type SourceFetcher struct {
	provider ports.ExtractionProvider
	timeout  time.Duration
	metrics  *metrics.PipelineMetrics
	logger   zerolog.Logger
}

// NewSourceFetcher creates a new source fetcher
func NewSourceFetcher(provider ports.ExtractionProvider, timeout time.Duration, m *metrics.PipelineMetrics, logger zerolog.Logger) *SourceFetcher {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &SourceFetcher{
		provider: provider,
		timeout:  timeout,
		metrics:  m,
		logger:   logger,
	}
}

// NormalizeSourceURL prepends https:// when the scheme is missing and requires an absolute URL.
func NormalizeSourceURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", domain.ErrInvalidSourceURL
	}
	if !strings.Contains(s, "://") {
		s = "https://" + strings.TrimPrefix(s, "//")
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") || !strings.Contains(u.Host, ".") {
		return "", domain.ErrInvalidSourceURL
	}
	return u.String(), nil
}

// Fetch extracts the product behind rawURL.
func (f *SourceFetcher) Fetch(ctx context.Context, rawURL string) (*domain.ScrapedProduct, error) {
	sourceURL, err := NormalizeSourceURL(rawURL)
	if err != nil {
		return nil, domain.NewError(domain.KindValidation, "enter a valid product URL", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	started := time.Now()
	page, err := f.provider.Scrape(ctx, sourceURL, ports.ScrapeOptions{
		Formats:         []string{"markdown", "html", "links"},
		OnlyMainContent: true,
		WaitForMillis:   renderWaitMillis,
	})
	if err != nil {
		f.metrics.RecordProviderCall("extraction", started, string(domain.KindFetchFailed))
		f.logger.Error().Err(err).Str("url", sourceURL).Msg("Failed to scrape product page")
		return nil, domain.NewError(domain.KindFetchFailed, fetchMessage(err), err)
	}
	f.metrics.RecordProviderCall("extraction", started, "")

	product := ParseProductPage(sourceURL, page)
	f.logger.Info().
		Str("url", sourceURL).
		Int("images", len(product.Images)).
		Str("price", product.Price.String()).
		Msg("Scraped product page")
	return product, nil
}

func fetchMessage(err error) string {
	var pe *domain.PipelineError
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return "could not read the product page: " + err.Error()
}

// ParseProductPage applies the extraction rules to a rendered page. It never fails;
// missing data falls back to defaults.
func ParseProductPage(sourceURL string, page *domain.ExtractedPage) *domain.ScrapedProduct {
	p := &domain.ScrapedProduct{
		SourceURL:   sourceURL,
		Title:       cleanTitle(firstHeading(page.Markdown)),
		Description: extractDescription(page.Markdown),
		Images:      extractImages(page.HTML),
		Rating:      defaultRating,
		Reviews:     defaultReviews,
	}
	if p.Title == "" {
		p.Title = cleanTitle(page.Title)
	}
	if p.Description == "" {
		p.Description = strings.TrimSpace(page.Description)
	}

	prices := extractPrices(page.Markdown)
	if len(prices) > 0 {
		p.Price = prices[0]
		if len(prices) > 1 && prices[1].GreaterThan(p.Price) {
			p.OriginalPrice = prices[1]
		} else {
			p.OriginalPrice = p.Price.Mul(decimal.RequireFromString(fallbackDiscountRate)).Round(2)
		}
	}

	if m := ratingPattern.FindStringSubmatch(page.Markdown); m != nil {
		p.Rating = strings.Replace(m[1], ",", ".", 1)
	}
	if m := reviewsPattern.FindStringSubmatch(page.Markdown); m != nil {
		if n := strings.TrimSpace(m[1]); n != "" {
			p.Reviews = n
		}
	}
	return p
}

func extractImages(html string) []string {
	seen := make(map[string]bool)
	images := make([]string, 0, maxScrapedImages)
	for _, pattern := range []*regexp.Regexp{imgSrcPattern, imgDataSrcPattern} {
		for _, m := range pattern.FindAllStringSubmatch(html, -1) {
			if len(images) == maxScrapedImages {
				return images
			}
			img, ok := normalizeImageURL(m[1])
			if !ok || seen[img] {
				continue
			}
			seen[img] = true
			images = append(images, img)
		}
	}
	return images
}

func normalizeImageURL(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "//") {
		s = "https:" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", false
	}
	if !strings.HasSuffix(strings.ToLower(u.Host), ".alicdn.com") {
		return "", false
	}
	if chromePattern.MatchString(u.Path) {
		return "", false
	}
	u.Scheme = "https"
	u.RawQuery = ""
	u.Path = sizeSuffixPattern.ReplaceAllString(u.Path, "$1")
	return u.String(), true
}

func extractPrices(markdown string) []decimal.Decimal {
	var prices []decimal.Decimal
	for _, m := range pricePattern.FindAllStringSubmatch(markdown, -1) {
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			if d, err := domain.ParsePrice(g); err == nil && d.IsPositive() {
				prices = append(prices, d)
			}
			break
		}
		if len(prices) == 2 {
			break
		}
	}
	return prices
}

func cleanTitle(title string) string {
	return strings.TrimSpace(titleSuffix.ReplaceAllString(title, ""))
}

func firstHeading(markdown string) string {
	if m := headingPattern.FindStringSubmatch(markdown); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractDescription returns the body of the first heading-delimited block whose
// heading names a description section.
func extractDescription(markdown string) string {
	locs := headingPattern.FindAllStringSubmatchIndex(markdown, -1)
	for i, loc := range locs {
		heading := markdown[loc[2]:loc[3]]
		if !descriptionTitles.MatchString(heading) {
			continue
		}
		end := len(markdown)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if body := strings.TrimSpace(markdown[loc[1]:end]); body != "" {
			return body
		}
	}
	return ""
}
