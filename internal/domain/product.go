package domain

import "github.com/shopspring/decimal"

// ExtractedPage is the normalized response of the extraction provider.
type ExtractedPage struct {
	URL         string
	HTML        string
	Markdown    string
	Links       []string
	Title       string
	Description string
}

// ScrapedProduct is what the source fetcher extracts from a product page.
type ScrapedProduct struct {
	SourceURL     string          `json:"sourceUrl"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Images        []string        `json:"images"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Rating        string          `json:"rating"`
	Reviews       string          `json:"reviews"`
}

// MarketingCopy is the reformulated copy of a product.
type MarketingCopy struct {
	Title       string   `json:"title"`
	Headline    string   `json:"headline"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
	CTA         string   `json:"cta"`
}
