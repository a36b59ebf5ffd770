package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BenefitCard is an icon/title/description triple used by generated themes.
type BenefitCard struct {
	Icon        string `json:"icon" bson:"icon"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
}

// CustomerReview is a display-only testimonial.
type CustomerReview struct {
	Name     string `json:"name" bson:"name"`
	Initials string `json:"initials" bson:"initials"`
	Text     string `json:"text" bson:"text"`
	Rating   int    `json:"rating" bson:"rating"`
}

// FAQItem is a question/answer pair.
type FAQItem struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// StoreData is the store draft: the single source of truth read by previews and
// snapshotted by exports.
type StoreData struct {
	StoreName       string           `json:"storeName"`
	ProductName     string           `json:"productName"`
	Headline        string           `json:"headline"`
	Description     string           `json:"description"`
	Benefits        []string         `json:"benefits"`
	CTA             string           `json:"cta"`
	ProductPrice    decimal.Decimal  `json:"productPrice"`
	OriginalPrice   decimal.Decimal  `json:"originalPrice"`
	Currency        string           `json:"currency"`
	Rating          string           `json:"rating"`
	Reviews         string           `json:"reviews"`
	ProductImages   []string         `json:"productImages"`
	PrimaryColor    string           `json:"primaryColor"`
	AccentColor     string           `json:"accentColor"`
	BackgroundColor string           `json:"backgroundColor"`
	TextColor       string           `json:"textColor"`
	AnnouncementBar string           `json:"announcementBar"`
	BenefitCards    []BenefitCard    `json:"benefitCards,omitempty"`
	CustomerReviews []CustomerReview `json:"customerReviews,omitempty"`
	FAQ             []FAQItem        `json:"faq,omitempty"`
	FinalCTATitle   string           `json:"finalCtaTitle,omitempty"`
}

// Default theme tokens applied to freshly generated drafts.
const (
	DefaultPrimaryColor    = "#111827"
	DefaultAccentColor     = "#f97316"
	DefaultBackgroundColor = "#ffffff"
	DefaultTextColor       = "#1f2937"
	DefaultCurrency        = "EUR"
)

// ValidateForExport enforces the export invariant: at least one image and a product name.
func (d StoreData) ValidateForExport() error {
	if strings.TrimSpace(d.ProductName) == "" {
		return Validationf("product name is required before export")
	}
	for _, img := range d.ProductImages {
		if strings.TrimSpace(img) != "" {
			return nil
		}
	}
	return Validationf("at least one product image is required before export")
}

// DiscountPercent is the rounded percentage between the struck-through original price
// and the displayed price. Zero when there is no valid discount.
func (d StoreData) DiscountPercent() int {
	if !d.OriginalPrice.IsPositive() || !d.OriginalPrice.GreaterThan(d.ProductPrice) {
		return 0
	}
	pct := d.OriginalPrice.Sub(d.ProductPrice).Div(d.OriginalPrice).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// DisplayPrice formats the selling price for the storefront.
func (d StoreData) DisplayPrice() string {
	return FormatPrice(d.ProductPrice, d.Currency)
}

// DisplayOriginalPrice formats the struck-through price.
func (d StoreData) DisplayOriginalPrice() string {
	return FormatPrice(d.OriginalPrice, d.Currency)
}

// Clone returns a deep copy so exports snapshot the draft at call time.
func (d StoreData) Clone() StoreData {
	c := d
	c.Benefits = append([]string(nil), d.Benefits...)
	c.ProductImages = append([]string(nil), d.ProductImages...)
	c.BenefitCards = append([]BenefitCard(nil), d.BenefitCards...)
	c.CustomerReviews = append([]CustomerReview(nil), d.CustomerReviews...)
	c.FAQ = append([]FAQItem(nil), d.FAQ...)
	return c
}

// StoreDataPatch is a field-level replace; nil fields are left untouched.
type StoreDataPatch struct {
	StoreName       *string          `json:"storeName,omitempty"`
	ProductName     *string          `json:"productName,omitempty"`
	Headline        *string          `json:"headline,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Benefits        []string         `json:"benefits,omitempty"`
	CTA             *string          `json:"cta,omitempty"`
	ProductPrice    *decimal.Decimal `json:"productPrice,omitempty"`
	OriginalPrice   *decimal.Decimal `json:"originalPrice,omitempty"`
	Currency        *string          `json:"currency,omitempty"`
	Rating          *string          `json:"rating,omitempty"`
	Reviews         *string          `json:"reviews,omitempty"`
	PrimaryColor    *string          `json:"primaryColor,omitempty"`
	AccentColor     *string          `json:"accentColor,omitempty"`
	BackgroundColor *string          `json:"backgroundColor,omitempty"`
	TextColor       *string          `json:"textColor,omitempty"`
	AnnouncementBar *string          `json:"announcementBar,omitempty"`
	BenefitCards    []BenefitCard    `json:"benefitCards,omitempty"`
	CustomerReviews []CustomerReview `json:"customerReviews,omitempty"`
	FAQ             []FAQItem        `json:"faq,omitempty"`
	FinalCTATitle   *string          `json:"finalCtaTitle,omitempty"`
}

// Apply merges the patch into d. ProductImages is owned by the curator and is not patchable.
func (p StoreDataPatch) Apply(d *StoreData) {
	setString(&d.StoreName, p.StoreName)
	setString(&d.ProductName, p.ProductName)
	setString(&d.Headline, p.Headline)
	setString(&d.Description, p.Description)
	setString(&d.CTA, p.CTA)
	setString(&d.Currency, p.Currency)
	setString(&d.Rating, p.Rating)
	setString(&d.Reviews, p.Reviews)
	setString(&d.PrimaryColor, p.PrimaryColor)
	setString(&d.AccentColor, p.AccentColor)
	setString(&d.BackgroundColor, p.BackgroundColor)
	setString(&d.TextColor, p.TextColor)
	setString(&d.AnnouncementBar, p.AnnouncementBar)
	setString(&d.FinalCTATitle, p.FinalCTATitle)
	if p.Benefits != nil {
		d.Benefits = append([]string(nil), p.Benefits...)
	}
	if p.ProductPrice != nil {
		d.ProductPrice = *p.ProductPrice
	}
	if p.OriginalPrice != nil {
		d.OriginalPrice = *p.OriginalPrice
	}
	if p.BenefitCards != nil {
		d.BenefitCards = append([]BenefitCard(nil), p.BenefitCards...)
	}
	if p.CustomerReviews != nil {
		d.CustomerReviews = append([]CustomerReview(nil), p.CustomerReviews...)
	}
	if p.FAQ != nil {
		d.FAQ = append([]FAQItem(nil), p.FAQ...)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
