package render

import (
	"regexp"
	"strings"

	"store-generator/internal/domain"
)

// PlaceholderImage is shown when a store has no selected image.
const PlaceholderImage = "https://placehold.co/800x800?text=Product"

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// view is StoreData with every empty field replaced and every color validated, so
// templates never branch on missing data.
type view struct {
	StoreName       string
	ProductName     string
	Handle          string
	Headline        string
	Description     string
	Paragraphs      []string
	Benefits        []string
	CTA             string
	Price           string
	OriginalPrice   string
	Discount        int
	Rating          string
	Reviews         string
	Images          []string
	MainImage       string
	PrimaryColor    string
	AccentColor     string
	BackgroundColor string
	TextColor       string
	Announcement    string
	BenefitCards    []domain.BenefitCard
	Testimonials    []domain.CustomerReview
	FAQ             []domain.FAQItem
	FinalCTATitle   string
}

var (
	defaultBenefits = []string{
		"Premium quality materials",
		"Fast and tracked shipping",
		"30-day satisfaction guarantee",
	}
	defaultTestimonials = []domain.CustomerReview{
		{Name: "Sarah M.", Initials: "SM", Text: "Exactly as described, I use it every day.", Rating: 5},
		{Name: "Thomas L.", Initials: "TL", Text: "Fast delivery and great quality for the price.", Rating: 5},
		{Name: "Julie R.", Initials: "JR", Text: "I ordered a second one as a gift.", Rating: 4},
	}
	defaultFAQ = []domain.FAQItem{
		{Question: "How long does delivery take?", Answer: "Orders ship within 48 hours and usually arrive in 7 to 12 business days."},
		{Question: "Can I return my order?", Answer: "Yes, you have 30 days to return the product for a full refund."},
		{Question: "Is payment secure?", Answer: "Payments are processed over an encrypted connection by our payment provider."},
	}
	benefitIcons = []string{"✓", "★", "♥"}
)

func newView(d domain.StoreData) view {
	v := view{
		StoreName:       or(d.StoreName, "My Store"),
		ProductName:     or(d.ProductName, "Our bestseller"),
		Headline:        or(d.Headline, d.ProductName, "Discover our bestseller"),
		Description:     or(d.Description, "Product description coming soon."),
		CTA:             or(d.CTA, "Buy now"),
		Price:           d.DisplayPrice(),
		Discount:        d.DiscountPercent(),
		Rating:          or(d.Rating, "4.8"),
		Reviews:         or(d.Reviews, "1500"),
		PrimaryColor:    color(d.PrimaryColor, domain.DefaultPrimaryColor),
		AccentColor:     color(d.AccentColor, domain.DefaultAccentColor),
		BackgroundColor: color(d.BackgroundColor, domain.DefaultBackgroundColor),
		TextColor:       color(d.TextColor, domain.DefaultTextColor),
		Announcement:    or(d.AnnouncementBar, "Free shipping on every order"),
		BenefitCards:    d.BenefitCards,
		Testimonials:    d.CustomerReviews,
		FAQ:             d.FAQ,
	}
	v.Handle = domain.Handle(v.ProductName)
	v.FinalCTATitle = or(d.FinalCTATitle, v.Headline)
	if v.Discount > 0 {
		v.OriginalPrice = d.DisplayOriginalPrice()
	}

	for _, p := range strings.Split(v.Description, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			v.Paragraphs = append(v.Paragraphs, p)
		}
	}
	for _, b := range d.Benefits {
		if b = strings.TrimSpace(b); b != "" {
			v.Benefits = append(v.Benefits, b)
		}
	}
	if len(v.Benefits) == 0 {
		v.Benefits = defaultBenefits
	}
	if len(v.BenefitCards) == 0 {
		for i, b := range v.Benefits {
			v.BenefitCards = append(v.BenefitCards, domain.BenefitCard{Icon: benefitIcons[i%len(benefitIcons)], Title: b})
		}
	}
	if len(v.Testimonials) == 0 {
		v.Testimonials = defaultTestimonials
	}
	if len(v.FAQ) == 0 {
		v.FAQ = defaultFAQ
	}

	for _, img := range d.ProductImages {
		if img = strings.TrimSpace(img); img != "" {
			v.Images = append(v.Images, img)
		}
	}
	if len(v.Images) == 0 {
		v.Images = []string{PlaceholderImage}
	}
	v.MainImage = v.Images[0]
	return v
}

func or(values ...string) string {
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func color(value, fallback string) string {
	if hexColor.MatchString(value) {
		return value
	}
	return fallback
}
