package entity

import (
	"time"

	"store-generator/internal/domain"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoStoreDataDoc is the stored form of StoreData. Prices are kept as decimal strings.
type MongoStoreDataDoc struct {
	StoreName       string                  `bson:"storeName"`
	ProductName     string                  `bson:"productName"`
	Headline        string                  `bson:"headline"`
	Description     string                  `bson:"description"`
	Benefits        []string                `bson:"benefits"`
	CTA             string                  `bson:"cta"`
	ProductPrice    string                  `bson:"productPrice"`
	OriginalPrice   string                  `bson:"originalPrice"`
	Currency        string                  `bson:"currency"`
	Rating          string                  `bson:"rating"`
	Reviews         string                  `bson:"reviews"`
	ProductImages   []string                `bson:"productImages"`
	PrimaryColor    string                  `bson:"primaryColor"`
	AccentColor     string                  `bson:"accentColor"`
	BackgroundColor string                  `bson:"backgroundColor"`
	TextColor       string                  `bson:"textColor"`
	AnnouncementBar string                  `bson:"announcementBar"`
	BenefitCards    []domain.BenefitCard    `bson:"benefitCards,omitempty"`
	CustomerReviews []domain.CustomerReview `bson:"customerReviews,omitempty"`
	FAQ             []domain.FAQItem        `bson:"faq,omitempty"`
	FinalCTATitle   string                  `bson:"finalCtaTitle,omitempty"`
}

// ToDomain converts the MongoDB document to a domain value
func (d *MongoStoreDataDoc) ToDomain() domain.StoreData {
	return domain.StoreData{
		StoreName:       d.StoreName,
		ProductName:     d.ProductName,
		Headline:        d.Headline,
		Description:     d.Description,
		Benefits:        d.Benefits,
		CTA:             d.CTA,
		ProductPrice:    parseDecimal(d.ProductPrice),
		OriginalPrice:   parseDecimal(d.OriginalPrice),
		Currency:        d.Currency,
		Rating:          d.Rating,
		Reviews:         d.Reviews,
		ProductImages:   d.ProductImages,
		PrimaryColor:    d.PrimaryColor,
		AccentColor:     d.AccentColor,
		BackgroundColor: d.BackgroundColor,
		TextColor:       d.TextColor,
		AnnouncementBar: d.AnnouncementBar,
		BenefitCards:    d.BenefitCards,
		CustomerReviews: d.CustomerReviews,
		FAQ:             d.FAQ,
		FinalCTATitle:   d.FinalCTATitle,
	}
}

// MongoStoreDataDocFromDomain converts StoreData to its stored form
func MongoStoreDataDocFromDomain(data domain.StoreData) MongoStoreDataDoc {
	return MongoStoreDataDoc{
		StoreName:       data.StoreName,
		ProductName:     data.ProductName,
		Headline:        data.Headline,
		Description:     data.Description,
		Benefits:        data.Benefits,
		CTA:             data.CTA,
		ProductPrice:    data.ProductPrice.StringFixed(2),
		OriginalPrice:   data.OriginalPrice.StringFixed(2),
		Currency:        data.Currency,
		Rating:          data.Rating,
		Reviews:         data.Reviews,
		ProductImages:   data.ProductImages,
		PrimaryColor:    data.PrimaryColor,
		AccentColor:     data.AccentColor,
		BackgroundColor: data.BackgroundColor,
		TextColor:       data.TextColor,
		AnnouncementBar: data.AnnouncementBar,
		BenefitCards:    data.BenefitCards,
		CustomerReviews: data.CustomerReviews,
		FAQ:             data.FAQ,
		FinalCTATitle:   data.FinalCTATitle,
	}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// MongoConfigurationDoc represents a saved configuration in MongoDB
type MongoConfigurationDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	SourceURL string             `bson:"sourceUrl"`
	Language  string             `bson:"language"`
	Data      MongoStoreDataDoc  `bson:"data"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoConfigurationDoc) ToDomain() *domain.SavedConfiguration {
	return &domain.SavedConfiguration{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		SourceURL: d.SourceURL,
		Language:  d.Language,
		Data:      d.Data.ToDomain(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoDeployedStoreDoc represents a deployed store in MongoDB
type MongoDeployedStoreDoc struct {
	ID        string            `bson:"_id"`
	UserID    string            `bson:"userId"`
	Subdomain string            `bson:"subdomain"`
	SourceURL string            `bson:"sourceUrl,omitempty"`
	Data      MongoStoreDataDoc `bson:"data"`
	Status    string            `bson:"status"`
	Visits    int64             `bson:"visits"`
	Orders    int64             `bson:"orders"`
	Payment   *MongoPaymentDoc  `bson:"payment,omitempty"`
	CreatedAt time.Time         `bson:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

// MongoPaymentDoc is the stored payment configuration of a deployed store
type MongoPaymentDoc struct {
	PaymentLinkURL        string `bson:"paymentLinkUrl,omitempty"`
	EncryptedStripeSecret string `bson:"stripeSecret,omitempty"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoDeployedStoreDoc) ToDomain() *domain.DeployedStore {
	store := &domain.DeployedStore{
		ID:        d.ID,
		UserID:    d.UserID,
		Subdomain: d.Subdomain,
		SourceURL: d.SourceURL,
		Data:      d.Data.ToDomain(),
		Status:    domain.StoreStatus(d.Status),
		Visits:    d.Visits,
		Orders:    d.Orders,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	store.Payment = d.Payment.ToDomain()
	return store
}

// ToDomain converts the stored payment configuration; nil stays nil
func (d *MongoPaymentDoc) ToDomain() *domain.PaymentConfig {
	if d == nil {
		return nil
	}
	return &domain.PaymentConfig{
		PaymentLinkURL:        d.PaymentLinkURL,
		EncryptedStripeSecret: d.EncryptedStripeSecret,
	}
}

// MongoPaymentDocFromDomain converts a payment configuration; nil stays nil
func MongoPaymentDocFromDomain(p *domain.PaymentConfig) *MongoPaymentDoc {
	if p == nil {
		return nil
	}
	return &MongoPaymentDoc{
		PaymentLinkURL:        p.PaymentLinkURL,
		EncryptedStripeSecret: p.EncryptedStripeSecret,
	}
}

// MongoExportRecordDoc represents the last export of a source URL in MongoDB
type MongoExportRecordDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"userId"`
	SourceURL     string             `bson:"sourceUrl"`
	Destination   string             `bson:"destination"`
	ShopDomain    string             `bson:"shopDomain,omitempty"`
	ProductID     int64              `bson:"productId,omitempty"`
	ProductHandle string             `bson:"productHandle,omitempty"`
	PageID        int64              `bson:"pageId,omitempty"`
	ThemeID       int64              `bson:"themeId,omitempty"`
	Subdomain     string             `bson:"subdomain,omitempty"`
	ProductURL    string             `bson:"productUrl,omitempty"`
	PageURL       string             `bson:"pageUrl,omitempty"`
	CheckoutURL   string             `bson:"checkoutUrl,omitempty"`
	Outcome       string             `bson:"outcome"`
	Warnings      []string           `bson:"warnings,omitempty"`
	ExportedAt    time.Time          `bson:"exportedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoExportRecordDoc) ToDomain() *domain.ExportRecord {
	return &domain.ExportRecord{
		ID:            d.ID.Hex(),
		UserID:        d.UserID,
		SourceURL:     d.SourceURL,
		Destination:   domain.Destination(d.Destination),
		ShopDomain:    d.ShopDomain,
		ProductID:     uint64(d.ProductID),
		ProductHandle: d.ProductHandle,
		PageID:        uint64(d.PageID),
		ThemeID:       uint64(d.ThemeID),
		Subdomain:     d.Subdomain,
		ProductURL:    d.ProductURL,
		PageURL:       d.PageURL,
		CheckoutURL:   d.CheckoutURL,
		Outcome:       domain.ExportOutcome(d.Outcome),
		Warnings:      d.Warnings,
		ExportedAt:    d.ExportedAt,
	}
}

// MongoExportRecordDocFromDomain converts a domain entity to a MongoDB document.
// Shopify ids fit in int64; BSON has no unsigned integers.
func MongoExportRecordDocFromDomain(r *domain.ExportRecord) *MongoExportRecordDoc {
	return &MongoExportRecordDoc{
		UserID:        r.UserID,
		SourceURL:     r.SourceURL,
		Destination:   string(r.Destination),
		ShopDomain:    r.ShopDomain,
		ProductID:     int64(r.ProductID),
		ProductHandle: r.ProductHandle,
		PageID:        int64(r.PageID),
		ThemeID:       int64(r.ThemeID),
		Subdomain:     r.Subdomain,
		ProductURL:    r.ProductURL,
		PageURL:       r.PageURL,
		CheckoutURL:   r.CheckoutURL,
		Outcome:       string(r.Outcome),
		Warnings:      r.Warnings,
		ExportedAt:    r.ExportedAt,
	}
}
