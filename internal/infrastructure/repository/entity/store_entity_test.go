package entity

import (
	"testing"

	"store-generator/internal/domain"

	"github.com/shopspring/decimal"
)

func TestStoreDataPricesAreStoredAsFixedStrings(t *testing.T) {
	data := domain.StoreData{
		ProductName:   "Lampe",
		ProductPrice:  decimal.RequireFromString("39.98"),
		OriginalPrice: decimal.RequireFromString("60"),
	}

	doc := MongoStoreDataDocFromDomain(data)
	if doc.ProductPrice != "39.98" || doc.OriginalPrice != "60.00" {
		t.Errorf("stored prices = %q / %q", doc.ProductPrice, doc.OriginalPrice)
	}

	back := doc.ToDomain()
	if !back.ProductPrice.Equal(data.ProductPrice) || !back.OriginalPrice.Equal(data.OriginalPrice) {
		t.Errorf("prices = %s / %s", back.ProductPrice, back.OriginalPrice)
	}
}

func TestUnreadablePriceIsZero(t *testing.T) {
	doc := MongoStoreDataDoc{ProductPrice: "abc"}
	if got := doc.ToDomain().ProductPrice; !got.IsZero() {
		t.Errorf("ProductPrice = %s, want 0", got)
	}
}

func TestPaymentDocKeepsNil(t *testing.T) {
	if MongoPaymentDocFromDomain(nil) != nil {
		t.Error("nil payment became a document")
	}
	var doc *MongoPaymentDoc
	if doc.ToDomain() != nil {
		t.Error("nil document became a payment")
	}
}
