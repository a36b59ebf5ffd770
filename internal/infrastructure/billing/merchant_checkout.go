package billing

import (
	"context"
	"fmt"
	"strings"

	"store-generator/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe accepts at most 8 product images on a checkout line item.
const maxCheckoutImages = 8

// MerchantCheckout creates one-off payment pages on the merchant's own Stripe account.
type MerchantCheckout struct{}

// NewMerchantCheckout creates a merchant checkout
func NewMerchantCheckout() *MerchantCheckout {
	return &MerchantCheckout{}
}

func (m *MerchantCheckout) CreateProductCheckout(ctx context.Context, secretKey string, data domain.StoreData, successURL, cancelURL string) (string, error) {
	if !data.ProductPrice.IsPositive() {
		return "", domain.Validationf("the product has no price")
	}
	currency := strings.ToLower(data.Currency)
	if currency == "" {
		currency = strings.ToLower(domain.DefaultCurrency)
	}

	images := data.ProductImages
	if len(images) > maxCheckoutImages {
		images = images[:maxCheckoutImages]
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(minorUnits(data.ProductPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:   stripe.String(data.ProductName),
					Images: stripe.StringSlice(images),
				},
			},
		}},
	}
	params.Context = ctx

	session, err := client.New(secretKey, nil).CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create merchant checkout: %w", err)
	}
	return session.URL, nil
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
