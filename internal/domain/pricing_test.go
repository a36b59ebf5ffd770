package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDisplayPricing(t *testing.T) {
	tests := []struct {
		real         string
		wantPrice    string
		wantOriginal string
	}{
		{"19.99", "39.98", "59.97"},
		{"0.5", "1", "1.5"},
		{"12.345", "24.69", "37.04"},
	}
	for _, tt := range tests {
		t.Run(tt.real, func(t *testing.T) {
			price, original := DisplayPricing(decimal.RequireFromString(tt.real))
			if !price.Equal(decimal.RequireFromString(tt.wantPrice)) {
				t.Errorf("price = %s, want %s", price, tt.wantPrice)
			}
			if !original.Equal(decimal.RequireFromString(tt.wantOriginal)) {
				t.Errorf("original = %s, want %s", original, tt.wantOriginal)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"19,99", "19.99"},
		{"19.99", "19.99"},
		{"1 299.00", "1299"},
		{"1,299.50", "1299.5"},
		{"1.299,00", "1299"},
		{"1\u00a0299,99", "1299.99"},
		{"2,500", "2500"},
		{"7", "7"},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		if err != nil {
			t.Fatalf("ParsePrice(%q) error = %v", tt.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParsePrice(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParsePrice("free"); err == nil {
		t.Error("expected error for non-numeric price")
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"39.98", "EUR", "39,98 €"},
		{"39.98", "", "39,98 €"},
		{"10", "USD", "$10.00"},
		{"5.5", "GBP", "£5.50"},
		{"3", "CHF", "3.00 CHF"},
	}
	for _, tt := range tests {
		if got := FormatPrice(decimal.RequireFromString(tt.amount), tt.currency); got != tt.want {
			t.Errorf("FormatPrice(%s, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestDiscountPercent(t *testing.T) {
	d := StoreData{ProductPrice: decimal.RequireFromString("39.98"), OriginalPrice: decimal.RequireFromString("59.97")}
	if got := d.DiscountPercent(); got != 33 {
		t.Errorf("DiscountPercent() = %d, want 33", got)
	}

	d.OriginalPrice = decimal.RequireFromString("30")
	if got := d.DiscountPercent(); got != 0 {
		t.Errorf("DiscountPercent() with lower original = %d, want 0", got)
	}
}
