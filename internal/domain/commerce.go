package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxExportImages is how many images a product payload carries.
const MaxExportImages = 10

// ProductInput is the normalized product payload sent to a commerce platform.
type ProductInput struct {
	Title          string
	Handle         string
	BodyHTML       string
	Vendor         string
	Price          decimal.Decimal
	CompareAtPrice decimal.Decimal
	SKU            string
	VariantID      uint64 // set on update to keep the existing variant
	Images         []string
}

// ProductRef identifies a product created or updated on the platform.
type ProductRef struct {
	ID        uint64
	Handle    string
	VariantID uint64
	SKU       string
}

// PageInput is a standalone content page.
type PageInput struct {
	Title     string
	Handle    string
	BodyHTML  string
	Published bool
}

// PageRef identifies a page on the platform.
type PageRef struct {
	ID     uint64
	Handle string
}

// ThemeRole mirrors the platform's theme roles we care about.
type ThemeRole string

const (
	ThemeRoleMain        ThemeRole = "main"
	ThemeRoleUnpublished ThemeRole = "unpublished"
)

// ThemeRef identifies a theme on the platform.
type ThemeRef struct {
	ID   uint64
	Name string
	Role ThemeRole
}

// ThemeAsset is one named file of a generated theme.
type ThemeAsset struct {
	Key   string
	Value string
}

// ShopInfo is what credential validation returns.
type ShopInfo struct {
	Domain          string
	MyshopifyDomain string
	Name            string
	Currency        string
}

var (
	handleInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	accentFolds   = strings.NewReplacer(
		"à", "a", "â", "a", "ä", "a", "á", "a",
		"ç", "c",
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"î", "i", "ï", "i", "í", "i",
		"ô", "o", "ö", "o", "ó", "o",
		"ù", "u", "û", "u", "ü", "u", "ú", "u",
		"ñ", "n",
	)
)

// Handle derives a URL handle from a product or store name.
func Handle(name string) string {
	s := accentFolds.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = handleInvalid.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 80 {
		s = strings.TrimRight(s[:80], "-")
	}
	return s
}

// StableHandle is Handle(name), or prefix followed by a short hash of the name when
// nothing usable is left after folding ("睡衣", "★★★"). Equal names give equal handles,
// so upserts by handle keep working. An empty name gives "".
func StableHandle(name, prefix string) string {
	if h := Handle(name); h != "" {
		return h
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(name))
	return prefix + "-" + hex.EncodeToString(sum[:])[:10]
}
