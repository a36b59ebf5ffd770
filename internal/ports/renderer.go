package ports

import "store-generator/internal/domain"

// Renderer turns store data into HTML pages and theme files. Implementations are pure.
type Renderer interface {
	ProductPage(data domain.StoreData) (string, error)
	HomePage(data domain.StoreData) (string, error)
	LandingPage(data domain.StoreData) (string, error)
	ThemeAssets(data domain.StoreData) ([]domain.ThemeAsset, error)
	// ProductBody is the description HTML sent with an exported product.
	ProductBody(data domain.StoreData) (string, error)
}
