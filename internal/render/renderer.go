package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"store-generator/internal/domain"
)

//go:embed templates/*.html
var pageFS embed.FS

//go:embed theme/*.tmpl
var themeFS embed.FS

// themeFiles maps each generated theme asset key to the template that renders it.
var themeFiles = []struct {
	Key      string
	Template string
}{
	{Key: "layout/theme.liquid", Template: "theme.liquid.tmpl"},
	{Key: "templates/index.liquid", Template: "index.liquid.tmpl"},
	{Key: "templates/product.liquid", Template: "product.liquid.tmpl"},
	{Key: "assets/store-generator.css", Template: "store-generator.css.tmpl"},
	{Key: "config/settings_data.json", Template: "settings_data.json.tmpl"},
	{Key: "locales/en.default.json", Template: "en.default.json.tmpl"},
}

var pageFuncs = template.FuncMap{
	"stars": func(n int) string {
		if n <= 0 || n > 5 {
			n = 5
		}
		return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
	},
}

var themeFuncs = texttemplate.FuncMap{
	"html": template.HTMLEscapeString,
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	},
}

// Renderer produces the preview pages, the exported product body and the theme files
// from embedded templates. It holds no state besides the parsed templates and is safe
// for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
	body  *template.Template
	theme *texttemplate.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	base, err := template.New("base").Funcs(pageFuncs).ParseFS(pageFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{"product", "home", "landing"} {
		set, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base template: %w", err)
		}
		if _, err := set.ParseFS(pageFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = set
	}

	r.body, err = template.New("body").ParseFS(pageFS, "templates/product_body.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse product body template: %w", err)
	}

	r.theme, err = texttemplate.New("theme").Delims("[[", "]]").Funcs(themeFuncs).ParseFS(themeFS, "theme/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse theme templates: %w", err)
	}
	return r, nil
}

// ProductPage renders the product detail page.
func (r *Renderer) ProductPage(data domain.StoreData) (string, error) {
	return r.page("product", data)
}

// HomePage renders the store home page.
func (r *Renderer) HomePage(data domain.StoreData) (string, error) {
	return r.page("home", data)
}

// LandingPage renders the single-product sales page used for Shopify pages and
// internal stores.
func (r *Renderer) LandingPage(data domain.StoreData) (string, error) {
	return r.page("landing", data)
}

func (r *Renderer) page(name string, data domain.StoreData) (string, error) {
	var buf bytes.Buffer
	if err := r.pages[name].ExecuteTemplate(&buf, "page", newView(data)); err != nil {
		return "", fmt.Errorf("failed to render %s page: %w", name, err)
	}
	return buf.String(), nil
}

// ProductBody renders the description HTML attached to an exported product.
func (r *Renderer) ProductBody(data domain.StoreData) (string, error) {
	var buf bytes.Buffer
	if err := r.body.ExecuteTemplate(&buf, "body", newView(data)); err != nil {
		return "", fmt.Errorf("failed to render product body: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// ThemeAssets renders every file of the generated theme, in upload order.
func (r *Renderer) ThemeAssets(data domain.StoreData) ([]domain.ThemeAsset, error) {
	v := newView(data)
	assets := make([]domain.ThemeAsset, 0, len(themeFiles))
	for _, f := range themeFiles {
		var buf bytes.Buffer
		if err := r.theme.ExecuteTemplate(&buf, f.Template, v); err != nil {
			return nil, fmt.Errorf("failed to render theme asset %s: %w", f.Key, err)
		}
		assets = append(assets, domain.ThemeAsset{Key: f.Key, Value: buf.String()})
	}
	return assets, nil
}
