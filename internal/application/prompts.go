package application

import (
	_ "embed"
	"fmt"
	"strings"

	"store-generator/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// FallbackCopy is the deterministic copy used when reformulation degrades.
type FallbackCopy struct {
	Description  string   `yaml:"description"`
	Benefits     []string `yaml:"benefits"`
	CTA          string   `yaml:"cta"`
	Announcement string   `yaml:"announcement"`
}

// Prompts are the instruction presets for the text and image providers.
type Prompts struct {
	Reformulation struct {
		System string `yaml:"system"`
		User   string `yaml:"user"`
	} `yaml:"reformulation"`
	Languages   map[string]string       `yaml:"languages"`
	Fallback    map[string]FallbackCopy `yaml:"fallback"`
	ImageStyles map[string]string       `yaml:"image_styles"`
}

// LoadPrompts parses the embedded presets.
func LoadPrompts() (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(promptsYAML, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}
	if _, ok := p.Fallback["en"]; !ok {
		return nil, fmt.Errorf("prompts: missing english fallback")
	}
	for _, style := range []domain.ImageStyle{domain.StyleLifestyle, domain.StyleStudio, domain.StyleOutdoor, domain.StyleMinimal} {
		if p.ImageStyles[string(style)] == "" {
			return nil, fmt.Errorf("prompts: missing image style %q", style)
		}
	}
	return &p, nil
}

// MustLoadPrompts panics when the embedded presets are broken.
func MustLoadPrompts() *Prompts {
	p, err := LoadPrompts()
	if err != nil {
		panic(err)
	}
	return p
}

// LanguageName maps a language code to the name used in instructions.
func (p *Prompts) LanguageName(code string) string {
	if name, ok := p.Languages[strings.ToLower(code)]; ok {
		return name
	}
	return p.Languages["en"]
}

// FallbackFor returns the French copy for French and the English copy otherwise.
func (p *Prompts) FallbackFor(language string) FallbackCopy {
	if strings.HasPrefix(strings.ToLower(language), "fr") {
		return p.Fallback["fr"]
	}
	return p.Fallback["en"]
}

// SystemInstruction renders the reformulation system prompt.
func (p *Prompts) SystemInstruction(language string) string {
	return strings.ReplaceAll(p.Reformulation.System, "{{language}}", p.LanguageName(language))
}

// UserMessage renders the reformulation user prompt.
func (p *Prompts) UserMessage(title, description string) string {
	return strings.NewReplacer("{{title}}", title, "{{description}}", description).Replace(p.Reformulation.User)
}

// ImagePrompt renders the instruction for an AI image variant.
func (p *Prompts) ImagePrompt(style domain.ImageStyle, productName string) string {
	return strings.TrimSpace(strings.NewReplacer(
		"{{style}}", p.ImageStyles[string(style)],
		"{{product}}", productName,
	).Replace(p.ImageStyles["template"]))
}
