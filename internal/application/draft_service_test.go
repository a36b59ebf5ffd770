package application

import (
	"context"
	"errors"
	"testing"

	"store-generator/internal/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type draftFixture struct {
	service *DraftService
	drafts  *fakeDraftStore
	configs *fakeConfigs
	images  *fakeImageGenerator
}

func newDraftFixture(t *testing.T, text *fakeTextGenerator) *draftFixture {
	t.Helper()
	prompts := MustLoadPrompts()
	f := &draftFixture{
		drafts:  newFakeDraftStore(),
		configs: newFakeConfigs(),
		images:  &fakeImageGenerator{url: "https://img.example.com/generated.png"},
	}
	extractor := &fakeExtractor{page: &domain.ExtractedPage{
		Markdown: "# Lampe Nuage LED\n\n€19,99\n",
		HTML:     `<img src="https://ae01.alicdn.com/kf/a.jpg"><img src="https://ae01.alicdn.com/kf/b.jpg">`,
	}}
	deps := DraftServiceDeps{
		Fetcher:  NewSourceFetcher(extractor, 0, nil, zerolog.Nop()),
		Images:   f.images,
		Drafts:   f.drafts,
		Configs:  f.configs,
		Renderer: fakeRenderer{},
		Prompts:  prompts,
	}
	if text != nil {
		deps.Reformulator = NewReformulator(text, prompts, 0, nil, zerolog.Nop())
	} else {
		deps.Reformulator = NewReformulator(nil, prompts, 0, nil, zerolog.Nop())
	}
	f.service = NewDraftService(deps, zerolog.Nop())
	return f
}

func (f *draftFixture) generate(t *testing.T) *domain.Draft {
	t.Helper()
	draft, err := f.service.Generate(context.Background(), GenerateInput{
		UserID: "user-1",
		URL:    "https://www.aliexpress.com/item/1005001.html",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return draft
}

func TestGenerateAppliesDisplayPricing(t *testing.T) {
	f := newDraftFixture(t, nil)
	draft := f.generate(t)

	if !draft.Data.ProductPrice.Equal(decimal.RequireFromString("39.98")) {
		t.Errorf("ProductPrice = %s, want 39.98", draft.Data.ProductPrice)
	}
	if !draft.Data.OriginalPrice.Equal(decimal.RequireFromString("59.97")) {
		t.Errorf("OriginalPrice = %s, want 59.97", draft.Data.OriginalPrice)
	}
	if draft.Data.Currency != "EUR" || draft.Language != DefaultLanguage {
		t.Errorf("currency = %q, language = %q", draft.Data.Currency, draft.Language)
	}
	if !draft.ReformulationDegraded {
		t.Error("ReformulationDegraded = false without a text generator")
	}
	if draft.Data.StoreName != "Lampe Nuage" {
		t.Errorf("StoreName = %q, want first two words", draft.Data.StoreName)
	}
	if len(draft.Data.ProductImages) != 2 || draft.Curator.SelectedCount() != 2 {
		t.Errorf("images = %v", draft.Data.ProductImages)
	}
	if len(f.configs.configs) != 1 {
		t.Errorf("history entries = %d, want 1", len(f.configs.configs))
	}
}

func TestGenerateUsesReformulatedCopy(t *testing.T) {
	f := newDraftFixture(t, &fakeTextGenerator{response: `{"title":"Nuage Magique Lumineux","headline":"Dormez mieux","description":"Lumière douce.","benefits":["a","b","c"],"cta":"Commander"}`})
	draft := f.generate(t)

	if draft.ReformulationDegraded {
		t.Error("ReformulationDegraded = true")
	}
	if draft.Data.ProductName != "Nuage Magique Lumineux" || draft.Data.CTA != "Commander" {
		t.Errorf("data = %+v", draft.Data)
	}
	if draft.Data.StoreName != "Nuage Magique" {
		t.Errorf("StoreName = %q", draft.Data.StoreName)
	}
}

func TestGenerateHistoryFailureIsNotFatal(t *testing.T) {
	f := newDraftFixture(t, nil)
	f.configs.err = errors.New("mongo down")

	draft := f.generate(t)
	if stored, _ := f.drafts.Get(context.Background(), draft.ID); stored == nil {
		t.Error("draft not saved")
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	f := newDraftFixture(t, nil)
	if _, err := f.service.Generate(context.Background(), GenerateInput{URL: "https://aliexpress.com/item/1.html"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing user: err = %v", err)
	}
	if _, err := f.service.Generate(context.Background(), GenerateInput{UserID: "u", URL: "   "}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty url: err = %v", err)
	}
}

func TestDraftOwnership(t *testing.T) {
	f := newDraftFixture(t, nil)
	draft := f.generate(t)

	if _, err := f.service.Get(context.Background(), "someone-else", draft.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
	if _, err := f.service.Get(context.Background(), "user-1", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestPatchKeepsImages(t *testing.T) {
	f := newDraftFixture(t, nil)
	draft := f.generate(t)
	name := "Lampe Étoile"

	patched, err := f.service.Patch(context.Background(), "user-1", draft.ID, domain.StoreDataPatch{ProductName: &name})
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if patched.Data.ProductName != name || len(patched.Data.ProductImages) != 2 {
		t.Errorf("data = %+v", patched.Data)
	}
}

func TestToggleImage(t *testing.T) {
	f := newDraftFixture(t, nil)
	draft := f.generate(t)
	imageID := draft.Curator.Images[0].ID

	toggled, err := f.service.ToggleImage(context.Background(), "user-1", draft.ID, imageID)
	if err != nil {
		t.Fatalf("ToggleImage: %v", err)
	}
	if len(toggled.Data.ProductImages) != 1 || toggled.Data.ProductImages[0] != "https://ae01.alicdn.com/kf/b.jpg" {
		t.Errorf("ProductImages = %v", toggled.Data.ProductImages)
	}

	if _, err := f.service.ToggleImage(context.Background(), "user-1", draft.ID, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown image: err = %v, want not found", err)
	}
}

func TestRequestAIVariantPrependsImage(t *testing.T) {
	f := newDraftFixture(t, nil)
	draft := f.generate(t)

	img, err := f.service.RequestAIVariant(context.Background(), "user-1", draft.ID, "studio")
	if err != nil {
		t.Fatalf("RequestAIVariant: %v", err)
	}
	if !img.IsAIGenerated || !img.IsSelected {
		t.Errorf("image = %+v", img)
	}
	if f.images.reference != "https://ae01.alicdn.com/kf/a.jpg" {
		t.Errorf("reference = %q, want first scraped image", f.images.reference)
	}

	stored, _ := f.service.Get(context.Background(), "user-1", draft.ID)
	if stored.Curator.Images[0].URL != "https://img.example.com/generated.png" {
		t.Errorf("first image = %+v", stored.Curator.Images[0])
	}
	if len(stored.Data.ProductImages) != 3 {
		t.Errorf("ProductImages = %v", stored.Data.ProductImages)
	}
}

func TestRequestAIVariantFailureLeavesDraftUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{"rate limited", domain.NewImageGenerationError(domain.ReasonRateLimited, "slow down", nil), domain.ReasonRateLimited},
		{"quota", domain.NewImageGenerationError(domain.ReasonQuotaExceeded, "no credits", nil), domain.ReasonQuotaExceeded},
		{"plain error", errors.New("boom"), domain.ReasonGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDraftFixture(t, nil)
			draft := f.generate(t)
			saves := f.drafts.saves
			f.images.err = tt.err

			_, err := f.service.RequestAIVariant(context.Background(), "user-1", draft.ID, "lifestyle")
			var pe *domain.PipelineError
			if !errors.As(err, &pe) || pe.Kind != domain.KindImageGenerationFailed || pe.Reason != tt.reason {
				t.Fatalf("err = %v, want image generation failure (%s)", err, tt.reason)
			}
			if f.drafts.saves != saves {
				t.Error("draft saved after a failed variant")
			}
			stored, _ := f.service.Get(context.Background(), "user-1", draft.ID)
			if len(stored.Curator.Images) != 2 {
				t.Errorf("images = %d, want 2", len(stored.Curator.Images))
			}
		})
	}
}

func TestRequestAIVariantNeedsReference(t *testing.T) {
	f := newDraftFixture(t, nil)
	draft := f.generate(t)
	for _, img := range draft.Curator.Images {
		if _, err := f.service.ToggleImage(context.Background(), "user-1", draft.ID, img.ID); err != nil {
			t.Fatalf("ToggleImage: %v", err)
		}
	}

	_, err := f.service.RequestAIVariant(context.Background(), "user-1", draft.ID, "minimal")
	if !errors.Is(err, domain.ErrNoReferenceImage) {
		t.Fatalf("err = %v, want no reference image", err)
	}
	if f.images.reference != "" {
		t.Error("image provider called without a reference")
	}
}

func TestRequestAIVariantRejectsUnknownStyle(t *testing.T) {
	f := newDraftFixture(t, nil)
	draft := f.generate(t)
	if _, err := f.service.RequestAIVariant(context.Background(), "user-1", draft.ID, "cyberpunk"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestPreview(t *testing.T) {
	f := newDraftFixture(t, nil)
	draft := f.generate(t)

	tests := []struct {
		kind PreviewKind
		want string
	}{
		{PreviewProduct, "<product>Lampe Nuage LED</product>"},
		{"", "<product>Lampe Nuage LED</product>"},
		{PreviewHome, "<home>Lampe Nuage</home>"},
		{PreviewLanding, "<landing>Lampe Nuage LED</landing>"},
	}
	for _, tt := range tests {
		got, err := f.service.Preview(context.Background(), "user-1", draft.ID, tt.kind)
		if err != nil || got != tt.want {
			t.Errorf("Preview(%q) = %q, %v; want %q", tt.kind, got, err, tt.want)
		}
	}
	if _, err := f.service.Preview(context.Background(), "user-1", draft.ID, "cart"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown kind: err = %v", err)
	}
}

func TestDeleteAndReopen(t *testing.T) {
	f := newDraftFixture(t, nil)
	draft := f.generate(t)

	if err := f.service.Delete(context.Background(), "user-1", draft.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.service.Get(context.Background(), "user-1", draft.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted draft still readable: %v", err)
	}

	cfg := f.configs.configs["user-1|"+draft.SourceURL]
	reopened, err := f.service.Reopen(context.Background(), "user-1", cfg)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if reopened.ID == draft.ID || reopened.Data.ProductName != draft.Data.ProductName {
		t.Errorf("reopened = %+v", reopened)
	}
	if reopened.Curator.SelectedCount() != 2 {
		t.Errorf("selected = %d, want 2", reopened.Curator.SelectedCount())
	}
}
