package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateForExport(t *testing.T) {
	tests := []struct {
		name    string
		data    StoreData
		wantErr bool
	}{
		{"valid", StoreData{ProductName: "Lamp", ProductImages: []string{"https://img/a.jpg"}}, false},
		{"no images", StoreData{ProductName: "Lamp"}, true},
		{"blank images", StoreData{ProductName: "Lamp", ProductImages: []string{" "}}, true},
		{"no name", StoreData{ProductName: "  ", ProductImages: []string{"https://img/a.jpg"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.ValidateForExport()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateForExport() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestPatchLeavesImagesAlone(t *testing.T) {
	d := StoreData{ProductName: "Old", Headline: "Keep", ProductImages: []string{"a"}}
	name := "New"
	StoreDataPatch{ProductName: &name}.Apply(&d)

	if d.ProductName != "New" || d.Headline != "Keep" {
		t.Errorf("unexpected data after patch: %+v", d)
	}
	if len(d.ProductImages) != 1 {
		t.Error("patch must not touch images")
	}
}

func TestHandle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Lampe Nuage LED", "lampe-nuage-led"},
		{"  Sac à dos été 2024 ", "sac-a-dos-ete-2024"},
		{"Crème -- Visage!!", "creme-visage"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Handle(tt.in); got != tt.want {
			t.Errorf("Handle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStableHandle(t *testing.T) {
	if got := StableHandle("Lampe Nuage LED", "product"); got != "lampe-nuage-led" {
		t.Errorf("latin name: got %q", got)
	}
	if got := StableHandle("   ", "product"); got != "" {
		t.Errorf("blank name: got %q", got)
	}

	seen := map[string]string{}
	for _, name := range []string{"Пижама шелковая", "睡衣", "★★★"} {
		got := StableHandle(name, "product")
		if !strings.HasPrefix(got, "product-") || len(got) != len("product-")+10 {
			t.Errorf("StableHandle(%q) = %q", name, got)
		}
		if again := StableHandle(name, "product"); again != got {
			t.Errorf("StableHandle(%q) not stable: %q then %q", name, got, again)
		}
		if other, ok := seen[got]; ok {
			t.Errorf("%q and %q share handle %q", name, other, got)
		}
		seen[got] = name
	}
}

func TestNormalizeSubdomain(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"My Store", "my-store", false},
		{"  lampe__nuage ", "lampenuage", false},
		{"a--b--c", "a-b-c", false},
		{"ab", "", true},
		{"www", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeSubdomain(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("NormalizeSubdomain(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNormalizeShopDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"demo", "demo.myshopify.com", false},
		{"Demo.myshopify.com", "demo.myshopify.com", false},
		{"https://demo.myshopify.com/admin/products", "demo.myshopify.com", false},
		{"evil.com", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeShopDomain(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("NormalizeShopDomain(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestPipelineErrorMatchesKind(t *testing.T) {
	err := NewError(KindNotConnected, "connect first", errors.New("no row"))
	if !errors.Is(err, ErrNotConnected) {
		t.Error("expected errors.Is to match by kind")
	}
	if errors.Is(err, ErrAuthFailed) {
		t.Error("different kinds must not match")
	}
	if KindOf(err) != KindNotConnected {
		t.Errorf("KindOf = %q", KindOf(err))
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("unclassified errors have no kind")
	}
}
