package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewImageCuratorSelectsEverything(t *testing.T) {
	c := NewImageCurator([]string{"a", "b", "c"})
	if c.SelectedCount() != 3 {
		t.Fatalf("SelectedCount() = %d, want 3", c.SelectedCount())
	}
	if got := c.SelectedURLs(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("SelectedURLs() = %v", got)
	}
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	c := NewImageCurator([]string{"a", "b", "c"})
	before := c.SelectedURLs()
	id := c.Images[1].ID

	if err := c.Toggle(id); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got := c.SelectedURLs(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("after one toggle SelectedURLs() = %v", got)
	}
	if err := c.Toggle(id); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got := c.SelectedURLs(); !reflect.DeepEqual(got, before) {
		t.Errorf("after two toggles SelectedURLs() = %v, want %v", got, before)
	}
}

func TestToggleUnknownImage(t *testing.T) {
	c := NewImageCurator([]string{"a"})
	if err := c.Toggle("missing"); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("Toggle(missing) = %v, want ErrImageNotFound", err)
	}
}

func TestReferenceImage(t *testing.T) {
	c := NewImageCurator([]string{"a", "b"})
	gen := c.PrependGenerated("g")
	if c.Images[0].ID != gen.ID || !c.Images[0].IsSelected {
		t.Fatal("generated image must be prepended and selected")
	}

	ref, err := c.ReferenceImage()
	if err != nil {
		t.Fatalf("ReferenceImage: %v", err)
	}
	if ref.URL != "a" {
		t.Errorf("reference = %q, want first scraped image", ref.URL)
	}

	c.Toggle(c.Images[1].ID)
	c.Toggle(c.Images[2].ID)
	ref, err = c.ReferenceImage()
	if err != nil || ref.URL != "g" {
		t.Errorf("reference = %q, %v; want generated image as fallback", ref.URL, err)
	}

	c.Toggle(gen.ID)
	if _, err := c.ReferenceImage(); !errors.Is(err, ErrNoReferenceImage) {
		t.Errorf("expected NoReferenceImage, got %v", err)
	}
}

func TestDraftSnapshotFollowsSelection(t *testing.T) {
	d := NewDraft("u", "https://x", "fr", StoreData{ProductName: "P"}, NewImageCurator([]string{"a", "b"}))
	d.Curator.Toggle(d.Curator.Images[0].ID)

	snap := d.Snapshot()
	if !reflect.DeepEqual(snap.ProductImages, []string{"b"}) {
		t.Fatalf("snapshot images = %v, want [b]", snap.ProductImages)
	}

	snap.ProductImages[0] = "changed"
	if d.Data.ProductImages[0] != "b" {
		t.Error("snapshot must not alias the draft")
	}
}
