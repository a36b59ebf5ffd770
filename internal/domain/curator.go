package domain

import "github.com/google/uuid"

// CuratedImage is one candidate image of a draft.
type CuratedImage struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	IsAIGenerated bool   `json:"isAiGenerated"`
	IsSelected    bool   `json:"isSelected"`
}

// ImageStyle selects the generation instruction for an AI variant.
type ImageStyle string

const (
	StyleLifestyle ImageStyle = "lifestyle"
	StyleStudio    ImageStyle = "studio"
	StyleOutdoor   ImageStyle = "outdoor"
	StyleMinimal   ImageStyle = "minimal"
)

// ParseImageStyle validates a style name.
func ParseImageStyle(s string) (ImageStyle, error) {
	switch ImageStyle(s) {
	case StyleLifestyle, StyleStudio, StyleOutdoor, StyleMinimal:
		return ImageStyle(s), nil
	}
	return "", Validationf("unknown image style %q", s)
}

// ImageCurator owns the ordered, selectable image set of a draft.
// It does not enforce that something stays selected; callers check before export.
type ImageCurator struct {
	Images []CuratedImage `json:"images"`
}

// NewImageCurator builds a curator from scraped URLs, all selected.
func NewImageCurator(urls []string) *ImageCurator {
	c := &ImageCurator{Images: make([]CuratedImage, 0, len(urls))}
	for _, u := range urls {
		c.Images = append(c.Images, CuratedImage{ID: uuid.NewString(), URL: u, IsSelected: true})
	}
	return c
}

// Toggle flips the selection of one image.
func (c *ImageCurator) Toggle(id string) error {
	for i := range c.Images {
		if c.Images[i].ID == id {
			c.Images[i].IsSelected = !c.Images[i].IsSelected
			return nil
		}
	}
	return ErrImageNotFound
}

// ReferenceImage picks the image used as reference for an AI variant: the first
// selected scraped image, else the first selected one.
func (c *ImageCurator) ReferenceImage() (CuratedImage, error) {
	var fallback *CuratedImage
	for i := range c.Images {
		img := c.Images[i]
		if !img.IsSelected {
			continue
		}
		if !img.IsAIGenerated {
			return img, nil
		}
		if fallback == nil {
			fallback = &c.Images[i]
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return CuratedImage{}, NewError(KindNoReferenceImage, "select at least one image to use as reference", nil)
}

// PrependGenerated inserts an AI image at the front, selected.
func (c *ImageCurator) PrependGenerated(url string) CuratedImage {
	img := CuratedImage{ID: uuid.NewString(), URL: url, IsAIGenerated: true, IsSelected: true}
	c.Images = append([]CuratedImage{img}, c.Images...)
	return img
}

// SelectedURLs returns the selected image URLs in curator order.
func (c *ImageCurator) SelectedURLs() []string {
	urls := make([]string, 0, len(c.Images))
	for _, img := range c.Images {
		if img.IsSelected {
			urls = append(urls, img.URL)
		}
	}
	return urls
}

// SelectedCount reports how many images are selected.
func (c *ImageCurator) SelectedCount() int {
	n := 0
	for _, img := range c.Images {
		if img.IsSelected {
			n++
		}
	}
	return n
}
