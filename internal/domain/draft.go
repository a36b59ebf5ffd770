package domain

import (
	"time"

	"github.com/google/uuid"
)

// Draft is the editing session of one user working on one generated store.
// It lives from "start generation" until the user finishes or starts over.
type Draft struct {
	ID                    string        `json:"id"`
	UserID                string        `json:"userId"`
	SourceURL             string        `json:"sourceUrl"`
	Language              string        `json:"language"`
	Data                  StoreData     `json:"data"`
	Curator               *ImageCurator `json:"curator"`
	ReformulationDegraded bool          `json:"reformulationDegraded"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}

// NewDraft creates a draft with a fresh id.
func NewDraft(userID, sourceURL, language string, data StoreData, curator *ImageCurator) *Draft {
	now := time.Now().UTC()
	d := &Draft{
		ID:        uuid.NewString(),
		UserID:    userID,
		SourceURL: sourceURL,
		Language:  language,
		Data:      data,
		Curator:   curator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.SyncImages()
	return d
}

// SyncImages recomputes ProductImages as the selected curator images in order.
// Must run after every selection change and before any preview or export.
func (d *Draft) SyncImages() {
	if d.Curator == nil {
		d.Curator = &ImageCurator{}
	}
	d.Data.ProductImages = d.Curator.SelectedURLs()
}

// Apply merges user edits into the draft.
func (d *Draft) Apply(patch StoreDataPatch) {
	patch.Apply(&d.Data)
	d.Touch()
}

// Touch bumps UpdatedAt.
func (d *Draft) Touch() {
	d.UpdatedAt = time.Now().UTC()
}

// Snapshot returns a copy of the store data with images in sync.
func (d *Draft) Snapshot() StoreData {
	d.SyncImages()
	return d.Data.Clone()
}
