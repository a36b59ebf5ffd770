package domain

import "time"

// SavedConfiguration is the history entry of a generated store, one per user and source URL.
type SavedConfiguration struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	SourceURL string    `json:"sourceUrl"`
	Language  string    `json:"language"`
	Data      StoreData `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
