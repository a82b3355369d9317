package entities

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark marks a verse the user wants to come back to.
type Bookmark struct {
	ID         string    `json:"id"`
	SurahID    int       `json:"surahId"`
	AyahNumber int       `json:"ayahNumber"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewBookmark creates a bookmark with a fresh id.
func NewBookmark(surahID, ayahNumber int, note string, now time.Time) Bookmark {
	return Bookmark{
		ID:         uuid.NewString(),
		SurahID:    surahID,
		AyahNumber: ayahNumber,
		Note:       note,
		CreatedAt:  now.UTC(),
	}
}
