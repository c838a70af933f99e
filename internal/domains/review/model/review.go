package model

import (
	"time"

	"github.com/google/uuid"
)

// Review belongs to one listing and is referenced from its review_ids.
type Review struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"` // 1-5
	CreatedAt time.Time `json:"created_at"`
}

func (r *Review) IsAuthoredBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && r.AuthorID == userID
}
