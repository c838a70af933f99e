package service

import (
	"context"

	"github.com/google/uuid"

	"wanderlust/internal/domains/review/model"
)

// ListingRefs maintains the review_ids of a listing. The listing repository
// satisfies it.
type ListingRefs interface {
	PullReview(ctx context.Context, listingID, reviewID uuid.UUID) error
}

type ServiceInterface interface {
	// Create validates the form and stores the review on listingID.
	Create(ctx context.Context, listingID, authorID uuid.UUID, form model.ReviewForm) (*model.Review, error)
	// Delete pulls the reference from the listing, then deletes the record.
	// Both halves are always attempted and their failures joined.
	Delete(ctx context.Context, listingID, reviewID uuid.UUID) error
	OwnerOf(ctx context.Context, reviewID uuid.UUID) (uuid.UUID, error)
}
