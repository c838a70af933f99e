package repository

import (
	"context"

	"github.com/google/uuid"

	"wanderlust/internal/domains/listing/model"
)

// RepositoryInterface is the listings table contract. Methods that target a
// single listing return model.ErrListingNotFound when it does not exist.
type RepositoryInterface interface {
	Create(ctx context.Context, l *model.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Listing, error)
	// FindDetail resolves the owner and the reviews with their authors,
	// in review_ids order. Dangling review ids are skipped.
	FindDetail(ctx context.Context, id uuid.UUID) (*model.Detail, error)
	// Update writes the editable fields. Concurrent updates are last-write-wins.
	Update(ctx context.Context, l *model.Listing) error
	// Delete removes the listing and its reviews in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context) ([]model.Listing, error)
	ListByCategory(ctx context.Context, category model.Category) ([]model.Listing, error)
	// Search matches q case-insensitively as a substring of title, country or location.
	Search(ctx context.Context, q string) ([]model.Listing, error)

	// PullReview drops reviewID from the listing's review_ids. Appending
	// happens inside the review insert transaction.
	PullReview(ctx context.Context, listingID, reviewID uuid.UUID) error

	// ListAtOrigin returns listings still at (0,0), oldest first. limit 0 means all.
	ListAtOrigin(ctx context.Context, limit int) ([]model.Listing, error)
	SetGeometry(ctx context.Context, id uuid.UUID, g model.Geometry) error
	SetCategory(ctx context.Context, id uuid.UUID, c model.Category) error
}
