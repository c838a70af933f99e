package repository

import (
	"context"

	"github.com/google/uuid"

	"wanderlust/internal/domains/review/model"
)

type RepositoryInterface interface {
	// Create inserts the review and appends it to its listing's review_ids
	// in one transaction. model.ErrListingNotFound if the listing is gone.
	Create(ctx context.Context, r *model.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	// Delete removes the review row only; the listing reference is pulled
	// separately.
	Delete(ctx context.Context, id uuid.UUID) error
}
