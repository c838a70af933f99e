package service

import (
	"context"

	"github.com/google/uuid"

	"wanderlust/internal/domains/listing/model"
	"wanderlust/internal/infrastructure/storage"
)

// ImageStore is the part of storage.ImageStore the listing pipeline needs.
// Old images are removed asynchronously through the queue.
type ImageStore interface {
	Store(ctx context.Context, up storage.Upload) (storage.ImageRef, error)
	PreviewURL(url string) string
}

type ServiceInterface interface {
	// List returns every listing, or only those in category when it is set.
	List(ctx context.Context, category string) ([]model.Listing, error)
	Search(ctx context.Context, q string) ([]model.Listing, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Detail, error)
	GetForEdit(ctx context.Context, id uuid.UUID) (*model.EditView, error)

	// Create runs validate, store image, geocode, persist. A failure at any
	// step leaves no listing row behind.
	Create(ctx context.Context, ownerID uuid.UUID, form model.ListingForm, image *storage.Upload) (*model.Listing, error)
	// Update keeps the current image when image is nil.
	Update(ctx context.Context, id uuid.UUID, form model.ListingForm, image *storage.Upload) (*model.Listing, error)
	Delete(ctx context.Context, id uuid.UUID) error

	OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}
