package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wanderlust/internal/domains/listing/model"
	"wanderlust/internal/domains/listing/repository"
	"wanderlust/internal/infrastructure/geocoding"
	"wanderlust/internal/infrastructure/queue"
	"wanderlust/internal/infrastructure/storage"
	"wanderlust/internal/shared/validator"
)

type listingService struct {
	repo       repository.RepositoryInterface
	images     ImageStore
	geocoder   geocoding.Geocoder
	enqueuer   queue.Enqueuer
	geoTimeout time.Duration
	now        func() time.Time
}

func NewListingService(
	repo repository.RepositoryInterface,
	images ImageStore,
	geocoder geocoding.Geocoder,
	enqueuer queue.Enqueuer,
	geoTimeout time.Duration,
) ServiceInterface {
	return &listingService{
		repo:       repo,
		images:     images,
		geocoder:   geocoder,
		enqueuer:   enqueuer,
		geoTimeout: geoTimeout,
		now:        time.Now,
	}
}

// ========================================
// READS
// ========================================

func (s *listingService) List(ctx context.Context, category string) ([]model.Listing, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return s.repo.List(ctx)
	}
	return s.repo.ListByCategory(ctx, model.Category(category))
}

func (s *listingService) Search(ctx context.Context, q string) ([]model.Listing, error) {
	return s.repo.Search(ctx, strings.TrimSpace(q))
}

func (s *listingService) Get(ctx context.Context, id uuid.UUID) (*model.Detail, error) {
	return s.repo.FindDetail(ctx, id)
}

func (s *listingService) GetForEdit(ctx context.Context, id uuid.UUID) (*model.EditView, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.EditView{Listing: l, PreviewURL: s.images.PreviewURL(l.Image.URL)}, nil
}

func (s *listingService) OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	return l.OwnerID, nil
}

// ========================================
// WRITES
// ========================================

func (s *listingService) Create(ctx context.Context, ownerID uuid.UUID, form model.ListingForm, image *storage.Upload) (*model.Listing, error) {
	// STEP 1: validate
	form.Normalize()
	if err := form.ValidateWithImage(image != nil && len(image.Data) > 0); err != nil {
		return nil, err
	}

	// STEP 2: store image
	ref, err := s.storeImage(ctx, *image)
	if err != nil {
		return nil, err
	}

	// STEP 3: geocode, best effort
	coords := geocoding.Resolve(ctx, s.geocoder, form.Location, s.geoTimeout)

	// STEP 4: persist
	now := s.now()
	l := &model.Listing{
		ID:        uuid.New(),
		Image:     model.Image{URL: ref.URL, Key: ref.Key},
		Geometry:  model.Geometry{Longitude: coords.Longitude, Latitude: coords.Latitude},
		OwnerID:   ownerID,
		ReviewIDs: []uuid.UUID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	form.Apply(l)

	if err := s.repo.Create(ctx, l); err != nil {
		s.deleteImageLater(ctx, ref.Key)
		return nil, fmt.Errorf("create listing: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("listing_id", l.ID.String()).
		Bool("geocoded", !l.Geometry.IsOrigin()).
		Msg("listing created")
	return l, nil
}

func (s *listingService) Update(ctx context.Context, id uuid.UUID, form model.ListingForm, image *storage.Upload) (*model.Listing, error) {
	// STEP 1: validate
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// STEP 2: optional image replacement
	oldKey := l.Image.Key
	replaced := false
	if image != nil && len(image.Data) > 0 {
		ref, err := s.storeImage(ctx, *image)
		if err != nil {
			return nil, err
		}
		l.Image = model.Image{URL: ref.URL, Key: ref.Key}
		replaced = true
	}

	// STEP 3: re-geocode
	form.Apply(l)
	coords := geocoding.Resolve(ctx, s.geocoder, form.Location, s.geoTimeout)
	l.Geometry = model.Geometry{Longitude: coords.Longitude, Latitude: coords.Latitude}
	l.UpdatedAt = s.now()

	// STEP 4: persist
	if err := s.repo.Update(ctx, l); err != nil {
		if replaced {
			s.deleteImageLater(ctx, l.Image.Key)
		}
		if errors.Is(err, model.ErrListingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update listing: %w", err)
	}

	if replaced && oldKey != "" {
		s.deleteImageLater(ctx, oldKey)
	}
	return l, nil
}

func (s *listingService) Delete(ctx context.Context, id uuid.UUID) error {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrListingNotFound) {
			return err
		}
		return fmt.Errorf("delete listing: %w", err)
	}
	if l.Image.Key != "" {
		s.deleteImageLater(ctx, l.Image.Key)
	}
	return nil
}

// ========================================
// HELPERS
// ========================================

func (s *listingService) storeImage(ctx context.Context, up storage.Upload) (storage.ImageRef, error) {
	ref, err := s.images.Store(ctx, up)
	if errors.Is(err, storage.ErrInvalidImage) {
		return storage.ImageRef{}, fmt.Errorf("%w: %w", validator.ErrValidation, err)
	}
	if err != nil {
		return storage.ImageRef{}, fmt.Errorf("store image: %w", err)
	}
	return ref, nil
}

// deleteImageLater enqueues removal of an image that no listing refers to.
// Failing to enqueue only leaks a blob, so it is logged and not returned.
func (s *listingService) deleteImageLater(ctx context.Context, key string) {
	if s.enqueuer == nil || key == "" {
		return
	}
	task, err := queue.NewDeleteImageTask(key)
	if err == nil {
		_, err = s.enqueuer.EnqueueContext(context.WithoutCancel(ctx), task)
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("image_key", key).Msg("failed to enqueue image deletion")
	}
}
