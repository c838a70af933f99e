package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wanderlust/internal/domains/review/model"
	"wanderlust/internal/domains/review/repository"
	"wanderlust/internal/infrastructure/queue"
	"wanderlust/internal/shared"
)

type reviewService struct {
	repo     repository.RepositoryInterface
	listings ListingRefs
	enqueuer queue.Enqueuer
	now      func() time.Time
}

func NewReviewService(repo repository.RepositoryInterface, listings ListingRefs, enqueuer queue.Enqueuer) ServiceInterface {
	return &reviewService{
		repo:     repo,
		listings: listings,
		enqueuer: enqueuer,
		now:      time.Now,
	}
}

func (s *reviewService) Create(ctx context.Context, listingID, authorID uuid.UUID, form model.ReviewForm) (*model.Review, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	review := &model.Review{
		ID:        uuid.New(),
		ListingID: listingID,
		AuthorID:  authorID,
		Comment:   form.Comment,
		Rating:    form.RatingValue(),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, model.ErrListingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("review_id", review.ID.String()).
		Str("listing_id", listingID.String()).
		Msg("review created")
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, listingID, reviewID uuid.UUID) error {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.ListingID != listingID {
		return model.ErrReviewNotFound
	}

	// STEP 1: pull the reference so the listing never shows a missing review
	var pullErr error
	if err := s.listings.PullReview(ctx, listingID, reviewID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		pullErr = fmt.Errorf("pull review reference: %w", err)
	}

	// STEP 2: delete the record, even if the pull failed
	var deleteErr error
	if err := s.repo.Delete(ctx, reviewID); err != nil && !errors.Is(err, model.ErrReviewNotFound) {
		deleteErr = fmt.Errorf("delete review record: %w", err)
	}

	// STEP 3: the reference is gone but the row is not; retry in the background
	if pullErr == nil && deleteErr != nil {
		s.schedulePurge(ctx, reviewID, listingID)
	}

	return errors.Join(pullErr, deleteErr)
}

func (s *reviewService) OwnerOf(ctx context.Context, reviewID uuid.UUID) (uuid.UUID, error) {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return uuid.Nil, err
	}
	return review.AuthorID, nil
}

func (s *reviewService) schedulePurge(ctx context.Context, reviewID, listingID uuid.UUID) {
	logger := zerolog.Ctx(ctx)
	if s.enqueuer == nil {
		logger.Error().Str("review_id", reviewID.String()).Msg("review record left behind, no queue configured")
		return
	}
	task, err := queue.NewPurgeReviewTask(reviewID, listingID)
	if err == nil {
		_, err = s.enqueuer.EnqueueContext(context.WithoutCancel(ctx), task)
	}
	if err != nil {
		logger.Error().Err(err).Str("review_id", reviewID.String()).Msg("failed to enqueue review purge")
		return
	}
	logger.Warn().Str("review_id", reviewID.String()).Msg("review purge scheduled")
}
