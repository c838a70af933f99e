package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"wanderlust/internal/domains/review/model"
	"wanderlust/internal/domains/review/repository"
	"wanderlust/internal/domains/review/service"
	"wanderlust/internal/infrastructure/queue"
	"wanderlust/internal/shared"
)

// PurgeReviewHandler finishes a review deletion whose record delete failed.
// It is idempotent: a review or reference that is already gone counts as done.
type PurgeReviewHandler struct {
	repo     repository.RepositoryInterface
	listings service.ListingRefs
}

func NewPurgeReviewHandler(repo repository.RepositoryInterface, listings service.ListingRefs) *PurgeReviewHandler {
	return &PurgeReviewHandler{repo: repo, listings: listings}
}

func (h *PurgeReviewHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.Decode[queue.PurgeReviewPayload](task)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode purge review payload")
		return err
	}

	if err := h.listings.PullReview(ctx, payload.ListingID, payload.ReviewID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("pull review reference: %w", err)
	}

	err = h.repo.Delete(ctx, payload.ReviewID)
	if err != nil && !errors.Is(err, model.ErrReviewNotFound) {
		log.Error().
			Err(err).
			Str("review_id", payload.ReviewID.String()).
			Msg("Failed to purge review")
		return fmt.Errorf("purge review: %w", err)
	}

	log.Info().
		Str("review_id", payload.ReviewID.String()).
		Str("listing_id", payload.ListingID.String()).
		Msg("Review purged")
	return nil
}
