package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"wanderlust/internal/infrastructure/queue"
)

// ImageDeleter is satisfied by *storage.ImageStore.
type ImageDeleter interface {
	Delete(ctx context.Context, key string) error
}

// DeleteImageHandler removes an image that no listing refers to any more.
type DeleteImageHandler struct {
	images ImageDeleter
}

func NewDeleteImageHandler(images ImageDeleter) *DeleteImageHandler {
	return &DeleteImageHandler{images: images}
}

func (h *DeleteImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.Decode[queue.DeleteImagePayload](task)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode delete image payload")
		return err
	}
	if payload.Key == "" {
		return fmt.Errorf("empty image key: %w", asynq.SkipRetry)
	}

	if err := h.images.Delete(ctx, payload.Key); err != nil {
		log.Error().Err(err).Str("image_key", payload.Key).Msg("Failed to delete listing image")
		return fmt.Errorf("delete image: %w", err)
	}

	log.Info().Str("image_key", payload.Key).Msg("Listing image deleted")
	return nil
}
