package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"wanderlust/internal/shared"
)

// DeleteImagePayload removes an uploaded image and its preview from storage.
type DeleteImagePayload struct {
	Key string `json:"key"`
}

// PurgeReviewPayload retries deleting a review record whose reference was
// already pulled from the listing.
type PurgeReviewPayload struct {
	ReviewID  uuid.UUID `json:"review_id"`
	ListingID uuid.UUID `json:"listing_id"`
}

// FixGeoPayload re-geocodes listings still at (0,0). Limit 0 means all.
type FixGeoPayload struct {
	Limit int `json:"limit"`
}

func NewDeleteImageTask(key string) (*asynq.Task, error) {
	return newTask(shared.TypeDeleteListingImage, DeleteImagePayload{Key: key},
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
	)
}

func NewPurgeReviewTask(reviewID, listingID uuid.UUID) (*asynq.Task, error) {
	return newTask(shared.TypePurgeReview, PurgeReviewPayload{ReviewID: reviewID, ListingID: listingID},
		asynq.Queue(shared.QueueCritical),
		asynq.MaxRetry(10),
		asynq.Timeout(30*time.Second),
	)
}

func NewFixGeoTask(limit int) (*asynq.Task, error) {
	return newTask(shared.TypeFixListingGeo, FixGeoPayload{Limit: limit},
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(30*time.Minute),
	)
}

func newTask(typ string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return asynq.NewTask(typ, data, opts...), nil
}

// Decode unmarshals a task payload. A malformed payload is wrapped with
// asynq.SkipRetry since retrying cannot fix it.
func Decode[T any](task *asynq.Task) (T, error) {
	var p T
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return p, nil
}
