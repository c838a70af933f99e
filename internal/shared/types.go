package shared

import "github.com/google/uuid"

// Background task types processed by cmd/worker.
const (
	TypeDeleteListingImage = "listing:delete_image"
	TypeFixListingGeo      = "listing:fix_geo"
	TypePurgeReview        = "review:purge"
)

// Worker queues, highest priority first.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Actor is the authenticated user as seen by middleware and views.
type Actor struct {
	ID       uuid.UUID
	Username string
}
