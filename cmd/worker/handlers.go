package main

import (
	"github.com/hibiken/asynq"

	listingJob "wanderlust/internal/domains/listing/job"
	reviewJob "wanderlust/internal/domains/review/job"
	"wanderlust/internal/shared"
	"wanderlust/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Listing maintenance
	deleteImage *listingJob.DeleteImageHandler
	fixGeo      *listingJob.FixGeoHandler

	// Review consistency
	purgeReview *reviewJob.PurgeReviewHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		deleteImage: listingJob.NewDeleteImageHandler(c.Images),
		fixGeo:      listingJob.NewFixGeoHandler(c.GeoRepairer),
		purgeReview: reviewJob.NewPurgeReviewHandler(c.ReviewRepo, c.ListingRepo),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeDeleteListingImage, h.deleteImage.ProcessTask)
	mux.HandleFunc(shared.TypeFixListingGeo, h.fixGeo.ProcessTask)
	mux.HandleFunc(shared.TypePurgeReview, h.purgeReview.ProcessTask)
}
