package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wanderlust/internal/domains/review/model"
	"wanderlust/internal/domains/review/service"
	"wanderlust/internal/shared/middleware"
	"wanderlust/internal/shared/response"
	"wanderlust/internal/shared/validator"
)

const (
	MsgCreated      = "New Review Created!"
	MsgDeleted      = "Review Deleted"
	MsgDeleteFailed = "Could not delete review"
	msgNoListing    = "Listing you requested for does not exist"
)

type ReviewHandler struct {
	service service.ServiceInterface
}

func NewReviewHandler(service service.ServiceInterface) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes mounts the review routes under /listings/:id/reviews.
func (h *ReviewHandler) RegisterRoutes(r gin.IRouter) {
	reviews := r.Group("/listings/:id/reviews", middleware.RequireLogin())

	reviews.POST("", response.Handler(h.Create))
	reviews.DELETE("/:reviewId", middleware.RequireAuthor(h.service), response.Handler(h.Delete))
}

func (h *ReviewHandler) Create(c *gin.Context) response.Outcome {
	ctx := c.Request.Context()

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Failure("/listings", msgNoListing)
	}

	var form model.ReviewForm
	if err := c.ShouldBind(&form); err != nil {
		return response.Fail(response.KindValidation, err)
	}

	actor := middleware.CurrentUser(c)
	_, err = h.service.Create(ctx, listingID, actor.ID, form)
	switch {
	case errors.Is(err, validator.ErrValidation):
		return response.Fail(response.KindValidation, err)
	case errors.Is(err, model.ErrListingNotFound):
		return response.Failure("/listings", msgNoListing)
	case err != nil:
		return response.FailFrom(err)
	}

	return response.Success(listingURL(listingID), MsgCreated)
}

func (h *ReviewHandler) Delete(c *gin.Context) response.Outcome {
	ctx := c.Request.Context()
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Failure("/listings", msgNoListing)
	}
	reviewID, _ := uuid.Parse(c.Param("reviewId"))

	err = h.service.Delete(ctx, listingID, reviewID)
	switch {
	case errors.Is(err, model.ErrReviewNotFound):
		return response.Failure(listingURL(listingID), middleware.MsgReviewNotFound)
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).
			Str("listing_id", listingID.String()).
			Str("review_id", reviewID.String()).
			Msg("delete review failed")
		return response.Failure(listingURL(listingID), MsgDeleteFailed)
	}

	return response.Success(listingURL(listingID), MsgDeleted)
}

func listingURL(id uuid.UUID) string {
	return "/listings/" + id.String()
}
