package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wanderlust/internal/infrastructure/session"
	"wanderlust/internal/shared"
)

const (
	MsgListingNotFound = "Listing not found"
	MsgNotOwner        = "You are not the owner of this listing"
	MsgReviewNotFound  = "Review not found"
	MsgNotAuthor       = "You are not the author of this review"
	MsgGuardFailed     = "Something went wrong"
)

// OwnerResolver returns the user that owns (or authored) a resource, or an
// error wrapping shared.ErrNotFound.
type OwnerResolver interface {
	OwnerOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type guardRule struct {
	param        string
	notFound     string
	forbidden    string
	notFoundURL  func(c *gin.Context) string
	forbiddenURL func(c *gin.Context) string
}

func listingsURL(*gin.Context) string { return "/listings" }

func listingURL(c *gin.Context) string { return "/listings/" + c.Param("id") }

// RequireOwner allows the request only for the owner of listing :id.
// It must run after RequireLogin.
func RequireOwner(listings OwnerResolver) gin.HandlerFunc {
	return guard(listings, guardRule{
		param:        "id",
		notFound:     MsgListingNotFound,
		forbidden:    MsgNotOwner,
		notFoundURL:  listingsURL,
		forbiddenURL: listingURL,
	})
}

// RequireAuthor allows the request only for the author of review :reviewId.
// It must run after RequireLogin.
func RequireAuthor(reviews OwnerResolver) gin.HandlerFunc {
	return guard(reviews, guardRule{
		param:        "reviewId",
		notFound:     MsgReviewNotFound,
		forbidden:    MsgNotAuthor,
		notFoundURL:  listingURL,
		forbiddenURL: listingURL,
	})
}

func guard(resolver OwnerResolver, rule guardRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := CurrentUser(c)
		if actor == nil {
			redirectWithFlash(c, "/login", session.FlashError, MsgLoginRequired)
			return
		}

		id, err := uuid.Parse(c.Param(rule.param))
		if err != nil {
			redirectWithFlash(c, rule.notFoundURL(c), session.FlashError, rule.notFound)
			return
		}

		owner, err := resolver.OwnerOf(c.Request.Context(), id)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			redirectWithFlash(c, rule.notFoundURL(c), session.FlashError, rule.notFound)
			return
		case err != nil:
			zerolog.Ctx(c.Request.Context()).Error().Err(err).
				Str(rule.param, id.String()).
				Msg("ownership check failed")
			redirectWithFlash(c, rule.notFoundURL(c), session.FlashError, MsgGuardFailed)
			return
		case owner != actor.ID:
			redirectWithFlash(c, rule.forbiddenURL(c), session.FlashError, rule.forbidden)
			return
		}

		c.Next()
	}
}
