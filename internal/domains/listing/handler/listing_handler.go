package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wanderlust/internal/domains/listing/model"
	"wanderlust/internal/domains/listing/service"
	"wanderlust/internal/infrastructure/storage"
	"wanderlust/internal/shared/middleware"
	"wanderlust/internal/shared/response"
	"wanderlust/internal/shared/validator"
)

const (
	MsgCreated       = "New Listing Created!!"
	MsgCreateFailed  = "Could not create listing"
	MsgUpdated       = "Update Successfully"
	MsgUpdateFailed  = "Could not update listing"
	MsgDeleted       = "Deleted successfully"
	MsgDeleteFailed  = "Could not delete listing"
	MsgDoesNotExist  = "Listing you requested for does not exist"
	msgNoSearchMatch = "No listing found for '%s'"

	imageField = "listing[image]"

	viewIndex = "listings/index"
	viewShow  = "listings/show"
	viewNew   = "listings/new"
	viewEdit  = "listings/edit"
)

type ListingHandler struct {
	service       service.ServiceInterface
	maxImageBytes int64
}

func NewListingHandler(service service.ServiceInterface, maxImageBytes int64) *ListingHandler {
	return &ListingHandler{service: service, maxImageBytes: maxImageBytes}
}

// RegisterRoutes mounts /listings. Mutations need a login, and edits also
// need ownership.
func (h *ListingHandler) RegisterRoutes(r gin.IRouter) {
	listings := r.Group("/listings")

	listings.GET("", response.Handler(h.Index))
	listings.GET("/search", response.Handler(h.Search))
	listings.GET("/new", middleware.RequireLogin(), response.Handler(h.NewForm))
	listings.POST("", middleware.RequireLogin(), response.Handler(h.Create))
	listings.GET("/:id", response.Handler(h.Show))

	owned := listings.Group("/:id", middleware.RequireLogin(), middleware.RequireOwner(h.service))
	owned.GET("/edit", response.Handler(h.EditForm))
	owned.PUT("", response.Handler(h.Update))
	owned.DELETE("", response.Handler(h.Delete))
}

// ========================================
// READ ROUTES
// ========================================

func (h *ListingHandler) Index(c *gin.Context) response.Outcome {
	category := strings.TrimSpace(c.Query("category"))

	listings, err := h.service.List(c.Request.Context(), category)
	if err != nil {
		return response.FailFrom(err)
	}
	return response.Render(viewIndex, gin.H{
		"Title":      "All Listings",
		"Listings":   listings,
		"Category":   category,
		"Categories": model.Categories,
	})
}

// Search renders matches for ?q=. An empty query shows the full list and no
// match flashes an error.
func (h *ListingHandler) Search(c *gin.Context) response.Outcome {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return response.Redirect("/listings")
	}

	listings, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		return response.FailFrom(err)
	}
	if len(listings) == 0 {
		return response.Failure("/listings", fmt.Sprintf(msgNoSearchMatch, q))
	}
	return response.Render(viewIndex, gin.H{
		"Title":      "Search results",
		"Listings":   listings,
		"Query":      q,
		"Category":   "",
		"Categories": model.Categories,
	})
}

func (h *ListingHandler) Show(c *gin.Context) response.Outcome {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Failure("/listings", MsgDoesNotExist)
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if errors.Is(err, model.ErrListingNotFound) {
		return response.Failure("/listings", MsgDoesNotExist)
	}
	if err != nil {
		return response.FailFrom(err)
	}

	return response.Render(viewShow, gin.H{
		"Title":   detail.Title,
		"Listing": detail,
		"IsOwner": isOwner(c, &detail.Listing),
	})
}

func (h *ListingHandler) NewForm(c *gin.Context) response.Outcome {
	return response.Render(viewNew, gin.H{
		"Title":      "Create a listing",
		"Form":       model.ListingForm{},
		"Categories": model.Categories,
	})
}

func (h *ListingHandler) EditForm(c *gin.Context) response.Outcome {
	id, _ := uuid.Parse(c.Param("id"))

	view, err := h.service.GetForEdit(c.Request.Context(), id)
	if errors.Is(err, model.ErrListingNotFound) {
		return response.Failure("/listings", MsgDoesNotExist)
	}
	if err != nil {
		return response.FailFrom(err)
	}

	return response.Render(viewEdit, gin.H{
		"Title":      "Edit listing",
		"Listing":    view.Listing,
		"Form":       model.FormFrom(view.Listing),
		"PreviewURL": view.PreviewURL,
		"Categories": model.Categories,
	})
}

// ========================================
// MUTATIONS
// ========================================

func (h *ListingHandler) Create(c *gin.Context) response.Outcome {
	ctx := c.Request.Context()

	form, image, err := h.bindListing(c)
	if err != nil {
		return response.Fail(response.KindValidation, err)
	}

	actor := middleware.CurrentUser(c)
	_, err = h.service.Create(ctx, actor.ID, form, image)
	switch {
	case errors.Is(err, validator.ErrValidation):
		return response.Fail(response.KindValidation, err)
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Msg("create listing failed")
		return response.Failure("/listings/new", MsgCreateFailed)
	}

	return response.Success("/listings", MsgCreated)
}

func (h *ListingHandler) Update(c *gin.Context) response.Outcome {
	ctx := c.Request.Context()
	id, _ := uuid.Parse(c.Param("id"))

	form, image, err := h.bindListing(c)
	if err != nil {
		return response.Fail(response.KindValidation, err)
	}

	_, err = h.service.Update(ctx, id, form, image)
	switch {
	case errors.Is(err, validator.ErrValidation):
		return response.Fail(response.KindValidation, err)
	case errors.Is(err, model.ErrListingNotFound):
		return response.Failure("/listings", middleware.MsgListingNotFound)
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Str("listing_id", id.String()).Msg("update listing failed")
		return response.Failure("/listings", MsgUpdateFailed)
	}

	return response.Success("/listings/"+id.String(), MsgUpdated)
}

func (h *ListingHandler) Delete(c *gin.Context) response.Outcome {
	ctx := c.Request.Context()
	id, _ := uuid.Parse(c.Param("id"))

	err := h.service.Delete(ctx, id)
	switch {
	case errors.Is(err, model.ErrListingNotFound):
		return response.Failure("/listings", middleware.MsgListingNotFound)
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Str("listing_id", id.String()).Msg("delete listing failed")
		return response.Failure("/listings", MsgDeleteFailed)
	}

	return response.Success("/listings", MsgDeleted)
}

// ========================================
// HELPERS
// ========================================

// bindListing reads the listing[...] fields and the optional image file.
func (h *ListingHandler) bindListing(c *gin.Context) (model.ListingForm, *storage.Upload, error) {
	var form model.ListingForm
	if err := c.ShouldBind(&form); err != nil {
		return form, nil, fmt.Errorf("%w: %w", validator.ErrValidation, err)
	}

	image, err := h.readImage(c)
	if err != nil {
		return form, nil, fmt.Errorf("%w: %w", validator.ErrValidation, err)
	}
	return form, image, nil
}

// readImage returns nil when the request carries no image. Files over
// maxImageBytes are rejected without being read.
func (h *ListingHandler) readImage(c *gin.Context) (*storage.Upload, error) {
	fh, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	if h.maxImageBytes > 0 && fh.Size > h.maxImageBytes {
		return nil, h.errTooLarge()
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxImageBytes > 0 {
		r = io.LimitReader(f, h.maxImageBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if h.maxImageBytes > 0 && int64(len(data)) > h.maxImageBytes {
		return nil, h.errTooLarge()
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &storage.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *ListingHandler) errTooLarge() error {
	return fmt.Errorf("%w: exceeds %dMB", storage.ErrInvalidImage, h.maxImageBytes/(1024*1024))
}

func isOwner(c *gin.Context, l *model.Listing) bool {
	actor := middleware.CurrentUser(c)
	return actor != nil && l.IsOwnedBy(actor.ID)
}
