package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/domains/review/model"
	"wanderlust/internal/infrastructure/session"
	"wanderlust/internal/shared/middleware"
	"wanderlust/internal/shared/response"
	"wanderlust/internal/shared/webtest"
)

type fakeService struct {
	listings  map[uuid.UUID][]uuid.UUID
	reviews   map[uuid.UUID]*model.Review
	deleteErr error
}

func newFakeService() *fakeService {
	return &fakeService{listings: map[uuid.UUID][]uuid.UUID{}, reviews: map[uuid.UUID]*model.Review{}}
}

func (f *fakeService) addListing() uuid.UUID {
	id := uuid.New()
	f.listings[id] = nil
	return id
}

func (f *fakeService) Create(_ context.Context, listingID, authorID uuid.UUID, form model.ReviewForm) (*model.Review, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if _, ok := f.listings[listingID]; !ok {
		return nil, model.ErrListingNotFound
	}
	r := &model.Review{ID: uuid.New(), ListingID: listingID, AuthorID: authorID, Comment: form.Comment, Rating: form.RatingValue()}
	f.reviews[r.ID] = r
	f.listings[listingID] = append(f.listings[listingID], r.ID)
	return r, nil
}

func (f *fakeService) Delete(_ context.Context, listingID, reviewID uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	r, ok := f.reviews[reviewID]
	if !ok || r.ListingID != listingID {
		return model.ErrReviewNotFound
	}
	delete(f.reviews, reviewID)
	kept := f.listings[listingID][:0]
	for _, id := range f.listings[listingID] {
		if id != reviewID {
			kept = append(kept, id)
		}
	}
	f.listings[listingID] = kept
	return nil
}

func (f *fakeService) OwnerOf(_ context.Context, reviewID uuid.UUID) (uuid.UUID, error) {
	r, ok := f.reviews[reviewID]
	if !ok {
		return uuid.Nil, model.ErrReviewNotFound
	}
	return r.AuthorID, nil
}

func setup() (*webtest.Harness, *fakeService) {
	h := webtest.New()
	svc := newFakeService()
	NewReviewHandler(svc).RegisterRoutes(h.Engine)
	return h, svc
}

func reviewValues(rating, comment string) url.Values {
	return url.Values{"review[rating]": {rating}, "review[comment]": {comment}}
}

func TestCreate_RedirectsToListing(t *testing.T) {
	h, svc := setup()
	author := h.AddActor("alice")
	listingID := svc.addListing()

	rec := h.Form(http.MethodPost, "/listings/"+listingID.String()+"/reviews", reviewValues("5", "Great"), h.Login(t, author.ID))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings/"+listingID.String(), rec.Header().Get("Location"))
	assert.Equal(t, []string{MsgCreated}, h.Flash(t, rec, session.FlashSuccess))
	require.Len(t, svc.listings[listingID], 1)
	assert.Equal(t, author.ID, svc.reviews[svc.listings[listingID][0]].AuthorID)
}

func TestCreate_RatingSixIsRejected(t *testing.T) {
	h, svc := setup()
	author := h.AddActor("alice")
	listingID := svc.addListing()

	rec := h.Form(http.MethodPost, "/listings/"+listingID.String()+"/reviews", reviewValues("6", "x"), h.Login(t, author.ID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	view := h.Renderer.Last()
	assert.Equal(t, response.ErrorView, view.Name)
	assert.Contains(t, view.Data["Message"], "rating must be between 1 and 5")
	assert.Empty(t, svc.listings[listingID])
}

func TestCreate_RequiresLogin(t *testing.T) {
	h, svc := setup()
	listingID := svc.addListing()

	rec := h.Form(http.MethodPost, "/listings/"+listingID.String()+"/reviews", reviewValues("4", "x"))

	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, svc.reviews)
}

func TestCreate_UnknownListing(t *testing.T) {
	h, _ := setup()
	author := h.AddActor("alice")

	rec := h.Form(http.MethodPost, "/listings/"+uuid.NewString()+"/reviews", reviewValues("4", "x"), h.Login(t, author.ID))

	assert.Equal(t, "/listings", rec.Header().Get("Location"))
	assert.Equal(t, []string{msgNoListing}, h.Flash(t, rec, session.FlashError))
}

func TestDelete_OnlyAuthor(t *testing.T) {
	h, svc := setup()
	author := h.AddActor("alice")
	other := h.AddActor("bob")
	listingID := svc.addListing()
	review, err := svc.Create(context.Background(), listingID, author.ID, model.ReviewForm{Rating: "4", Comment: "ok"})
	require.NoError(t, err)
	target := "/listings/" + listingID.String() + "/reviews/" + review.ID.String()

	rec := h.Form(http.MethodDelete, target, nil, h.Login(t, other.ID))
	assert.Equal(t, "/listings/"+listingID.String(), rec.Header().Get("Location"))
	assert.Equal(t, []string{middleware.MsgNotAuthor}, h.Flash(t, rec, session.FlashError))
	assert.Contains(t, svc.reviews, review.ID)

	rec = h.Form(http.MethodDelete, target, nil, h.Login(t, author.ID))
	assert.Equal(t, "/listings/"+listingID.String(), rec.Header().Get("Location"))
	assert.Equal(t, []string{MsgDeleted}, h.Flash(t, rec, session.FlashSuccess))
	assert.NotContains(t, svc.reviews, review.ID)
	assert.NotContains(t, svc.listings[listingID], review.ID)

	rec = h.Form(http.MethodDelete, target, nil, h.Login(t, author.ID))
	assert.Equal(t, []string{middleware.MsgReviewNotFound}, h.Flash(t, rec, session.FlashError))
}

func TestDelete_PartialFailureFlashes(t *testing.T) {
	h, svc := setup()
	author := h.AddActor("alice")
	listingID := svc.addListing()
	review, err := svc.Create(context.Background(), listingID, author.ID, model.ReviewForm{Rating: "4", Comment: "ok"})
	require.NoError(t, err)
	svc.deleteErr = errors.New("delete review record: connection reset")

	rec := h.Form(http.MethodDelete, "/listings/"+listingID.String()+"/reviews/"+review.ID.String(), nil, h.Login(t, author.ID))

	assert.Equal(t, "/listings/"+listingID.String(), rec.Header().Get("Location"))
	assert.Equal(t, []string{MsgDeleteFailed}, h.Flash(t, rec, session.FlashError))
}
