package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/domains/user"
	"wanderlust/internal/infrastructure/session"
	"wanderlust/internal/shared"
	"wanderlust/internal/shared/webtest"
)

type fakeService struct {
	users map[string]*user.User
	pass  map[string]string
}

func newFakeService() *fakeService {
	return &fakeService{users: map[string]*user.User{}, pass: map[string]string{}}
}

func (f *fakeService) Register(_ context.Context, req user.RegisterRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, ok := f.users[req.Username]; ok {
		return nil, user.ErrUserExists
	}
	u := &user.User{ID: uuid.New(), Username: req.Username, Email: req.Email}
	f.users[req.Username] = u
	f.pass[req.Username] = req.Password
	return u, nil
}

func (f *fakeService) Authenticate(_ context.Context, username, password string) (*user.User, error) {
	u, ok := f.users[username]
	if !ok || f.pass[username] != password {
		return nil, user.ErrInvalidCredentials
	}
	return u, nil
}

func (f *fakeService) FindActor(_ context.Context, id uuid.UUID) (*shared.Actor, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u.Actor(), nil
		}
	}
	return nil, user.ErrUserNotFound
}

func setup() (*webtest.Harness, *fakeService) {
	h := webtest.New()
	svc := newFakeService()
	NewUserHandler(svc).RegisterRoutes(h.Engine)
	return h, svc
}

func signupForm(username string) url.Values {
	return url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"secret"},
	}
}

func TestSignup_LogsInAndWelcomes(t *testing.T) {
	h, svc := setup()

	rec := h.Form(http.MethodPost, "/signup", signupForm("alice"))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings", rec.Header().Get("Location"))
	sess := h.Session(t, rec)
	assert.Equal(t, svc.users["alice"].ID, sess.UserID)
	assert.Equal(t, []string{MsgWelcome}, sess.Flashes[session.FlashSuccess])
}

func TestSignup_DuplicateUsername(t *testing.T) {
	h, _ := setup()
	h.Form(http.MethodPost, "/signup", signupForm("alice"))

	rec := h.Form(http.MethodPost, "/signup", signupForm("alice"))

	assert.Equal(t, "/signup", rec.Header().Get("Location"))
	sess := h.Session(t, rec)
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, []string{MsgUserExists}, sess.Flashes[session.FlashError])
}

func TestSignup_InvalidForm(t *testing.T) {
	h, _ := setup()

	rec := h.Form(http.MethodPost, "/signup", url.Values{"username": {"bob"}})

	assert.Equal(t, "/signup", rec.Header().Get("Location"))
	flashes := h.Flash(t, rec, session.FlashError)
	require.Len(t, flashes, 1)
	assert.Contains(t, flashes[0], "email cannot be blank")
}

func TestLogin_ResumesAtReturnTo(t *testing.T) {
	h, _ := setup()
	h.Form(http.MethodPost, "/signup", signupForm("alice"))
	cookie := h.Anonymous(t, "/listings/new")

	rec := h.Form(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"secret"}}, cookie)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/listings/new", rec.Header().Get("Location"))
	sess := h.Session(t, rec)
	assert.True(t, sess.IsAuthenticated())
	assert.Empty(t, sess.ReturnTo)
	assert.Equal(t, []string{MsgWelcomeBack}, sess.Flashes[session.FlashSuccess])
}

func TestLogin_DefaultsToListings(t *testing.T) {
	h, _ := setup()
	h.Form(http.MethodPost, "/signup", signupForm("alice"))

	rec := h.Form(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"secret"}})

	assert.Equal(t, "/listings", rec.Header().Get("Location"))
}

func TestLogin_IgnoresOffsiteReturnTo(t *testing.T) {
	h, _ := setup()
	h.Form(http.MethodPost, "/signup", signupForm("alice"))
	cookie := h.Anonymous(t, "//evil.example.com/")

	rec := h.Form(http.MethodPost, "/login", url.Values{"username": {"alice"}, "password": {"secret"}}, cookie)

	assert.Equal(t, "/listings", rec.Header().Get("Location"))
}

func TestLogin_BadCredentials(t *testing.T) {
	h, _ := setup()
	h.Form(http.MethodPost, "/signup", signupForm("alice"))

	for _, form := range []url.Values{
		{"username": {"alice"}, "password": {"wrong"}},
		{"username": {"nobody"}, "password": {"secret"}},
		{"username": {""}, "password": {""}},
	} {
		rec := h.Form(http.MethodPost, "/login", form)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Equal(t, []string{MsgBadCredentials}, h.Flash(t, rec, session.FlashError))
	}
}

func TestLogout(t *testing.T) {
	h, _ := setup()
	actor := h.AddActor("alice")

	rec := h.Get("/logout", h.Login(t, actor.ID))

	assert.Equal(t, "/listings", rec.Header().Get("Location"))
	sess := h.Session(t, rec)
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, []string{MsgLoggedOut}, sess.Flashes[session.FlashSuccess])
}

func TestForms(t *testing.T) {
	h, _ := setup()

	rec := h.Get("/signup")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "users/signup", h.Renderer.Last().Name)

	rec = h.Get("/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "users/login", h.Renderer.Last().Name)
}

func TestSafeReturnTo(t *testing.T) {
	assert.Equal(t, "/listings/1/edit", safeReturnTo("/listings/1/edit"))
	assert.Equal(t, "/listings", safeReturnTo(""))
	assert.Equal(t, "/listings", safeReturnTo("https://evil.example.com"))
	assert.Equal(t, "/listings", safeReturnTo("//evil.example.com"))
}
