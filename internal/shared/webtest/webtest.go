// Package webtest builds a gin engine with the real session middleware over
// an in-memory store, for handler tests.
package webtest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/infrastructure/session"
	"wanderlust/internal/shared"
	"wanderlust/internal/shared/middleware"
	"wanderlust/pkg/cache"
	"wanderlust/pkg/jwt"
)

const CookieName = "wanderlust.sid"

// Rendered is one recorded c.HTML call.
type Rendered struct {
	Name string
	Data gin.H
}

// Renderer records views instead of executing templates. The body is the
// view name.
type Renderer struct {
	mu    sync.Mutex
	views []Rendered
}

func (r *Renderer) Instance(name string, data any) render.Render {
	h, _ := data.(gin.H)
	return &recordedHTML{r: r, view: Rendered{Name: name, Data: h}}
}

func (r *Renderer) Last() Rendered {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return Rendered{}
	}
	return r.views[len(r.views)-1]
}

type recordedHTML struct {
	r    *Renderer
	view Rendered
}

func (h *recordedHTML) Render(w http.ResponseWriter) error {
	h.r.mu.Lock()
	h.r.views = append(h.r.views, h.view)
	h.r.mu.Unlock()
	h.WriteContentType(w)
	_, err := io.WriteString(w, h.view.Name)
	return err
}

func (h *recordedHTML) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// Harness is an engine with sessions, user loading and a recording renderer.
type Harness struct {
	Engine   *gin.Engine
	Store    *session.CacheStore
	Signer   *jwt.Manager
	Renderer *Renderer

	mu     sync.Mutex
	actors map[uuid.UUID]*shared.Actor
}

func New() *Harness {
	gin.SetMode(gin.TestMode)
	h := &Harness{
		Engine:   gin.New(),
		Store:    session.NewCacheStore(cache.NewMemoryCache(), time.Hour, time.Hour),
		Signer:   jwt.NewManager("webtest-secret", "wanderlust"),
		Renderer: &Renderer{},
		actors:   map[uuid.UUID]*shared.Actor{},
	}
	h.Engine.HTMLRender = h.Renderer
	h.Engine.Use(
		middleware.Sessions(h.Store, h.Signer, middleware.CookieOptions{Name: CookieName, MaxAge: time.Hour}),
		middleware.LoadUser(h.lookup),
	)
	return h
}

func (h *Harness) lookup(_ context.Context, id uuid.UUID) (*shared.Actor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a, ok := h.actors[id]
	if !ok {
		return nil, fmt.Errorf("user %w", shared.ErrNotFound)
	}
	return a, nil
}

// AddActor registers a user the session middleware can resolve.
func (h *Harness) AddActor(username string) *shared.Actor {
	a := &shared.Actor{ID: uuid.New(), Username: username}
	h.mu.Lock()
	h.actors[a.ID] = a
	h.mu.Unlock()
	return a
}

// Login returns a cookie for a stored session authenticated as userID.
func (h *Harness) Login(t *testing.T, userID uuid.UUID) *http.Cookie {
	t.Helper()
	sess := h.Store.New()
	sess.Login(userID)
	_, err := h.Store.Save(context.Background(), sess)
	require.NoError(t, err)
	return h.cookieFor(t, sess.ID)
}

// Anonymous returns a cookie for a stored anonymous session, for flows that
// must keep state (such as return_to) across requests.
func (h *Harness) Anonymous(t *testing.T, returnTo string) *http.Cookie {
	t.Helper()
	sess := h.Store.New()
	sess.SetReturnTo(returnTo)
	_, err := h.Store.Save(context.Background(), sess)
	require.NoError(t, err)
	return h.cookieFor(t, sess.ID)
}

func (h *Harness) cookieFor(t *testing.T, id string) *http.Cookie {
	token, err := h.Signer.SignSession(id, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: CookieName, Value: token}
}

func (h *Harness) Do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	h.Engine.ServeHTTP(rec, req)
	return rec
}

func (h *Harness) Get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return h.Do(httptest.NewRequest(http.MethodGet, target, nil), cookies...)
}

// Form sends an urlencoded form with the given method.
func (h *Harness) Form(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.Do(req, cookies...)
}

// Cookie returns the session cookie set by rec, or nil.
func Cookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

// Session loads the session whose cookie rec set.
func (h *Harness) Session(t *testing.T, rec *httptest.ResponseRecorder) *session.Session {
	t.Helper()
	c := Cookie(rec)
	require.NotNil(t, c, "response set no session cookie")
	id, err := h.Signer.VerifySession(c.Value)
	require.NoError(t, err)
	sess, err := h.Store.Load(context.Background(), id)
	require.NoError(t, err)
	return sess
}

// Flash returns the pending flashes of kind in the session rec set.
func (h *Harness) Flash(t *testing.T, rec *httptest.ResponseRecorder, kind string) []string {
	t.Helper()
	return h.Session(t, rec).Flashes[kind]
}
