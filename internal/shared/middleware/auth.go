package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wanderlust/internal/infrastructure/session"
	"wanderlust/internal/shared"
)

const currentUserKey = "current_user"

const MsgLoginRequired = "You must be logged in to create listings!"

// ActorLookup resolves a session's user id.
type ActorLookup func(ctx context.Context, id uuid.UUID) (*shared.Actor, error)

// LoadUser resolves the session's user into the request. A session that
// points at a deleted user is logged out.
func LoadUser(lookup ActorLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil || !sess.IsAuthenticated() {
			c.Next()
			return
		}

		actor, err := lookup(c.Request.Context(), sess.UserID)
		switch {
		case err == nil:
			c.Set(currentUserKey, actor)
		case errors.Is(err, shared.ErrNotFound):
			sess.Logout()
		default:
			zerolog.Ctx(c.Request.Context()).Error().Err(err).
				Str("user_id", sess.UserID.String()).
				Msg("resolve session user failed")
		}
		c.Next()
	}
}

// CurrentUser returns nil for anonymous requests.
func CurrentUser(c *gin.Context) *shared.Actor {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*shared.Actor)
	return actor
}

// RequireLogin redirects anonymous visitors to /login. GET requests remember
// their URL so login can resume there.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		if sess := GetSession(c); sess != nil && c.Request.Method == http.MethodGet {
			sess.SetReturnTo(c.Request.URL.RequestURI())
		}
		redirectWithFlash(c, "/login", session.FlashError, MsgLoginRequired)
	}
}
