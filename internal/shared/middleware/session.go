package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wanderlust/internal/infrastructure/session"
)

const sessionKey = "session"

// SessionSigner signs the session id carried by the cookie.
type SessionSigner interface {
	SignSession(sessionID string, maxAge time.Duration) (string, error)
	VerifySession(token string) (string, error)
}

type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

type requestSession struct {
	store  session.Store
	signer SessionSigner
	opts   CookieOptions
	sess   *session.Session
}

// Sessions loads the visitor's session, or starts a new one when the cookie
// is absent, tampered with, or points at an expired record.
func Sessions(store session.Store, signer SessionSigner, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		rs := &requestSession{store: store, signer: signer, opts: opts}
		rs.sess = rs.load(c)
		c.Set(sessionKey, rs)
		c.Next()
	}
}

func (rs *requestSession) load(c *gin.Context) *session.Session {
	raw, err := c.Cookie(rs.opts.Name)
	if err != nil || raw == "" {
		return rs.store.New()
	}

	l := zerolog.Ctx(c.Request.Context())
	id, err := rs.signer.VerifySession(raw)
	if err != nil {
		l.Debug().Err(err).Msg("discarding invalid session cookie")
		return rs.store.New()
	}

	sess, err := rs.store.Load(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			l.Warn().Err(err).Msg("session load failed")
		}
		return rs.store.New()
	}
	return sess
}

// GetSession returns the request's session. Sessions must run first.
func GetSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	return v.(*requestSession).sess
}

// SaveSession persists the session and (re)issues the cookie when the record
// was written. It must be called before the response body or redirect.
func SaveSession(c *gin.Context) error {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	rs := v.(*requestSession)

	written, err := rs.store.Save(c.Request.Context(), rs.sess)
	if err != nil {
		return err
	}
	if !written {
		return nil
	}

	token, err := rs.signer.SignSession(rs.sess.ID, rs.opts.MaxAge)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     rs.opts.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(rs.opts.MaxAge.Seconds()),
		Expires:  time.Now().Add(rs.opts.MaxAge),
		HttpOnly: true,
		Secure:   rs.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// redirectWithFlash ends the chain with a flash and a 302.
func redirectWithFlash(c *gin.Context, location, kind, message string) {
	if sess := GetSession(c); sess != nil {
		sess.AddFlash(kind, message)
	}
	if err := SaveSession(c); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("session save failed")
	}
	c.Redirect(http.StatusFound, location)
	c.Abort()
}
