// Package response turns a handler's tagged Outcome into an HTTP response:
// a redirect carrying a flash, a rendered view, or the error page.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wanderlust/internal/infrastructure/session"
	"wanderlust/internal/shared"
	"wanderlust/internal/shared/middleware"
	"wanderlust/internal/shared/validator"
)

// ErrorView is the template rendered for every failure.
const ErrorView = "error"

const internalMessage = "something went wrong"

// Kind classifies a failure for the error page.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type outcomeType int

const (
	typeRedirect outcomeType = iota
	typeRender
	typeFail
)

// Outcome is what a handler decided to do with the request.
type Outcome struct {
	typ outcomeType

	Location  string
	FlashKind string
	Flash     string

	View   string
	Data   gin.H
	Status int

	Kind Kind
	Err  error
}

func Redirect(location string) Outcome {
	return Outcome{typ: typeRedirect, Location: location}
}

// Success redirects with a success flash.
func Success(location, message string) Outcome {
	return Outcome{typ: typeRedirect, Location: location, FlashKind: session.FlashSuccess, Flash: message}
}

// Failure redirects with an error flash.
func Failure(location, message string) Outcome {
	return Outcome{typ: typeRedirect, Location: location, FlashKind: session.FlashError, Flash: message}
}

func Render(view string, data gin.H) Outcome {
	return Outcome{typ: typeRender, View: view, Data: data, Status: http.StatusOK}
}

func Fail(kind Kind, err error) Outcome {
	return Outcome{typ: typeFail, Kind: kind, Err: err}
}

// FailFrom classifies err by its sentinel.
func FailFrom(err error) Outcome {
	switch {
	case errors.Is(err, validator.ErrValidation):
		return Fail(KindValidation, err)
	case errors.Is(err, shared.ErrNotFound):
		return Fail(KindNotFound, err)
	case errors.Is(err, shared.ErrForbidden):
		return Fail(KindForbidden, err)
	default:
		return Fail(KindInternal, err)
	}
}

// Handler adapts a handler method that returns an Outcome.
func Handler(fn func(c *gin.Context) Outcome) gin.HandlerFunc {
	return func(c *gin.Context) {
		Respond(c, fn(c))
	}
}

// Respond writes the outcome. The session is saved before anything is sent
// so flash changes travel with the response.
func Respond(c *gin.Context, o Outcome) {
	switch o.typ {
	case typeRedirect:
		if sess := middleware.GetSession(c); sess != nil && o.Flash != "" {
			sess.AddFlash(o.FlashKind, o.Flash)
		}
		saveSession(c)
		c.Redirect(http.StatusFound, o.Location)

	case typeRender:
		render(c, o.Status, o.View, o.Data)

	case typeFail:
		status := o.Kind.Status()
		message := internalMessage
		if o.Kind != KindInternal && o.Err != nil {
			message = o.Err.Error()
		}

		l := zerolog.Ctx(c.Request.Context())
		if o.Kind == KindInternal {
			l.Error().Err(o.Err).Msg("request failed")
		} else {
			l.Debug().Err(o.Err).Int("status", status).Msg("request rejected")
		}
		if o.Err != nil {
			_ = c.Error(o.Err)
		}

		render(c, status, ErrorView, gin.H{
			"Status":  status,
			"Message": message,
		})
	}
}

// View builds the data every page gets: pending flashes and the current user.
func View(c *gin.Context, data gin.H) gin.H {
	out := gin.H{}
	if sess := middleware.GetSession(c); sess != nil {
		out["Success"] = sess.ConsumeFlashes(session.FlashSuccess)
		out["Error"] = sess.ConsumeFlashes(session.FlashError)
	}
	out["CurrentUser"] = middleware.CurrentUser(c)
	for k, v := range data {
		out[k] = v
	}
	return out
}

func render(c *gin.Context, status int, view string, data gin.H) {
	data = View(c, data)
	saveSession(c)
	c.HTML(status, view, data)
}

func saveSession(c *gin.Context) {
	if err := middleware.SaveSession(c); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("session save failed")
	}
}
