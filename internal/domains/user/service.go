package user

import (
	"context"

	"github.com/google/uuid"

	"wanderlust/internal/shared"
)

// Service is the identity provider used by the handlers and the session
// middleware.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// FindActor resolves a session's user id for middleware.LoadUser.
	FindActor(ctx context.Context, id uuid.UUID) (*shared.Actor, error)
}
