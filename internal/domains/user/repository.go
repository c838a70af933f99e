package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the users table contract.
type Repository interface {
	// Create returns ErrUserExists when the username is taken (case-insensitive).
	Create(ctx context.Context, u *User) error

	// FindByID returns ErrUserNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername matches case-insensitively and returns ErrUserNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*User, error)
}
