package user

import (
	"errors"
	"fmt"

	"wanderlust/internal/shared"
)

var (
	ErrUserNotFound = fmt.Errorf("user %w", shared.ErrNotFound)

	// ErrUserExists is returned on a username conflict.
	ErrUserExists = errors.New("a user with the given username is already registered")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("password or username is incorrect")
)
