package user

import (
	"time"

	"github.com/google/uuid"

	"wanderlust/internal/shared"
)

// User maps 1:1 to the users table.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor is the subset of the user exposed to middleware and views.
func (u *User) Actor() *shared.Actor {
	return &shared.Actor{ID: u.ID, Username: u.Username}
}
