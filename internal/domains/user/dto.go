package user

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"wanderlust/internal/shared/validator"
)

// RegisterRequest is the signup form.
type RegisterRequest struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

func (r RegisterRequest) Validate() error {
	return validator.Validate(
		validator.F("username", r.Username, validation.Required, validator.NotBlank, validation.Length(3, 32)),
		validator.F("email", r.Email, validation.Required, is.Email),
		validator.F("password", r.Password, validation.Required),
	).Err()
}

// LoginRequest is the login form.
type LoginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (r LoginRequest) Validate() error {
	return validator.Validate(
		validator.F("username", strings.TrimSpace(r.Username), validation.Required),
		validator.F("password", r.Password, validation.Required),
	).Err()
}
