package model

import (
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"wanderlust/internal/shared/validator"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ReviewForm is posted from the listing page as review[rating] and
// review[comment].
type ReviewForm struct {
	Rating  string `form:"review[rating]"`
	Comment string `form:"review[comment]"`
}

func (f *ReviewForm) Normalize() {
	f.Rating = strings.TrimSpace(f.Rating)
	f.Comment = strings.TrimSpace(f.Comment)
}

func (f ReviewForm) Validate() error {
	return validator.Validate(
		validator.F("rating", f.Rating, validation.Required, validator.IntBetween(MinRating, MaxRating)),
		validator.F("comment", f.Comment, validation.Required, validator.NotBlank),
	).Err()
}

// RatingValue parses Rating. Call only after Validate.
func (f ReviewForm) RatingValue() int {
	n, _ := strconv.Atoi(f.Rating)
	return n
}
