package model

import (
	"fmt"

	"wanderlust/internal/shared"
)

var (
	ErrReviewNotFound = fmt.Errorf("review %w", shared.ErrNotFound)
	// ErrListingNotFound is returned when reviewing a listing that does not exist.
	ErrListingNotFound = fmt.Errorf("listing %w", shared.ErrNotFound)
)
