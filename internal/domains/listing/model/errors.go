package model

import (
	"fmt"

	"wanderlust/internal/shared"
)

var ErrListingNotFound = fmt.Errorf("listing %w", shared.ErrNotFound)
