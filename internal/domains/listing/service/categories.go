package service

import (
	"context"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"wanderlust/internal/domains/listing/model"
	"wanderlust/internal/domains/listing/repository"
)

// CategoryAssigner gives listings a random category.
type CategoryAssigner struct {
	repo repository.RepositoryInterface
	pick func(n int) int
}

func NewCategoryAssigner(repo repository.RepositoryInterface) *CategoryAssigner {
	return &CategoryAssigner{repo: repo, pick: rand.IntN}
}

// Assign updates every listing, or only those without a valid category when
// onlyMissing is set. It returns how many listings were changed.
func (a *CategoryAssigner) Assign(ctx context.Context, onlyMissing bool) (int, error) {
	listings, err := a.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, l := range listings {
		if onlyMissing && l.Category.Valid() {
			continue
		}
		c := model.Categories[a.pick(len(model.Categories))]
		if err := a.repo.SetCategory(ctx, l.ID, c); err != nil {
			return updated, err
		}
		updated++
	}

	zerolog.Ctx(ctx).Info().Int("updated", updated).Int("total", len(listings)).Msg("categories assigned")
	return updated, nil
}
