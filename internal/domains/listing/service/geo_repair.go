package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"wanderlust/internal/domains/listing/model"
	"wanderlust/internal/domains/listing/repository"
	"wanderlust/internal/infrastructure/geocoding"
)

// GeoRepairer re-geocodes listings stuck at (0,0). Pass it a throttled
// geocoder; it calls the provider once per listing, in sequence.
type GeoRepairer struct {
	repo     repository.RepositoryInterface
	geocoder geocoding.Geocoder
}

func NewGeoRepairer(repo repository.RepositoryInterface, geocoder geocoding.Geocoder) *GeoRepairer {
	return &GeoRepairer{repo: repo, geocoder: geocoder}
}

// Run repairs up to limit listings (0 means all). Provider errors and misses
// leave the listing at (0,0) and count as unresolved.
func (r *GeoRepairer) Run(ctx context.Context, limit int) (model.GeoRepairReport, error) {
	var report model.GeoRepairReport
	logger := zerolog.Ctx(ctx)

	listings, err := r.repo.ListAtOrigin(ctx, limit)
	if err != nil {
		return report, err
	}

	for _, l := range listings {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		if strings.TrimSpace(l.Location) == "" {
			report.Unresolved++
			continue
		}

		coords, err := r.geocoder.Geocode(ctx, l.Location)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			logger.Warn().Err(err).Str("listing_id", l.ID.String()).Msg("geocode failed")
			report.Unresolved++
			continue
		}
		if coords == nil || *coords == geocoding.Origin {
			logger.Debug().Str("listing_id", l.ID.String()).Str("location", l.Location).Msg("no geocode match")
			report.Unresolved++
			continue
		}

		g := model.Geometry{Longitude: coords.Longitude, Latitude: coords.Latitude}
		if err := r.repo.SetGeometry(ctx, l.ID, g); err != nil {
			return report, err
		}
		report.Fixed++
	}

	logger.Info().
		Int("scanned", report.Scanned).
		Int("fixed", report.Fixed).
		Int("unresolved", report.Unresolved).
		Msg("geo repair finished")
	return report, nil
}
