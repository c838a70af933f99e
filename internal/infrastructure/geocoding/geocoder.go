// Package geocoding resolves free-text locations to coordinates.
package geocoding

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Longitude float64 `json:"lon"`
	Latitude  float64 `json:"lat"`
}

// Origin is substituted when a location cannot be resolved.
var Origin = Coordinates{}

// Geocoder resolves a location. A location with no match yields (nil, nil).
type Geocoder interface {
	Geocode(ctx context.Context, location string) (*Coordinates, error)
}

// GeocoderFunc adapts a function to Geocoder.
type GeocoderFunc func(ctx context.Context, location string) (*Coordinates, error)

func (f GeocoderFunc) Geocode(ctx context.Context, location string) (*Coordinates, error) {
	return f(ctx, location)
}

// Resolve geocodes location on a best-effort basis: no match, a timeout or
// any provider error all resolve to Origin. The lookup is detached from ctx
// cancellation and bounded by timeout.
func Resolve(ctx context.Context, g Geocoder, location string, timeout time.Duration) Coordinates {
	location = strings.TrimSpace(location)
	if g == nil || location == "" {
		return Origin
	}

	lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	coords, err := g.Geocode(lookupCtx, location)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("location", location).Msg("geocoding failed, using origin")
		return Origin
	}
	if coords == nil {
		zerolog.Ctx(ctx).Info().Str("location", location).Msg("no geocoding match, using origin")
		return Origin
	}
	return *coords
}
