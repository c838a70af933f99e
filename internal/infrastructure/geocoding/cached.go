package geocoding

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"wanderlust/internal/shared/utils"
	"wanderlust/pkg/cache"
)

type cachedResult struct {
	Found  bool        `json:"found"`
	Coords Coordinates `json:"coords"`
}

// CachedGeocoder memoises lookups, including misses, in a cache.
// Cache failures fall through to the wrapped geocoder.
type CachedGeocoder struct {
	inner Geocoder
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedGeocoder(inner Geocoder, c cache.Cache, ttl time.Duration) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, cache: c, ttl: ttl}
}

func cacheKey(location string) string {
	return "geocode:" + strings.ToLower(utils.CollapseSpace(location))
}

func (g *CachedGeocoder) Geocode(ctx context.Context, location string) (*Coordinates, error) {
	key := cacheKey(location)

	var hit cachedResult
	found, err := g.cache.Get(ctx, key, &hit)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("geocode cache read failed")
	}
	if found {
		if !hit.Found {
			return nil, nil
		}
		c := hit.Coords
		return &c, nil
	}

	return g.Refresh(ctx, location)
}

// Refresh skips any cached entry, asks the wrapped geocoder and overwrites
// the entry with the answer.
func (g *CachedGeocoder) Refresh(ctx context.Context, location string) (*Coordinates, error) {
	coords, err := g.inner.Geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	entry := cachedResult{Found: coords != nil}
	if coords != nil {
		entry.Coords = *coords
	}
	if err := g.cache.Set(ctx, cacheKey(location), entry, g.ttl); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("geocode cache write failed")
	}

	return coords, nil
}

// Refresher returns g as a Geocoder that always reaches the provider. Batch
// repairs use it so an earlier cached miss is retried.
func (g *CachedGeocoder) Refresher() Geocoder {
	return GeocoderFunc(g.Refresh)
}

// ThrottledGeocoder spaces out provider calls for batch callers.
type ThrottledGeocoder struct {
	inner   Geocoder
	limiter *rate.Limiter
}

// NewThrottledGeocoder allows one call per interval.
func NewThrottledGeocoder(inner Geocoder, interval time.Duration) *ThrottledGeocoder {
	return &ThrottledGeocoder{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (g *ThrottledGeocoder) Geocode(ctx context.Context, location string) (*Coordinates, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return g.inner.Geocode(ctx, location)
}
