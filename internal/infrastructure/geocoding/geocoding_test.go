package geocoding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/config"
	"wanderlust/pkg/cache"
)

type stubGeocoder struct {
	coords *Coordinates
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (s *stubGeocoder) Geocode(ctx context.Context, _ string) (*Coordinates, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.coords, s.err
}

func newNominatim(t *testing.T, handler http.HandlerFunc) *NominatimClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewNominatimClient(config.GeocoderConfig{
		BaseURL:   srv.URL,
		UserAgent: "wanderlust-test",
		Timeout:   time.Second,
	})
}

func TestNominatimClient_Match(t *testing.T) {
	client := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Manali, India", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "wanderlust-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"32.2396","lon":"77.1887","display_name":"Manali"}]`))
	})

	coords, err := client.Geocode(context.Background(), "Manali, India")
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.InDelta(t, 77.1887, coords.Longitude, 1e-9)
	assert.InDelta(t, 32.2396, coords.Latitude, 1e-9)
}

func TestNominatimClient_NoMatch(t *testing.T) {
	client := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	coords, err := client.Geocode(context.Background(), "Unknown Place X")
	require.NoError(t, err)
	assert.Nil(t, coords)
}

func TestNominatimClient_ServerError(t *testing.T) {
	client := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.Geocode(context.Background(), "Paris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNominatimClient_BadCoordinates(t *testing.T) {
	client := newNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"north","lon":"1"}]`))
	})

	_, err := client.Geocode(context.Background(), "Paris")
	assert.Error(t, err)
}

func TestResolve_FallsBackToOrigin(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, Origin, Resolve(ctx, &stubGeocoder{}, "Unknown Place X", time.Second))
	assert.Equal(t, Origin, Resolve(ctx, &stubGeocoder{err: errors.New("boom")}, "Paris", time.Second))
	assert.Equal(t, Origin, Resolve(ctx, &stubGeocoder{delay: time.Second}, "Paris", 10*time.Millisecond))
	assert.Equal(t, Origin, Resolve(ctx, nil, "Paris", time.Second))

	blank := &stubGeocoder{coords: &Coordinates{Longitude: 1, Latitude: 2}}
	assert.Equal(t, Origin, Resolve(ctx, blank, "   ", time.Second))
	assert.Equal(t, int32(0), blank.calls.Load())
}

func TestResolve_Match(t *testing.T) {
	g := &stubGeocoder{coords: &Coordinates{Longitude: 2.35, Latitude: 48.85}}
	got := Resolve(context.Background(), g, "Paris", time.Second)
	assert.Equal(t, Coordinates{Longitude: 2.35, Latitude: 48.85}, got)
}

func TestResolve_IgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := &stubGeocoder{coords: &Coordinates{Longitude: 1, Latitude: 1}, delay: 5 * time.Millisecond}
	got := Resolve(ctx, g, "Paris", time.Second)
	assert.Equal(t, Coordinates{Longitude: 1, Latitude: 1}, got)
}

func TestCachedGeocoder_CachesHitsAndMisses(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache()

	hit := &stubGeocoder{coords: &Coordinates{Longitude: 10, Latitude: 20}}
	g := NewCachedGeocoder(hit, c, time.Hour)

	for i := 0; i < 3; i++ {
		coords, err := g.Geocode(ctx, "  Goa   India ")
		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.Equal(t, 10.0, coords.Longitude)
	}
	assert.Equal(t, int32(1), hit.calls.Load())

	miss := &stubGeocoder{}
	gm := NewCachedGeocoder(miss, c, time.Hour)
	for i := 0; i < 2; i++ {
		coords, err := gm.Geocode(ctx, "Nowhere")
		require.NoError(t, err)
		assert.Nil(t, coords)
	}
	assert.Equal(t, int32(1), miss.calls.Load())
}

func TestCachedGeocoder_DoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	failing := &stubGeocoder{err: errors.New("down")}
	g := NewCachedGeocoder(failing, cache.NewMemoryCache(), time.Hour)

	_, err := g.Geocode(ctx, "Paris")
	require.Error(t, err)
	_, err = g.Geocode(ctx, "Paris")
	require.Error(t, err)
	assert.Equal(t, int32(2), failing.calls.Load())
}

func TestCachedGeocoder_RefresherReplacesCachedMiss(t *testing.T) {
	ctx := context.Background()
	inner := &stubGeocoder{}
	g := NewCachedGeocoder(inner, cache.NewMemoryCache(), time.Hour)

	coords, err := g.Geocode(ctx, "Manali")
	require.NoError(t, err)
	require.Nil(t, coords)

	inner.coords = &Coordinates{Longitude: 77.19, Latitude: 32.24}
	coords, err = g.Geocode(ctx, "Manali")
	require.NoError(t, err)
	assert.Nil(t, coords, "miss still cached")
	assert.Equal(t, int32(1), inner.calls.Load())

	coords, err = g.Refresher().Geocode(ctx, "Manali")
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.Equal(t, int32(2), inner.calls.Load())

	coords, err = g.Geocode(ctx, "manali")
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.Equal(t, 32.24, coords.Latitude)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestThrottledGeocoder_SpacesCalls(t *testing.T) {
	inner := &stubGeocoder{}
	g := NewThrottledGeocoder(inner, 50*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := g.Geocode(context.Background(), "x")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestThrottledGeocoder_RespectsCancellation(t *testing.T) {
	g := NewThrottledGeocoder(&stubGeocoder{}, time.Hour)
	_, err := g.Geocode(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.Geocode(ctx, "second")
	assert.Error(t, err)
}
