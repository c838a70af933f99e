package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanderlust/pkg/cache"
)

// ErrNotFound is returned when no live record exists for an id.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "sess:"

// Store persists sessions.
type Store interface {
	New() *Session
	Load(ctx context.Context, id string) (*Session, error)
	// Save writes the session if needed and reports whether it did.
	Save(ctx context.Context, s *Session) (bool, error)
}

// CacheStore keeps sessions in a cache.Cache (Redis in production) with a
// rolling TTL. Unmodified sessions are rewritten at most once per touchAfter,
// and new sessions that were never modified are not stored at all.
type CacheStore struct {
	cache      cache.Cache
	ttl        time.Duration
	touchAfter time.Duration
	now        func() time.Time
}

func NewCacheStore(c cache.Cache, ttl, touchAfter time.Duration) *CacheStore {
	return &CacheStore{
		cache:      c,
		ttl:        ttl,
		touchAfter: touchAfter,
		now:        time.Now,
	}
}

func (st *CacheStore) New() *Session {
	return newSession(st.now())
}

func (st *CacheStore) Load(ctx context.Context, id string) (*Session, error) {
	var s Session
	found, err := st.cache.Get(ctx, keyPrefix+id, &s)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	s.ID = id
	if s.Flashes == nil {
		s.Flashes = map[string][]string{}
	}
	return &s, nil
}

func (st *CacheStore) Save(ctx context.Context, s *Session) (bool, error) {
	if s.previous != "" {
		if err := st.cache.Delete(ctx, keyPrefix+s.previous); err != nil {
			return false, fmt.Errorf("remove rotated session: %w", err)
		}
		s.previous = ""
	}

	now := st.now()
	switch {
	case s.isNew && !s.dirty:
		return false, nil
	case !s.isNew && !s.dirty && now.Sub(s.TouchedAt) < st.touchAfter:
		return false, nil
	}

	s.TouchedAt = now
	if err := st.cache.Set(ctx, keyPrefix+s.ID, s, st.ttl); err != nil {
		return false, fmt.Errorf("save session: %w", err)
	}
	s.isNew = false
	s.dirty = false
	return true, nil
}
