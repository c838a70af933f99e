package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"wanderlust/internal/domains/listing/model"
	"wanderlust/internal/infrastructure/geocoding"
	"wanderlust/internal/infrastructure/storage"
)

var errDown = errors.New("backend down")

// memRepo is an in-memory RepositoryInterface.
type memRepo struct {
	mu        sync.Mutex
	listings  map[uuid.UUID]model.Listing
	order     []uuid.UUID
	createErr error
	updateErr error
	deleteErr error
	creates   int
}

func newMemRepo() *memRepo {
	return &memRepo{listings: map[uuid.UUID]model.Listing{}}
}

func (r *memRepo) put(l model.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[l.ID]; !ok {
		r.order = append(r.order, l.ID)
	}
	r.listings[l.ID] = l
}

func (r *memRepo) get(id uuid.UUID) (model.Listing, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	return l, ok
}

func (r *memRepo) all() []model.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Listing, 0, len(r.order))
	for _, id := range r.order {
		if l, ok := r.listings[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (r *memRepo) Create(_ context.Context, l *model.Listing) error {
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	r.put(*l)
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Listing, error) {
	l, ok := r.get(id)
	if !ok {
		return nil, model.ErrListingNotFound
	}
	return &l, nil
}

func (r *memRepo) FindDetail(ctx context.Context, id uuid.UUID) (*model.Detail, error) {
	l, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.Detail{Listing: *l, Reviews: []model.ReviewView{}}, nil
}

func (r *memRepo) Update(_ context.Context, l *model.Listing) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.get(l.ID); !ok {
		return model.ErrListingNotFound
	}
	r.put(*l)
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return model.ErrListingNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *memRepo) List(context.Context) ([]model.Listing, error) {
	return r.all(), nil
}

func (r *memRepo) ListByCategory(_ context.Context, c model.Category) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range r.all() {
		if l.Category == c {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memRepo) Search(_ context.Context, q string) ([]model.Listing, error) {
	q = strings.ToLower(q)
	var out []model.Listing
	for _, l := range r.all() {
		for _, field := range []string{l.Title, l.Country, l.Location} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, l)
				break
			}
		}
	}
	return out, nil
}

func (r *memRepo) PullReview(_ context.Context, listingID, reviewID uuid.UUID) error {
	l, ok := r.get(listingID)
	if !ok {
		return model.ErrListingNotFound
	}
	kept := l.ReviewIDs[:0]
	for _, id := range l.ReviewIDs {
		if id != reviewID {
			kept = append(kept, id)
		}
	}
	l.ReviewIDs = kept
	r.put(l)
	return nil
}

func (r *memRepo) ListAtOrigin(_ context.Context, limit int) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range r.all() {
		if l.Geometry.IsOrigin() {
			out = append(out, l)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) SetGeometry(_ context.Context, id uuid.UUID, g model.Geometry) error {
	l, ok := r.get(id)
	if !ok {
		return model.ErrListingNotFound
	}
	l.Geometry = g
	r.put(l)
	return nil
}

func (r *memRepo) SetCategory(_ context.Context, id uuid.UUID, c model.Category) error {
	l, ok := r.get(id)
	if !ok {
		return model.ErrListingNotFound
	}
	l.Category = c
	r.put(l)
	return nil
}

// fakeImages stores uploads under sequential keys.
type fakeImages struct {
	stored []string
	err    error
}

func (f *fakeImages) Store(_ context.Context, up storage.Upload) (storage.ImageRef, error) {
	if f.err != nil {
		return storage.ImageRef{}, f.err
	}
	key := "listings/" + up.Filename
	f.stored = append(f.stored, key)
	return storage.ImageRef{URL: "http://img/" + key, Key: key}, nil
}

func (f *fakeImages) PreviewURL(url string) string {
	return url + "?preview"
}

// geocoderByName answers from a fixed table; unknown locations have no match.
type geocoderByName struct {
	known map[string]geocoding.Coordinates
	err   error
	calls []string
}

func (g *geocoderByName) Geocode(_ context.Context, location string) (*geocoding.Coordinates, error) {
	g.calls = append(g.calls, location)
	if g.err != nil {
		return nil, g.err
	}
	c, ok := g.known[location]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// recordingEnqueuer keeps every enqueued task.
type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (e *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}
