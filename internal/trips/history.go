package trips

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"safewalk-client/internal/api"
)

// ErrPersistence means the backend accepted the create call but assigned no
// identifier, so the trip cannot be considered saved.
var ErrPersistence = errors.New("trips: backend assigned no trip id")

// Backend is the slice of the safety backend that owns trips.
// *api.Client satisfies it.
type Backend interface {
	ListTrips(ctx context.Context, userUID string) ([]api.Trip, error)
	TripSummary(ctx context.Context, userUID string) (api.TripSummary, error)
	CreateTrip(ctx context.Context, trip api.Trip) (string, error)
	DeleteTrip(ctx context.Context, tripID string) error
}

// History caches the server-held trip list and derived summary per
// user_uid. The cache is read-through only on explicit Load; create and
// remove leave reloading to the caller so side effects stay visible at the
// call site.
type History struct {
	mu      sync.RWMutex
	backend Backend

	trips     map[string][]api.Trip
	summaries map[string]api.TripSummary
}

func NewHistory(backend Backend) *History {
	return &History{
		backend:   backend,
		trips:     map[string][]api.Trip{},
		summaries: map[string]api.TripSummary{},
	}
}

// Load fetches the trip list and the summary for userUID. The two fetches
// are independent: one failing still lets the other update its half of the
// cache. The returned error reports whichever halves failed.
func (h *History) Load(ctx context.Context, userUID string) error {
	var errs []error

	list, err := h.backend.ListTrips(ctx, userUID)
	if err != nil {
		errs = append(errs, fmt.Errorf("load trips: %w", err))
	} else {
		if list == nil {
			list = []api.Trip{}
		}
		h.mu.Lock()
		h.trips[userUID] = list
		h.mu.Unlock()
	}

	summary, err := h.backend.TripSummary(ctx, userUID)
	if err != nil {
		errs = append(errs, fmt.Errorf("load summary: %w", err))
	} else {
		h.mu.Lock()
		h.summaries[userUID] = summary
		h.mu.Unlock()
	}

	return errors.Join(errs...)
}

// Trips returns a copy of the cached list, nil-safe when never loaded.
func (h *History) Trips(userUID string) []api.Trip {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cached := h.trips[userUID]
	out := make([]api.Trip, len(cached))
	copy(out, cached)
	return out
}

// Summary reports the cached summary and whether one has been loaded.
func (h *History) Summary(userUID string) (api.TripSummary, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	summary, ok := h.summaries[userUID]
	return summary, ok
}

// Filter is a pure derived view over the cached list; the cache itself is
// never mutated.
func (h *History) Filter(userUID string, mode api.Mode) []api.Trip {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []api.Trip
	for _, trip := range h.trips[userUID] {
		if trip.Mode == mode {
			out = append(out, trip)
		}
	}
	return out
}

// Create persists a new trip and returns its backend-assigned id. The cache
// is deliberately not refreshed here.
func (h *History) Create(ctx context.Context, trip api.Trip) (string, error) {
	id, err := h.backend.CreateTrip(ctx, trip)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrPersistence
	}
	return id, nil
}

// Remove deletes a previously saved trip by its server id. Stale ids surface
// as the backend's not-found error. The caller reloads after success.
func (h *History) Remove(ctx context.Context, tripID string) error {
	return h.backend.DeleteTrip(ctx, tripID)
}
