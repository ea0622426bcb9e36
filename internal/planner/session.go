package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"safewalk-client/internal/api"
	"safewalk-client/internal/geo"
)

// RouteService is the slice of the backend the session plans against.
// *api.Client satisfies it.
type RouteService interface {
	PlanRoute(ctx context.Context, req api.PlanRequest) (api.PlanResponse, error)
}

// TripRecorder persists logged trips and refreshes the per-user cache.
// *trips.History satisfies it.
type TripRecorder interface {
	Create(ctx context.Context, trip api.Trip) (string, error)
	Load(ctx context.Context, userUID string) error
}

// Session is the route-planning state machine. It owns the current
// selection, preferences, and the chosen/alternative candidates; every
// mutation happens through its methods.
type Session struct {
	mu     sync.Mutex
	routes RouteService

	sel   geo.Selection
	prefs Preferences
	phase Phase

	chosen       *api.RouteCandidate
	alternatives []*api.RouteCandidate
	summary      *DisplaySummary
	plannedMode  api.Mode

	planSeq     uint64
	everPlanned bool
}

func NewSession(routes RouteService) *Session {
	return &Session{
		routes: routes,
		sel:    geo.NewSelection(),
		prefs: Preferences{
			Mode:      api.ModeBalanced,
			TimeOfDay: api.TimeDay,
		},
		phase: PhaseIdle,
	}
}

// Overrides substitute session values for a single Plan call without
// mutating the session ("quick compare").
type Overrides struct {
	Start     *geo.Point
	End       *geo.Point
	Mode      api.Mode
	TimeOfDay api.TimeBucket
}

// Plan issues one planning request from the current state. The prior
// chosen/alternatives are cleared when the request is issued; on failure the
// session stays in the planning phase so the caller can surface a retryable
// "could not compute route". A response that resolves after a newer request
// has been issued is discarded.
func (s *Session) Plan(ctx context.Context, ov *Overrides) error {
	s.mu.Lock()
	req, err := s.buildRequestLocked(ov)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.chosen = nil
	s.alternatives = nil
	s.phase = PhasePlanning
	s.planSeq++
	seq := s.planSeq
	s.mu.Unlock()

	resp, err := s.routes.PlanRoute(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.planSeq {
		// superseded by a newer request; whatever it resolves to wins
		return nil
	}
	if err != nil {
		return fmt.Errorf("plan route: %w", err)
	}

	s.chosen = &resp.Chosen
	s.alternatives = make([]*api.RouteCandidate, len(resp.Alternatives))
	for i := range resp.Alternatives {
		s.alternatives[i] = &resp.Alternatives[i]
	}
	mode := req.Mode
	if resp.Mode.Valid() {
		mode = resp.Mode
	}
	// the mode this result set was planned under, which may differ from the
	// session preference when an override was used
	s.plannedMode = mode
	summary := Summarize(mode, s.chosen)
	s.summary = &summary
	s.phase = PhasePlanned
	s.everPlanned = true
	return nil
}

func (s *Session) buildRequestLocked(ov *Overrides) (api.PlanRequest, error) {
	req := api.PlanRequest{
		Start:     s.sel.Start,
		End:       s.sel.End,
		Mode:      s.prefs.Mode,
		TimeOfDay: s.prefs.TimeOfDay,
	}
	if ov != nil {
		if ov.Start != nil {
			req.Start = *ov.Start
		}
		if ov.End != nil {
			req.End = *ov.End
		}
		if ov.Mode != "" {
			req.Mode = ov.Mode
		}
		if ov.TimeOfDay != "" {
			req.TimeOfDay = ov.TimeOfDay
		}
	}
	if err := req.Start.Validate(); err != nil {
		return api.PlanRequest{}, err
	}
	if err := req.End.Validate(); err != nil {
		return api.PlanRequest{}, err
	}
	if !req.Mode.Valid() {
		return api.PlanRequest{}, ErrInvalidMode
	}
	if !req.TimeOfDay.Valid() {
		return api.PlanRequest{}, ErrInvalidTimeBucket
	}
	return req, nil
}

// SetMode commits a new scoring mode and replans implicitly when
// auto-refresh is armed and a route has been computed before. Setting the
// same mode again is not a committed change and triggers nothing.
func (s *Session) SetMode(ctx context.Context, mode api.Mode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	s.mu.Lock()
	changed := s.prefs.Mode != mode
	s.prefs.Mode = mode
	replan := changed && s.shouldReplanLocked()
	s.mu.Unlock()

	if replan {
		return s.Plan(ctx, nil)
	}
	return nil
}

func (s *Session) SetTimeOfDay(ctx context.Context, bucket api.TimeBucket) error {
	if !bucket.Valid() {
		return ErrInvalidTimeBucket
	}
	s.mu.Lock()
	changed := s.prefs.TimeOfDay != bucket
	s.prefs.TimeOfDay = bucket
	replan := changed && s.shouldReplanLocked()
	s.mu.Unlock()

	if replan {
		return s.Plan(ctx, nil)
	}
	return nil
}

func (s *Session) SetStart(ctx context.Context, p geo.Point) error {
	return s.SetPoints(ctx, &p, nil)
}

func (s *Session) SetEnd(ctx context.Context, p geo.Point) error {
	return s.SetPoints(ctx, nil, &p)
}

// SetPoints commits both endpoints as one state change, so an auto-refresh
// replan fires once even when the caller edits origin and destination
// together. Validation failures leave the selection untouched.
func (s *Session) SetPoints(ctx context.Context, start, end *geo.Point) error {
	s.mu.Lock()
	if start != nil {
		if err := start.Validate(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	if end != nil {
		if err := end.Validate(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	changed := false
	if start != nil && s.sel.Start != *start {
		s.sel.Start = *start
		changed = true
	}
	if end != nil && s.sel.End != *end {
		s.sel.End = *end
		changed = true
	}
	replan := changed && s.shouldReplanLocked()
	s.mu.Unlock()

	if replan {
		return s.Plan(ctx, nil)
	}
	return nil
}

func (s *Session) SetPickTarget(target geo.PickTarget) {
	s.mu.Lock()
	s.sel.SetPickTarget(target)
	s.mu.Unlock()
}

// ConsumeClick feeds one map click into the selection. A click that lands a
// point counts as a committed change for auto-refresh purposes.
func (s *Session) ConsumeClick(ctx context.Context, p geo.Point) (bool, error) {
	s.mu.Lock()
	applied, err := s.sel.ConsumeClick(p)
	if err != nil || !applied {
		s.mu.Unlock()
		return applied, err
	}
	replan := s.shouldReplanLocked()
	s.mu.Unlock()

	if replan {
		return true, s.Plan(ctx, nil)
	}
	return true, nil
}

func (s *Session) SetAutoRefresh(enabled bool) {
	s.mu.Lock()
	s.prefs.AutoRefresh = enabled
	s.mu.Unlock()
}

func (s *Session) shouldReplanLocked() bool {
	return s.prefs.AutoRefresh && s.everPlanned
}

// SelectAlternative rebinds the chosen candidate to one of the held
// alternatives. No request is issued.
func (s *Session) SelectAlternative(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.alternatives) {
		return ErrNoSuchAlternative
	}
	s.chosen = s.alternatives[index]
	summary := Summarize(s.plannedMode, s.chosen)
	s.summary = &summary
	return nil
}

// RouteID is the fingerprint of the currently chosen candidate, empty when
// none is chosen.
func (s *Session) RouteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Fingerprint(s.chosen)
}

// LogTrip persists the chosen route as a trip for userUID and refreshes
// that user's history cache. Persistence failures are returned for the
// caller to surface as a non-fatal "could not save"; nothing is retried.
func (s *Session) LogTrip(ctx context.Context, userUID string, recorder TripRecorder) (api.Trip, error) {
	s.mu.Lock()
	if s.chosen == nil {
		s.mu.Unlock()
		return api.Trip{}, ErrNoActiveRoute
	}
	routeID := Fingerprint(s.chosen)
	if routeID == "" {
		routeID = fmt.Sprintf("trip-%d", time.Now().UnixNano())
	}
	trip := api.Trip{
		UserUID:     userUID,
		Origin:      s.sel.Start,
		Destination: s.sel.End,
		RouteID:     routeID,
		Mode:        s.prefs.Mode,
		DistanceKm:  roundKm(s.chosen.DistanceM),
		EtaMinutes:  s.chosen.EtaMinutes,
		SafetyScore: s.chosen.AverageSafetyScore,
	}
	s.mu.Unlock()

	id, err := recorder.Create(ctx, trip)
	if err != nil {
		return api.Trip{}, err
	}
	trip.ID = id
	// cache refresh failures are non-fatal; the next load will catch up
	_ = recorder.Load(ctx, userUID)
	return trip, nil
}

// Snapshot is the JSON-ready view the presentation layer consumes.
// Alternatives exclude whichever candidate is currently bound as chosen, by
// identity rather than value.
type Snapshot struct {
	Phase        Phase                `json:"phase"`
	Selection    geo.Selection        `json:"selection"`
	Preferences  Preferences          `json:"preferences"`
	Chosen       *api.RouteCandidate  `json:"chosen,omitempty"`
	Alternatives []api.RouteCandidate `json:"alternatives"`
	Summary      *DisplaySummary      `json:"summary,omitempty"`
	RouteID      string               `json:"route_id,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:        s.phase,
		Selection:    s.sel,
		Preferences:  s.prefs,
		Alternatives: []api.RouteCandidate{},
		RouteID:      Fingerprint(s.chosen),
	}
	if s.chosen != nil {
		chosen := *s.chosen
		snap.Chosen = &chosen
	}
	if s.summary != nil {
		summary := *s.summary
		snap.Summary = &summary
	}
	for _, alt := range s.alternatives {
		if alt == s.chosen {
			continue
		}
		snap.Alternatives = append(snap.Alternatives, *alt)
	}
	return snap
}
