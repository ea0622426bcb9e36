package planner

import (
	"errors"
	"fmt"
	"math"

	"safewalk-client/internal/api"
)

// Phase is the observable state of a planning session.
type Phase string

const (
	// PhaseIdle: nothing has been requested yet.
	PhaseIdle Phase = "idle"
	// PhasePlanning: a request is in flight, or the last one failed and a
	// retry is expected.
	PhasePlanning Phase = "planning"
	// PhasePlanned: a chosen route and zero-or-more alternatives are held.
	PhasePlanned Phase = "planned"
)

var (
	ErrNoActiveRoute     = errors.New("planner: no active route")
	ErrNoSuchAlternative = errors.New("planner: no such alternative")
	ErrInvalidMode       = errors.New("planner: invalid mode")
	ErrInvalidTimeBucket = errors.New("planner: invalid time bucket")
)

// Preferences are the session's cross-cutting toggles. They are an explicit
// value per session, never package state, so tests can instantiate any
// combination.
type Preferences struct {
	Mode        api.Mode       `json:"mode"`
	TimeOfDay   api.TimeBucket `json:"time_of_day"`
	AutoRefresh bool           `json:"auto_refresh"`
}

// DisplaySummary is the single projection of a chosen candidate used
// everywhere one is rendered or logged.
type DisplaySummary struct {
	Mode               api.Mode `json:"mode"`
	EtaMinutes         float64  `json:"eta_minutes"`
	AverageSafetyScore float64  `json:"average_safety_score"`
	DistanceKm         float64  `json:"distance_km"`
}

// Summarize projects a candidate into its display form. Distance is
// converted to km and rounded to 3 decimals.
func Summarize(mode api.Mode, c *api.RouteCandidate) DisplaySummary {
	return DisplaySummary{
		Mode:               mode,
		EtaMinutes:         c.EtaMinutes,
		AverageSafetyScore: c.AverageSafetyScore,
		DistanceKm:         roundKm(c.DistanceM),
	}
}

func roundKm(meters float64) float64 {
	return math.Round(meters) / 1000
}

// Fingerprint derives a stable, collision-tolerant identifier from a
// candidate's endpoints and rounded distance. It is not unique and is only
// ever persisted inside a trip record.
func Fingerprint(c *api.RouteCandidate) string {
	if c == nil || len(c.Geometry) < 2 {
		return ""
	}
	first := c.Geometry[0]
	last := c.Geometry[len(c.Geometry)-1]
	return fmt.Sprintf("r%.5f,%.5f-%.5f,%.5f-%d",
		first[1], first[0], last[1], last[0], int64(math.Round(c.DistanceM)))
}
