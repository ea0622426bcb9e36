package api

import "safewalk-client/internal/geo"

// Mode is the route-scoring objective.
type Mode string

const (
	ModeFastest        Mode = "fastest"
	ModeSafest         Mode = "safest"
	ModeBalanced       Mode = "balanced"
	ModeNightSafe      Mode = "night_safe"
	ModeFemaleFriendly Mode = "female_friendly"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeFastest, ModeSafest, ModeBalanced, ModeNightSafe, ModeFemaleFriendly:
		return true
	}
	return false
}

// TimeBucket is the coarse time-of-day category used for safety scoring.
type TimeBucket string

const (
	TimeDay      TimeBucket = "day"
	TimeNight    TimeBucket = "night"
	TimeDawnDusk TimeBucket = "dawn_dusk"
)

func (t TimeBucket) Valid() bool {
	switch t {
	case TimeDay, TimeNight, TimeDawnDusk:
		return true
	}
	return false
}

// RouteCandidate is one scored route produced by the planning service.
// Geometry is an ordered sequence of (lon, lat) pairs. Immutable once
// received.
type RouteCandidate struct {
	Geometry           [][2]float64 `json:"geometry"`
	DistanceM          float64      `json:"distance_m"`
	EtaMinutes         float64      `json:"eta_minutes"`
	AverageSafetyScore float64      `json:"average_safety_score"`
}

type PlanRequest struct {
	Start     geo.Point  `json:"start"`
	End       geo.Point  `json:"end"`
	Mode      Mode       `json:"mode"`
	TimeOfDay TimeBucket `json:"time_of_day"`
}

type PlanResponse struct {
	Mode         Mode             `json:"mode"`
	Chosen       RouteCandidate   `json:"chosen"`
	Alternatives []RouteCandidate `json:"alternatives"`
}

type ScoreRequest struct {
	Segments  [][2]float64 `json:"segments"`
	TimeOfDay TimeBucket   `json:"time_of_day"`
	Mode      Mode         `json:"mode"`
}

type ScoreResponse struct {
	Mode               Mode      `json:"mode"`
	EtaMinutes         float64   `json:"eta_minutes"`
	AverageSafetyScore float64   `json:"average_safety_score"`
	SegmentScores      []float64 `json:"segment_scores"`
}

// Trip is a completed journey owned by the backend; the client only caches
// reads of it per user_uid.
type Trip struct {
	ID          string    `json:"id,omitempty"`
	UserUID     string    `json:"user_uid"`
	Origin      geo.Point `json:"origin"`
	Destination geo.Point `json:"destination"`
	RouteID     string    `json:"route_id"`
	Mode        Mode      `json:"mode"`
	DistanceKm  float64   `json:"distance_km"`
	EtaMinutes  float64   `json:"eta_minutes"`
	SafetyScore float64   `json:"safety_score"`
}

// TripSummary is recomputed by the backend per request. FavoriteMode is
// empty when the user has no trips.
type TripSummary struct {
	TotalTrips   int     `json:"total_trips"`
	TotalKm      float64 `json:"total_km"`
	AvgSafety    float64 `json:"avg_safety"`
	FavoriteMode Mode    `json:"favorite_mode,omitempty"`
}

type Alert struct {
	Message        string  `json:"message"`
	Type           string  `json:"type,omitempty"`
	Recommendation string  `json:"recommendation,omitempty"`
	Severity       string  `json:"severity"`
	DistanceM      float64 `json:"distance_m,omitempty"`
}

type CompanionRequest struct {
	UserUID     string     `json:"user_uid"`
	Origin      geo.Point  `json:"origin"`
	Destination geo.Point  `json:"destination"`
	TimeOfDay   TimeBucket `json:"time_of_day"`
}

type CompanionMatch struct {
	RequestID              string  `json:"request_id"`
	UserUID                string  `json:"user_uid"`
	DistanceToOriginM      float64 `json:"distance_to_origin_m"`
	DistanceToDestinationM float64 `json:"distance_to_destination_m"`
	Score                  float64 `json:"score"`
}

type Report struct {
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Location    geo.Point `json:"location"`
	ReporterUID string    `json:"reporter_uid"`
}

type SOSRequest struct {
	UserUID     string    `json:"user_uid"`
	Location    geo.Point `json:"location"`
	TriggeredBy string    `json:"triggered_by"`
}

type Ack struct {
	Status string `json:"status"`
}

// AutoSOSCheck carries the risk signals the backend weighs before deciding
// whether an automatic SOS should fire.
type AutoSOSCheck struct {
	UserUID            string     `json:"user_uid"`
	Location           geo.Point  `json:"location"`
	TimeOfDay          TimeBucket `json:"time_of_day"`
	AverageSafetyScore float64    `json:"average_safety_score"`
	StationaryMinutes  float64    `json:"stationary_minutes"`
}

type AutoSOSResult struct {
	ShouldTrigger bool     `json:"should_trigger"`
	Reasons       []string `json:"reasons"`
}

type ShareRequest struct {
	UserUID     string    `json:"user_uid"`
	Location    geo.Point `json:"location"`
	Destination geo.Point `json:"destination"`
	EtaMinutes  float64   `json:"eta_minutes"`
	Mode        Mode      `json:"mode"`
}

type GuardianNotify struct {
	UserUID string `json:"user_uid"`
	Message string `json:"message"`
}
