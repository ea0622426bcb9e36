package geo

import "fmt"

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ErrOutOfRange marks coordinates outside the valid lat/lon domain.
type ErrOutOfRange struct {
	Point Point
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("coordinates out of range: lat=%v lon=%v", e.Point.Lat, e.Point.Lon)
}

// Validate rejects points outside [-90,90] x [-180,180]. Values are never
// clamped; the caller decides what to do with a bad point.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return ErrOutOfRange{Point: p}
	}
	return nil
}

type PickTarget string

const (
	PickNone  PickTarget = "none"
	PickStart PickTarget = "start"
	PickEnd   PickTarget = "end"
)

// Selection is a two-point origin/destination pair plus the interactive
// pick state driven by map clicks.
type Selection struct {
	Start   Point      `json:"start"`
	End     Point      `json:"end"`
	Picking PickTarget `json:"picking"`
}

// NewSelection seeds the default pair: Connaught Place to India Gate.
func NewSelection() Selection {
	return Selection{
		Start:   Point{Lat: 28.6315, Lon: 77.2167},
		End:     Point{Lat: 28.6129, Lon: 77.2295},
		Picking: PickNone,
	}
}

func (s *Selection) SetPickTarget(target PickTarget) {
	switch target {
	case PickStart, PickEnd:
		s.Picking = target
	default:
		s.Picking = PickNone
	}
}

// ConsumeClick applies one map click. A click while picking the start sets
// the start and advances to picking the end; a click while picking the end
// sets the end and disarms. Unarmed clicks are ignored.
func (s *Selection) ConsumeClick(p Point) (bool, error) {
	if s.Picking == PickNone {
		return false, nil
	}
	if err := p.Validate(); err != nil {
		return false, err
	}
	switch s.Picking {
	case PickStart:
		s.Start = p
		s.Picking = PickEnd
	case PickEnd:
		s.End = p
		s.Picking = PickNone
	}
	return true, nil
}

// SetStart overwrites the origin unconditionally (numeric entry path).
// The pick state is left alone.
func (s *Selection) SetStart(p Point) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.Start = p
	return nil
}

// SetEnd overwrites the destination unconditionally.
func (s *Selection) SetEnd(p Point) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.End = p
	return nil
}
