package geo

import (
	"errors"
	"testing"
)

func TestPointValidate(t *testing.T) {
	valid := []Point{
		{Lat: 28.6315, Lon: 77.2167},
		{Lat: -90, Lon: -180},
		{Lat: 90, Lon: 180},
		{},
	}
	for _, p := range valid {
		if err := p.Validate(); err != nil {
			t.Fatalf("expected valid point %v: %v", p, err)
		}
	}

	invalid := []Point{
		{Lat: 91, Lon: 0},
		{Lat: -90.0001, Lon: 0},
		{Lat: 0, Lon: 180.5},
		{Lat: 0, Lon: -181},
	}
	for _, p := range invalid {
		err := p.Validate()
		if err == nil {
			t.Fatalf("expected error for %v", p)
		}
		var oor ErrOutOfRange
		if !errors.As(err, &oor) {
			t.Fatalf("expected ErrOutOfRange, got %v", err)
		}
	}
}

func TestConsumeClickSequence(t *testing.T) {
	sel := NewSelection()
	sel.SetPickTarget(PickStart)

	first := Point{Lat: 28.7, Lon: 77.1}
	second := Point{Lat: 28.55, Lon: 77.25}

	applied, err := sel.ConsumeClick(first)
	if err != nil || !applied {
		t.Fatalf("first click: applied=%v err=%v", applied, err)
	}
	if sel.Picking != PickEnd {
		t.Fatalf("expected picking to advance to end, got %v", sel.Picking)
	}
	if sel.Start != first {
		t.Fatalf("expected start set to first click")
	}

	applied, err = sel.ConsumeClick(second)
	if err != nil || !applied {
		t.Fatalf("second click: applied=%v err=%v", applied, err)
	}
	if sel.Picking != PickNone {
		t.Fatalf("expected picking disarmed, got %v", sel.Picking)
	}
	if sel.Start != first || sel.End != second {
		t.Fatalf("expected both points set in click order")
	}
}

func TestConsumeClickUnarmedIsNoop(t *testing.T) {
	sel := NewSelection()
	before := sel

	applied, err := sel.ConsumeClick(Point{Lat: 1, Lon: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied {
		t.Fatalf("expected click to be ignored while unarmed")
	}
	if sel != before {
		t.Fatalf("expected selection unchanged")
	}
}

func TestConsumeClickRejectsBadPoint(t *testing.T) {
	sel := NewSelection()
	sel.SetPickTarget(PickEnd)
	prevEnd := sel.End

	applied, err := sel.ConsumeClick(Point{Lat: 200, Lon: 0})
	if err == nil || applied {
		t.Fatalf("expected validation error")
	}
	if sel.Picking != PickEnd {
		t.Fatalf("expected pick target to stay armed after bad click")
	}
	if sel.End != prevEnd {
		t.Fatalf("expected end untouched")
	}
}

func TestDirectOverwriteKeepsPickState(t *testing.T) {
	sel := NewSelection()
	sel.SetPickTarget(PickEnd)

	if err := sel.SetStart(Point{Lat: 10, Lon: 20}); err != nil {
		t.Fatalf("set start: %v", err)
	}
	if err := sel.SetEnd(Point{Lat: 11, Lon: 21}); err != nil {
		t.Fatalf("set end: %v", err)
	}
	if sel.Picking != PickEnd {
		t.Fatalf("expected overwrite to leave picking alone")
	}

	if err := sel.SetStart(Point{Lat: -95, Lon: 0}); err == nil {
		t.Fatalf("expected out-of-range start rejected")
	}
	if sel.Start != (Point{Lat: 10, Lon: 20}) {
		t.Fatalf("expected start unchanged after rejected write")
	}
}

func TestSetPickTargetUnknownDisarms(t *testing.T) {
	sel := NewSelection()
	sel.SetPickTarget(PickStart)
	sel.SetPickTarget(PickTarget("bogus"))
	if sel.Picking != PickNone {
		t.Fatalf("expected unknown target to disarm")
	}
}
