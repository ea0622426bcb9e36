package planner

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"safewalk-client/internal/geo"
)

type fakeBookmarks struct {
	start, end geo.Point
	ok         bool
}

func (f *fakeBookmarks) Use(string) (geo.Point, geo.Point, bool) {
	return f.start, f.end, f.ok
}

func newTestApp(routes RouteService, recorder TripRecorder, bms BookmarkSource) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/session"), NewManager(routes), recorder, bms, nil)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestSnapshotEndpoint(t *testing.T) {
	app := newTestApp(&fakeRoutes{}, &fakeRecorder{}, &fakeBookmarks{})

	resp, raw := doJSON(t, app, http.MethodGet, "/session/user-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Phase != PhaseIdle {
		t.Fatalf("expected idle snapshot, got %v", snap.Phase)
	}
	def := geo.NewSelection()
	if snap.Selection.Start != def.Start {
		t.Fatalf("expected default selection")
	}
}

func TestPlanEndpoint(t *testing.T) {
	routes := &fakeRoutes{resp: planResponse(1650.0, 1)}
	app := newTestApp(routes, &fakeRecorder{}, &fakeBookmarks{})

	resp, raw := doJSON(t, app, http.MethodPost, "/session/user-1/plan", fiber.Map{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, raw)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Phase != PhasePlanned || snap.Summary == nil || snap.Summary.DistanceKm != 1.650 {
		t.Fatalf("unexpected snapshot: %s", raw)
	}
}

func TestPlanEndpointBackendFailure(t *testing.T) {
	routes := &fakeRoutes{err: errors.New("backend down")}
	app := newTestApp(routes, &fakeRecorder{}, &fakeBookmarks{})

	resp, _ := doJSON(t, app, http.MethodPost, "/session/user-1/plan", fiber.Map{})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 for plain failure, got %d", resp.StatusCode)
	}
}

func TestModeEndpointValidation(t *testing.T) {
	app := newTestApp(&fakeRoutes{}, &fakeRecorder{}, &fakeBookmarks{})

	resp, _ := doJSON(t, app, http.MethodPut, "/session/user-1/mode", fiber.Map{"mode": "scenic"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestClickFlowEndpoints(t *testing.T) {
	app := newTestApp(&fakeRoutes{resp: planResponse(1000, 0)}, &fakeRecorder{}, &fakeBookmarks{})

	resp, _ := doJSON(t, app, http.MethodPost, "/session/user-1/pick", fiber.Map{"target": "start"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pick status %d", resp.StatusCode)
	}

	resp, raw := doJSON(t, app, http.MethodPost, "/session/user-1/click", fiber.Map{"lat": 28.7, "lon": 77.1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("click status %d", resp.StatusCode)
	}
	var out struct {
		Applied bool     `json:"applied"`
		Session Snapshot `json:"session"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Applied || out.Session.Selection.Picking != geo.PickEnd {
		t.Fatalf("expected applied click advancing to end: %s", raw)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/session/user-1/click", fiber.Map{"lat": 200, "lon": 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range click, got %d", resp.StatusCode)
	}
}

func TestPointsEndpointRequiresBody(t *testing.T) {
	app := newTestApp(&fakeRoutes{}, &fakeRecorder{}, &fakeBookmarks{})

	resp, _ := doJSON(t, app, http.MethodPut, "/session/user-1/points", fiber.Map{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without points, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodPut, "/session/user-1/points", fiber.Map{
		"start": fiber.Map{"lat": 28.7, "lon": 77.1},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestLogTripEndpoint(t *testing.T) {
	routes := &fakeRoutes{resp: planResponse(1650.0, 0)}
	rec := &fakeRecorder{id: "t-1"}
	app := newTestApp(routes, rec, &fakeBookmarks{})

	// no active route yet
	resp, _ := doJSON(t, app, http.MethodPost, "/session/user-1/trip", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if len(rec.created) != 0 {
		t.Fatalf("expected no persistence call without a route")
	}

	if resp, _ := doJSON(t, app, http.MethodPost, "/session/user-1/plan", fiber.Map{}); resp.StatusCode != http.StatusOK {
		t.Fatalf("plan failed")
	}
	resp, raw := doJSON(t, app, http.MethodPost, "/session/user-1/trip", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, raw)
	}
	if len(rec.created) != 1 || rec.created[0].UserUID != "user-1" {
		t.Fatalf("expected trip created for user-1")
	}
}

func TestAlternativeEndpointNotFound(t *testing.T) {
	app := newTestApp(&fakeRoutes{resp: planResponse(1000, 0)}, &fakeRecorder{}, &fakeBookmarks{})

	resp, _ := doJSON(t, app, http.MethodPost, "/session/user-1/alternative", fiber.Map{"index": 3})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestBookmarkApplyEndpoint(t *testing.T) {
	bms := &fakeBookmarks{
		start: geo.Point{Lat: 28.7, Lon: 77.1},
		end:   geo.Point{Lat: 28.5, Lon: 77.3},
		ok:    true,
	}
	app := newTestApp(&fakeRoutes{}, &fakeRecorder{}, bms)

	resp, raw := doJSON(t, app, http.MethodPost, "/session/user-1/bookmark/bm-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Selection.Start != bms.start || snap.Selection.End != bms.end {
		t.Fatalf("expected bookmark applied to selection")
	}

	bms.ok = false
	resp, _ = doJSON(t, app, http.MethodPost, "/session/user-1/bookmark/gone", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestManagerReusesSessions(t *testing.T) {
	mgr := NewManager(&fakeRoutes{})
	if mgr.Get("a") != mgr.Get("a") {
		t.Fatalf("expected same session per uid")
	}
	if mgr.Get("a") == mgr.Get("b") {
		t.Fatalf("expected distinct sessions per uid")
	}
}
