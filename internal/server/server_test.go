package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"safewalk-client/internal/api"
	"safewalk-client/internal/config"
	"safewalk-client/internal/storage"
)

func newBackendStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/routes/plan", func(w http.ResponseWriter, r *http.Request) {
		resp := api.PlanResponse{
			Mode: api.ModeBalanced,
			Chosen: api.RouteCandidate{
				Geometry:           [][2]float64{{77.2167, 28.6315}, {77.2295, 28.6129}},
				DistanceM:          1650,
				EtaMinutes:         21,
				AverageSafetyScore: 74,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/trips", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			_ = json.NewEncoder(w).Encode(map[string]string{"trip_id": "t-1"})
		default:
			_ = json.NewEncoder(w).Encode(map[string][]api.Trip{"trips": {{ID: "t-1"}}})
		}
	})
	mux.HandleFunc("/api/trips/summary", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.TripSummary{TotalTrips: 1, TotalKm: 1.65})
	})
	mux.HandleFunc("/api/alerts", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]api.Alert{
			"alerts": {{Message: "dim streetlights", Severity: "low"}},
		})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	backend := newBackendStub(t)
	cfg := config.Config{ServerPort: ":0", BackendURL: backend.URL}
	client := api.NewClient(backend.URL, 0)
	return NewServer(cfg, client, storage.NewFileStore(t.TempDir()), nil)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*http.Response, []byte) {
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
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, _ := doJSON(t, s, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestPlanAndLogTripAcrossPackages(t *testing.T) {
	s := newTestServer(t)

	resp, raw := doJSON(t, s, http.MethodPost, "/session/user-1/plan", map[string]any{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("plan status %d: %s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, s, http.MethodPost, "/session/user-1/trip", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("trip status %d: %s", resp.StatusCode, raw)
	}
	var trip api.Trip
	if err := json.Unmarshal(raw, &trip); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if trip.ID != "t-1" || trip.DistanceKm != 1.650 {
		t.Fatalf("unexpected trip: %+v", trip)
	}

	// LogTrip refreshed the history cache through the same History instance
	resp, raw = doJSON(t, s, http.MethodGet, "/trips/user-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status %d", resp.StatusCode)
	}
	var out struct {
		Trips []api.Trip `json:"trips"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Trips) != 1 {
		t.Fatalf("expected cached trip after logging, got %+v", out.Trips)
	}
}

func TestBookmarkAppliedToSession(t *testing.T) {
	s := newTestServer(t)

	resp, raw := doJSON(t, s, http.MethodPost, "/bookmarks/", map[string]any{
		"name":  "Night route home",
		"start": map[string]float64{"lat": 28.7, "lon": 77.1},
		"end":   map[string]float64{"lat": 28.5, "lon": 77.3},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("bookmark status %d: %s", resp.StatusCode, raw)
	}
	var bm struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &bm); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp, raw = doJSON(t, s, http.MethodPost, "/session/user-1/bookmark/"+bm.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("apply status %d: %s", resp.StatusCode, raw)
	}
	var snap struct {
		Selection struct {
			Start struct {
				Lat float64 `json:"lat"`
			} `json:"start"`
		} `json:"selection"`
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Selection.Start.Lat != 28.7 {
		t.Fatalf("expected bookmark start applied, got %+v", snap)
	}
}

func TestSafetyProxyWired(t *testing.T) {
	s := newTestServer(t)

	resp, raw := doJSON(t, s, http.MethodGet, "/safety/alerts?lat=28.63&lon=77.21", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, raw)
	}
	var out struct {
		Alerts []api.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Alerts) != 1 {
		t.Fatalf("expected proxied alert, got %+v", out.Alerts)
	}
}
