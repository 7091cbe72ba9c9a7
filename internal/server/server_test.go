package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/itinerary/internal/config"
	"github.com/rcliao/itinerary/internal/dataset"
	"github.com/rcliao/itinerary/internal/planner"
	"github.com/rcliao/itinerary/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer serves the demo dataset from a temporary SQLite database.
func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ds, err := dataset.Demo()
	require.NoError(t, err)
	_, err = st.ImportDataset(context.Background(), ds)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	orch := planner.New(st, planner.WithClusterSeed(7))
	return New(st, planner.NewPool(orch, 2, 10*time.Second), cfg), st
}

func performRequest(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndRequestID(t *testing.T) {
	s, _ := newTestServer(t)

	w := performRequest(s, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "a request id is assigned")

	id := uuid.New().String()
	req := httptest.NewRequest("GET", "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader), "a valid caller id is kept")
}

func TestRules(t *testing.T) {
	s, _ := newTestServer(t)
	w := performRequest(s, "GET", "/v1/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(16), decode(t, w)["total"])
}

func TestExplore(t *testing.T) {
	s, _ := newTestServer(t)

	w := performRequest(s, "POST", "/v1/explore", map[string]interface{}{
		"start_attraction_id": 1,
		"max_distance_meters": 3000,
		"optimization_mode":   "distance",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode(t, w)["result"].(map[string]interface{})
	cands := res["candidates"].([]interface{})
	require.NotEmpty(t, cands)

	prev := 0.0
	for _, c := range cands {
		d := c.(map[string]interface{})["distance_from_start_meters"].(float64)
		assert.GreaterOrEqual(t, d, prev, "distance mode sorts nearest first")
		prev = d
	}

	w = performRequest(s, "POST", "/v1/explore", map[string]interface{}{"start_attraction_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(s, "POST", "/v1/explore", map[string]interface{}{"start_attraction_id": 1, "optimization_mode": "fastest"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPath(t *testing.T) {
	s, _ := newTestServer(t)

	w := performRequest(s, "POST", "/v1/path", map[string]interface{}{
		"start_attraction_id": 1,
		"end_attraction_id":   12,
		"optimization_mode":   "time",
		"user_profile_id":     1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	r := decode(t, w)
	assert.Equal(t, true, r["path_found"])
	stops := r["attractions"].([]interface{})
	assert.Equal(t, float64(1), stops[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(12), stops[len(stops)-1].(map[string]interface{})["id"])

	w = performRequest(s, "POST", "/v1/path", map[string]interface{}{
		"start_attraction_id": 1, "end_attraction_id": 2, "heuristic": "dijkstra",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(s, "POST", "/v1/path", map[string]interface{}{
		"start_attraction_id": 1, "end_attraction_id": 999,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(s, "POST", "/v1/path/compare", map[string]interface{}{
		"start_attraction_id": 1, "end_attraction_id": 12,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["comparisons"], 5)
}

func TestMultiStop(t *testing.T) {
	s, _ := newTestServer(t)

	w := performRequest(s, "POST", "/v1/multistop", map[string]interface{}{
		"start_attraction_id": 1,
		"waypoints":           []int64{3, 6, 7},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	r := decode(t, w)
	assert.Equal(t, true, r["path_found"])
	assert.Equal(t, float64(3), r["waypoints_visited"])

	w = performRequest(s, "POST", "/v1/multistop", map[string]interface{}{
		"start_attraction_id": 1,
		"waypoints":           []int64{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrichPersistsComputedProfile(t *testing.T) {
	s, st := newTestServer(t)

	w := performRequest(s, "POST", "/v1/profiles/1/enrich", map[string]interface{}{"trace": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["applied_rules"])

	p, err := st.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, p.ComputedProfile)

	w = performRequest(s, "POST", "/v1/profiles/42/enrich", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = performRequest(s, "POST", "/v1/profiles/abc/enrich", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidate(t *testing.T) {
	s, _ := newTestServer(t)

	w := performRequest(s, "POST", "/v1/itineraries/validate", map[string]interface{}{
		"user_profile_id": 1,
		"itinerary": map[string]interface{}{
			"attractions_count": 12,
			"total_cost":        0,
			"segments": []map[string]interface{}{
				{"from_attraction_id": 1, "to_attraction_id": 2, "distance_meters": 500, "travel_time_minutes": 600, "transport_mode": "walking"},
			},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	assert.Equal(t, true, out["is_valid"], "warnings do not invalidate")
	warnings := out["result"].(map[string]interface{})["warnings"].([]interface{})
	assert.Len(t, warnings, 2, "travel time and fatigue")
}

func TestGenerateAndFetch(t *testing.T) {
	s, _ := newTestServer(t)

	w := performRequest(s, "POST", "/v1/itineraries", map[string]interface{}{
		"user_profile_id":           1,
		"city_center_attraction_id": 1,
		"num_days":                  2,
		"start_date":                "2026-03-02T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decode(t, w)
	it := out["itinerary"].(map[string]interface{})
	id := it["id"].(string)
	require.NotEmpty(t, id)
	assert.Len(t, it["days"], 2)
	assert.Equal(t, float64(2), out["summary"].(map[string]interface{})["num_days"])

	w = performRequest(s, "GET", "/v1/itineraries/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode(t, w)["itinerary"].(map[string]interface{})["id"])

	w = performRequest(s, "GET", "/v1/itineraries/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(s, "POST", "/v1/itineraries", map[string]interface{}{
		"user_profile_id": 1, "city_center_attraction_id": 1, "num_days": 0, "start_date": "2026-03-02T00:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	performRequest(s, "GET", "/healthz", nil)

	w := performRequest(s, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "itinerary_http_requests_total")
}
