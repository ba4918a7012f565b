package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
	"github.com/draymottishaw/college-assisted-explorer/internal/derive"
	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
	"github.com/draymottishaw/college-assisted-explorer/internal/service"
)

func row(name, role, year string, last int, c metrics.Counts, height float64) metrics.CareerRow {
	r := metrics.CareerRow{
		Key:         metrics.NewPlayerKey(name),
		Player:      name,
		FirstSeason: last - 1,
		LastSeason:  last,
		Counts:      c,
		Role:        metrics.TextOf(role),
		Year:        metrics.TextOf(year),
		Height:      metrics.Of(height),
	}
	r.Recompute()
	return r
}

func testRouter(t *testing.T, checks map[string]HealthCheck) http.Handler {
	t.Helper()
	career := []metrics.CareerRow{
		row("Jane Doe", "Wing", "Jr", 2020, metrics.Counts{RimMade: 20, RimMiss: 10, RimAst: 8, MidMade: 5, MidMiss: 5, MidAst: 2, ThreeMade: 10, ThreeMiss: 20, ThreeAst: 9}, 78),
		row("Sam Hill", "Big", "Sr", 2018, metrics.Counts{RimMade: 40, RimMiss: 10, RimAst: 30, MidMade: 4, MidMiss: 8, MidAst: 3, ThreeMade: 2, ThreeMiss: 6, ThreeAst: 2}, 82),
		row("Lou Park", "Guard", "So", 2022, metrics.Counts{RimMade: 10, RimMiss: 12, RimAst: 2, MidMade: 12, MidMiss: 14, MidAst: 3, ThreeMade: 25, ThreeMiss: 40, ThreeAst: 10}, 74),
	}
	current := []metrics.CareerRow{
		row("New Kid", "Guard", "Fr", 2026, metrics.Counts{RimMade: 9, RimMiss: 11, RimAst: 3, MidMade: 10, MidMiss: 12, MidAst: 2, ThreeMade: 20, ThreeMiss: 35, ThreeAst: 9}, 75),
	}
	holder := dataset.NewHolder(dataset.NewSnapshot(career, current, nil))

	m := derive.DefaultManifest()
	m.DataDir = t.TempDir()
	datasets := service.NewDatasetService(derive.NewRunner(m), holder, service.DatasetOptions{}, nil)

	h := NewHandler(
		service.NewExplorerService(holder, 2010, 2026),
		service.NewProfileService(holder),
		service.NewSimilarityService(holder, nil, 0, 0, nil),
		datasets,
		checks,
		"test",
	)
	return NewRouter(h, nil)
}

func get(t *testing.T, router http.Handler, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestHealthCheck(t *testing.T) {
	rec, body := get(t, testRouter(t, nil), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(3), body["players"])

	checks := map[string]HealthCheck{
		"database": func(ctx context.Context) error { return errors.New("connection refused") },
	}
	rec, body = get(t, testRouter(t, checks), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
}

func TestListPlayers(t *testing.T) {
	router := testRouter(t, nil)

	rec, body := get(t, router, "/api/v1/players?sort=Player&order=asc&role=Wing,Big")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["total"])

	rows := body["rows"].([]interface{})
	require.Len(t, rows, 2)
	assert.Equal(t, "Jane Doe", rows[0].(map[string]interface{})["Player"])
	assert.Equal(t, "jane doe", rows[0].(map[string]interface{})["player_lower"])

	target := "/api/v1/players?range=" + url.QueryEscape("Three_FG%:35:100")
	rec, body = get(t, router, target)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["total"])
}

func TestListPlayers_BadRequest(t *testing.T) {
	router := testRouter(t, nil)

	for _, target := range []string{
		"/api/v1/players?page_size=7",
		"/api/v1/players?order=sideways",
		"/api/v1/players?min_season=abc",
		"/api/v1/players?range=Mid_FG%25",
		"/api/v1/players?sort=Nope",
	} {
		rec, body := get(t, router, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, body["error"], target)
	}
}

func TestGetFilters(t *testing.T) {
	rec, body := get(t, testRouter(t, nil), "/api/v1/players/filters")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"Big", "Guard", "Wing", "Unknown"}, body["roles"])
}

func TestGetPlayer(t *testing.T) {
	router := testRouter(t, nil)

	rec, body := get(t, router, "/api/v1/players/Jane%20Doe?dataset=nba")
	require.Equal(t, http.StatusOK, rec.Code)
	player := body["player"].(map[string]interface{})
	assert.Equal(t, "Jane Doe", player["Player"])

	rec, body = get(t, router, "/api/v1/players/Nobody")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(http.StatusNotFound), body["status"])
}

func TestGetSimilarPlayers(t *testing.T) {
	router := testRouter(t, nil)

	rec, body := get(t, router, "/api/v1/players/new%20kid/similar?top=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["current_only"])
	assert.Len(t, body["matches"], 2)

	rec, _ = get(t, router, "/api/v1/players/new%20kid/similar?top=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComparePlayers(t *testing.T) {
	router := testRouter(t, nil)

	rec, body := get(t, router, "/api/v1/compare?a=jane%20doe&b=New%20Kid")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["radar"], 15)

	rec, _ = get(t, router, "/api/v1/compare?a=jane%20doe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDatasetRoutes(t *testing.T) {
	router := testRouter(t, nil)

	rec, body := get(t, router, "/api/v1/dataset")
	require.Equal(t, http.StatusOK, rec.Code)
	pops := body["populations"].(map[string]interface{})
	assert.Equal(t, float64(4), pops[dataset.PopulationCombined])

	// The manifest points at an empty directory, so the reload fails and
	// the current snapshot stays in place.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dataset/reload", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusInternalServerError, res.Code)

	rec, _ = get(t, router, "/api/v1/dataset")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/players", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	testRouter(t, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
