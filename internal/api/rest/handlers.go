package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
	"github.com/draymottishaw/college-assisted-explorer/internal/service"
	"github.com/draymottishaw/college-assisted-explorer/internal/similarity"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handler contains dependencies for HTTP handlers
type Handler struct {
	explorer *service.ExplorerService
	profiles *service.ProfileService
	similar  *service.SimilarityService
	datasets *service.DatasetService
	checks   map[string]HealthCheck
	version  string
}

// NewHandler creates a new handler. checks may be nil.
func NewHandler(
	explorer *service.ExplorerService,
	profiles *service.ProfileService,
	similar *service.SimilarityService,
	datasets *service.DatasetService,
	checks map[string]HealthCheck,
	version string,
) *Handler {
	return &Handler{
		explorer: explorer,
		profiles: profiles,
		similar:  similar,
		datasets: datasets,
		checks:   checks,
		version:  version,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			components[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	snap := h.datasets.Snapshot()
	respondJSON(w, code, map[string]interface{}{
		"status":     status,
		"service":    "college-assisted-explorer",
		"version":    h.version,
		"players":    len(snap.Career),
		"derived_at": snap.DerivedAt,
		"components": components,
	})
}

// ListPlayers handles GET /api/v1/players
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	q, err := parseExplorerQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	result, err := h.explorer.Query(r.Context(), q)
	if err != nil {
		respondServiceError(w, "Failed to query players", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetFilters handles GET /api/v1/players/filters
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.explorer.Filters(r.URL.Query().Get("dataset"))
	if err != nil {
		respondServiceError(w, "Failed to list filters", err)
		return
	}

	respondJSON(w, http.StatusOK, opts)
}

// GetPlayer handles GET /api/v1/players/{name}
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	key := metrics.NewPlayerKey(mux.Vars(r)["name"])

	profile, err := h.profiles.Profile(key, r.URL.Query().Get("dataset"))
	if err != nil {
		respondServiceError(w, "Failed to fetch player", err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// GetSimilarPlayers handles GET /api/v1/players/{name}/similar
func (h *Handler) GetSimilarPlayers(w http.ResponseWriter, r *http.Request) {
	key := metrics.NewPlayerKey(mux.Vars(r)["name"])

	req := service.SimilarRequest{Population: r.URL.Query().Get("population")}
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		top, err := strconv.Atoi(topStr)
		if err != nil || top <= 0 || top > 500 {
			respondError(w, http.StatusBadRequest, "Invalid top (1-500)", err)
			return
		}
		req.TopN = top
	}

	result, err := h.similar.Similar(r.Context(), key, req)
	if err != nil {
		respondServiceError(w, "Failed to rank similar players", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ComparePlayers handles GET /api/v1/compare?a=&b=
func (h *Handler) ComparePlayers(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		respondError(w, http.StatusBadRequest, "Query parameters 'a' and 'b' are required", nil)
		return
	}

	cmp, err := h.profiles.Compare(metrics.NewPlayerKey(a), metrics.NewPlayerKey(b))
	if err != nil {
		respondServiceError(w, "Failed to compare players", err)
		return
	}

	respondJSON(w, http.StatusOK, cmp)
}

// GetDataset handles GET /api/v1/dataset
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.datasets.Snapshot().Summary())
}

// ReloadDataset handles POST /api/v1/dataset/reload
func (h *Handler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	result, err := h.datasets.Reload(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to reload dataset", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// parseExplorerQuery reads explorer filters from the URL. Percentage ranges
// are given as range=<column>:<min>:<max> on a 0-100 scale.
func parseExplorerQuery(r *http.Request) (service.ExplorerQuery, error) {
	v := r.URL.Query()
	q := service.ExplorerQuery{
		Dataset: v.Get("dataset"),
		Search:  v.Get("search"),
		SortBy:  v.Get("sort"),
		Roles:   splitList(v["role"]),
		Years:   splitList(v["year"]),
	}

	switch strings.ToLower(v.Get("order")) {
	case "", "desc":
	case "asc":
		q.Ascending = true
	default:
		return q, errors.New("order must be asc or desc")
	}

	ints := map[string]*int{
		"min_season": &q.MinSeason,
		"max_season": &q.MaxSeason,
		"page":       &q.Page,
		"page_size":  &q.PageSize,
	}
	for name, dst := range ints {
		if s := v.Get(name); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return q, fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		"min_total_att": &q.MinTotalAtt,
		"min_rim_att":   &q.MinRimAtt,
		"min_mid_att":   &q.MinMidAtt,
		"min_three_att": &q.MinThreeAtt,
	}
	for name, dst := range floats {
		if s := v.Get(name); s != "" {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return q, fmt.Errorf("%s: %w", name, err)
			}
			*dst = f
		}
	}

	for _, raw := range v["range"] {
		parts := strings.Split(raw, ":")
		if len(parts) != 3 {
			return q, fmt.Errorf("range %q: want column:min:max", raw)
		}
		lo, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return q, fmt.Errorf("range %q: %w", raw, err)
		}
		hi, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return q, fmt.Errorf("range %q: %w", raw, err)
		}
		if q.Ranges == nil {
			q.Ranges = make(map[string]service.Range)
		}
		q.Ranges[parts[0]] = service.Range{Min: lo / 100, Max: hi / 100}
	}

	return q, nil
}

// splitList accepts both repeated parameters and comma-separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// respondServiceError maps service errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, service.ErrPlayerNotFound):
		respondError(w, http.StatusNotFound, message, err)
	case errors.Is(err, service.ErrInvalidQuery):
		respondError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, similarity.ErrNotSearchable):
		respondError(w, http.StatusUnprocessableEntity, message, err)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
