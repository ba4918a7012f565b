package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/draymottishaw/college-assisted-explorer/internal/cache"
	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
	"github.com/draymottishaw/college-assisted-explorer/internal/similarity"
)

// Cache stores JSON results by key. *cache.RedisCache satisfies it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Flush(ctx context.Context) (int, error)
}

// SimilarRequest selects the comparison population and result size.
type SimilarRequest struct {
	// Population defaults to the combined set.
	Population string
	TopN       int
}

// SimilarResult is a ranked list of players similar to one query player.
// CurrentOnly is set when a current-season player was compared against the
// drafted set only.
type SimilarResult struct {
	Player      *metrics.CareerRow `json:"player"`
	Population  string             `json:"population"`
	CurrentOnly bool               `json:"current_only"`
	Candidates  int                `json:"candidates"`
	Matches     []similarity.Match `json:"matches"`
	RunID       string             `json:"run_id,omitempty"`
}

// SimilarityService ranks players by shot-profile similarity.
type SimilarityService struct {
	holder   *dataset.Holder
	cache    Cache
	cacheTTL time.Duration
	topN     int
	opts     similarity.Options
	log      *logrus.Entry
}

// NewSimilarityService creates a new similarity service. c may be nil.
func NewSimilarityService(holder *dataset.Holder, c Cache, cacheTTL time.Duration, topN int, log *logrus.Entry) *SimilarityService {
	if topN <= 0 {
		topN = similarity.DefaultTopN
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SimilarityService{
		holder:   holder,
		cache:    c,
		cacheTTL: cacheTTL,
		topN:     topN,
		opts:     similarity.DefaultOptions(),
		log:      log,
	}
}

// Similar ranks the population against key. A player who only appears in
// the current-season table is projected onto the standardization of the
// drafted players and ranked against them, regardless of the requested
// population.
func (s *SimilarityService) Similar(ctx context.Context, key metrics.PlayerKey, req SimilarRequest) (*SimilarResult, error) {
	if req.Population == "" {
		req.Population = dataset.PopulationCombined
	}
	if req.TopN <= 0 {
		req.TopN = s.topN
	}

	snap := s.holder.Load()
	rows, err := snap.Population(req.Population)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	query, ok := snap.Find(req.Population, key)
	currentOnly := false
	if snap.IsCurrentOnly(key) {
		query, ok = snap.Find(dataset.PopulationCurrent, key)
		currentOnly = true
		rows = snap.Career
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrPlayerNotFound, key, req.Population)
	}

	cacheKey := fmt.Sprintf("similar:%s:%s:%t:%d", req.Population, key, currentOnly, req.TopN)
	if s.cache != nil {
		var cached SimilarResult
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && cached.RunID == runKey(snap) {
			cached.Player = query
			return &cached, nil
		} else if err != nil && !errors.Is(err, cache.ErrMiss) {
			s.log.WithError(err).Warn("similarity cache read failed")
		}
	}

	pop := similarity.Population{Name: req.Population, Rows: rows}
	var matches []similarity.Match
	if currentOnly {
		matches, err = similarity.RankAgainst(pop, query, s.opts)
	} else {
		matches, err = similarity.Rank(pop, key, s.opts)
	}
	if err != nil {
		return nil, err
	}
	candidates := len(matches)
	if len(matches) > req.TopN {
		matches = matches[:req.TopN]
	}

	result := &SimilarResult{
		Player:      query,
		Population:  req.Population,
		CurrentOnly: currentOnly,
		Candidates:  candidates,
		Matches:     matches,
		RunID:       runKey(snap),
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.log.WithError(err).Warn("similarity cache write failed")
		}
	}
	return result, nil
}

// Invalidate drops every cached result.
func (s *SimilarityService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	n, err := s.cache.Flush(ctx)
	if err != nil {
		return fmt.Errorf("flushing similarity cache: %w", err)
	}
	s.log.WithField("keys", n).Debug("similarity cache flushed")
	return nil
}

// runKey identifies the snapshot a cached result was computed from.
func runKey(snap *dataset.Snapshot) string {
	return snap.DerivedAt.UTC().Format(time.RFC3339Nano)
}
