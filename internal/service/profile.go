package service

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
	"github.com/draymottishaw/college-assisted-explorer/internal/similarity"
)

// MetricSummary is one percentage column of a player profile.
type MetricSummary struct {
	Column  string        `json:"column"`
	Value   metrics.Ratio `json:"value"`
	RoleAvg metrics.Ratio `json:"role_avg"`
	YearAvg metrics.Ratio `json:"year_avg"`
	Overall metrics.Ratio `json:"overall_avg"`
	Band    metrics.Band  `json:"band,omitempty"`
}

// Profile is a player's row with group averages for context.
type Profile struct {
	Dataset string             `json:"dataset"`
	Player  *metrics.CareerRow `json:"player"`
	Metrics []MetricSummary    `json:"metrics"`
}

// RadarPoint is one axis of a two-player comparison. Normalized values are
// min-max scaled over the combined population.
type RadarPoint struct {
	Metric string        `json:"metric"`
	A      metrics.Ratio `json:"a"`
	B      metrics.Ratio `json:"b"`
	ANorm  metrics.Ratio `json:"a_norm"`
	BNorm  metrics.Ratio `json:"b_norm"`
}

// Comparison is a side-by-side view of two players.
type Comparison struct {
	A          *metrics.CareerRow `json:"a"`
	B          *metrics.CareerRow `json:"b"`
	Radar      []RadarPoint       `json:"radar"`
	Similarity metrics.Ratio      `json:"similarity"`
}

// ProfileService builds single-player and two-player views.
type ProfileService struct {
	holder *dataset.Holder
	opts   similarity.Options
}

// NewProfileService creates a new profile service
func NewProfileService(holder *dataset.Holder) *ProfileService {
	return &ProfileService{
		holder: holder,
		opts:   similarity.DefaultOptions(),
	}
}

// Profile returns key's row in population with role, class-year and overall
// averages of every percentage column over that population.
func (s *ProfileService) Profile(key metrics.PlayerKey, population string) (*Profile, error) {
	if population == "" {
		population = dataset.PopulationCombined
	}
	snap := s.holder.Load()
	rows, err := snap.Population(population)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	row, ok := snap.Find(population, key)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrPlayerNotFound, key, population)
	}

	cols := metrics.PercentColumns()
	summaries := make([]MetricSummary, 0, len(cols))
	for _, c := range cols {
		avg := metrics.Averages(rows, c)
		val := metrics.Missing()
		if v, ok := c.Get(row); ok {
			val = metrics.Of(v)
		}
		roleAvg := avg.Role(row)
		summaries = append(summaries, MetricSummary{
			Column:  c.Name,
			Value:   val,
			RoleAvg: roleAvg,
			YearAvg: avg.Year(row),
			Overall: avg.Overall,
			Band:    metrics.Classify(val, roleAvg),
		})
	}

	return &Profile{Dataset: population, Player: row, Metrics: summaries}, nil
}

// Compare lines up two players from the combined population on the
// similarity features.
func (s *ProfileService) Compare(a, b metrics.PlayerKey) (*Comparison, error) {
	snap := s.holder.Load()
	rowA, ok := snap.Find(dataset.PopulationCombined, a)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, a)
	}
	rowB, ok := snap.Find(dataset.PopulationCombined, b)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, b)
	}

	combined, _ := snap.Population(dataset.PopulationCombined)
	radar := make([]RadarPoint, 0, len(s.opts.Features))
	for _, feature := range s.opts.Features {
		col, err := metrics.LookupColumn(feature)
		if err != nil {
			return nil, err
		}
		lo, hi, ok := columnBounds(combined, col)
		point := RadarPoint{
			Metric: feature,
			A:      valueOf(col, rowA),
			B:      valueOf(col, rowB),
			ANorm:  metrics.Missing(),
			BNorm:  metrics.Missing(),
		}
		if ok {
			point.ANorm = scale(point.A, lo, hi)
			point.BNorm = scale(point.B, lo, hi)
		}
		radar = append(radar, point)
	}

	cmp := &Comparison{A: rowA, B: rowB, Radar: radar, Similarity: metrics.Missing()}
	pop := similarity.Population{Name: dataset.PopulationCombined, Rows: combined}
	score, err := similarity.Pair(pop, a, b, s.opts)
	switch {
	case err == nil:
		cmp.Similarity = metrics.Of(score)
	case errors.Is(err, similarity.ErrNotSearchable):
		// One of the players lacks a feature; the radar is still useful.
	default:
		return nil, fmt.Errorf("scoring pair: %w", err)
	}
	return cmp, nil
}

func valueOf(col metrics.Column, row *metrics.CareerRow) metrics.Ratio {
	if v, ok := col.Get(row); ok {
		return metrics.Of(v)
	}
	return metrics.Missing()
}

func columnBounds(rows []*metrics.CareerRow, col metrics.Column) (float64, float64, bool) {
	vals := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, ok := col.Get(r); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, 0, false
	}
	return floats.Min(vals), floats.Max(vals), true
}

// scale maps v onto [0,1] between lo and hi; a constant column maps to 0.5.
func scale(v metrics.Ratio, lo, hi float64) metrics.Ratio {
	x, ok := v.Get()
	if !ok {
		return metrics.Missing()
	}
	if hi-lo <= 0 {
		return metrics.Of(0.5)
	}
	return metrics.Of((x - lo) / (hi - lo))
}
