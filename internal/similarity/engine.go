// Package similarity ranks players by cosine similarity of standardized
// shooting profiles within a named comparison population.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

// DefaultTopN is how many matches callers show by default.
const DefaultTopN = 28

// ErrNotSearchable is returned when the query player is not in the population
// or is missing one of the selected features.
var ErrNotSearchable = errors.New("player not searchable with the selected features")

// DefaultFeatures is the feature set used when a request names none.
var DefaultFeatures = []string{
	metrics.ColRimFreq,
	metrics.ColMidFreq,
	metrics.ColThreeFreq,
	metrics.ColTwoPtFreq,
	metrics.ColRimAtt,
	metrics.ColMidAtt,
	metrics.ColThreeAtt,
	metrics.ColTotalAssistedPct,
	metrics.ColMidAssistedPct,
	metrics.ColThreeAssistedPct,
	metrics.ColTwoPtAssistedPct,
	metrics.ColNonDunkAssistedPct,
	metrics.ColThreeFGPct,
	metrics.ColTotalRimPct,
	metrics.ColHeight,
}

// DefaultWeights doubles shot volume and height.
var DefaultWeights = map[string]int{
	metrics.ColRimAtt:   2,
	metrics.ColMidAtt:   2,
	metrics.ColThreeAtt: 2,
	metrics.ColHeight:   2,
}

// Options selects the features and their weights. A weight of n repeats the
// feature's column n times before standardization; missing or non-positive
// weights count as 1.
type Options struct {
	Features []string       `json:"features"`
	Weights  map[string]int `json:"weights,omitempty"`
}

// DefaultOptions returns the default feature set and weights.
func DefaultOptions() Options {
	weights := make(map[string]int, len(DefaultWeights))
	for k, v := range DefaultWeights {
		weights[k] = v
	}
	return Options{
		Features: append([]string(nil), DefaultFeatures...),
		Weights:  weights,
	}
}

func (o Options) weight(feature string) int {
	if w, ok := o.Weights[feature]; ok && w > 0 {
		return w
	}
	return 1
}

func (o Options) columns() ([]metrics.Column, error) {
	if len(o.Features) == 0 {
		return nil, errors.New("no features selected")
	}
	var cols []metrics.Column
	for _, name := range o.Features {
		col, err := metrics.LookupColumn(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < o.weight(name); i++ {
			cols = append(cols, col)
		}
	}
	return cols, nil
}

// Population is a named set of rows that defines both the normalization
// basis and the candidates. Scores are only comparable within one population
// and one Options value.
type Population struct {
	Name string
	Rows []*metrics.CareerRow
}

// Match is one ranked result.
type Match struct {
	Key        metrics.PlayerKey `json:"player_lower"`
	Player     string            `json:"player"`
	Team       string            `json:"team"`
	Role       metrics.Text      `json:"role"`
	Year       metrics.Text      `json:"year"`
	Similarity float64           `json:"similarity"`
}

// Searchable returns the rows of pop with every selected feature present.
func Searchable(pop Population, opts Options) ([]*metrics.CareerRow, error) {
	cols, err := opts.columns()
	if err != nil {
		return nil, err
	}
	return complete(pop.Rows, cols), nil
}

func complete(rows []*metrics.CareerRow, cols []metrics.Column) []*metrics.CareerRow {
	kept := make([]*metrics.CareerRow, 0, len(rows))
	for _, row := range rows {
		ok := true
		for _, c := range cols {
			if _, present := c.Get(row); !present {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, row)
		}
	}
	return kept
}

// Rank orders every other row of pop by cosine similarity to query.
//
// Rows missing any selected feature are dropped first. Each feature column is
// then standardized to zero mean and unit population variance over the
// remaining rows; a constant column becomes all zeros. The query player is
// left out of the result. Ties are broken by key.
func Rank(pop Population, query metrics.PlayerKey, opts Options) ([]Match, error) {
	cols, err := opts.columns()
	if err != nil {
		return nil, err
	}

	rows := complete(pop.Rows, cols)
	if len(rows) == 0 {
		return []Match{}, nil
	}

	qi := -1
	for i, row := range rows {
		if row.Key == query {
			qi = i
			break
		}
	}
	if qi < 0 {
		return nil, fmt.Errorf("%w: %q in population %q", ErrNotSearchable, query, pop.Name)
	}

	vectors := standardize(rows, cols)
	q := vectors[qi]

	matches := make([]Match, 0, len(rows)-1)
	for i, row := range rows {
		if row.Key == query {
			continue
		}
		matches = append(matches, newMatch(row, Cosine(q, vectors[i])))
	}

	sortMatches(matches)
	return matches, nil
}

// RankAgainst orders the rows of pop by cosine similarity to a query player
// who is not part of the population. The standardization is fitted on pop
// alone and the query is projected onto it, so the query never shifts the
// basis. A population row with the query's key is left out.
func RankAgainst(pop Population, query *metrics.CareerRow, opts Options) ([]Match, error) {
	cols, err := opts.columns()
	if err != nil {
		return nil, err
	}
	if query == nil || len(complete([]*metrics.CareerRow{query}, cols)) == 0 {
		return nil, fmt.Errorf("%w: query for population %q", ErrNotSearchable, pop.Name)
	}

	rows := make([]*metrics.CareerRow, 0, len(pop.Rows))
	for _, row := range complete(pop.Rows, cols) {
		if row.Key != query.Key {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return []Match{}, nil
	}

	b := fit(rows, cols)
	vectors := b.standardize(rows, cols)
	q := b.project(query, cols)

	matches := make([]Match, 0, len(rows))
	for i, row := range rows {
		matches = append(matches, newMatch(row, Cosine(q, vectors[i])))
	}
	sortMatches(matches)
	return matches, nil
}

func newMatch(row *metrics.CareerRow, score float64) Match {
	return Match{
		Key:        row.Key,
		Player:     row.Player,
		Team:       row.Team,
		Role:       row.Role,
		Year:       row.Year,
		Similarity: score,
	}
}

// sortMatches orders by descending similarity, ties by key.
func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Key < matches[j].Key
	})
}

// Pair returns the similarity of players a and b within pop. Either player
// may be the same as the other.
func Pair(pop Population, a, b metrics.PlayerKey, opts Options) (float64, error) {
	cols, err := opts.columns()
	if err != nil {
		return 0, err
	}

	rows := complete(pop.Rows, cols)
	ai, bi := -1, -1
	for i, row := range rows {
		if row.Key == a && ai < 0 {
			ai = i
		}
		if row.Key == b && bi < 0 {
			bi = i
		}
	}
	if ai < 0 {
		return 0, fmt.Errorf("%w: %q in population %q", ErrNotSearchable, a, pop.Name)
	}
	if bi < 0 {
		return 0, fmt.Errorf("%w: %q in population %q", ErrNotSearchable, b, pop.Name)
	}

	vectors := standardize(rows, cols)
	return Cosine(vectors[ai], vectors[bi]), nil
}

// basis holds the per-column statistics a population is standardized with.
// A constant column keeps scale 1, so a row from outside the population is
// only centered on it.
type basis struct {
	mean     []float64
	scale    []float64
	constant []bool
}

func fit(rows []*metrics.CareerRow, cols []metrics.Column) basis {
	b := basis{
		mean:     make([]float64, len(cols)),
		scale:    make([]float64, len(cols)),
		constant: make([]bool, len(cols)),
	}
	column := make([]float64, len(rows))
	for j, c := range cols {
		for i, row := range rows {
			column[i], _ = c.Get(row)
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		b.mean[j] = mean
		b.scale[j] = std
		if std == 0 || math.IsNaN(std) {
			b.scale[j] = 1
			b.constant[j] = true
		}
	}
	return b
}

// project standardizes one row, which need not belong to the fitted rows.
func (b basis) project(row *metrics.CareerRow, cols []metrics.Column) []float64 {
	v := make([]float64, len(cols))
	for j, c := range cols {
		x, _ := c.Get(row)
		v[j] = (x - b.mean[j]) / b.scale[j]
	}
	return v
}

// standardize returns one row vector per row, with every column scaled to
// zero mean and unit population variance. Constant columns are all zeros.
func standardize(rows []*metrics.CareerRow, cols []metrics.Column) [][]float64 {
	return fit(rows, cols).standardize(rows, cols)
}

func (b basis) standardize(rows []*metrics.CareerRow, cols []metrics.Column) [][]float64 {
	vectors := make([][]float64, len(rows))
	for i, row := range rows {
		vectors[i] = b.project(row, cols)
		for j, constant := range b.constant {
			if constant {
				vectors[i][j] = 0
			}
		}
	}
	return vectors
}

// Cosine returns the cosine similarity of a and b, or 0 when either has zero
// length. The result is clamped to [-1, 1].
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	s := floats.Dot(a, b) / (na * nb)
	return math.Max(-1, math.Min(1, s))
}
