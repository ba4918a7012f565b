package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

func row(name string, c metrics.Counts, height float64) *metrics.CareerRow {
	r := &metrics.CareerRow{Key: metrics.NewPlayerKey(name), Player: name, Counts: c}
	r.Recompute()
	if height > 0 {
		r.Height = metrics.Of(height)
	}
	return r
}

func testPopulation() Population {
	return Population{Name: "test", Rows: []*metrics.CareerRow{
		row("Slasher", metrics.Counts{RimMade: 120, RimMiss: 60, RimAst: 40, MidMade: 10, MidMiss: 20, MidAst: 5, ThreeMade: 5, ThreeMiss: 20, ThreeAst: 4, DunkMade: 30, DunkMiss: 2}, 78),
		row("Slasher Two", metrics.Counts{RimMade: 110, RimMiss: 58, RimAst: 42, MidMade: 12, MidMiss: 22, MidAst: 6, ThreeMade: 6, ThreeMiss: 21, ThreeAst: 5, DunkMade: 28, DunkMiss: 3}, 78),
		row("Shooter", metrics.Counts{RimMade: 20, RimMiss: 15, RimAst: 10, MidMade: 30, MidMiss: 40, MidAst: 20, ThreeMade: 90, ThreeMiss: 150, ThreeAst: 80, DunkMade: 1}, 74),
		row("Big", metrics.Counts{RimMade: 150, RimMiss: 50, RimAst: 120, MidMade: 5, MidMiss: 10, MidAst: 4, ThreeMade: 1, ThreeMiss: 3, ThreeAst: 1, DunkMade: 70, DunkMiss: 5}, 84),
		row("Mid Guy", metrics.Counts{RimMade: 40, RimMiss: 35, RimAst: 15, MidMade: 80, MidMiss: 90, MidAst: 30, ThreeMade: 20, ThreeMiss: 40, ThreeAst: 15, DunkMade: 3}, 76),
		// No height: drops out of the default population.
		row("No Height", metrics.Counts{RimMade: 10, RimMiss: 10, RimAst: 5, MidMade: 10, MidMiss: 10, MidAst: 5, ThreeMade: 10, ThreeMiss: 10, ThreeAst: 5}, 0),
	}}
}

func TestRank_NearestNeighbour(t *testing.T) {
	matches, err := Rank(testPopulation(), "slasher", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, matches, 4)

	assert.Equal(t, metrics.PlayerKey("slasher two"), matches[0].Key)
	for i, m := range matches {
		assert.NotEqual(t, metrics.PlayerKey("slasher"), m.Key)
		assert.NotEqual(t, metrics.PlayerKey("no height"), m.Key)
		assert.GreaterOrEqual(t, m.Similarity, -1.0)
		assert.LessOrEqual(t, m.Similarity, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, matches[i-1].Similarity, m.Similarity)
		}
	}
}

func TestRank_Deterministic(t *testing.T) {
	first, err := Rank(testPopulation(), "shooter", DefaultOptions())
	require.NoError(t, err)

	pop := testPopulation()
	for i, j := 0, len(pop.Rows)-1; i < j; i, j = i+1, j-1 {
		pop.Rows[i], pop.Rows[j] = pop.Rows[j], pop.Rows[i]
	}
	second, err := Rank(pop, "shooter", DefaultOptions())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Key, second[i].Key)
		assert.InDelta(t, first[i].Similarity, second[i].Similarity, 1e-12)
	}
}

func TestPair_SelfIsOne(t *testing.T) {
	s, err := Pair(testPopulation(), "big", "big", DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s, 1e-9)
}

func TestRank_IdenticalProfileScoresOne(t *testing.T) {
	pop := testPopulation()
	twin := *pop.Rows[2]
	twin.Key = "shooter twin"
	twin.Player = "Shooter Twin"
	pop.Rows = append(pop.Rows, &twin)

	matches, err := Rank(pop, "shooter", DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, metrics.PlayerKey("shooter twin"), matches[0].Key)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
}

func TestRank_ConstantFeatureDoesNotChangeOrder(t *testing.T) {
	pop := testPopulation()
	for _, r := range pop.Rows {
		r.Height = metrics.Of(80)
	}

	base := Options{Features: []string{metrics.ColRimFreq, metrics.ColThreeFreq, metrics.ColMidAssistedPct, metrics.ColRimAtt}}
	withConstant := Options{Features: append(append([]string(nil), base.Features...), metrics.ColHeight)}

	a, err := Rank(pop, "mid guy", base)
	require.NoError(t, err)
	b, err := Rank(pop, "mid guy", withConstant)
	require.NoError(t, err)

	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].Key, b[i].Key)
		assert.InDelta(t, a[i].Similarity, b[i].Similarity, 1e-9)
	}
}

func TestRank_EmptyPopulation(t *testing.T) {
	matches, err := Rank(Population{Name: "empty"}, "anyone", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRank_QueryMissingFeature(t *testing.T) {
	_, err := Rank(testPopulation(), "no height", DefaultOptions())
	assert.True(t, errors.Is(err, ErrNotSearchable))
}

func TestRank_UnknownFeature(t *testing.T) {
	_, err := Rank(testPopulation(), "big", Options{Features: []string{"Nope%"}})
	assert.Error(t, err)

	_, err = Rank(testPopulation(), "big", Options{})
	assert.Error(t, err)
}

func TestSearchable(t *testing.T) {
	rows, err := Searchable(testPopulation(), DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-1, 0}), 1e-12)
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func rimAndHeight(name string, rimAtt, height float64) *metrics.CareerRow {
	return row(name, metrics.Counts{RimMade: rimAtt}, height)
}

func TestRank_Weights(t *testing.T) {
	pop := Population{Name: "weights", Rows: []*metrics.CareerRow{
		rimAndHeight("Query", 100, 80),
		rimAndHeight("Volume", 95, 72),
		rimAndHeight("Tall", 60, 79),
		rimAndHeight("Small", 20, 74),
		rimAndHeight("Long", 40, 84),
	}}
	features := []string{metrics.ColRimAtt, metrics.ColHeight}

	tests := []struct {
		name    string
		weights map[string]int
		top     metrics.PlayerKey
	}{
		{"equal weights", nil, "volume"},
		{"height doubled", map[string]int{metrics.ColHeight: 2}, "tall"},
		{"non-positive weight counts once", map[string]int{metrics.ColHeight: 0}, "volume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := Rank(pop, "query", Options{Features: features, Weights: tt.weights})
			require.NoError(t, err)
			require.Len(t, matches, 4)
			assert.Equal(t, tt.top, matches[0].Key)
		})
	}
}

func TestDefaultOptions_WeightedColumns(t *testing.T) {
	opts := DefaultOptions()
	cols, err := opts.columns()
	require.NoError(t, err)
	assert.Len(t, DefaultFeatures, 15)
	assert.Len(t, cols, 19)

	rows, err := Searchable(testPopulation(), opts)
	require.NoError(t, err)
	vectors := standardize(rows, cols)
	require.NotEmpty(t, vectors)
	for _, v := range vectors {
		assert.Len(t, v, 19)
	}
}

func TestRankAgainst_FitsPopulationOnly(t *testing.T) {
	pop := Population{Name: "drafted", Rows: []*metrics.CareerRow{
		rimAndHeight("Low", 10, 80),
		rimAndHeight("High", 30, 80),
	}}
	opts := Options{Features: []string{metrics.ColRimAtt, metrics.ColHeight}}

	// RimAtt is fitted to mean 20 and std 10, so the query sits at 1.
	matches, err := RankAgainst(pop, rimAndHeight("Prospect", 30, 80), opts)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, metrics.PlayerKey("high"), matches[0].Key)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
	assert.InDelta(t, -1.0, matches[1].Similarity, 1e-9)

	// Height is constant in the population, so the query is only centered on it.
	matches, err = RankAgainst(pop, rimAndHeight("Prospect", 30, 84), opts)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, metrics.PlayerKey("high"), matches[0].Key)
	assert.InDelta(t, 1/math.Sqrt(17), matches[0].Similarity, 1e-9)
	assert.InDelta(t, -1/math.Sqrt(17), matches[1].Similarity, 1e-9)
}

func TestRankAgainst_SkipsQueryKey(t *testing.T) {
	pop := testPopulation()
	query := pop.Rows[0]

	withSelf, err := RankAgainst(pop, query, DefaultOptions())
	require.NoError(t, err)
	pop.Rows = pop.Rows[1:]
	without, err := RankAgainst(pop, query, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, withSelf, 4)
	require.Len(t, without, len(withSelf))
	for i := range without {
		assert.NotEqual(t, query.Key, withSelf[i].Key)
		assert.Equal(t, without[i].Key, withSelf[i].Key)
		assert.InDelta(t, without[i].Similarity, withSelf[i].Similarity, 1e-12)
	}
}

func TestRankAgainst_QueryNotSearchable(t *testing.T) {
	pop := testPopulation()

	_, err := RankAgainst(pop, nil, DefaultOptions())
	assert.True(t, errors.Is(err, ErrNotSearchable))

	_, err = RankAgainst(pop, row("Unmeasured", metrics.Counts{RimMade: 10}, 0), DefaultOptions())
	assert.True(t, errors.Is(err, ErrNotSearchable))

	matches, err := RankAgainst(Population{Name: "empty"}, pop.Rows[0], DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, matches)
}
