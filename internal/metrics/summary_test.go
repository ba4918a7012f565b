package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverages(t *testing.T) {
	rows := []*CareerRow{
		{Role: TextOf("G"), Year: TextOf("Fr"), Derived: Derived{ThreeFGPct: Of(0.30)}},
		{Role: TextOf("G"), Year: TextOf("so"), Derived: Derived{ThreeFGPct: Of(0.40)}},
		{Role: TextOf("C"), Year: TextOf("Fr"), Derived: Derived{ThreeFGPct: Missing()}},
		{Derived: Derived{ThreeFGPct: Of(0.20)}},
	}
	col, err := LookupColumn(ColThreeFGPct)
	require.NoError(t, err)

	g := Averages(rows, col)

	v, ok := g.ByRole["G"].Get()
	require.True(t, ok)
	assert.InDelta(t, 0.35, v, 1e-12)

	_, ok = g.ByRole["C"].Get()
	assert.False(t, ok)

	v, ok = g.ByYear[Sophomore].Get()
	require.True(t, ok)
	assert.InDelta(t, 0.40, v, 1e-12)

	v, ok = g.Overall.Get()
	require.True(t, ok)
	assert.InDelta(t, 0.30, v, 1e-12)

	assert.False(t, g.Role(rows[3]).Valid)
	assert.True(t, g.Year(rows[1]).Valid)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		val, avg float64
		want     Band
	}{
		{0.20, 0.35, BandBad},
		{0.30, 0.35, BandBelow},
		{0.36, 0.35, BandAverage},
		{0.32, 0.35, BandAbove},
		{0.39, 0.35, BandAbove},
		{0.50, 0.35, BandExcellent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(Of(tt.val), Of(tt.avg)), "val=%v avg=%v", tt.val, tt.avg)
	}

	assert.Equal(t, BandNone, Classify(Missing(), Of(0.3)))
	assert.Equal(t, BandNone, Classify(Of(0.3), Of(0)))
	assert.Equal(t, BandNone, Classify(Of(0.3), Missing()))
}
