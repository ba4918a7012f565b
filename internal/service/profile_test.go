package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

func metricFor(t *testing.T, p *Profile, col string) MetricSummary {
	t.Helper()
	for _, m := range p.Metrics {
		if m.Column == col {
			return m
		}
	}
	t.Fatalf("no metric %s", col)
	return MetricSummary{}
}

func TestProfile_GroupAverages(t *testing.T) {
	svc := NewProfileService(testHolder())

	p, err := svc.Profile("alpha guard", dataset.PopulationNBA)
	require.NoError(t, err)
	assert.Equal(t, "Alpha Guard", p.Player.Player)
	assert.Len(t, p.Metrics, len(metrics.PercentColumns()))

	m := metricFor(t, p, metrics.ColTotalAssistedPct)
	assert.InDelta(t, 0.65, m.Value.Float64, 1e-9)
	assert.InDelta(t, (0.65+7.0/30)/2, m.RoleAvg.Float64, 1e-9)
	assert.InDelta(t, 0.65, m.YearAvg.Float64, 1e-9)
	assert.InDelta(t, (49.0/65+28.0/43+0.65+7.0/30)/4, m.Overall.Float64, 1e-9)
	assert.Equal(t, metrics.BandExcellent, m.Band)
}

func TestProfile_MissingRole(t *testing.T) {
	svc := NewProfileService(testHolder())

	p, err := svc.Profile("delta nomad", dataset.PopulationNBA)
	require.NoError(t, err)

	m := metricFor(t, p, metrics.ColTotalAssistedPct)
	assert.False(t, m.Value.Valid)
	assert.False(t, m.RoleAvg.Valid)
	assert.Equal(t, metrics.BandNone, m.Band)
}

func TestProfile_NotFound(t *testing.T) {
	svc := NewProfileService(testHolder())

	_, err := svc.Profile("fresh prospect", dataset.PopulationNBA)
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	p, err := svc.Profile("fresh prospect", "")
	require.NoError(t, err)
	assert.Equal(t, dataset.PopulationCombined, p.Dataset)

	_, err = svc.Profile("alpha guard", "bogus")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestCompare_Radar(t *testing.T) {
	svc := NewProfileService(testHolder())

	cmp, err := svc.Compare("alpha guard", "fresh prospect")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Guard", cmp.A.Player)
	assert.Equal(t, "Fresh Prospect", cmp.B.Player)
	require.Len(t, cmp.Radar, 15)

	var height RadarPoint
	for _, p := range cmp.Radar {
		if p.Metric == metrics.ColHeight {
			height = p
		}
	}
	// Combined heights span 74..83.
	assert.InDelta(t, 1.0/9, height.ANorm.Float64, 1e-9)
	assert.InDelta(t, 1.0/9, height.BNorm.Float64, 1e-9)

	require.True(t, cmp.Similarity.Valid)
	assert.InDelta(t, 0.385, cmp.Similarity.Float64, 0.01)
}

func TestCompare_IncompletePlayer(t *testing.T) {
	svc := NewProfileService(testHolder())

	cmp, err := svc.Compare("alpha guard", "delta nomad")
	require.NoError(t, err)
	assert.False(t, cmp.Similarity.Valid)

	_, err = svc.Compare("alpha guard", "foxtrot walkon")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestScale(t *testing.T) {
	assert.InDelta(t, 0.5, scale(metrics.Of(3), 3, 3).Float64, 1e-9)
	assert.InDelta(t, 0.25, scale(metrics.Of(2), 1, 5).Float64, 1e-9)
	assert.False(t, scale(metrics.Missing(), 1, 5).Valid)
}
