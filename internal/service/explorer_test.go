package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

func newExplorer() *ExplorerService {
	return NewExplorerService(testHolder(), 2010, 2026)
}

func TestExplorer_DefaultQuery(t *testing.T) {
	res, err := newExplorer().Query(context.Background(), ExplorerQuery{})
	require.NoError(t, err)

	assert.Equal(t, dataset.PopulationNBA, res.Dataset)
	assert.Equal(t, DefaultSortBy, res.SortBy)
	assert.Equal(t, DefaultPageSize, res.PageSize)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, []string{"Bravo Big", "Charlie Wing", "Alpha Guard", "Echo Guard", "Delta Nomad"}, names(res.Rows))
}

func TestExplorer_AscendingKeepsMissingLast(t *testing.T) {
	res, err := newExplorer().Query(context.Background(), ExplorerQuery{Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Echo Guard", "Alpha Guard", "Charlie Wing", "Bravo Big", "Delta Nomad"}, names(res.Rows))
}

func TestExplorer_SortByPlayerAndYear(t *testing.T) {
	svc := newExplorer()

	res, err := svc.Query(context.Background(), ExplorerQuery{SortBy: SortPlayer, Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha Guard", "Bravo Big", "Charlie Wing", "Delta Nomad", "Echo Guard"}, names(res.Rows))

	res, err = svc.Query(context.Background(), ExplorerQuery{SortBy: SortYear, Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bravo Big", "Echo Guard", "Alpha Guard", "Delta Nomad", "Charlie Wing"}, names(res.Rows))
}

func TestExplorer_Filters(t *testing.T) {
	tests := []struct {
		name  string
		query ExplorerQuery
		want  []string
	}{
		{
			name:  "unknown role only",
			query: ExplorerQuery{Roles: []string{UnknownOption}},
			want:  []string{"Delta Nomad"},
		},
		{
			name:  "role plus unknown",
			query: ExplorerQuery{Roles: []string{"Guard", "Unknown"}, SortBy: SortPlayer, Ascending: true},
			want:  []string{"Alpha Guard", "Delta Nomad", "Echo Guard"},
		},
		{
			name:  "class year is normalized",
			query: ExplorerQuery{Years: []string{"jr"}},
			want:  []string{"Alpha Guard"},
		},
		{
			name:  "unknown class year",
			query: ExplorerQuery{Years: []string{UnknownOption}},
			want:  []string{"Charlie Wing"},
		},
		{
			name:  "draft year window",
			query: ExplorerQuery{MinSeason: 2020, MaxSeason: 2023, SortBy: SortPlayer, Ascending: true},
			want:  []string{"Alpha Guard", "Charlie Wing", "Echo Guard"},
		},
		{
			name:  "inverted window collapses to min",
			query: ExplorerQuery{MinSeason: 2016, MaxSeason: 2012},
			want:  []string{"Bravo Big"},
		},
		{
			name:  "name search is case insensitive",
			query: ExplorerQuery{Search: "GUARD", SortBy: SortPlayer, Ascending: true},
			want:  []string{"Alpha Guard", "Echo Guard"},
		},
		{
			name:  "minimum volume",
			query: ExplorerQuery{MinTotalAtt: 100, SortBy: SortPlayer, Ascending: true},
			want:  []string{"Alpha Guard", "Charlie Wing"},
		},
		{
			name:  "minimum three attempts",
			query: ExplorerQuery{MinThreeAtt: 50, SortBy: SortPlayer, Ascending: true},
			want:  []string{"Alpha Guard", "Charlie Wing"},
		},
		{
			name: "percentage range keeps missing values",
			query: ExplorerQuery{
				Ranges: map[string]Range{metrics.ColThreeFGPct: {Min: 0.35, Max: 1}},
				SortBy: SortPlayer, Ascending: true,
			},
			want: []string{"Alpha Guard", "Charlie Wing", "Delta Nomad"},
		},
		{
			name:  "current season ignores draft window",
			query: ExplorerQuery{Dataset: dataset.PopulationCurrent, MinSeason: 2010, MaxSeason: 2012},
			want:  []string{"Fresh Prospect"},
		},
		{
			name:  "non drafted players",
			query: ExplorerQuery{Dataset: dataset.PopulationNonNBA, SortBy: SortPlayer, Ascending: true},
			want:  []string{"Foxtrot Walkon", "Fresh Prospect"},
		},
	}

	svc := newExplorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Query(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(res.Rows))
		})
	}
}

func TestExplorer_SeasonWindowMissingLastSeason(t *testing.T) {
	svc := newExplorer()
	noLast := &metrics.CareerRow{FirstSeason: 2026}
	noSeasons := &metrics.CareerRow{}

	assert.True(t, svc.inSeasonWindow(noLast, 2024, 2026))
	assert.True(t, svc.inSeasonWindow(noLast, 2010, 2020))
	assert.False(t, svc.inSeasonWindow(noSeasons, 2024, 2026))
	assert.True(t, svc.inSeasonWindow(noSeasons, 2010, 2020))
	assert.False(t, svc.inSeasonWindow(&metrics.CareerRow{FirstSeason: 2020}, 2024, 2026))
}

func TestExplorer_InvalidQueries(t *testing.T) {
	svc := newExplorer()
	queries := []ExplorerQuery{
		{PageSize: 30},
		{SortBy: "Nope"},
		{Dataset: "bogus"},
		{Ranges: map[string]Range{metrics.ColRimAtt: {Min: 0, Max: 1}}},
		{Ranges: map[string]Range{metrics.ColMidFGPct: {Min: 0.6, Max: 0.2}}},
	}
	for i, q := range queries {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			_, err := svc.Query(context.Background(), q)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestExplorer_Pagination(t *testing.T) {
	var specs []rowSpec
	for i := 0; i < 230; i++ {
		specs = append(specs, rowSpec{
			name: fmt.Sprintf("Player %03d", i), first: 2015, last: 2016,
			counts: metrics.Counts{RimMade: float64(i), RimMiss: 10},
		})
	}
	holder := dataset.NewHolder(dataset.NewSnapshot(build(specs...), nil, nil))
	svc := NewExplorerService(holder, 2010, 2026)

	res, err := svc.Query(context.Background(), ExplorerQuery{PageSize: 100, Page: 3, SortBy: SortPlayer, Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, 230, res.Total)
	assert.Equal(t, 3, res.Pages)
	require.Len(t, res.Rows, 30)
	assert.Equal(t, "Player 200", res.Rows[0].Player)

	res, err = svc.Query(context.Background(), ExplorerQuery{PageSize: 100, Page: 9})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page)
}

func TestExplorer_RoleBands(t *testing.T) {
	res, err := newExplorer().Query(context.Background(), ExplorerQuery{SortBy: SortPlayer, Ascending: true})
	require.NoError(t, err)
	byName := make(map[string]ExplorerRow)
	for _, r := range res.Rows {
		byName[r.Player] = r
	}

	// Guards average (0.65 + 0.2333) / 2 on Total_Assisted%.
	assert.Equal(t, metrics.BandExcellent, byName["Alpha Guard"].Bands[metrics.ColTotalAssistedPct])
	assert.Equal(t, metrics.BandBad, byName["Echo Guard"].Bands[metrics.ColTotalAssistedPct])
	assert.Equal(t, metrics.BandAverage, byName["Charlie Wing"].Bands[metrics.ColTotalAssistedPct])
	assert.Nil(t, byName["Delta Nomad"].Bands)
}

func TestExplorer_FilterOptions(t *testing.T) {
	opts, err := newExplorer().Filters(dataset.PopulationNBA)
	require.NoError(t, err)

	assert.Equal(t, []string{"Big", "Guard", "Wing", UnknownOption}, opts.Roles)
	assert.Equal(t, []string{"Fr", "So", "Jr", "Sr", UnknownOption}, opts.Years)
	assert.Equal(t, PageSizes, opts.PageSizes)
	assert.Contains(t, opts.SortColumns, metrics.ColTotalAssistedPct)
	assert.Contains(t, opts.SortColumns, metrics.ColTotalAtt)
	assert.NotContains(t, opts.SortColumns, metrics.ColRimMade)
	assert.Equal(t, 2010, opts.MinSeason)
	assert.Equal(t, 2026, opts.MaxSeason)

	_, err = newExplorer().Filters("bogus")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
