package metrics

import "fmt"

// Column names shared by the CSV output, the explorer filters and the
// similarity feature lists.
const (
	ColRimMade   = "RimMade"
	ColRimMiss   = "RimMiss"
	ColRimAst    = "RimAst"
	ColMidMade   = "MidMade"
	ColMidMiss   = "MidMiss"
	ColMidAst    = "MidAst"
	ColThreeMade = "ThreeMade"
	ColThreeMiss = "ThreeMiss"
	ColThreeAst  = "ThreeAst"
	ColDunkMade  = "DunkMade"
	ColDunkMiss  = "DunkMiss"
	ColDunkAst   = "DunkAst"

	ColNDRimMade          = "ND_RimMade"
	ColNDRimMiss          = "ND_RimMiss"
	ColNDRimAtt           = "ND_RimAtt"
	ColNonDunkRimPct      = "NonDunk_Rim%"
	ColNonDunkAssistedPct = "NonDunk_Assisted%"
	ColRimAtt             = "RimAtt"
	ColTotalRimPct        = "Total_Rim%"
	ColTotalAssistedRim   = "Total_Assisted_Rim%"
	ColMidAtt             = "Mid_Att"
	ColMidFGPct           = "Mid_FG%"
	ColMidAssistedPct     = "Mid_Assisted%"
	ColTwoPtAtt           = "TwoPt_Att"
	ColTwoPtFGPct         = "TwoPt_FG%"
	ColTwoPtAssistedPct   = "TwoPt_Assisted%"
	ColThreeAtt           = "Three_Att"
	ColThreeFGPct         = "Three_FG%"
	ColThreeAssistedPct   = "Three_Assisted%"
	ColTotalAssistedPct   = "Total_Assisted%"
	ColTotalAtt           = "Total_Att"
	ColRimFreq            = "Rim_Freq"
	ColMidFreq            = "Mid_Freq"
	ColThreeFreq          = "Three_Freq"
	ColTwoPtFreq          = "TwoPt_Freq"
	ColDunkAtt            = "DunkAtt"
	ColDunkFreq           = "Dunk_Freq"
	ColDunkFGPct          = "Dunk_FG%"

	ColFirstSeason = "First_Season"
	ColLastSeason  = "Last_Season"
	ColHeight      = "Height"
)

// Column describes one numeric column of a CareerRow.
type Column struct {
	Name string
	// Percent marks ratio columns shown as percentages and banded against
	// role averages.
	Percent bool
	get     func(r *CareerRow) (float64, bool)
}

// Get reads the column from a row.
func (c Column) Get(r *CareerRow) (float64, bool) {
	return c.get(r)
}

func count(f func(r *CareerRow) float64) func(r *CareerRow) (float64, bool) {
	return func(r *CareerRow) (float64, bool) { return f(r), true }
}

func ratio(f func(r *CareerRow) Ratio) func(r *CareerRow) (float64, bool) {
	return func(r *CareerRow) (float64, bool) { return f(r).Get() }
}

func season(f func(r *CareerRow) int) func(r *CareerRow) (float64, bool) {
	return func(r *CareerRow) (float64, bool) {
		v := f(r)
		if v == 0 {
			return 0, false
		}
		return float64(v), true
	}
}

// Columns lists every numeric column in output order.
var Columns = []Column{
	{Name: ColRimMade, get: count(func(r *CareerRow) float64 { return r.RimMade })},
	{Name: ColRimMiss, get: count(func(r *CareerRow) float64 { return r.RimMiss })},
	{Name: ColRimAst, get: count(func(r *CareerRow) float64 { return r.RimAst })},
	{Name: ColMidMade, get: count(func(r *CareerRow) float64 { return r.MidMade })},
	{Name: ColMidMiss, get: count(func(r *CareerRow) float64 { return r.MidMiss })},
	{Name: ColMidAst, get: count(func(r *CareerRow) float64 { return r.MidAst })},
	{Name: ColThreeMade, get: count(func(r *CareerRow) float64 { return r.ThreeMade })},
	{Name: ColThreeMiss, get: count(func(r *CareerRow) float64 { return r.ThreeMiss })},
	{Name: ColThreeAst, get: count(func(r *CareerRow) float64 { return r.ThreeAst })},
	{Name: ColDunkMade, get: count(func(r *CareerRow) float64 { return r.DunkMade })},
	{Name: ColDunkMiss, get: count(func(r *CareerRow) float64 { return r.DunkMiss })},
	{Name: ColDunkAst, get: count(func(r *CareerRow) float64 { return r.DunkAst })},
	{Name: ColFirstSeason, get: season(func(r *CareerRow) int { return r.FirstSeason })},
	{Name: ColLastSeason, get: season(func(r *CareerRow) int { return r.LastSeason })},

	{Name: ColNDRimMade, get: count(func(r *CareerRow) float64 { return r.NDRimMade })},
	{Name: ColNDRimMiss, get: count(func(r *CareerRow) float64 { return r.NDRimMiss })},
	{Name: ColNDRimAtt, get: count(func(r *CareerRow) float64 { return r.NDRimAtt })},
	{Name: ColNonDunkRimPct, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.NonDunkRimPct })},
	{Name: ColNonDunkAssistedPct, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.NonDunkAssistedPct })},
	{Name: ColRimAtt, get: count(func(r *CareerRow) float64 { return r.RimAtt })},
	{Name: ColTotalRimPct, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.TotalRimPct })},
	{Name: ColTotalAssistedRim, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.TotalAssistedRim })},
	{Name: ColMidAtt, get: count(func(r *CareerRow) float64 { return r.MidAtt })},
	{Name: ColMidFGPct, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.MidFGPct })},
	{Name: ColMidAssistedPct, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.MidAssistedPct })},
	{Name: ColTwoPtAtt, get: count(func(r *CareerRow) float64 { return r.TwoPtAtt })},
	{Name: ColTwoPtFGPct, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.TwoPtFGPct })},
	{Name: ColTwoPtAssistedPct, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.TwoPtAssistedPct })},
	{Name: ColThreeAtt, get: count(func(r *CareerRow) float64 { return r.ThreeAtt })},
	{Name: ColThreeFGPct, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.ThreeFGPct })},
	{Name: ColThreeAssistedPct, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.ThreeAssistedPct })},
	{Name: ColTotalAssistedPct, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.TotalAssistedPct })},
	{Name: ColTotalAtt, get: count(func(r *CareerRow) float64 { return r.TotalAtt })},
	{Name: ColRimFreq, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.RimFreq })},
	{Name: ColMidFreq, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.MidFreq })},
	{Name: ColThreeFreq, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.ThreeFreq })},
	{Name: ColTwoPtFreq, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.TwoPtFreq })},
	{Name: ColDunkAtt, get: count(func(r *CareerRow) float64 { return r.DunkAtt })},
	{Name: ColDunkFreq, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.DunkFreq })},
	{Name: ColDunkFGPct, Percent: true, get: ratio(func(r *CareerRow) Ratio { return r.DunkFGPct })},

	{Name: ColHeight, get: ratio(func(r *CareerRow) Ratio { return r.Height })},
}

var columnIndex = func() map[string]Column {
	idx := make(map[string]Column, len(Columns))
	for _, c := range Columns {
		idx[c.Name] = c
	}
	return idx
}()

// LookupColumn returns the named column.
func LookupColumn(name string) (Column, error) {
	c, ok := columnIndex[name]
	if !ok {
		return Column{}, fmt.Errorf("unknown column %q", name)
	}
	return c, nil
}

// PercentColumns returns the ratio columns in output order.
func PercentColumns() []Column {
	var cols []Column
	for _, c := range Columns {
		if c.Percent {
			cols = append(cols, c)
		}
	}
	return cols
}

// Value reads a named numeric column. Unknown columns report missing.
func (r *CareerRow) Value(name string) (float64, bool) {
	c, ok := columnIndex[name]
	if !ok {
		return 0, false
	}
	return c.get(r)
}
