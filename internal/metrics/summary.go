package metrics

import (
	"gonum.org/v1/gonum/stat"
)

// GroupAverages holds the mean of one column per role, per class year and
// overall. Missing values are ignored; a group with no values has no entry.
type GroupAverages struct {
	Column  string           `json:"column"`
	ByRole  map[string]Ratio `json:"by_role"`
	ByYear  map[string]Ratio `json:"by_year"`
	Overall Ratio            `json:"overall"`
}

// Role returns the average for the row's role, missing when the row has no
// role or the role has no values.
func (g GroupAverages) Role(row *CareerRow) Ratio {
	if !row.Role.Valid {
		return Missing()
	}
	return g.ByRole[row.Role.String]
}

// Year returns the average for the row's class year.
func (g GroupAverages) Year(row *CareerRow) Ratio {
	if !row.Year.Valid {
		return Missing()
	}
	return g.ByYear[NormalizeClassYear(row.Year.String)]
}

// Averages computes GroupAverages for col over rows.
func Averages(rows []*CareerRow, col Column) GroupAverages {
	byRole := make(map[string][]float64)
	byYear := make(map[string][]float64)
	var all []float64

	for _, row := range rows {
		v, ok := col.Get(row)
		if !ok {
			continue
		}
		all = append(all, v)
		if row.Role.Valid {
			byRole[row.Role.String] = append(byRole[row.Role.String], v)
		}
		if row.Year.Valid {
			y := NormalizeClassYear(row.Year.String)
			byYear[y] = append(byYear[y], v)
		}
	}

	g := GroupAverages{
		Column:  col.Name,
		ByRole:  make(map[string]Ratio, len(byRole)),
		ByYear:  make(map[string]Ratio, len(byYear)),
		Overall: mean(all),
	}
	for role, vals := range byRole {
		g.ByRole[role] = mean(vals)
	}
	for year, vals := range byYear {
		g.ByYear[year] = mean(vals)
	}
	return g
}

func mean(vals []float64) Ratio {
	if len(vals) == 0 {
		return Missing()
	}
	return Of(stat.Mean(vals, nil))
}
