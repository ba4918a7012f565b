package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

// Explorer defaults.
const (
	DefaultPageSize = 250
	DefaultSortBy   = metrics.ColTotalAssistedPct

	// UnknownOption selects rows with no role or class year.
	UnknownOption = "Unknown"

	SortPlayer = "Player"
	SortYear   = "Year"
	SortRole   = "Role"
)

// PageSizes are the accepted explorer page sizes.
var PageSizes = []int{100, 250, 500, 1000}

var (
	// ErrInvalidQuery is returned for malformed explorer parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrPlayerNotFound is returned when a player is not in the requested population.
	ErrPlayerNotFound = errors.New("player not found")
)

// Range bounds a percentage column, inclusive, on the 0..1 scale.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ExplorerQuery selects, filters, sorts and pages one population.
type ExplorerQuery struct {
	Dataset string

	// Draft-year window on Last_Season. Zero leaves a bound open.
	MinSeason int
	MaxSeason int

	Roles  []string
	Years  []string
	Search string

	MinTotalAtt float64
	MinRimAtt   float64
	MinMidAtt   float64
	MinThreeAtt float64

	// Ranges keeps rows whose value is inside the range or missing.
	Ranges map[string]Range

	SortBy    string
	Ascending bool

	Page     int
	PageSize int
}

// ExplorerRow is one table row with each percentage cell graded against the
// average for the row's role.
type ExplorerRow struct {
	*metrics.CareerRow
	Bands map[string]metrics.Band `json:"bands,omitempty"`
}

// ExplorerResult is one page of explorer rows.
type ExplorerResult struct {
	Dataset  string        `json:"dataset"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Pages    int           `json:"pages"`
	SortBy   string        `json:"sort_by"`
	Rows     []ExplorerRow `json:"rows"`
}

// FilterOptions lists the values the explorer filters accept.
type FilterOptions struct {
	Datasets    []string `json:"datasets"`
	Roles       []string `json:"roles"`
	Years       []string `json:"years"`
	SortColumns []string `json:"sort_columns"`
	PageSizes   []int    `json:"page_sizes"`
	MinSeason   int      `json:"min_season"`
	MaxSeason   int      `json:"max_season"`
}

// ExplorerService answers table queries over the current snapshot.
type ExplorerService struct {
	holder        *dataset.Holder
	firstSeason   int
	currentSeason int
}

// NewExplorerService creates a new explorer service
func NewExplorerService(holder *dataset.Holder, firstSeason, currentSeason int) *ExplorerService {
	return &ExplorerService{
		holder:        holder,
		firstSeason:   firstSeason,
		currentSeason: currentSeason,
	}
}

// SortColumns lists the accepted sort keys in display order.
func SortColumns() []string {
	cols := []string{SortPlayer, SortYear, SortRole}
	for _, c := range metrics.Columns {
		if c.Percent || isVolume(c.Name) {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

func isVolume(name string) bool {
	switch name {
	case metrics.ColTotalAtt, metrics.ColRimAtt, metrics.ColMidAtt, metrics.ColThreeAtt:
		return true
	}
	return false
}

// Query runs q against the current snapshot.
func (s *ExplorerService) Query(ctx context.Context, q ExplorerQuery) (*ExplorerResult, error) {
	if err := s.normalize(&q); err != nil {
		return nil, err
	}

	snap := s.holder.Load()
	base, err := snap.Population(q.Dataset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	filtered := s.filter(base, q)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortRows(filtered, q.SortBy, q.Ascending)
	bands := bandRows(filtered)

	total := len(filtered)
	pages := (total + q.PageSize - 1) / q.PageSize
	if pages == 0 {
		pages = 1
	}
	if q.Page > pages {
		q.Page = pages
	}
	start := (q.Page - 1) * q.PageSize
	end := start + q.PageSize
	if end > total {
		end = total
	}

	rows := make([]ExplorerRow, 0, end-start)
	for _, r := range filtered[start:end] {
		rows = append(rows, ExplorerRow{CareerRow: r, Bands: bands(r)})
	}

	return &ExplorerResult{
		Dataset:  q.Dataset,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
		Pages:    pages,
		SortBy:   q.SortBy,
		Rows:     rows,
	}, nil
}

func (s *ExplorerService) normalize(q *ExplorerQuery) error {
	if q.Dataset == "" {
		q.Dataset = dataset.PopulationNBA
	}
	if q.MinSeason != 0 && q.MaxSeason != 0 && q.MinSeason > q.MaxSeason {
		q.MaxSeason = q.MinSeason
	}

	if q.SortBy == "" {
		q.SortBy = DefaultSortBy
	}
	switch q.SortBy {
	case SortPlayer, SortYear, SortRole:
	default:
		if _, err := metrics.LookupColumn(q.SortBy); err != nil {
			return fmt.Errorf("%w: sort: %v", ErrInvalidQuery, err)
		}
	}

	for col, rng := range q.Ranges {
		c, err := metrics.LookupColumn(col)
		if err != nil {
			return fmt.Errorf("%w: range: %v", ErrInvalidQuery, err)
		}
		if !c.Percent {
			return fmt.Errorf("%w: range on non-percentage column %q", ErrInvalidQuery, col)
		}
		if rng.Min > rng.Max {
			return fmt.Errorf("%w: range %q has min above max", ErrInvalidQuery, col)
		}
	}

	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	valid := false
	for _, n := range PageSizes {
		if q.PageSize == n {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: page size %d", ErrInvalidQuery, q.PageSize)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return nil
}

func (s *ExplorerService) filter(base []*metrics.CareerRow, q ExplorerQuery) []*metrics.CareerRow {
	roles := newOptionSet(q.Roles, func(v string) string { return v })
	years := newOptionSet(q.Years, metrics.NormalizeClassYear)
	search := strings.ToLower(strings.TrimSpace(q.Search))
	seasonWindow := q.Dataset != dataset.PopulationCurrent && (q.MinSeason != 0 || q.MaxSeason != 0)

	out := make([]*metrics.CareerRow, 0, len(base))
	for _, r := range base {
		if !roles.match(r.Role) || !years.match(r.Year) {
			continue
		}
		if seasonWindow && !s.inSeasonWindow(r, q.MinSeason, q.MaxSeason) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Player), search) {
			continue
		}
		if r.TotalAtt < q.MinTotalAtt || r.RimAtt < q.MinRimAtt ||
			r.MidAtt < q.MinMidAtt || r.ThreeAtt < q.MinThreeAtt {
			continue
		}
		if !inRanges(r, q.Ranges) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// inSeasonWindow applies the draft-year window to Last_Season. Rows without
// a Last_Season are kept, except that a window ending at the current season
// keeps them only when First_Season falls inside it.
func (s *ExplorerService) inSeasonWindow(r *metrics.CareerRow, lo, hi int) bool {
	within := func(season int) bool {
		return (lo == 0 || season >= lo) && (hi == 0 || season <= hi)
	}
	if r.LastSeason != 0 {
		return within(r.LastSeason)
	}
	if hi == s.currentSeason {
		return r.FirstSeason != 0 && within(r.FirstSeason)
	}
	return true
}

func inRanges(r *metrics.CareerRow, ranges map[string]Range) bool {
	for col, rng := range ranges {
		v, ok := r.Value(col)
		if !ok {
			continue
		}
		if v < rng.Min || v > rng.Max {
			return false
		}
	}
	return true
}

// optionSet is a multiselect filter. An empty set matches everything;
// UnknownOption matches missing values.
type optionSet struct {
	values  map[string]struct{}
	unknown bool
	norm    func(string) string
}

func newOptionSet(selected []string, norm func(string) string) optionSet {
	set := optionSet{norm: norm}
	for _, v := range selected {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.EqualFold(v, UnknownOption) {
			set.unknown = true
			continue
		}
		if set.values == nil {
			set.values = make(map[string]struct{})
		}
		set.values[norm(v)] = struct{}{}
	}
	return set
}

func (o optionSet) match(t metrics.Text) bool {
	if o.values == nil && !o.unknown {
		return true
	}
	if !t.Valid {
		return o.unknown
	}
	v := o.norm(t.String)
	if v == UnknownOption {
		return o.unknown
	}
	_, ok := o.values[v]
	return ok
}

// sortRows orders rows by a column with missing values last in either
// direction. Equal values keep key order.
func sortRows(rows []*metrics.CareerRow, by string, asc bool) {
	value := func(r *metrics.CareerRow) (string, float64, bool) {
		switch by {
		case SortPlayer:
			return strings.ToLower(r.Player), 0, r.Player != ""
		case SortRole:
			return r.Role.String, 0, r.Role.Valid
		case SortYear:
			if !r.Year.Valid {
				return "", 0, false
			}
			return "", float64(metrics.ClassYearOrder(metrics.NormalizeClassYear(r.Year.String))), true
		default:
			v, ok := r.Value(by)
			return "", v, ok
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		si, vi, oki := value(rows[i])
		sj, vj, okj := value(rows[j])
		if oki != okj {
			return oki
		}
		if !oki {
			return rows[i].Key < rows[j].Key
		}
		if si != sj {
			if asc {
				return si < sj
			}
			return si > sj
		}
		if vi != vj {
			if asc {
				return vi < vj
			}
			return vi > vj
		}
		return rows[i].Key < rows[j].Key
	})
}

// bandRows computes role averages for every percentage column over rows and
// returns a grader for individual rows.
func bandRows(rows []*metrics.CareerRow) func(*metrics.CareerRow) map[string]metrics.Band {
	cols := metrics.PercentColumns()
	avgs := make([]metrics.GroupAverages, len(cols))
	for i, c := range cols {
		avgs[i] = metrics.Averages(rows, c)
	}

	return func(r *metrics.CareerRow) map[string]metrics.Band {
		if !r.Role.Valid {
			return nil
		}
		bands := make(map[string]metrics.Band, len(cols))
		for i, c := range cols {
			v, ok := c.Get(r)
			if !ok {
				continue
			}
			if b := metrics.Classify(metrics.Of(v), avgs[i].Role(r)); b != metrics.BandNone {
				bands[c.Name] = b
			}
		}
		return bands
	}
}

// Filters lists the roles and class years present in a population.
func (s *ExplorerService) Filters(population string) (*FilterOptions, error) {
	if population == "" {
		population = dataset.PopulationNBA
	}
	rows, err := s.holder.Load().Population(population)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	roleSet := make(map[string]struct{})
	yearSet := make(map[string]struct{})
	for _, r := range rows {
		if r.Role.Valid {
			roleSet[r.Role.String] = struct{}{}
		}
		if r.Year.Valid {
			if y := metrics.NormalizeClassYear(r.Year.String); y != metrics.Unknown {
				yearSet[y] = struct{}{}
			}
		}
	}

	roles := make([]string, 0, len(roleSet)+1)
	for role := range roleSet {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	years := make([]string, 0, len(yearSet)+1)
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool {
		return metrics.ClassYearOrder(years[i]) < metrics.ClassYearOrder(years[j])
	})

	return &FilterOptions{
		Datasets:    dataset.Populations(),
		Roles:       append(roles, UnknownOption),
		Years:       append(years, UnknownOption),
		SortColumns: SortColumns(),
		PageSizes:   PageSizes,
		MinSeason:   s.firstSeason,
		MaxSeason:   s.currentSeason,
	}, nil
}
