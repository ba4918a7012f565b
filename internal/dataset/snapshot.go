// Package dataset holds the derived player tables served to readers.
package dataset

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

// Population names accepted by Snapshot.Population.
const (
	PopulationNBA      = "nba"
	PopulationCurrent  = "current"
	PopulationNonNBA   = "non_nba"
	PopulationAll      = "all"
	PopulationCombined = "combined"
)

// ErrUnknownPopulation is returned for an unrecognized population name.
var ErrUnknownPopulation = errors.New("unknown population")

// Snapshot is an immutable set of derived tables. Readers must not modify
// the rows.
type Snapshot struct {
	Career    []*metrics.CareerRow
	Current   []*metrics.CareerRow
	All       []*metrics.CareerRow
	RunIDs    map[string]string
	DerivedAt time.Time

	combined []*metrics.CareerRow
	nonNBA   []*metrics.CareerRow
	index    map[string]map[metrics.PlayerKey]*metrics.CareerRow
}

// NewSnapshot builds a snapshot from derived rows. The slices are copied.
func NewSnapshot(career, current, all []metrics.CareerRow) *Snapshot {
	s := &Snapshot{
		Career:    pointers(career),
		Current:   pointers(current),
		All:       pointers(all),
		RunIDs:    make(map[string]string),
		DerivedAt: time.Now(),
	}

	careerKeys := make(map[metrics.PlayerKey]struct{}, len(s.Career))
	for _, r := range s.Career {
		careerKeys[r.Key] = struct{}{}
	}

	// Career rows take precedence over current-season rows for the same key.
	s.combined = append(s.combined, s.Career...)
	for _, r := range s.Current {
		if _, ok := careerKeys[r.Key]; !ok {
			s.combined = append(s.combined, r)
		}
	}

	for _, r := range s.All {
		if _, ok := careerKeys[r.Key]; !ok {
			s.nonNBA = append(s.nonNBA, r)
		}
	}

	s.index = make(map[string]map[metrics.PlayerKey]*metrics.CareerRow)
	for _, name := range Populations() {
		rows, _ := s.Population(name)
		idx := make(map[metrics.PlayerKey]*metrics.CareerRow, len(rows))
		for _, r := range rows {
			if _, ok := idx[r.Key]; !ok {
				idx[r.Key] = r
			}
		}
		s.index[name] = idx
	}

	return s
}

func pointers(rows []metrics.CareerRow) []*metrics.CareerRow {
	out := make([]*metrics.CareerRow, len(rows))
	for i := range rows {
		r := rows[i]
		out[i] = &r
	}
	return out
}

// Populations lists the population names in display order.
func Populations() []string {
	return []string{PopulationNBA, PopulationCurrent, PopulationNonNBA, PopulationAll, PopulationCombined}
}

// Population returns the rows of the named population.
func (s *Snapshot) Population(name string) ([]*metrics.CareerRow, error) {
	switch name {
	case PopulationNBA:
		return s.Career, nil
	case PopulationCurrent:
		return s.Current, nil
	case PopulationNonNBA:
		return s.nonNBA, nil
	case PopulationAll:
		return s.All, nil
	case PopulationCombined:
		return s.combined, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPopulation, name)
	}
}

// Find returns the row for key in the named population.
func (s *Snapshot) Find(population string, key metrics.PlayerKey) (*metrics.CareerRow, bool) {
	idx, ok := s.index[population]
	if !ok {
		return nil, false
	}
	r, ok := idx[key]
	return r, ok
}

// IsCurrentOnly reports whether key is a current-season player with no
// career row.
func (s *Snapshot) IsCurrentOnly(key metrics.PlayerKey) bool {
	if _, ok := s.Find(PopulationNBA, key); ok {
		return false
	}
	_, ok := s.Find(PopulationCurrent, key)
	return ok
}

// Summary is a count of rows per population.
type Summary struct {
	Populations map[string]int    `json:"populations"`
	RunIDs      map[string]string `json:"run_ids"`
	DerivedAt   time.Time         `json:"derived_at"`
}

// Summary reports the snapshot's size.
func (s *Snapshot) Summary() Summary {
	counts := make(map[string]int)
	for _, name := range Populations() {
		rows, _ := s.Population(name)
		counts[name] = len(rows)
	}
	return Summary{Populations: counts, RunIDs: s.RunIDs, DerivedAt: s.DerivedAt}
}

// Holder publishes the current snapshot to concurrent readers. Reloads
// replace the snapshot as a whole.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates a holder with an initial snapshot, which may be nil.
func NewHolder(s *Snapshot) *Holder {
	h := &Holder{}
	if s != nil {
		h.current.Store(s)
	}
	return h
}

// Load returns the current snapshot, or an empty one before the first Store.
func (h *Holder) Load() *Snapshot {
	if s := h.current.Load(); s != nil {
		return s
	}
	return NewSnapshot(nil, nil, nil)
}

// Store replaces the current snapshot.
func (h *Holder) Store(s *Snapshot) {
	h.current.Store(s)
}
