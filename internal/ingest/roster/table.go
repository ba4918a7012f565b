// Package roster reads CSV lookup tables keyed by player name: rosters,
// role/class listings and physical measurements.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

// ErrColumnNotFound is returned when a configured column is absent.
var ErrColumnNotFound = errors.New("column not found")

// Columns names the CSV headers a table is read with. Only NameColumn is
// required; empty names are not read.
type Columns struct {
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Year     string `yaml:"year"`
	Height   string `yaml:"height"`
	Position string `yaml:"position"`
}

// Entry is one player's values from a table.
type Entry struct {
	Name     string
	Role     string
	Year     string
	Height   string
	Position string
}

// Table is a lookup table keyed by normalized player name. When a key
// appears more than once the first row wins.
type Table struct {
	Source  string
	entries map[metrics.PlayerKey]Entry
	order   []metrics.PlayerKey
}

// Open reads the CSV file at path.
func Open(source, path string, cols Columns) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s table: %w", source, err)
	}
	defer f.Close()

	return Read(source, f, cols)
}

// Read parses a CSV stream with a header row.
func Read(source string, r io.Reader, cols Columns) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", source, err)
	}

	nameIdx := findColumnIndex(header, cols.Name)
	if nameIdx < 0 {
		return nil, fmt.Errorf("%s: %w: %q", source, ErrColumnNotFound, cols.Name)
	}
	roleIdx := findColumnIndex(header, cols.Role)
	yearIdx := findColumnIndex(header, cols.Year)
	heightIdx := findColumnIndex(header, cols.Height)
	positionIdx := findColumnIndex(header, cols.Position)

	t := &Table{
		Source:  source,
		entries: make(map[metrics.PlayerKey]Entry),
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}

		name := field(record, nameIdx)
		key := metrics.NewPlayerKey(name)
		if key == "" {
			continue
		}
		if _, seen := t.entries[key]; seen {
			continue
		}

		t.entries[key] = Entry{
			Name:     name,
			Role:     field(record, roleIdx),
			Year:     field(record, yearIdx),
			Height:   field(record, heightIdx),
			Position: field(record, positionIdx),
		}
		t.order = append(t.order, key)
	}

	return t, nil
}

func findColumnIndex(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
			return i
		}
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// Len returns the number of distinct players in the table.
func (t *Table) Len() int {
	return len(t.order)
}

// Get returns the entry for key.
func (t *Table) Get(key metrics.PlayerKey) (Entry, bool) {
	e, ok := t.entries[key]
	return e, ok
}

// Keys returns the set of player keys, used as an inclusion filter.
func (t *Table) Keys() map[metrics.PlayerKey]struct{} {
	keys := make(map[metrics.PlayerKey]struct{}, len(t.order))
	for _, k := range t.order {
		keys[k] = struct{}{}
	}
	return keys
}

// RoleLookup exposes the table's role column. When standardize is set, roles
// are reduced to G/F/C and unrecognized labels count as missing.
func (t *Table) RoleLookup(standardize bool) metrics.Lookup {
	values := make(map[metrics.PlayerKey]string, len(t.entries))
	for k, e := range t.entries {
		role := e.Role
		if standardize {
			role, _ = metrics.StandardizePosition(role)
		}
		if role != "" {
			values[k] = role
		}
	}
	return metrics.MapLookup{Source: t.Source, Values: values}
}

// YearLookup exposes the table's class year column.
func (t *Table) YearLookup() metrics.Lookup {
	values := make(map[metrics.PlayerKey]string, len(t.entries))
	for k, e := range t.entries {
		if e.Year != "" {
			values[k] = e.Year
		}
	}
	return metrics.MapLookup{Source: t.Source, Values: values}
}

// Height returns the player's height in inches.
func (t *Table) Height(key metrics.PlayerKey) (float64, bool) {
	e, ok := t.entries[key]
	if !ok {
		return 0, false
	}
	return metrics.ParseHeight(e.Height)
}

// Position returns the player's standardized position.
func (t *Table) Position(key metrics.PlayerKey) (string, bool) {
	e, ok := t.entries[key]
	if !ok {
		return "", false
	}
	raw := e.Position
	if raw == "" {
		raw = e.Role
	}
	return metrics.StandardizePosition(raw)
}
