package pbp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

// Observer is told about each season file as it is read.
type Observer interface {
	OnSeasonLoaded(season int, path string, records, skipped int)
	OnSeasonMissing(season int, path string)
}

// Loader reads season exports from a directory.
type Loader struct {
	Dir     string
	Pattern string
}

// NewLoader creates a loader for dir using the default file pattern.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir, Pattern: DefaultPattern}
}

// Path returns the file path for a season.
func (l *Loader) Path(season int) string {
	pattern := l.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	name := strings.ReplaceAll(pattern, "{year}", strconv.Itoa(season))
	return filepath.Join(l.Dir, name)
}

// LoadSeason reads one season file. A missing file returns an error wrapping
// fs.ErrNotExist.
func (l *Loader) LoadSeason(season int) ([]metrics.SeasonRecord, int, error) {
	path := l.Path(season)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseSeason(season, data)
}

// LoadRange reads every season from first to last inclusive. Missing files
// are reported to obs and skipped. It returns the records and the number of
// season files found.
func (l *Loader) LoadRange(ctx context.Context, first, last int, obs Observer) ([]metrics.SeasonRecord, int, error) {
	var all []metrics.SeasonRecord
	found := 0

	for season := first; season <= last; season++ {
		if err := ctx.Err(); err != nil {
			return nil, found, err
		}

		records, skipped, err := l.LoadSeason(season)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if obs != nil {
					obs.OnSeasonMissing(season, l.Path(season))
				}
				continue
			}
			return nil, found, err
		}

		found++
		if obs != nil {
			obs.OnSeasonLoaded(season, l.Path(season), len(records), skipped)
		}
		all = append(all, records...)
	}

	return all, found, nil
}
