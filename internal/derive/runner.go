package derive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"github.com/draymottishaw/college-assisted-explorer/internal/ingest/pbp"
	"github.com/draymottishaw/college-assisted-explorer/internal/ingest/roster"
	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

// Runner derives career datasets from the inputs listed in a Manifest.
type Runner struct {
	manifest *Manifest
}

// NewRunner constructs a runner. A nil manifest uses DefaultManifest.
func NewRunner(m *Manifest) *Runner {
	if m == nil {
		m = DefaultManifest()
	}
	return &Runner{manifest: m}
}

// Manifest returns the runner's manifest.
func (r *Runner) Manifest() *Manifest {
	return r.manifest
}

// Run derives one dataset, reporting progress via the Reporter if provided.
func (r *Runner) Run(ctx context.Context, spec Spec, reporter Reporter) (*Result, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}

	result, err := r.run(ctx, spec, reporter)
	if err != nil {
		reporter.OnRunError(err)
		return nil, err
	}

	reporter.OnRunComplete(result)
	return result, nil
}

func (r *Runner) run(ctx context.Context, spec Spec, reporter Reporter) (*Result, error) {
	ds, ok := r.manifest.Datasets[spec.Dataset]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, spec.Dataset)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Dataset:   spec.Dataset,
		First:     firstNonZero(spec.First, ds.First, r.manifest.Seasons.First),
		Last:      firstNonZero(spec.Last, ds.Last, r.manifest.Seasons.Last),
		StartedAt: time.Now(),
	}
	reporter.OnRunStart(result.RunID, spec)

	const steps = 5

	// Lookup tables
	reporter.OnProgress("Loading lookup tables", 0, steps)
	tables := make(map[string]*roster.Table)
	for _, name := range ds.sources() {
		cfg, ok := r.manifest.Sources[name]
		if !ok {
			return nil, fmt.Errorf("dataset %s: unknown source %q", spec.Dataset, name)
		}

		path := r.manifest.SourcePath(name)
		table, err := roster.Open(name, path, cfg.Columns)
		if err != nil {
			if name == ds.Include {
				return nil, fmt.Errorf("%w: %s (%s): %v", ErrRequiredSourceMissing, name, path, err)
			}
			gap := Gap{Source: name, Path: path, Reason: err.Error()}
			result.Gaps = append(result.Gaps, gap)
			reporter.OnSourceGap(gap)
			continue
		}
		tables[name] = table
	}

	// Season exports
	reporter.OnProgress("Loading season exports", 1, steps)
	loader := &pbp.Loader{Dir: r.manifest.SeasonDir(), Pattern: r.manifest.Seasons.Pattern}
	obs := &seasonObserver{reporter: reporter, result: result}
	records, found, err := loader.LoadRange(ctx, result.First, result.Last, obs)
	if err != nil {
		return nil, fmt.Errorf("loading seasons: %w", err)
	}
	if found == 0 {
		return nil, fmt.Errorf("%w: no season files for %d-%d in %s",
			ErrRequiredSourceMissing, result.First, result.Last, loader.Dir)
	}
	result.Seasons = found

	var include map[metrics.PlayerKey]struct{}
	if ds.Include != "" {
		include = tables[ds.Include].Keys()
		kept := records[:0]
		for _, rec := range records {
			if _, ok := include[rec.Key()]; ok {
				kept = append(kept, rec)
			}
		}
		records = kept
	}
	result.Records = len(records)

	// Career totals
	reporter.OnProgress(fmt.Sprintf("Aggregating %d season records", len(records)), 2, steps)
	rows := metrics.Filter(metrics.Aggregate(records), include)

	// Role and class year
	reporter.OnProgress("Resolving roles and class years", 3, steps)
	roles := make(metrics.Chain, 0, len(ds.Roles))
	for _, name := range ds.Roles {
		if t, ok := tables[name]; ok {
			roles = append(roles, t.RoleLookup(r.manifest.Sources[name].StandardizeRoles))
		}
	}
	years := make(metrics.Chain, 0, len(ds.Years))
	for _, name := range ds.Years {
		if t, ok := tables[name]; ok {
			years = append(years, t.YearLookup())
		}
	}
	metrics.ResolveAttributes(rows, roles, years)

	// Measurements and positions
	reporter.OnProgress("Joining heights and positions", 4, steps)
	for i := range rows {
		row := &rows[i]
		for _, name := range ds.Heights {
			t, ok := tables[name]
			if !ok {
				continue
			}
			if h, ok := t.Height(row.Key); ok {
				row.Height = metrics.Of(h)
				break
			}
		}
		if t, ok := tables[ds.Positions]; ok {
			if p, ok := t.Position(row.Key); ok {
				row.Position = metrics.TextOf(p)
			}
		}
	}

	result.Rows = rows
	result.FinishedAt = time.Now()
	reporter.OnProgress(fmt.Sprintf("✓ %d players derived", len(rows)), steps, steps)

	return result, nil
}

func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

type seasonObserver struct {
	reporter Reporter
	result   *Result
}

func (o *seasonObserver) OnSeasonLoaded(season int, path string, records, skipped int) {
	o.reporter.OnSeasonLoaded(season, records, skipped)
}

func (o *seasonObserver) OnSeasonMissing(season int, path string) {
	gap := Gap{
		Source: fmt.Sprintf("season %d", season),
		Path:   path,
		Reason: fs.ErrNotExist.Error(),
	}
	o.result.Gaps = append(o.result.Gaps, gap)
	o.reporter.OnSourceGap(gap)
}

type nopReporter struct{}

func (nopReporter) OnRunStart(string, Spec) {}
func (nopReporter) OnSourceGap(Gap) {}
func (nopReporter) OnSeasonLoaded(int, int, int) {}
func (nopReporter) OnProgress(string, int, int) {}
func (nopReporter) OnRunComplete(*Result) {}
func (nopReporter) OnRunError(error) {}

// IsRequiredSourceMissing reports whether err halted a run for a missing input.
func IsRequiredSourceMissing(err error) bool {
	return errors.Is(err, ErrRequiredSourceMissing)
}
