package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/draymottishaw/college-assisted-explorer/internal/dataset"
	"github.com/draymottishaw/college-assisted-explorer/internal/derive"
	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
	"github.com/draymottishaw/college-assisted-explorer/internal/publisher"
	"github.com/draymottishaw/college-assisted-explorer/internal/store"
)

// CareerStore persists derived tables. *repository.CareerRepository
// satisfies it.
type CareerStore interface {
	ReplaceDataset(ctx context.Context, run store.DeriveRun, rows []metrics.CareerRow) error
	ListDataset(ctx context.Context, dataset string) ([]metrics.CareerRow, error)
	LatestRun(ctx context.Context, dataset string) (*store.DeriveRun, error)
}

// EventPublisher announces completed derivations.
type EventPublisher interface {
	PublishDatasetDerived(ctx context.Context, event publisher.DatasetEvent) error
}

// ReloadNotifier pushes reload notifications to connected clients.
type ReloadNotifier interface {
	BroadcastDatasetReloaded(summary dataset.Summary)
}

// DatasetOptions wires the optional collaborators of a DatasetService.
// Any field may be left nil.
type DatasetOptions struct {
	Store     CareerStore
	Publisher EventPublisher
	Notifier  ReloadNotifier
	Cache     *SimilarityService

	// OutputDir receives one CSV per dataset when WriteOutputs is set.
	OutputDir    string
	WriteOutputs bool
}

// ReloadResult summarizes one reload.
type ReloadResult struct {
	Runs     []*derive.Result  `json:"runs"`
	Failures map[string]string `json:"failures,omitempty"`
	Summary  dataset.Summary   `json:"summary"`
}

// DatasetService derives the tables and publishes them to readers.
type DatasetService struct {
	runner *derive.Runner
	holder *dataset.Holder
	opts   DatasetOptions
	log    *logrus.Entry

	mu sync.Mutex
}

// NewDatasetService creates a new dataset service
func NewDatasetService(runner *derive.Runner, holder *dataset.Holder, opts DatasetOptions, log *logrus.Entry) *DatasetService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &DatasetService{
		runner: runner,
		holder: holder,
		opts:   opts,
		log:    log,
	}
}

// Snapshot returns the snapshot currently served.
func (s *DatasetService) Snapshot() *dataset.Snapshot {
	return s.holder.Load()
}

// Reload derives every dataset and swaps the served snapshot. The career
// dataset must derive; a failure in another dataset keeps that table from
// the previous snapshot and is reported in Failures.
func (s *DatasetService) Reload(ctx context.Context) (*ReloadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.holder.Load()
	previous := map[string][]*metrics.CareerRow{
		derive.DatasetCareer:  prev.Career,
		derive.DatasetCurrent: prev.Current,
		derive.DatasetAll:     prev.All,
	}

	reload := &ReloadResult{Failures: make(map[string]string)}
	tables := make(map[string][]metrics.CareerRow)
	runIDs := make(map[string]string)

	for _, name := range []string{derive.DatasetCareer, derive.DatasetCurrent, derive.DatasetAll} {
		if _, ok := s.runner.Manifest().Datasets[name]; !ok {
			continue
		}

		reporter := derive.NewLogReporter(s.log.WithField("dataset", name))
		result, err := s.Derive(ctx, derive.Spec{Dataset: name}, reporter)
		if err != nil {
			if name == derive.DatasetCareer || errors.Is(err, context.Canceled) {
				return nil, fmt.Errorf("deriving %s: %w", name, err)
			}
			reload.Failures[name] = err.Error()
			tables[name] = values(previous[name])
			runIDs[name] = prev.RunIDs[name]
			continue
		}

		reload.Runs = append(reload.Runs, result)
		tables[name] = result.Rows
		runIDs[name] = result.RunID
	}

	snap := dataset.NewSnapshot(tables[derive.DatasetCareer], tables[derive.DatasetCurrent], tables[derive.DatasetAll])
	for name, id := range runIDs {
		if id != "" {
			snap.RunIDs[name] = id
		}
	}
	s.holder.Store(snap)
	reload.Summary = snap.Summary()

	s.log.WithField("populations", reload.Summary.Populations).Info("✓ Dataset snapshot swapped")

	if s.opts.Cache != nil {
		if err := s.opts.Cache.Invalidate(ctx); err != nil {
			s.log.WithError(err).Warn("⚠️  Failed to invalidate similarity cache")
		}
	}
	if s.opts.Notifier != nil {
		s.opts.Notifier.BroadcastDatasetReloaded(reload.Summary)
	}

	return reload, nil
}

// Derive runs one dataset, then exports, persists and announces the result.
// The served snapshot is left alone.
func (s *DatasetService) Derive(ctx context.Context, spec derive.Spec, reporter derive.Reporter) (*derive.Result, error) {
	result, err := s.runner.Run(ctx, spec, reporter)
	if err != nil {
		return nil, err
	}
	s.afterRun(ctx, result)
	return result, nil
}

// afterRun persists, exports and announces one successful run. Failures
// are logged; the derived rows are served regardless.
func (s *DatasetService) afterRun(ctx context.Context, result *derive.Result) {
	log := s.log.WithFields(logrus.Fields{"dataset": result.Dataset, "run_id": result.RunID})

	if s.opts.WriteOutputs {
		path := s.runner.Manifest().OutputPath(s.opts.OutputDir, result.Dataset)
		if err := derive.WriteFile(path, result.Rows); err != nil {
			log.WithError(err).Warn("⚠️  Failed to write output file")
		} else {
			log.WithField("path", path).Info("✓ Output written")
		}
	}

	if s.opts.Store != nil {
		run, err := runRecord(result)
		if err == nil {
			err = s.opts.Store.ReplaceDataset(ctx, run, result.Rows)
		}
		if err != nil {
			log.WithError(err).Warn("⚠️  Failed to persist dataset")
		}
	}

	if s.opts.Publisher != nil {
		event := publisher.DatasetEvent{
			RunID:     result.RunID,
			Dataset:   result.Dataset,
			Players:   len(result.Rows),
			Seasons:   result.Seasons,
			Gaps:      len(result.Gaps),
			DerivedAt: result.FinishedAt,
		}
		if err := s.opts.Publisher.PublishDatasetDerived(ctx, event); err != nil {
			log.WithError(err).Warn("⚠️  Failed to publish dataset event")
		}
	}
}

// LoadFromStore serves the most recently persisted tables. It is used when
// the source files cannot be derived at startup.
func (s *DatasetService) LoadFromStore(ctx context.Context) (dataset.Summary, error) {
	if s.opts.Store == nil {
		return dataset.Summary{}, errors.New("no dataset store configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tables := make(map[string][]metrics.CareerRow)
	runIDs := make(map[string]string)
	var derivedAt time.Time
	for _, name := range []string{derive.DatasetCareer, derive.DatasetCurrent, derive.DatasetAll} {
		rows, err := s.opts.Store.ListDataset(ctx, name)
		if err != nil {
			return dataset.Summary{}, fmt.Errorf("loading %s: %w", name, err)
		}
		tables[name] = rows

		run, err := s.opts.Store.LatestRun(ctx, name)
		if err != nil {
			continue
		}
		runIDs[name] = run.RunID
		if run.FinishedAt.After(derivedAt) {
			derivedAt = run.FinishedAt
		}
	}
	if len(tables[derive.DatasetCareer]) == 0 {
		return dataset.Summary{}, fmt.Errorf("store has no %s rows", derive.DatasetCareer)
	}

	snap := dataset.NewSnapshot(tables[derive.DatasetCareer], tables[derive.DatasetCurrent], tables[derive.DatasetAll])
	for name, id := range runIDs {
		snap.RunIDs[name] = id
	}
	if !derivedAt.IsZero() {
		snap.DerivedAt = derivedAt
	}
	s.holder.Store(snap)
	return snap.Summary(), nil
}

func runRecord(result *derive.Result) (store.DeriveRun, error) {
	gaps := result.Gaps
	if gaps == nil {
		gaps = []derive.Gap{}
	}
	raw, err := json.Marshal(gaps)
	if err != nil {
		return store.DeriveRun{}, fmt.Errorf("encoding gaps: %w", err)
	}
	return store.DeriveRun{
		RunID:         result.RunID,
		Dataset:       result.Dataset,
		FirstSeason:   result.First,
		LastSeason:    result.Last,
		SeasonsLoaded: result.Seasons,
		SeasonRecords: result.Records,
		Players:       len(result.Rows),
		Gaps:          raw,
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
	}, nil
}

func values(rows []*metrics.CareerRow) []metrics.CareerRow {
	out := make([]metrics.CareerRow, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out
}
