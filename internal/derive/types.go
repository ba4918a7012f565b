package derive

import (
	"errors"
	"time"

	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

var (
	// ErrRequiredSourceMissing halts a run when an input it cannot do
	// without is absent.
	ErrRequiredSourceMissing = errors.New("required source missing")

	// ErrUnknownDataset is returned for a dataset the manifest does not define.
	ErrUnknownDataset = errors.New("unknown dataset")
)

// Spec describes one derivation run.
type Spec struct {
	Dataset string
	// First and Last override the season range when non-zero.
	First int
	Last  int
}

// Gap records an optional input that was not available.
type Gap struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the outcome of a run.
type Result struct {
	RunID      string              `json:"run_id"`
	Dataset    string              `json:"dataset"`
	First      int                 `json:"first_season"`
	Last       int                 `json:"last_season"`
	Seasons    int                 `json:"seasons_loaded"`
	Records    int                 `json:"season_records"`
	Gaps       []Gap               `json:"gaps,omitempty"`
	Rows       []metrics.CareerRow `json:"-"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnRunStart(runID string, spec Spec)
	OnSourceGap(gap Gap)
	OnSeasonLoaded(season int, records int, skipped int)
	OnProgress(message string, current int, total int)
	OnRunComplete(result *Result)
	OnRunError(err error)
}
