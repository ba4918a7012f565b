package derive

import (
	"github.com/sirupsen/logrus"
)

// LogReporter reports run progress to a logger.
type LogReporter struct {
	log *logrus.Entry
}

// NewLogReporter creates a reporter that logs through entry.
func NewLogReporter(entry *logrus.Entry) *LogReporter {
	return &LogReporter{log: entry}
}

func (r *LogReporter) OnRunStart(runID string, spec Spec) {
	r.log = r.log.WithFields(logrus.Fields{"run_id": runID, "dataset": spec.Dataset})
	r.log.Info("Derivation started")
}

func (r *LogReporter) OnSourceGap(gap Gap) {
	r.log.WithFields(logrus.Fields{
		"source": gap.Source,
		"path":   gap.Path,
	}).Warnf("⚠️  Optional source unavailable: %s", gap.Reason)
}

func (r *LogReporter) OnSeasonLoaded(season int, records int, skipped int) {
	r.log.WithFields(logrus.Fields{
		"season":  season,
		"records": records,
		"skipped": skipped,
	}).Debug("Season loaded")
}

func (r *LogReporter) OnProgress(message string, current int, total int) {
	r.log.Debugf("[%d/%d] %s", current, total, message)
}

func (r *LogReporter) OnRunComplete(result *Result) {
	r.log.WithFields(logrus.Fields{
		"players": len(result.Rows),
		"seasons": result.Seasons,
		"gaps":    len(result.Gaps),
	}).Info("✓ Derivation complete")
}

func (r *LogReporter) OnRunError(err error) {
	r.log.WithError(err).Error("Derivation failed")
}
