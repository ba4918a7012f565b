package main

import (
	"fmt"
	"io"
	"os"

	"github.com/draymottishaw/college-assisted-explorer/internal/derive"
)

// consoleReporter prints run progress to stderr so stdout carries only
// results.
type consoleReporter struct {
	out     io.Writer
	verbose bool
}

func (c *consoleReporter) writer() io.Writer {
	if c.out == nil {
		return os.Stderr
	}
	return c.out
}

func (c *consoleReporter) OnRunStart(runID string, spec derive.Spec) {
	fmt.Fprintf(c.writer(), "Deriving %s (run %s)\n", spec.Dataset, runID)
}

func (c *consoleReporter) OnSourceGap(gap derive.Gap) {
	fmt.Fprintf(c.writer(), "⚠️  %s unavailable: %s\n", gap.Source, gap.Reason)
}

func (c *consoleReporter) OnSeasonLoaded(season int, records int, skipped int) {
	if c.verbose {
		fmt.Fprintf(c.writer(), "  %d: %d records (%d skipped)\n", season, records, skipped)
	}
}

func (c *consoleReporter) OnProgress(message string, current int, total int) {
	if c.verbose {
		fmt.Fprintf(c.writer(), "  [%d/%d] %s\n", current, total, message)
	}
}

func (c *consoleReporter) OnRunComplete(result *derive.Result) {}

func (c *consoleReporter) OnRunError(err error) {
	fmt.Fprintf(c.writer(), "Derivation failed: %v\n", err)
}
