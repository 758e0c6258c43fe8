// Package cli implements the orgtower command-line interface.
//
// Commands read an analysis (a JSON or TOML file holding an account name and
// its contacts), reconcile it into a reporting tree and write charts, or
// edit it interactively. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - build: Render an analysis as SVG, JSON, DOT or Graphviz SVG
//   - delete: Remove a contact and bridge its reports to its manager
//   - analyze: Merge extraction documents into one analysis
//   - explore: Edit an analysis in the terminal
//   - serve: Run the HTTP session API
//   - cache: Manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps that writes to w
// and filters messages below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Built 42 contacts (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
