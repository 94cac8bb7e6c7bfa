// Package cli implements the kitchenplan command-line interface.
//
// Commands read kitchen configs (JSON or YAML), run them through the
// pipeline runner and print status lines with lipgloss. The runner's cache,
// catalog and configuration store come from the settings file; see
// [github.com/matzehuels/kitchenplan/pkg/config].
//
// # Commands
//
//   - init: write the example kitchen config
//   - validate, layout, tree, inspect: check and synthesize a config
//   - save, get, list: persist and retrieve configs
//   - materials, modules: browse the catalogs
//   - serve: expose the tool-call contract over HTTP
//   - store cleanup, cache clear|path: maintenance
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels on the command context; see loggerFromContext.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps, filtering at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of one operation.
// Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond,
// e.g. "Server stopped (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
