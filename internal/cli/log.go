// Package cli implements the grapplegraph command-line interface.
//
// The commands cover the whole toolchain: decoding and pretty-printing
// position codes, testing two positions for equivalence, canonicalizing and
// relaxing a pose, building a move graph from a position database, rendering
// and browsing the result, and serving the HTTP API.
//
// # Commands
//
//   - build: Deduplicate a catalog into a move graph (cached by content)
//   - decode, format: Inspect a position code
//   - match, canon, relax: Pose geometry tools
//   - render: DOT or SVG output of a built graph
//   - browse: Interactive node and edge explorer
//   - serve: HTTP API with Prometheus metrics
//   - cache, config: Local state management
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is owned by [CLI] and handed to every library that logs.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with timestamps
// formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of one operation when it is done.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond,
// e.g. "Built move graph (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
