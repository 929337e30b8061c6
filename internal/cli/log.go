// Package cli implements the jobtimeline command-line interface.
//
// The CLI computes lane-packed timeline layouts from workflow documents,
// renders them, browses them in the terminal and serves the same pipeline
// over HTTP. It is built on cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - layout: Compute a layout.json from a workflow (JSON, YAML or TOML)
//   - visualize: Render a layout.json to SVG, PNG, PDF, JSON or DOT
//   - render: Workflow to artifacts in one step
//   - inspect: Interactive lane browser
//   - layouts: Manage layouts saved with --save
//   - serve: HTTP API
//   - cache: Manage the local cache
//
// # Logging
//
// Logs go to stderr. --verbose (-v) enables debug level and the pipeline
// event hooks. JOBTIMELINE_LOG_FORMAT selects text (default), json or logfmt
// output, which is useful when running serve under a log collector.
package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logFormatEnv names the variable that selects the log formatter.
const logFormatEnv = "JOBTIMELINE_LOG_FORMAT"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	opts := log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	}
	switch strings.ToLower(os.Getenv(logFormatEnv)) {
	case "json":
		opts.Formatter = log.JSONFormatter
		opts.TimeFormat = time.RFC3339Nano
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
		opts.TimeFormat = time.RFC3339Nano
	}
	return log.NewWithOptions(w, opts)
}

// progress times one step of a command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
