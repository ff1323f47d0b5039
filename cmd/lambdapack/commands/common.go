package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/snapit/lambdapack/internal/gitinfo"
	"github.com/snapit/lambdapack/internal/history"
	"github.com/snapit/lambdapack/internal/logfields"
	"github.com/snapit/lambdapack/internal/packager"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"lambdapack.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Bulk     BulkCmd     `cmd:"" help:"Build one archive per configured root directory"`
	Function FunctionCmd `cmd:"" help:"Build the selective deployment package for the function directory"`
	Watch    WatchCmd    `cmd:"" help:"Rebuild the deployment package whenever the function directory changes"`
	History  HistoryCmd  `cmd:"" help:"List recorded packaging runs"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// recordResults appends packaging results to the run-history store when one
// is configured. History failures are advisory; they never fail the run.
func recordResults(ctx context.Context, historyPath string, results []packager.Result) {
	if historyPath == "" {
		return
	}

	store, err := openHistory(historyPath)
	if err != nil {
		slog.Warn("Run history unavailable", logfields.Path(historyPath), logfields.Error(err))
		return
	}
	defer func() {
		_ = store.Close()
	}()

	for _, r := range results {
		record := history.Record{
			Root:      r.Root,
			Archive:   r.Archive,
			Status:    string(r.Status),
			Entries:   r.Entries,
			Bytes:     r.Bytes,
			Commit:    r.Commit,
			StartedAt: r.StartedAt,
			Duration:  r.Duration,
		}
		id, err := store.Append(ctx, record)
		if err != nil {
			slog.Warn("Failed to record run", logfields.Root(r.Root), logfields.Error(err))
			continue
		}
		slog.Debug("Run recorded",
			logfields.RunID(id),
			logfields.Root(r.Root),
			logfields.Status(string(r.Status)))
	}
}

// openHistory opens the history store, creating parent directories first.
func openHistory(path string) (*history.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	return history.Open(path)
}

// stampCommit logs the source commit a run was packaged from, if any.
func stampCommit(dir string) {
	if commit := gitinfo.HeadCommit(dir); commit != "" {
		slog.Info("Packaging from source revision", logfields.Commit(commit))
	}
}

// formatDuration rounds run durations for display.
func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
