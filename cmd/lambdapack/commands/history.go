package commands

import (
	"context"
	"fmt"

	"github.com/snapit/lambdapack/internal/config"
	"github.com/snapit/lambdapack/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Maximum number of runs to show" default:"20"`
	Root  string `short:"r" help:"Only show runs for this root"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("run history is not configured (set history.path in %s)", root.Config)
	}

	store, err := openHistory(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	ctx := context.Background()
	var records []history.Record
	if h.Root != "" {
		records, err = store.ByRoot(ctx, h.Root)
	} else {
		records, err = store.Recent(ctx, h.Limit)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No packaging runs recorded")
		return nil
	}

	for _, r := range records {
		commit := r.Commit
		if commit == "" {
			commit = "-"
		} else if len(commit) > 12 {
			commit = commit[:12]
		}
		fmt.Printf("%s  %-9s  %-20s  %6d entries  %8.2f MB  %s  %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Status,
			r.Root,
			r.Entries,
			float64(r.Bytes)/(1024*1024),
			commit,
			formatDuration(r.Duration))
	}
	return nil
}
