package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/snapit/lambdapack/internal/config"
	"github.com/snapit/lambdapack/internal/packager"
	"github.com/snapit/lambdapack/internal/rules"
	"github.com/snapit/lambdapack/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce time.Duration `help:"Quiet period before rebuilding after a change" default:"2s"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Function.Dir == "" {
		return fmt.Errorf("no function directory configured in %s", root.Config)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rebuild := func(ctx context.Context) error {
		result := packager.PackageFunction(cfg)
		recordResults(ctx, cfg.History.Path, []packager.Result{result})
		if result.Status == packager.StatusFailed {
			return result.Err
		}
		return nil
	}

	// Package once up front so the archive reflects the current tree.
	if err := rebuild(ctx); err != nil {
		return err
	}

	policy, err := rules.DependencyPolicy(cfg.Function.ExtraExcludes)
	if err != nil {
		return err
	}

	watcher, err := watch.New(cfg.Function.Dir, policy, rebuild)
	if err != nil {
		return err
	}
	watcher.SetDebounce(w.Debounce)

	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = watcher.Stop()
	}()

	fmt.Printf("Watching %s, press Ctrl-C to stop\n", cfg.Function.Dir)
	<-ctx.Done()
	fmt.Println("Shutting down")
	return nil
}
