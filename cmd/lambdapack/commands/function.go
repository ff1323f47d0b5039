package commands

import (
	"context"
	"fmt"

	"github.com/snapit/lambdapack/internal/config"
	"github.com/snapit/lambdapack/internal/packager"
)

// FunctionCmd implements the 'function' command.
type FunctionCmd struct {
	Dir string `short:"d" help:"Override the configured function directory"`
}

func (f *FunctionCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if f.Dir != "" {
		cfg.Function.Dir = f.Dir
	}
	if cfg.Function.Dir == "" {
		return fmt.Errorf("no function directory configured in %s", root.Config)
	}

	stampCommit(cfg.Function.Dir)

	result := packager.PackageFunction(cfg)
	recordResults(context.Background(), cfg.History.Path, []packager.Result{result})

	switch result.Status {
	case packager.StatusSucceeded:
		fmt.Printf("Deployment package created: %s\n", result.Archive)
		fmt.Printf("Size: %.2f MB (%d entries, %s)\n",
			float64(result.Bytes)/(1024*1024), result.Entries, formatDuration(result.Duration))
		return nil
	case packager.StatusSkipped:
		fmt.Printf("Function directory not found: %s\n", cfg.Function.Dir)
		return nil
	default:
		return fmt.Errorf("packaging failed: %w", result.Err)
	}
}
