package commands

import (
	"context"
	"fmt"

	"github.com/snapit/lambdapack/internal/config"
	"github.com/snapit/lambdapack/internal/packager"
)

// BulkCmd implements the 'bulk' command.
type BulkCmd struct{}

func (b *BulkCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(cfg.Roots) == 0 {
		return fmt.Errorf("no roots configured in %s", root.Config)
	}

	fmt.Println("Starting bulk packaging")

	summary := packager.PackageAll(cfg)
	recordResults(context.Background(), cfg.History.Path, summary.Results)

	for _, r := range summary.Results {
		switch r.Status {
		case packager.StatusSucceeded:
			fmt.Printf("✓ %s (%d entries, %.2f MB)\n", r.Archive, r.Entries, float64(r.Bytes)/(1024*1024))
		case packager.StatusSkipped:
			fmt.Printf("- %s skipped: directory not found\n", r.Root)
		case packager.StatusFailed:
			fmt.Printf("✗ %s failed: %v\n", r.Root, r.Err)
		}
	}

	if summary.ExitCode() != 0 {
		return fmt.Errorf("%d of %d roots failed", summary.Failed(), len(summary.Results))
	}
	fmt.Println("All archives created successfully")
	return nil
}
