// Package packager contains the two packaging drivers: the bulk packager
// producing one archive per configured root, and the selective packager
// producing a single deployment package with a filtered dependency tree.
package packager

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/snapit/lambdapack/internal/archive"
	"github.com/snapit/lambdapack/internal/config"
	"github.com/snapit/lambdapack/internal/gitinfo"
	"github.com/snapit/lambdapack/internal/logfields"
	"github.com/snapit/lambdapack/internal/rules"
)

// PackageAll builds one archive per configured root. A missing root is
// skipped with a diagnostic and the remaining roots still proceed; an I/O
// failure aborts that root's archive and is recorded as a failed result.
// Roots are processed strictly in order, one open archive at a time.
func PackageAll(cfg *config.Config) *Summary {
	summary := &Summary{}
	policy := rules.BulkPolicy()

	for _, root := range cfg.Roots {
		summary.Results = append(summary.Results, packageRoot(root, cfg.Archive.NamePrefix, policy))
	}

	slog.Info("Bulk packaging finished",
		slog.Int("succeeded", summary.Succeeded()),
		slog.Int("skipped", summary.Skipped()),
		slog.Int("failed", summary.Failed()))
	return summary
}

func packageRoot(root config.Root, namePrefix string, policy *rules.Policy) Result {
	started := time.Now()
	result := Result{Root: root.Name, StartedAt: started}

	if _, err := os.Stat(root.Path); os.IsNotExist(err) {
		slog.Warn("Root directory not found, skipping", logfields.Root(root.Name), logfields.Path(root.Path))
		result.Status = StatusSkipped
		result.Err = ErrRootNotFound
		return result
	}

	// The archive is written inside the root it packages, named after the
	// root itself. The name is used verbatim.
	archivePath := filepath.Join(root.Path, namePrefix+root.Name+".zip")
	result.Archive = archivePath

	slog.Info("Creating archive", logfields.Root(root.Name), logfields.Archive(archivePath))

	entries, bytes, commit, err := buildArchive(archivePath, root.Path, func(b *archive.Builder) error {
		return b.AddTree(root.Path, root.Path, policy)
	})
	result.Duration = time.Since(started)
	if err != nil {
		slog.Error("Archive construction failed", logfields.Root(root.Name), logfields.Error(err))
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	result.Status = StatusSucceeded
	result.Entries = entries
	result.Bytes = bytes
	result.Commit = commit

	slog.Info("Archive created",
		logfields.Root(root.Name),
		logfields.Archive(archivePath),
		logfields.Entries(entries),
		logfields.SizeBytes(bytes),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result
}

// buildArchive runs fill against a fresh builder at archivePath, guaranteeing
// finalization on every exit path, and returns entry count, archive size and
// the source commit. A half-written archive from a failed build is left in
// place; the archive is only valid once Close succeeded.
func buildArchive(archivePath, srcDir string, fill func(*archive.Builder) error) (int, int64, string, error) {
	builder, err := archive.Create(archivePath)
	if err != nil {
		return 0, 0, "", err
	}

	commit := gitinfo.HeadCommit(srcDir)
	if commit != "" {
		if err := builder.SetComment(commit); err != nil {
			slog.Warn("Failed to set archive comment", logfields.Archive(archivePath), logfields.Error(err))
		}
	}

	if err := fill(builder); err != nil {
		_ = builder.Close()
		return 0, 0, "", err
	}
	if err := builder.Close(); err != nil {
		return 0, 0, "", err
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return builder.Entries(), 0, commit, err
	}
	return builder.Entries(), info.Size(), commit, nil
}
