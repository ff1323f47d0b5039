package packager

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/snapit/lambdapack/internal/archive"
	"github.com/snapit/lambdapack/internal/config"
	"github.com/snapit/lambdapack/internal/logfields"
	"github.com/snapit/lambdapack/internal/rules"
)

// PackageFunction builds the selective deployment package for the configured
// function directory: the fixed top-level file list plus a filtered
// dependency subtree. Any pre-existing output archive is removed first, so
// repeated runs over an unchanged tree produce identical archives.
func PackageFunction(cfg *config.Config) Result {
	started := time.Now()
	fn := cfg.Function
	result := Result{Root: fn.Dir, StartedAt: started}

	if _, err := os.Stat(fn.Dir); os.IsNotExist(err) {
		slog.Warn("Function directory not found, skipping", logfields.Path(fn.Dir))
		result.Status = StatusSkipped
		result.Err = ErrFunctionDirNotFound
		return result
	}

	policy, err := rules.DependencyPolicy(fn.ExtraExcludes)
	if err != nil {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
		return result
	}

	archivePath := filepath.Join(fn.Dir, fn.Output)
	result.Archive = archivePath

	// Idempotent reset: start every run from a clean slate.
	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	slog.Info("Creating deployment package", logfields.Path(fn.Dir), logfields.Archive(archivePath))

	entries, bytes, commit, err := buildArchive(archivePath, fn.Dir, func(b *archive.Builder) error {
		// Fixed top-level files, added verbatim when present.
		for _, name := range fn.Files {
			src := filepath.Join(fn.Dir, name)
			if _, err := os.Stat(src); os.IsNotExist(err) {
				slog.Debug("Top-level file not present, skipping", logfields.File(name))
				continue
			}
			if err := b.AddFile(src, name); err != nil {
				return err
			}
			slog.Info("Added top-level file", logfields.File(name))
		}

		// Filtered dependency subtree; omitted entirely when absent.
		depDir := filepath.Join(fn.Dir, fn.DependencyDir)
		if _, err := os.Stat(depDir); os.IsNotExist(err) {
			slog.Info("Dependency directory not present, skipping", logfields.Path(depDir))
			return nil
		}
		// Base is the function dir so entry names keep the dependency
		// directory prefix (node_modules/...).
		return b.AddTree(depDir, fn.Dir, policy)
	})
	result.Duration = time.Since(started)
	if err != nil {
		slog.Error("Deployment package failed", logfields.Path(fn.Dir), logfields.Error(err))
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	result.Status = StatusSucceeded
	result.Entries = entries
	result.Bytes = bytes
	result.Commit = commit

	slog.Info("Deployment package created",
		logfields.Archive(archivePath),
		logfields.Entries(entries),
		logfields.SizeBytes(bytes),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result
}
