package packager

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapit/lambdapack/internal/config"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// archiveEntries returns entry name -> uncompressed content sha256.
func archiveEntries(t *testing.T, zipPath string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer r.Close()

	entries := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		sum := sha256.New()
		_, err = io.Copy(sum, rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = hex.EncodeToString(sum.Sum(nil))
	}
	return entries
}

func sortedNames(entries map[string]string) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestPackageFunctionSelectiveScenario(t *testing.T) {
	base := t.TempDir()
	fnDir := filepath.Join(base, "sample")
	writeTree(t, fnDir, map[string]string{
		"a.js":    "console.log('a')",
		"a.zip":   "stale",
		".git/config": "[core]",
		"node_modules/aws-sdk/index.js": "runtime provided",
		"node_modules/lodash/index.js":  "lodash",
	})

	cfg := &config.Config{
		Function: config.FunctionConfig{
			Dir:           fnDir,
			Output:        "function.zip",
			Files:         []string{"a.js"},
			DependencyDir: "node_modules",
		},
	}

	result := PackageFunction(cfg)
	require.NoError(t, result.Err)
	assert.Equal(t, StatusSucceeded, result.Status)
	assert.Equal(t, 2, result.Entries)
	assert.Positive(t, result.Bytes)

	entries := archiveEntries(t, result.Archive)
	assert.Equal(t, []string{"a.js", "node_modules/lodash/index.js"}, sortedNames(entries))
}

func TestPackageFunctionIdempotent(t *testing.T) {
	base := t.TempDir()
	fnDir := filepath.Join(base, "fn")
	writeTree(t, fnDir, map[string]string{
		"index.js":                     "exports.handler = x",
		"package.json":                 `{"name":"fn"}`,
		"node_modules/lodash/index.js": "lodash",
		"node_modules/lodash/README.md": "excluded",
	})

	cfg := &config.Config{
		Function: config.FunctionConfig{
			Dir:           fnDir,
			Output:        "function.zip",
			Files:         []string{"index.js", "package.json"},
			DependencyDir: "node_modules",
		},
	}

	first := PackageFunction(cfg)
	require.NoError(t, first.Err)
	firstEntries := archiveEntries(t, first.Archive)

	second := PackageFunction(cfg)
	require.NoError(t, second.Err)
	secondEntries := archiveEntries(t, second.Archive)

	assert.Equal(t, firstEntries, secondEntries)
	assert.Equal(t, []string{"index.js", "node_modules/lodash/index.js", "package.json"}, sortedNames(secondEntries))
}

func TestPackageFunctionMissingTopLevelFileIsSkipped(t *testing.T) {
	base := t.TempDir()
	fnDir := filepath.Join(base, "fn")
	writeTree(t, fnDir, map[string]string{"index.js": "x"})

	cfg := &config.Config{
		Function: config.FunctionConfig{
			Dir:           fnDir,
			Output:        "function.zip",
			Files:         []string{"index.js", "package.json"},
			DependencyDir: "node_modules",
		},
	}

	result := PackageFunction(cfg)
	require.NoError(t, result.Err)
	assert.Equal(t, StatusSucceeded, result.Status)
	assert.Equal(t, []string{"index.js"}, sortedNames(archiveEntries(t, result.Archive)))
}

func TestPackageFunctionMissingDirSkips(t *testing.T) {
	cfg := &config.Config{
		Function: config.FunctionConfig{
			Dir:           filepath.Join(t.TempDir(), "absent"),
			Output:        "function.zip",
			Files:         []string{"index.js"},
			DependencyDir: "node_modules",
		},
	}

	result := PackageFunction(cfg)
	assert.Equal(t, StatusSkipped, result.Status)
	assert.ErrorIs(t, result.Err, ErrFunctionDirNotFound)
}

func TestPackageAllMissingRootTolerance(t *testing.T) {
	base := t.TempDir()
	writeTree(t, filepath.Join(base, "alpha"), map[string]string{"handler.py": "a"})
	writeTree(t, filepath.Join(base, "gamma"), map[string]string{"handler.py": "g"})

	cfg := &config.Config{
		Roots: []config.Root{
			{Name: "alpha", Path: filepath.Join(base, "alpha")},
			{Name: "beta", Path: filepath.Join(base, "beta")}, // does not exist
			{Name: "gamma", Path: filepath.Join(base, "gamma")},
		},
	}

	summary := PackageAll(cfg)
	require.Len(t, summary.Results, 3)

	assert.Equal(t, StatusSucceeded, summary.Results[0].Status)
	assert.Equal(t, StatusSkipped, summary.Results[1].Status)
	assert.Equal(t, StatusSucceeded, summary.Results[2].Status)

	// A skipped root produces no archive and does not fail the run.
	assert.NoFileExists(t, filepath.Join(base, "beta", "beta.zip"))
	assert.FileExists(t, filepath.Join(base, "alpha", "alpha.zip"))
	assert.FileExists(t, filepath.Join(base, "gamma", "gamma.zip"))
	assert.Equal(t, 0, summary.ExitCode())
}

func TestPackageAllExclusionsAndSelfExclusion(t *testing.T) {
	base := t.TempDir()
	rootDir := filepath.Join(base, "qr-operations")
	writeTree(t, rootDir, map[string]string{
		"index.js":          "handler",
		"lib/qr.js":         "qr",
		"stale.zip":         "old build",
		".git/config":       "[core]",
		"__pycache__/a.pyc": "bytecode",
	})

	cfg := &config.Config{
		Roots:   []config.Root{{Name: "qr-operations", Path: rootDir}},
		Archive: config.ArchiveConfig{NamePrefix: "snapit-"},
	}

	summary := PackageAll(cfg)
	require.Len(t, summary.Results, 1)
	result := summary.Results[0]
	require.NoError(t, result.Err)

	assert.Equal(t, filepath.Join(rootDir, "snapit-qr-operations.zip"), result.Archive)
	entries := archiveEntries(t, result.Archive)
	assert.Equal(t, []string{"index.js", "lib/qr.js"}, sortedNames(entries))
	assert.Equal(t, 2, result.Entries)
}

func TestSummaryExitCode(t *testing.T) {
	s := &Summary{Results: []Result{
		{Status: StatusSucceeded},
		{Status: StatusSkipped},
	}}
	assert.Equal(t, 0, s.ExitCode())

	s.Results = append(s.Results, Result{Status: StatusFailed})
	assert.Equal(t, 1, s.ExitCode())
	assert.Equal(t, 1, s.Failed())
	assert.Equal(t, 1, s.Skipped())
	assert.Equal(t, 1, s.Succeeded())
}

func TestPackageFunctionLogsDuration(t *testing.T) {
	fnDir := filepath.Join(t.TempDir(), "fn")
	writeTree(t, fnDir, map[string]string{"index.js": "handler"})

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := &config.Config{Function: config.FunctionConfig{
		Dir:           fnDir,
		Output:        "function.zip",
		Files:         []string{"index.js"},
		DependencyDir: "node_modules",
	}}
	result := PackageFunction(cfg)
	require.NoError(t, result.Err)

	assert.Contains(t, buf.String(), "duration_ms=")
}
