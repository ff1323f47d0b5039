package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/snapit/lambdapack/internal/rules"
)

func testPolicy(t *testing.T) *rules.Policy {
	t.Helper()
	p, err := rules.DependencyPolicy(nil)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func startWatcher(t *testing.T, dir string, debounce time.Duration, rebuild RebuildFunc) *Watcher {
	t.Helper()
	w, err := New(dir, testPolicy(t), rebuild)
	if err != nil {
		t.Fatal(err)
	}
	w.SetDebounce(debounce)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("Stop: %v", err)
		}
	})
	return w
}

func waitForRebuilds(t *testing.T, counter *atomic.Int32, want int32, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if counter.Load() >= want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("expected at least %d rebuilds, got %d", want, counter.Load())
}

func TestWatcherTriggersDebouncedRebuild(t *testing.T) {
	dir := t.TempDir()

	var rebuilds atomic.Int32
	startWatcher(t, dir, 50*time.Millisecond, func(ctx context.Context) error {
		rebuilds.Add(1)
		return nil
	})

	// A burst of writes collapses into one rebuild.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "index.js"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	waitForRebuilds(t, &rebuilds, 1, 3*time.Second)
}

func TestWatcherSeesSubdirectoryChanges(t *testing.T) {
	dir := t.TempDir()
	libDir := filepath.Join(dir, "lib")
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		t.Fatal(err)
	}

	var rebuilds atomic.Int32
	startWatcher(t, dir, 50*time.Millisecond, func(ctx context.Context) error {
		rebuilds.Add(1)
		return nil
	})

	// fsnotify watches are per-directory: a write below the top level must
	// still trigger a rebuild.
	if err := os.WriteFile(filepath.Join(libDir, "util.js"), []byte("util"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitForRebuilds(t, &rebuilds, 1, 3*time.Second)
}

func TestWatcherRegistersNewDirectories(t *testing.T) {
	dir := t.TempDir()

	var rebuilds atomic.Int32
	startWatcher(t, dir, 50*time.Millisecond, func(ctx context.Context) error {
		rebuilds.Add(1)
		return nil
	})

	// Directory created after Start (npm install shape).
	newDir := filepath.Join(dir, "node_modules", "left-pad")
	if err := os.MkdirAll(newDir, 0o755); err != nil {
		t.Fatal(err)
	}
	waitForRebuilds(t, &rebuilds, 1, 3*time.Second)

	// Give the watch registration for the new directory time to land,
	// then verify writes inside it are seen too.
	time.Sleep(200 * time.Millisecond)
	before := rebuilds.Load()
	if err := os.WriteFile(filepath.Join(newDir, "index.js"), []byte("pad"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForRebuilds(t, &rebuilds, before+1, 3*time.Second)
}

func TestWatcherIgnoresExcludedSubtrees(t *testing.T) {
	dir := t.TempDir()
	excluded := filepath.Join(dir, "node_modules", "aws-sdk")
	if err := os.MkdirAll(excluded, 0o755); err != nil {
		t.Fatal(err)
	}

	var rebuilds atomic.Int32
	startWatcher(t, dir, 30*time.Millisecond, func(ctx context.Context) error {
		rebuilds.Add(1)
		return nil
	})

	// aws-sdk is pruned from the package, so changes there are invisible.
	if err := os.WriteFile(filepath.Join(excluded, "index.js"), []byte("sdk"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := rebuilds.Load(); got != 0 {
		t.Fatalf("expected no rebuilds for excluded subtree writes, got %d", got)
	}
}

func TestWatcherIgnoresArchiveWrites(t *testing.T) {
	dir := t.TempDir()

	var rebuilds atomic.Int32
	startWatcher(t, dir, 30*time.Millisecond, func(ctx context.Context) error {
		rebuilds.Add(1)
		return nil
	})

	// Writing the output archive must not trigger a rebuild loop.
	if err := os.WriteFile(filepath.Join(dir, "function.zip"), []byte("zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := rebuilds.Load(); got != 0 {
		t.Fatalf("expected no rebuilds for archive writes, got %d", got)
	}
}

func TestRebuildsNeverOverlap(t *testing.T) {
	dir := t.TempDir()

	var active, maxActive, rebuilds atomic.Int32
	startWatcher(t, dir, 20*time.Millisecond, func(ctx context.Context) error {
		n := active.Add(1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		time.Sleep(150 * time.Millisecond)
		active.Add(-1)
		rebuilds.Add(1)
		return nil
	})

	// First change starts a rebuild; changes arriving while it runs must
	// queue a follow-up rebuild, not start a concurrent one.
	if err := os.WriteFile(filepath.Join(dir, "index.js"), []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(80 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "index.js"), []byte("2"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(40 * time.Millisecond)
	}

	waitForRebuilds(t, &rebuilds, 2, 5*time.Second)
	if got := maxActive.Load(); got > 1 {
		t.Fatalf("rebuilds overlapped: %d concurrent runs", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), testPolicy(t), func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}
}
