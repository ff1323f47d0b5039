// Package watch rebuilds the deployment package when the function directory
// changes. Events are debounced so bursts of writes (editor saves, npm
// installs) trigger a single rebuild.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/snapit/lambdapack/internal/logfields"
	"github.com/snapit/lambdapack/internal/rules"
)

// RebuildFunc performs one packaging run.
type RebuildFunc func(ctx context.Context) error

// Watcher monitors a function directory tree and triggers debounced rebuilds.
// fsnotify watches are per-directory, so the watcher registers every
// subdirectory the exclusion policy admits, and registers new subdirectories
// as they appear. Subtrees the policy excludes from the package are not
// watched; changes there never trigger a rebuild.
type Watcher struct {
	dir          string
	policy       *rules.Policy
	rebuild      RebuildFunc
	watcher      *fsnotify.Watcher
	mu           sync.Mutex
	stopChan     chan struct{}
	rebuildChan  chan struct{}
	debounceTime time.Duration
	stopped      bool
}

// New creates a watcher over dir that invokes rebuild after changes settle.
// policy decides which subdirectories are registered for events.
func New(dir string, policy *rules.Policy, rebuild RebuildFunc) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("failed to resolve watch directory: %w", err)
	}

	return &Watcher{
		dir:          absDir,
		policy:       policy,
		rebuild:      rebuild,
		watcher:      fsWatcher,
		stopChan:     make(chan struct{}),
		rebuildChan:  make(chan struct{}, 1),
		debounceTime: 2 * time.Second, // Debounce rapid file changes
	}, nil
}

// SetDebounce overrides the debounce interval. Must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounceTime = d
}

// Start begins monitoring the function directory tree.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", w.dir, err)
	}

	slog.Info("Watching function directory", logfields.Path(w.dir))

	go w.watchLoop(ctx)
	go w.rebuildLoop(ctx)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)
	return w.watcher.Close()
}

// addTree registers dir and every subdirectory the policy admits.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded(path) {
			slog.Debug("Not watching excluded directory", logfields.Path(path))
			return fs.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// excluded reports whether path is a subdirectory the policy prunes from the
// package. The watch root itself is always watched.
func (w *Watcher) excluded(path string) bool {
	if path == w.dir {
		return false
	}
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return false
	}
	return w.policy.ExcludeDir(filepath.ToSlash(rel), filepath.Base(path))
}

// watchLoop monitors file system events.
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// The rebuild writes the output archive into the watched
			// directory; reacting to it would loop forever.
			if strings.HasSuffix(event.Name, ".zip") {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			// A freshly created subdirectory needs its own watch before
			// events inside it can be seen.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.excluded(event.Name) {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}

			slog.Debug("Source change detected", logfields.File(event.Name))
			w.triggerRebuild()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Watcher error", logfields.Error(err))
		}
	}
}

// rebuildLoop runs debounced rebuilds. Rebuilds execute on this goroutine,
// so a new debounce window firing while a rebuild is in flight cannot start
// a second concurrent run against the same archive path.
func (w *Watcher) rebuildLoop(ctx context.Context) {
	timer := time.NewTimer(w.debounceTime)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-w.stopChan:
			timer.Stop()
			return
		case <-w.rebuildChan:
			// Reset the debounce window.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounceTime)
		case <-timer.C:
			if err := w.rebuild(ctx); err != nil {
				slog.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

// triggerRebuild requests a debounced rebuild.
func (w *Watcher) triggerRebuild() {
	select {
	case w.rebuildChan <- struct{}{}:
	default:
		// Rebuild already pending
	}
}
