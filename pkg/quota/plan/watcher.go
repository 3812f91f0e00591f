package plan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a plan table file into a resolver when it changes.
//
// Editors and config-management tools often write files as a burst of
// events (write, chmod, rename), so reloads are debounced. A reload that
// fails validation is logged and skipped; the resolver keeps serving the
// last good table.
type Watcher struct {
	path     string
	resolver *Resolver
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher for the given plan table file.
func NewWatcher(path string, resolver *Resolver, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the directory rather than the file so atomic
	// rename-into-place updates are observed.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", path, err)
	}

	return &Watcher{
		path:     path,
		resolver: resolver,
		watcher:  fsw,
		logger:   logger.With("component", "plan.watcher"),
		debounce: 100 * time.Millisecond,
	}, nil
}

// Watch blocks until the context is cancelled, reloading the plan table
// whenever the watched file changes.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			// Debounce: reset the timer on every relevant event.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("plan watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	table, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn("plan table reload failed, keeping previous table",
			"path", w.path, "error", err)
		return
	}

	w.resolver.Update(table)
	w.logger.Info("plan table reloaded", "path", w.path, "plans", len(table))
}
