// Package watch reports debounced file changes using fsnotify.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when no positive debounce is configured.
const DefaultDebounce = 300 * time.Millisecond

// ErrNoPaths is returned when Watch is called without paths.
var ErrNoPaths = errors.New("watch: no paths")

// Watcher watches files and directories. Files are watched through their
// parent directory so editors that replace files on save keep triggering
// events. A watched directory reports changes to its direct children.
type Watcher struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watch runs a Watcher with the given debounce. See Watcher.Run.
func Watch(ctx context.Context, paths []string, debounce time.Duration, fn func(changed []string)) error {
	return Watcher{Debounce: debounce}.Run(ctx, paths, fn)
}

// Run blocks until ctx is done, calling fn with the sorted set of changed
// paths once events have been quiet for the debounce interval. fn runs on the
// watcher goroutine; events arriving meanwhile are queued by fsnotify.
func (w Watcher) Run(ctx context.Context, paths []string, fn func(changed []string)) error {
	if len(paths) == 0 {
		return ErrNoPaths
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	files := map[string]bool{}
	dirs := map[string]bool{}
	added := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch: %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		target := abs
		if info.IsDir() {
			dirs[abs] = true
		} else {
			files[abs] = true
			target = filepath.Dir(abs)
		}
		if added[target] {
			continue
		}
		if err := fw.Add(target); err != nil {
			return fmt.Errorf("watch: %s: %w", target, err)
		}
		added[target] = true
		logger.Debug("watching", "path", target)
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = map[string]struct{}{}
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Clean(ev.Name)
			if !files[name] && !dirs[filepath.Dir(name)] {
				continue
			}
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			clear(pending)
			sort.Strings(changed)
			logger.Debug("change detected", "paths", changed)
			fn(changed)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}
