package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thechosenone98/MP3Journaling/logger"
)

// Watcher waits for recorder files to land in a directory and triggers a
// processing run once they have settled. Recorders dump a whole card at
// once, so the settle window debounces the entire batch instead of firing
// per file.
type Watcher struct {
	dir     string
	settle  time.Duration
	exts    map[string]bool
	trigger func(ctx context.Context)
}

// NewWatcher creates a watcher for dir. Only files with one of exts count
// as recorder activity; trigger runs after no such activity for settle.
func NewWatcher(dir string, settle time.Duration, exts []string, trigger func(ctx context.Context)) *Watcher {
	if settle <= 0 {
		settle = 30 * time.Second
	}
	extSet := make(map[string]bool, len(exts))
	for _, ext := range exts {
		extSet[strings.ToLower(ext)] = true
	}
	return &Watcher{dir: dir, settle: settle, exts: extSet, trigger: trigger}
}

// Run blocks watching the directory until ctx is cancelled. The trigger
// runs on the watch goroutine, so a processing run delays (but never
// loses) the next batch: whatever lands meanwhile is picked up by the
// following scan.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	logger.Info("Watching for recorder files",
		logger.String("dir", w.dir),
		logger.Duration("settle", w.settle))

	pending := make(map[string]time.Time)
	tick := w.settle / 2
	if tick > time.Second {
		tick = time.Second
	}
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	checkTicker := time.NewTicker(tick)
	defer checkTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				ext := strings.ToLower(filepath.Ext(event.Name))
				if w.exts[ext] {
					pending[event.Name] = time.Now()
				}
			}

		case <-checkTicker.C:
			if len(pending) == 0 {
				continue
			}
			var newest time.Time
			for _, at := range pending {
				if at.After(newest) {
					newest = at
				}
			}
			if time.Since(newest) < w.settle {
				continue
			}

			logger.Info("Recorder files settled, starting run",
				logger.Int("files", len(pending)))
			pending = make(map[string]time.Time)
			w.trigger(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error", logger.ErrorField(err))
		}
	}
}
