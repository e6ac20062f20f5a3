package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"VibeWake/logger"
	"VibeWake/model"

	"github.com/fsnotify/fsnotify"
)

// settle is how long a file must go without writes before it is imported.
const settle = 300 * time.Millisecond

// Watcher imports files dropped into a directory and removes the originals.
type Watcher struct {
	dir      string
	lib      *Library
	onImport func(model.Track)
}

// NewWatcher creates dir if needed. onImport may be nil.
func NewWatcher(dir string, lib *Library, onImport func(model.Track)) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch dir %s: %w", dir, err)
	}
	return &Watcher{dir: dir, lib: lib, onImport: onImport}, nil
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching import folder", logger.String("dir", w.dir))

	pending := make(map[string]time.Time)
	// Files already there before we started.
	if entries, err := os.ReadDir(w.dir); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				pending[filepath.Join(w.dir, e.Name())] = time.Now()
			}
		}
	}

	check := time.NewTicker(100 * time.Millisecond)
	defer check.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && !hidden(event.Name) {
				pending[event.Name] = time.Now()
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				delete(pending, event.Name)
			}

		case <-check.C:
			now := time.Now()
			for p, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, p)
				w.importFile(ctx, p)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Import folder watch error", logger.ErrorField(err))
		}
	}
}

func hidden(p string) bool {
	base := filepath.Base(p)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~")
}

func (w *Watcher) importFile(ctx context.Context, p string) {
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return
	}
	f, err := os.Open(p)
	if err != nil {
		logger.Warn("Cannot open dropped file", logger.String("path", p), logger.ErrorField(err))
		return
	}
	t, err := w.lib.Import(ctx, filepath.Base(p), f, info.Size())
	f.Close()
	if err != nil {
		logger.Error("Failed to import dropped file", logger.String("path", p), logger.ErrorField(err))
		return
	}
	if err := os.Remove(p); err != nil {
		logger.Warn("Imported file left in watch folder", logger.String("path", p), logger.ErrorField(err))
	}
	if w.onImport != nil {
		w.onImport(t)
	}
}
