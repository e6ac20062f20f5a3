package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"VibeWake/core/clock"
	"VibeWake/logger"
	"VibeWake/model"
	"VibeWake/storage"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("track not found")
	ErrReadOnly = errors.New("built-in tracks cannot be removed")
	// ErrBadFilename rejects names that do not name a file, such as "..".
	ErrBadFilename = errors.New("invalid file name")
)

// Library is the built-in catalog plus the tracks imported during this run.
type Library struct {
	mu       sync.RWMutex
	builtin  []model.Track
	imported []model.Track // newest first

	blobs storage.BlobStore
	clock clock.Clock
}

// New creates a library backed by blobs for imports.
func New(blobs storage.BlobStore, c clock.Clock) *Library {
	return &Library{builtin: Builtin(), blobs: blobs, clock: c}
}

// Default is the track new alarms use when none is chosen.
func (l *Library) Default() model.Track {
	return l.builtin[0]
}

// List returns imported tracks, newest first, followed by the catalog.
func (l *Library) List() []model.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Track, 0, len(l.imported)+len(l.builtin))
	out = append(out, l.imported...)
	return append(out, l.builtin...)
}

func (l *Library) Get(id string) (model.Track, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, t := range l.imported {
		if t.ID == id {
			return t, true
		}
	}
	for _, t := range l.builtin {
		if t.ID == id {
			return t, true
		}
	}
	return model.Track{}, false
}

// TitleFromFilename drops the last extension; a name that is only an
// extension is kept whole.
func TitleFromFilename(name string) string {
	base := path.Base(filepath.ToSlash(name))
	title := strings.TrimSuffix(base, path.Ext(base))
	if title == "" {
		return base
	}
	return title
}

// Import stores the file and adds it to the front of the list. Any extension
// is accepted.
func (l *Library) Import(ctx context.Context, filename string, r io.Reader, size int64) (model.Track, error) {
	base := path.Base(filepath.ToSlash(filename))
	switch base {
	case "", ".", "..", "/":
		return model.Track{}, fmt.Errorf("%w: %q", ErrBadFilename, filename)
	}

	id := "local-" + uuid.New().String()
	key := "imports/" + id + "/" + base
	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(base)))

	url, err := l.blobs.Put(ctx, key, r, size, contentType)
	if err != nil {
		return model.Track{}, fmt.Errorf("import %s: %w", base, err)
	}

	t := model.Track{
		ID:         id,
		Title:      TitleFromFilename(base),
		Artist:     ImportedArtist,
		SourceURL:  url,
		CoverURL:   ImportedCover,
		Source:     model.SourceImported,
		ObjectKey:  key,
		ImportedAt: l.clock.Now(),
	}

	l.mu.Lock()
	l.imported = append([]model.Track{t}, l.imported...)
	l.mu.Unlock()

	logger.Info("Track imported",
		logger.String("id", t.ID),
		logger.String("title", t.Title),
		logger.String("store", l.blobs.Name()))
	return t, nil
}

// Remove deletes an imported track and its blob.
func (l *Library) Remove(ctx context.Context, id string) error {
	l.mu.Lock()
	idx := -1
	for i, t := range l.imported {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		for _, t := range l.builtin {
			if t.ID == id {
				return ErrReadOnly
			}
		}
		return ErrNotFound
	}
	t := l.imported[idx]
	l.imported = append(l.imported[:idx], l.imported[idx+1:]...)
	l.mu.Unlock()

	if err := l.blobs.Delete(ctx, t.ObjectKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Warn("Failed to delete imported blob", logger.String("key", t.ObjectKey), logger.ErrorField(err))
	}
	return nil
}

// Purge removes every imported track. Imports do not outlive the process.
func (l *Library) Purge(ctx context.Context) error {
	l.mu.Lock()
	imported := l.imported
	l.imported = nil
	l.mu.Unlock()

	var errs []error
	for _, t := range imported {
		if err := l.blobs.Delete(ctx, t.ObjectKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(imported) > 0 {
		logger.Info("Purged imported tracks", logger.Int("count", len(imported)))
	}
	return errors.Join(errs...)
}
