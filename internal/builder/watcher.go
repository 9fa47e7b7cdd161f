package builder

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/mitch-ross/search-engine/internal/debug"
	"github.com/mitch-ross/search-engine/internal/index"
)

// Watcher keeps an index in sync with a directory tree after the
// initial build. Create and write events on included files re-tokenise
// the file and merge a fresh local index; a content fingerprint
// suppresses re-indexing when the bytes did not actually change
// (editors commonly fire several write events per save).
type Watcher struct {
	builder *Builder

	mu           sync.Mutex
	fingerprints map[string]uint64
}

// NewWatcher creates a watcher feeding the builder's index.
func NewWatcher(b *Builder) *Watcher {
	return &Watcher{
		builder:      b,
		fingerprints: make(map[string]uint64),
	}
}

// Watch blocks watching the tree at root until the context is
// cancelled. The initial build must already have happened; Watch only
// reacts to subsequent changes.
func (w *Watcher) Watch(ctx context.Context, root string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := addRecursive(fsw, root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			debug.Printf("watcher: %v", err)
		}
	}
}

// handle reacts to one filesystem event.
func (w *Watcher) handle(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := addRecursive(fsw, event.Name); err != nil {
				debug.Printf("watcher: watch %s: %v", event.Name, err)
			}
		}
		return
	}
	if !w.builder.cfg.IncludesFile(event.Name) {
		return
	}
	w.reindex(event.Name)
}

// reindex merges the file's current content into the index when its
// fingerprint changed since the last merge.
func (w *Watcher) reindex(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		debug.Printf("watcher: read %s: %v", path, err)
		return
	}
	sum := xxhash.Sum64(data)

	w.mu.Lock()
	previous, seen := w.fingerprints[path]
	if seen && previous == sum {
		w.mu.Unlock()
		return
	}
	w.fingerprints[path] = sum
	w.mu.Unlock()

	local := index.NewInvertedIndex()
	if err := IndexFile(path, path, local, w.builder.newStemmer()); err != nil {
		debug.Printf("watcher: %v", err)
		return
	}
	w.builder.idx.AddAll(local)
	debug.Printf("watcher: reindexed %s", path)
}

// addRecursive watches root and every directory beneath it.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				debug.Printf("watcher: add %s: %v", path, err)
			}
		}
		return nil
	})
}
