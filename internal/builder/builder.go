// Package builder populates an inverted index from a filesystem tree.
// Directories are traversed recursively and every included text file is
// tokenised, stemmed, and added with file-wide 1-based positions. In
// parallel mode each file becomes one work-queue task that fills a
// fresh local index and merges it into the shared one, so the shared
// write lock is taken once per file instead of once per word.
package builder

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitch-ross/search-engine/internal/config"
	"github.com/mitch-ross/search-engine/internal/debug"
	xerrors "github.com/mitch-ross/search-engine/internal/errors"
	"github.com/mitch-ross/search-engine/internal/index"
	"github.com/mitch-ross/search-engine/internal/text"
	"github.com/mitch-ross/search-engine/internal/workqueue"
)

// maxLineBytes bounds a single input line for the scanner.
const maxLineBytes = 1 << 20

// Adder is the mutation surface the builder needs from an index. Both
// the plain and thread-safe index satisfy it.
type Adder interface {
	Add(stem, location string, position int) bool
}

// Builder walks paths and feeds an index. With a queue it runs one task
// per file; without one it writes into the index on the calling
// goroutine.
type Builder struct {
	cfg   *config.Config
	idx   *index.ThreadSafeIndex
	queue *workqueue.Queue
}

// New creates a serial builder.
func New(cfg *config.Config, idx *index.ThreadSafeIndex) *Builder {
	return &Builder{cfg: cfg, idx: idx}
}

// NewParallel creates a builder that dispatches one task per file onto
// the queue.
func NewParallel(cfg *config.Config, idx *index.ThreadSafeIndex, queue *workqueue.Queue) *Builder {
	return &Builder{cfg: cfg, idx: idx, queue: queue}
}

// Build indexes the file or directory tree at root. Directory entries
// are filtered by the include rule; a file given directly is always
// processed. In parallel mode Build drains the queue before returning.
func (b *Builder) Build(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return xerrors.NewFileError("stat", root, err)
	}
	if !info.IsDir() {
		b.dispatch(root)
	} else if err := b.walk(root); err != nil {
		return err
	}
	if b.queue != nil {
		b.queue.Finish()
	}
	return nil
}

// walk traverses the tree on the calling goroutine, dispatching every
// included regular file.
func (b *Builder) walk(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			debug.Printf("builder: skipping %s: %v", path, walkErr)
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if b.cfg.IncludesFile(path) {
			b.dispatch(path)
		}
		return nil
	})
	if err != nil {
		return xerrors.NewFileError("walk", root, err)
	}
	return nil
}

// dispatch indexes one file, inline or as a queue task.
func (b *Builder) dispatch(path string) {
	if b.queue == nil {
		if err := IndexFile(path, path, b.idx, b.newStemmer()); err != nil {
			debug.Printf("builder: %v", err)
		}
		return
	}
	b.queue.Execute(func() {
		local := index.NewInvertedIndex()
		if err := IndexFile(path, path, local, b.newStemmer()); err != nil {
			debug.Printf("builder: %v", err)
			return
		}
		b.idx.AddAll(local)
	})
}

// newStemmer builds a stemmer for one task; stemmers are not shared
// across goroutines.
func (b *Builder) newStemmer() *text.Stemmer {
	return text.NewStemmer(b.cfg.StemExclusions)
}

// IndexFile reads the file line by line, stemming each token and adding
// it at the given location. Positions count only non-empty stems and
// increase monotonically across the whole file, never resetting between
// lines.
func IndexFile(path, location string, dst Adder, stemmer *text.Stemmer) error {
	f, err := os.Open(path)
	if err != nil {
		return xerrors.NewFileError("open", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	position := 0
	for scanner.Scan() {
		for _, stem := range stemmer.StemLine(scanner.Text()) {
			position++
			dst.Add(stem, location, position)
		}
	}
	if err := scanner.Err(); err != nil {
		return xerrors.NewFileError("read", path, err)
	}
	return nil
}
