// Package searcher maps query lines to ranked result lists. Each line
// is reduced to its canonical stem form, which keys a memoisation map so
// identical queries are evaluated against the index exactly once, even
// when many workers race on the same line.
package searcher

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mitch-ross/search-engine/internal/debug"
	xerrors "github.com/mitch-ross/search-engine/internal/errors"
	"github.com/mitch-ross/search-engine/internal/index"
	"github.com/mitch-ross/search-engine/internal/output"
	"github.com/mitch-ross/search-engine/internal/text"
	"github.com/mitch-ross/search-engine/internal/workqueue"
)

// Searcher evaluates query lines against a shared index. With a queue
// each line becomes one task; without one lines are evaluated inline.
type Searcher struct {
	idx        *index.ThreadSafeIndex
	exclusions []string
	queue      WorkQueue

	mu sync.Mutex
	// results maps canonical query to its ranked list. A key holding nil
	// is a claim: some task is computing that query right now.
	results map[string][]index.Result
}

// WorkQueue is the slice of the pool API the searcher uses.
type WorkQueue interface {
	Execute(task workqueue.Task)
	Finish()
}

// New creates a serial searcher.
func New(idx *index.ThreadSafeIndex, exclusions []string) *Searcher {
	return &Searcher{
		idx:        idx,
		exclusions: exclusions,
		results:    make(map[string][]index.Result),
	}
}

// NewThreaded creates a searcher that dispatches each query line onto
// the queue.
func NewThreaded(idx *index.ThreadSafeIndex, exclusions []string, queue WorkQueue) *Searcher {
	s := New(idx, exclusions)
	s.queue = queue
	return s
}

// newStemmer builds a stemmer for one query or task.
func (s *Searcher) newStemmer() *text.Stemmer {
	return text.NewStemmer(s.exclusions)
}

// Search evaluates one query line. Lines whose canonical form is empty
// are ignored. In threaded mode the work is enqueued; callers drain the
// queue via the SearchFile path or the queue itself.
func (s *Searcher) Search(line string, partial bool) {
	stemmer := s.newStemmer()
	query := stemmer.UniqueStems(line)
	if len(query) == 0 {
		return
	}
	canonical := strings.Join(query, " ")

	if s.queue == nil {
		s.mu.Lock()
		_, done := s.results[canonical]
		s.mu.Unlock()
		if done {
			return
		}
		found := s.idx.Search(query, partial)
		if found == nil {
			found = []index.Result{}
		}
		s.mu.Lock()
		s.results[canonical] = found
		s.mu.Unlock()
		return
	}

	s.queue.Execute(func() {
		// Claim the canonical key under the results lock; whoever claims
		// runs the search outside the lock and installs the real list.
		s.mu.Lock()
		if _, claimed := s.results[canonical]; claimed {
			s.mu.Unlock()
			return
		}
		s.results[canonical] = nil
		s.mu.Unlock()

		found := s.idx.Search(query, partial)
		if found == nil {
			found = []index.Result{}
		}

		s.mu.Lock()
		s.results[canonical] = found
		s.mu.Unlock()
	})
}

// SearchFile reads the query file line by line and evaluates each line.
// In threaded mode it drains the queue before returning.
func (s *Searcher) SearchFile(path string, partial bool) error {
	f, err := os.Open(path)
	if err != nil {
		return xerrors.NewQueryError(path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		s.Search(scanner.Text(), partial)
	}
	if err := scanner.Err(); err != nil {
		return xerrors.NewQueryError(path, err)
	}
	if s.queue != nil {
		s.queue.Finish()
	}
	debug.Printf("searcher: %d distinct queries", s.Size())
	return nil
}

// HasQuery reports whether the line's canonical form has a stored
// result.
func (s *Searcher) HasQuery(line string) bool {
	canonical := s.newStemmer().Canonical(line)
	if canonical == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	found, ok := s.results[canonical]
	return ok && found != nil
}

// GetResults returns a copy of the ranked list for the line's canonical
// form, or an empty list when the query is absent, still computing, or
// empty.
func (s *Searcher) GetResults(line string) []index.Result {
	canonical := s.newStemmer().Canonical(line)
	if canonical == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	found := s.results[canonical]
	out := make([]index.Result, len(found))
	copy(out, found)
	return out
}

// Size returns the number of stored queries.
func (s *Searcher) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// EmptyQueries returns the canonical queries that produced no results,
// ascending. The CLI uses these to offer spelling suggestions.
func (s *Searcher) EmptyQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var empty []string
	for canonical, found := range s.results {
		if len(found) == 0 {
			empty = append(empty, canonical)
		}
	}
	sort.Strings(empty)
	return empty
}

// WriteResults serialises a stable snapshot of the results map, queries
// ascending, each list in ranked order.
func (s *Searcher) WriteResults(w io.Writer) error {
	s.mu.Lock()
	queries := make([]string, 0, len(s.results))
	entries := make(map[string][]output.ResultEntry, len(s.results))
	for canonical, found := range s.results {
		queries = append(queries, canonical)
		list := make([]output.ResultEntry, len(found))
		for i, r := range found {
			list[i] = output.ResultEntry{Where: r.Where, Count: r.Count, Score: r.Score}
		}
		entries[canonical] = list
	}
	s.mu.Unlock()

	sort.Strings(queries)
	return output.WriteResults(w, queries, entries)
}
