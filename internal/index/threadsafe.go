package index

import (
	"io"

	"github.com/mitch-ross/search-engine/internal/output"
)

// ThreadSafeIndex decorates an InvertedIndex with a MultiReaderLock:
// mutators run under the write handle, observers and searches under the
// read handle. Serialisation holds the read handle for its whole
// duration so consumers see a consistent snapshot.
type ThreadSafeIndex struct {
	inner *InvertedIndex
	lock  *MultiReaderLock
}

// NewThreadSafeIndex creates an empty thread-safe index.
func NewThreadSafeIndex() *ThreadSafeIndex {
	return &ThreadSafeIndex{
		inner: NewInvertedIndex(),
		lock:  NewMultiReaderLock(),
	}
}

// Add records one occurrence under the write lock.
func (ts *ThreadSafeIndex) Add(stem, location string, position int) bool {
	ts.lock.WriteLock().Lock()
	defer ts.lock.WriteLock().Unlock()
	return ts.inner.Add(stem, location, position)
}

// AddAll merges a local index under the write lock. The merge is atomic
// with respect to concurrent readers.
func (ts *ThreadSafeIndex) AddAll(other *InvertedIndex) {
	ts.lock.WriteLock().Lock()
	defer ts.lock.WriteLock().Unlock()
	ts.inner.AddAll(other)
}

// HasStem reports whether the stem is indexed.
func (ts *ThreadSafeIndex) HasStem(stem string) bool {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.HasStem(stem)
}

// HasLocation reports whether any occurrence was accepted at the location.
func (ts *ThreadSafeIndex) HasLocation(location string) bool {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.HasLocation(location)
}

// StemHasLocation reports whether the stem appears at the location.
func (ts *ThreadSafeIndex) StemHasLocation(stem, location string) bool {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.StemHasLocation(stem, location)
}

// StemAtPosition reports whether the stem occupies the position at the
// location.
func (ts *ThreadSafeIndex) StemAtPosition(stem, location string, position int) bool {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.StemAtPosition(stem, location, position)
}

// CountOf returns the total accepted occurrences at the location.
func (ts *ThreadSafeIndex) CountOf(location string) int {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.CountOf(location)
}

// CountsSize returns the number of known locations.
func (ts *ThreadSafeIndex) CountsSize() int {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.CountsSize()
}

// IndexSize returns the number of indexed stems.
func (ts *ThreadSafeIndex) IndexSize() int {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.IndexSize()
}

// NumLocationsAtStem returns how many locations the stem appears in.
func (ts *ThreadSafeIndex) NumLocationsAtStem(stem string) int {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.NumLocationsAtStem(stem)
}

// NumStemAtLocation returns how many distinct stems appear at the
// location.
func (ts *ThreadSafeIndex) NumStemAtLocation(location string) int {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.NumStemAtLocation(location)
}

// NumPositionsAtLocationForStem returns the position-set size for the
// (stem, location) pair.
func (ts *ThreadSafeIndex) NumPositionsAtLocationForStem(stem, location string) int {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.NumPositionsAtLocationForStem(stem, location)
}

// Locations returns every known location in ascending order.
func (ts *ThreadSafeIndex) Locations() []string {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.Locations()
}

// Stems returns every indexed stem in ascending order.
func (ts *ThreadSafeIndex) Stems() []string {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.Stems()
}

// StemLocations returns the locations the stem appears in, ascending.
func (ts *ThreadSafeIndex) StemLocations(stem string) []string {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.StemLocations(stem)
}

// StemPositionsIn returns a copy of the position set for the
// (stem, location) pair.
func (ts *ThreadSafeIndex) StemPositionsIn(stem, location string) []int {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.StemPositionsIn(stem, location)
}

// ExactSearch runs an exact search under the read lock.
func (ts *ThreadSafeIndex) ExactSearch(query []string) []Result {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.ExactSearch(query)
}

// PartialSearch runs a partial search under the read lock.
func (ts *ThreadSafeIndex) PartialSearch(query []string) []Result {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.PartialSearch(query)
}

// Search dispatches to PartialSearch or ExactSearch under the read lock.
func (ts *ThreadSafeIndex) Search(query []string, partial bool) []Result {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return ts.inner.Search(query, partial)
}

// WriteCounts serialises the counts object, holding the read lock for
// the entire write.
func (ts *ThreadSafeIndex) WriteCounts(w io.Writer) error {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return output.WriteCounts(w, ts.inner)
}

// WriteInvIndex serialises the full index object, holding the read lock
// for the entire write.
func (ts *ThreadSafeIndex) WriteInvIndex(w io.Writer) error {
	ts.lock.ReadLock().Lock()
	defer ts.lock.ReadLock().Unlock()
	return output.WriteIndex(w, ts.inner)
}
