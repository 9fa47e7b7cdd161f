// Package index implements the inverted-index data model at the center
// of the search engine: a sorted mapping from stem to location to
// position set, a per-location word count, ranked exact and partial
// search over that structure, and a thread-safe decorator guarding it
// with a multi-reader lock.
package index

import (
	"sort"
	"strings"
)

// InvertedIndex maps each stem to the locations it appears in and the
// 1-based positions it occupies there, alongside a per-location count of
// all accepted stem occurrences. Positions within a (stem, location)
// pair stay strictly ascending and duplicate-free; counts[L] equals the
// total position-set size across all stems at L.
//
// InvertedIndex is not safe for concurrent use; wrap it in a
// ThreadSafeIndex when sharing across goroutines.
type InvertedIndex struct {
	index  map[string]map[string][]int
	counts map[string]int
}

// NewInvertedIndex creates an empty index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		index:  make(map[string]map[string][]int),
		counts: make(map[string]int),
	}
}

// locationLess orders locations case-insensitively, with a case-sensitive
// tiebreak so the order stays total when two locations differ only by case.
func locationLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// insertPosition inserts pos into the sorted slice, reporting whether the
// slice was modified. Duplicates are rejected.
func insertPosition(positions []int, pos int) ([]int, bool) {
	i := sort.SearchInts(positions, pos)
	if i < len(positions) && positions[i] == pos {
		return positions, false
	}
	positions = append(positions, 0)
	copy(positions[i+1:], positions[i:])
	positions[i] = pos
	return positions, true
}

// Add records one occurrence of stem at the given location and 1-based
// position. The location's count only grows when the position set was
// actually modified, so replaying a duplicate (stem, location, position)
// triple leaves the index unchanged. Reports whether the occurrence was
// accepted.
func (ii *InvertedIndex) Add(stem, location string, position int) bool {
	locs, ok := ii.index[stem]
	if !ok {
		locs = make(map[string][]int)
		ii.index[stem] = locs
	}
	positions, modified := insertPosition(locs[location], position)
	locs[location] = positions
	if modified {
		ii.counts[location]++
	}
	return modified
}

// AddAll merges other into the receiver. Absent stems and absent
// locations are transplanted wholesale; overlapping position sets are
// unioned. Counts are merged as plain sums, so the two indexes must not
// have independently counted occurrences at a shared location — the
// build pipeline guarantees this by giving each input a fresh local
// index.
func (ii *InvertedIndex) AddAll(other *InvertedIndex) {
	for stem, otherLocs := range other.index {
		locs, ok := ii.index[stem]
		if !ok {
			ii.index[stem] = otherLocs
			continue
		}
		for location, otherPositions := range otherLocs {
			positions, ok := locs[location]
			if !ok {
				locs[location] = otherPositions
				continue
			}
			for _, pos := range otherPositions {
				positions, _ = insertPosition(positions, pos)
			}
			locs[location] = positions
		}
	}
	for location, count := range other.counts {
		ii.counts[location] += count
	}
}

// HasStem reports whether the stem is indexed.
func (ii *InvertedIndex) HasStem(stem string) bool {
	_, ok := ii.index[stem]
	return ok
}

// HasLocation reports whether any occurrence was accepted at the location.
func (ii *InvertedIndex) HasLocation(location string) bool {
	_, ok := ii.counts[location]
	return ok
}

// StemHasLocation reports whether the stem appears at the location.
func (ii *InvertedIndex) StemHasLocation(stem, location string) bool {
	_, ok := ii.index[stem][location]
	return ok
}

// StemAtPosition reports whether the stem occupies the position at the
// location.
func (ii *InvertedIndex) StemAtPosition(stem, location string, position int) bool {
	positions := ii.index[stem][location]
	i := sort.SearchInts(positions, position)
	return i < len(positions) && positions[i] == position
}

// CountOf returns the total accepted occurrences at the location, or
// zero when the location is unknown.
func (ii *InvertedIndex) CountOf(location string) int {
	return ii.counts[location]
}

// CountsSize returns the number of known locations.
func (ii *InvertedIndex) CountsSize() int {
	return len(ii.counts)
}

// IndexSize returns the number of indexed stems.
func (ii *InvertedIndex) IndexSize() int {
	return len(ii.index)
}

// NumLocationsAtStem returns how many locations the stem appears in.
func (ii *InvertedIndex) NumLocationsAtStem(stem string) int {
	return len(ii.index[stem])
}

// NumStemAtLocation returns how many distinct stems appear at the
// location.
func (ii *InvertedIndex) NumStemAtLocation(location string) int {
	n := 0
	for _, locs := range ii.index {
		if _, ok := locs[location]; ok {
			n++
		}
	}
	return n
}

// NumPositionsAtLocationForStem returns the position-set size for the
// (stem, location) pair.
func (ii *InvertedIndex) NumPositionsAtLocationForStem(stem, location string) int {
	return len(ii.index[stem][location])
}

// Locations returns every known location in ascending order.
func (ii *InvertedIndex) Locations() []string {
	locations := make([]string, 0, len(ii.counts))
	for location := range ii.counts {
		locations = append(locations, location)
	}
	sort.Slice(locations, func(i, j int) bool { return locationLess(locations[i], locations[j]) })
	return locations
}

// Stems returns every indexed stem in ascending order.
func (ii *InvertedIndex) Stems() []string {
	stems := make([]string, 0, len(ii.index))
	for stem := range ii.index {
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	return stems
}

// StemLocations returns the locations the stem appears in, ascending.
func (ii *InvertedIndex) StemLocations(stem string) []string {
	locs := ii.index[stem]
	locations := make([]string, 0, len(locs))
	for location := range locs {
		locations = append(locations, location)
	}
	sort.Slice(locations, func(i, j int) bool { return locationLess(locations[i], locations[j]) })
	return locations
}

// StemPositionsIn returns a copy of the position set for the
// (stem, location) pair, ascending. Missing pairs yield an empty slice.
func (ii *InvertedIndex) StemPositionsIn(stem, location string) []int {
	positions := ii.index[stem][location]
	out := make([]int, len(positions))
	copy(out, positions)
	return out
}
