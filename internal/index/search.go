package index

import (
	"sort"
	"strings"
)

// Result is the query-local metadata for one matched location: how many
// query-stem occurrences matched there and the resulting score, the
// ratio of matches to the location's total word count.
type Result struct {
	Where string
	Count int
	Score float64
}

// resultLess is the ranking order: higher score first, then the location
// with more total words, then the lexically smaller location under the
// case-insensitive collation.
func resultLess(a, b Result, totalA, totalB int) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if totalA != totalB {
		return totalA > totalB
	}
	return locationLess(a.Where, b.Where)
}

// accumulate folds one (stem, location) posting into the running result
// for that location, keeping discovery order for locations seen first.
func (ii *InvertedIndex) accumulate(stem string, found map[string]int, order *[]Result) {
	for location, positions := range ii.index[stem] {
		i, ok := found[location]
		if !ok {
			i = len(*order)
			found[location] = i
			*order = append(*order, Result{Where: location})
		}
		r := &(*order)[i]
		r.Count += len(positions)
		r.Score = float64(r.Count) / float64(ii.counts[location])
	}
}

// rank sorts accumulated results into the ranking order.
func (ii *InvertedIndex) rank(results []Result) []Result {
	sort.Slice(results, func(i, j int) bool {
		return resultLess(results[i], results[j], ii.counts[results[i].Where], ii.counts[results[j].Where])
	})
	return results
}

// ExactSearch evaluates the query set against stems that match
// literally, returning the ranked result list.
func (ii *InvertedIndex) ExactSearch(query []string) []Result {
	found := make(map[string]int)
	var order []Result
	for _, stem := range query {
		if _, ok := ii.index[stem]; ok {
			ii.accumulate(stem, found, &order)
		}
	}
	return ii.rank(order)
}

// PartialSearch evaluates the query set treating each query stem as a
// prefix: every indexed stem it prefixes contributes its postings. The
// scan walks the sorted stem snapshot forward from the query stem and
// stops at the first non-matching stem.
func (ii *InvertedIndex) PartialSearch(query []string) []Result {
	stems := ii.Stems()
	found := make(map[string]int)
	var order []Result
	for _, prefix := range query {
		for i := sort.SearchStrings(stems, prefix); i < len(stems); i++ {
			if !strings.HasPrefix(stems[i], prefix) {
				break
			}
			ii.accumulate(stems[i], found, &order)
		}
	}
	return ii.rank(order)
}

// Search dispatches to PartialSearch or ExactSearch.
func (ii *InvertedIndex) Search(query []string, partial bool) []Result {
	if partial {
		return ii.PartialSearch(query)
	}
	return ii.ExactSearch(query)
}
