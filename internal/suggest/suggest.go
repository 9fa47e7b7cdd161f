// Package suggest offers "did you mean" candidates for query stems that
// matched nothing, by edit distance against the indexed vocabulary.
package suggest

import (
	"sort"

	"github.com/hbollon/go-edlib"
)

// maxDistance is the largest Levenshtein distance considered a
// plausible misspelling.
const maxDistance = 2

// Nearest returns up to max indexed stems within maxDistance of q,
// closest first; ties break lexicographically. stems must be the
// index's sorted vocabulary.
func Nearest(stems []string, q string, max int) []string {
	if max <= 0 || q == "" {
		return nil
	}
	type candidate struct {
		stem string
		dist int
	}
	var candidates []candidate
	for _, stem := range stems {
		if stem == q {
			continue
		}
		dist := edlib.LevenshteinDistance(q, stem)
		if dist <= maxDistance {
			candidates = append(candidates, candidate{stem, dist})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].stem < candidates[j].stem
	})
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.stem
	}
	return out
}
