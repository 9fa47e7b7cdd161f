// Package output writes the engine's three JSON shapes: location counts,
// the full inverted index, and ranked query results. All three are
// pretty-printed with 2-space indentation and deterministic key order,
// driven by the sorted accessors of the source rather than map
// iteration.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// Source is the read surface the writers need from an index. Both the
// plain and the thread-safe index satisfy it; the thread-safe variant
// additionally holds its read lock across a whole serialisation.
type Source interface {
	Stems() []string
	Locations() []string
	StemLocations(stem string) []string
	StemPositionsIn(stem, location string) []int
	CountOf(location string) int
}

// ResultEntry is one serialised search result record.
type ResultEntry struct {
	Where string
	Count int
	Score float64
}

// FormatScore renders a score with exactly 8 fractional digits, rounding
// halves up (away from zero), matching the #0.00000000 output contract.
func FormatScore(score float64) string {
	scaled := int64(math.Floor(score*1e8 + 0.5))
	return fmt.Sprintf("%d.%08d", scaled/100000000, scaled%100000000)
}

// quote renders s as a JSON string literal.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// json.Marshal cannot fail on a string value
		return `""`
	}
	return string(b)
}

// WriteCounts writes the counts object: location → total word count,
// locations ascending.
func WriteCounts(w io.Writer, src Source) error {
	bw := bufio.NewWriter(w)
	locations := src.Locations()
	fmt.Fprint(bw, "{")
	for i, location := range locations {
		if i > 0 {
			fmt.Fprint(bw, ",")
		}
		fmt.Fprintf(bw, "\n  %s: %d", quote(location), src.CountOf(location))
	}
	if len(locations) > 0 {
		fmt.Fprint(bw, "\n")
	}
	fmt.Fprint(bw, "}\n")
	return bw.Flush()
}

// WriteIndex writes the nested index object: stem → location → position
// array, all keys and positions ascending.
func WriteIndex(w io.Writer, src Source) error {
	bw := bufio.NewWriter(w)
	stems := src.Stems()
	fmt.Fprint(bw, "{")
	for i, stem := range stems {
		if i > 0 {
			fmt.Fprint(bw, ",")
		}
		fmt.Fprintf(bw, "\n  %s: {", quote(stem))
		locations := src.StemLocations(stem)
		for j, location := range locations {
			if j > 0 {
				fmt.Fprint(bw, ",")
			}
			fmt.Fprintf(bw, "\n    %s: [", quote(location))
			for k, pos := range src.StemPositionsIn(stem, location) {
				if k > 0 {
					fmt.Fprint(bw, ",")
				}
				fmt.Fprintf(bw, "\n      %d", pos)
			}
			fmt.Fprint(bw, "\n    ]")
		}
		if len(locations) > 0 {
			fmt.Fprint(bw, "\n  ")
		}
		fmt.Fprint(bw, "}")
	}
	if len(stems) > 0 {
		fmt.Fprint(bw, "\n")
	}
	fmt.Fprint(bw, "}\n")
	return bw.Flush()
}

// WriteResults writes the results object: canonical query → ranked
// result records. Queries must already be in ascending order; records
// keep their ranked order. The count field is emitted as a quoted
// integer and the score in fixed 8-digit form.
func WriteResults(w io.Writer, queries []string, results map[string][]ResultEntry) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "{")
	for i, query := range queries {
		if i > 0 {
			fmt.Fprint(bw, ",")
		}
		fmt.Fprintf(bw, "\n  %s: [", quote(query))
		entries := results[query]
		for j, entry := range entries {
			if j > 0 {
				fmt.Fprint(bw, ",")
			}
			fmt.Fprint(bw, "\n    {")
			fmt.Fprintf(bw, "\n      \"count\": %s,", quote(strconv.Itoa(entry.Count)))
			fmt.Fprintf(bw, "\n      \"score\": %s,", quote(FormatScore(entry.Score)))
			fmt.Fprintf(bw, "\n      \"where\": %s", quote(entry.Where))
			fmt.Fprint(bw, "\n    }")
		}
		if len(entries) > 0 {
			fmt.Fprint(bw, "\n  ")
		}
		fmt.Fprint(bw, "]")
	}
	if len(queries) > 0 {
		fmt.Fprint(bw, "\n")
	}
	fmt.Fprint(bw, "}\n")
	return bw.Flush()
}

// ToFile opens path, hands the file to write, and closes it, preferring
// the write error over the close error.
func ToFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	werr := write(f)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}
