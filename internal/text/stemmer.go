// Package text provides word normalization for indexing and querying.
// Raw input is cleaned, split, and stemmed so that different forms of a
// word (search, searching, searches) land on the same index entry.
package text

import (
	"sort"
	"strings"
	"unicode"

	"github.com/surgebase/porter2"
)

// Stemmer normalizes words through the Porter2 stemming algorithm.
// Stemmers are cheap to construct; obtain one per worker rather than
// sharing a single instance across goroutines.
type Stemmer struct {
	exclusions map[string]bool // words to never stem
}

// NewStemmer creates a new stemmer. Excluded words pass through unstemmed.
func NewStemmer(exclusions []string) *Stemmer {
	m := make(map[string]bool, len(exclusions))
	for _, w := range exclusions {
		m[strings.ToLower(w)] = true
	}
	return &Stemmer{exclusions: m}
}

// Stem returns the stem of a single cleaned word.
func (s *Stemmer) Stem(word string) string {
	if s.exclusions[word] {
		return word
	}
	return porter2.Stem(word)
}

// Clean lowercases the text and removes every rune that is neither a
// letter, a digit, nor whitespace.
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokenize cleans a line and splits it into words on whitespace.
func Tokenize(line string) []string {
	return strings.Fields(Clean(line))
}

// StemLine tokenizes a line and stems each token, dropping empty stems.
func (s *Stemmer) StemLine(line string) []string {
	tokens := Tokenize(line)
	stems := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if stem := s.Stem(tok); stem != "" {
			stems = append(stems, stem)
		}
	}
	return stems
}

// UniqueStems returns the distinct stems of a line in ascending order.
// This is the query set fed to the search methods.
func (s *Stemmer) UniqueStems(line string) []string {
	seen := make(map[string]bool)
	var stems []string
	for _, stem := range s.StemLine(line) {
		if !seen[stem] {
			seen[stem] = true
			stems = append(stems, stem)
		}
	}
	sort.Strings(stems)
	return stems
}

// Canonical returns the canonical form of a query line: its distinct
// stems joined by single spaces in ascending order. The canonical form
// of a line with no usable stems is the empty string.
func (s *Stemmer) Canonical(line string) string {
	return strings.Join(s.UniqueStems(line), " ")
}
