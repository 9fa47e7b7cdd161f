package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a fixed two-stem index snapshot.
type fakeSource struct{}

func (fakeSource) Stems() []string     { return []string{"fish", "red"} }
func (fakeSource) Locations() []string { return []string{"a.txt", "b.txt"} }
func (fakeSource) StemLocations(stem string) []string {
	if stem == "fish" {
		return []string{"a.txt"}
	}
	return []string{"a.txt", "b.txt"}
}
func (fakeSource) StemPositionsIn(stem, location string) []int {
	if stem == "fish" {
		return []int{2, 4}
	}
	if location == "a.txt" {
		return []int{1, 3}
	}
	return []int{1}
}
func (fakeSource) CountOf(location string) int {
	if location == "a.txt" {
		return 4
	}
	return 1
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "1.00000000", FormatScore(1))
	assert.Equal(t, "0.50000000", FormatScore(0.5))
	assert.Equal(t, "0.33333333", FormatScore(1.0/3.0))
	assert.Equal(t, "0.66666667", FormatScore(2.0/3.0))
	assert.Equal(t, "0.00000000", FormatScore(0))
	assert.Equal(t, "0.12500000", FormatScore(0.125))
}

func TestWriteCounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCounts(&buf, fakeSource{}))
	assert.Equal(t, `{
  "a.txt": 4,
  "b.txt": 1
}
`, buf.String())
}

func TestWriteCountsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCounts(&buf, emptySource{}))
	assert.Equal(t, "{}\n", buf.String())
}

type emptySource struct{}

func (emptySource) Stems() []string                      { return nil }
func (emptySource) Locations() []string                  { return nil }
func (emptySource) StemLocations(string) []string        { return nil }
func (emptySource) StemPositionsIn(string, string) []int { return nil }
func (emptySource) CountOf(string) int                   { return 0 }

func TestWriteIndex(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIndex(&buf, fakeSource{}))
	assert.Equal(t, `{
  "fish": {
    "a.txt": [
      2,
      4
    ]
  },
  "red": {
    "a.txt": [
      1,
      3
    ],
    "b.txt": [
      1
    ]
  }
}
`, buf.String())
}

func TestWriteResults(t *testing.T) {
	queries := []string{"dog", "fish red"}
	entries := map[string][]ResultEntry{
		"dog": {},
		"fish red": {
			{Where: "a.txt", Count: 4, Score: 1},
			{Where: "b.txt", Count: 1, Score: 0.25},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, queries, entries))
	assert.Equal(t, `{
  "dog": [],
  "fish red": [
    {
      "count": "4",
      "score": "1.00000000",
      "where": "a.txt"
    },
    {
      "count": "1",
      "score": "0.25000000",
      "where": "b.txt"
    }
  ]
}
`, buf.String())
}
