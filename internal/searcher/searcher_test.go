package searcher

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitch-ross/search-engine/internal/index"
	"github.com/mitch-ross/search-engine/internal/workqueue"
)

// redFishIndex indexes a.txt as "Red fish, red fish.".
func redFishIndex() *index.ThreadSafeIndex {
	idx := index.NewThreadSafeIndex()
	idx.Add("red", "a.txt", 1)
	idx.Add("fish", "a.txt", 2)
	idx.Add("red", "a.txt", 3)
	idx.Add("fish", "a.txt", 4)
	return idx
}

func TestSerialSearch(t *testing.T) {
	t.Run("ExactResult", func(t *testing.T) {
		s := New(redFishIndex(), nil)
		s.Search("red fish", false)

		require.Equal(t, 1, s.Size())
		results := s.GetResults("red fish")
		require.Len(t, results, 1)
		assert.Equal(t, "a.txt", results[0].Where)
		assert.Equal(t, 4, results[0].Count)
		assert.InDelta(t, 1.0, results[0].Score, 1e-12)
	})

	t.Run("EmptyCanonicalIgnored", func(t *testing.T) {
		s := New(redFishIndex(), nil)
		s.Search("!!! ...", false)
		assert.Zero(t, s.Size())
	})

	t.Run("MemoisesByCanonicalForm", func(t *testing.T) {
		s := New(redFishIndex(), nil)
		s.Search("red fish", false)
		s.Search("FISH red", false)
		s.Search("fish fish red", false)
		assert.Equal(t, 1, s.Size())
	})

	t.Run("Observers", func(t *testing.T) {
		s := New(redFishIndex(), nil)
		s.Search("red", false)
		assert.True(t, s.HasQuery("RED"))
		assert.False(t, s.HasQuery("dog"))
		assert.Empty(t, s.GetResults("dog"))
		assert.Empty(t, s.GetResults(""))
	})
}

func TestThreadedSearchAtMostOnce(t *testing.T) {
	idx := redFishIndex()
	queue := workqueue.NewQueue(8, nil)
	defer queue.Join()
	s := NewThreaded(idx, nil, queue)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Search("red fish", true)
		}()
	}
	wg.Wait()
	queue.Finish()

	require.Equal(t, 1, s.Size())
	results := s.GetResults("fish red")
	require.Len(t, results, 1)
	assert.Equal(t, 4, results[0].Count)
}

func TestSearchFile(t *testing.T) {
	dir := t.TempDir()
	queryPath := filepath.Join(dir, "queries.txt")
	require.NoError(t, os.WriteFile(queryPath, []byte("red fish\n\ndog\nred fish\n"), 0o644))

	t.Run("Serial", func(t *testing.T) {
		s := New(redFishIndex(), nil)
		require.NoError(t, s.SearchFile(queryPath, false))
		assert.Equal(t, 2, s.Size()) // "fish red" and "dog"
		assert.Empty(t, s.GetResults("dog"))
		assert.Equal(t, []string{"dog"}, s.EmptyQueries())
	})

	t.Run("Threaded", func(t *testing.T) {
		queue := workqueue.NewQueue(4, nil)
		defer queue.Join()
		s := NewThreaded(redFishIndex(), nil, queue)
		require.NoError(t, s.SearchFile(queryPath, false))
		assert.Equal(t, 2, s.Size())
		assert.Len(t, s.GetResults("red fish"), 1)
	})

	t.Run("MissingFile", func(t *testing.T) {
		s := New(redFishIndex(), nil)
		assert.Error(t, s.SearchFile(filepath.Join(dir, "missing.txt"), false))
	})
}

func TestWriteResults(t *testing.T) {
	s := New(redFishIndex(), nil)
	s.Search("red fish", false)
	s.Search("dog", false)

	var buf bytes.Buffer
	require.NoError(t, s.WriteResults(&buf))
	got := buf.String()

	assert.True(t, strings.Index(got, `"dog"`) < strings.Index(got, `"fish red"`),
		"queries must be in ascending order:\n%s", got)
	assert.Contains(t, got, `"count": "4"`)
	assert.Contains(t, got, `"score": "1.00000000"`)
	assert.Contains(t, got, `"where": "a.txt"`)
	assert.Contains(t, got, `"dog": []`)
}
