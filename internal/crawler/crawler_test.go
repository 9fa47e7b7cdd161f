package crawler

import (
	"context"
	"net/url"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "github.com/mitch-ross/search-engine/internal/errors"
	"github.com/mitch-ross/search-engine/internal/index"
	"github.com/mitch-ross/search-engine/internal/workqueue"
)

// fakeFetcher serves pages from memory; unknown URLs fail.
type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	body, ok := f.pages[url]
	if !ok {
		return nil, xerrors.NewFetchError(url, context.Canceled)
	}
	return []byte(body), nil
}

func newCrawler(t *testing.T, pages map[string]string) (*Crawler, *index.ThreadSafeIndex, *workqueue.Queue) {
	t.Helper()
	idx := index.NewThreadSafeIndex()
	queue := workqueue.NewQueue(4, nil)
	t.Cleanup(queue.Join)
	return New(idx, queue, &fakeFetcher{pages: pages}, 0, nil), idx, queue
}

func TestCrawlBudget(t *testing.T) {
	seed := "http://example.com/"
	page := `<html><body>
		<a href="/a">a</a>
		<a href="/b">b</a>
		<a href="/c">c</a>
		<a href="/d">d</a>
		<a href="/e">e</a>
	</body></html>`
	pages := map[string]string{
		seed:                   page,
		"http://example.com/a": "alpha words",
		"http://example.com/b": "beta words",
		"http://example.com/c": "gamma words",
		"http://example.com/d": "delta words",
		"http://example.com/e": "epsilon words",
	}

	c, idx, _ := newCrawler(t, pages)
	require.NoError(t, c.Crawl(context.Background(), seed, 3))

	processed := c.Processed()
	require.Len(t, processed, 3)

	// Discovery-order admission: the seed plus its first two links.
	sort.Strings(processed)
	assert.Equal(t, []string{seed, "http://example.com/a", "http://example.com/b"}, processed)

	// Every indexed location was admitted.
	admitted := make(map[string]bool)
	for _, u := range processed {
		admitted[u] = true
	}
	for _, location := range idx.Locations() {
		assert.True(t, admitted[location], "unadmitted location %s", location)
	}
}

func TestCrawlSingleBudgetIndexesOnlySeed(t *testing.T) {
	seed := "http://example.com/"
	pages := map[string]string{
		seed: `<html><body><a href="/next">next</a>red fish red fish</body></html>`,
	}
	c, idx, _ := newCrawler(t, pages)
	require.NoError(t, c.Crawl(context.Background(), seed, 1))

	assert.Equal(t, []string{seed}, c.Processed())
	assert.Equal(t, []string{seed}, idx.Locations())
	assert.Equal(t, 5, idx.CountOf(seed)) // next red fish red fish
	assert.Equal(t, []int{2, 4}, idx.StemPositionsIn("red", seed))
}

func TestCrawlRevisitsAreNotReadmitted(t *testing.T) {
	seed := "http://example.com/"
	pages := map[string]string{
		seed:                       `<a href="/loop">loop</a>`,
		"http://example.com/loop":  `<a href="/">back</a><a href="/other">other</a>`,
		"http://example.com/other": "leaf",
	}
	c, _, _ := newCrawler(t, pages)
	require.NoError(t, c.Crawl(context.Background(), seed, 10))

	processed := c.Processed()
	sort.Strings(processed)
	assert.Equal(t, []string{seed, "http://example.com/loop", "http://example.com/other"}, processed)
}

func TestCrawlFetchFailureIsSilentlySkipped(t *testing.T) {
	seed := "http://example.com/"
	pages := map[string]string{
		seed: `<a href="/dead">dead</a><a href="/live">live</a>ok`,
		"http://example.com/live": "alive",
	}
	c, idx, _ := newCrawler(t, pages)
	require.NoError(t, c.Crawl(context.Background(), seed, 5))

	assert.True(t, idx.HasLocation(seed))
	assert.True(t, idx.HasLocation("http://example.com/live"))
	assert.False(t, idx.HasLocation("http://example.com/dead"))
	// The dead URL still consumed an admission slot.
	assert.Len(t, c.Processed(), 3)
}

func TestCrawlRejectsInvalidSeed(t *testing.T) {
	c, _, _ := newCrawler(t, nil)
	assert.Error(t, c.Crawl(context.Background(), "not a url", 1))
	assert.Error(t, c.Crawl(context.Background(), "ftp://example.com/", 1))
}

func TestNormalize(t *testing.T) {
	base, _ := url.Parse("http://example.com/dir/page.html")

	t.Run("RelativeResolution", func(t *testing.T) {
		link, ok := normalize(base, "other.html")
		require.True(t, ok)
		assert.Equal(t, "http://example.com/dir/other.html", link)
	})

	t.Run("FragmentStripped", func(t *testing.T) {
		link, ok := normalize(base, "http://example.com/page#section")
		require.True(t, ok)
		assert.Equal(t, "http://example.com/page", link)
	})

	t.Run("NonHTTPRejected", func(t *testing.T) {
		_, ok := normalize(base, "mailto:someone@example.com")
		assert.False(t, ok)
		_, ok = normalize(base, "javascript:void(0)")
		assert.False(t, ok)
	})

	t.Run("MalformedRejected", func(t *testing.T) {
		_, ok := normalize(base, "http://exa mple.com/%zz")
		assert.False(t, ok)
	})
}

func TestExtractLinksDocumentOrder(t *testing.T) {
	base, _ := url.Parse("http://example.com/")
	body := []byte(`<div><a href="/one">1</a><p><a href="/two">2</a></p></div><a href="/one">again</a>`)
	links := extractLinks(base, body)
	assert.Equal(t, []string{
		"http://example.com/one",
		"http://example.com/two",
		"http://example.com/one",
	}, links)
}

func TestExtractText(t *testing.T) {
	body := []byte(`<html><head><style>p{}</style><script>var x=1;</script></head>` +
		`<body><h1>Red</h1><p>fish, red <b>fish</b>.</p></body></html>`)
	got := extractText(body)
	assert.NotContains(t, got, "var x")
	assert.NotContains(t, got, "p{}")
	assert.Contains(t, got, "Red")
	assert.Contains(t, got, "fish, red")
}
