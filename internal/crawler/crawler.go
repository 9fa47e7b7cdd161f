// Package crawler implements a bounded breadth-first web crawl that
// feeds the shared index. Each admitted URL becomes one work-queue
// task: fetch, extract links, admit new links while budget remains,
// strip the page to text, and merge a fresh local index under the
// page's fragment-stripped URL.
package crawler

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/mitch-ross/search-engine/internal/debug"
	xerrors "github.com/mitch-ross/search-engine/internal/errors"
	"github.com/mitch-ross/search-engine/internal/index"
	"github.com/mitch-ross/search-engine/internal/text"
	"github.com/mitch-ross/search-engine/internal/workqueue"
)

// Crawler coordinates one crawl. Create a new Crawler per crawl; the
// processed set and budget are not reusable.
type Crawler struct {
	idx        *index.ThreadSafeIndex
	queue      *workqueue.Queue
	fetcher    Fetcher
	limiter    *rate.Limiter // nil when unlimited
	exclusions []string

	// mu guards processed and remaining together: admission checks and
	// updates both atomically, so the budget can never over-admit.
	mu        sync.Mutex
	processed map[string]bool
	remaining int

	fetched atomic.Int64
	failed  atomic.Int64
}

// New creates a crawler over the shared index and queue. ratePerSec
// bounds fetches per second; zero means unlimited.
func New(idx *index.ThreadSafeIndex, queue *workqueue.Queue, fetcher Fetcher, ratePerSec float64, exclusions []string) *Crawler {
	c := &Crawler{
		idx:        idx,
		queue:      queue,
		fetcher:    fetcher,
		exclusions: exclusions,
		processed:  make(map[string]bool),
	}
	if ratePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return c
}

// Crawl admits the seed and processes admitted URLs until the queue
// drains. crawls is a hard upper bound on distinct admitted URLs, the
// seed included; values below 1 admit only the seed.
func (c *Crawler) Crawl(ctx context.Context, seed string, crawls int) error {
	normalized, ok := normalize(nil, seed)
	if !ok {
		return xerrors.NewFetchError(seed, errInvalidSeed)
	}
	if crawls < 1 {
		crawls = 1
	}

	c.mu.Lock()
	c.processed[normalized] = true
	c.remaining = crawls - 1
	c.mu.Unlock()

	c.queue.Execute(func() { c.process(ctx, normalized) })
	c.queue.Finish()

	debug.Printf("crawler: %d pages indexed, %d failed", c.fetched.Load(), c.failed.Load())
	return nil
}

// Processed returns the admitted URLs in no particular order.
func (c *Crawler) Processed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	urls := make([]string, 0, len(c.processed))
	for u := range c.processed {
		urls = append(urls, u)
	}
	return urls
}

// process handles one admitted URL.
func (c *Crawler) process(ctx context.Context, pageURL string) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}
	}

	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil || body == nil {
		c.failed.Add(1)
		debug.Printf("crawler: %v", err)
		return
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		c.failed.Add(1)
		return
	}

	// Admit links in discovery order while budget remains. The whole
	// check-insert-decrement-enqueue step holds the admission lock.
	for _, link := range extractLinks(base, body) {
		link := link
		c.mu.Lock()
		if !c.processed[link] && c.remaining > 0 {
			c.processed[link] = true
			c.remaining--
			c.queue.Execute(func() { c.process(ctx, link) })
		}
		c.mu.Unlock()
	}

	stemmer := text.NewStemmer(c.exclusions)
	local := index.NewInvertedIndex()
	position := 0
	for _, stem := range stemmer.StemLine(extractText(body)) {
		position++
		local.Add(stem, pageURL, position)
	}
	c.idx.AddAll(local)
	c.fetched.Add(1)
}

// errInvalidSeed reports a seed URL that is not absolute http/https.
type seedError struct{}

func (seedError) Error() string { return "seed is not an absolute http(s) URL" }

var errInvalidSeed = seedError{}
