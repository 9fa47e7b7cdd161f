// Command searchengine builds a ranked inverted index from a text tree
// or a bounded web crawl and answers query files against it, writing
// counts, index, and results as pretty-printed JSON.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mitch-ross/search-engine/internal/builder"
	"github.com/mitch-ross/search-engine/internal/config"
	"github.com/mitch-ross/search-engine/internal/crawler"
	"github.com/mitch-ross/search-engine/internal/debug"
	"github.com/mitch-ross/search-engine/internal/index"
	"github.com/mitch-ross/search-engine/internal/output"
	"github.com/mitch-ross/search-engine/internal/searcher"
	"github.com/mitch-ross/search-engine/internal/suggest"
	"github.com/mitch-ross/search-engine/internal/workqueue"
)

const fetchTimeout = 30 * time.Second

func main() {
	app := &cli.App{
		Name:  "searchengine",
		Usage: "Build a ranked inverted-index search engine over text files or a crawled site",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "text",
				Usage: "Build the index from a text file or directory tree",
			},
			&cli.StringFlag{
				Name:  "html",
				Usage: "Build the index by crawling from a seed URL",
			},
			&cli.IntFlag{
				Name:  "crawl",
				Usage: "Maximum distinct pages to admit during a crawl",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "query",
				Usage: "Evaluate the queries in this file, one per line",
			},
			&cli.BoolFlag{
				Name:  "partial",
				Usage: "Treat each query stem as a prefix",
			},
			&cli.IntFlag{
				Name:  "threads",
				Usage: "Worker count; values below 1 fall back to 5",
			},
			&cli.StringFlag{
				Name:        "counts",
				Usage:       "Write the location counts JSON to `PATH`",
				DefaultText: "counts.json",
			},
			&cli.StringFlag{
				Name:        "index",
				Usage:       "Write the inverted index JSON to `PATH`",
				DefaultText: "index.json",
			},
			&cli.StringFlag{
				Name:        "results",
				Usage:       "Write the search results JSON to `PATH`",
				DefaultText: "results.json",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Optional TOML config file supplying defaults",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep watching the -text tree and re-index changed files until interrupted",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show debug information",
			},
		},
		Action: run,
	}

	// Stage failures are reported on stderr without aborting the rest of
	// the pipeline, so the process itself always exits 0.
	if err := app.Run(os.Args); err != nil {
		log.Printf("Error: %v", err)
	}
}

// loadConfigWithOverrides loads configuration and applies CLI flag
// overrides.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("threads") {
		cfg.Threads = c.Int("threads")
		if cfg.Threads < 1 {
			cfg.Threads = config.DefaultThreads
		}
	}
	if c.IsSet("crawl") {
		cfg.Crawl = c.Int("crawl")
	}
	// A crawl is always threaded.
	if c.IsSet("html") && cfg.Threads < 1 {
		cfg.Threads = config.DefaultThreads
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// outputPath resolves an output flag to its target path, or "" when the
// flag was not given.
func outputPath(c *cli.Context, name, fallback string) string {
	if !c.IsSet(name) {
		return ""
	}
	if path := c.String(name); path != "" {
		return path
	}
	return fallback
}

func run(c *cli.Context) error {
	debug.SetEnabled(c.Bool("verbose") || debug.IsEnabled())
	log.SetFlags(0)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		log.Printf("Error: %v", err)
		return nil
	}

	idx := index.NewThreadSafeIndex()
	var queue *workqueue.Queue
	if cfg.Threads > 0 {
		queue = workqueue.NewQueue(cfg.Threads, log.Printf)
		defer queue.Join()
	}

	var bld *builder.Builder
	if textPath := c.String("text"); textPath != "" {
		if queue != nil {
			bld = builder.NewParallel(cfg, idx, queue)
		} else {
			bld = builder.New(cfg, idx)
		}
		if err := bld.Build(textPath); err != nil {
			log.Printf("Error: invalid file %s: %v", textPath, err)
		}
	}

	if seed := c.String("html"); seed != "" {
		fetcher := crawler.NewHTTPFetcher(fetchTimeout)
		wc := crawler.New(idx, queue, fetcher, cfg.RateLimit, cfg.StemExclusions)
		if err := wc.Crawl(context.Background(), seed, cfg.Crawl); err != nil {
			log.Printf("Error: invalid seed %s: %v", seed, err)
		}
	}

	var results *searcher.Searcher
	if queryPath := c.String("query"); queryPath != "" {
		if queue != nil {
			results = searcher.NewThreaded(idx, cfg.StemExclusions, queue)
		} else {
			results = searcher.New(idx, cfg.StemExclusions)
		}
		if err := results.SearchFile(queryPath, c.Bool("partial")); err != nil {
			log.Printf("Error: invalid query file %s: %v", queryPath, err)
		} else {
			suggestEmpties(idx, results)
		}
	}

	writeOutputs(c, cfg, idx, results)

	if c.Bool("watch") && bld != nil {
		watchCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log.Printf("watching %s; interrupt to stop", c.String("text"))
		watcher := builder.NewWatcher(bld)
		if err := watcher.Watch(watchCtx, c.String("text")); err != nil && watchCtx.Err() == nil {
			log.Printf("Error: watch failed: %v", err)
		}
		// Refresh the outputs so the files reflect everything indexed
		// while watching.
		writeOutputs(c, cfg, idx, results)
	}

	return nil
}

// writeOutputs writes whichever of the three JSON outputs were
// requested. The writes are independent, so they run concurrently; each
// failure is reported and the others proceed.
func writeOutputs(c *cli.Context, cfg *config.Config, idx *index.ThreadSafeIndex, results *searcher.Searcher) {
	var g errgroup.Group
	if path := outputPath(c, "counts", cfg.Output.Counts); path != "" {
		g.Go(func() error {
			writeFile(path, idx.WriteCounts)
			return nil
		})
	}
	if path := outputPath(c, "index", cfg.Output.Index); path != "" {
		g.Go(func() error {
			writeFile(path, idx.WriteInvIndex)
			return nil
		})
	}
	if path := outputPath(c, "results", cfg.Output.Results); path != "" {
		write := func(w io.Writer) error {
			_, err := io.WriteString(w, "{}\n")
			return err
		}
		if results != nil {
			write = results.WriteResults
		}
		g.Go(func() error {
			writeFile(path, write)
			return nil
		})
	}
	_ = g.Wait()
}

// writeFile runs one serialiser against a freshly created file,
// reporting failures on stderr.
func writeFile(path string, write func(io.Writer) error) {
	if err := output.ToFile(path, write); err != nil {
		log.Printf("Error: unable to write %s: %v", path, err)
	}
}

// suggestEmpties prints nearest-stem suggestions for queries that
// matched nothing.
func suggestEmpties(idx *index.ThreadSafeIndex, results *searcher.Searcher) {
	empties := results.EmptyQueries()
	if len(empties) == 0 {
		return
	}
	stems := idx.Stems()
	for _, canonical := range empties {
		seen := make(map[string]bool)
		var candidates []string
		for _, q := range strings.Fields(canonical) {
			for _, s := range suggest.Nearest(stems, q, 3) {
				if !seen[s] {
					seen[s] = true
					candidates = append(candidates, s)
				}
			}
		}
		if len(candidates) > 0 {
			fmt.Fprintf(os.Stderr, "no results for %q; did you mean: %v\n", canonical, candidates)
		}
	}
}
