// Package schedule runs the page parse fan-out. Workers parse pages
// independently and in any order; a sequence gate re-orders their results so
// the builder always sees strictly ascending pages.
package schedule

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"pairing_parser/internal/builder"
	"pairing_parser/internal/pageparser"
	"pairing_parser/internal/pairing"
)

// Options controls one document run.
type Options struct {
	Workers   int // parse workers; capped at GOMAXPROCS-ish, minimum 1
	StartPage int // first page to parse, 1-indexed
	EndPage   int // last page, inclusive

	// OnPageError observes per-page faults. The page still becomes a gap.
	OnPageError func(page int, err error)
}

type pageResult struct {
	page int
	res  pageparser.Result
	err  error
}

// Run parses pages [StartPage, EndPage] from the provider and feeds the
// builder in page order. Per-page faults become builder gaps; an invalid
// page range or a sink failure aborts the run.
func Run(ctx context.Context, provider pairing.PageProvider, opts Options, b *builder.Builder) error {
	if opts.StartPage < 1 {
		return fmt.Errorf("start page %d: pages are 1-indexed", opts.StartPage)
	}
	if opts.EndPage < opts.StartPage {
		return fmt.Errorf("empty page range %d-%d", opts.StartPage, opts.EndPage)
	}

	workers := opts.Workers
	if max := runtime.NumCPU(); workers > max {
		workers = max
	}
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan pageResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				lines, err := provider.PageText(ctx, page)
				pr := pageResult{page: page, err: err}
				if err == nil {
					pr.res = pageparser.ParsePage(page, lines)
				}
				select {
				case results <- pr:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for page := opts.StartPage; page <= opts.EndPage; page++ {
			select {
			case jobs <- page:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Sequence gate: buffer out-of-order results, release contiguously.
	buf := make(map[int]pageResult)
	expect := opts.StartPage
	var runErr error
	for pr := range results {
		if runErr != nil {
			continue // drain
		}
		buf[pr.page] = pr
		for {
			next, ok := buf[expect]
			if !ok {
				break
			}
			delete(buf, expect)
			var err error
			if next.err != nil {
				if opts.OnPageError != nil {
					opts.OnPageError(next.page, next.err)
				}
				err = b.IngestGap(next.page)
			} else {
				err = b.Ingest(next.res)
			}
			if err != nil {
				runErr = err
				cancel()
				break
			}
			expect++
		}
	}
	if runErr != nil {
		return runErr
	}
	return ctx.Err()
}
