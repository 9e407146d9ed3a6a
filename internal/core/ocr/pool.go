package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// Pool recognizes the pages of one run concurrently. Workers are started per
// call and gone once every page has settled.
type Pool struct {
	engine  Engine
	logger  *slog.Logger
	workers int
	timeout time.Duration
}

type Option func(*Pool)

func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithPageTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewPool(engine Engine, logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		engine:  engine,
		logger:  logger,
		workers: 7,
		timeout: 2 * time.Minute,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type pageJob struct {
	index int
	page  entity.Page
}

// RecognizeAll returns one result per page in input order. A failing page
// carries a *common.PageError and never stops its siblings.
func (p *Pool) RecognizeAll(ctx context.Context, pages []entity.Page) []entity.PageResult {
	results := make([]entity.PageResult, len(pages))
	if len(pages) == 0 {
		return results
	}

	workers := p.workers
	if workers > len(pages) {
		workers = len(pages)
	}
	jobs := make(chan pageJob, len(pages))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobs {
				results[job.index] = p.recognize(ctx, workerID, job.page)
			}
		}(i + 1)
	}

	for i, pg := range pages {
		jobs <- pageJob{index: i, page: pg}
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.logger.Info("ocr pool drained", "pages", len(pages), "failed", failed, "workers", workers)
	return results
}

func (p *Pool) recognize(ctx context.Context, workerID int, page entity.Page) (res entity.PageResult) {
	res.PageID = page.ID
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Words = nil
			res.Err = &common.PageError{PageID: page.ID, Cause: fmt.Errorf("ocr panic: %v", r)}
			p.logger.Error("page recognition panicked", "worker_id", workerID, "page_id", page.ID, "panic", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = &common.PageError{PageID: page.ID, Cause: err}
		return res
	}

	pageCtx, cancel := common.WithTimeout(common.WithPageID(ctx, page.ID), p.timeout)
	defer cancel()

	words, err := p.engine.Recognize(pageCtx, page)
	if err != nil {
		res.Err = &common.PageError{PageID: page.ID, Cause: err}
		p.logger.Warn("page recognition failed", "worker_id", workerID, "page_id", page.ID, "error", err)
		return res
	}
	res.Words = words
	p.logger.Debug("page recognized", "worker_id", workerID, "page_id", page.ID, "words", len(words), "duration_ms", time.Since(start).Milliseconds())
	return res
}
