// Package worker runs the fixed-size pool of crawl goroutines, each
// looping over the frontier until it drains.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/icscrawl/crawler/internal/config"
	"github.com/icscrawl/crawler/internal/content"
	"github.com/icscrawl/crawler/internal/fetcher"
	"github.com/icscrawl/crawler/internal/frontier"
	"github.com/icscrawl/crawler/internal/logging"
	"github.com/icscrawl/crawler/pkg/limiter"
	"github.com/icscrawl/crawler/pkg/retry"
	"github.com/icscrawl/crawler/pkg/timeutil"
	"go.uber.org/zap"
)

// Pool runs config.ThreadsCount() worker goroutines over a shared
// frontier, fetcher, content filter, and per-host rate limiter.
type Pool struct {
	cfg         config.Config
	frontier    *frontier.Frontier
	fetcher     *fetcher.Fetcher
	filter      *content.Filter
	hostLimiter *limiter.HostLimiter
	sleeper     timeutil.Sleeper
	logger      logging.Logger
}

func NewPool(
	cfg config.Config,
	frontier *frontier.Frontier,
	fetcher *fetcher.Fetcher,
	filter *content.Filter,
	hostLimiter *limiter.HostLimiter,
	sleeper timeutil.Sleeper,
	logger logging.Logger,
) *Pool {
	return &Pool{
		cfg:         cfg,
		frontier:    frontier,
		fetcher:     fetcher,
		filter:      filter,
		hostLimiter: hostLimiter,
		sleeper:     sleeper,
		logger:      logger,
	}
}

// Run spawns cfg.ThreadsCount() workers and blocks until every one has
// drained the frontier and exited.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.cfg.ThreadsCount(); i++ {
		wg.Add(1)
		workerID := i
		go func() {
			defer wg.Done()
			p.runLoop(ctx, workerID)
		}()
	}
	wg.Wait()
}

func (p *Pool) runLoop(ctx context.Context, workerID int) {
	logger := p.logger.With(zap.Int("worker", workerID))

	for {
		if ctx.Err() != nil {
			return
		}

		url, ok := p.frontier.GetTBDURL()
		if !ok {
			p.sleeper.Sleep(5 * time.Second)
			url, ok = p.frontier.GetTBDURL()
			if !ok {
				logger.Info("frontier empty, worker exiting")
				return
			}
		}

		p.processURL(ctx, url, logger)

		if p.cfg.TimeDelay() > 0 {
			p.sleeper.Sleep(p.cfg.TimeDelay())
		}
	}
}

func (p *Pool) processURL(ctx context.Context, url string, logger logging.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker panic, url left pending", zap.Any("recover", r), zap.String("url", url))
		}
	}()

	if err := p.hostLimiter.Wait(url); err != nil {
		logger.Warn("politeness wait failed", zap.Error(err), zap.String("url", url))
		return
	}

	retryParam := retry.NewParam(p.cfg.Jitter(), p.cfg.RandomSeed(), p.cfg.MaxAttempt(),
		timeutil.NewBackoffParam(p.cfg.BackoffInitialDuration(), p.cfg.BackoffMultiplier(), p.cfg.BackoffMaxDuration()))

	resp, err := p.fetcher.Download(ctx, url, retryParam, p.sleeper, logger)
	if err != nil {
		logger.Warn("download failed, url left pending", zap.Error(err), zap.String("url", url))
		return
	}

	links, outcome := p.filter.Scrape(url, resp)
	logger.Info("scraped", zap.String("url", url), zap.String("outcome", string(outcome)), zap.Int("links", len(links)))

	if outcome == content.OutcomeBadResponse {
		// Non-200 or missing body: leave pending, a restart will retry it.
		return
	}

	for _, link := range links {
		p.frontier.AddURL(link)
	}

	p.frontier.MarkURLComplete(url)
}
