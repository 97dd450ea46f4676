// Package supervisor wires the frontier, content filter, robots cache,
// and worker pool together, and guarantees the final report is flushed
// exactly once whether the crawl finishes naturally or is interrupted.
package supervisor

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/icscrawl/crawler/internal/config"
	"github.com/icscrawl/crawler/internal/content"
	"github.com/icscrawl/crawler/internal/fetcher"
	"github.com/icscrawl/crawler/internal/frontier"
	"github.com/icscrawl/crawler/internal/logging"
	"github.com/icscrawl/crawler/internal/report"
	"github.com/icscrawl/crawler/internal/robots"
	"github.com/icscrawl/crawler/internal/trap"
	"github.com/icscrawl/crawler/internal/worker"
	"github.com/icscrawl/crawler/pkg/limiter"
	"github.com/icscrawl/crawler/pkg/stopword"
	"github.com/icscrawl/crawler/pkg/timeutil"
	"go.uber.org/zap"
)

// Supervisor constructs every collaborator, runs the worker pool to
// completion, and flushes final stats exactly once via a sync.Once guard
// shared between normal completion and signal-triggered shutdown.
type Supervisor struct {
	cfg        config.Config
	restart    bool
	logger     logging.Logger
	stopwords  stopword.Set
	frontier   *frontier.Frontier
	aggregator *report.Aggregator

	flushOnce sync.Once
}

func New(cfg config.Config, restart bool, logger logging.Logger, stopwords stopword.Set) *Supervisor {
	allowedHosts := cfg.AllowedHosts()
	frontier := frontier.New(cfg.SaveFile(), allowedHosts, logger)
	aggregator := report.NewAggregator(stopwords)

	return &Supervisor{
		cfg:        cfg,
		restart:    restart,
		logger:     logger,
		stopwords:  stopwords,
		frontier:   frontier,
		aggregator: aggregator,
	}
}

// Run starts the crawl and blocks until every worker has drained the
// frontier, or the process receives SIGINT/SIGTERM.
func (s *Supervisor) Run(ctx context.Context) error {
	seedURLs := make([]string, 0, len(s.cfg.SeedURLs()))
	for _, u := range s.cfg.SeedURLs() {
		seedURLs = append(seedURLs, u.String())
	}
	if err := s.frontier.Startup(seedURLs, s.restart); err != nil {
		return err
	}

	trapDetector := trap.NewDetector()
	robotsCache := robots.NewCache(s.cfg.UserAgent(), s.cfg.Timeout())
	filter := content.NewFilter(s.cfg.AllowedHosts(), s.stopwords, s.aggregator, trapDetector, robotsCache)

	hostLimiter := limiter.NewHostLimiter(s.cfg.TimeDelay())
	sleeper := timeutil.NewRealSleeper()
	downloader := fetcher.New(s.cfg.UserAgent(), s.cfg.Timeout(), s.cfg.CacheServer())

	pool := worker.NewPool(s.cfg, s.frontier, downloader, filter, hostLimiter, sleeper, s.logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case sig := <-sigCh:
		s.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
		<-done
	}

	s.flush()
	return nil
}

func (s *Supervisor) flush() {
	s.flushOnce.Do(func() {
		s.aggregator.GenerateReport(s.logger)
		stats, err := s.frontier.Stats()
		if err != nil {
			s.logger.Error("frontier stats", zap.Error(err))
			return
		}
		s.logger.Info("frontier final stats",
			zap.Int("total", stats.Total),
			zap.Int("completed", stats.Completed),
			zap.Int("in_queue", stats.InQueue),
			zap.Int("pending", stats.Pending),
		)
	})
}
