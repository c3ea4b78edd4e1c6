package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/elonfeng/demandscope/internal/store"
	"github.com/elonfeng/demandscope/pkg/source"
)

// Scheduler runs periodic collection and trending-topic rollups.
type Scheduler struct {
	store      store.Store
	sources    []source.Source
	logger     *zap.Logger
	collectInt time.Duration
	trendInt   time.Duration
}

// New creates a new scheduler.
func New(s store.Store, sources []source.Source, collectInt, trendInt time.Duration, logger *zap.Logger) *Scheduler {
	if collectInt == 0 {
		collectInt = 30 * time.Minute
	}
	if trendInt == 0 {
		trendInt = time.Hour
	}
	return &Scheduler{
		store:      s,
		sources:    sources,
		logger:     logger,
		collectInt: collectInt,
		trendInt:   trendInt,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	collectTicker := time.NewTicker(s.collectInt)
	trendTicker := time.NewTicker(s.trendInt)
	defer collectTicker.Stop()
	defer trendTicker.Stop()

	// Run immediately on start.
	s.collectAll(ctx)
	s.rebuildTrends(ctx)

	s.logger.Info("scheduler running",
		zap.Duration("collect_interval", s.collectInt),
		zap.Duration("trend_interval", s.trendInt))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-collectTicker.C:
			s.collectAll(ctx)
		case <-trendTicker.C:
			s.rebuildTrends(ctx)
		}
	}
}

func (s *Scheduler) collectAll(ctx context.Context) {
	for _, src := range s.sources {
		demands, err := src.Collect(ctx)
		if err != nil {
			s.logger.Warn("collection failed",
				zap.String("source", string(src.Name())), zap.Error(err))
			continue
		}

		stored, err := s.store.UpsertDemands(ctx, demands)
		if err != nil {
			s.logger.Warn("store failed",
				zap.String("source", string(src.Name())), zap.Error(err))
			continue
		}
		s.logger.Info("collected",
			zap.String("source", string(src.Name())),
			zap.Int("fetched", len(demands)),
			zap.Int("stored", stored))
	}
}

func (s *Scheduler) rebuildTrends(ctx context.Context) {
	since := time.Now().UTC().AddDate(0, 0, -7)
	if err := s.store.RebuildDailyTrends(ctx, since); err != nil {
		s.logger.Warn("trend rollup failed", zap.Error(err))
		return
	}
	s.logger.Info("trend rollup complete")
}
