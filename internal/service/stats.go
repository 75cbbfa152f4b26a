package service

import (
	"Chest/internal/model"
	"Chest/internal/repo"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StatsService отдаёт глобальный агрегат с кешированием на ttl.
type StatsService struct {
	stats  repo.StatsRepository
	ttl    time.Duration
	logger *zap.SugaredLogger
	clock  func() time.Time

	mu       sync.Mutex
	cached   *model.GlobalStats
	cachedAt time.Time
}

// NewStatsService создаёт сервис статистики. ttl <= 0 отключает кеш.
func NewStatsService(stats repo.StatsRepository, ttl time.Duration, logger *zap.SugaredLogger) *StatsService {
	return &StatsService{stats: stats, ttl: ttl, logger: logger, clock: time.Now}
}

// Global возвращает агрегат из кеша или пересчитывает его.
func (s *StatsService) Global(ctx context.Context) (_ model.GlobalStats, err error) {
	ctx, span := tracer.Start(ctx, "StatsService.Global")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if s.cached != nil && now.Sub(s.cachedAt) < s.ttl {
		return *s.cached, nil
	}

	st, err := s.stats.Global(ctx)
	if err != nil {
		return model.GlobalStats{}, wrapErr("global stats", err)
	}
	s.cached, s.cachedAt = st, now
	s.logger.Debugw("global stats refreshed", "total_events", st.TotalEvents)
	return *st, nil
}
