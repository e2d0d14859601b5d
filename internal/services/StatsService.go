package services

import (
	"context"
	"time"
	"wxhm/internal/assets"
	"wxhm/internal/ledger"
	"wxhm/internal/models"
	"wxhm/internal/providers"
	"wxhm/internal/structures"
)

type GroupStats struct {
	Group     string                     `json:"group"`
	Today     models.DailyCount          `json:"today"`
	Trend     []models.DailyCount        `json:"trend"`
	Breakdown map[models.ClientClass]int `json:"platforms"`
}

type StatsServiceInterface interface {
	GetTrend(ctx context.Context, group string) ([]models.DailyCount, error)
	GetBreakdown(ctx context.Context, group string) (map[models.ClientClass]int, error)
	GetOverview(ctx context.Context) ([]GroupStats, error)
}

// StatsService answers the rolling-window aggregates. Records that fell out
// of the window are pruned at the start of every read.
type StatsService struct {
	ledger ledger.LedgerInterface
	store  assets.StoreInterface
	logger providers.Logger
	window int
	now    func() time.Time
}

func NewStatsService(conf *structures.Config, visits ledger.LedgerInterface, store assets.StoreInterface, logger providers.Logger) StatsServiceInterface {
	window := conf.Retention.Days
	if window <= 0 {
		window = 7
	}
	return &StatsService{
		ledger: visits,
		store:  store,
		logger: logger,
		window: window,
		now:    time.Now,
	}
}

// prune drops records dated before today minus the window. Failures are
// logged; the read goes on with whatever is stored.
func (s *StatsService) prune(ctx context.Context, today time.Time) {
	cutoff := models.Day(today.AddDate(0, 0, -s.window))
	if _, err := s.ledger.PruneOlderThan(ctx, cutoff); err != nil {
		s.logger.Warnf(providers.TypeStorage, "Pruning visits before %s failed: %s", cutoff, err)
	}
}

func (s *StatsService) trend(ctx context.Context, group string, today time.Time) ([]models.DailyCount, error) {
	return s.ledger.Trend(ctx, group, models.WindowDays(today, s.window))
}

func (s *StatsService) breakdown(ctx context.Context, group string, today time.Time) (map[models.ClientClass]int, error) {
	counts, err := s.ledger.ClassBreakdown(ctx, group, models.Day(today))
	if err != nil {
		return nil, err
	}
	out := make(map[models.ClientClass]int, len(models.ClientClasses))
	for _, c := range models.ClientClasses {
		out[c] = counts[c]
	}
	return out, nil
}

func (s *StatsService) GetTrend(ctx context.Context, group string) ([]models.DailyCount, error) {
	today := s.now()
	s.prune(ctx, today)
	return s.trend(ctx, group, today)
}

func (s *StatsService) GetBreakdown(ctx context.Context, group string) (map[models.ClientClass]int, error) {
	today := s.now()
	s.prune(ctx, today)
	return s.breakdown(ctx, group, today)
}

func (s *StatsService) groupStats(ctx context.Context, group string, today time.Time) (*GroupStats, error) {
	trend, err := s.trend(ctx, group, today)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.breakdown(ctx, group, today)
	if err != nil {
		return nil, err
	}
	gs := &GroupStats{Group: group, Trend: trend, Breakdown: breakdown}
	if len(trend) > 0 {
		gs.Today = trend[len(trend)-1]
	}
	return gs, nil
}

// GetOverview returns the stats of every group, pruning once.
func (s *StatsService) GetOverview(ctx context.Context) ([]GroupStats, error) {
	groups, err := s.store.Groups()
	if err != nil {
		return nil, err
	}

	today := s.now()
	s.prune(ctx, today)

	out := make([]GroupStats, 0, len(groups))
	for _, g := range groups {
		gs, err := s.groupStats(ctx, g, today)
		if err != nil {
			return nil, err
		}
		out = append(out, *gs)
	}
	return out, nil
}
