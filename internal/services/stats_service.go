package services

import (
	"context"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"go.uber.org/zap"
)

type StatsService struct {
	stats repository.StatsRepository
	log   *zap.Logger
}

func NewStatsService(stats repository.StatsRepository, log *zap.Logger) *StatsService {
	return &StatsService{stats: stats, log: log}
}

func (s *StatsService) General(ctx context.Context) (*domain.GeneralStats, error) {
	out, err := s.stats.General(ctx)
	if err != nil {
		s.log.Error("stats.failed", zap.Error(err))
		return nil, domain.Persistence("stats.failed", err)
	}
	return out, nil
}

// Dashboard summarises the caller's active stores.
func (s *StatsService) Dashboard(ctx context.Context, actor *domain.Actor) (*domain.DashboardStats, error) {
	if !actor.IsSeller() {
		return nil, domain.Forbidden("order.seller_only")
	}
	out, err := s.stats.Dashboard(ctx, actor.UserID)
	if err != nil {
		s.log.Error("stats.failed", zap.Uint64("owner_id", actor.UserID), zap.Error(err))
		return nil, domain.Persistence("stats.failed", err)
	}
	return out, nil
}
