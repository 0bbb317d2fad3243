package repository

import (
	"context"

	"github.com/Eldesouky97/home-craft/internal/domain"
)

type StatsRepository interface {
	General(ctx context.Context) (*domain.GeneralStats, error)
	// Dashboard aggregates over the active stores of ownerID. Orders and
	// revenue come from the owner's own line items.
	Dashboard(ctx context.Context, ownerID uint64) (*domain.DashboardStats, error)
}
