package mysql

import (
	"context"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"gorm.io/gorm"
)

type statsRepo struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) repository.StatsRepository {
	return &statsRepo{db: db}
}

const generalStatsQuery = `
	SELECT
		(SELECT COUNT(*) FROM users WHERE is_active = ?) AS total_users,
		(SELECT COUNT(*) FROM stores WHERE deleted_at IS NULL AND status = ?) AS total_stores,
		(SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND status = ?) AS total_products,
		(SELECT COUNT(*) FROM orders) AS total_orders,
		(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status = ?) AS total_revenue`

func (r *statsRepo) General(ctx context.Context) (*domain.GeneralStats, error) {
	var out domain.GeneralStats
	err := r.db.WithContext(ctx).Raw(generalStatsQuery,
		true, domain.StoreActive, domain.ProductActive, domain.PaymentPaid).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

const dashboardStatsQuery = `
	SELECT
		(SELECT COUNT(*) FROM stores s
			WHERE s.owner_id = ? AND s.status = ? AND s.deleted_at IS NULL) AS total_stores,
		(SELECT COUNT(*) FROM products p
			JOIN stores s ON s.id = p.store_id
			WHERE s.owner_id = ? AND s.status = ? AND s.deleted_at IS NULL AND p.deleted_at IS NULL) AS total_products,
		(SELECT COUNT(DISTINCT oi.order_id) FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			JOIN stores s ON s.id = p.store_id
			WHERE s.owner_id = ? AND s.status = ? AND s.deleted_at IS NULL) AS total_orders,
		(SELECT COALESCE(SUM(oi.total), 0) FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			JOIN stores s ON s.id = p.store_id
			WHERE s.owner_id = ? AND s.status = ? AND s.deleted_at IS NULL) AS total_revenue`

func (r *statsRepo) Dashboard(ctx context.Context, ownerID uint64) (*domain.DashboardStats, error) {
	var out domain.DashboardStats
	err := r.db.WithContext(ctx).Raw(dashboardStatsQuery,
		ownerID, domain.StoreActive,
		ownerID, domain.StoreActive,
		ownerID, domain.StoreActive,
		ownerID, domain.StoreActive).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}
