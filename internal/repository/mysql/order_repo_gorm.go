package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// Create inserts the header first so the generated ID can be stamped on every
// line item, then inserts the items as one batch.
func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	if order.ID == 0 {
		return errors.New("failed to assign order ID")
	}
	if len(order.Items) == 0 {
		return nil
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	if err := db.Create(&order.Items).Error; err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) scoped(ctx context.Context, f repository.OrderFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Table("orders AS o")
	if f.StoreOwnerID != 0 {
		q = q.Joins("JOIN order_items oi ON oi.order_id = o.id").
			Joins("JOIN products p ON p.id = oi.product_id").
			Joins("JOIN stores s ON s.id = p.store_id").
			Where("s.owner_id = ?", f.StoreOwnerID)
	} else {
		q = q.Joins("LEFT JOIN order_items oi ON oi.order_id = o.id")
	}
	if f.CustomerID != 0 {
		q = q.Where("o.customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("o.status = ?", f.Status)
	}
	return q
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter) ([]domain.OrderSummary, error) {
	selects := "o.*, u.name AS customer_name, u.email AS customer_email, COUNT(oi.id) AS items_count"
	if f.StoreOwnerID != 0 {
		selects += ", SUM(oi.total) AS store_total"
	}
	var out []domain.OrderSummary
	err := r.scoped(ctx, f).
		Select(selects).
		Joins("LEFT JOIN users u ON u.id = o.customer_id").
		Group("o.id, u.name, u.email").
		Order("o.created_at DESC, o.id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) Count(ctx context.Context, f repository.OrderFilter) (int64, error) {
	var n int64
	if err := r.scoped(ctx, f).Distinct("o.id").Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus, trackingNumber *string) (bool, error) {
	updates := map[string]any{"status": to}
	if trackingNumber != nil {
		updates["tracking_number"] = *trackingNumber
	}
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	// MySQL reports changed rows, so a same-status write may affect none.
	return from == to || res.RowsAffected > 0, nil
}

func (r *orderRepo) Delete(ctx context.Context, id uint64, status domain.OrderStatus) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
		return false, fmt.Errorf("delete order items: %w", err)
	}
	res := db.Where("status = ?", status).Delete(&domain.Order{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete order: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) CountItemsOutsideOwner(ctx context.Context, orderID, ownerID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		LEFT JOIN stores s ON s.id = p.store_id
		WHERE oi.order_id = ? AND (s.owner_id IS NULL OR s.owner_id <> ?)`,
		orderID, ownerID).Scan(&n).Error
	return n, err
}

type statsRow struct {
	TotalOrders         int64
	TotalRevenue        decimal.Decimal
	RegisteredCustomers int64
	GuestCustomers      int64
	Pending             int64
	Confirmed           int64
	Processing          int64
	Shipped             int64
	Delivered           int64
	Cancelled           int64
}

const statsQuery = `
	SELECT
		COUNT(DISTINCT o.id) AS total_orders,
		COALESCE(SUM(oi.total), 0) AS total_revenue,
		COUNT(DISTINCT o.customer_id) AS registered_customers,
		COUNT(DISTINCT o.guest_email) AS guest_customers,
		COUNT(DISTINCT CASE WHEN o.status = ? THEN o.id END) AS pending,
		COUNT(DISTINCT CASE WHEN o.status = ? THEN o.id END) AS confirmed,
		COUNT(DISTINCT CASE WHEN o.status = ? THEN o.id END) AS processing,
		COUNT(DISTINCT CASE WHEN o.status = ? THEN o.id END) AS shipped,
		COUNT(DISTINCT CASE WHEN o.status = ? THEN o.id END) AS delivered,
		COUNT(DISTINCT CASE WHEN o.status = ? THEN o.id END) AS cancelled
	FROM order_items oi
	JOIN orders o ON o.id = oi.order_id
	JOIN products p ON p.id = oi.product_id
	JOIN stores s ON s.id = p.store_id
	WHERE s.owner_id = ?`

// Stats aggregates line totals rather than order totals so that an order
// spanning several sellers only contributes each seller's own lines.
func (r *orderRepo) Stats(ctx context.Context, ownerID uint64) (*domain.OrderStats, error) {
	var row statsRow
	err := r.db.WithContext(ctx).Raw(statsQuery,
		domain.StatusPending, domain.StatusConfirmed, domain.StatusProcessing,
		domain.StatusShipped, domain.StatusDelivered, domain.StatusCancelled,
		ownerID).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := domain.NewOrderStats()
	stats.TotalOrders = row.TotalOrders
	stats.TotalRevenue = row.TotalRevenue
	stats.TotalCustomers = row.RegisteredCustomers + row.GuestCustomers
	if row.TotalOrders > 0 {
		stats.AverageOrderValue = row.TotalRevenue.DivRound(decimal.NewFromInt(row.TotalOrders), 2)
	}
	stats.ByStatus[domain.StatusPending] = row.Pending
	stats.ByStatus[domain.StatusConfirmed] = row.Confirmed
	stats.ByStatus[domain.StatusProcessing] = row.Processing
	stats.ByStatus[domain.StatusShipped] = row.Shipped
	stats.ByStatus[domain.StatusDelivered] = row.Delivered
	stats.ByStatus[domain.StatusCancelled] = row.Cancelled
	return stats, nil
}
