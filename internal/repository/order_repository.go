package repository

import (
	"context"

	"github.com/Eldesouky97/home-craft/internal/domain"
)

// OrderFilter narrows an order listing. Zero values mean "no filter".
type OrderFilter struct {
	CustomerID   uint64
	StoreOwnerID uint64
	Status       domain.OrderStatus
	Offset       int
	Limit        int
}

// OrderRepository persists orders and their line items. Finders return
// (nil, nil) when the row does not exist.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	List(ctx context.Context, f OrderFilter) ([]domain.OrderSummary, error)
	Count(ctx context.Context, f OrderFilter) (int64, error)
	// UpdateStatus moves the order from one status to another. ok is false
	// when the order is no longer in status from.
	UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus, trackingNumber *string) (ok bool, err error)
	// Delete removes the order and its items provided it is still in status.
	Delete(ctx context.Context, id uint64, status domain.OrderStatus) (ok bool, err error)
	// CountItemsOutsideOwner counts the order's line items whose product does
	// not belong to a store owned by ownerID.
	CountItemsOutsideOwner(ctx context.Context, orderID, ownerID uint64) (int64, error)
	Stats(ctx context.Context, ownerID uint64) (*domain.OrderStats, error)
}
