package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys on the order exchange.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

type OrderEventItem struct {
	ProductID uint64          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderCreatedEvent struct {
	OrderID     uint64           `json:"orderId"`
	OrderNumber string           `json:"orderNumber"`
	CustomerID  *uint64          `json:"customerId,omitempty"`
	StoreID     *uint64          `json:"storeId,omitempty"`
	Total       decimal.Decimal  `json:"total"`
	Currency    string           `json:"currency"`
	Items       []OrderEventItem `json:"items"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	items := make([]OrderEventItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return OrderCreatedEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		StoreID:     o.StoreID,
		Total:       o.Total,
		Currency:    o.Currency,
		Items:       items,
		CreatedAt:   o.CreatedAt,
	}
}

type OrderStatusChangedEvent struct {
	OrderID        uint64      `json:"orderId"`
	OrderNumber    string      `json:"orderNumber"`
	From           OrderStatus `json:"from"`
	To             OrderStatus `json:"to"`
	TrackingNumber *string     `json:"trackingNumber,omitempty"`
	Restocked      bool        `json:"restocked"`
	ChangedBy      uint64      `json:"changedBy"`
	ChangedAt      time.Time   `json:"changedAt"`
}

type OrderDeletedEvent struct {
	OrderID     uint64    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Restocked   bool      `json:"restocked"`
	DeletedBy   uint64    `json:"deletedBy"`
	DeletedAt   time.Time `json:"deletedAt"`
}
