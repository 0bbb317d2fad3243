package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every recognised fulfilment status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order in status s may move to next.
// Moves between non-terminal states are allowed in either direction.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !next.Valid() || s.Terminal() {
		return false
	}
	return true
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type Address struct {
	FullName string `json:"fullName,omitempty" validate:"omitempty,max=120"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Street   string `json:"street" validate:"required,max=255"`
	City     string `json:"city" validate:"required,max=120"`
	State    string `json:"state,omitempty" validate:"omitempty,max=120"`
	ZipCode  string `json:"zipCode" validate:"required,max=20"`
	Country  string `json:"country,omitempty" validate:"omitempty,max=80"`
}

type Order struct {
	ID              uint64                       `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber     string                       `json:"orderNumber" gorm:"type:varchar(64);uniqueIndex;not null"`
	CustomerID      *uint64                      `json:"customerId" gorm:"index"`
	GuestEmail      *string                      `json:"guestEmail" gorm:"type:varchar(255)"`
	StoreID         *uint64                      `json:"storeId" gorm:"index"`
	ShippingAddress datatypes.JSONType[*Address] `json:"shippingAddress"`
	BillingAddress  datatypes.JSONType[*Address] `json:"billingAddress"`
	Subtotal        decimal.Decimal              `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Tax             decimal.Decimal              `json:"tax" gorm:"type:decimal(12,2);not null"`
	Shipping        decimal.Decimal              `json:"shipping" gorm:"type:decimal(12,2);not null"`
	Discount        decimal.Decimal              `json:"discount" gorm:"type:decimal(12,2);not null"`
	Total           decimal.Decimal              `json:"total" gorm:"column:total_amount;type:decimal(12,2);not null"`
	Currency        string                       `json:"currency" gorm:"type:varchar(3);not null"`
	PaymentMethod   PaymentMethod                `json:"paymentMethod" gorm:"type:varchar(20);not null"`
	PaymentStatus   PaymentStatus                `json:"paymentStatus" gorm:"type:varchar(20);not null;default:'pending'"`
	Status          OrderStatus                  `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes           string                       `json:"notes" gorm:"type:text"`
	TrackingNumber  *string                      `json:"trackingNumber" gorm:"type:varchar(100)"`
	Items           []OrderItem                  `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time                    `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time                    `json:"updatedAt" gorm:"autoUpdateTime"`
}

// ComputeTotal returns subtotal + tax + shipping - discount.
func (o *Order) ComputeTotal() decimal.Decimal {
	return o.Subtotal.Add(o.Tax).Add(o.Shipping).Sub(o.Discount)
}

// BelongsTo reports whether the order was placed by the given registered customer.
func (o *Order) BelongsTo(userID uint64) bool {
	return o.CustomerID != nil && *o.CustomerID == userID
}

type OrderItem struct {
	ID          uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID     uint64          `json:"orderId" gorm:"not null;index"`
	ProductID   uint64          `json:"productId" gorm:"not null;index"`
	ProductName string          `json:"name" gorm:"type:varchar(255);not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}

// OrderSummary is one row of an order listing.
type OrderSummary struct {
	Order
	CustomerName  *string          `json:"customerName,omitempty" gorm:"column:customer_name"`
	CustomerEmail *string          `json:"customerEmail,omitempty" gorm:"column:customer_email"`
	ItemsCount    int64            `json:"itemsCount" gorm:"column:items_count"`
	StoreTotal    *decimal.Decimal `json:"storeTotal,omitempty" gorm:"column:store_total"`
}

// OrderStats aggregates a seller's order activity.
type OrderStats struct {
	TotalOrders       int64                 `json:"totalOrders"`
	TotalRevenue      decimal.Decimal       `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal       `json:"averageOrderValue"`
	TotalCustomers    int64                 `json:"totalCustomers"`
	ByStatus          map[OrderStatus]int64 `json:"byStatus"`
}

// NewOrderStats returns zero-valued aggregates with every status present.
func NewOrderStats() *OrderStats {
	s := &OrderStats{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		ByStatus:          make(map[OrderStatus]int64, len(OrderStatuses)),
	}
	for _, st := range OrderStatuses {
		s.ByStatus[st] = 0
	}
	return s
}
