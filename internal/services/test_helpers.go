package services

import (
	"time"

	"github.com/Eldesouky97/home-craft/internal/domain"

	"github.com/shopspring/decimal"
)

func CreateMockOrder(id uint64, customerID uint64, status domain.OrderStatus, items ...domain.OrderItem) *domain.Order {
	o := &domain.Order{
		ID:            id,
		OrderNumber:   "ORD-TEST-" + decimal.NewFromInt(int64(id)).String(),
		CustomerID:    &customerID,
		Currency:      "EGP",
		PaymentMethod: domain.PaymentCash,
		PaymentStatus: domain.PaymentPending,
		Status:        status,
		Items:         items,
		CreatedAt:     time.Now(),
	}
	for _, it := range items {
		o.Subtotal = o.Subtotal.Add(it.Total)
	}
	o.Total = o.ComputeTotal()
	return o
}

func CreateMockItem(productID uint64, price string, qty int) domain.OrderItem {
	p := decimal.RequireFromString(price)
	return domain.OrderItem{
		ProductID:   productID,
		ProductName: TestProductName,
		Price:       p,
		Quantity:    qty,
		Total:       p.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func CreateMockProduct(id uint64, storeID uint64, price string, stock int) *domain.Product {
	return &domain.Product{
		ID:            id,
		StoreID:       storeID,
		Name:          TestProductName,
		Slug:          Slugify(TestProductName),
		Price:         decimal.RequireFromString(price),
		Stock:         stock,
		TrackQuantity: true,
		Status:        domain.ProductActive,
	}
}

const (
	TestProductID    = uint64(1)
	TestStoreID      = uint64(1)
	TestOrderID      = uint64(1)
	TestBuyerID      = uint64(10)
	TestSellerID     = uint64(20)
	TestAdminID      = uint64(30)
	TestProductName  = "Test Product"
	TestProductPrice = "25.50"
	TestProductStock = 10
)
