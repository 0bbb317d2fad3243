package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/mocks"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	buyer  = &domain.Actor{UserID: TestBuyerID, Role: domain.RoleBuyer}
	seller = &domain.Actor{UserID: TestSellerID, Role: domain.RoleSeller}
	admin  = &domain.Actor{UserID: TestAdminID, Role: domain.RoleAdmin}
)

func testOrderConfig() OrderConfig {
	return OrderConfig{
		Currency:              "EGP",
		TaxRate:               decimal.RequireFromString("0.10"),
		ShippingFee:           decimal.NewFromInt(50),
		FreeShippingThreshold: decimal.NewFromInt(1000),
	}
}

func newMockOrderService() (*OrderService, *mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher) {
	orders := new(mocks.MockOrderRepository)
	products := new(mocks.MockProductRepository)
	pub := new(mocks.MockPublisher)
	svc := NewOrderService(mocks.NewMockUnitOfWork(orders, products), orders, products, pub, testOrderConfig(), zap.NewNop())
	return svc, orders, products, pub
}

func cashOrder(items ...OrderItemInput) CreateOrderInput {
	return CreateOrderInput{Items: items, PaymentMethod: domain.PaymentCash}
}

func assertKey(t *testing.T, err error, key string) {
	t.Helper()
	de, ok := domain.AsError(err)
	require.True(t, ok, "expected *domain.Error, got %v", err)
	assert.Equal(t, key, de.Key)
}

func TestOrderService_CreateOrder(t *testing.T) {
	tests := []struct {
		name          string
		actor         *domain.Actor
		input         CreateOrderInput
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher)
		expectedError error
		expectedKey   string
		check         func(*testing.T, *domain.Order)
	}{
		{
			name:  "successful order creation",
			actor: buyer,
			input: cashOrder(OrderItemInput{ProductID: TestProductID, Quantity: 2}),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				products.On("FindByIDs", mock.Anything, []uint64{TestProductID}).Return(map[uint64]*domain.Product{
					TestProductID: CreateMockProduct(TestProductID, TestStoreID, TestProductPrice, TestProductStock),
				}, nil)
				orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
					args.Get(1).(*domain.Order).ID = TestOrderID
				})
				products.On("DecrementStock", mock.Anything, TestProductID, 2, false).Return(true, nil)
				orders.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)
				pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.AnythingOfType("domain.OrderCreatedEvent")).Return(nil)
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Equal(t, TestOrderID, o.ID)
				assert.Equal(t, domain.StatusPending, o.Status)
				assert.Equal(t, domain.PaymentPending, o.PaymentStatus)
				assert.Equal(t, "EGP", o.Currency)
				assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, o.OrderNumber)
				require.NotNil(t, o.CustomerID)
				assert.Equal(t, TestBuyerID, *o.CustomerID)
				require.NotNil(t, o.StoreID)
				assert.Equal(t, TestStoreID, *o.StoreID)
				require.Len(t, o.Items, 1)
				assert.Equal(t, "51", o.Items[0].Total.String())
				assert.Equal(t, "51", o.Subtotal.String())
				assert.Equal(t, "5.1", o.Tax.String())
				assert.Equal(t, "50", o.Shipping.String())
				assert.Equal(t, "106.1", o.Total.String())
			},
		},
		{
			name:  "client price is ignored",
			actor: buyer,
			input: cashOrder(OrderItemInput{ProductID: TestProductID, Quantity: 1, Price: decimalPtr("0.01")}),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				products.On("FindByIDs", mock.Anything, []uint64{TestProductID}).Return(map[uint64]*domain.Product{
					TestProductID: CreateMockProduct(TestProductID, TestStoreID, "1200", 5),
				}, nil)
				orders.On("Create", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
					args.Get(1).(*domain.Order).ID = TestOrderID
				})
				products.On("DecrementStock", mock.Anything, TestProductID, 1, false).Return(true, nil)
				orders.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)
				pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Equal(t, "1200", o.Items[0].Price.String())
				assert.True(t, o.Shipping.IsZero(), "free shipping above threshold")
				assert.Equal(t, "1320", o.Total.String())
			},
		},
		{
			name:  "duplicate lines are merged",
			actor: buyer,
			input: cashOrder(
				OrderItemInput{ProductID: TestProductID, Quantity: 1},
				OrderItemInput{ProductID: TestProductID, Quantity: 2},
			),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				products.On("FindByIDs", mock.Anything, []uint64{TestProductID}).Return(map[uint64]*domain.Product{
					TestProductID: CreateMockProduct(TestProductID, TestStoreID, TestProductPrice, TestProductStock),
				}, nil)
				orders.On("Create", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
					args.Get(1).(*domain.Order).ID = TestOrderID
				})
				products.On("DecrementStock", mock.Anything, TestProductID, 3, false).Return(true, nil)
				orders.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)
				pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, o *domain.Order) {
				require.Len(t, o.Items, 1)
				assert.Equal(t, 3, o.Items[0].Quantity)
			},
		},
		{
			name:  "guest checkout across stores skips untracked stock",
			actor: nil,
			input: CreateOrderInput{
				Items: []OrderItemInput{
					{ProductID: 1, Quantity: 1},
					{ProductID: 2, Quantity: 4},
				},
				PaymentMethod: domain.PaymentCard,
				GuestEmail:    " Guest@Example.com ",
			},
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				untracked := CreateMockProduct(2, 2, "10", 0)
				untracked.TrackQuantity = false
				products.On("FindByIDs", mock.Anything, []uint64{1, 2}).Return(map[uint64]*domain.Product{
					1: CreateMockProduct(1, 1, "20", 3),
					2: untracked,
				}, nil)
				orders.On("Create", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
					args.Get(1).(*domain.Order).ID = TestOrderID
				})
				products.On("DecrementStock", mock.Anything, uint64(1), 1, false).Return(true, nil)
				orders.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)
				pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Nil(t, o.CustomerID)
				assert.Nil(t, o.StoreID)
				require.NotNil(t, o.GuestEmail)
				assert.Equal(t, "guest@example.com", *o.GuestEmail)
				assert.Equal(t, "60", o.Subtotal.String())
			},
		},
		{
			name:          "empty items",
			actor:         buyer,
			input:         cashOrder(),
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher) {},
			expectedError: domain.ErrValidation,
			expectedKey:   "validation.failed",
		},
		{
			name:          "zero quantity",
			actor:         buyer,
			input:         cashOrder(OrderItemInput{ProductID: TestProductID, Quantity: 0}),
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher) {},
			expectedError: domain.ErrValidation,
		},
		{
			name:          "guest without email",
			actor:         nil,
			input:         cashOrder(OrderItemInput{ProductID: TestProductID, Quantity: 1}),
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher) {},
			expectedError: domain.ErrValidation,
			expectedKey:   "order.guest_email",
		},
		{
			name:  "product not found",
			actor: buyer,
			input: cashOrder(OrderItemInput{ProductID: 999, Quantity: 1}),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				products.On("FindByIDs", mock.Anything, []uint64{999}).Return(map[uint64]*domain.Product{}, nil)
			},
			expectedError: domain.ErrItemNotFound,
			expectedKey:   "order.product_not_found",
		},
		{
			name:  "inactive product",
			actor: buyer,
			input: cashOrder(OrderItemInput{ProductID: TestProductID, Quantity: 1}),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				p := CreateMockProduct(TestProductID, TestStoreID, TestProductPrice, TestProductStock)
				p.Status = domain.ProductDraft
				products.On("FindByIDs", mock.Anything, []uint64{TestProductID}).Return(map[uint64]*domain.Product{TestProductID: p}, nil)
			},
			expectedError: domain.ErrItemNotFound,
		},
		{
			name:  "insufficient stock",
			actor: buyer,
			input: cashOrder(OrderItemInput{ProductID: TestProductID, Quantity: 20}),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				products.On("FindByIDs", mock.Anything, []uint64{TestProductID}).Return(map[uint64]*domain.Product{
					TestProductID: CreateMockProduct(TestProductID, TestStoreID, TestProductPrice, TestProductStock),
				}, nil)
			},
			expectedError: domain.ErrInsufficientStock,
			expectedKey:   "order.insufficient_stock",
		},
		{
			name:  "stock taken by a concurrent order",
			actor: buyer,
			input: cashOrder(OrderItemInput{ProductID: TestProductID, Quantity: 6}),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				products.On("FindByIDs", mock.Anything, []uint64{TestProductID}).Return(map[uint64]*domain.Product{
					TestProductID: CreateMockProduct(TestProductID, TestStoreID, TestProductPrice, TestProductStock),
				}, nil)
				orders.On("Create", mock.Anything, mock.Anything).Return(nil)
				products.On("DecrementStock", mock.Anything, TestProductID, 6, false).Return(false, nil)
				products.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, TestStoreID, TestProductPrice, 4), nil)
			},
			expectedError: domain.ErrInsufficientStock,
			expectedKey:   "order.insufficient_stock",
		},
		{
			name:  "order number taken",
			actor: buyer,
			input: CreateOrderInput{
				Items:         []OrderItemInput{{ProductID: TestProductID, Quantity: 1}},
				PaymentMethod: domain.PaymentCash,
				OrderNumber:   "ORD-FIXED",
			},
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				products.On("FindByIDs", mock.Anything, []uint64{TestProductID}).Return(map[uint64]*domain.Product{
					TestProductID: CreateMockProduct(TestProductID, TestStoreID, TestProductPrice, TestProductStock),
				}, nil)
				orders.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: domain.ErrConflict,
			expectedKey:   "order.number_taken",
		},
		{
			name:  "repository error",
			actor: buyer,
			input: cashOrder(OrderItemInput{ProductID: TestProductID, Quantity: 1}),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				products.On("FindByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("database connection error"))
			},
			expectedError: domain.ErrPersistence,
			expectedKey:   "order.create_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, orders, products, pub := newMockOrderService()
			tt.setupMocks(orders, products, pub)

			result, err := svc.CreateOrder(context.Background(), tt.actor, tt.input)
			svc.Wait()

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				if tt.expectedKey != "" {
					assertKey(t, err, tt.expectedKey)
				}
				assert.Nil(t, result)
				pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				tt.check(t, result)
			}

			orders.AssertExpectations(t)
			products.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestOrderService_CreateOrder_ConflictReportsShortfall(t *testing.T) {
	svc, orders, products, _ := newMockOrderService()
	products.On("FindByIDs", mock.Anything, []uint64{TestProductID}).Return(map[uint64]*domain.Product{
		TestProductID: CreateMockProduct(TestProductID, TestStoreID, TestProductPrice, TestProductStock),
	}, nil)
	orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	products.On("DecrementStock", mock.Anything, TestProductID, 6, false).Return(false, nil)
	products.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, TestStoreID, TestProductPrice, 4), nil)

	_, err := svc.CreateOrder(context.Background(), buyer, cashOrder(OrderItemInput{ProductID: TestProductID, Quantity: 6}))

	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, []any{TestProductName, TestProductID, 2}, de.Args)
}

func TestOrderService_GetOrder(t *testing.T) {
	tests := []struct {
		name          string
		actor         *domain.Actor
		setupMocks    func(*mocks.MockOrderRepository)
		expectedError error
	}{
		{
			name:          "unauthenticated",
			actor:         nil,
			setupMocks:    func(*mocks.MockOrderRepository) {},
			expectedError: domain.ErrUnauthenticated,
		},
		{
			name:  "owner",
			actor: buyer,
			setupMocks: func(orders *mocks.MockOrderRepository) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(
					CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusPending, CreateMockItem(TestProductID, "10", 1)), nil)
			},
		},
		{
			name:  "another buyer",
			actor: &domain.Actor{UserID: 99, Role: domain.RoleBuyer},
			setupMocks: func(orders *mocks.MockOrderRepository) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(
					CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusPending, CreateMockItem(TestProductID, "10", 1)), nil)
			},
			expectedError: domain.ErrAuthorization,
		},
		{
			name:  "seller with a line in the order",
			actor: seller,
			setupMocks: func(orders *mocks.MockOrderRepository) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusPending,
					CreateMockItem(1, "10", 1), CreateMockItem(2, "10", 1)), nil)
				orders.On("CountItemsOutsideOwner", mock.Anything, TestOrderID, TestSellerID).Return(int64(1), nil)
			},
		},
		{
			name:  "seller without lines in the order",
			actor: seller,
			setupMocks: func(orders *mocks.MockOrderRepository) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(
					CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusPending, CreateMockItem(TestProductID, "10", 1)), nil)
				orders.On("CountItemsOutsideOwner", mock.Anything, TestOrderID, TestSellerID).Return(int64(1), nil)
			},
			expectedError: domain.ErrAuthorization,
		},
		{
			name:  "admin",
			actor: admin,
			setupMocks: func(orders *mocks.MockOrderRepository) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusShipped), nil)
			},
		},
		{
			name:  "order not found",
			actor: admin,
			setupMocks: func(orders *mocks.MockOrderRepository) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)
			},
			expectedError: domain.ErrItemNotFound,
		},
		{
			name:  "repository error",
			actor: admin,
			setupMocks: func(orders *mocks.MockOrderRepository) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(nil, errors.New("database connection error"))
			},
			expectedError: domain.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, orders, _, _ := newMockOrderService()
			tt.setupMocks(orders)

			result, err := svc.GetOrder(context.Background(), tt.actor, TestOrderID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, TestOrderID, result.ID)
			}
			orders.AssertExpectations(t)
		})
	}
}

func TestOrderService_ListOrders(t *testing.T) {
	t.Run("admin only", func(t *testing.T) {
		svc, _, _, _ := newMockOrderService()
		_, err := svc.ListOrders(context.Background(), seller, ListQuery{})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
	})

	t.Run("paginates", func(t *testing.T) {
		svc, orders, _, _ := newMockOrderService()
		want := repository.OrderFilter{Status: domain.StatusPending, Offset: 5, Limit: 5}
		orders.On("List", mock.Anything, want).Return([]domain.OrderSummary{{Order: *CreateMockOrder(6, TestBuyerID, domain.StatusPending)}}, nil)
		orders.On("Count", mock.Anything, want).Return(int64(6), nil)

		page, err := svc.ListOrders(context.Background(), admin, ListQuery{Page: 2, Limit: 5, Status: "pending"})

		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 5, page.Limit)
		assert.Equal(t, int64(6), page.Total)
		assert.Equal(t, 2, page.Pages)
		orders.AssertExpectations(t)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, _, _, _ := newMockOrderService()
		_, err := svc.ListOrders(context.Background(), admin, ListQuery{Status: "lost"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestOrderService_ListMyOrders(t *testing.T) {
	svc, orders, _, _ := newMockOrderService()
	want := repository.OrderFilter{CustomerID: TestBuyerID, Limit: DefaultPageLimit}
	orders.On("List", mock.Anything, want).Return(nil, nil)
	orders.On("Count", mock.Anything, want).Return(int64(0), nil)

	page, err := svc.ListMyOrders(context.Background(), buyer, ListQuery{})

	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Pages)
	orders.AssertExpectations(t)

	_, err = svc.ListMyOrders(context.Background(), nil, ListQuery{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestOrderService_ListStoreOrders(t *testing.T) {
	svc, orders, _, _ := newMockOrderService()
	want := repository.OrderFilter{StoreOwnerID: TestSellerID, Limit: MaxPageLimit}
	orders.On("List", mock.Anything, want).Return([]domain.OrderSummary{}, nil)
	orders.On("Count", mock.Anything, want).Return(int64(0), errors.New("database connection error"))

	_, err := svc.ListStoreOrders(context.Background(), seller, ListQuery{Limit: 500})
	assert.ErrorIs(t, err, domain.ErrPersistence)

	_, err = svc.ListStoreOrders(context.Background(), buyer, ListQuery{})
	assert.ErrorIs(t, err, domain.ErrAuthorization)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	tracking := "TRK-1"
	tests := []struct {
		name          string
		actor         *domain.Actor
		input         UpdateStatusInput
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher)
		expectedError error
		expectedKey   string
	}{
		{
			name:          "buyer cannot update",
			actor:         buyer,
			input:         UpdateStatusInput{Status: domain.StatusShipped},
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher) {},
			expectedError: domain.ErrAuthorization,
		},
		{
			name:          "unknown status",
			actor:         seller,
			input:         UpdateStatusInput{Status: "lost"},
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher) {},
			expectedError: domain.ErrValidation,
		},
		{
			name:  "order not found",
			actor: seller,
			input: UpdateStatusInput{Status: domain.StatusShipped},
			setupMocks: func(orders *mocks.MockOrderRepository, _ *mocks.MockProductRepository, _ *mocks.MockPublisher) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)
			},
			expectedError: domain.ErrItemNotFound,
		},
		{
			name:  "seller with foreign lines",
			actor: seller,
			input: UpdateStatusInput{Status: domain.StatusShipped},
			setupMocks: func(orders *mocks.MockOrderRepository, _ *mocks.MockProductRepository, _ *mocks.MockPublisher) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusPending), nil)
				orders.On("CountItemsOutsideOwner", mock.Anything, TestOrderID, TestSellerID).Return(int64(1), nil)
			},
			expectedError: domain.ErrAuthorization,
			expectedKey:   "order.update_forbidden",
		},
		{
			name:  "terminal status",
			actor: admin,
			input: UpdateStatusInput{Status: domain.StatusPending},
			setupMocks: func(orders *mocks.MockOrderRepository, _ *mocks.MockProductRepository, _ *mocks.MockPublisher) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusDelivered), nil)
			},
			expectedError: domain.ErrValidation,
			expectedKey:   "order.status_terminal",
		},
		{
			name:  "concurrent update",
			actor: admin,
			input: UpdateStatusInput{Status: domain.StatusShipped},
			setupMocks: func(orders *mocks.MockOrderRepository, _ *mocks.MockProductRepository, _ *mocks.MockPublisher) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusPending), nil)
				orders.On("UpdateStatus", mock.Anything, TestOrderID, domain.StatusPending, domain.StatusShipped, mock.Anything).Return(false, nil)
			},
			expectedError: domain.ErrConflict,
			expectedKey:   "order.concurrent_update",
		},
		{
			name:  "seller ships own order",
			actor: seller,
			input: UpdateStatusInput{Status: domain.StatusShipped, TrackingNumber: &tracking},
			setupMocks: func(orders *mocks.MockOrderRepository, _ *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				before := CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusProcessing, CreateMockItem(TestProductID, "10", 2))
				after := CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusShipped, CreateMockItem(TestProductID, "10", 2))
				after.TrackingNumber = &tracking
				orders.On("FindByID", mock.Anything, TestOrderID).Return(before, nil).Once()
				orders.On("FindByID", mock.Anything, TestOrderID).Return(after, nil).Once()
				orders.On("CountItemsOutsideOwner", mock.Anything, TestOrderID, TestSellerID).Return(int64(0), nil)
				orders.On("UpdateStatus", mock.Anything, TestOrderID, domain.StatusProcessing, domain.StatusShipped, &tracking).Return(true, nil)
				pub.On("Publish", mock.Anything, domain.EventOrderStatusChanged, mock.MatchedBy(func(e domain.OrderStatusChangedEvent) bool {
					return e.From == domain.StatusProcessing && e.To == domain.StatusShipped && !e.Restocked &&
						e.ChangedBy == TestSellerID && e.TrackingNumber != nil && *e.TrackingNumber == tracking
				})).Return(nil)
			},
		},
		{
			name:  "cancel restocks tracked lines",
			actor: admin,
			input: UpdateStatusInput{Status: domain.StatusCancelled},
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				before := CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusPending,
					CreateMockItem(1, "10", 2), CreateMockItem(2, "10", 3), CreateMockItem(3, "10", 1))
				untracked := CreateMockProduct(2, TestStoreID, "10", 0)
				untracked.TrackQuantity = false
				orders.On("FindByID", mock.Anything, TestOrderID).Return(before, nil).Once()
				orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusCancelled), nil).Once()
				orders.On("UpdateStatus", mock.Anything, TestOrderID, domain.StatusPending, domain.StatusCancelled, mock.Anything).Return(true, nil)
				// product 3 has been deleted since and is restocked anyway
				products.On("FindByIDs", mock.Anything, []uint64{1, 2, 3}).Return(map[uint64]*domain.Product{
					1: CreateMockProduct(1, TestStoreID, "10", 5),
					2: untracked,
				}, nil)
				products.On("IncrementStock", mock.Anything, uint64(1), 2).Return(nil)
				products.On("IncrementStock", mock.Anything, uint64(3), 1).Return(nil)
				pub.On("Publish", mock.Anything, domain.EventOrderStatusChanged, mock.MatchedBy(func(e domain.OrderStatusChangedEvent) bool {
					return e.To == domain.StatusCancelled && e.Restocked
				})).Return(nil)
			},
		},
		{
			name:  "restock failure",
			actor: admin,
			input: UpdateStatusInput{Status: domain.StatusCancelled},
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, _ *mocks.MockPublisher) {
				orders.On("FindByID", mock.Anything, TestOrderID).Return(
					CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusConfirmed, CreateMockItem(1, "10", 2)), nil)
				orders.On("UpdateStatus", mock.Anything, TestOrderID, domain.StatusConfirmed, domain.StatusCancelled, mock.Anything).Return(true, nil)
				products.On("FindByIDs", mock.Anything, []uint64{1}).Return(map[uint64]*domain.Product{}, nil)
				products.On("IncrementStock", mock.Anything, uint64(1), 2).Return(errors.New("lock wait timeout"))
			},
			expectedError: domain.ErrPersistence,
			expectedKey:   "order.update_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, orders, products, pub := newMockOrderService()
			tt.setupMocks(orders, products, pub)

			result, err := svc.UpdateStatus(context.Background(), tt.actor, TestOrderID, tt.input)
			svc.Wait()

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				if tt.expectedKey != "" {
					assertKey(t, err, tt.expectedKey)
				}
				assert.Nil(t, result)
				pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input.Status, result.Status)
			}

			orders.AssertExpectations(t)
			products.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestOrderService_DeleteOrder(t *testing.T) {
	t.Run("admin only", func(t *testing.T) {
		svc, _, _, _ := newMockOrderService()
		err := svc.DeleteOrder(context.Background(), seller, TestOrderID)
		assertKey(t, err, "order.delete_forbidden")
	})

	t.Run("restocks open order", func(t *testing.T) {
		svc, orders, products, pub := newMockOrderService()
		orders.On("FindByID", mock.Anything, TestOrderID).Return(
			CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusShipped, CreateMockItem(TestProductID, "10", 2)), nil)
		products.On("FindByIDs", mock.Anything, []uint64{TestProductID}).Return(map[uint64]*domain.Product{
			TestProductID: CreateMockProduct(TestProductID, TestStoreID, "10", 0),
		}, nil)
		products.On("IncrementStock", mock.Anything, TestProductID, 2).Return(nil)
		orders.On("Delete", mock.Anything, TestOrderID, domain.StatusShipped).Return(true, nil)
		pub.On("Publish", mock.Anything, domain.EventOrderDeleted, mock.MatchedBy(func(e domain.OrderDeletedEvent) bool {
			return e.OrderID == TestOrderID && e.Restocked && e.DeletedBy == TestAdminID
		})).Return(nil)

		require.NoError(t, svc.DeleteOrder(context.Background(), admin, TestOrderID))
		svc.Wait()

		orders.AssertExpectations(t)
		products.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("cancelled order is not restocked twice", func(t *testing.T) {
		svc, orders, products, pub := newMockOrderService()
		orders.On("FindByID", mock.Anything, TestOrderID).Return(
			CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusCancelled, CreateMockItem(TestProductID, "10", 2)), nil)
		orders.On("Delete", mock.Anything, TestOrderID, domain.StatusCancelled).Return(true, nil)
		pub.On("Publish", mock.Anything, domain.EventOrderDeleted, mock.MatchedBy(func(e domain.OrderDeletedEvent) bool {
			return !e.Restocked
		})).Return(nil)

		require.NoError(t, svc.DeleteOrder(context.Background(), admin, TestOrderID))
		svc.Wait()

		products.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything, mock.Anything)
		pub.AssertExpectations(t)
	})

	t.Run("status changed underneath", func(t *testing.T) {
		svc, orders, _, _ := newMockOrderService()
		orders.On("FindByID", mock.Anything, TestOrderID).Return(CreateMockOrder(TestOrderID, TestBuyerID, domain.StatusCancelled), nil)
		orders.On("Delete", mock.Anything, TestOrderID, domain.StatusCancelled).Return(false, nil)

		err := svc.DeleteOrder(context.Background(), admin, TestOrderID)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("not found", func(t *testing.T) {
		svc, orders, _, _ := newMockOrderService()
		orders.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)

		err := svc.DeleteOrder(context.Background(), admin, TestOrderID)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})
}

func TestOrderService_Stats(t *testing.T) {
	svc, orders, _, _ := newMockOrderService()
	stats := domain.NewOrderStats()
	stats.TotalOrders = 2
	orders.On("Stats", mock.Anything, TestSellerID).Return(stats, nil)

	got, err := svc.Stats(context.Background(), seller)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalOrders)

	_, err = svc.Stats(context.Background(), buyer)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	orders.AssertExpectations(t)
}

func TestOrderService_StatsRacingWriteIsNotCached(t *testing.T) {
	svc, orders, _, _ := newMockOrderService()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	svc.SetRedisClient(client)
	ctx := context.Background()

	before := domain.NewOrderStats()
	before.TotalOrders = 1
	after := domain.NewOrderStats()
	after.TotalOrders = 2
	// an order commits while the first aggregate is being computed
	orders.On("Stats", mock.Anything, TestSellerID).Return(before, nil).Once().Run(func(mock.Arguments) {
		svc.invalidateStats(ctx)
	})
	orders.On("Stats", mock.Anything, TestSellerID).Return(after, nil).Once()

	got, err := svc.Stats(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TotalOrders)

	got, err = svc.Stats(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalOrders)

	// now cached
	got, err = svc.Stats(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalOrders)
	orders.AssertExpectations(t)
}

func TestOrderService_PublishFailureDoesNotFailOrder(t *testing.T) {
	svc, orders, products, pub := newMockOrderService()
	products.On("FindByIDs", mock.Anything, []uint64{TestProductID}).Return(map[uint64]*domain.Product{
		TestProductID: CreateMockProduct(TestProductID, TestStoreID, TestProductPrice, TestProductStock),
	}, nil)
	orders.On("Create", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Order).ID = TestOrderID
	})
	products.On("DecrementStock", mock.Anything, TestProductID, 1, false).Return(true, nil)
	orders.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)
	pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.Anything).Return(errors.New("broker unavailable"))

	order, err := svc.CreateOrder(context.Background(), buyer, cashOrder(OrderItemInput{ProductID: TestProductID, Quantity: 1}))
	svc.Wait()

	require.NoError(t, err)
	assert.NotNil(t, order)
	pub.AssertExpectations(t)
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
