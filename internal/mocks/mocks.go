package mocks

import (
	"context"
	"io"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockProductRepository struct {
	mock.Mock
}

type MockCategoryRepository struct {
	mock.Mock
}

type MockUserRepository struct {
	mock.Mock
}

type MockStatsRepository struct {
	mock.Mock
}

type MockStoreRepository struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockImageStore struct {
	mock.Mock
}

// MockUnitOfWork runs fn directly against Tx and returns fn's error, so
// tests can assert what happened inside the transaction.
type MockUnitOfWork struct {
	Tx *MockTx
}

type MockTx struct {
	OrderRepo   *MockOrderRepository
	ProductRepo *MockProductRepository
}

func NewMockUnitOfWork(orders *MockOrderRepository, products *MockProductRepository) *MockUnitOfWork {
	return &MockUnitOfWork{Tx: &MockTx{OrderRepo: orders, ProductRepo: products}}
}

func (u *MockUnitOfWork) Do(ctx context.Context, fn func(tx repository.Tx) error) error {
	return fn(u.Tx)
}

func (t *MockTx) Orders() repository.OrderRepository     { return t.OrderRepo }
func (t *MockTx) Products() repository.ProductRepository { return t.ProductRepo }

func (m *MockPublisher) Publish(ctx context.Context, topic string, message any) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, f repository.OrderFilter) ([]domain.OrderSummary, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderSummary), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, f repository.OrderFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uint64, from, to domain.OrderStatus, trackingNumber *string) (bool, error) {
	args := m.Called(ctx, id, from, to, trackingNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uint64, status domain.OrderStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CountItemsOutsideOwner(ctx context.Context, orderID, ownerID uint64) (int64, error) {
	args := m.Called(ctx, orderID, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Stats(ctx context.Context, ownerID uint64) (*domain.OrderStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderStats), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]*domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint64]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) SetStock(ctx context.Context, id uint64, stock int) error {
	args := m.Called(ctx, id, stock)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) SlugExists(ctx context.Context, storeID uint64, slug string, exceptID uint64) (bool, error) {
	args := m.Called(ctx, storeID, slug, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uint64, qty int, unconditional bool) (bool, error) {
	args := m.Called(ctx, id, qty, unconditional)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) IncrementStock(ctx context.Context, id uint64, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uint64) (*domain.CategoryView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryView), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, rootsOnly bool) ([]domain.CategoryView, error) {
	args := m.Called(ctx, rootsOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryView), args.Error(1)
}

func (m *MockCategoryRepository) Children(ctx context.Context, parentID uint64) ([]domain.Category, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) NameExists(ctx context.Context, name string, exceptID uint64) (bool, error) {
	args := m.Called(ctx, name, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Usage(ctx context.Context, id uint64) (int64, int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockStoreRepository) Create(ctx context.Context, s *domain.Store) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStoreRepository) FindByID(ctx context.Context, id uint64) (*domain.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

func (m *MockStoreRepository) FindBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

func (m *MockStoreRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]domain.Store, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Store), args.Error(1)
}

func (m *MockStoreRepository) ListActive(ctx context.Context, offset, limit int) ([]domain.Store, int64, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Store), args.Get(1).(int64), args.Error(2)
}

func (m *MockStoreRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Store, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Store), args.Error(1)
}

func (m *MockStoreRepository) Update(ctx context.Context, s *domain.Store) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStoreRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockImageStore) Save(r io.Reader, originalName string, size int64) (string, error) {
	args := m.Called(r, originalName, size)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

func (m *MockImageStore) MaxSize() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *MockStatsRepository) General(ctx context.Context) (*domain.GeneralStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneralStats), args.Error(1)
}

func (m *MockStatsRepository) Dashboard(ctx context.Context, ownerID uint64) (*domain.DashboardStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}
