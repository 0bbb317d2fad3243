package repository

import (
	"context"

	"github.com/Eldesouky97/home-craft/internal/domain"
)

type ProductFilter struct {
	StoreID    uint64
	CategoryID uint64
	Status     domain.ProductStatus
	Search     string
	SortBy     string
	SortDesc   bool
	Offset     int
	Limit      int
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]*domain.Product, error)
	List(ctx context.Context, f ProductFilter) ([]domain.Product, int64, error)
	// Update writes every editable column except stock, which only moves
	// through SetStock or the decrement/increment pair.
	Update(ctx context.Context, p *domain.Product) error
	SetStock(ctx context.Context, id uint64, stock int) error
	Delete(ctx context.Context, id uint64) error
	SlugExists(ctx context.Context, storeID uint64, slug string, exceptID uint64) (bool, error)
	// DecrementStock removes qty units from stock. Unless unconditional is set
	// the update only applies while stock >= qty; ok is false when no row
	// was updated.
	DecrementStock(ctx context.Context, id uint64, qty int, unconditional bool) (ok bool, err error)
	IncrementStock(ctx context.Context, id uint64, qty int) error
}

type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	FindByID(ctx context.Context, id uint64) (*domain.CategoryView, error)
	List(ctx context.Context, rootsOnly bool) ([]domain.CategoryView, error)
	Children(ctx context.Context, parentID uint64) ([]domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id uint64) error
	NameExists(ctx context.Context, name string, exceptID uint64) (bool, error)
	// Usage returns how many products and child categories reference id.
	Usage(ctx context.Context, id uint64) (products, children int64, err error)
}
