package mysql

import (
	"context"

	"github.com/Eldesouky97/home-craft/internal/repository"

	"gorm.io/gorm"
)

type unitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) repository.UnitOfWork {
	return &unitOfWork{db: db}
}

type txRepos struct {
	orders   *orderRepo
	products *productRepo
}

func (t *txRepos) Orders() repository.OrderRepository     { return t.orders }
func (t *txRepos) Products() repository.ProductRepository { return t.products }

func (u *unitOfWork) Do(ctx context.Context, fn func(tx repository.Tx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepos{
			orders:   &orderRepo{db: tx},
			products: &productRepo{db: tx},
		})
	})
}
