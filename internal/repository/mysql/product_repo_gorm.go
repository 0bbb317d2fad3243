package mysql

import (
	"context"
	"errors"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]*domain.Product, error) {
	out := make(map[uint64]*domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []domain.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

var productSortColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"name":       "name",
}

func (r *productRepo) filtered(ctx context.Context, f repository.ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if f.StoreID != 0 {
		q = q.Where("store_id = ?", f.StoreID)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		q = q.Where("name LIKE ?", "%"+f.Search+"%")
	}
	return q
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := productSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := " ASC"
	if f.SortDesc {
		dir = " DESC"
	}

	var list []domain.Product
	err := r.filtered(ctx, f).Order(col + dir).Order("id" + dir).Offset(f.Offset).Limit(f.Limit).Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Model(p).
		Select("category_id", "name", "slug", "description", "price", "compare_price",
			"track_quantity", "allow_oversell", "status", "images").
		Updates(p).Error
}

func (r *productRepo) SetStock(ctx context.Context, id uint64, stock int) error {
	return r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Update("stock", stock).Error
}

func (r *productRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) SlugExists(ctx context.Context, storeID uint64, slug string, exceptID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&domain.Product{}).
		Where("store_id = ? AND slug = ? AND id <> ?", storeID, slug, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *productRepo) DecrementStock(ctx context.Context, id uint64, qty int, unconditional bool) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id)
	if !unconditional {
		q = q.Where("stock >= ?", qty)
	}
	res := q.UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementStock also reaches soft-deleted rows so restocking an old order
// never silently drops units.
func (r *productRepo) IncrementStock(ctx context.Context, id uint64, qty int) error {
	return r.db.WithContext(ctx).Unscoped().Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}
