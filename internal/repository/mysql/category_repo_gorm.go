package mysql

import (
	"context"
	"errors"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"gorm.io/gorm"
)

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepo{db: db}
}

const categoryViewSelect = `
	SELECT c.*, parent.name AS parent_name,
		(SELECT COUNT(*) FROM products p
			WHERE p.category_id = c.id AND p.status = ? AND p.deleted_at IS NULL) AS products_count
	FROM categories c
	LEFT JOIN categories parent ON parent.id = c.parent_id`

func (r *categoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) FindByID(ctx context.Context, id uint64) (*domain.CategoryView, error) {
	var v domain.CategoryView
	res := r.db.WithContext(ctx).Raw(categoryViewSelect+" WHERE c.id = ?", domain.ProductActive, id).Scan(&v)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &v, nil
}

func (r *categoryRepo) List(ctx context.Context, rootsOnly bool) ([]domain.CategoryView, error) {
	query := categoryViewSelect
	if rootsOnly {
		query += " WHERE c.parent_id IS NULL"
	}
	query += " ORDER BY c.name ASC"

	var out []domain.CategoryView
	if err := r.db.WithContext(ctx).Raw(query, domain.ProductActive).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) Children(ctx context.Context, parentID uint64) ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *categoryRepo) Update(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Model(c).
		Select("name", "slug", "description", "parent_id", "image").
		Updates(c).Error
}

func (r *categoryRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoryRepo) NameExists(ctx context.Context, name string, exceptID uint64) (bool, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).Select("id").Where("name = ? AND id <> ?", name, exceptID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *categoryRepo) Usage(ctx context.Context, id uint64) (int64, int64, error) {
	var products, children int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&domain.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return 0, 0, err
	}
	return products, children, nil
}
