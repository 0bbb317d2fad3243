package mysql

import (
	"context"
	"errors"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Model(u).Select("name", "avatar").Updates(u).Error
}

func (r *userRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) first(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

type storeRepo struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) repository.StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) Create(ctx context.Context, s *domain.Store) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *storeRepo) FindByID(ctx context.Context, id uint64) (*domain.Store, error) {
	var s domain.Store
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// FindBySlug includes soft-deleted stores: the slug index is global, so a
// deleted store still holds its slug.
func (r *storeRepo) FindBySlug(ctx context.Context, slug string) (*domain.Store, error) {
	var s domain.Store
	if err := r.db.WithContext(ctx).Unscoped().Where("slug = ?", slug).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *storeRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]domain.Store, error) {
	var out []domain.Store
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *storeRepo) ListActive(ctx context.Context, offset, limit int) ([]domain.Store, int64, error) {
	active := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Store{}).Where("status = ?", domain.StoreActive)
	}

	var total int64
	if err := active().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Store
	if err := active().Order("created_at DESC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListFeatured returns up to limit active featured stores, newest first.
func (r *storeRepo) ListFeatured(ctx context.Context, limit int) ([]domain.Store, error) {
	var out []domain.Store
	err := r.db.WithContext(ctx).
		Where("featured = ? AND status = ?", true, domain.StoreActive).
		Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *storeRepo) Update(ctx context.Context, s *domain.Store) error {
	return r.db.WithContext(ctx).Model(s).
		Select("name", "slug", "description", "category", "status", "featured", "settings").
		Updates(s).Error
}

func (r *storeRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Store{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
