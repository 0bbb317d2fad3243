package repository

import (
	"context"

	"github.com/Eldesouky97/home-craft/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id uint64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateProfile writes the user's name and avatar.
	UpdateProfile(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

type StoreRepository interface {
	Create(ctx context.Context, s *domain.Store) error
	FindByID(ctx context.Context, id uint64) (*domain.Store, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Store, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]domain.Store, error)
	ListActive(ctx context.Context, offset, limit int) ([]domain.Store, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Store, error)
	Update(ctx context.Context, s *domain.Store) error
	Delete(ctx context.Context, id uint64) error
}
