package services

import (
	"context"
	"errors"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StoreInput struct {
	Name        string         `json:"name" validate:"required,min=2,max=120"`
	Description string         `json:"description" validate:"max=2000"`
	Category    string         `json:"category" validate:"max=60"`
	Settings    map[string]any `json:"settings"`
}

type StoreUpdateInput struct {
	Name        *string             `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string             `json:"description" validate:"omitempty,max=2000"`
	Category    *string             `json:"category" validate:"omitempty,max=60"`
	Settings    map[string]any      `json:"settings"`
	Status      *domain.StoreStatus `json:"status" validate:"omitempty,oneof=active pending suspended"`
	Featured    *bool               `json:"featured"`
}

const defaultFeaturedLimit = 6

type StoreService struct {
	stores repository.StoreRepository
	log    *zap.Logger
}

func NewStoreService(stores repository.StoreRepository, log *zap.Logger) *StoreService {
	return &StoreService{stores: stores, log: log}
}

func (s *StoreService) fail(err error) error {
	if de, ok := domain.AsError(err); ok {
		return de
	}
	s.log.Error("store.save_failed", zap.Error(err))
	return domain.Persistence("store.save_failed", err)
}

func (s *StoreService) checkSlug(ctx context.Context, name string, exceptID uint64) (string, error) {
	slug := Slugify(name)
	existing, err := s.stores.FindBySlug(ctx, slug)
	if err != nil {
		return "", s.fail(err)
	}
	if existing != nil && existing.ID != exceptID {
		return "", domain.Conflict("store.slug_taken", name)
	}
	return slug, nil
}

func (s *StoreService) CreateStore(ctx context.Context, actor *domain.Actor, in StoreInput) (*domain.Store, error) {
	if !actor.IsSeller() {
		return nil, domain.Forbidden("store.seller_only")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	slug, err := s.checkSlug(ctx, in.Name, 0)
	if err != nil {
		return nil, err
	}

	store := &domain.Store{
		OwnerID:     actor.UserID,
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		Category:    in.Category,
		Status:      domain.StoreActive,
		Settings:    in.Settings,
	}
	if store.Category == "" {
		store.Category = "general"
	}
	if err := s.stores.Create(ctx, store); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Conflict("store.slug_taken", in.Name)
		}
		return nil, s.fail(err)
	}
	return store, nil
}

func (s *StoreService) GetStore(ctx context.Context, id uint64) (*domain.Store, error) {
	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail(err)
	}
	if store == nil {
		return nil, domain.NotFound("store.not_found", id)
	}
	return store, nil
}

// ListStores lists active stores, newest first.
func (s *StoreService) ListStores(ctx context.Context, q ListQuery) (*Page[domain.Store], error) {
	page, limit, offset := NormalizePage(q.Page, q.Limit)
	items, total, err := s.stores.ListActive(ctx, offset, limit)
	if err != nil {
		return nil, s.fail(err)
	}
	return newPage(items, page, limit, total), nil
}

// FeaturedStores returns up to limit active featured stores.
func (s *StoreService) FeaturedStores(ctx context.Context, limit int) ([]domain.Store, error) {
	if limit < 1 {
		limit = defaultFeaturedLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	list, err := s.stores.ListFeatured(ctx, limit)
	if err != nil {
		return nil, s.fail(err)
	}
	if list == nil {
		list = []domain.Store{}
	}
	return list, nil
}

func (s *StoreService) ListMyStores(ctx context.Context, actor *domain.Actor) ([]domain.Store, error) {
	if actor == nil {
		return nil, domain.Unauthenticated("auth.token_missing")
	}
	list, err := s.stores.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, s.fail(err)
	}
	if list == nil {
		list = []domain.Store{}
	}
	return list, nil
}

func (s *StoreService) owned(ctx context.Context, actor *domain.Actor, id uint64) (*domain.Store, error) {
	store, err := s.GetStore(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || (store.OwnerID != actor.UserID && !actor.IsAdmin()) {
		return nil, domain.Forbidden("store.forbidden")
	}
	return store, nil
}

// UpdateStore applies the non-nil fields of in. Only admins may change the
// store status or feature a store.
func (s *StoreService) UpdateStore(ctx context.Context, actor *domain.Actor, id uint64, in StoreUpdateInput) (*domain.Store, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	store, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != store.Name {
		slug, err := s.checkSlug(ctx, *in.Name, store.ID)
		if err != nil {
			return nil, err
		}
		store.Name, store.Slug = *in.Name, slug
	}
	if in.Description != nil {
		store.Description = *in.Description
	}
	if in.Category != nil {
		store.Category = *in.Category
	}
	if in.Settings != nil {
		store.Settings = in.Settings
	}
	if in.Status != nil {
		if !actor.IsAdmin() {
			return nil, domain.Forbidden("auth.role_required")
		}
		store.Status = *in.Status
	}
	if in.Featured != nil {
		if !actor.IsAdmin() {
			return nil, domain.Forbidden("auth.role_required")
		}
		store.Featured = *in.Featured
	}

	if err := s.stores.Update(ctx, store); err != nil {
		return nil, s.fail(err)
	}
	return store, nil
}

// DeleteStore soft-deletes the store; its slug stays reserved.
func (s *StoreService) DeleteStore(ctx context.Context, actor *domain.Actor, id uint64) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.stores.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("store.not_found", id)
		}
		return s.fail(err)
	}
	return nil
}
