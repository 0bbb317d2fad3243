package services

import (
	"context"
	"errors"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductInput struct {
	StoreID       uint64               `json:"storeId" validate:"required,min=1"`
	CategoryID    *uint64              `json:"categoryId" validate:"omitempty,min=1"`
	Name          string               `json:"name" validate:"required,min=2,max=255"`
	Description   string               `json:"description" validate:"max=5000"`
	Price         decimal.Decimal      `json:"price"`
	ComparePrice  *decimal.Decimal     `json:"comparePrice"`
	Stock         int                  `json:"stock" validate:"min=0"`
	TrackQuantity *bool                `json:"trackQuantity"`
	AllowOversell bool                 `json:"allowOversell"`
	Status        domain.ProductStatus `json:"status" validate:"omitempty,oneof=active inactive draft out_of_stock"`
	Images        []string             `json:"images" validate:"max=10,dive,max=255"`
}

type ProductUpdateInput struct {
	CategoryID    *uint64               `json:"categoryId" validate:"omitempty,min=1"`
	Name          *string               `json:"name" validate:"omitempty,min=2,max=255"`
	Description   *string               `json:"description" validate:"omitempty,max=5000"`
	Price         *decimal.Decimal      `json:"price"`
	ComparePrice  *decimal.Decimal      `json:"comparePrice"`
	Stock         *int                  `json:"stock" validate:"omitempty,min=0"`
	TrackQuantity *bool                 `json:"trackQuantity"`
	AllowOversell *bool                 `json:"allowOversell"`
	Status        *domain.ProductStatus `json:"status" validate:"omitempty,oneof=active inactive draft out_of_stock"`
	Images        []string              `json:"images" validate:"omitempty,max=10,dive,max=255"`
}

type ProductQuery struct {
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	StoreID    uint64 `form:"storeId"`
	CategoryID uint64 `form:"categoryId"`
	Status     string `form:"status"`
	Search     string `form:"search"`
	Sort       string `form:"sort"`
	Order      string `form:"order"`
}

type CategoryInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description string  `json:"description" validate:"max=1000"`
	ParentID    *uint64 `json:"parentId" validate:"omitempty,min=1"`
	Image       *string `json:"image" validate:"omitempty,max=255"`
}

func checkPrices(price *decimal.Decimal, compare *decimal.Decimal) error {
	var violations []domain.Violation
	if price != nil && price.IsNegative() {
		violations = append(violations, domain.Violation{Field: "price", Rule: "min"})
	}
	if compare != nil && compare.IsNegative() {
		violations = append(violations, domain.Violation{Field: "comparePrice", Rule: "min"})
	}
	if len(violations) > 0 {
		return domain.ValidationError("validation.failed", violations...)
	}
	return nil
}

type CatalogService struct {
	uow        repository.UnitOfWork
	products   repository.ProductRepository
	categories repository.CategoryRepository
	stores     repository.StoreRepository
	log        *zap.Logger
}

func NewCatalogService(uow repository.UnitOfWork, products repository.ProductRepository, categories repository.CategoryRepository, stores repository.StoreRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{uow: uow, products: products, categories: categories, stores: stores, log: log}
}

func (s *CatalogService) fail(key string, err error) error {
	if de, ok := domain.AsError(err); ok {
		return de
	}
	s.log.Error(key, zap.Error(err))
	return domain.Persistence(key, err)
}

// authorizeStore checks that actor may manage products of storeID.
func (s *CatalogService) authorizeStore(ctx context.Context, actor *domain.Actor, storeID uint64) error {
	if !actor.IsSeller() {
		return domain.Forbidden("product.forbidden")
	}
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return s.fail("product.save_failed", err)
	}
	if store == nil {
		return domain.NotFound("store.not_found", storeID)
	}
	if store.OwnerID != actor.UserID && !actor.IsAdmin() {
		return domain.Forbidden("product.forbidden")
	}
	return nil
}

func (s *CatalogService) checkCategory(ctx context.Context, id *uint64) error {
	if id == nil {
		return nil
	}
	c, err := s.categories.FindByID(ctx, *id)
	if err != nil {
		return s.fail("product.save_failed", err)
	}
	if c == nil {
		return domain.NotFound("category.not_found", *id)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor *domain.Actor, in ProductInput) (*domain.Product, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if err := checkPrices(&in.Price, in.ComparePrice); err != nil {
		return nil, err
	}
	if err := s.authorizeStore(ctx, actor, in.StoreID); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	slug := Slugify(in.Name)
	taken, err := s.products.SlugExists(ctx, in.StoreID, slug, 0)
	if err != nil {
		return nil, s.fail("product.save_failed", err)
	}
	if taken {
		return nil, domain.Conflict("product.slug_taken", in.Name)
	}

	p := &domain.Product{
		StoreID:       in.StoreID,
		CategoryID:    in.CategoryID,
		Name:          in.Name,
		Slug:          slug,
		Description:   in.Description,
		Price:         in.Price,
		ComparePrice:  in.ComparePrice,
		Stock:         in.Stock,
		TrackQuantity: in.TrackQuantity == nil || *in.TrackQuantity,
		AllowOversell: in.AllowOversell,
		Status:        in.Status,
		Images:        in.Images,
	}
	if p.Status == "" {
		p.Status = domain.ProductActive
	}
	if err := s.products.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Conflict("product.slug_taken", in.Name)
		}
		return nil, s.fail("product.save_failed", err)
	}
	return p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail("catalog.read_failed", err)
	}
	if p == nil {
		return nil, domain.NotFound("product.not_found", id)
	}
	return p, nil
}

// ListProducts lists active products unless q asks for another status.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*Page[domain.Product], error) {
	page, limit, offset := NormalizePage(q.Page, q.Limit)
	f := repository.ProductFilter{
		StoreID:    q.StoreID,
		CategoryID: q.CategoryID,
		Status:     domain.ProductStatus(q.Status),
		Search:     q.Search,
		SortBy:     q.Sort,
		SortDesc:   q.Order != "asc",
		Offset:     offset,
		Limit:      limit,
	}
	if f.Status == "" {
		f.Status = domain.ProductActive
	}
	items, total, err := s.products.List(ctx, f)
	if err != nil {
		return nil, s.fail("catalog.read_failed", err)
	}
	return newPage(items, page, limit, total), nil
}

// ListStoreProducts lists the products of one store. An unknown store is
// reported as not found rather than as an empty page.
func (s *CatalogService) ListStoreProducts(ctx context.Context, storeID uint64, q ProductQuery) (*Page[domain.Product], error) {
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, s.fail("catalog.read_failed", err)
	}
	if store == nil {
		return nil, domain.NotFound("store.not_found", storeID)
	}
	q.StoreID = storeID
	return s.ListProducts(ctx, q)
}

func (s *CatalogService) ListCategoryProducts(ctx context.Context, categoryID uint64, q ProductQuery) (*Page[domain.Product], error) {
	c, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, s.fail("catalog.read_failed", err)
	}
	if c == nil {
		return nil, domain.NotFound("category.not_found", categoryID)
	}
	q.CategoryID = categoryID
	return s.ListProducts(ctx, q)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor *domain.Actor, id uint64, in ProductUpdateInput) (*domain.Product, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if err := checkPrices(in.Price, in.ComparePrice); err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeStore(ctx, actor, p.StoreID); err != nil {
		return nil, err
	}

	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, in.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = in.CategoryID
	}
	if in.Name != nil && *in.Name != p.Name {
		slug := Slugify(*in.Name)
		taken, err := s.products.SlugExists(ctx, p.StoreID, slug, p.ID)
		if err != nil {
			return nil, s.fail("product.save_failed", err)
		}
		if taken {
			return nil, domain.Conflict("product.slug_taken", *in.Name)
		}
		p.Name, p.Slug = *in.Name, slug
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.ComparePrice != nil {
		p.ComparePrice = in.ComparePrice
	}
	if in.TrackQuantity != nil {
		p.TrackQuantity = *in.TrackQuantity
	}
	if in.AllowOversell != nil {
		p.AllowOversell = *in.AllowOversell
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Images != nil {
		p.Images = in.Images
	}

	err = s.uow.Do(ctx, func(tx repository.Tx) error {
		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}
		if in.Stock != nil {
			return tx.Products().SetStock(ctx, p.ID, *in.Stock)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("product.save_failed", err)
	}
	return s.GetProduct(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor *domain.Actor, id uint64) error {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeStore(ctx, actor, p.StoreID); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("product.not_found", id)
		}
		return s.fail("product.save_failed", err)
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor *domain.Actor, in CategoryInput) (*domain.Category, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("auth.role_required")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if err := s.checkCategoryName(ctx, in.Name, 0); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, 0, in.ParentID); err != nil {
		return nil, err
	}

	c := &domain.Category{
		Name:        in.Name,
		Slug:        Slugify(in.Name),
		Description: in.Description,
		ParentID:    in.ParentID,
		Image:       in.Image,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Conflict("category.name_taken", in.Name)
		}
		return nil, s.fail("category.save_failed", err)
	}
	return c, nil
}

func (s *CatalogService) checkCategoryName(ctx context.Context, name string, exceptID uint64) error {
	taken, err := s.categories.NameExists(ctx, name, exceptID)
	if err != nil {
		return s.fail("category.save_failed", err)
	}
	if taken {
		return domain.Conflict("category.name_taken", name)
	}
	return nil
}

func (s *CatalogService) checkParent(ctx context.Context, id uint64, parentID *uint64) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return domain.ValidationError("category.self_parent",
			domain.Violation{Field: "parentId", Rule: "self"})
	}
	parent, err := s.categories.FindByID(ctx, *parentID)
	if err != nil {
		return s.fail("category.save_failed", err)
	}
	if parent == nil {
		return domain.NotFound("category.parent_not_found", *parentID)
	}
	return nil
}

func (s *CatalogService) ListCategories(ctx context.Context, rootsOnly bool) ([]domain.CategoryView, error) {
	list, err := s.categories.List(ctx, rootsOnly)
	if err != nil {
		return nil, s.fail("catalog.read_failed", err)
	}
	if list == nil {
		list = []domain.CategoryView{}
	}
	return list, nil
}

// GetCategory returns the category with its product count and direct
// subcategories.
func (s *CatalogService) GetCategory(ctx context.Context, id uint64) (*domain.CategoryView, error) {
	v, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail("catalog.read_failed", err)
	}
	if v == nil {
		return nil, domain.NotFound("category.not_found", id)
	}
	children, err := s.categories.Children(ctx, id)
	if err != nil {
		return nil, s.fail("catalog.read_failed", err)
	}
	v.Subcategories = children
	return v, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, actor *domain.Actor, id uint64, in CategoryInput) (*domain.Category, error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("auth.role_required")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	v, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != v.Name {
		if err := s.checkCategoryName(ctx, in.Name, id); err != nil {
			return nil, err
		}
	}
	if err := s.checkParent(ctx, id, in.ParentID); err != nil {
		return nil, err
	}

	c := v.Category
	c.Name = in.Name
	c.Slug = Slugify(in.Name)
	c.Description = in.Description
	c.ParentID = in.ParentID
	c.Image = in.Image
	if err := s.categories.Update(ctx, &c); err != nil {
		return nil, s.fail("category.save_failed", err)
	}
	return &c, nil
}

// DeleteCategory refuses to delete a category that still has products or
// subcategories.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor *domain.Actor, id uint64) error {
	if !actor.IsAdmin() {
		return domain.Forbidden("auth.role_required")
	}
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	products, children, err := s.categories.Usage(ctx, id)
	if err != nil {
		return s.fail("category.save_failed", err)
	}
	if products > 0 || children > 0 {
		return domain.ValidationError("category.in_use")
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("category.not_found", id)
		}
		return s.fail("category.save_failed", err)
	}
	return nil
}
