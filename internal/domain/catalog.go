package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductActive     ProductStatus = "active"
	ProductInactive   ProductStatus = "inactive"
	ProductDraft      ProductStatus = "draft"
	ProductOutOfStock ProductStatus = "out_of_stock"
)

type Product struct {
	ID            uint64                      `json:"id" gorm:"primaryKey;autoIncrement"`
	StoreID       uint64                      `json:"storeId" gorm:"not null;uniqueIndex:idx_products_store_slug,priority:1"`
	CategoryID    *uint64                     `json:"categoryId" gorm:"index"`
	Name          string                      `json:"name" gorm:"type:varchar(255);not null"`
	Slug          string                      `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_store_slug,priority:2"`
	Description   string                      `json:"description" gorm:"type:text"`
	Price         decimal.Decimal             `json:"price" gorm:"type:decimal(12,2);not null"`
	ComparePrice  *decimal.Decimal            `json:"comparePrice" gorm:"type:decimal(12,2)"`
	Stock         int                         `json:"stock" gorm:"not null;default:0"`
	TrackQuantity bool                        `json:"trackQuantity" gorm:"not null"`
	AllowOversell bool                        `json:"allowOversell" gorm:"not null;default:false"`
	Status        ProductStatus               `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	Images        datatypes.JSONSlice[string] `json:"images"`
	CreatedAt     time.Time                   `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt     time.Time                   `json:"updatedAt" gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt              `json:"-" gorm:"index"`
}

func (p *Product) Orderable() bool {
	return p.Status == ProductActive
}

// Reserves reports whether ordering p must check and decrement stock.
func (p *Product) Reserves() bool {
	return p.TrackQuantity
}

// Shortfall returns how many of qty units cannot be served from stock. It is
// always zero for untracked or oversell products.
func (p *Product) Shortfall(qty int) int {
	if !p.TrackQuantity || p.AllowOversell || qty <= p.Stock {
		return 0
	}
	return qty - p.Stock
}

type Category struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(120);uniqueIndex;not null"`
	Slug        string    `json:"slug" gorm:"type:varchar(160);index;not null"`
	Description string    `json:"description" gorm:"type:text"`
	ParentID    *uint64   `json:"parentId" gorm:"index"`
	Image       *string   `json:"image" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// CategoryView is a category with its derived counts and children.
type CategoryView struct {
	Category
	ParentName    *string    `json:"parentName,omitempty" gorm:"column:parent_name"`
	ProductsCount int64      `json:"productsCount" gorm:"column:products_count"`
	Subcategories []Category `json:"subcategories,omitempty" gorm:"-"`
}
