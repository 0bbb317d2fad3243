package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(120);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;type:varchar(255);not null"`
	Role         Role      `json:"role" gorm:"type:varchar(10);not null;default:'BUYER'"`
	Avatar       *string   `json:"avatar" gorm:"type:varchar(255)"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

type StoreStatus string

const (
	StoreActive    StoreStatus = "active"
	StorePending   StoreStatus = "pending"
	StoreSuspended StoreStatus = "suspended"
)

type Store struct {
	ID          uint64            `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerID     uint64            `json:"ownerId" gorm:"not null;index"`
	Name        string            `json:"name" gorm:"type:varchar(120);not null"`
	Slug        string            `json:"slug" gorm:"type:varchar(160);uniqueIndex;not null"`
	Description string            `json:"description" gorm:"type:text"`
	Category    string            `json:"category" gorm:"type:varchar(60);not null;default:'general'"`
	Status      StoreStatus       `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	Featured    bool              `json:"featured" gorm:"not null;default:false;index"`
	Settings    datatypes.JSONMap `json:"settings"`
	CreatedAt   time.Time         `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `json:"updatedAt" gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt    `json:"-" gorm:"index"`
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uint64
	Role   Role
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

func (a *Actor) IsSeller() bool {
	return a != nil && (a.Role == RoleSeller || a.Role == RoleAdmin)
}
