package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog record. The catalog is read-only from this service's
// point of view; purchases copy what they need from it.
type Product struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Slug           string            `gorm:"uniqueIndex;size:140" json:"slug"`
	Name           string            `gorm:"size:180;not null" json:"name"`
	Brand          string            `gorm:"size:100;index" json:"brand"`
	Model          string            `gorm:"size:140" json:"model"`
	Category       string            `gorm:"size:100" json:"category"`
	Price          decimal.Decimal   `gorm:"type:numeric;not null" json:"price"`
	CostPrice      decimal.Decimal   `gorm:"type:numeric;not null;default:0" json:"costPrice"`
	Stock          int               `gorm:"type:int;default:0" json:"stock"`
	Active         bool              `gorm:"default:true;index" json:"active"`
	Specifications map[string]string `gorm:"type:jsonb;serializer:json" json:"specifications"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

type ProductFilter struct {
	Brand    string
	Query    string
	Sort     string
	Page     int
	PageSize int
}
