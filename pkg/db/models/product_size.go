package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSize is a per-size price variant attached to a product.
type ProductSize struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Size      string          `gorm:"column:size;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
}
