package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog listing. Catalog administration lives in a
// separate surface; checkout treats products as read-only.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Category    string          `gorm:"column:category;not null"`
	Image       *string         `gorm:"column:image"`
	InStock     bool            `gorm:"column:in_stock;not null;default:true"`
	Rating      float64         `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	Sizes       []ProductSize   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Reviews     []Review        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice resolves the unit price for an optional size variant. A known
// size wins over the base price; an unknown size falls back to it.
func (p *Product) EffectivePrice(size *string) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if size == nil || *size == "" {
		return p.Price
	}
	for _, variant := range p.Sizes {
		if variant.Size == *size {
			return variant.Price
		}
	}
	return p.Price
}
