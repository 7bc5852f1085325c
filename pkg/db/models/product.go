package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a menu item offered by a vendor within one category.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID     uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null"`
	CategoryID   string          `gorm:"column:category_id;not null"`
	Name         string          `gorm:"column:name;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric;not null"`
	ImageRef     string          `gorm:"column:image_ref"`
	OfferPercent *int            `gorm:"column:offer_percent"`
	IsAvailable  bool            `gorm:"column:is_available;not null;default:true"`
	Stock        *int            `gorm:"column:stock"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
