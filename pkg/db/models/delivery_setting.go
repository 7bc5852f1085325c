package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliverySetting is an admin-configured distance tier: carts whose vendor
// sits within [MinDistanceKm, MaxDistanceKm] of the shopper pay Price,
// waived when the cart subtotal reaches MinOrderAmount.
type DeliverySetting struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string           `gorm:"column:name;not null"`
	MinDistanceKm  decimal.Decimal  `gorm:"column:min_distance_km;type:numeric;not null"`
	MaxDistanceKm  decimal.Decimal  `gorm:"column:max_distance_km;type:numeric;not null"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric;not null;default:0"`
	MinOrderAmount *decimal.Decimal `gorm:"column:min_order_amount;type:numeric"`
	IsActive       bool             `gorm:"column:is_active;not null;default:true"`
	Position       int              `gorm:"column:position;not null;default:0"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (DeliverySetting) TableName() string {
	return "delivery_settings"
}
