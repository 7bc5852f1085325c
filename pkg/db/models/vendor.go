package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a home chef whose menu items are sold through category carts.
// IsActive mirrors the kitchen's open/closed toggle and seeds the realtime
// status snapshot before any live delta arrives.
type Vendor struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Latitude  *float64  `gorm:"column:latitude"`
	Longitude *float64  `gorm:"column:longitude"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Vendor) TableName() string {
	return "vendors"
}
