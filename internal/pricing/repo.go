package pricing

import (
	"context"

	"gorm.io/gorm"

	"github.com/homechef-app/homechef-backend/internal/repo"
	"github.com/homechef-app/homechef-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Repository reads admin-configured delivery tiers.
type Repository interface {
	ListSettings(ctx context.Context) ([]models.DeliverySetting, error)
	ListTiers(ctx context.Context) ([]Tier, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a tier repository over the provided GORM connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) ListSettings(ctx context.Context) ([]models.DeliverySetting, error) {
	var rows []models.DeliverySetting
	if err := r.DB(ctx).
		Order("position asc, created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListTiers projects the stored settings into engine tiers, preserving the
// admin-defined ordering that drives first-match-wins selection.
func (r *repository) ListTiers(ctx context.Context) ([]Tier, error) {
	rows, err := r.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	tiers := make([]Tier, 0, len(rows))
	for _, row := range rows {
		tiers = append(tiers, tierFromModel(row))
	}
	return tiers, nil
}

func tierFromModel(row models.DeliverySetting) Tier {
	minOrder := decimal.Zero
	if row.MinOrderAmount != nil {
		minOrder = *row.MinOrderAmount
	}
	return Tier{
		Name:           row.Name,
		MinDistanceKm:  row.MinDistanceKm.InexactFloat64(),
		MaxDistanceKm:  row.MaxDistanceKm.InexactFloat64(),
		Fee:            row.Price,
		MinOrderAmount: minOrder,
		IsActive:       row.IsActive,
	}
}
