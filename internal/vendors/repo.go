package vendors

import (
	"context"

	"gorm.io/gorm"

	"github.com/homechef-app/homechef-backend/internal/repo"
	"github.com/homechef-app/homechef-backend/pkg/db/models"
)

// Status is the roster projection used to seed the realtime vendor
// snapshot before any live delta arrives.
type Status struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsOpen bool   `json:"isOpen"`
}

// Repository reads the vendor roster and their menus.
type Repository interface {
	List(ctx context.Context) ([]models.Vendor, error)
	ListStatuses(ctx context.Context) ([]Status, error)
	ListProducts(ctx context.Context, vendorID string) ([]models.Product, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a vendor repository over the provided GORM connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) List(ctx context.Context) ([]models.Vendor, error) {
	var rows []models.Vendor
	if err := r.DB(ctx).Order("name asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListStatuses(ctx context.Context) ([]Status, error) {
	rows, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make([]Status, 0, len(rows))
	for _, row := range rows {
		statuses = append(statuses, Status{
			ID:     row.ID.String(),
			Name:   row.Name,
			IsOpen: row.IsActive,
		})
	}
	return statuses, nil
}

func (r *repository) ListProducts(ctx context.Context, vendorID string) ([]models.Product, error) {
	var rows []models.Product
	if err := r.DB(ctx).
		Where("vendor_id = ?", vendorID).
		Order("name asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
