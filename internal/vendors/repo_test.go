package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/homechef-app/homechef-backend/pkg/db/models"
)

func setupVendorsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  latitude REAL,
  longitude REAL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price TEXT NOT NULL,
  image_ref TEXT,
  offer_percent INTEGER,
  is_available INTEGER NOT NULL DEFAULT 1,
  stock INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestListStatusesMapsOpenFlag(t *testing.T) {
	db := setupVendorsTestDB(t)

	lat, lon := 40.4168, -3.7038
	open := models.Vendor{ID: uuid.New(), Name: "Nonna", Latitude: &lat, Longitude: &lon, IsActive: true}
	closed := models.Vendor{ID: uuid.New(), Name: "Trattoria", IsActive: false}
	require.NoError(t, db.Create(&open).Error)
	require.NoError(t, db.Create(&closed).Error)

	repo := NewRepository(db)
	statuses, err := repo.ListStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	byID := map[string]Status{}
	for _, status := range statuses {
		byID[status.ID] = status
	}
	assert.True(t, byID[open.ID.String()].IsOpen)
	assert.Equal(t, "Nonna", byID[open.ID.String()].Name)
	assert.False(t, byID[closed.ID.String()].IsOpen)
}

func TestListReturnsCoordinates(t *testing.T) {
	db := setupVendorsTestDB(t)

	lat, lon := 40.4168, -3.7038
	vendor := models.Vendor{ID: uuid.New(), Name: "Nonna", Latitude: &lat, Longitude: &lon, IsActive: true}
	require.NoError(t, db.Create(&vendor).Error)

	repo := NewRepository(db)
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Latitude)
	assert.InDelta(t, lat, *list[0].Latitude, 0.0001)
}

func TestListProductsFiltersByVendor(t *testing.T) {
	db := setupVendorsTestDB(t)

	nonna := uuid.New()
	other := uuid.New()
	stock := 3
	require.NoError(t, db.Create(&models.Product{
		ID: uuid.New(), VendorID: nonna, CategoryID: "pasta",
		Name: "Carbonara", Price: decimal.RequireFromString("9.50"),
		IsAvailable: true, Stock: &stock,
	}).Error)
	require.NoError(t, db.Create(&models.Product{
		ID: uuid.New(), VendorID: nonna, CategoryID: "pasta",
		Name: "Arrabbiata", Price: decimal.RequireFromString("8.00"),
		IsAvailable: false,
	}).Error)
	require.NoError(t, db.Create(&models.Product{
		ID: uuid.New(), VendorID: other, CategoryID: "sushi",
		Name: "Nigiri", Price: decimal.RequireFromString("12.00"),
		IsAvailable: true,
	}).Error)

	repo := NewRepository(db)
	list, err := repo.ListProducts(context.Background(), nonna.String())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Arrabbiata", list[0].Name)
	assert.Equal(t, "Carbonara", list[1].Name)
	assert.True(t, list[1].Price.Equal(decimal.RequireFromString("9.50")))
	require.NotNil(t, list[1].Stock)
	assert.Equal(t, 3, *list[1].Stock)
	assert.False(t, list[0].IsAvailable)
}
