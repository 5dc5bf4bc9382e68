package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/apothex/pricing-backend/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  pack_size TEXT,
  zi_number TEXT,
  aip TEXT NOT NULL,
  min_order_qty INTEGER NOT NULL DEFAULT 1,
  case_pack INTEGER,
  custom TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

func newProduct(t *testing.T, db *gorm.DB, sku string, aip string, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:          uuid.New(),
		SKU:         sku,
		Name:        "Product " + sku,
		AIP:         decimal.RequireFromString(aip),
		MinOrderQty: 1,
		IsActive:    active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRepositoryFindActiveBySKU(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	sku := "SKU-" + uuid.NewString()
	newProduct(t, db, sku, "95.0000", false)
	current := newProduct(t, db, sku, "100.0000", true)

	found, err := repo.FindActiveBySKU(context.Background(), sku)
	require.NoError(t, err)
	assert.Equal(t, current.ID, found.ID)
	assert.True(t, found.AIP.Equal(decimal.RequireFromString("100.0000")))
}

func TestRepositoryFindActiveBySKU_noActiveRow(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	sku := "SKU-" + uuid.NewString()
	newProduct(t, db, sku, "95.0000", false)

	_, err := repo.FindActiveBySKU(context.Background(), sku)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListActive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	suffix := uuid.NewString()[:8]
	b := newProduct(t, db, "B-"+suffix, "40.0000", true)
	a := newProduct(t, db, "A-"+suffix, "100.0000", true)
	newProduct(t, db, "C-"+suffix, "10.0000", false)

	list, err := repo.ListActive(context.Background())
	require.NoError(t, err)

	var skus []string
	for _, p := range list {
		if p.SKU == a.SKU || p.SKU == b.SKU {
			skus = append(skus, p.SKU)
		}
		assert.True(t, p.IsActive)
	}
	require.Equal(t, []string{a.SKU, b.SKU}, skus)
}

func TestRepositoryDeactivate(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	product := newProduct(t, db, "SKU-"+uuid.NewString(), "55.5000", true)
	require.NoError(t, repo.Deactivate(context.Background(), product.ID))

	found, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}
