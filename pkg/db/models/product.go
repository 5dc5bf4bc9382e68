package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apothex/pricing-backend/pkg/types"
)

// Product is a catalog entry carrying the AIP list price. AIP changes are
// versioned by inserting a new row and deactivating the old one, so a price
// list computed for a date never observes a mutated price.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU         string           `gorm:"column:sku;not null;index:idx_products_sku"`
	Name        string           `gorm:"column:name;not null"`
	PackSize    string           `gorm:"column:pack_size"`
	ZINumber    *string          `gorm:"column:zi_number"`
	AIP         decimal.Decimal  `gorm:"column:aip;type:numeric(12,4);not null"`
	MinOrderQty int              `gorm:"column:min_order_qty;not null;default:1"`
	CasePack    *int             `gorm:"column:case_pack"`
	Custom      types.Attributes `gorm:"column:custom;type:jsonb"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
