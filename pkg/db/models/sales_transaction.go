package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesTransaction records realized revenue for one customer/SKU on a day.
type SalesTransaction struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	SKU        string          `gorm:"column:sku;not null;index"`
	Qty        int             `gorm:"column:qty;not null"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	OccurredAt time.Time       `gorm:"column:occurred_at;type:date;not null;index"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
