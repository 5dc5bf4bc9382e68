package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerDiscount is a time-bounded discount agreement. ValidTo nil means
// open-ended; both bounds are inclusive dates. Within one customer the
// validity windows must not overlap.
type CustomerDiscount struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	DiscountPct decimal.Decimal `gorm:"column:discount_pct;type:numeric(5,2);not null"`
	ValidFrom   time.Time       `gorm:"column:valid_from;type:date;not null"`
	ValidTo     *time.Time      `gorm:"column:valid_to;type:date"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
