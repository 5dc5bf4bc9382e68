package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer identifies a buying party. Pricing never lives here; it is always
// derived from the customer's discount agreements.
type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Code      *string   `gorm:"column:code;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
