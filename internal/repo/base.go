package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base carries the GORM handle shared by the domain repositories. Each
// repository embeds one and derives context-bound connections from it, so
// cancellation and deadlines flow into every query.
type Base struct {
	db *gorm.DB
}

// NewBase binds a Base to the given connection. The connection may also be a
// transaction handle; repositories swap it via their WithTx methods.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection scoped to ctx. A nil ctx yields the raw handle.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
