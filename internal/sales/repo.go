package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apothex/pricing-backend/internal/repo"
	"github.com/apothex/pricing-backend/pkg/db/models"
)

// Repository handles sales transaction persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tx *models.SalesTransaction) error
	BulkInsert(ctx context.Context, txs []models.SalesTransaction) error
	ListBetween(ctx context.Context, from, to time.Time) ([]models.SalesTransaction, error)
	ListByCustomerBetween(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]models.SalesTransaction, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, tx *models.SalesTransaction) error {
	return r.base.DB(ctx).Create(tx).Error
}

func (r *repository) BulkInsert(ctx context.Context, txs []models.SalesTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.base.DB(ctx).CreateInBatches(txs, 500).Error
}

func (r *repository) ListBetween(ctx context.Context, from, to time.Time) ([]models.SalesTransaction, error) {
	var txs []models.SalesTransaction
	if err := r.base.DB(ctx).
		Where("occurred_at BETWEEN ? AND ?", from, to).
		Order("occurred_at ASC, customer_id ASC, sku ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *repository) ListByCustomerBetween(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]models.SalesTransaction, error) {
	var txs []models.SalesTransaction
	if err := r.base.DB(ctx).
		Where("customer_id = ? AND occurred_at BETWEEN ? AND ?", customerID, from, to).
		Order("occurred_at ASC, sku ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
