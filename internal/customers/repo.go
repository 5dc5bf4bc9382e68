package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apothex/pricing-backend/internal/repo"
	"github.com/apothex/pricing-backend/pkg/db/models"
)

// Repository handles customer and discount-agreement persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	CreateDiscount(ctx context.Context, discount *models.CustomerDiscount) error
	ListDiscountsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerDiscount, error)
	ListAllDiscounts(ctx context.Context) ([]models.CustomerDiscount, error)
	DeleteDiscount(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	base repo.Base
}

// NewRepository returns a customers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return r.base.DB(ctx).Create(customer).Error
}

func (r *repository) FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.base.DB(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.base.DB(ctx).Order("name ASC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repository) CreateDiscount(ctx context.Context, discount *models.CustomerDiscount) error {
	return r.base.DB(ctx).Create(discount).Error
}

func (r *repository) ListDiscountsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerDiscount, error) {
	var discounts []models.CustomerDiscount
	if err := r.base.DB(ctx).
		Where("customer_id = ?", customerID).
		Order("valid_from ASC").
		Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

func (r *repository) ListAllDiscounts(ctx context.Context) ([]models.CustomerDiscount, error) {
	var discounts []models.CustomerDiscount
	if err := r.base.DB(ctx).
		Order("customer_id ASC, valid_from ASC").
		Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

func (r *repository) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	return r.base.DB(ctx).Delete(&models.CustomerDiscount{}, "id = ?", id).Error
}
