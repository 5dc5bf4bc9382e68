package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/apothex/pricing-backend/pkg/db/models"
	pkgerrors "github.com/apothex/pricing-backend/pkg/errors"
	"github.com/apothex/pricing-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes AIP catalog operations.
type Service interface {
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ChangeAIP(ctx context.Context, sku string, newAIP decimal.Decimal) (*models.Product, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a catalog service backed by the provided stack.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// ProductInput captures the payload required to create a catalog entry.
type ProductInput struct {
	SKU         string
	Name        string
	PackSize    string
	ZINumber    *string
	AIP         decimal.Decimal
	MinOrderQty int
	CasePack    *int
	Custom      types.Attributes
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		SKU:         strings.TrimSpace(input.SKU),
		Name:        strings.TrimSpace(input.Name),
		PackSize:    strings.TrimSpace(input.PackSize),
		ZINumber:    input.ZINumber,
		AIP:         input.AIP,
		MinOrderQty: input.MinOrderQty,
		CasePack:    input.CasePack,
		Custom:      input.Custom,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

// ChangeAIP versions the list price: the current row is deactivated and a
// new row carries the new AIP, so historical price list computations keep
// seeing the price that was effective when they ran.
func (s *service) ChangeAIP(ctx context.Context, sku string, newAIP decimal.Decimal) (*models.Product, error) {
	if newAIP.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "aip must be non-negative")
	}

	var created *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		current, err := txRepo.FindActiveBySKU(ctx, sku)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}
		if current.AIP.Equal(newAIP) {
			created = current
			return nil
		}

		if err := txRepo.Deactivate(ctx, current.ID); err != nil {
			return err
		}

		next := &models.Product{
			SKU:         current.SKU,
			Name:        current.Name,
			PackSize:    current.PackSize,
			ZINumber:    current.ZINumber,
			AIP:         newAIP,
			MinOrderQty: current.MinOrderQty,
			CasePack:    current.CasePack,
			Custom:      current.Custom,
			IsActive:    true,
		}
		if err := txRepo.Create(ctx, next); err != nil {
			return err
		}
		created = next
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "change aip")
	}
	return created, nil
}

func (s *service) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.AIP.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "aip must be non-negative")
	}
	if input.MinOrderQty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min_order_qty must be positive")
	}
	return nil
}
