package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/apothex/pricing-backend/pkg/db"
	"github.com/apothex/pricing-backend/pkg/db/models"
	pkgerrors "github.com/apothex/pricing-backend/pkg/errors"
	"github.com/apothex/pricing-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// Service exposes customer and discount-agreement operations.
type Service interface {
	CreateCustomer(ctx context.Context, name string, code *string) (*models.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	AddDiscount(ctx context.Context, input DiscountInput) (*models.CustomerDiscount, error)
	ListDiscounts(ctx context.Context, customerID uuid.UUID) ([]models.CustomerDiscount, error)
	RemoveDiscount(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a customers service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo}, nil
}

// DiscountInput captures a new discount agreement.
type DiscountInput struct {
	CustomerID  uuid.UUID
	DiscountPct decimal.Decimal
	ValidFrom   time.Time
	ValidTo     *time.Time
}

func (s *service) CreateCustomer(ctx context.Context, name string, code *string) (*models.Customer, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	customer := &models.Customer{Name: trimmed, Code: code}
	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, "idx_customers_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer code already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return customer, nil
}

func (s *service) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return customers, nil
}

// AddDiscount validates the agreement and rejects any window that overlaps an
// existing one for the customer. Resolution-time tie-breaks exist only to
// cope with legacy data; new overlaps are refused at the door.
func (s *service) AddDiscount(ctx context.Context, input DiscountInput) (*models.CustomerDiscount, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.DiscountPct.IsNegative() || input.DiscountPct.GreaterThan(hundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount_pct must be within [0,100]")
	}
	from := types.Midnight(input.ValidFrom)
	var to *time.Time
	if input.ValidTo != nil {
		t := types.Midnight(*input.ValidTo)
		if t.Before(from) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_to precedes valid_from")
		}
		to = &t
	}

	if _, err := s.GetCustomer(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListDiscountsByCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discounts")
	}
	for _, rec := range existing {
		if windowsOverlap(from, to, types.Midnight(rec.ValidFrom), rec.ValidTo) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount window overlaps an existing agreement").
				WithDetails(map[string]any{"conflicting_discount_id": rec.ID})
		}
	}

	discount := &models.CustomerDiscount{
		CustomerID:  input.CustomerID,
		DiscountPct: input.DiscountPct,
		ValidFrom:   from,
		ValidTo:     to,
	}
	if err := s.repo.CreateDiscount(ctx, discount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount")
	}
	return discount, nil
}

func (s *service) ListDiscounts(ctx context.Context, customerID uuid.UUID) ([]models.CustomerDiscount, error) {
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	discounts, err := s.repo.ListDiscountsByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discounts")
	}
	return discounts, nil
}

func (s *service) RemoveDiscount(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount id is required")
	}
	if err := s.repo.DeleteDiscount(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete discount")
	}
	return nil
}

// windowsOverlap checks two inclusive date windows; nil end = open-ended.
func windowsOverlap(aFrom time.Time, aTo *time.Time, bFrom time.Time, bTo *time.Time) bool {
	if aTo != nil && types.Midnight(*aTo).Before(bFrom) {
		return false
	}
	if bTo != nil && types.Midnight(*bTo).Before(aFrom) {
		return false
	}
	return true
}
