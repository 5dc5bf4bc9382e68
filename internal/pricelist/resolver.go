package pricelist

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/apothex/pricing-backend/internal/validity"
	"github.com/apothex/pricing-backend/pkg/db/models"
	"github.com/apothex/pricing-backend/pkg/types"
)

var (
	hundred = decimal.NewFromInt(100)

	// ErrNoDiscount re-exports the validity sentinel for callers that only
	// import this package.
	ErrNoDiscount = validity.ErrNotFound
)

// Entry is one derived GIP line: the customer's net price for a product on a
// date. Entries are recomputed on demand and never mutated.
type Entry struct {
	ProductID   uuid.UUID       `json:"product_id"`
	SKU         string          `json:"sku"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	AIP         decimal.Decimal `json:"aip"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	DiscountID  *uuid.UUID      `json:"discount_id,omitempty"`
	NetPrice    decimal.Decimal `json:"net_price"`
	AsOf        time.Time       `json:"as_of"`
}

// Failure reports one product excluded from the generated list.
type Failure struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Reason    string    `json:"reason"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("invalid pricing input for %s: %s", f.SKU, f.Reason)
}

// Result carries both the successful entries and the per-product failures.
// A bad product is reported and excluded, never silently dropped, and never
// aborts the rest of the list.
type Result struct {
	Entries  []Entry   `json:"entries"`
	Failures []Failure `json:"failures"`
}

// Err folds the collected failures into a single error value.
func (r Result) Err() error {
	var combined error
	for _, f := range r.Failures {
		combined = multierr.Append(combined, f)
	}
	return combined
}

// Resolver derives customer price lists from the AIP catalog and the
// discount validity index. It holds no mutable state; the index is the
// read-only per-batch cache.
type Resolver struct {
	index *validity.Index
}

// NewResolver wires a resolver over a prebuilt validity index.
func NewResolver(index *validity.Index) (*Resolver, error) {
	if index == nil {
		return nil, fmt.Errorf("validity index required")
	}
	return &Resolver{index: index}, nil
}

// ResolveDiscount returns the customer's effective discount on asOf.
// validity.ErrNotFound means "no discount"; an AmbiguousError means the
// source agreements overlap and must be fixed.
func (r *Resolver) ResolveDiscount(customerID uuid.UUID, asOf time.Time) (*models.CustomerDiscount, error) {
	return r.index.Resolve(customerID, asOf)
}

// Generate produces the customer's GIP list for the given products. The
// only hard failure is ambiguous discount validity; everything else follows
// the partial-success contract.
func (r *Resolver) Generate(customerID uuid.UUID, products []models.Product, asOf time.Time) (Result, error) {
	pct := decimal.Zero
	var discountID *uuid.UUID

	rec, err := r.index.Resolve(customerID, asOf)
	switch {
	case err == nil:
		pct = rec.DiscountPct
		discountID = &rec.ID
	case errors.Is(err, validity.ErrNotFound):
		// no discount: list prices pass through at 0%
	default:
		return Result{}, err
	}

	day := types.Midnight(asOf)
	result := Result{Entries: make([]Entry, 0, len(products))}

	if pct.IsNegative() || pct.GreaterThan(hundred) {
		for _, product := range products {
			result.Failures = append(result.Failures, Failure{
				ProductID: product.ID,
				SKU:       product.SKU,
				Reason:    fmt.Sprintf("discount_pct %s outside [0,100]", pct),
			})
		}
		return result, nil
	}

	for _, product := range products {
		if product.AIP.IsNegative() {
			result.Failures = append(result.Failures, Failure{
				ProductID: product.ID,
				SKU:       product.SKU,
				Reason:    fmt.Sprintf("aip %s is negative", product.AIP),
			})
			continue
		}

		result.Entries = append(result.Entries, Entry{
			ProductID:   product.ID,
			SKU:         product.SKU,
			CustomerID:  customerID,
			AIP:         product.AIP,
			DiscountPct: pct,
			DiscountID:  discountID,
			NetPrice:    NetPrice(product.AIP, pct),
			AsOf:        day,
		})
	}
	return result, nil
}

// NetPrice applies pct to aip and rounds to currency precision. The policy
// is round half away from zero at 2 decimals (decimal.Round), fixed so
// downstream waterfall totals reconcile to the cent.
func NetPrice(aip, pct decimal.Decimal) decimal.Decimal {
	return aip.Mul(hundred.Sub(pct)).Div(hundred).Round(2)
}
