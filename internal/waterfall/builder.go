package waterfall

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apothex/pricing-backend/internal/pricelist"
	"github.com/apothex/pricing-backend/internal/validity"
	"github.com/apothex/pricing-backend/pkg/enums"
)

// Canonical step labels. The first and last step are always present; the
// contract discount step appears whenever a discount resolves.
const (
	StepListPrice        = "List Price"
	StepContractDiscount = "Contract Discount"
	StepNetRealized      = "Net Realized"
)

var hundred = decimal.NewFromInt(100)

// GrossLine is one sold line valued at list price.
type GrossLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	SKU       string          `json:"sku"`
	AIP       decimal.Decimal `json:"aip"`
	Qty       int             `json:"qty"`
}

// Deduction is a named gross-to-net adjustment. Percentage deductions apply
// to the running total after the previous step; OffInvoiceFromGross switches
// the base to the original gross.
type Deduction struct {
	Name                string              `json:"name"`
	Kind                enums.DeductionKind `json:"kind"`
	Value               decimal.Decimal     `json:"value"`
	OffInvoiceFromGross bool                `json:"off_invoice_from_gross,omitempty"`
}

// Step is one rendered bridge row: the running total after the step and the
// increment versus the previous step, so charts need no recomputation.
type Step struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	Delta decimal.Decimal `json:"delta"`
}

// NegativeNetError reports a step that drove the running total below zero.
// That is a contract-term or data error, so the bridge halts instead of
// fabricating a negative net.
type NegativeNetError struct {
	CustomerID uuid.UUID
	Step       string
	Value      decimal.Decimal
}

func (e *NegativeNetError) Error() string {
	return fmt.Sprintf("waterfall step %q drives net below zero (%s) for customer %s", e.Step, e.Value, e.CustomerID)
}

// Builder assembles gross-to-net waterfalls, reusing the price list
// resolver for the contract discount step.
type Builder struct {
	resolver *pricelist.Resolver
}

// NewBuilder wires a builder over the shared discount resolution.
func NewBuilder(resolver *pricelist.Resolver) (*Builder, error) {
	if resolver == nil {
		return nil, fmt.Errorf("price list resolver required")
	}
	return &Builder{resolver: resolver}, nil
}

// Build produces the ordered bridge from list-price gross to net realized.
func (b *Builder) Build(lines []GrossLine, customerID uuid.UUID, asOf time.Time, extra []Deduction) ([]Step, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("at least one gross line is required")
	}

	gross := decimal.Zero
	for _, line := range lines {
		if line.AIP.IsNegative() {
			return nil, fmt.Errorf("line %s: aip %s is negative", line.SKU, line.AIP)
		}
		if line.Qty <= 0 {
			return nil, fmt.Errorf("line %s: qty must be positive", line.SKU)
		}
		gross = gross.Add(line.AIP.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	gross = gross.Round(2)

	steps := []Step{{Name: StepListPrice, Value: gross, Delta: decimal.Zero}}
	running := gross

	rec, err := b.resolver.ResolveDiscount(customerID, asOf)
	switch {
	case err == nil:
		discount := running.Mul(rec.DiscountPct).Div(hundred).Round(2)
		running = running.Sub(discount)
		steps = append(steps, Step{Name: StepContractDiscount, Value: running, Delta: discount.Neg()})
	case errors.Is(err, validity.ErrNotFound):
		// no contract discount step; extra deductions apply directly to gross
	default:
		return nil, err
	}
	if running.IsNegative() {
		return nil, &NegativeNetError{CustomerID: customerID, Step: StepContractDiscount, Value: running}
	}

	for _, ded := range extra {
		amount, err := deductionAmount(ded, running, gross)
		if err != nil {
			return nil, err
		}
		running = running.Sub(amount)
		if running.IsNegative() {
			return nil, &NegativeNetError{CustomerID: customerID, Step: ded.Name, Value: running}
		}
		steps = append(steps, Step{Name: ded.Name, Value: running, Delta: amount.Neg()})
	}

	steps = append(steps, Step{Name: StepNetRealized, Value: running, Delta: decimal.Zero})
	return steps, nil
}

func deductionAmount(ded Deduction, running, gross decimal.Decimal) (decimal.Decimal, error) {
	if ded.Name == "" {
		return decimal.Zero, fmt.Errorf("deduction name is required")
	}
	if ded.Value.IsNegative() {
		return decimal.Zero, fmt.Errorf("deduction %s: value must be non-negative", ded.Name)
	}

	switch ded.Kind {
	case enums.DeductionKindFixed:
		return ded.Value.Round(2), nil
	case enums.DeductionKindPercentage:
		if ded.Value.GreaterThan(hundred) {
			return decimal.Zero, fmt.Errorf("deduction %s: percentage %s exceeds 100", ded.Name, ded.Value)
		}
		base := running
		if ded.OffInvoiceFromGross {
			base = gross
		}
		return base.Mul(ded.Value).Div(hundred).Round(2), nil
	default:
		return decimal.Zero, fmt.Errorf("deduction %s: unknown kind %q", ded.Name, ded.Kind)
	}
}
