package growth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apothex/pricing-backend/pkg/db/models"
	"github.com/apothex/pricing-backend/pkg/enums"
	"github.com/apothex/pricing-backend/pkg/types"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func period(t *testing.T, start, end string) types.Period {
	t.Helper()
	p, err := types.ParsePeriod(start, end)
	if err != nil {
		t.Fatalf("ParsePeriod error: %v", err)
	}
	return p
}

func tx(customerID uuid.UUID, sku, amount, occurred string) models.SalesTransaction {
	return models.SalesTransaction{
		ID:         uuid.New(),
		CustomerID: customerID,
		SKU:        sku,
		Qty:        1,
		Amount:     decimal.RequireFromString(amount),
		OccurredAt: day(occurred),
	}
}

func TestComputeGrowth_DeltasAndTotalInvariant(t *testing.T) {
	custA := uuid.New()
	custB := uuid.New()
	baseline := period(t, "2024-01-01", "2024-12-31")
	current := period(t, "2025-01-01", "2025-12-31")

	transactions := []models.SalesTransaction{
		tx(custA, "SKU-1", "1000.00", "2024-03-01"),
		tx(custA, "SKU-1", "1500.00", "2025-03-01"),
		tx(custB, "SKU-2", "2000.00", "2024-06-01"),
		tx(custB, "SKU-2", "1800.00", "2025-06-01"),
		tx(custB, "SKU-2", "99.99", "2023-01-01"), // outside both periods
	}

	summary, err := ComputeGrowth(transactions, enums.GranularityCustomer, baseline, current)
	if err != nil {
		t.Fatalf("ComputeGrowth error: %v", err)
	}
	if len(summary.PerContract) != 2 {
		t.Fatalf("expected 2 contracts, got %d", len(summary.PerContract))
	}

	sum := decimal.Zero
	for _, rec := range summary.PerContract {
		sum = sum.Add(rec.Delta)
	}
	if !sum.Equal(summary.Total.Delta) {
		t.Fatalf("sum(perContract.delta)=%s must equal total.delta=%s", sum, summary.Total.Delta)
	}
	if !summary.Total.Delta.Equal(decimal.RequireFromString("300.00")) {
		t.Fatalf("total delta = %s, want 300.00", summary.Total.Delta)
	}
	if !summary.Total.Baseline.Equal(decimal.RequireFromString("3000.00")) {
		t.Fatalf("total baseline = %s, want 3000.00", summary.Total.Baseline)
	}
}

func TestComputeGrowth_NoBaselineSentinel(t *testing.T) {
	cust := uuid.New()
	baseline := period(t, "2024-01-01", "2024-12-31")
	current := period(t, "2025-01-01", "2025-12-31")

	summary, err := ComputeGrowth([]models.SalesTransaction{
		tx(cust, "SKU-1", "100.00", "2025-02-01"),
	}, enums.GranularityCustomer, baseline, current)
	if err != nil {
		t.Fatalf("ComputeGrowth error: %v", err)
	}

	rec := summary.PerContract[0]
	if !rec.NoBaseline || rec.PctChange != nil {
		t.Fatalf("zero baseline should report NoBaseline, got %+v", rec)
	}
	if !rec.Delta.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("delta should still be computed, got %s", rec.Delta)
	}
}

func TestComputeGrowth_UndefinedShareWhenTotalFlat(t *testing.T) {
	custA := uuid.New()
	custB := uuid.New()
	baseline := period(t, "2024-01-01", "2024-12-31")
	current := period(t, "2025-01-01", "2025-12-31")

	// +100 and -100 cancel out: portfolio delta is exactly zero.
	summary, err := ComputeGrowth([]models.SalesTransaction{
		tx(custA, "S", "100.00", "2024-05-01"),
		tx(custA, "S", "200.00", "2025-05-01"),
		tx(custB, "S", "300.00", "2024-05-01"),
		tx(custB, "S", "200.00", "2025-05-01"),
	}, enums.GranularityCustomer, baseline, current)
	if err != nil {
		t.Fatalf("ComputeGrowth error: %v", err)
	}

	if !summary.Total.Delta.IsZero() {
		t.Fatalf("expected flat portfolio, got %s", summary.Total.Delta)
	}
	for _, rec := range summary.PerContract {
		if !rec.ShareUndefined || rec.Share != nil {
			t.Fatalf("share must be undefined when total delta is zero, got %+v", rec)
		}
	}
}

func TestComputeGrowth_DisappearedContractKeepsZeroCurrent(t *testing.T) {
	cust := uuid.New()
	baseline := period(t, "2024-01-01", "2024-12-31")
	current := period(t, "2025-01-01", "2025-12-31")

	summary, err := ComputeGrowth([]models.SalesTransaction{
		tx(cust, "SKU-1", "500.00", "2024-04-01"),
	}, enums.GranularityCustomer, baseline, current)
	if err != nil {
		t.Fatalf("ComputeGrowth error: %v", err)
	}

	rec := summary.PerContract[0]
	if !rec.Current.IsZero() {
		t.Fatalf("contract absent from current period should show current=0, got %s", rec.Current)
	}
	if !rec.Delta.Equal(decimal.RequireFromString("-500.00")) {
		t.Fatalf("delta = %s, want -500.00", rec.Delta)
	}
	pct := rec.PctChange
	if pct == nil || !pct.Equal(decimal.NewFromInt(-1)) {
		t.Fatalf("pct change = %v, want -1", pct)
	}
}

func TestComputeGrowth_CustomerSKUGranularitySplitsContracts(t *testing.T) {
	cust := uuid.New()
	baseline := period(t, "2024-01-01", "2024-12-31")
	current := period(t, "2025-01-01", "2025-12-31")

	transactions := []models.SalesTransaction{
		tx(cust, "SKU-1", "100.00", "2024-02-01"),
		tx(cust, "SKU-2", "100.00", "2024-02-01"),
		tx(cust, "SKU-1", "150.00", "2025-02-01"),
		tx(cust, "SKU-2", "120.00", "2025-02-01"),
	}

	byCustomer, err := ComputeGrowth(transactions, enums.GranularityCustomer, baseline, current)
	if err != nil {
		t.Fatalf("ComputeGrowth error: %v", err)
	}
	bySKU, err := ComputeGrowth(transactions, enums.GranularityCustomerSKU, baseline, current)
	if err != nil {
		t.Fatalf("ComputeGrowth error: %v", err)
	}

	if len(byCustomer.PerContract) != 1 || len(bySKU.PerContract) != 2 {
		t.Fatalf("granularity split wrong: %d customer rows, %d sku rows",
			len(byCustomer.PerContract), len(bySKU.PerContract))
	}
	if !byCustomer.Total.Delta.Equal(bySKU.Total.Delta) {
		t.Fatalf("total delta must be granularity independent: %s vs %s",
			byCustomer.Total.Delta, bySKU.Total.Delta)
	}
}

func TestComputeGrowth_SharesSumToOne(t *testing.T) {
	custA := uuid.New()
	custB := uuid.New()
	baseline := period(t, "2024-01-01", "2024-12-31")
	current := period(t, "2025-01-01", "2025-12-31")

	summary, err := ComputeGrowth([]models.SalesTransaction{
		tx(custA, "S", "100.00", "2024-05-01"),
		tx(custA, "S", "400.00", "2025-05-01"),
		tx(custB, "S", "100.00", "2024-05-01"),
		tx(custB, "S", "200.00", "2025-05-01"),
	}, enums.GranularityCustomer, baseline, current)
	if err != nil {
		t.Fatalf("ComputeGrowth error: %v", err)
	}

	sum := decimal.Zero
	for _, rec := range summary.PerContract {
		if rec.Share == nil {
			t.Fatalf("share should be defined, got %+v", rec)
		}
		sum = sum.Add(*rec.Share)
	}
	if !sum.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("shares sum to %s, want 1", sum)
	}
	if summary.Total.Share == nil || !summary.Total.Share.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("total share = %v, want 1", summary.Total.Share)
	}
}

func TestComputeGrowth_InvalidGranularity(t *testing.T) {
	baseline := period(t, "2024-01-01", "2024-12-31")
	current := period(t, "2025-01-01", "2025-12-31")
	if _, err := ComputeGrowth(nil, enums.Granularity("weekly"), baseline, current); err == nil {
		t.Fatal("expected error for unknown granularity")
	}
}
