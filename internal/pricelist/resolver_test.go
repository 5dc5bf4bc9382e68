package pricelist

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apothex/pricing-backend/internal/validity"
	"github.com/apothex/pricing-backend/pkg/db/models"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(value string) *time.Time {
	t := day(value)
	return &t
}

func product(sku, aip string) models.Product {
	return models.Product{
		ID:          uuid.New(),
		SKU:         sku,
		Name:        "Product " + sku,
		AIP:         decimal.RequireFromString(aip),
		MinOrderQty: 1,
	}
}

func resolverWithDiscount(t *testing.T, customerID uuid.UUID, pct string) *Resolver {
	t.Helper()
	ix := validity.NewIndex([]models.CustomerDiscount{{
		ID:          uuid.New(),
		CustomerID:  customerID,
		DiscountPct: decimal.RequireFromString(pct),
		ValidFrom:   day("2025-01-01"),
	}})
	r, err := NewResolver(ix)
	if err != nil {
		t.Fatalf("NewResolver error: %v", err)
	}
	return r
}

func TestNetPrice_Rounding(t *testing.T) {
	tests := []struct {
		aip  string
		pct  string
		want string
	}{
		{"10.00", "20", "8"},
		{"9.99", "20", "7.99"},
		{"10.005", "0", "10.01"},
		{"10.004", "0", "10"},
		{"0.01", "50", "0.01"},
		{"100", "100", "0"},
		{"37.45", "12.5", "32.77"},
	}
	for _, tc := range tests {
		got := NetPrice(decimal.RequireFromString(tc.aip), decimal.RequireFromString(tc.pct))
		if got.String() != tc.want {
			t.Fatalf("NetPrice(%s, %s%%) = %s, want %s", tc.aip, tc.pct, got, tc.want)
		}
	}
}

func TestGenerate_AppliesDiscount(t *testing.T) {
	customerID := uuid.New()
	r := resolverWithDiscount(t, customerID, "20")

	result, err := r.Generate(customerID, []models.Product{product("SKU-1", "10.00"), product("SKU-2", "9.99")}, day("2025-03-01"))
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", result.Failures)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if !result.Entries[0].NetPrice.Equal(decimal.RequireFromString("8.00")) {
		t.Fatalf("SKU-1 net = %s, want 8.00", result.Entries[0].NetPrice)
	}
	if !result.Entries[1].NetPrice.Equal(decimal.RequireFromString("7.99")) {
		t.Fatalf("SKU-2 net = %s, want 7.99", result.Entries[1].NetPrice)
	}
	if result.Entries[0].DiscountID == nil {
		t.Fatal("entry should reference the discount record used")
	}
}

func TestGenerate_NoDiscountPassesThroughListPrice(t *testing.T) {
	r, err := NewResolver(validity.NewIndex(nil))
	if err != nil {
		t.Fatalf("NewResolver error: %v", err)
	}

	result, err := r.Generate(uuid.New(), []models.Product{product("SKU-1", "12.34")}, day("2025-03-01"))
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	entry := result.Entries[0]
	if !entry.NetPrice.Equal(decimal.RequireFromString("12.34")) {
		t.Fatalf("net should equal AIP with no discount, got %s", entry.NetPrice)
	}
	if entry.DiscountID != nil {
		t.Fatal("no discount id expected when nothing resolved")
	}
}

func TestGenerate_PartialSuccessOnInvalidAIP(t *testing.T) {
	customerID := uuid.New()
	r := resolverWithDiscount(t, customerID, "10")

	bad := product("SKU-BAD", "-1.00")
	good := product("SKU-OK", "10.00")

	result, err := r.Generate(customerID, []models.Product{bad, good}, day("2025-03-01"))
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].SKU != "SKU-OK" {
		t.Fatalf("good product should survive, got %+v", result.Entries)
	}
	if len(result.Failures) != 1 || result.Failures[0].SKU != "SKU-BAD" {
		t.Fatalf("bad product should be reported, got %+v", result.Failures)
	}
	if result.Err() == nil {
		t.Fatal("Result.Err() should surface the collected failure")
	}
}

func TestGenerate_OutOfRangeDiscountFailsEveryProduct(t *testing.T) {
	customerID := uuid.New()
	r := resolverWithDiscount(t, customerID, "120")

	result, err := r.Generate(customerID, []models.Product{product("SKU-1", "10"), product("SKU-2", "20")}, day("2025-03-01"))
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Fatalf("no entries expected with invalid pct, got %+v", result.Entries)
	}
	if len(result.Failures) != 2 {
		t.Fatalf("every product should carry a failure, got %d", len(result.Failures))
	}
}

func TestGenerate_AmbiguousValidityIsHardFailure(t *testing.T) {
	customerID := uuid.New()
	ix := validity.NewIndex([]models.CustomerDiscount{
		{ID: uuid.New(), CustomerID: customerID, DiscountPct: decimal.NewFromInt(10), ValidFrom: day("2025-01-01"), ValidTo: dayPtr("2025-12-31")},
		{ID: uuid.New(), CustomerID: customerID, DiscountPct: decimal.NewFromInt(20), ValidFrom: day("2025-01-01"), ValidTo: dayPtr("2025-12-31")},
	})
	r, err := NewResolver(ix)
	if err != nil {
		t.Fatalf("NewResolver error: %v", err)
	}

	_, err = r.Generate(customerID, []models.Product{product("SKU-1", "10")}, day("2025-06-01"))
	var ambErr *validity.AmbiguousError
	if !errors.As(err, &ambErr) {
		t.Fatalf("expected AmbiguousError to abort the customer, got %v", err)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	customerID := uuid.New()
	r := resolverWithDiscount(t, customerID, "17.5")
	products := []models.Product{product("SKU-1", "10.01"), product("SKU-2", "99.99")}

	first, err := r.Generate(customerID, products, day("2025-03-01"))
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	second, err := r.Generate(customerID, products, day("2025-03-01"))
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must produce identical results:\n%+v\n%+v", first, second)
	}
}
