package validity

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

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

func discount(customerID uuid.UUID, pct string, from string, to *time.Time) models.CustomerDiscount {
	return models.CustomerDiscount{
		ID:          uuid.New(),
		CustomerID:  customerID,
		DiscountPct: decimal.RequireFromString(pct),
		ValidFrom:   day(from),
		ValidTo:     to,
	}
}

func TestResolve_SingleCoveringRecord(t *testing.T) {
	customerID := uuid.New()
	ix := NewIndex([]models.CustomerDiscount{
		discount(customerID, "10", "2025-01-01", dayPtr("2025-06-30")),
		discount(customerID, "15", "2025-07-01", nil),
	})

	tests := []struct {
		name    string
		asOf    string
		wantPct string
	}{
		{"inside first window", "2025-03-15", "10"},
		{"first window start inclusive", "2025-01-01", "10"},
		{"first window end inclusive", "2025-06-30", "10"},
		{"open-ended window", "2026-12-01", "15"},
		{"open-ended window start", "2025-07-01", "15"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := ix.Resolve(customerID, day(tc.asOf))
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			if rec.DiscountPct.String() != tc.wantPct {
				t.Fatalf("got pct %s, want %s", rec.DiscountPct, tc.wantPct)
			}
		})
	}
}

func TestResolve_NoCoverageIsNotFound(t *testing.T) {
	customerID := uuid.New()
	ix := NewIndex([]models.CustomerDiscount{
		discount(customerID, "10", "2025-01-01", dayPtr("2025-06-30")),
	})

	if _, err := ix.Resolve(customerID, day("2024-12-31")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before window, got %v", err)
	}
	if _, err := ix.Resolve(customerID, day("2025-07-01")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after window, got %v", err)
	}
	if _, err := ix.Resolve(uuid.New(), day("2025-03-01")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown customer, got %v", err)
	}
}

func TestResolve_OverlapPrefersLatestValidFrom(t *testing.T) {
	customerID := uuid.New()
	ix := NewIndex([]models.CustomerDiscount{
		discount(customerID, "10", "2025-01-01", dayPtr("2025-12-31")),
		discount(customerID, "20", "2025-06-01", dayPtr("2025-12-31")),
	})

	rec, err := ix.Resolve(customerID, day("2025-07-01"))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if rec.DiscountPct.String() != "20" {
		t.Fatalf("expected later ValidFrom to win, got pct %s", rec.DiscountPct)
	}
}

func TestResolve_OverlapPrefersNarrowestInterval(t *testing.T) {
	customerID := uuid.New()
	ix := NewIndex([]models.CustomerDiscount{
		discount(customerID, "10", "2025-01-01", nil),
		discount(customerID, "25", "2025-01-01", dayPtr("2025-01-31")),
	})

	rec, err := ix.Resolve(customerID, day("2025-01-15"))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if rec.DiscountPct.String() != "25" {
		t.Fatalf("expected narrow window to win, got pct %s", rec.DiscountPct)
	}
}

func TestResolve_TrueTieFailsAmbiguous(t *testing.T) {
	customerID := uuid.New()
	first := discount(customerID, "10", "2025-01-01", dayPtr("2025-12-31"))
	second := discount(customerID, "20", "2025-01-01", dayPtr("2025-12-31"))
	ix := NewIndex([]models.CustomerDiscount{first, second})

	_, err := ix.Resolve(customerID, day("2025-03-01"))
	var ambErr *AmbiguousError
	if !errors.As(err, &ambErr) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	if ambErr.CustomerID != customerID {
		t.Fatalf("ambiguous error should carry customer id, got %s", ambErr.CustomerID)
	}
	if len(ambErr.RecordIDs) != 2 {
		t.Fatalf("expected both conflicting record ids, got %v", ambErr.RecordIDs)
	}
}

func TestResolveAll_PartialSuccess(t *testing.T) {
	okCustomer := uuid.New()
	badCustomer := uuid.New()
	uncoveredCustomer := uuid.New()

	ix := NewIndex([]models.CustomerDiscount{
		discount(okCustomer, "12.5", "2025-01-01", nil),
		discount(badCustomer, "10", "2025-01-01", dayPtr("2025-12-31")),
		discount(badCustomer, "20", "2025-01-01", dayPtr("2025-12-31")),
		discount(uncoveredCustomer, "5", "2026-01-01", nil),
	})

	resolved, ambiguous := ix.ResolveAll(day("2025-05-01"))

	if len(resolved) != 1 {
		t.Fatalf("expected exactly one resolved customer, got %d", len(resolved))
	}
	if rec, ok := resolved[okCustomer]; !ok || rec.DiscountPct.String() != "12.5" {
		t.Fatalf("unexpected resolution for ok customer: %+v", resolved)
	}
	if len(ambiguous) != 1 || ambiguous[0].CustomerID != badCustomer {
		t.Fatalf("expected one ambiguous failure for bad customer, got %+v", ambiguous)
	}
}

func TestResolve_IgnoresTimeOfDay(t *testing.T) {
	customerID := uuid.New()
	ix := NewIndex([]models.CustomerDiscount{
		discount(customerID, "10", "2025-01-01", dayPtr("2025-01-31")),
	})

	asOf := time.Date(2025, 1, 31, 18, 30, 0, 0, time.UTC)
	if _, err := ix.Resolve(customerID, asOf); err != nil {
		t.Fatalf("end-of-day timestamp should still resolve: %v", err)
	}
}
