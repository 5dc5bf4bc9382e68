package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/apothex/pricing-backend/pkg/db/models"
	pkgerrors "github.com/apothex/pricing-backend/pkg/errors"
)

type fakeSalesRepo struct {
	rows []models.SalesTransaction
}

func (f *fakeSalesRepo) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeSalesRepo) Create(ctx context.Context, tx *models.SalesTransaction) error {
	f.rows = append(f.rows, *tx)
	return nil
}

func (f *fakeSalesRepo) BulkInsert(ctx context.Context, txs []models.SalesTransaction) error {
	f.rows = append(f.rows, txs...)
	return nil
}

func (f *fakeSalesRepo) ListBetween(ctx context.Context, from, to time.Time) ([]models.SalesTransaction, error) {
	var list []models.SalesTransaction
	for _, tx := range f.rows {
		if !tx.OccurredAt.Before(from) && !tx.OccurredAt.After(to) {
			list = append(list, tx)
		}
	}
	return list, nil
}

func (f *fakeSalesRepo) ListByCustomerBetween(ctx context.Context, customerID uuid.UUID, from, to time.Time) ([]models.SalesTransaction, error) {
	var list []models.SalesTransaction
	for _, tx := range f.rows {
		if tx.CustomerID == customerID && !tx.OccurredAt.Before(from) && !tx.OccurredAt.After(to) {
			list = append(list, tx)
		}
	}
	return list, nil
}

func validInput() TransactionInput {
	return TransactionInput{
		CustomerID: uuid.New(),
		SKU:        "SKU-A",
		Qty:        2,
		Amount:     decimal.RequireFromString("160.00"),
		OccurredAt: time.Date(2025, 3, 5, 14, 30, 0, 0, time.UTC),
	}
}

func TestRecordNormalizesOccurredAt(t *testing.T) {
	repo := &fakeSalesRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	tx, err := svc.Record(context.Background(), validInput())
	if err != nil {
		t.Fatalf("recording transaction: %v", err)
	}
	want := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	if !tx.OccurredAt.Equal(want) {
		t.Fatalf("expected occurred_at truncated to %v, got %v", want, tx.OccurredAt)
	}
}

func TestRecordValidation(t *testing.T) {
	svc, err := NewService(&fakeSalesRepo{})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*TransactionInput)
	}{
		{"missingCustomer", func(in *TransactionInput) { in.CustomerID = uuid.Nil }},
		{"blankSKU", func(in *TransactionInput) { in.SKU = "  " }},
		{"zeroQty", func(in *TransactionInput) { in.Qty = 0 }},
		{"zeroDate", func(in *TransactionInput) { in.OccurredAt = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.Record(context.Background(), input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestImportRejectsWholeBatchOnBadLine(t *testing.T) {
	repo := &fakeSalesRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	bad := validInput()
	bad.Qty = -1
	_, err = svc.Import(context.Background(), []TransactionInput{validInput(), bad})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["line"] != 1 {
		t.Fatalf("expected offending line in details, got %v", typed.Details())
	}
	if len(repo.rows) != 0 {
		t.Fatalf("expected no rows persisted, got %d", len(repo.rows))
	}
}

func TestImportPersistsAllLines(t *testing.T) {
	repo := &fakeSalesRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	count, err := svc.Import(context.Background(), []TransactionInput{validInput(), validInput(), validInput()})
	if err != nil {
		t.Fatalf("importing: %v", err)
	}
	if count != 3 || len(repo.rows) != 3 {
		t.Fatalf("expected 3 rows, got count=%d persisted=%d", count, len(repo.rows))
	}
}

func TestImportEmptyBatch(t *testing.T) {
	svc, err := NewService(&fakeSalesRepo{})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}

	_, err = svc.Import(context.Background(), nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
