package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apothex/pricing-backend/pkg/db/models"
	pkgerrors "github.com/apothex/pricing-backend/pkg/errors"
	"github.com/apothex/pricing-backend/pkg/types"
)

// Service exposes sales ledger operations.
type Service interface {
	Record(ctx context.Context, input TransactionInput) (*models.SalesTransaction, error)
	Import(ctx context.Context, inputs []TransactionInput) (int, error)
	ListBetween(ctx context.Context, period types.Period) ([]models.SalesTransaction, error)
}

type service struct {
	repo Repository
}

// NewService builds a sales service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	return &service{repo: repo}, nil
}

// TransactionInput captures one realized-revenue line.
type TransactionInput struct {
	CustomerID uuid.UUID
	SKU        string
	Qty        int
	Amount     decimal.Decimal
	OccurredAt time.Time
}

func (s *service) Record(ctx context.Context, input TransactionInput) (*models.SalesTransaction, error) {
	tx, err := buildTransaction(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record transaction")
	}
	return tx, nil
}

// Import validates every line before touching the database; a bad line
// rejects the whole batch so partial imports never skew growth figures.
func (s *service) Import(ctx context.Context, inputs []TransactionInput) (int, error) {
	if len(inputs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "no transactions provided")
	}

	txs := make([]models.SalesTransaction, 0, len(inputs))
	for i, input := range inputs {
		tx, err := buildTransaction(input)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return 0, typed.WithDetails(map[string]any{"line": i})
			}
			return 0, err
		}
		txs = append(txs, *tx)
	}

	if err := s.repo.BulkInsert(ctx, txs); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import transactions")
	}
	return len(txs), nil
}

func (s *service) ListBetween(ctx context.Context, period types.Period) ([]models.SalesTransaction, error) {
	txs, err := s.repo.ListBetween(ctx, period.Start, period.End)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return txs, nil
}

func buildTransaction(input TransactionInput) (*models.SalesTransaction, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be positive")
	}
	if input.OccurredAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "occurred_at is required")
	}
	return &models.SalesTransaction{
		CustomerID: input.CustomerID,
		SKU:        sku,
		Qty:        input.Qty,
		Amount:     input.Amount,
		OccurredAt: types.Midnight(input.OccurredAt),
	}, nil
}
