package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apothex/pricing-backend/api/responses"
	"github.com/apothex/pricing-backend/api/validators"
	"github.com/apothex/pricing-backend/internal/sales"
	pkgerrors "github.com/apothex/pricing-backend/pkg/errors"
	"github.com/apothex/pricing-backend/pkg/logger"
	"github.com/apothex/pricing-backend/pkg/types"
)

// RecordTransaction appends one line to the sales ledger.
func RecordTransaction(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		var payload transactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tx, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tx)
	}
}

// ImportTransactions bulk-loads ledger lines. All-or-nothing.
func ImportTransactions(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload importRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inputs := make([]sales.TransactionInput, 0, len(payload.Transactions))
		for _, tr := range payload.Transactions {
			input, err := tr.toInput()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			inputs = append(inputs, input)
		}

		count, err := svc.Import(r.Context(), inputs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]int{"imported": count})
	}
}

type transactionRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	SKU        string `json:"sku" validate:"required"`
	Qty        int    `json:"qty" validate:"required,min=1"`
	Amount     string `json:"amount" validate:"required"`
	OccurredAt string `json:"occurred_at" validate:"required,datetime=2006-01-02"`
}

type importRequest struct {
	Transactions []transactionRequest `json:"transactions" validate:"required,min=1,dive"`
}

func (r transactionRequest) toInput() (sales.TransactionInput, error) {
	customerID, err := uuid.Parse(r.CustomerID)
	if err != nil {
		return sales.TransactionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer_id")
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return sales.TransactionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	}
	occurredAt, err := time.Parse(types.DateLayout, r.OccurredAt)
	if err != nil {
		return sales.TransactionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid occurred_at")
	}
	return sales.TransactionInput{
		CustomerID: customerID,
		SKU:        r.SKU,
		Qty:        r.Qty,
		Amount:     amount,
		OccurredAt: occurredAt,
	}, nil
}
