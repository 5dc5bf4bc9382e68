package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apothex/pricing-backend/api/responses"
	"github.com/apothex/pricing-backend/api/validators"
	"github.com/apothex/pricing-backend/internal/pricing"
	"github.com/apothex/pricing-backend/internal/waterfall"
	"github.com/apothex/pricing-backend/pkg/enums"
	pkgerrors "github.com/apothex/pricing-backend/pkg/errors"
	"github.com/apothex/pricing-backend/pkg/logger"
	"github.com/apothex/pricing-backend/pkg/types"
)

// EffectiveDiscount returns the discount in effect for a customer on a date.
// The date defaults to today.
func EffectiveDiscount(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := parsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asOf, err := validators.ParseQueryDate(r, "date", time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := svc.ResolveDiscount(r.Context(), customerID, asOf)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, discount)
	}
}

// PriceList generates the customer's net price list for a date.
func PriceList(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := parsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asOf, err := validators.ParseQueryDate(r, "date", time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GeneratePriceList(r.Context(), customerID, asOf)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Growth compares contract revenue between two periods.
func Growth(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload growthRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		granularity, err := enums.ParseGranularity(payload.Granularity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid granularity"))
			return
		}
		baseline, err := types.ParsePeriod(payload.Baseline.Start, payload.Baseline.End)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid baseline period"))
			return
		}
		current, err := types.ParsePeriod(payload.Current.Start, payload.Current.End)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid current period"))
			return
		}

		summary, err := svc.ComputeGrowth(r.Context(), granularity, baseline, current)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// Waterfall builds the gross-to-net revenue bridge for a customer period.
func Waterfall(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := parsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload waterfallRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		period, err := types.ParsePeriod(payload.Period.Start, payload.Period.End)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid period"))
			return
		}
		deductions, err := payload.toDeductions()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		steps, err := svc.BuildWaterfall(r.Context(), pricing.WaterfallInput{
			CustomerID: customerID,
			Period:     period,
			Deductions: deductions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"steps": steps})
	}
}

type periodRequest struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" validate:"required,datetime=2006-01-02"`
}

type growthRequest struct {
	Granularity string        `json:"granularity" validate:"required"`
	Baseline    periodRequest `json:"baseline" validate:"required"`
	Current     periodRequest `json:"current" validate:"required"`
}

type deductionRequest struct {
	Name                string `json:"name" validate:"required"`
	Kind                string `json:"kind" validate:"required"`
	Value               string `json:"value" validate:"required"`
	OffInvoiceFromGross bool   `json:"off_invoice_from_gross,omitempty"`
}

type waterfallRequest struct {
	Period     periodRequest      `json:"period" validate:"required"`
	Deductions []deductionRequest `json:"deductions,omitempty" validate:"omitempty,dive"`
}

func (r waterfallRequest) toDeductions() ([]waterfall.Deduction, error) {
	deductions := make([]waterfall.Deduction, 0, len(r.Deductions))
	for _, d := range r.Deductions {
		kind, err := enums.ParseDeductionKind(d.Kind)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deduction kind")
		}
		value, err := decimal.NewFromString(d.Value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deduction value").
				WithDetails(map[string]any{"deduction": d.Name})
		}
		deductions = append(deductions, waterfall.Deduction{
			Name:                d.Name,
			Kind:                kind,
			Value:               value,
			OffInvoiceFromGross: d.OffInvoiceFromGross,
		})
	}
	return deductions, nil
}
