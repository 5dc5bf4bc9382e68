package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apothex/pricing-backend/api/responses"
	"github.com/apothex/pricing-backend/api/validators"
	"github.com/apothex/pricing-backend/internal/customers"
	pkgerrors "github.com/apothex/pricing-backend/pkg/errors"
	"github.com/apothex/pricing-backend/pkg/logger"
	"github.com/apothex/pricing-backend/pkg/types"
)

// CreateCustomer registers a buying party.
func CreateCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		var payload createCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.CreateCustomer(r.Context(), payload.Name, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

// GetCustomer returns one customer by id.
func GetCustomer(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.GetCustomer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

// ListCustomers returns all customers.
func ListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListCustomers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AddDiscount attaches a discount agreement to a customer.
func AddDiscount(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := parsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.CustomerID = customerID

		discount, err := svc.AddDiscount(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, discount)
	}
}

// ListDiscounts returns the customer's discount agreements.
func ListDiscounts(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := parsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discounts, err := svc.ListDiscounts(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, discounts)
	}
}

// RemoveDiscount deletes one discount agreement.
func RemoveDiscount(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "discountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveDiscount(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createCustomerRequest struct {
	Name string  `json:"name" validate:"required"`
	Code *string `json:"code,omitempty"`
}

type addDiscountRequest struct {
	DiscountPct string  `json:"discount_pct" validate:"required"`
	ValidFrom   string  `json:"valid_from" validate:"required,datetime=2006-01-02"`
	ValidTo     *string `json:"valid_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r addDiscountRequest) toInput() (customers.DiscountInput, error) {
	pct, err := decimal.NewFromString(r.DiscountPct)
	if err != nil {
		return customers.DiscountInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount_pct")
	}
	from, err := time.Parse(types.DateLayout, r.ValidFrom)
	if err != nil {
		return customers.DiscountInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid valid_from")
	}
	input := customers.DiscountInput{DiscountPct: pct, ValidFrom: from}
	if r.ValidTo != nil {
		to, err := time.Parse(types.DateLayout, *r.ValidTo)
		if err != nil {
			return customers.DiscountInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid valid_to")
		}
		input.ValidTo = &to
	}
	return input, nil
}
