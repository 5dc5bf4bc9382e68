package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apothex/pricing-backend/api/responses"
	"github.com/apothex/pricing-backend/api/validators"
	"github.com/apothex/pricing-backend/internal/catalog"
	pkgerrors "github.com/apothex/pricing-backend/pkg/errors"
	"github.com/apothex/pricing-backend/pkg/logger"
	"github.com/apothex/pricing-backend/pkg/types"
)

// CreateProduct handles catalog entry creation.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// GetProduct returns one catalog entry by id.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListProducts returns the active catalog.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// ChangeProductAIP updates a SKU's list price through the versioning flow.
func ChangeProductAIP(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku := strings.TrimSpace(chi.URLParam(r, "sku"))
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku is required"))
			return
		}

		var payload changeAIPRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		aip, err := decimal.NewFromString(payload.AIP)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid aip"))
			return
		}

		product, err := svc.ChangeAIP(r.Context(), sku, aip)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeactivateProduct removes a catalog entry from active pricing.
func DeactivateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivateProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

type createProductRequest struct {
	SKU         string            `json:"sku" validate:"required"`
	Name        string            `json:"name" validate:"required"`
	PackSize    string            `json:"pack_size,omitempty"`
	ZINumber    *string           `json:"zi_number,omitempty"`
	AIP         string            `json:"aip" validate:"required"`
	MinOrderQty int               `json:"min_order_qty" validate:"required,min=1"`
	CasePack    *int              `json:"case_pack,omitempty" validate:"omitempty,min=1"`
	Custom      map[string]string `json:"custom,omitempty"`
}

type changeAIPRequest struct {
	AIP string `json:"aip" validate:"required"`
}

func (r createProductRequest) toInput() (catalog.ProductInput, error) {
	aip, err := decimal.NewFromString(r.AIP)
	if err != nil {
		return catalog.ProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid aip")
	}
	return catalog.ProductInput{
		SKU:         strings.TrimSpace(r.SKU),
		Name:        strings.TrimSpace(r.Name),
		PackSize:    strings.TrimSpace(r.PackSize),
		ZINumber:    r.ZINumber,
		AIP:         aip,
		MinOrderQty: r.MinOrderQty,
		CasePack:    r.CasePack,
		Custom:      types.Attributes(r.Custom),
	}, nil
}

func parsePathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").
			WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
