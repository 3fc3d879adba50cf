package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/happycart-io/happycart-backend/api/responses"
	"github.com/happycart-io/happycart-backend/api/validators"
	productsvc "github.com/happycart-io/happycart-backend/internal/products"
	pkgerrors "github.com/happycart-io/happycart-backend/pkg/errors"
	"github.com/happycart-io/happycart-backend/pkg/logger"
	"github.com/happycart-io/happycart-backend/pkg/pagination"
)

// ListProducts handles GET /api/products.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		filters, err := listFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// GetProduct handles GET /api/products/{id}.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetByID(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func listFiltersFromQuery(r *http.Request) (productsvc.ListFilters, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return productsvc.ListFilters{}, err
	}

	filters := productsvc.ListFilters{
		Category:   validators.ParseQueryString(r, "category"),
		Brand:      validators.ParseQueryString(r, "brand"),
		Size:       validators.ParseQueryString(r, "size"),
		Color:      validators.ParseQueryString(r, "color"),
		Gender:     validators.ParseQueryString(r, "gender"),
		Collection: validators.ParseQueryString(r, "collection"),
		Material:   validators.ParseQueryString(r, "material"),
		Search:     validators.ParseQueryString(r, "search"),
		SortBy:     validators.ParseQueryString(r, "sortBy"),
		Limit:      limit,
	}

	if raw := validators.ParseQueryString(r, "minPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return productsvc.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "minPrice must be a decimal")
		}
		filters.MinPrice = &price
	}
	if raw := validators.ParseQueryString(r, "maxPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return productsvc.ListFilters{}, pkgerrors.New(pkgerrors.CodeValidation, "maxPrice must be a decimal")
		}
		filters.MaxPrice = &price
	}

	return filters, nil
}
