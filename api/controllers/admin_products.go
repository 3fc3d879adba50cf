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
	"github.com/happycart-io/happycart-backend/pkg/types"
)

type createProductRequest struct {
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice *decimal.Decimal    `json:"discountPrice"`
	CountInStock  int                 `json:"countInStock" validate:"min=0"`
	SKU           string              `json:"sku" validate:"required"`
	Category      string              `json:"category" validate:"required"`
	Brand         string              `json:"brand"`
	Sizes         []string            `json:"sizes"`
	Colors        []string            `json:"colors"`
	Collection    string              `json:"collection"`
	Material      string              `json:"material"`
	Gender        string              `json:"gender"`
	Images        types.ProductImages `json:"images"`
	IsFeatured    bool                `json:"isFeatured"`
	IsPublished   bool                `json:"isPublished"`
	Tags          []string            `json:"tags"`
}

// AdminListProducts handles GET /api/admin/products, including unpublished
// entries.
func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		filters.IncludeUnpublished = true

		products, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// AdminCreateProduct handles POST /api/admin/products.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), actor.UserID(), productsvc.CreateProductInput{
			Name:          payload.Name,
			Description:   payload.Description,
			Price:         payload.Price,
			DiscountPrice: payload.DiscountPrice,
			CountInStock:  payload.CountInStock,
			SKU:           payload.SKU,
			Category:      payload.Category,
			Brand:         payload.Brand,
			Sizes:         payload.Sizes,
			Colors:        payload.Colors,
			Collection:    payload.Collection,
			Material:      payload.Material,
			Gender:        payload.Gender,
			Images:        payload.Images,
			IsFeatured:    payload.IsFeatured,
			IsPublished:   payload.IsPublished,
			Tags:          payload.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name          *string              `json:"name"`
	Description   *string              `json:"description"`
	Price         *decimal.Decimal     `json:"price"`
	DiscountPrice *decimal.Decimal     `json:"discountPrice"`
	CountInStock  *int                 `json:"countInStock"`
	SKU           *string              `json:"sku"`
	Category      *string              `json:"category"`
	Brand         *string              `json:"brand"`
	Sizes         *[]string            `json:"sizes"`
	Colors        *[]string            `json:"colors"`
	Collection    *string              `json:"collection"`
	Material      *string              `json:"material"`
	Gender        *string              `json:"gender"`
	Images        *types.ProductImages `json:"images"`
	IsFeatured    *bool                `json:"isFeatured"`
	IsPublished   *bool                `json:"isPublished"`
	Tags          *[]string            `json:"tags"`
}

// AdminUpdateProduct handles PUT /api/admin/products/{id}.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), productID, productsvc.UpdateProductInput{
			Name:          payload.Name,
			Description:   payload.Description,
			Price:         payload.Price,
			DiscountPrice: payload.DiscountPrice,
			CountInStock:  payload.CountInStock,
			SKU:           payload.SKU,
			Category:      payload.Category,
			Brand:         payload.Brand,
			Sizes:         payload.Sizes,
			Colors:        payload.Colors,
			Collection:    payload.Collection,
			Material:      payload.Material,
			Gender:        payload.Gender,
			Images:        payload.Images,
			IsFeatured:    payload.IsFeatured,
			IsPublished:   payload.IsPublished,
			Tags:          payload.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct handles DELETE /api/admin/products/{id}.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
