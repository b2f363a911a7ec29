package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rawises/storefront-backend/api/responses"
	"github.com/rawises/storefront-backend/api/validators"
	productsvc "github.com/rawises/storefront-backend/internal/products"
	"github.com/rawises/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/logger"
)

type productUpsertRequest struct {
	SKU           string   `json:"sku" validate:"required"`
	Barcode       *string  `json:"barcode,omitempty"`
	Name          string   `json:"name" validate:"required"`
	Brand         string   `json:"brand"`
	Description   *string  `json:"description,omitempty"`
	Categories    []string `json:"categories"`
	ImageURL      *string  `json:"image_url,omitempty"`
	SalePrice     string   `json:"sale_price"`
	DiscountPrice string   `json:"discount_price"`
	StockMain     int      `json:"stock_main" validate:"min=0"`
	StockAdana    int      `json:"stock_adana" validate:"min=0"`
	MinStockLevel int      `json:"min_stock_level" validate:"min=0"`
	IsActive      bool     `json:"is_active"`
}

func (p productUpsertRequest) toInput() productsvc.UpsertInput {
	return productsvc.UpsertInput{
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		Name:          p.Name,
		Brand:         p.Brand,
		Description:   p.Description,
		Categories:    p.Categories,
		ImageURL:      p.ImageURL,
		SalePrice:     p.SalePrice,
		DiscountPrice: p.DiscountPrice,
		StockMain:     p.StockMain,
		StockAdana:    p.StockAdana,
		MinStockLevel: p.MinStockLevel,
		IsActive:      p.IsActive,
	}
}

// AdminProductList serves the catalog including inactive entries.
func AdminProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := productFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAdminProductListResponse(result))
	}
}

// AdminProductCreate registers a new catalog entry.
func AdminProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productUpsertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newAdminProductResponse(product))
	}
}

// AdminProductUpdate replaces the catalog entry's editable fields.
func AdminProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload productUpsertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAdminProductResponse(product))
	}
}

// AdminProductDelete removes the catalog entry. Order lines keep their
// snapshot because the FK nulls instead of cascading.
func AdminProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type adminProductResponse struct {
	productResponse
	StockMain     int `json:"stock_main"`
	StockAdana    int `json:"stock_adana"`
	TotalStock    int `json:"total_stock"`
	MinStockLevel int `json:"min_stock_level"`
}

func newAdminProductResponse(product *models.Product) adminProductResponse {
	return adminProductResponse{
		productResponse: newProductResponse(product),
		StockMain:       product.StockMain,
		StockAdana:      product.StockAdana,
		TotalStock:      product.TotalStock(),
		MinStockLevel:   product.MinStockLevel,
	}
}

type adminProductListResponse struct {
	Products   []adminProductResponse `json:"products"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

func newAdminProductListResponse(result *productsvc.ListResult) adminProductListResponse {
	out := adminProductListResponse{
		Products:   make([]adminProductResponse, 0, len(result.Products)),
		NextCursor: result.NextCursor,
	}
	for i := range result.Products {
		out.Products = append(out.Products, newAdminProductResponse(&result.Products[i]))
	}
	return out
}
