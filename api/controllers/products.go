package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rawises/storefront-backend/api/responses"
	"github.com/rawises/storefront-backend/api/validators"
	productsvc "github.com/rawises/storefront-backend/internal/products"
	"github.com/rawises/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/logger"
)

// ProductList serves the public catalog listing with cursor pagination.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		// The storefront only ever sees purchasable products.
		filters.ActiveOnly = true

		result, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductListResponse(result))
	}
}

// ProductDetail serves one catalog entry.
func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

func productFiltersFromQuery(r *http.Request) (productsvc.ListFilters, error) {
	filters := productsvc.ListFilters{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if brand := strings.TrimSpace(r.URL.Query().Get("brand")); brand != "" {
		filters.Brand = &brand
	}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filters.Category = &category
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("price_min")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "price_min must be a number")
		}
		filters.PriceMin = &value
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("price_max")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "price_max must be a number")
		}
		filters.PriceMax = &value
	}
	return filters, nil
}

type productResponse struct {
	ID            uuid.UUID `json:"id"`
	SKU           string    `json:"sku"`
	Barcode       *string   `json:"barcode,omitempty"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Description   *string   `json:"description,omitempty"`
	Categories    []string  `json:"categories"`
	ImageURL      *string   `json:"image_url,omitempty"`
	SalePrice     string    `json:"sale_price"`
	DiscountPrice string    `json:"discount_price"`
	InStock       bool      `json:"in_stock"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type productListResponse struct {
	Products   []productResponse `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newProductResponse(product *models.Product) productResponse {
	return productResponse{
		ID:            product.ID,
		SKU:           product.SKU,
		Barcode:       product.Barcode,
		Name:          product.Name,
		Brand:         product.Brand,
		Description:   product.Description,
		Categories:    product.Categories,
		ImageURL:      product.ImageURL,
		SalePrice:     product.SalePrice.StringFixed(2),
		DiscountPrice: product.DiscountPrice.StringFixed(2),
		InStock:       product.TotalStock() > 0,
		IsActive:      product.IsActive,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}

func newProductListResponse(result *productsvc.ListResult) productListResponse {
	out := productListResponse{
		Products:   make([]productResponse, 0, len(result.Products)),
		NextCursor: result.NextCursor,
	}
	for i := range result.Products {
		out.Products = append(out.Products, newProductResponse(&result.Products[i]))
	}
	return out
}
