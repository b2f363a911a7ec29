package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rawises/storefront-backend/api/responses"
	"github.com/rawises/storefront-backend/api/validators"
	cartsvc "github.com/rawises/storefront-backend/internal/cart"
	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/logger"
)

// cartTokenHeader carries the opaque visitor cart token on every cart and
// checkout request.
const cartTokenHeader = "X-Cart-Token"

// CartFetch returns the cart stored under the visitor token.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		member, err := validators.ParseQueryBool(r, "member", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), cartToken(r), member)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

type cartAddRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Member    bool      `json:"member"`
}

// CartAddItem inserts the product or bumps its quantity by one.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.AddItem(r.Context(), cartToken(r), payload.ProductID, payload.Member)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

type cartQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
	Member    bool      `json:"member"`
}

// CartUpdateQuantity sets the line quantity; zero removes the line.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateQuantity(r.Context(), cartToken(r), payload.ProductID, payload.Quantity, payload.Member)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

type cartRemoveRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Member    bool      `json:"member"`
}

// CartRemoveItem drops the product line.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartRemoveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RemoveItem(r.Context(), cartToken(r), payload.ProductID, payload.Member)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

// CartClear empties the cart while keeping the token alive.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := svc.Clear(r.Context(), cartToken(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(record))
	}
}

func cartToken(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(cartTokenHeader))
}

type cartItemResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	ImageURL      *string   `json:"image_url,omitempty"`
	SalePrice     string    `json:"sale_price"`
	DiscountPrice string    `json:"discount_price"`
	Quantity      int       `json:"quantity"`
	LineSubtotal  string    `json:"line_subtotal"`
}

type cartResponse struct {
	Token                 string             `json:"token"`
	Status                string             `json:"status"`
	MemberDiscountPercent int                `json:"member_discount_percent"`
	TotalItems            int                `json:"total_items"`
	SubtotalExVAT         string             `json:"subtotal_ex_vat"`
	MemberDiscountAmount  string             `json:"member_discount_amount"`
	VATAmount             string             `json:"vat_amount"`
	TotalInclVAT          string             `json:"total_incl_vat"`
	FinalTotal            string             `json:"final_total"`
	Items                 []cartItemResponse `json:"items"`
}

func newCartResponse(record *models.CartRecord) cartResponse {
	out := cartResponse{
		Token:                 record.Token,
		Status:                record.Status.String(),
		MemberDiscountPercent: record.MemberDiscountPercent,
		TotalItems:            record.TotalItems,
		SubtotalExVAT:         record.SubtotalExVAT.StringFixed(2),
		MemberDiscountAmount:  record.MemberDiscountAmount.StringFixed(2),
		VATAmount:             record.VATAmount.StringFixed(2),
		TotalInclVAT:          record.TotalInclVAT.StringFixed(2),
		FinalTotal:            record.FinalTotal.StringFixed(2),
		Items:                 make([]cartItemResponse, 0, len(record.Items)),
	}
	for _, item := range record.Items {
		out.Items = append(out.Items, cartItemResponse{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Brand:         item.Brand,
			ImageURL:      item.ImageURL,
			SalePrice:     item.SalePrice.StringFixed(2),
			DiscountPrice: item.DiscountPrice.StringFixed(2),
			Quantity:      item.Quantity,
			LineSubtotal:  item.LineSubtotal.StringFixed(2),
		})
	}
	return out
}
