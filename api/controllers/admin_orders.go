package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rawises/storefront-backend/api/responses"
	"github.com/rawises/storefront-backend/api/validators"
	ordersvc "github.com/rawises/storefront-backend/internal/orders"
	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/logger"
	"github.com/rawises/storefront-backend/pkg/types"
)

// AdminOrderList serves the back-office order table.
func AdminOrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := orderFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := struct {
			Orders     []orderResponse `json:"orders"`
			NextCursor string          `json:"next_cursor,omitempty"`
		}{
			Orders:     make([]orderResponse, 0, len(result.Orders)),
			NextCursor: result.NextCursor,
		}
		for i := range result.Orders {
			out.Orders = append(out.Orders, newOrderResponse(&result.Orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminOrderDetail serves one order with its lines.
func AdminOrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminOrderUpdateStatus moves the fulfilment status.
func AdminOrderUpdateStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminOrderStats serves the dashboard counters.
func AdminOrderStats(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"total_orders":   stats.TotalOrders,
			"pending_orders": stats.PendingOrders,
			"revenue":        stats.Revenue.StringFixed(2),
		})
	}
}

func orderFiltersFromQuery(r *http.Request) (ordersvc.ListFilters, error) {
	filters := ordersvc.ListFilters{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status filter")
		}
		filters.PaymentStatus = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "from must be RFC3339")
		}
		filters.From = &from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "to must be RFC3339")
		}
		filters.To = &to
	}
	return filters, nil
}

type orderItemResponse struct {
	ProductID  *uuid.UUID `json:"product_id,omitempty"`
	Name       string     `json:"name"`
	Brand      string     `json:"brand"`
	UnitPrice  string     `json:"unit_price"`
	Quantity   int        `json:"quantity"`
	TotalPrice string     `json:"total_price"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	InvoiceID     string              `json:"invoice_id"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone string              `json:"customer_phone"`
	Address       *types.Address      `json:"address,omitempty"`
	SubtotalExVAT string              `json:"subtotal_ex_vat"`
	DiscountTotal string              `json:"discount_total"`
	VATAmount     string              `json:"vat_amount"`
	TotalAmount   string              `json:"total_amount"`
	Notes         *string             `json:"notes,omitempty"`
	Items         []orderItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	out := orderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		InvoiceID:     order.InvoiceID,
		Status:        order.Status.String(),
		PaymentStatus: order.PaymentStatus.String(),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		Address:       order.Address,
		SubtotalExVAT: order.SubtotalExVAT.StringFixed(2),
		DiscountTotal: order.DiscountTotal.StringFixed(2),
		VATAmount:     order.VATAmount.StringFixed(2),
		TotalAmount:   order.TotalAmount.StringFixed(2),
		Notes:         order.Notes,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, orderItemResponse{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Brand:      item.Brand,
			UnitPrice:  item.UnitPrice.StringFixed(2),
			Quantity:   item.Quantity,
			TotalPrice: item.TotalPrice.StringFixed(2),
		})
	}
	return out
}
