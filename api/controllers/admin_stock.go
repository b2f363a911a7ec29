package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rawises/storefront-backend/api/middleware"
	"github.com/rawises/storefront-backend/api/responses"
	"github.com/rawises/storefront-backend/api/validators"
	stocksvc "github.com/rawises/storefront-backend/internal/stock"
	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/logger"
)

type stockMovementRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Type      string    `json:"type" validate:"required"`
	Warehouse string    `json:"warehouse" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required"`
	Reason    string    `json:"reason"`
	Notes     *string   `json:"notes,omitempty"`
}

// AdminStockMovement applies an in/out/adjustment/transfer movement.
func AdminStockMovement(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload stockMovementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movementType, err := enums.ParseStockMovementType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
			return
		}
		warehouse, err := enums.ParseWarehouse(payload.Warehouse)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid warehouse"))
			return
		}

		product, err := svc.RecordMovement(r.Context(), stocksvc.MovementInput{
			ProductID: payload.ProductID,
			Type:      movementType,
			Warehouse: warehouse,
			Quantity:  payload.Quantity,
			Reason:    payload.Reason,
			Notes:     payload.Notes,
			ActorID:   actorID(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAdminProductResponse(product))
	}
}

type stockAdjustRequest struct {
	Warehouse string `json:"warehouse" validate:"required"`
	Delta     int    `json:"delta" validate:"required"`
}

// AdminStockAdjust applies a signed correction to one warehouse counter.
func AdminStockAdjust(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload stockAdjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouse, err := enums.ParseWarehouse(payload.Warehouse)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid warehouse"))
			return
		}

		product, err := svc.Adjust(r.Context(), productID, warehouse, payload.Delta, actorID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAdminProductResponse(product))
	}
}

// AdminStockMovements serves the movement ledger, optionally per product.
func AdminStockMovements(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseQueryUUID(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListMovements(r.Context(), params, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := struct {
			Movements  []stockMovementResponse `json:"movements"`
			NextCursor string                  `json:"next_cursor,omitempty"`
		}{
			Movements:  make([]stockMovementResponse, 0, len(result.Movements)),
			NextCursor: result.NextCursor,
		}
		for i := range result.Movements {
			out.Movements = append(out.Movements, newStockMovementResponse(&result.Movements[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminStockAlerts serves the current low-stock alert list.
func AdminStockAlerts(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alerts, err := svc.Alerts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]stockAlertResponse, 0, len(alerts))
		for _, alert := range alerts {
			out = append(out, stockAlertResponse{
				ProductID:   alert.Product.ID,
				ProductName: alert.Product.Name,
				SKU:         alert.Product.SKU,
				Current:     alert.Current,
				Minimum:     alert.Minimum,
				Severity:    string(alert.Severity),
			})
		}
		responses.WriteSuccess(w, map[string]any{"alerts": out})
	}
}

// actorID resolves the admin acting on the request, when authenticated.
func actorID(r *http.Request) *uuid.UUID {
	id, err := uuid.Parse(middleware.AdminIDFromContext(r.Context()))
	if err != nil {
		return nil
	}
	return &id
}

type stockMovementResponse struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"product_id"`
	Type      string     `json:"type"`
	Quantity  int        `json:"quantity"`
	Warehouse string     `json:"warehouse"`
	Reason    string     `json:"reason"`
	Notes     *string    `json:"notes,omitempty"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func newStockMovementResponse(movement *models.StockMovement) stockMovementResponse {
	return stockMovementResponse{
		ID:        movement.ID,
		ProductID: movement.ProductID,
		Type:      string(movement.Type),
		Quantity:  movement.Quantity,
		Warehouse: string(movement.Warehouse),
		Reason:    movement.Reason,
		Notes:     movement.Notes,
		ActorID:   movement.ActorID,
		CreatedAt: movement.CreatedAt,
	}
}

type stockAlertResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	SKU         string    `json:"sku"`
	Current     int       `json:"current"`
	Minimum     int       `json:"minimum"`
	Severity    string    `json:"severity"`
}
