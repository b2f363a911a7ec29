package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rawises/storefront-backend/api/responses"
	"github.com/rawises/storefront-backend/api/validators"
	shipmentsvc "github.com/rawises/storefront-backend/internal/shipments"
	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/logger"
	"github.com/rawises/storefront-backend/pkg/types"
)

type shipmentCreateRequest struct {
	OrderID           uuid.UUID  `json:"order_id" validate:"required"`
	TrackingNumber    string     `json:"tracking_number" validate:"required"`
	Provider          string     `json:"provider" validate:"required"`
	ServiceName       string     `json:"service_name"`
	RecipientName     string     `json:"recipient_name"`
	RecipientPhone    string     `json:"recipient_phone"`
	WeightKg          float64    `json:"weight_kg" validate:"min=0"`
	ShippingCost      string     `json:"shipping_cost"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

// AdminShipmentCreate registers a parcel for an order.
func AdminShipmentCreate(svc shipmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload shipmentCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cost := decimal.Zero
		if raw := strings.TrimSpace(payload.ShippingCost); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shipping_cost must be a decimal"))
				return
			}
			cost = parsed
		}

		shipment, err := svc.Create(r.Context(), shipmentsvc.CreateInput{
			OrderID:           payload.OrderID,
			TrackingNumber:    payload.TrackingNumber,
			Provider:          payload.Provider,
			ServiceName:       payload.ServiceName,
			RecipientName:     payload.RecipientName,
			RecipientPhone:    payload.RecipientPhone,
			WeightKg:          payload.WeightKg,
			ShippingCost:      cost,
			EstimatedDelivery: payload.EstimatedDelivery,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newShipmentResponse(shipment))
	}
}

// AdminShipmentList serves the back-office shipment table.
func AdminShipmentList(svc shipmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters shipmentsvc.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseShipmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		orderID, err := validators.ParseQueryUUID(r, "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.OrderID = orderID

		result, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := struct {
			Shipments  []shipmentResponse `json:"shipments"`
			NextCursor string             `json:"next_cursor,omitempty"`
		}{
			Shipments:  make([]shipmentResponse, 0, len(result.Shipments)),
			NextCursor: result.NextCursor,
		}
		for i := range result.Shipments {
			out.Shipments = append(out.Shipments, newShipmentResponse(&result.Shipments[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminShipmentDetail serves one shipment with its tracking history.
func AdminShipmentDetail(svc shipmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "shipmentId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment id"))
			return
		}

		shipment, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newShipmentResponse(shipment))
	}
}

type shipmentStatusRequest struct {
	Status      string `json:"status" validate:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type shipmentUpdateNotifier interface {
	NotifyShipmentUpdate(ctx context.Context, shipment *models.Shipment) error
}

// AdminShipmentUpdateStatus advances the carrier status and appends a
// tracking event.
func AdminShipmentUpdateStatus(svc shipmentsvc.Service, notifier shipmentUpdateNotifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "shipmentId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment id"))
			return
		}

		var payload shipmentStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseShipmentStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipment status"))
			return
		}

		shipment, err := svc.UpdateStatus(r.Context(), id, shipmentsvc.StatusUpdateInput{
			Status:      status,
			Description: payload.Description,
			Location:    payload.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if notifier != nil {
			if err := notifier.NotifyShipmentUpdate(r.Context(), shipment); err != nil && logg != nil {
				logg.Error(r.Context(), "shipment notification failed", err)
			}
		}

		responses.WriteSuccess(w, newShipmentResponse(shipment))
	}
}

// ShipmentTrack is the public lookup by carrier tracking number.
func ShipmentTrack(svc shipmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shipment, err := svc.Track(r.Context(), chi.URLParam(r, "trackingNumber"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newShipmentResponse(shipment))
	}
}

type trackingEventResponse struct {
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type shipmentResponse struct {
	ID                uuid.UUID               `json:"id"`
	OrderID           uuid.UUID               `json:"order_id"`
	TrackingNumber    string                  `json:"tracking_number"`
	Provider          string                  `json:"provider"`
	ServiceName       string                  `json:"service_name,omitempty"`
	Status            string                  `json:"status"`
	RecipientName     string                  `json:"recipient_name"`
	RecipientPhone    string                  `json:"recipient_phone"`
	RecipientAddress  *types.Address          `json:"recipient_address,omitempty"`
	WeightKg          float64                 `json:"weight_kg"`
	ShippingCost      string                  `json:"shipping_cost"`
	EstimatedDelivery *time.Time              `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time              `json:"actual_delivery,omitempty"`
	Events            []trackingEventResponse `json:"events,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

func newShipmentResponse(shipment *models.Shipment) shipmentResponse {
	out := shipmentResponse{
		ID:                shipment.ID,
		OrderID:           shipment.OrderID,
		TrackingNumber:    shipment.TrackingNumber,
		Provider:          shipment.Provider,
		ServiceName:       shipment.ServiceName,
		Status:            shipment.Status.String(),
		RecipientName:     shipment.RecipientName,
		RecipientPhone:    shipment.RecipientPhone,
		RecipientAddress:  shipment.RecipientAddress,
		WeightKg:          shipment.WeightKg,
		ShippingCost:      shipment.ShippingCost.StringFixed(2),
		EstimatedDelivery: shipment.EstimatedDelivery,
		ActualDelivery:    shipment.ActualDelivery,
		CreatedAt:         shipment.CreatedAt,
	}
	for _, event := range shipment.Events {
		out.Events = append(out.Events, trackingEventResponse{
			Status:      event.Status.String(),
			Description: event.Description,
			Location:    event.Location,
			CreatedAt:   event.CreatedAt,
		})
	}
	return out
}
