package shipments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type orderLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// CreateInput describes a new parcel for an order. Recipient fields default
// to the order's customer when left empty.
type CreateInput struct {
	OrderID           uuid.UUID
	TrackingNumber    string
	Provider          string
	ServiceName       string
	RecipientName     string
	RecipientPhone    string
	WeightKg          float64
	ShippingCost      decimal.Decimal
	EstimatedDelivery *time.Time
}

// StatusUpdateInput moves a shipment along the carrier pipeline.
type StatusUpdateInput struct {
	Status      enums.ShipmentStatus
	Description string
	Location    string
}

// Service manages shipment records and their tracking history.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Shipment, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	Track(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input StatusUpdateInput) (*models.Shipment, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	orders orderLoader
}

// NewService builds the shipments service.
func NewService(repo Repository, tx txRunner, orders orderLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	return &service{repo: repo, tx: tx, orders: orders}, nil
}

// Create registers the parcel and seeds its tracking history with a
// "created" event.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Shipment, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	recipientName := strings.TrimSpace(input.RecipientName)
	if recipientName == "" {
		recipientName = order.CustomerName
	}
	recipientPhone := strings.TrimSpace(input.RecipientPhone)
	if recipientPhone == "" {
		recipientPhone = order.CustomerPhone
	}

	shipment := &models.Shipment{
		OrderID:           order.ID,
		TrackingNumber:    strings.TrimSpace(input.TrackingNumber),
		Provider:          strings.TrimSpace(input.Provider),
		ServiceName:       strings.TrimSpace(input.ServiceName),
		Status:            enums.ShipmentStatusCreated,
		RecipientName:     recipientName,
		RecipientPhone:    recipientPhone,
		RecipientAddress:  order.Address,
		WeightKg:          input.WeightKg,
		ShippingCost:      input.ShippingCost,
		EstimatedDelivery: input.EstimatedDelivery,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, shipment); err != nil {
			return err
		}
		return txRepo.CreateEvent(ctx, &models.TrackingEvent{
			ShipmentID:  shipment.ID,
			Status:      enums.ShipmentStatusCreated,
			Description: "shipment label created",
		})
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipment")
	}
	return shipment, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error) {
	result, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipments")
	}
	return result, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipment id is required")
	}
	shipment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment")
	}
	return shipment, nil
}

// Track resolves a shipment by its carrier tracking number.
func (s *service) Track(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number is required")
	}
	shipment, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment by tracking number")
	}
	return shipment, nil
}

// UpdateStatus advances the shipment and appends a tracking event. Delivery
// stamps ActualDelivery; delivered and returned shipments are terminal.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input StatusUpdateInput) (*models.Shipment, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shipment status")
	}

	shipment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if shipment.Status == enums.ShipmentStatusDelivered || shipment.Status == enums.ShipmentStatusReturned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipment already finalized")
	}

	shipment.Status = input.Status
	if input.Status == enums.ShipmentStatusDelivered && shipment.ActualDelivery == nil {
		now := time.Now().UTC()
		shipment.ActualDelivery = &now
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Save(ctx, shipment); err != nil {
			return err
		}
		return txRepo.CreateEvent(ctx, &models.TrackingEvent{
			ShipmentID:  shipment.ID,
			Status:      input.Status,
			Description: strings.TrimSpace(input.Description),
			Location:    strings.TrimSpace(input.Location),
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shipment status")
	}
	return shipment, nil
}

func validateCreate(input CreateInput) error {
	fields := map[string]string{}
	if input.OrderID == uuid.Nil {
		fields["order_id"] = "order id is required"
	}
	if strings.TrimSpace(input.TrackingNumber) == "" {
		fields["tracking_number"] = "tracking number is required"
	}
	if strings.TrimSpace(input.Provider) == "" {
		fields["provider"] = "provider is required"
	}
	if input.WeightKg < 0 {
		fields["weight_kg"] = "weight cannot be negative"
	}
	if input.ShippingCost.IsNegative() {
		fields["shipping_cost"] = "shipping cost cannot be negative"
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid shipment payload").WithDetails(fields)
	}
	return nil
}
