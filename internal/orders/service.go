package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/pagination"
)

// Service exposes order creation (checkout) and the admin order operations.
type Service interface {
	Create(ctx context.Context, tx *gorm.DB, input CreateOrderInput) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	ApplyPaymentResult(ctx context.Context, invoiceID string, succeeded bool, reason string) (*models.Order, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo Repository
}

// NewService builds the orders service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// Create persists a pending order with its line snapshot. The caller supplies
// the transaction so the order lands atomically with the cart conversion.
func (s *service) Create(ctx context.Context, tx *gorm.DB, input CreateOrderInput) (*models.Order, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderNumber:   input.OrderNumber,
		InvoiceID:     input.InvoiceID,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Address:       input.Address,
		Notes:         input.Notes,
		SubtotalExVAT: input.SubtotalExVAT,
		DiscountTotal: input.DiscountTotal,
		VATAmount:     input.VATAmount,
		TotalAmount:   input.TotalAmount,
	}
	for _, line := range input.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:  line.ProductID,
			Name:       line.Name,
			Brand:      line.Brand,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			TotalPrice: line.UnitPrice.Mul(decimalFromInt(line.Quantity)),
		})
	}

	created, err := s.repo.WithTx(tx).Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error) {
	result, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return result, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// UpdateStatus sets the fulfilment status.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCancelled || order.Status == enums.OrderStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is closed")
	}

	order.Status = status
	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return saved, nil
}

// ApplyPaymentResult records the gateway callback outcome for the invoice.
// Success confirms the order; failure keeps it pending with the reason noted.
func (s *service) ApplyPaymentResult(ctx context.Context, invoiceID string, succeeded bool, reason string) (*models.Order, error) {
	if strings.TrimSpace(invoiceID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id is required")
	}

	order, err := s.repo.FindByInvoiceID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found for invoice")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by invoice")
	}

	if succeeded {
		order.PaymentStatus = enums.PaymentStatusPaid
		if order.Status == enums.OrderStatusPending {
			order.Status = enums.OrderStatusConfirmed
		}
	} else {
		order.PaymentStatus = enums.PaymentStatusFailed
		if reason != "" {
			note := reason
			if order.Notes != nil && *order.Notes != "" {
				note = *order.Notes + "; " + reason
			}
			order.Notes = &note
		}
	}

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply payment result")
	}
	return saved, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order stats")
	}
	return stats, nil
}

func decimalFromInt(value int) decimal.Decimal {
	return decimal.NewFromInt(int64(value))
}

func validateCreate(input CreateOrderInput) error {
	fields := map[string]string{}
	if input.OrderNumber == "" {
		fields["order_number"] = "order number is required"
	}
	if input.InvoiceID == "" {
		fields["invoice_id"] = "invoice id is required"
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		fields["customer_name"] = "customer name is required"
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		fields["customer_email"] = "customer email is required"
	}
	if len(input.Items) == 0 {
		fields["items"] = "order must contain at least one item"
	}
	if input.TotalAmount.IsNegative() {
		fields["total_amount"] = "total cannot be negative"
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order payload").WithDetails(fields)
	}
	return nil
}
