package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rawises/storefront-backend/pkg/enums"
	"github.com/rawises/storefront-backend/pkg/types"
)

// CreateOrderInput is the snapshot persisted when a checkout session is
// submitted to the payment gateway.
type CreateOrderInput struct {
	OrderNumber   string
	InvoiceID     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       *types.Address
	Notes         *string
	SubtotalExVAT decimal.Decimal
	DiscountTotal decimal.Decimal
	VATAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	Items         []CreateOrderItemInput
}

// CreateOrderItemInput is one purchased line of CreateOrderInput.
type CreateOrderItemInput struct {
	ProductID *uuid.UUID
	Name      string
	Brand     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// ListFilters narrows the admin order listing.
type ListFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	From          *time.Time
	To            *time.Time
	Query         string
}

// Stats aggregates the dashboard order figures.
type Stats struct {
	TotalOrders   int64
	PendingOrders int64
	Revenue       decimal.Decimal
}
