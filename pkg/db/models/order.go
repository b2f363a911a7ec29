package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rawises/storefront-backend/pkg/enums"
	"github.com/rawises/storefront-backend/pkg/types"
)

// Order is created when a checkout session is submitted to the payment
// provider and mutated afterwards by webhook and admin actions.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex"`
	InvoiceID     string              `gorm:"column:invoice_id;not null;index"`
	Status        enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	CustomerEmail string              `gorm:"column:customer_email;not null"`
	CustomerPhone string              `gorm:"column:customer_phone;not null"`
	Address       *types.Address      `gorm:"column:address;type:jsonb;serializer:json"`
	SubtotalExVAT decimal.Decimal     `gorm:"column:subtotal_ex_vat;type:numeric(12,2);not null;default:0"`
	DiscountTotal decimal.Decimal     `gorm:"column:discount_total;type:numeric(12,2);not null;default:0"`
	VATAmount     decimal.Decimal     `gorm:"column:vat_amount;type:numeric(12,2);not null;default:0"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	Notes         *string             `gorm:"column:notes"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
