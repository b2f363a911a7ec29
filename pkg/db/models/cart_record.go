package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rawises/storefront-backend/pkg/enums"
)

// CartRecord is the server-side cart keyed by an opaque visitor token. Totals
// are denormalized from the pricing engine on every mutation.
type CartRecord struct {
	ID                    uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Token                 string           `gorm:"column:token;not null;uniqueIndex"`
	Status                enums.CartStatus `gorm:"column:status;type:cart_status;not null;default:'active'"`
	MemberDiscountPercent int              `gorm:"column:member_discount_percent;not null;default:0"`
	TotalItems            int              `gorm:"column:total_items;not null;default:0"`
	SubtotalExVAT         decimal.Decimal  `gorm:"column:subtotal_ex_vat;type:numeric(12,2);not null;default:0"`
	MemberDiscountAmount  decimal.Decimal  `gorm:"column:member_discount_amount;type:numeric(12,2);not null;default:0"`
	VATAmount             decimal.Decimal  `gorm:"column:vat_amount;type:numeric(12,2);not null;default:0"`
	TotalInclVAT          decimal.Decimal  `gorm:"column:total_incl_vat;type:numeric(12,2);not null;default:0"`
	FinalTotal            decimal.Decimal  `gorm:"column:final_total;type:numeric(12,2);not null;default:0"`
	Items                 []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	ConvertedAt           *time.Time       `gorm:"column:converted_at"`
	CreatedAt             time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
