package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem snapshots a product line inside a CartRecord.
type CartItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID        uuid.UUID       `gorm:"column:cart_id;type:uuid;not null"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name          string          `gorm:"column:name;not null"`
	Brand         string          `gorm:"column:brand;not null;default:''"`
	ImageURL      *string         `gorm:"column:image_url"`
	SalePrice     decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2);not null;default:0"`
	DiscountPrice decimal.Decimal `gorm:"column:discount_price;type:numeric(12,2);not null;default:0"`
	Quantity      int             `gorm:"column:quantity;not null"`
	LineSubtotal  decimal.Decimal `gorm:"column:line_subtotal;type:numeric(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
