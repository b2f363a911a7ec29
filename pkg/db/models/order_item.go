package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem snapshots a purchased line at submission time. ProductID is kept
// nullable so catalog deletions do not orphan historical orders.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID  *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	Name       string          `gorm:"column:name;not null"`
	Brand      string          `gorm:"column:brand;not null;default:''"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null;default:0"`
	Quantity   int             `gorm:"column:quantity;not null"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null;default:0"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
