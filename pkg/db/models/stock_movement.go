package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rawises/storefront-backend/pkg/enums"
)

// StockMovement is the append-only ledger of warehouse stock changes.
type StockMovement struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	Type      enums.StockMovementType `gorm:"column:type;type:stock_movement_type;not null"`
	Quantity  int                     `gorm:"column:quantity;not null"`
	Warehouse enums.Warehouse         `gorm:"column:warehouse;type:warehouse;not null"`
	Reason    string                  `gorm:"column:reason;not null;default:''"`
	Notes     *string                 `gorm:"column:notes"`
	ActorID   *uuid.UUID              `gorm:"column:actor_id;type:uuid"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
}
