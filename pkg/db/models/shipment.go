package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rawises/storefront-backend/pkg/enums"
	"github.com/rawises/storefront-backend/pkg/types"
)

// Shipment is a carrier parcel created for an order.
type Shipment struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	TrackingNumber    string               `gorm:"column:tracking_number;not null;uniqueIndex"`
	Provider          string               `gorm:"column:provider;not null"`
	ServiceName       string               `gorm:"column:service_name;not null;default:''"`
	Status            enums.ShipmentStatus `gorm:"column:status;type:shipment_status;not null;default:'created'"`
	RecipientName     string               `gorm:"column:recipient_name;not null"`
	RecipientPhone    string               `gorm:"column:recipient_phone;not null;default:''"`
	RecipientAddress  *types.Address       `gorm:"column:recipient_address;type:jsonb;serializer:json"`
	WeightKg          float64              `gorm:"column:weight_kg;type:numeric(8,3);not null;default:0"`
	ShippingCost      decimal.Decimal      `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0"`
	EstimatedDelivery *time.Time           `gorm:"column:estimated_delivery"`
	ActualDelivery    *time.Time           `gorm:"column:actual_delivery"`
	Events            []TrackingEvent      `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// TrackingEvent is an append-only carrier status entry.
type TrackingEvent struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShipmentID  uuid.UUID            `gorm:"column:shipment_id;type:uuid;not null;index"`
	Status      enums.ShipmentStatus `gorm:"column:status;type:shipment_status;not null"`
	Description string               `gorm:"column:description;not null;default:''"`
	Location    string               `gorm:"column:location;not null;default:''"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
