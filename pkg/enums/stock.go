package enums

import "fmt"

// StockMovementType classifies warehouse stock mutations.
type StockMovementType string

const (
	StockMovementIn         StockMovementType = "in"
	StockMovementOut        StockMovementType = "out"
	StockMovementAdjustment StockMovementType = "adjustment"
	StockMovementTransfer   StockMovementType = "transfer"
)

var validStockMovementTypes = []StockMovementType{
	StockMovementIn,
	StockMovementOut,
	StockMovementAdjustment,
	StockMovementTransfer,
}

// IsValid reports whether the value is a known StockMovementType.
func (s StockMovementType) IsValid() bool {
	for _, candidate := range validStockMovementTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockMovementType converts raw input into a StockMovementType.
func ParseStockMovementType(value string) (StockMovementType, error) {
	for _, candidate := range validStockMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement type %q", value)
}

// Warehouse identifies one of the fulfillment depots.
type Warehouse string

const (
	WarehouseMain  Warehouse = "main"
	WarehouseAdana Warehouse = "adana"
)

var validWarehouses = []Warehouse{WarehouseMain, WarehouseAdana}

// IsValid reports whether the value is a known Warehouse.
func (w Warehouse) IsValid() bool {
	for _, candidate := range validWarehouses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWarehouse converts raw input into a Warehouse.
func ParseWarehouse(value string) (Warehouse, error) {
	for _, candidate := range validWarehouses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid warehouse %q", value)
}

// StockAlertSeverity grades low-stock conditions.
type StockAlertSeverity string

const (
	StockAlertLow      StockAlertSeverity = "low"
	StockAlertCritical StockAlertSeverity = "critical"
	StockAlertOut      StockAlertSeverity = "out"
)
