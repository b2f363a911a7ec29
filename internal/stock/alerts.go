package stock

import (
	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
)

// Alert flags a product at or below its minimum stock level.
type Alert struct {
	Product  models.Product
	Current  int
	Minimum  int
	Severity enums.StockAlertSeverity
}

// ComputeSeverity grades how far below the minimum a product has fallen.
// criticalFactor scales the minimum to the critical threshold (0.5 means
// half the minimum). Returns false when stock is healthy or no minimum is set.
func ComputeSeverity(current, minimum int, criticalFactor float64) (enums.StockAlertSeverity, bool) {
	if minimum <= 0 || current > minimum {
		return "", false
	}
	if current <= 0 {
		return enums.StockAlertOut, true
	}
	if float64(current) <= float64(minimum)*criticalFactor {
		return enums.StockAlertCritical, true
	}
	return enums.StockAlertLow, true
}
