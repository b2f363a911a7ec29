package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MovementInput describes one warehouse stock mutation.
type MovementInput struct {
	ProductID uuid.UUID
	Type      enums.StockMovementType
	Warehouse enums.Warehouse
	Quantity  int
	Reason    string
	Notes     *string
	ActorID   *uuid.UUID
}

// Service applies warehouse movements and surfaces low-stock alerts. Every
// mutation lands in the movement ledger alongside the product counters.
type Service interface {
	RecordMovement(ctx context.Context, input MovementInput) (*models.Product, error)
	Adjust(ctx context.Context, productID uuid.UUID, warehouse enums.Warehouse, delta int, actorID *uuid.UUID) (*models.Product, error)
	ListMovements(ctx context.Context, params pagination.Params, productID *uuid.UUID) (*MovementListResult, error)
	Alerts(ctx context.Context) ([]Alert, error)
}

type service struct {
	repo           Repository
	tx             txRunner
	criticalFactor float64
}

// NewService builds the stock service.
func NewService(repo Repository, tx txRunner, criticalFactor float64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if criticalFactor <= 0 || criticalFactor >= 1 {
		criticalFactor = 0.5
	}
	return &service{repo: repo, tx: tx, criticalFactor: criticalFactor}, nil
}

// RecordMovement applies the mutation and appends a ledger row atomically.
func (s *service) RecordMovement(ctx context.Context, input MovementInput) (*models.Product, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.GetProductForUpdate(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return err
		}

		if err := applyMovement(product, input); err != nil {
			return err
		}
		if err := txRepo.SaveProduct(ctx, product); err != nil {
			return err
		}

		movement := &models.StockMovement{
			ProductID: input.ProductID,
			Type:      input.Type,
			Quantity:  input.Quantity,
			Warehouse: input.Warehouse,
			Reason:    strings.TrimSpace(input.Reason),
			Notes:     input.Notes,
			ActorID:   input.ActorID,
		}
		if err := txRepo.CreateMovement(ctx, movement); err != nil {
			return err
		}

		updated = product
		return nil
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return updated, nil
}

// Adjust is the single-step correction used by the admin stock screen.
func (s *service) Adjust(ctx context.Context, productID uuid.UUID, warehouse enums.Warehouse, delta int, actorID *uuid.UUID) (*models.Product, error) {
	return s.RecordMovement(ctx, MovementInput{
		ProductID: productID,
		Type:      enums.StockMovementAdjustment,
		Warehouse: warehouse,
		Quantity:  delta,
		Reason:    "manual adjustment",
		ActorID:   actorID,
	})
}

func (s *service) ListMovements(ctx context.Context, params pagination.Params, productID *uuid.UUID) (*MovementListResult, error) {
	result, err := s.repo.ListMovements(ctx, params, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	return result, nil
}

// Alerts grades every product sitting at or below its minimum level.
func (s *service) Alerts(ctx context.Context) ([]Alert, error) {
	rows, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}

	alerts := make([]Alert, 0, len(rows))
	for _, product := range rows {
		current := product.TotalStock()
		severity, flagged := ComputeSeverity(current, product.MinStockLevel, s.criticalFactor)
		if !flagged {
			continue
		}
		alerts = append(alerts, Alert{
			Product:  product,
			Current:  current,
			Minimum:  product.MinStockLevel,
			Severity: severity,
		})
	}
	return alerts, nil
}

func validateMovement(input MovementInput) error {
	fields := map[string]string{}
	if input.ProductID == uuid.Nil {
		fields["product_id"] = "product id is required"
	}
	if !input.Type.IsValid() {
		fields["type"] = "invalid movement type"
	}
	if !input.Warehouse.IsValid() {
		fields["warehouse"] = "invalid warehouse"
	}
	switch input.Type {
	case enums.StockMovementAdjustment:
		if input.Quantity == 0 {
			fields["quantity"] = "adjustment delta cannot be zero"
		}
	default:
		if input.Quantity <= 0 {
			fields["quantity"] = "quantity must be positive"
		}
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid stock movement").WithDetails(fields)
	}
	return nil
}

// applyMovement mutates the product counters. "in" receives into the
// warehouse, "out" ships from it, "adjustment" applies a signed delta and
// "transfer" moves stock from the named warehouse to the other one.
func applyMovement(product *models.Product, input MovementInput) error {
	level := warehouseLevel(product, input.Warehouse)

	switch input.Type {
	case enums.StockMovementIn:
		*level += input.Quantity

	case enums.StockMovementOut:
		if *level < input.Quantity {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock in warehouse")
		}
		*level -= input.Quantity

	case enums.StockMovementAdjustment:
		if *level+input.Quantity < 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "adjustment would drive stock negative")
		}
		*level += input.Quantity

	case enums.StockMovementTransfer:
		if *level < input.Quantity {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock in warehouse")
		}
		*level -= input.Quantity
		*warehouseLevel(product, otherWarehouse(input.Warehouse)) += input.Quantity
	}

	return nil
}

func warehouseLevel(product *models.Product, warehouse enums.Warehouse) *int {
	if warehouse == enums.WarehouseAdana {
		return &product.StockAdana
	}
	return &product.StockMain
}

func otherWarehouse(warehouse enums.Warehouse) enums.Warehouse {
	if warehouse == enums.WarehouseAdana {
		return enums.WarehouseMain
	}
	return enums.WarehouseAdana
}
