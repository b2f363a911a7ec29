package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/pagination"
)

// MovementListResult is one page of stock movements plus the follow-up cursor.
type MovementListResult struct {
	Movements  []models.StockMovement
	NextCursor string
}

// Repository spans the product stock columns and the movement ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, params pagination.Params, productID *uuid.UUID) (*MovementListResult, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// GetProductForUpdate locks the product row for the duration of the enclosing
// transaction so concurrent adjustments serialize.
func (r *repository) GetProductForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// ListMovements pages through the ledger newest-first.
func (r *repository) ListMovements(ctx context.Context, params pagination.Params, productID *uuid.UUID) (*MovementListResult, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.StockMovement{})
	if productID != nil {
		qb = qb.Where("product_id = ?", *productID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.StockMovement
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &MovementListResult{Movements: rows, NextCursor: nextCursor}, nil
}

// ListLowStock returns active products at or below their minimum level.
func (r *repository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("min_stock_level > 0").
		Where("stock_main + stock_adana <= min_stock_level").
		Order("stock_main + stock_adana ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
