package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rawises/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/pagination"
)

// Service exposes catalog reads for the storefront and writes for the admin.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, input UpsertInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpsertInput carries admin-entered catalog fields. Prices arrive as raw
// strings because upstream exports contain unparseable values.
type UpsertInput struct {
	SKU           string
	Barcode       *string
	Name          string
	Brand         string
	Description   *string
	Categories    []string
	ImageURL      *string
	SalePrice     string
	DiscountPrice string
	StockMain     int
	StockAdana    int
	MinStockLevel int
	IsActive      bool
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error) {
	result, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return result, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, input UpsertInput) (*models.Product, error) {
	if err := validateUpsert(input); err != nil {
		return nil, err
	}

	product := &models.Product{}
	applyUpsert(product, input)

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Product, error) {
	if err := validateUpsert(input); err != nil {
		return nil, err
	}

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpsert(product, input)

	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return saved, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func validateUpsert(input UpsertInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(input.SKU) == "" {
		fields["sku"] = "sku is required"
	}
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "name is required"
	}
	if input.StockMain < 0 || input.StockAdana < 0 {
		fields["stock"] = "stock cannot be negative"
	}
	if input.MinStockLevel < 0 {
		fields["min_stock_level"] = "minimum stock level cannot be negative"
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product payload").WithDetails(fields)
	}
	return nil
}

func applyUpsert(product *models.Product, input UpsertInput) {
	product.SKU = strings.TrimSpace(input.SKU)
	product.Barcode = input.Barcode
	product.Name = strings.TrimSpace(input.Name)
	product.Brand = strings.TrimSpace(input.Brand)
	product.Description = input.Description
	product.Categories = pq.StringArray(input.Categories)
	product.ImageURL = input.ImageURL
	product.SalePrice = ParsePrice(input.SalePrice)
	product.DiscountPrice = ParsePrice(input.DiscountPrice)
	product.StockMain = input.StockMain
	product.StockAdana = input.StockAdana
	product.MinStockLevel = input.MinStockLevel
	product.IsActive = input.IsActive
}

// ParsePrice coerces dirty upstream price strings. Unparseable or negative
// values become zero, matching how broken export rows are handled everywhere
// else in the pipeline.
func ParsePrice(raw string) decimal.Decimal {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if cleaned == "" {
		return decimal.Zero
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil || price.IsNegative() {
		return decimal.Zero
	}
	return price
}
