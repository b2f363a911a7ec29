package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Prices are VAT-exclusive; DiscountPrice is the
// selling price and SalePrice the struck-through list price.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU           string          `gorm:"column:sku;not null"`
	Barcode       *string         `gorm:"column:barcode"`
	Name          string          `gorm:"column:name;not null"`
	Brand         string          `gorm:"column:brand;not null;default:''"`
	Description   *string         `gorm:"column:description"`
	Categories    pq.StringArray  `gorm:"column:categories;type:text[];not null;default:ARRAY[]::text[]"`
	ImageURL      *string         `gorm:"column:image_url"`
	SalePrice     decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2);not null;default:0"`
	DiscountPrice decimal.Decimal `gorm:"column:discount_price;type:numeric(12,2);not null;default:0"`
	StockMain     int             `gorm:"column:stock_main;not null;default:0"`
	StockAdana    int             `gorm:"column:stock_adana;not null;default:0"`
	MinStockLevel int             `gorm:"column:min_stock_level;not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalStock sums both warehouses.
func (p Product) TotalStock() int {
	return p.StockMain + p.StockAdana
}
