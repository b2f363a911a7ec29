package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the storefront cart operations. Every mutation recomputes
// and stores the full pricing breakdown.
type Service interface {
	Get(ctx context.Context, token string, member bool) (*models.CartRecord, error)
	AddItem(ctx context.Context, token string, productID uuid.UUID, member bool) (*models.CartRecord, error)
	UpdateQuantity(ctx context.Context, token string, productID uuid.UUID, quantity int, member bool) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, token string, productID uuid.UUID, member bool) (*models.CartRecord, error)
	Clear(ctx context.Context, token string) (*models.CartRecord, error)
	MarkConverted(ctx context.Context, cartID uuid.UUID) error
}

type service struct {
	repo              Repository
	tx                txRunner
	products          productLoader
	memberDiscountPct int
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tx txRunner, products productLoader, memberDiscountPercent int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{
		repo:              repo,
		tx:                tx,
		products:          products,
		memberDiscountPct: memberDiscountPercent,
	}, nil
}

// Get returns the cart stored under the token. An unknown or empty token
// yields an empty cart without touching storage.
func (s *service) Get(ctx context.Context, token string, member bool) (*models.CartRecord, error) {
	if token == "" {
		return s.emptyCart(token, member), nil
	}
	record, err := s.repo.FindActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.emptyCart(token, member), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

// AddItem inserts the product with quantity one, or increments the existing
// line.
func (s *service) AddItem(ctx context.Context, token string, productID uuid.UUID, member bool) (*models.CartRecord, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	var saved *models.CartRecord
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.loadOrCreate(ctx, txRepo, token, member)
		if err != nil {
			return err
		}

		if existing := findItem(record.Items, productID); existing != nil {
			existing.Quantity++
			existing.LineSubtotal = LineSubtotal(existing.DiscountPrice, existing.Quantity)
			if err := txRepo.UpdateItem(ctx, existing); err != nil {
				return err
			}
		} else {
			item := models.CartItem{
				CartID:        record.ID,
				ProductID:     product.ID,
				Name:          product.Name,
				Brand:         product.Brand,
				ImageURL:      product.ImageURL,
				SalePrice:     SanitizePrice(product.SalePrice),
				DiscountPrice: SanitizePrice(product.DiscountPrice),
				Quantity:      1,
			}
			item.LineSubtotal = LineSubtotal(item.DiscountPrice, item.Quantity)
			if err := txRepo.CreateItem(ctx, &item); err != nil {
				return err
			}
			record.Items = append(record.Items, item)
		}

		saved, err = s.storeTotals(ctx, txRepo, record, member)
		return err
	})
	if err != nil {
		return nil, s.asCoded(err, "add cart item")
	}
	return saved, nil
}

// UpdateQuantity sets the line quantity. Zero or negative removes the line,
// which makes updateQuantity(id, 0) behave exactly like RemoveItem(id).
func (s *service) UpdateQuantity(ctx context.Context, token string, productID uuid.UUID, quantity int, member bool) (*models.CartRecord, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, token, productID, member)
	}

	var saved *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.requireCart(ctx, txRepo, token)
		if err != nil {
			return err
		}

		item := findItem(record.Items, productID)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		item.Quantity = quantity
		item.LineSubtotal = LineSubtotal(item.DiscountPrice, item.Quantity)
		if err := txRepo.UpdateItem(ctx, item); err != nil {
			return err
		}

		saved, err = s.storeTotals(ctx, txRepo, record, member)
		return err
	})
	if err != nil {
		return nil, s.asCoded(err, "update cart quantity")
	}
	return saved, nil
}

// RemoveItem drops the product line from the cart.
func (s *service) RemoveItem(ctx context.Context, token string, productID uuid.UUID, member bool) (*models.CartRecord, error) {
	var saved *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.requireCart(ctx, txRepo, token)
		if err != nil {
			return err
		}

		if err := txRepo.DeleteItem(ctx, record.ID, productID); err != nil {
			return err
		}
		record.Items = withoutItem(record.Items, productID)

		saved, err = s.storeTotals(ctx, txRepo, record, member)
		return err
	})
	if err != nil {
		return nil, s.asCoded(err, "remove cart item")
	}
	return saved, nil
}

// Clear empties the cart but keeps the record alive under the same token.
func (s *service) Clear(ctx context.Context, token string) (*models.CartRecord, error) {
	var saved *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := s.requireCart(ctx, txRepo, token)
		if err != nil {
			return err
		}

		if err := txRepo.DeleteAllItems(ctx, record.ID); err != nil {
			return err
		}
		record.Items = nil

		saved, err = s.storeTotals(ctx, txRepo, record, record.MemberDiscountPercent > 0)
		return err
	})
	if err != nil {
		return nil, s.asCoded(err, "clear cart")
	}
	return saved, nil
}

// MarkConverted closes the cart after checkout submission.
func (s *service) MarkConverted(ctx context.Context, cartID uuid.UUID) error {
	if cartID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}
	if err := s.repo.MarkConverted(ctx, cartID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark cart converted")
	}
	return nil
}

func (s *service) loadOrCreate(ctx context.Context, repo Repository, token string, member bool) (*models.CartRecord, error) {
	record, err := repo.FindActiveByToken(ctx, token)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return repo.Create(ctx, &models.CartRecord{
		Token:                 token,
		Status:                enums.CartStatusActive,
		MemberDiscountPercent: s.discountFor(member),
	})
}

func (s *service) requireCart(ctx context.Context, repo Repository, token string) (*models.CartRecord, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	record, err := repo.FindActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, err
	}
	return record, nil
}

// storeTotals recomputes the breakdown from the current lines and saves it on
// the record.
func (s *service) storeTotals(ctx context.Context, repo Repository, record *models.CartRecord, member bool) (*models.CartRecord, error) {
	record.MemberDiscountPercent = s.discountFor(member)
	totals := ComputeTotals(itemsFromModels(record.Items), record.MemberDiscountPercent)

	record.TotalItems = totals.TotalItems
	record.SubtotalExVAT = totals.TotalPriceWithoutVAT
	record.MemberDiscountAmount = totals.MemberDiscountAmount
	record.VATAmount = totals.VATAmount
	record.TotalInclVAT = totals.TotalPrice
	record.FinalTotal = totals.FinalTotal

	return repo.Save(ctx, record)
}

func (s *service) discountFor(member bool) int {
	if !member {
		return 0
	}
	return s.memberDiscountPct
}

func (s *service) emptyCart(token string, member bool) *models.CartRecord {
	return &models.CartRecord{
		Token:                 token,
		Status:                enums.CartStatusActive,
		MemberDiscountPercent: s.discountFor(member),
	}
}

func (s *service) asCoded(err error, op string) error {
	if coded := pkgerrors.As(err); coded != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func itemsFromModels(items []models.CartItem) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		out = append(out, Item{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Brand:         item.Brand,
			ImageURL:      item.ImageURL,
			SalePrice:     item.SalePrice,
			DiscountPrice: item.DiscountPrice,
			Quantity:      item.Quantity,
		})
	}
	return out
}

func findItem(items []models.CartItem, productID uuid.UUID) *models.CartItem {
	for i := range items {
		if items[i].ProductID == productID {
			return &items[i]
		}
	}
	return nil
}

func withoutItem(items []models.CartItem, productID uuid.UUID) []models.CartItem {
	out := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}
