package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rawises/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProducts struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProducts) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type stubRepo struct {
	record    *models.CartRecord
	items     map[uuid.UUID]models.CartItem
	converted []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: map[uuid.UUID]models.CartItem{}}
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) FindActiveByToken(ctx context.Context, token string) (*models.CartRecord, error) {
	if r.record == nil || r.record.Token != token {
		return nil, gorm.ErrRecordNotFound
	}
	record := *r.record
	record.Items = nil
	for _, item := range r.items {
		record.Items = append(record.Items, item)
	}
	return &record, nil
}

func (r *stubRepo) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	record.ID = uuid.New()
	stored := *record
	r.record = &stored
	return record, nil
}

func (r *stubRepo) Save(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	stored := *record
	stored.Items = nil
	r.record = &stored
	return record, nil
}

func (r *stubRepo) CreateItem(ctx context.Context, item *models.CartItem) error {
	item.ID = uuid.New()
	r.items[item.ProductID] = *item
	return nil
}

func (r *stubRepo) UpdateItem(ctx context.Context, item *models.CartItem) error {
	r.items[item.ProductID] = *item
	return nil
}

func (r *stubRepo) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	delete(r.items, productID)
	return nil
}

func (r *stubRepo) DeleteAllItems(ctx context.Context, cartID uuid.UUID) error {
	r.items = map[uuid.UUID]models.CartItem{}
	return nil
}

func (r *stubRepo) MarkConverted(ctx context.Context, cartID uuid.UUID) error {
	r.converted = append(r.converted, cartID)
	return nil
}

func activeProduct(price string) *models.Product {
	return &models.Product{
		ID:            uuid.New(),
		SKU:           "SKU-1",
		Name:          "Nemlendirici Krem",
		Brand:         "Rawises",
		SalePrice:     decimal.RequireFromString(price).Mul(decimal.NewFromFloat(1.2)),
		DiscountPrice: decimal.RequireFromString(price),
		IsActive:      true,
	}
}

func newTestService(t *testing.T, repo Repository, products *stubProducts) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, products, 15)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestAddItemCreatesCartAndComputesTotals(t *testing.T) {
	ctx := context.Background()
	product := activeProduct("100")
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubProducts{products: map[uuid.UUID]*models.Product{product.ID: product}})

	record, err := svc.AddItem(ctx, "tok-1", product.ID, true)
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	if record.TotalItems != 1 {
		t.Fatalf("total items = %d, want 1", record.TotalItems)
	}
	if !record.SubtotalExVAT.Equal(dec("100")) {
		t.Fatalf("subtotal = %s, want 100", record.SubtotalExVAT)
	}
	if !record.MemberDiscountAmount.Equal(dec("15")) {
		t.Fatalf("discount = %s, want 15", record.MemberDiscountAmount)
	}
	if !record.FinalTotal.Equal(dec("102")) {
		t.Fatalf("final = %s, want 102", record.FinalTotal)
	}
	if record.MemberDiscountPercent != 15 {
		t.Fatalf("member pct = %d, want 15", record.MemberDiscountPercent)
	}
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	product := activeProduct("100")
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubProducts{products: map[uuid.UUID]*models.Product{product.ID: product}})

	if _, err := svc.AddItem(ctx, "tok-1", product.ID, true); err != nil {
		t.Fatalf("first AddItem returned error: %v", err)
	}
	record, err := svc.AddItem(ctx, "tok-1", product.ID, true)
	if err != nil {
		t.Fatalf("second AddItem returned error: %v", err)
	}

	if record.TotalItems != 2 {
		t.Fatalf("total items = %d, want 2", record.TotalItems)
	}
	if !record.SubtotalExVAT.Equal(dec("200")) {
		t.Fatalf("subtotal = %s, want 200", record.SubtotalExVAT)
	}
	if !record.FinalTotal.Equal(dec("204")) {
		t.Fatalf("final = %s, want 204", record.FinalTotal)
	}
	if got := repo.items[product.ID].Quantity; got != 2 {
		t.Fatalf("persisted quantity = %d, want 2", got)
	}
}

func TestUpdateQuantityZeroBehavesLikeRemove(t *testing.T) {
	ctx := context.Background()
	productA := activeProduct("40")
	productB := activeProduct("60")
	catalog := map[uuid.UUID]*models.Product{productA.ID: productA, productB.ID: productB}

	run := func(t *testing.T, mutate func(Service) (*models.CartRecord, error)) *models.CartRecord {
		repo := newStubRepo()
		svc := newTestService(t, repo, &stubProducts{products: catalog})
		if _, err := svc.AddItem(ctx, "tok-1", productA.ID, false); err != nil {
			t.Fatalf("AddItem A returned error: %v", err)
		}
		if _, err := svc.AddItem(ctx, "tok-1", productB.ID, false); err != nil {
			t.Fatalf("AddItem B returned error: %v", err)
		}
		record, err := mutate(svc)
		if err != nil {
			t.Fatalf("mutation returned error: %v", err)
		}
		return record
	}

	viaUpdate := run(t, func(svc Service) (*models.CartRecord, error) {
		return svc.UpdateQuantity(ctx, "tok-1", productA.ID, 0, false)
	})
	viaRemove := run(t, func(svc Service) (*models.CartRecord, error) {
		return svc.RemoveItem(ctx, "tok-1", productA.ID, false)
	})

	if viaUpdate.TotalItems != viaRemove.TotalItems {
		t.Fatalf("total items diverged: %d vs %d", viaUpdate.TotalItems, viaRemove.TotalItems)
	}
	if !viaUpdate.FinalTotal.Equal(viaRemove.FinalTotal) {
		t.Fatalf("final totals diverged: %s vs %s", viaUpdate.FinalTotal, viaRemove.FinalTotal)
	}
	if !viaUpdate.SubtotalExVAT.Equal(dec("60")) {
		t.Fatalf("subtotal = %s, want 60", viaUpdate.SubtotalExVAT)
	}
}

func TestUpdateQuantitySetsNewValue(t *testing.T) {
	ctx := context.Background()
	product := activeProduct("25")
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubProducts{products: map[uuid.UUID]*models.Product{product.ID: product}})

	if _, err := svc.AddItem(ctx, "tok-1", product.ID, false); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	record, err := svc.UpdateQuantity(ctx, "tok-1", product.ID, 4, false)
	if err != nil {
		t.Fatalf("UpdateQuantity returned error: %v", err)
	}

	if record.TotalItems != 4 {
		t.Fatalf("total items = %d, want 4", record.TotalItems)
	}
	if !record.SubtotalExVAT.Equal(dec("100")) {
		t.Fatalf("subtotal = %s, want 100", record.SubtotalExVAT)
	}
}

func TestGetUnknownTokenReturnsEmptyCart(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubProducts{products: map[uuid.UUID]*models.Product{}})

	record, err := svc.Get(ctx, "missing", false)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record.TotalItems != 0 || len(record.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", record)
	}

	record, err = svc.Get(ctx, "", false)
	if err != nil {
		t.Fatalf("Get with empty token returned error: %v", err)
	}
	if record.TotalItems != 0 {
		t.Fatalf("expected empty cart for empty token")
	}
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	ctx := context.Background()
	product := activeProduct("10")
	product.IsActive = false
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubProducts{products: map[uuid.UUID]*models.Product{product.ID: product}})

	_, err := svc.AddItem(ctx, "tok-1", product.ID, false)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubProducts{products: map[uuid.UUID]*models.Product{}})

	_, err := svc.AddItem(ctx, "tok-1", uuid.New(), false)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	ctx := context.Background()
	product := activeProduct("30")
	repo := newStubRepo()
	svc := newTestService(t, repo, &stubProducts{products: map[uuid.UUID]*models.Product{product.ID: product}})

	if _, err := svc.AddItem(ctx, "tok-1", product.ID, true); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	record, err := svc.Clear(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}

	if record.TotalItems != 0 {
		t.Fatalf("total items = %d, want 0", record.TotalItems)
	}
	if !record.FinalTotal.IsZero() {
		t.Fatalf("final = %s, want 0", record.FinalTotal)
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected persisted items to be removed")
	}
}
