package checkout

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rawises/storefront-backend/internal/orders"
	"github.com/rawises/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/logger"
	"github.com/rawises/storefront-backend/pkg/redis"
	"github.com/rawises/storefront-backend/pkg/sipay"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubStore struct {
	values map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}}
}

func (s *stubStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *stubStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = "1"
	return true, nil
}

func (s *stubStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubStore) CheckoutSessionKey(token string) string { return "rw:checkout_session:" + token }
func (s *stubStore) SubmitLockKey(token string) string      { return "rw:submit_lock:" + token }

type stubCart struct {
	record    *models.CartRecord
	converted []uuid.UUID
}

// Get behaves like the real repository: once the cart is converted it no
// longer comes back as an active cart with items.
func (s *stubCart) Get(ctx context.Context, token string, member bool) (*models.CartRecord, error) {
	if s.record == nil {
		return &models.CartRecord{Token: token}, nil
	}
	for _, id := range s.converted {
		if id == s.record.ID {
			return &models.CartRecord{Token: token}, nil
		}
	}
	return s.record, nil
}

func (s *stubCart) MarkConverted(ctx context.Context, cartID uuid.UUID) error {
	s.converted = append(s.converted, cartID)
	return nil
}

type stubOrders struct {
	created []orders.CreateOrderInput
	fail    error
}

func (s *stubOrders) Create(ctx context.Context, tx *gorm.DB, input orders.CreateOrderInput) (*models.Order, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	s.created = append(s.created, input)
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: input.OrderNumber,
		InvoiceID:   input.InvoiceID,
		TotalAmount: input.TotalAmount,
	}, nil
}

type stubGateway struct {
	requests []sipay.PaymentRequest
	fail     error
}

func (s *stubGateway) CreatePaymentForm(req sipay.PaymentRequest) (sipay.PaymentForm, error) {
	if s.fail != nil {
		return sipay.PaymentForm{}, s.fail
	}
	s.requests = append(s.requests, req)
	return sipay.PaymentForm{InvoiceID: req.InvoiceID, HTML: "<form></form>"}, nil
}

type stubNotifier struct {
	orders []*models.Order
}

func (s *stubNotifier) NotifyNewOrder(ctx context.Context, order *models.Order) error {
	s.orders = append(s.orders, order)
	return nil
}

type fixture struct {
	svc      Service
	store    *stubStore
	cart     *stubCart
	orders   *stubOrders
	gateway  *stubGateway
	notifier *stubNotifier
}

func filledCart() *models.CartRecord {
	return &models.CartRecord{
		ID:                    uuid.New(),
		Token:                 "tok",
		MemberDiscountPercent: 15,
		TotalItems:            2,
		SubtotalExVAT:         decimal.RequireFromString("200"),
		MemberDiscountAmount:  decimal.RequireFromString("30"),
		VATAmount:             decimal.RequireFromString("34"),
		TotalInclVAT:          decimal.RequireFromString("240"),
		FinalTotal:            decimal.RequireFromString("204"),
		Items: []models.CartItem{
			{
				ProductID:     uuid.New(),
				Name:          "Micellar Su",
				DiscountPrice: decimal.RequireFromString("100"),
				Quantity:      2,
			},
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    newStubStore(),
		cart:     &stubCart{record: filledCart()},
		orders:   &stubOrders{},
		gateway:  &stubGateway{},
		notifier: &stubNotifier{},
	}
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Store:    f.store,
		Cart:     f.cart,
		Orders:   f.orders,
		Gateway:  f.gateway,
		Notifier: f.notifier,
		Tx:       stubTx{},
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	f.svc = svc
	return f
}

func completeWizard(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.Start(ctx, "tok", true); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := f.svc.SubmitCustomer(ctx, "tok", validCustomer()); err != nil {
		t.Fatalf("SubmitCustomer returned error: %v", err)
	}
	if _, err := f.svc.SubmitCard(ctx, "tok", validCard()); err != nil {
		t.Fatalf("SubmitCard returned error: %v", err)
	}
}

func TestStartRequiresNonEmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.cart.record = nil

	_, err := f.svc.Start(ctx, "tok", false)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestSubmitBeforePaymentStepRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.Start(ctx, "tok", false); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	_, err := f.svc.Submit(ctx, "tok")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	// Customer step alone is still not enough.
	if _, err := f.svc.SubmitCustomer(ctx, "tok", validCustomer()); err != nil {
		t.Fatalf("SubmitCustomer returned error: %v", err)
	}
	_, err = f.svc.Submit(ctx, "tok")
	coded = pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict without card, got %v", err)
	}
}

func TestSubmitHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	completeWizard(t, f)

	result, err := f.svc.Submit(ctx, "tok")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if result.Order == nil || !strings.HasPrefix(result.Order.OrderNumber, "RW") {
		t.Fatalf("unexpected order %+v", result.Order)
	}
	if result.Form.InvoiceID != result.Order.InvoiceID {
		t.Fatalf("form invoice %q != order invoice %q", result.Form.InvoiceID, result.Order.InvoiceID)
	}

	if len(f.orders.created) != 1 {
		t.Fatalf("orders created = %d, want 1", len(f.orders.created))
	}
	created := f.orders.created[0]
	if !created.TotalAmount.Equal(decimal.RequireFromString("204")) {
		t.Fatalf("order total = %s, want 204", created.TotalAmount)
	}
	if len(created.Items) != 1 || created.Items[0].Quantity != 2 {
		t.Fatalf("order items = %+v", created.Items)
	}

	if len(f.cart.converted) != 1 {
		t.Fatal("cart was not marked converted")
	}
	if len(f.notifier.orders) != 1 {
		t.Fatal("new-order notification missing")
	}

	// Session is discarded after a successful handoff.
	if _, err := f.svc.Get(ctx, "tok"); pkgerrors.As(err) == nil {
		t.Fatal("expected session to be gone after submit")
	}

	// The gateway got the sanitized card and the member-discounted total.
	req := f.gateway.requests[0]
	if req.CardNumber != "4111111111111111" {
		t.Fatalf("card number = %q", req.CardNumber)
	}
	if !req.Total.Equal(decimal.RequireFromString("204")) {
		t.Fatalf("gateway total = %s", req.Total)
	}
}

func TestSubmitDuplicateBlockedByLock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	completeWizard(t, f)

	// Simulate an in-flight submission holding the lock.
	if _, err := f.store.SetNX(ctx, f.store.SubmitLockKey("tok"), "1", time.Second); err != nil {
		t.Fatalf("SetNX returned error: %v", err)
	}

	_, err := f.svc.Submit(ctx, "tok")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeDuplicate {
		t.Fatalf("expected duplicate-submission error, got %v", err)
	}
	if len(f.orders.created) != 0 {
		t.Fatal("duplicate submission must not create an order")
	}
}

func TestSubmitGatewayFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	completeWizard(t, f)
	f.gateway.fail = errors.New("gateway down")

	_, err := f.svc.Submit(ctx, "tok")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeGateway {
		t.Fatalf("expected gateway error, got %v", err)
	}

	// Session survives, the cart stays active and the lock is released, so a
	// retry is possible.
	if _, err := f.svc.Get(ctx, "tok"); err != nil {
		t.Fatalf("session should survive gateway failure: %v", err)
	}
	if len(f.cart.converted) != 0 {
		t.Fatal("cart must not be converted on gateway failure")
	}

	f.gateway.fail = nil
	if _, err := f.svc.Submit(ctx, "tok"); err != nil {
		t.Fatalf("retry after gateway failure failed: %v", err)
	}
	if len(f.cart.converted) != 1 {
		t.Fatal("successful retry should convert the cart")
	}
}

func TestSubmitOrderFailureReleasesLock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	completeWizard(t, f)
	f.orders.fail = errors.New("db down")

	if _, err := f.svc.Submit(ctx, "tok"); err == nil {
		t.Fatal("expected error from order creation")
	}

	f.orders.fail = nil
	if _, err := f.svc.Submit(ctx, "tok"); err != nil {
		t.Fatalf("retry after order failure failed: %v", err)
	}
}

func TestCancelDropsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.Start(ctx, "tok", false); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := f.svc.Cancel(ctx, "tok"); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	_, err := f.svc.Get(ctx, "tok")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after cancel, got %v", err)
	}
}
