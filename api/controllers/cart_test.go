package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
	"github.com/rawises/storefront-backend/pkg/types"
)

type stubCartService struct {
	record *models.CartRecord
	err    error

	calls []string
	token string
	item  uuid.UUID
	qty   int
	mem   bool
}

func (s *stubCartService) Get(_ context.Context, token string, member bool) (*models.CartRecord, error) {
	s.calls = append(s.calls, "get")
	s.token, s.mem = token, member
	return s.record, s.err
}

func (s *stubCartService) AddItem(_ context.Context, token string, productID uuid.UUID, member bool) (*models.CartRecord, error) {
	s.calls = append(s.calls, "add")
	s.token, s.item, s.mem = token, productID, member
	return s.record, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, token string, productID uuid.UUID, quantity int, member bool) (*models.CartRecord, error) {
	s.calls = append(s.calls, "update")
	s.token, s.item, s.qty, s.mem = token, productID, quantity, member
	return s.record, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, token string, productID uuid.UUID, member bool) (*models.CartRecord, error) {
	s.calls = append(s.calls, "remove")
	s.token, s.item, s.mem = token, productID, member
	return s.record, s.err
}

func (s *stubCartService) Clear(_ context.Context, token string) (*models.CartRecord, error) {
	s.calls = append(s.calls, "clear")
	s.token = token
	return s.record, s.err
}

func (s *stubCartService) MarkConverted(context.Context, uuid.UUID) error {
	panic("unimplemented")
}

func memberCartFixture() *models.CartRecord {
	productID := uuid.New()
	return &models.CartRecord{
		ID:                    uuid.New(),
		Token:                 "cart-token-1",
		Status:                enums.CartStatusActive,
		MemberDiscountPercent: 15,
		TotalItems:            2,
		SubtotalExVAT:         decimal.RequireFromString("200.00"),
		MemberDiscountAmount:  decimal.RequireFromString("30.00"),
		VATAmount:             decimal.RequireFromString("34.00"),
		TotalInclVAT:          decimal.RequireFromString("240.00"),
		FinalTotal:            decimal.RequireFromString("204.00"),
		Items: []models.CartItem{{
			ProductID:     productID,
			Name:          "Nemlendirici Krem",
			Brand:         "Rawises",
			SalePrice:     decimal.RequireFromString("120.00"),
			DiscountPrice: decimal.RequireFromString("100.00"),
			Quantity:      2,
			LineSubtotal:  decimal.RequireFromString("200.00"),
		}},
	}
}

func TestCartFetchPassesTokenAndMemberFlag(t *testing.T) {
	svc := &stubCartService{record: memberCartFixture()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart?member=true", nil)
	req.Header.Set("X-Cart-Token", "cart-token-1")
	rec := httptest.NewRecorder()
	CartFetch(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.token != "cart-token-1" || !svc.mem {
		t.Fatalf("unexpected call token=%q member=%v", svc.token, svc.mem)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	data := body.Data.(map[string]any)
	if data["final_total"] != "204.00" {
		t.Fatalf("unexpected final total %v", data["final_total"])
	}
	if data["member_discount_amount"] != "30.00" {
		t.Fatalf("unexpected discount %v", data["member_discount_amount"])
	}
}

func TestCartAddItemDecodesBody(t *testing.T) {
	svc := &stubCartService{record: memberCartFixture()}
	productID := uuid.New()

	payload := `{"product_id":"` + productID.String() + `","member":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(payload))
	req.Header.Set("X-Cart-Token", "cart-token-1")
	rec := httptest.NewRecorder()
	CartAddItem(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.item != productID || !svc.mem {
		t.Fatalf("unexpected call item=%s member=%v", svc.item, svc.mem)
	}
}

func TestCartAddItemRejectsMissingProduct(t *testing.T) {
	svc := &stubCartService{record: memberCartFixture()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"member":true}`))
	rec := httptest.NewRecorder()
	CartAddItem(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service called despite invalid payload: %v", svc.calls)
	}
}

func TestCartUpdateQuantityPassesZero(t *testing.T) {
	svc := &stubCartService{record: memberCartFixture()}
	productID := uuid.New()

	payload := `{"product_id":"` + productID.String() + `","quantity":0}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	CartUpdateQuantity(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.qty != 0 || svc.item != productID {
		t.Fatalf("unexpected call qty=%d item=%s", svc.qty, svc.item)
	}
}
