package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
)

type samplePayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"ops@rawises.com","name":"Ops"}`))

	var payload samplePayload
	if err := DecodeJSONBody(req, &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Email != "ops@rawises.com" {
		t.Fatalf("unexpected email %q", payload.Email)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"ops@rawises.com","name":"Ops","extra":true}`))

	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	if err == nil {
		t.Fatalf("expected error for unknown field")
	}
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldDetails(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"not-an-email"}`))

	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := coded.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field detail map, got %T", coded.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email detail %q", details["email"])
	}
	if details["name"] != "is required" {
		t.Fatalf("unexpected name detail %q", details["name"])
	}
}

func TestParseQueryIntBounds(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=500", nil)
	if _, err := ParseQueryInt(req, "limit", 20, 1, 100); err == nil {
		t.Fatalf("expected out-of-range error")
	}

	req = httptest.NewRequest("GET", "/", nil)
	got, err := ParseQueryInt(req, "limit", 20, 1, 100)
	if err != nil || got != 20 {
		t.Fatalf("expected default 20, got %d err %v", got, err)
	}
}

func TestParseQueryUUIDOptional(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	id, err := ParseQueryUUID(req, "product_id")
	if err != nil || id != nil {
		t.Fatalf("expected nil for absent parameter, got %v err %v", id, err)
	}

	req = httptest.NewRequest("GET", "/?product_id=not-a-uuid", nil)
	if _, err := ParseQueryUUID(req, "product_id"); err == nil {
		t.Fatalf("expected error for malformed uuid")
	}
}
