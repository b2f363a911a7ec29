package checkout

import (
	"testing"

	"github.com/rawises/storefront-backend/pkg/enums"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
)

func validCustomer() CustomerInfo {
	return CustomerInfo{
		Name:  "Ayşe Yılmaz",
		Email: "ayse@example.com",
		Phone: "+905551112233",
	}
}

func validCard() CardInfo {
	return CardInfo{
		HolderName:  "AYSE YILMAZ",
		Number:      "4111 1111 1111 1111",
		ExpiryMonth: "12",
		ExpiryYear:  "28",
		CVV:         "123",
	}
}

func TestSessionStepProgression(t *testing.T) {
	session := NewSession("tok", false)
	if session.Step != enums.CheckoutStepCustomer {
		t.Fatalf("new session step = %q, want customer", session.Step)
	}
	if session.ReadyToSubmit() {
		t.Fatal("fresh session must not be submittable")
	}

	if err := session.SetCustomer(validCustomer()); err != nil {
		t.Fatalf("SetCustomer returned error: %v", err)
	}
	if session.Step != enums.CheckoutStepPayment {
		t.Fatalf("step after customer = %q, want payment", session.Step)
	}

	if err := session.SetCard(validCard()); err != nil {
		t.Fatalf("SetCard returned error: %v", err)
	}
	if !session.ReadyToSubmit() {
		t.Fatal("session with both steps must be submittable")
	}
}

func TestSetCardBeforeCustomerRejected(t *testing.T) {
	session := NewSession("tok", false)
	err := session.SetCard(validCard())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestBackDiscardsCard(t *testing.T) {
	session := NewSession("tok", false)
	if err := session.SetCustomer(validCustomer()); err != nil {
		t.Fatalf("SetCustomer returned error: %v", err)
	}
	if err := session.SetCard(validCard()); err != nil {
		t.Fatalf("SetCard returned error: %v", err)
	}

	if err := session.Back(); err != nil {
		t.Fatalf("Back returned error: %v", err)
	}
	if session.Step != enums.CheckoutStepCustomer {
		t.Fatalf("step after Back = %q", session.Step)
	}
	if session.Card != nil {
		t.Fatal("card details must be dropped on Back")
	}

	err := session.Back()
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on second Back, got %v", err)
	}
}

func TestSessionEncodeRoundTrip(t *testing.T) {
	session := NewSession("tok", true)
	if err := session.SetCustomer(validCustomer()); err != nil {
		t.Fatalf("SetCustomer returned error: %v", err)
	}

	raw, err := session.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	decoded, err := DecodeSession(raw)
	if err != nil {
		t.Fatalf("DecodeSession returned error: %v", err)
	}
	if decoded.CartToken != "tok" || !decoded.Member {
		t.Fatalf("decoded session = %+v", decoded)
	}
	if decoded.Customer == nil || decoded.Customer.Email != "ayse@example.com" {
		t.Fatalf("customer lost in round trip: %+v", decoded.Customer)
	}
}

func TestValidateCustomer(t *testing.T) {
	err := ValidateCustomer(CustomerInfo{Email: "not-an-email"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := coded.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", coded.Details())
	}
	for _, field := range []string{"name", "email", "phone"} {
		if details[field] == "" {
			t.Errorf("missing detail for %q", field)
		}
	}

	if err := ValidateCustomer(validCustomer()); err != nil {
		t.Fatalf("valid customer rejected: %v", err)
	}
}

func TestValidateCard(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CardInfo)
		field  string
	}{
		{"short number", func(c *CardInfo) { c.Number = "411111" }, "number"},
		{"letters in number", func(c *CardInfo) { c.Number = "4111abcd11111111" }, "number"},
		{"month zero", func(c *CardInfo) { c.ExpiryMonth = "0" }, "expiry_month"},
		{"month thirteen", func(c *CardInfo) { c.ExpiryMonth = "13" }, "expiry_month"},
		{"four digit year", func(c *CardInfo) { c.ExpiryYear = "2028" }, "expiry_year"},
		{"short cvv", func(c *CardInfo) { c.CVV = "12" }, "cvv"},
		{"empty holder", func(c *CardInfo) { c.HolderName = " " }, "holder_name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card := validCard()
			tc.mutate(&card)
			err := ValidateCard(card)
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			details := coded.Details().(map[string]string)
			if details[tc.field] == "" {
				t.Fatalf("missing detail for %q in %v", tc.field, details)
			}
		})
	}

	if err := ValidateCard(validCard()); err != nil {
		t.Fatalf("valid card rejected: %v", err)
	}
}
