package checkout

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rawises/storefront-backend/pkg/enums"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/types"
)

// CustomerInfo is the first wizard step.
type CustomerInfo struct {
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Phone   string         `json:"phone"`
	Address *types.Address `json:"address,omitempty"`
	Notes   string         `json:"notes,omitempty"`
}

// CardInfo is the second wizard step. It only ever lives inside the Redis
// session for the duration of the checkout, never in Postgres.
type CardInfo struct {
	HolderName  string `json:"holder_name"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

// Session is the two-step checkout wizard state stored in Redis under the
// cart token.
type Session struct {
	CartToken string             `json:"cart_token"`
	Step      enums.CheckoutStep `json:"step"`
	Member    bool               `json:"member"`
	Customer  *CustomerInfo      `json:"customer,omitempty"`
	Card      *CardInfo          `json:"card,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewSession starts the wizard at the customer step.
func NewSession(cartToken string, member bool) *Session {
	return &Session{
		CartToken: cartToken,
		Step:      enums.CheckoutStepCustomer,
		Member:    member,
		UpdatedAt: time.Now().UTC(),
	}
}

// Encode serializes the session for Redis storage.
func (s *Session) Encode() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeSession parses a stored session payload.
func DecodeSession(raw string) (*Session, error) {
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SetCustomer records the first step and advances the wizard to payment.
func (s *Session) SetCustomer(info CustomerInfo) error {
	if err := ValidateCustomer(info); err != nil {
		return err
	}
	s.Customer = &info
	s.Step = enums.CheckoutStepPayment
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// SetCard records card details. Only legal on the payment step.
func (s *Session) SetCard(info CardInfo) error {
	if s.Step != enums.CheckoutStepPayment {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "customer step must be completed first")
	}
	if err := ValidateCard(info); err != nil {
		return err
	}
	s.Card = &info
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Back returns the wizard from payment to the customer step. Card details are
// discarded so they never outlive the step they belong to.
func (s *Session) Back() error {
	if s.Step != enums.CheckoutStepPayment {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "already on the first step")
	}
	s.Step = enums.CheckoutStepCustomer
	s.Card = nil
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// ReadyToSubmit reports whether both steps hold validated data.
func (s *Session) ReadyToSubmit() bool {
	return s.Step == enums.CheckoutStepPayment && s.Customer != nil && s.Card != nil
}

// ValidateCustomer checks the first wizard step. Address is optional so cargo
// pickup orders stay possible.
func ValidateCustomer(info CustomerInfo) error {
	fields := map[string]string{}
	if strings.TrimSpace(info.Name) == "" {
		fields["name"] = "name is required"
	}
	if email := strings.TrimSpace(info.Email); email == "" {
		fields["email"] = "email is required"
	} else if !strings.Contains(email, "@") {
		fields["email"] = "email is invalid"
	}
	if strings.TrimSpace(info.Phone) == "" {
		fields["phone"] = "phone is required"
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid customer info").WithDetails(fields)
	}
	return nil
}

// ValidateCard checks the second wizard step.
func ValidateCard(info CardInfo) error {
	fields := map[string]string{}
	if strings.TrimSpace(info.HolderName) == "" {
		fields["holder_name"] = "holder name is required"
	}

	number := strings.ReplaceAll(info.Number, " ", "")
	if !digitsOnly(number) || len(number) < 13 || len(number) > 16 {
		fields["number"] = "card number must be 13 to 16 digits"
	}

	if month, err := strconv.Atoi(info.ExpiryMonth); err != nil || month < 1 || month > 12 {
		fields["expiry_month"] = "expiry month must be between 1 and 12"
	}
	if len(info.ExpiryYear) != 2 || !digitsOnly(info.ExpiryYear) {
		fields["expiry_year"] = "expiry year must be two digits"
	}
	if len(info.CVV) != 3 || !digitsOnly(info.CVV) {
		fields["cvv"] = "cvv must be three digits"
	}

	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid card info").WithDetails(fields)
	}
	return nil
}

func digitsOnly(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
