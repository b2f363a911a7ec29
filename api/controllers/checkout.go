package controllers

import (
	"net/http"

	"github.com/rawises/storefront-backend/api/responses"
	"github.com/rawises/storefront-backend/api/validators"
	checkoutsvc "github.com/rawises/storefront-backend/internal/checkout"
	"github.com/rawises/storefront-backend/pkg/logger"
	"github.com/rawises/storefront-backend/pkg/types"
)

type checkoutStartRequest struct {
	Member bool `json:"member"`
}

// CheckoutStart opens the wizard for the visitor's cart.
func CheckoutStart(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutStartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Start(r.Context(), cartToken(r), payload.Member)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutSessionResponse(session))
	}
}

// CheckoutFetch returns the current wizard state.
func CheckoutFetch(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Get(r.Context(), cartToken(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutSessionResponse(session))
	}
}

type checkoutCustomerRequest struct {
	Name    string         `json:"name" validate:"required"`
	Email   string         `json:"email" validate:"required,email"`
	Phone   string         `json:"phone" validate:"required"`
	Address *types.Address `json:"address,omitempty"`
	Notes   string         `json:"notes,omitempty"`
}

// CheckoutCustomer stores step one and advances to the payment step.
func CheckoutCustomer(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SubmitCustomer(r.Context(), cartToken(r), checkoutsvc.CustomerInfo{
			Name:    payload.Name,
			Email:   payload.Email,
			Phone:   payload.Phone,
			Address: payload.Address,
			Notes:   payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutSessionResponse(session))
	}
}

type checkoutCardRequest struct {
	HolderName  string `json:"holder_name" validate:"required"`
	Number      string `json:"number" validate:"required"`
	ExpiryMonth string `json:"expiry_month" validate:"required"`
	ExpiryYear  string `json:"expiry_year" validate:"required"`
	CVV         string `json:"cvv" validate:"required"`
}

// CheckoutCard stores step two.
func CheckoutCard(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutCardRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SubmitCard(r.Context(), cartToken(r), checkoutsvc.CardInfo{
			HolderName:  payload.HolderName,
			Number:      payload.Number,
			ExpiryMonth: payload.ExpiryMonth,
			ExpiryYear:  payload.ExpiryYear,
			CVV:         payload.CVV,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutSessionResponse(session))
	}
}

// CheckoutBack returns from payment to the customer step.
func CheckoutBack(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Back(r.Context(), cartToken(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutSessionResponse(session))
	}
}

// CheckoutSubmit finalizes the wizard and serves the auto-submitting
// hosted-payment form, which the browser renders directly.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Submit(r.Context(), cartToken(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteHTML(w, result.Form.HTML)
	}
}

// CheckoutCancel discards the wizard session.
func CheckoutCancel(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Cancel(r.Context(), cartToken(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

type checkoutSessionResponse struct {
	Step     string                    `json:"step"`
	Member   bool                      `json:"member"`
	Customer *checkoutsvc.CustomerInfo `json:"customer,omitempty"`
	HasCard  bool                      `json:"has_card"`
}

func newCheckoutSessionResponse(session *checkoutsvc.Session) checkoutSessionResponse {
	return checkoutSessionResponse{
		Step:     session.Step.String(),
		Member:   session.Member,
		Customer: session.Customer,
		HasCard:  session.Card != nil,
	}
}
