package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/rawises/storefront-backend/api/responses"
	ordersvc "github.com/rawises/storefront-backend/internal/orders"
	"github.com/rawises/storefront-backend/pkg/config"
	"github.com/rawises/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/logger"
	"github.com/rawises/storefront-backend/pkg/sipay"
)

type paymentFailureNotifier interface {
	NotifyPaymentFailed(ctx context.Context, order *models.Order, reason string) error
}

// PaymentWebhook receives the gateway's server-to-server payment result. The
// callback is form-encoded and carries an HMAC that must match before any
// order state changes.
func PaymentWebhook(svc ordersvc.Service, notifier paymentFailureNotifier, cfg config.SipayConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook payload"))
			return
		}

		invoiceID := strings.TrimSpace(r.PostFormValue("invoice_id"))
		status := strings.TrimSpace(r.PostFormValue("status"))
		total := strings.TrimSpace(r.PostFormValue("total"))
		receivedHash := strings.TrimSpace(r.PostFormValue("hash_key"))

		if invoiceID == "" || status == "" || receivedHash == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing webhook fields"))
			return
		}

		if !sipay.VerifyNotificationHash(invoiceID, status, total, receivedHash, cfg.MerchantKey) {
			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithField(ctx, "invoice_id", invoiceID)
				logg.Warn(ctx, "webhook hash mismatch")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
			return
		}

		succeeded := isSuccessStatus(status)
		reason := ""
		if !succeeded {
			reason = strings.TrimSpace(r.PostFormValue("error_message"))
			if reason == "" {
				reason = "payment failed"
			}
		}

		order, err := svc.ApplyPaymentResult(r.Context(), invoiceID, succeeded, reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !succeeded && notifier != nil {
			if err := notifier.NotifyPaymentFailed(r.Context(), order, reason); err != nil && logg != nil {
				logg.Error(logg.WithOrderNumber(r.Context(), order.OrderNumber), "payment-failed notification failed", err)
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// isSuccessStatus folds the gateway's status spellings into one bool.
func isSuccessStatus(status string) bool {
	switch strings.ToLower(status) {
	case "1", "success", "completed":
		return true
	}
	return false
}
