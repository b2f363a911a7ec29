package controllers

import (
	"context"
	"net/http"

	"github.com/rawises/storefront-backend/api/responses"
	ordersvc "github.com/rawises/storefront-backend/internal/orders"
	stocksvc "github.com/rawises/storefront-backend/internal/stock"
	"github.com/rawises/storefront-backend/pkg/logger"
)

type dashboardOrderStats interface {
	Stats(ctx context.Context) (*ordersvc.Stats, error)
}

type dashboardStockAlerts interface {
	Alerts(ctx context.Context) ([]stocksvc.Alert, error)
}

type dashboardUnreadCounter interface {
	UnreadCount(ctx context.Context) (int64, error)
}

// AdminDashboard aggregates the landing-page counters in one call so the
// back office does not fan out three requests on load.
func AdminDashboard(orders dashboardOrderStats, stock dashboardStockAlerts, notifications dashboardUnreadCounter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := orders.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		alerts, err := stock.Alerts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unread, err := notifications.UnreadCount(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"total_orders":         stats.TotalOrders,
			"pending_orders":       stats.PendingOrders,
			"revenue":              stats.Revenue.StringFixed(2),
			"low_stock_alerts":     len(alerts),
			"unread_notifications": unread,
		})
	}
}
