package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rawises/storefront-backend/api/controllers"
	"github.com/rawises/storefront-backend/api/middleware"
	authsvc "github.com/rawises/storefront-backend/internal/auth"
	cartsvc "github.com/rawises/storefront-backend/internal/cart"
	checkoutsvc "github.com/rawises/storefront-backend/internal/checkout"
	notificationsvc "github.com/rawises/storefront-backend/internal/notifications"
	ordersvc "github.com/rawises/storefront-backend/internal/orders"
	productsvc "github.com/rawises/storefront-backend/internal/products"
	shipmentsvc "github.com/rawises/storefront-backend/internal/shipments"
	stocksvc "github.com/rawises/storefront-backend/internal/stock"
	"github.com/rawises/storefront-backend/pkg/config"
	"github.com/rawises/storefront-backend/pkg/db"
	"github.com/rawises/storefront-backend/pkg/logger"
	"github.com/rawises/storefront-backend/pkg/redis"
)

// NewRouter wires every HTTP surface: the public storefront under /api/v1,
// the payment gateway callback, and the token-guarded back office under
// /api/admin.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	authService authsvc.Service,
	productService productsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	orderService ordersvc.Service,
	stockService stocksvc.Service,
	shipmentService shipmentsvc.Service,
	notificationService notificationsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(productService, logg))
			r.Get("/{productId}", controllers.ProductDetail(productService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items", controllers.CartUpdateQuantity(cartService, logg))
			r.Delete("/items", controllers.CartRemoveItem(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutStart(checkoutService, logg))
			r.Get("/", controllers.CheckoutFetch(checkoutService, logg))
			r.Post("/customer", controllers.CheckoutCustomer(checkoutService, logg))
			r.Post("/card", controllers.CheckoutCard(checkoutService, logg))
			r.Post("/back", controllers.CheckoutBack(checkoutService, logg))
			r.Post("/submit", controllers.CheckoutSubmit(checkoutService, logg))
			r.Delete("/", controllers.CheckoutCancel(checkoutService, logg))
		})

		r.Post("/payment/webhook", controllers.PaymentWebhook(orderService, notificationService, cfg.Sipay, logg))
		r.Get("/shipments/track/{trackingNumber}", controllers.ShipmentTrack(shipmentService, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(redisClient, 0, 0, logg)).Post("/login", controllers.AdminLogin(authService, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(authService, logg))

		r.Get("/v1/dashboard", controllers.AdminDashboard(orderService, stockService, notificationService, logg))

		r.Route("/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(orderService, logg))
			r.Get("/stats", controllers.AdminOrderStats(orderService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(orderService, logg))
			r.Put("/{orderId}/status", controllers.AdminOrderUpdateStatus(orderService, logg))
		})

		r.Route("/v1/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(productService, logg))
			r.Post("/", controllers.AdminProductCreate(productService, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(productService, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(productService, logg))
			r.Post("/{productId}/stock/adjust", controllers.AdminStockAdjust(stockService, logg))
		})

		r.Route("/v1/stock", func(r chi.Router) {
			r.Post("/movements", controllers.AdminStockMovement(stockService, logg))
			r.Get("/movements", controllers.AdminStockMovements(stockService, logg))
			r.Get("/alerts", controllers.AdminStockAlerts(stockService, logg))
		})

		r.Route("/v1/shipments", func(r chi.Router) {
			r.Post("/", controllers.AdminShipmentCreate(shipmentService, logg))
			r.Get("/", controllers.AdminShipmentList(shipmentService, logg))
			r.Get("/{shipmentId}", controllers.AdminShipmentDetail(shipmentService, logg))
			r.Put("/{shipmentId}/status", controllers.AdminShipmentUpdateStatus(shipmentService, notificationService, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.AdminNotificationList(notificationService, logg))
			r.Get("/unread-count", controllers.AdminNotificationUnreadCount(notificationService, logg))
			r.Post("/{notificationId}/read", controllers.AdminNotificationMarkRead(notificationService, logg))
			r.Post("/read-all", controllers.AdminNotificationMarkAllRead(notificationService, logg))
		})
	})

	return r
}
