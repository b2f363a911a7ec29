package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	authsvc "github.com/rawises/storefront-backend/internal/auth"
	checkoutsvc "github.com/rawises/storefront-backend/internal/checkout"
	notificationsvc "github.com/rawises/storefront-backend/internal/notifications"
	ordersvc "github.com/rawises/storefront-backend/internal/orders"
	productsvc "github.com/rawises/storefront-backend/internal/products"
	shipmentsvc "github.com/rawises/storefront-backend/internal/shipments"
	stocksvc "github.com/rawises/storefront-backend/internal/stock"
	"github.com/rawises/storefront-backend/pkg/config"
	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/logger"
	"github.com/rawises/storefront-backend/pkg/pagination"
	"github.com/rawises/storefront-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, string, string) (*authsvc.LoginResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}

func (stubAuthService) VerifyToken(string) (*authsvc.Claims, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
}

func (stubAuthService) GetAdmin(context.Context, uuid.UUID) (*models.AdminUser, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "admin not found")
}

type stubProductService struct{}

func (stubProductService) List(context.Context, pagination.Params, productsvc.ListFilters) (*productsvc.ListResult, error) {
	return &productsvc.ListResult{}, nil
}

func (stubProductService) GetByID(context.Context, uuid.UUID) (*models.Product, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (stubProductService) Create(context.Context, productsvc.UpsertInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) Update(context.Context, uuid.UUID, productsvc.UpsertInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) Delete(context.Context, uuid.UUID) error {
	panic("unimplemented")
}

type stubCartRouterService struct{}

func (stubCartRouterService) Get(context.Context, string, bool) (*models.CartRecord, error) {
	return &models.CartRecord{Token: "t", Status: enums.CartStatusActive}, nil
}

func (stubCartRouterService) AddItem(context.Context, string, uuid.UUID, bool) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (stubCartRouterService) UpdateQuantity(context.Context, string, uuid.UUID, int, bool) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (stubCartRouterService) RemoveItem(context.Context, string, uuid.UUID, bool) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (stubCartRouterService) Clear(context.Context, string) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (stubCartRouterService) MarkConverted(context.Context, uuid.UUID) error {
	panic("unimplemented")
}

type stubCheckoutService struct{}

func (stubCheckoutService) Start(context.Context, string, bool) (*checkoutsvc.Session, error) {
	panic("unimplemented")
}

func (stubCheckoutService) Get(context.Context, string) (*checkoutsvc.Session, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
}

func (stubCheckoutService) SubmitCustomer(context.Context, string, checkoutsvc.CustomerInfo) (*checkoutsvc.Session, error) {
	panic("unimplemented")
}

func (stubCheckoutService) SubmitCard(context.Context, string, checkoutsvc.CardInfo) (*checkoutsvc.Session, error) {
	panic("unimplemented")
}

func (stubCheckoutService) Back(context.Context, string) (*checkoutsvc.Session, error) {
	panic("unimplemented")
}

func (stubCheckoutService) Submit(context.Context, string) (*checkoutsvc.SubmitResult, error) {
	panic("unimplemented")
}

func (stubCheckoutService) Cancel(context.Context, string) error {
	panic("unimplemented")
}

type stubRouterOrderService struct{}

func (stubRouterOrderService) Create(context.Context, *gorm.DB, ordersvc.CreateOrderInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubRouterOrderService) List(context.Context, pagination.Params, ordersvc.ListFilters) (*ordersvc.ListResult, error) {
	return &ordersvc.ListResult{}, nil
}

func (stubRouterOrderService) GetByID(context.Context, uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubRouterOrderService) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) (*models.Order, error) {
	panic("unimplemented")
}

func (stubRouterOrderService) ApplyPaymentResult(context.Context, string, bool, string) (*models.Order, error) {
	panic("unimplemented")
}

func (stubRouterOrderService) Stats(context.Context) (*ordersvc.Stats, error) {
	panic("unimplemented")
}

type stubStockService struct{}

func (stubStockService) RecordMovement(context.Context, stocksvc.MovementInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubStockService) Adjust(context.Context, uuid.UUID, enums.Warehouse, int, *uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

func (stubStockService) ListMovements(context.Context, pagination.Params, *uuid.UUID) (*stocksvc.MovementListResult, error) {
	panic("unimplemented")
}

func (stubStockService) Alerts(context.Context) ([]stocksvc.Alert, error) {
	panic("unimplemented")
}

type stubShipmentService struct{}

func (stubShipmentService) Create(context.Context, shipmentsvc.CreateInput) (*models.Shipment, error) {
	panic("unimplemented")
}

func (stubShipmentService) List(context.Context, pagination.Params, shipmentsvc.ListFilters) (*shipmentsvc.ListResult, error) {
	panic("unimplemented")
}

func (stubShipmentService) GetByID(context.Context, uuid.UUID) (*models.Shipment, error) {
	panic("unimplemented")
}

func (stubShipmentService) Track(context.Context, string) (*models.Shipment, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
}

func (stubShipmentService) UpdateStatus(context.Context, uuid.UUID, shipmentsvc.StatusUpdateInput) (*models.Shipment, error) {
	panic("unimplemented")
}

type stubNotificationService struct{}

func (stubNotificationService) List(context.Context, pagination.Params, bool) (*notificationsvc.ListResult, error) {
	panic("unimplemented")
}

func (stubNotificationService) MarkRead(context.Context, uuid.UUID) error {
	panic("unimplemented")
}

func (stubNotificationService) MarkAllRead(context.Context) (int64, error) {
	panic("unimplemented")
}

func (stubNotificationService) UnreadCount(context.Context) (int64, error) {
	panic("unimplemented")
}

func (stubNotificationService) NotifyNewOrder(context.Context, *models.Order) error {
	panic("unimplemented")
}

func (stubNotificationService) NotifyPaymentFailed(context.Context, *models.Order, string) error {
	panic("unimplemented")
}

func (stubNotificationService) NotifyLowStock(context.Context, stocksvc.Alert) error {
	panic("unimplemented")
}

func (stubNotificationService) NotifyShipmentUpdate(context.Context, *models.Shipment) error {
	panic("unimplemented")
}

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubAuthService{},
		stubProductService{},
		stubCartRouterService{},
		stubCheckoutService{},
		stubRouterOrderService{},
		stubStockService{},
		stubShipmentService{},
		stubNotificationService{},
	)
}

func TestRouterServesHealthLive(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestRouterServesPublicProducts(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterGuardsAdminRoutes(t *testing.T) {
	router := newTestRouter()

	paths := []string{
		"/api/admin/v1/orders",
		"/api/admin/v1/products",
		"/api/admin/v1/stock/alerts",
		"/api/admin/v1/shipments",
		"/api/admin/v1/notifications",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without credentials, got %d", path, rec.Code)
		}
	}
}

func TestRouterRejectsBadAdminToken(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestRouterUnknownRouteIs404(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
