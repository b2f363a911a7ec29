package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rawises/storefront-backend/internal/stock"
	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/pagination"
)

// Service writes and serves the admin notification feed. The Notify helpers
// are fire-and-forget from the caller's perspective: they return errors for
// logging but never carry business state.
type Service interface {
	List(ctx context.Context, params pagination.Params, unreadOnly bool) (*ListResult, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	UnreadCount(ctx context.Context) (int64, error)

	NotifyNewOrder(ctx context.Context, order *models.Order) error
	NotifyPaymentFailed(ctx context.Context, order *models.Order, reason string) error
	NotifyLowStock(ctx context.Context, alert stock.Alert) error
	NotifyShipmentUpdate(ctx context.Context, shipment *models.Shipment) error
}

type service struct {
	repo Repository
}

// NewService builds the notifications service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, unreadOnly bool) (*ListResult, error) {
	result, err := s.repo.List(ctx, params, unreadOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return result, nil
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id is required")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}
	if err := s.repo.MarkRead(ctx, id, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return count, nil
}

func (s *service) UnreadCount(ctx context.Context) (int64, error) {
	count, err := s.repo.UnreadCount(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) NotifyNewOrder(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	link := "/admin/orders/" + order.ID.String()
	return s.create(ctx, &models.Notification{
		Type:    enums.NotificationTypeNewOrder,
		Title:   "Yeni sipariş",
		Message: fmt.Sprintf("Sipariş %s alındı (%s TL)", order.OrderNumber, order.TotalAmount.StringFixed(2)),
		Link:    &link,
	})
}

func (s *service) NotifyPaymentFailed(ctx context.Context, order *models.Order, reason string) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	message := fmt.Sprintf("Sipariş %s için ödeme başarısız", order.OrderNumber)
	if reason != "" {
		message += ": " + reason
	}
	link := "/admin/orders/" + order.ID.String()
	return s.create(ctx, &models.Notification{
		Type:    enums.NotificationTypePaymentFailed,
		Title:   "Ödeme başarısız",
		Message: message,
		Link:    &link,
	})
}

// NotifyLowStock feeds the low-stock scanner's alerts into the dashboard.
func (s *service) NotifyLowStock(ctx context.Context, alert stock.Alert) error {
	link := "/admin/products/" + alert.Product.ID.String()
	return s.create(ctx, &models.Notification{
		Type:    enums.NotificationTypeLowStock,
		Title:   "Stok uyarısı",
		Message: fmt.Sprintf("%s stoğu %d adede düştü (minimum %d, seviye %s)", alert.Product.Name, alert.Current, alert.Minimum, alert.Severity),
		Link:    &link,
	})
}

func (s *service) NotifyShipmentUpdate(ctx context.Context, shipment *models.Shipment) error {
	if shipment == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipment is required")
	}
	link := "/admin/shipments/" + shipment.ID.String()
	return s.create(ctx, &models.Notification{
		Type:    enums.NotificationTypeShipment,
		Title:   "Kargo güncellemesi",
		Message: fmt.Sprintf("Takip %s durumu: %s", shipment.TrackingNumber, shipment.Status),
		Link:    &link,
	})
}

func (s *service) create(ctx context.Context, notification *models.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}
