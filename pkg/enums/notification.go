package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeNewOrder      NotificationType = "new_order"
	NotificationTypePaymentFailed NotificationType = "payment_failed"
	NotificationTypeLowStock      NotificationType = "low_stock"
	NotificationTypeShipment      NotificationType = "shipment_update"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeNewOrder,
	NotificationTypePaymentFailed,
	NotificationTypeLowStock,
	NotificationTypeShipment,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
