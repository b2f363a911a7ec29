package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rawises/storefront-backend/api/responses"
	"github.com/rawises/storefront-backend/api/validators"
	notificationsvc "github.com/rawises/storefront-backend/internal/notifications"
	"github.com/rawises/storefront-backend/pkg/db/models"
	pkgerrors "github.com/rawises/storefront-backend/pkg/errors"
	"github.com/rawises/storefront-backend/pkg/logger"
)

// AdminNotificationList serves the notification feed, newest first.
func AdminNotificationList(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly, err := validators.ParseQueryBool(r, "unread_only", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), params, unreadOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := struct {
			Notifications []notificationResponse `json:"notifications"`
			NextCursor    string                 `json:"next_cursor,omitempty"`
		}{
			Notifications: make([]notificationResponse, 0, len(result.Notifications)),
			NextCursor:    result.NextCursor,
		}
		for i := range result.Notifications {
			out.Notifications = append(out.Notifications, newNotificationResponse(&result.Notifications[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminNotificationMarkRead marks one notification as read.
func AdminNotificationMarkRead(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "notificationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification id"))
			return
		}

		if err := svc.MarkRead(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}

// AdminNotificationMarkAllRead marks the whole feed as read.
func AdminNotificationMarkAllRead(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.MarkAllRead(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"marked": count})
	}
}

// AdminNotificationUnreadCount serves the badge counter.
func AdminNotificationUnreadCount(svc notificationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.UnreadCount(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}

type notificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      *string    `json:"link,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func newNotificationResponse(notification *models.Notification) notificationResponse {
	return notificationResponse{
		ID:        notification.ID,
		Type:      string(notification.Type),
		Title:     notification.Title,
		Message:   notification.Message,
		Link:      notification.Link,
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}
}
