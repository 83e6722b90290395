package http

import (
	"net/http"

	"koperasi-backend/internal/domain"
	"koperasi-backend/internal/service"
)

type NotificationHandler struct {
	notifications service.NotificationService
}

func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type notificationListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int32                 `json:"total"`
	Unread        int32                 `json:"unread"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	page, pageSize := paginationParams(r)
	notifications, total, err := h.notifications.List(r.Context(), memberID, page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	unread, err := h.notifications.CountUnread(r.Context(), memberID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notificationListResponse{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
	})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	notificationID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkAsRead(r.Context(), memberID, notificationID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authorization token is not provided")
		return
	}

	if err := h.notifications.MarkAllAsRead(r.Context(), memberID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
