package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/watchfeed-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// BroadcastRequest is a tenant notification for every watcher
type BroadcastRequest struct {
	Content string `json:"content" validate:"required"`
}

// UnreadCountResponse carries the watcher's unread counter
type UnreadCountResponse struct {
	NumberNotification int64 `json:"number_notification"`
}

// NotificationFeed handles GET /notifications?watcher_id=
func (h *Handler) NotificationFeed(w http.ResponseWriter, r *http.Request) {
	watcherID := strings.TrimSpace(r.URL.Query().Get("watcher_id"))
	if watcherID == "" {
		h.badRequest(w, "watcher_id is required")
		return
	}
	page, err := h.feeds.NotificationFeed(r.Context(), watcherID, r.URL.Query().Get("last_notification_id"), queryLimit(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", page)
}

// AcknowledgeNotification handles PATCH /notifications/{notification_id}
func (h *Handler) AcknowledgeNotification(w http.ResponseWriter, r *http.Request) {
	var req WatcherIDRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.engine.Acknowledge(r.Context(), chi.URLParam(r, "notification_id"), req.WatcherID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Notification read", view)
}

// BroadcastNotification handles POST /notifications
func (h *Handler) BroadcastNotification(w http.ResponseWriter, r *http.Request) {
	var req BroadcastRequest
	if !h.decode(w, r, &req) {
		return
	}
	n, err := h.engine.Broadcast(r.Context(), middleware.Tenant(r.Context()), req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Notification created", n)
}

// UnreadCount handles GET /notifications/unread-count for the bearer watcher
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.engine.UnreadCount(r.Context(), middleware.WatcherID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", UnreadCountResponse{NumberNotification: n})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
