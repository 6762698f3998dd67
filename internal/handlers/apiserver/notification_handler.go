package apiserver

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"friendly/internal/config"
	"friendly/internal/middleware"
	"friendly/internal/services"
	"friendly/internal/websocket"
)

// NotificationHandler serves stored notifications and the live push socket.
type NotificationHandler struct {
	notificationService services.NotificationService
	hub                 *websocket.Hub
	wsCfg               config.WebSocketConfig
}

// NewNotificationHandler creates a new NotificationHandler instance.
func NewNotificationHandler(notificationService services.NotificationService, hub *websocket.Hub, wsCfg config.WebSocketConfig) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		hub:                 hub,
		wsCfg:               wsCfg,
	}
}

// List returns the session user's notifications, newest first. An optional
// "limit" query parameter caps the result.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeJSONError(w, "limit must be a non-negative number", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	rows, err := h.notificationService.List(r.Context(), username, limit)
	if err != nil {
		writeJSONError(w, "failed to load notifications", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, rows)
}

// MarkRead marks one of the session user's notifications as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "invalid notification id", http.StatusBadRequest)
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), username, uint(id)); err != nil {
		writeJSONError(w, "failed to mark notification read", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "ok"})
}

// ServeWs upgrades the connection and registers it for live match pushes.
func (h *NotificationHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	websocket.ServeWs(h.hub, username, w, r, h.wsCfg)
}
