package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"xiaoyuclone/pkg/claims"
	"xiaoyuclone/pkg/notification"
)

const muxVarNotifID string = "notif_id"

type NotificationService interface {
	List(ctx context.Context, userID int64) ([]*notification.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) (bool, error)
	MarkAllAsRead(ctx context.Context, userID int64) (int64, error)
}

type NotificationHandler struct {
	Service NotificationService
	Logger  *slog.Logger
}

func NewNotificationHandler(service NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		Service: service,
		Logger:  logger,
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	var claims claims.Claims
	if ok := getClaimsFromContext(w, r, &claims); !ok {
		return
	}

	notifs, err := h.Service.List(r.Context(), claims.User.ID)
	if err != nil {
		h.Logger.Error("list notifications", "error", err)
		writeError(w, http.StatusInternalServerError, typeError, err.Error())
		return
	}

	writeJSON(w, h.Logger, notifs)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	var claims claims.Claims
	if ok := getClaimsFromContext(w, r, &claims); !ok {
		return
	}

	count, err := h.Service.UnreadCount(r.Context(), claims.User.ID)
	if err != nil {
		h.Logger.Error("unread count", "error", err)
		writeError(w, http.StatusInternalServerError, typeError, err.Error())
		return
	}

	writeJSON(w, h.Logger, map[string]int64{"count": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	notifID, err := strconv.ParseInt(vars[muxVarNotifID], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, typeMessage, "invalid notification id")
		return
	}

	var claims claims.Claims
	if ok := getClaimsFromContext(w, r, &claims); !ok {
		return
	}

	ok, err := h.Service.MarkAsRead(r.Context(), claims.User.ID, notifID)
	if err != nil {
		h.Logger.Error("mark read", "error", err)
		writeError(w, http.StatusInternalServerError, typeError, err.Error())
		return
	}

	if ok2 := writeJSON(w, h.Logger, map[string]bool{"updated": ok}); ok2 {
		h.Logger.Info("notification read", "user", claims.User.ID, muxVarNotifID, notifID)
	}
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	var claims claims.Claims
	if ok := getClaimsFromContext(w, r, &claims); !ok {
		return
	}

	updated, err := h.Service.MarkAllAsRead(r.Context(), claims.User.ID)
	if err != nil {
		h.Logger.Error("mark all read", "error", err)
		writeError(w, http.StatusInternalServerError, typeError, err.Error())
		return
	}

	if ok := writeJSON(w, h.Logger, map[string]int64{"updated": updated}); ok {
		h.Logger.Info("all notifications read", "user", claims.User.ID)
	}
}
