package handlers

import (
	"net/http"
	"strconv"

	"vehicle-auctions/internal/services"
	"vehicle-auctions/pkg/logger"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	log           logger.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, log logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		log:           log,
	}
}

func userIDParam(c echo.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID, ok := userIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id required"})
	}

	unreadOnly := c.QueryParam("unread") == "true"
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	notifications, err := h.notifications.RecentNotifications(c.Request().Context(), userID, unreadOnly, limit)
	if err != nil {
		h.log.Error("Failed to list notifications", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list notifications"})
	}

	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, ok := userIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id required"})
	}

	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || notificationID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid notification id"})
	}

	if err := h.notifications.MarkRead(c.Request().Context(), userID, notificationID); err != nil {
		h.log.Error("Failed to mark notification read", "notification_id", notificationID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to mark notification read"})
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, ok := userIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id required"})
	}

	if err := h.notifications.MarkAllRead(c.Request().Context(), userID); err != nil {
		h.log.Error("Failed to mark notifications read", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to mark notifications read"})
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) Clear(c echo.Context) error {
	userID, ok := userIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id required"})
	}

	if err := h.notifications.Clear(c.Request().Context(), userID); err != nil {
		h.log.Error("Failed to clear notifications", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to clear notifications"})
	}

	return c.NoContent(http.StatusNoContent)
}
