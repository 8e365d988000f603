package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// NotificationHandler exposes the in-app notification inbox and Web Push
// subscription management.
type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	P256dh   string `json:"p256dh" validate:"required"`
	Auth     string `json:"auth" validate:"required"`
}

type unreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// List handles GET /v1/notifications.
//
// @Summary      List own notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query    int  false  "Max rows (default 50)"
// @Success      200    {array}  domain.Notification
// @Router       /v1/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	notifications, err := h.service.List(c.Request().Context(), user.ID, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notifications)
}

// UnreadCount handles GET /v1/notifications/unread.
//
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  unreadCountResponse
// @Router       /v1/notifications/unread [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	count, err := h.service.UnreadCount(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unreadCountResponse{Unread: count})
}

// MarkRead handles PUT /v1/notifications/:id/read.
//
// @Summary      Mark one notification read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkRead(c.Request().Context(), c.Param("id"), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles PUT /v1/notifications/read-all.
//
// @Summary      Mark all notifications read
// @Tags         notifications
// @Security     BearerAuth
// @Success      204
// @Router       /v1/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkAllRead(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Subscribe handles POST /v1/push/subscribe: registers a browser's Web Push
// subscription for the authenticated user.
//
// @Summary      Register a Web Push subscription
// @Tags         notifications
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  subscribeRequest  true  "Push subscription keys"
// @Success      201
// @Failure      400  {object}  map[string]string
// @Router       /v1/push/subscribe [post]
func (h *NotificationHandler) Subscribe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.service.Subscribe(c.Request().Context(), &domain.PushSubscription{
		UserID:    user.ID,
		Endpoint:  req.Endpoint,
		P256dh:    req.P256dh,
		Auth:      req.Auth,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusCreated)
}

// Unsubscribe handles DELETE /v1/push/subscribe.
//
// @Summary      Remove a Web Push subscription
// @Tags         notifications
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  subscribeRequest  true  "Subscription endpoint to remove"
// @Success      204
// @Router       /v1/push/subscribe [delete]
func (h *NotificationHandler) Unsubscribe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req struct {
		Endpoint string `json:"endpoint" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Unsubscribe(c.Request().Context(), user.ID, req.Endpoint); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
