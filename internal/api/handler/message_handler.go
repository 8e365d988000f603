package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// MessageHandler handles the per-assignment chat thread.
type MessageHandler struct {
	service ports.MessageService
}

func NewMessageHandler(service ports.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

type postMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

// Post handles POST /v1/assignments/:id/messages.
//
// @Summary      Post a message on an assignment thread
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Assignment ID"
// @Param        body  body      postMessageRequest  true  "Message body"
// @Success      201   {object}  domain.Message
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/assignments/{id}/messages [post]
func (h *MessageHandler) Post(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.service.Post(c.Request().Context(), c.Param("id"), user, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

// List handles GET /v1/assignments/:id/messages.
//
// @Summary      List an assignment's message thread
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string  true  "Assignment ID"
// @Success      200  {array}  domain.Message
// @Failure      403  {object}  map[string]string
// @Router       /v1/assignments/{id}/messages [get]
func (h *MessageHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	msgs, err := h.service.List(c.Request().Context(), c.Param("id"), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}
