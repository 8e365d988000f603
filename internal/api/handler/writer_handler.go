package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// WriterHandler handles HTTP requests for writer accounts.
type WriterHandler struct {
	service ports.WriterService
}

func NewWriterHandler(service ports.WriterService) *WriterHandler {
	return &WriterHandler{service: service}
}

type createWriterRequest struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	Domains     string  `json:"domains"`
	RatePerWord float64 `json:"rate_per_word" validate:"gte=0"`
}

type updateWriterRequest struct {
	Name        *string  `json:"name"`
	Email       *string  `json:"email"`
	Domains     *string  `json:"domains"`
	RatePerWord *float64 `json:"rate_per_word"`
	Status      *string  `json:"status"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Create handles POST /v1/writers (admin onboarding).
//
// @Summary      Create a writer account
// @Tags         writers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createWriterRequest  true  "Writer details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/writers [post]
func (h *WriterHandler) Create(c echo.Context) error {
	var req createWriterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	writer, err := h.service.Create(c.Request().Context(), req.Name, req.Email, req.Password, req.Domains, req.RatePerWord)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, writer)
}

// List handles GET /v1/writers.
//
// @Summary      List writers
// @Tags         writers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.User
// @Router       /v1/writers [get]
func (h *WriterHandler) List(c echo.Context) error {
	writers, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, writers)
}

// Me handles GET /v1/writers/me: the authenticated account.
//
// @Summary      Get own profile
// @Tags         writers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Router       /v1/writers/me [get]
func (h *WriterHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Get handles GET /v1/writers/:id.
//
// @Summary      Get a writer
// @Tags         writers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Writer ID"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  map[string]string
// @Router       /v1/writers/{id} [get]
func (h *WriterHandler) Get(c echo.Context) error {
	writer, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, writer)
}

// Update handles PUT /v1/writers/:id. Admins may update any writer; a writer
// may update only their own profile and never their status.
//
// @Summary      Update a writer
// @Tags         writers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Writer ID"
// @Param        body  body      updateWriterRequest  true  "Fields to update"
// @Success      200   {object}  domain.User
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/writers/{id} [put]
func (h *WriterHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	var req updateWriterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if user.Role != domain.RoleAdmin {
		if user.ID != id {
			return domain.ErrForbidden
		}
		// Writers cannot flip their own account status.
		req.Status = nil
	}

	writer, err := h.service.Update(c.Request().Context(), id, ports.UserPatch{
		Name:        req.Name,
		Email:       req.Email,
		Domains:     req.Domains,
		RatePerWord: req.RatePerWord,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, writer)
}

// ChangePassword handles PUT /v1/writers/me/password.
//
// @Summary      Change own password
// @Tags         writers
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  changePasswordRequest  true  "Current and new password"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /v1/writers/me/password [put]
func (h *WriterHandler) ChangePassword(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ChangePassword(c.Request().Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Ping handles POST /v1/writers/me/ping: a presence heartbeat.
//
// @Summary      Presence heartbeat
// @Tags         writers
// @Security     BearerAuth
// @Success      204
// @Router       /v1/writers/me/ping [post]
func (h *WriterHandler) Ping(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Ping(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Deactivate handles DELETE /v1/writers/:id. Accounts are soft-disabled, not
// removed, so past assignments keep their writer reference.
//
// @Summary      Deactivate a writer
// @Tags         writers
// @Security     BearerAuth
// @Param        id  path  string  true  "Writer ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/writers/{id} [delete]
func (h *WriterHandler) Deactivate(c echo.Context) error {
	if err := h.service.Deactivate(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
