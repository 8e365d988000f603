package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/scribehub/writing-marketplace/internal/api/metrics"
	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// AssignmentHandler handles HTTP requests for the assignment lifecycle.
type AssignmentHandler struct {
	service ports.AssignmentService
}

func NewAssignmentHandler(service ports.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// Create handles POST /v1/assignments.
//
// @Summary      Post a new assignment
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAssignmentRequest  true  "Assignment details"
// @Success      201   {object}  domain.Assignment
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/assignments [post]
func (h *AssignmentHandler) Create(c echo.Context) error {
	var req createAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Create(c.Request().Context(), ports.CreateAssignmentInput{
		Title:        req.Title,
		Description:  req.Description,
		Domain:       req.Domain,
		WordCountMin: req.WordCountMin,
		WordCountMax: req.WordCountMax,
		Amount:       req.Amount,
		Deadline:     req.Deadline,
	})
	if err != nil {
		return err
	}

	subject := assignment.Domain
	if subject == "" {
		subject = "general"
	}
	metrics.AssignmentsCreatedTotal.WithLabelValues(subject).Inc()

	return c.JSON(http.StatusCreated, assignment)
}

// List handles GET /v1/assignments. Admins see everything; writers see only
// their own assignments.
//
// @Summary      List assignments
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Param        domain  query     string  false  "Filter by subject domain"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  assignmentListResponse
// @Router       /v1/assignments [get]
func (h *AssignmentHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}

	filter := ports.ListAssignmentsFilter{
		Status: c.QueryParam("status"),
		Domain: c.QueryParam("domain"),
		Page:   page,
		Limit:  limit,
	}
	if user.Role == domain.RoleWriter {
		filter.WriterID = user.ID
	}

	assignments, total, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, assignmentListResponse{
		Assignments: assignments,
		Total:       total,
		Page:        filter.Page,
		Limit:       filter.Limit,
	})
}

// Board handles GET /v1/assignments/board: the open job board scoped to the
// requesting writer's domains and eligibility.
//
// @Summary      Job board for the requesting writer
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Assignment
// @Failure      403  {object}  map[string]string
// @Router       /v1/assignments/board [get]
func (h *AssignmentHandler) Board(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	assignments, err := h.service.ListBoard(c.Request().Context(), user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, assignments)
}

// Get handles GET /v1/assignments/:id.
//
// @Summary      Get an assignment
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Assignment ID"
// @Success      200  {object}  domain.Assignment
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/assignments/{id} [get]
func (h *AssignmentHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	assignment, err := h.service.Get(c.Request().Context(), c.Param("id"), user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, assignment)
}

// Pick handles POST /v1/assignments/:id/pick: a writer's claim on a board
// assignment. Exactly one concurrent pick wins; the rest get a conflict.
//
// @Summary      Pick an assignment from the job board
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Assignment ID"
// @Param        body  body      pickRequest  true  "Writer deadline"
// @Success      200   {object}  domain.Assignment
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/assignments/{id}/pick [post]
func (h *AssignmentHandler) Pick(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req pickRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Pick(c.Request().Context(), ports.PickInput{
		AssignmentID:   c.Param("id"),
		WriterID:       user.ID,
		WriterDeadline: req.WriterDeadline,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyPicked) || errors.Is(err, domain.ErrWriterIneligible) {
			metrics.PickConflictsTotal.Inc()
		}
		return err
	}
	metrics.AssignmentsPickedTotal.Inc()

	return c.JSON(http.StatusOK, assignment)
}

// writerAllowedFields is the whitelist for writer updates. Any other key in
// the payload means the writer is reaching for admin-only fields.
var writerAllowedFields = map[string]struct{}{
	"status":           {},
	"submitted_amount": {},
}

// WriterUpdate handles PATCH /v1/assignments/:id for writers. The payload is
// checked key-by-key so a writer sending admin fields gets 403, not a silent
// partial apply.
//
// @Summary      Update own assignment (writer)
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Assignment ID"
// @Param        body  body      writerUpdateRequest  true  "Allowed fields: status, submitted_amount"
// @Success      200   {object}  domain.Assignment
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/assignments/{id} [patch]
func (h *AssignmentHandler) WriterUpdate(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	for key := range raw {
		if _, ok := writerAllowedFields[key]; !ok {
			return echo.NewHTTPError(http.StatusForbidden, "field not allowed: "+key)
		}
	}

	patch := ports.WriterPatch{}
	if v, ok := raw["status"]; ok {
		var s domain.AssignmentStatus
		if err := json.Unmarshal(v, &s); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		patch.Status = &s
	}
	if v, ok := raw["submitted_amount"]; ok {
		var amount float64
		if err := json.Unmarshal(v, &amount); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid submitted_amount")
		}
		patch.SubmittedAmount = &amount
	}

	assignment, err := h.service.UpdateByWriter(c.Request().Context(), c.Param("id"), user.ID, patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, assignment)
}

// AdminUpdate handles PUT /v1/assignments/:id for admins.
//
// @Summary      Update an assignment (admin)
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Assignment ID"
// @Param        body  body      adminUpdateRequest  true  "Fields to update"
// @Success      200   {object}  domain.Assignment
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/assignments/{id} [put]
func (h *AssignmentHandler) AdminUpdate(c echo.Context) error {
	var req adminUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	patch := ports.AdminPatch{
		Title:          req.Title,
		Description:    req.Description,
		Domain:         req.Domain,
		WordCountMin:   req.WordCountMin,
		WordCountMax:   req.WordCountMax,
		Amount:         req.Amount,
		AmountApproved: req.AmountApproved,
		Deadline:       req.Deadline,
	}
	if req.Status != nil {
		s := domain.AssignmentStatus(*req.Status)
		patch.Status = &s
	}
	if req.PaymentStatus != nil {
		p := domain.PaymentStatus(*req.PaymentStatus)
		patch.PaymentStatus = &p
	}

	assignment, err := h.service.UpdateByAdmin(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, assignment)
}

// Delete handles DELETE /v1/assignments/:id.
//
// @Summary      Delete an assignment
// @Tags         assignments
// @Security     BearerAuth
// @Param        id  path  string  true  "Assignment ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RequestExtension handles POST /v1/assignments/:id/extension.
//
// @Summary      Request a writer deadline extension
// @Tags         extensions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Assignment ID"
// @Param        body  body      extensionRequestBody  true  "Requested deadline and reason"
// @Success      201   {object}  domain.ExtensionRequest
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/assignments/{id}/extension [post]
func (h *AssignmentHandler) RequestExtension(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req extensionRequestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ext, err := h.service.RequestExtension(c.Request().Context(), ports.ExtensionRequestInput{
		AssignmentID:      c.Param("id"),
		WriterID:          user.ID,
		RequestedDeadline: req.RequestedDeadline,
		Reason:            req.Reason,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, ext)
}

// ListExtensions handles GET /v1/extensions: pending requests for admins.
//
// @Summary      List pending extension requests
// @Tags         extensions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.ExtensionRequest
// @Router       /v1/extensions [get]
func (h *AssignmentHandler) ListExtensions(c echo.Context) error {
	exts, err := h.service.ListPendingExtensions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exts)
}

// RespondExtension handles PUT /v1/extensions/:id.
//
// @Summary      Approve or reject an extension request
// @Tags         extensions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Extension request ID"
// @Param        body  body      extensionResponseBody  true  "Resolution"
// @Success      200   {object}  domain.ExtensionRequest
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/extensions/{id} [put]
func (h *AssignmentHandler) RespondExtension(c echo.Context) error {
	var req extensionResponseBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ext, err := h.service.RespondExtension(c.Request().Context(), ports.ExtensionResponseInput{
		ExtensionID:   c.Param("id"),
		Approve:       req.Status == string(domain.ExtensionApproved),
		AdminResponse: req.AdminResponse,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ext)
}

// OverrideDeadline handles PUT /v1/assignments/:id/writer-deadline: a direct
// admin override outside the extension flow.
//
// @Summary      Override the writer deadline
// @Tags         assignments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Assignment ID"
// @Param        body  body      deadlineOverrideRequest  true  "New writer deadline"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/assignments/{id}/writer-deadline [put]
func (h *AssignmentHandler) OverrideDeadline(c echo.Context) error {
	var req deadlineOverrideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.OverrideWriterDeadline(c.Request().Context(), c.Param("id"), req.WriterDeadline); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Sweep handles POST /v1/assignments/sweep-overdue: releases assignments
// whose writer deadline passed while the client deadline still stands.
//
// @Summary      Release overdue assignments back to the board
// @Tags         assignments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sweepResponse
// @Router       /v1/assignments/sweep-overdue [post]
func (h *AssignmentHandler) Sweep(c echo.Context) error {
	result, err := h.service.SweepOverdue(c.Request().Context())
	if err != nil {
		return err
	}
	metrics.AssignmentsReleasedTotal.Add(float64(result.Released))
	return c.JSON(http.StatusOK, sweepResponse{
		Released:    result.Released,
		ReleasedIDs: result.ReleasedIDs,
	})
}
