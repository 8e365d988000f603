package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// ReportHandler exposes the admin reports.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// WriterEarnings handles GET /v1/reports/earnings.
//
// @Summary      Writer earnings report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  ports.WriterEarnings
// @Router       /v1/reports/earnings [get]
func (h *ReportHandler) WriterEarnings(c echo.Context) error {
	rows, err := h.service.WriterEarnings(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

// StatusCounts handles GET /v1/reports/status.
//
// @Summary      Assignment throughput by status
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  ports.StatusCount
// @Router       /v1/reports/status [get]
func (h *ReportHandler) StatusCounts(c echo.Context) error {
	rows, err := h.service.StatusCounts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

// MonthlyRevenue handles GET /v1/reports/revenue.
//
// @Summary      Monthly revenue from client orders
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        months  query    int  false  "Months to look back (default 12, max 36)"
// @Success      200     {array}  ports.MonthlyRevenue
// @Router       /v1/reports/revenue [get]
func (h *ReportHandler) MonthlyRevenue(c echo.Context) error {
	months, _ := strconv.Atoi(c.QueryParam("months"))
	rows, err := h.service.MonthlyRevenue(c.Request().Context(), months)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}
