package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// PaymentHandler handles the payout ledger and gateway checkout endpoints.
type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type recordPaymentRequest struct {
	WriterID     string    `json:"writer_id" validate:"required"`
	AssignmentID string    `json:"assignment_id"`
	Amount       float64   `json:"amount" validate:"required,gt=0"`
	Method       string    `json:"method" validate:"required"`
	Reference    string    `json:"reference"`
	Note         string    `json:"note"`
	PaidAt       time.Time `json:"paid_at"`
}

type initializeCheckoutRequest struct {
	Email   string  `json:"email" validate:"required,email"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	OrderID string  `json:"order_id"`
}

type checkoutResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Record handles POST /v1/payments: an admin logging a writer payout.
//
// @Summary      Record a writer payout
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      recordPaymentRequest  true  "Payout details"
// @Success      201   {object}  domain.Payment
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/payments [post]
func (h *PaymentHandler) Record(c echo.Context) error {
	var req recordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payment, err := h.service.RecordPayment(c.Request().Context(), ports.RecordPaymentInput{
		WriterID:     req.WriterID,
		AssignmentID: req.AssignmentID,
		Amount:       req.Amount,
		Method:       req.Method,
		Reference:    req.Reference,
		Note:         req.Note,
		PaidAt:       req.PaidAt,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, payment)
}

// List handles GET /v1/payments. Admins see the whole ledger; writers see
// their own payouts only.
//
// @Summary      List payouts
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Payment
// @Router       /v1/payments [get]
func (h *PaymentHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	writerID := ""
	if user.Role == domain.RoleWriter {
		writerID = user.ID
	}

	payments, err := h.service.ListPayments(c.Request().Context(), writerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

// Initialize handles POST /v1/paystack/initialize: starts a gateway checkout
// for a client order. Public, like the order intake it follows.
//
// @Summary      Initialize a gateway checkout
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      initializeCheckoutRequest  true  "Checkout details"
// @Success      200   {object}  checkoutResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/paystack/initialize [post]
func (h *PaymentHandler) Initialize(c echo.Context) error {
	var req initializeCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.service.InitializeCheckout(c.Request().Context(), ports.InitializeCheckoutInput{
		Email:   req.Email,
		Amount:  req.Amount,
		OrderID: req.OrderID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, checkoutResponse{
		AuthorizationURL: session.AuthorizationURL,
		AccessCode:       session.AccessCode,
		Reference:        session.Reference,
	})
}

// Verify handles GET /v1/paystack/verify/:reference: re-checks a transaction
// against the gateway, for clients returning from the checkout page.
//
// @Summary      Verify a gateway transaction
// @Tags         payments
// @Produce      json
// @Param        reference  path      string  true  "Transaction reference"
// @Success      200        {object}  domain.PaymentTransaction
// @Failure      404        {object}  map[string]string
// @Router       /v1/paystack/verify/{reference} [get]
func (h *PaymentHandler) Verify(c echo.Context) error {
	txn, err := h.service.VerifyTransaction(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txn)
}
