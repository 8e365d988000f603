package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// OrderHandler handles the client-portal order intake.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type createOrderRequest struct {
	ClientName  string    `json:"client_name" validate:"required"`
	ClientEmail string    `json:"client_email" validate:"required,email"`
	Deadline    time.Time `json:"deadline" validate:"required"`
	Description string    `json:"description"`

	Type        string `json:"type" validate:"required,oneof=standard excel course programming presentation custom"`
	PackageType string `json:"package_type" validate:"omitempty,oneof=bronze silver gold"`
	Complexity  string `json:"complexity" validate:"omitempty,oneof=basic intermediate advanced"`
	Pages       int    `json:"pages" validate:"gte=0"`
	Slides      int    `json:"slides" validate:"gte=0"`
	Weeks       int    `json:"weeks" validate:"gte=0"`
	MemberTier  string `json:"member_tier" validate:"omitempty,oneof=bronze silver gold"`
	UseAI       bool   `json:"use_ai"`
}

type orderListResponse struct {
	Orders []*domain.ClientOrder `json:"orders"`
	Total  int64                 `json:"total"`
	Page   int                   `json:"page"`
	Limit  int                   `json:"limit"`
}

// Create handles POST /v1/orders: public client intake. The quote is computed
// and snapshotted on the order.
//
// @Summary      Place a client order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      createOrderRequest  true  "Order details"
// @Success      201   {object}  domain.ClientOrder
// @Failure      400   {object}  map[string]string
// @Router       /v1/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.service.Create(c.Request().Context(), ports.CreateOrderInput{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Deadline:    req.Deadline,
		Description: req.Description,
		Quote: ports.QuoteInput{
			Type:        domain.OrderType(req.Type),
			PackageType: domain.PackageType(req.PackageType),
			Complexity:  domain.Complexity(req.Complexity),
			Pages:       req.Pages,
			Slides:      req.Slides,
			Weeks:       req.Weeks,
			Description: req.Description,
			MemberTier:  domain.MemberTier(req.MemberTier),
			UseAI:       req.UseAI,
		},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, order)
}

// Get handles GET /v1/orders/:reference. Clients look up their order by the
// reference from the intake response; no account is required.
//
// @Summary      Get an order by reference
// @Tags         orders
// @Produce      json
// @Param        reference  path      string  true  "Order reference"
// @Success      200        {object}  domain.ClientOrder
// @Failure      404        {object}  map[string]string
// @Router       /v1/orders/{reference} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.service.Get(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// List handles GET /v1/orders (admin).
//
// @Summary      List client orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 20, max 100)"
// @Success      200    {object}  orderListResponse
// @Router       /v1/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	orders, total, err := h.service.List(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orderListResponse{
		Orders: orders,
		Total:  total,
		Page:   page,
		Limit:  limit,
	})
}
