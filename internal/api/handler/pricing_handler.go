package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scribehub/writing-marketplace/internal/api/metrics"
	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// PricingHandler exposes the quote engine. Quotes are public: the client
// portal calls this before any account exists.
type PricingHandler struct {
	service ports.PricingService
}

func NewPricingHandler(service ports.PricingService) *PricingHandler {
	return &PricingHandler{service: service}
}

type quoteRequest struct {
	Type        string `json:"type" validate:"required,oneof=standard excel course programming presentation custom"`
	PackageType string `json:"package_type" validate:"omitempty,oneof=bronze silver gold"`
	Complexity  string `json:"complexity" validate:"omitempty,oneof=basic intermediate advanced"`
	Pages       int    `json:"pages" validate:"gte=0"`
	Slides      int    `json:"slides" validate:"gte=0"`
	Weeks       int    `json:"weeks" validate:"gte=0"`
	Description string `json:"description"`
	MemberTier  string `json:"member_tier" validate:"omitempty,oneof=bronze silver gold"`
	UseAI       bool   `json:"use_ai"`
}

type quoteResponse struct {
	BasePrice  float64 `json:"base_price"`
	FinalPrice float64 `json:"final_price"`
	Discount   float64 `json:"discount"`
	Currency   string  `json:"currency"`
	Source     string  `json:"source"`
	AIPrice    float64 `json:"ai_price,omitempty"`
}

// Quote handles POST /v1/pricing/quote.
//
// @Summary      Price a piece of work
// @Tags         pricing
// @Accept       json
// @Produce      json
// @Param        body  body      quoteRequest  true  "Work description"
// @Success      200   {object}  quoteResponse
// @Failure      400   {object}  map[string]string
// @Router       /v1/pricing/quote [post]
func (h *PricingHandler) Quote(c echo.Context) error {
	var req quoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	quote, err := h.service.Quote(c.Request().Context(), ports.QuoteInput{
		Type:        domain.OrderType(req.Type),
		PackageType: domain.PackageType(req.PackageType),
		Complexity:  domain.Complexity(req.Complexity),
		Pages:       req.Pages,
		Slides:      req.Slides,
		Weeks:       req.Weeks,
		Description: req.Description,
		MemberTier:  domain.MemberTier(req.MemberTier),
		UseAI:       req.UseAI,
	})
	if err != nil {
		return err
	}
	metrics.QuotesTotal.WithLabelValues(quote.Source).Inc()

	return c.JSON(http.StatusOK, quoteResponse{
		BasePrice:  quote.BasePrice,
		FinalPrice: quote.FinalPrice,
		Discount:   quote.Discount,
		Currency:   quote.Currency,
		Source:     quote.Source,
		AIPrice:    quote.AIPrice,
	})
}
