package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// Rule table for deterministic base pricing. Values are USD.
var (
	pageRates = map[domain.PackageType]float64{
		domain.PackageBronze: 9.99,
		domain.PackageSilver: 12.49,
		domain.PackageGold:   15.99,
	}
	slideRates = map[domain.PackageType]float64{
		domain.PackageBronze: 4.99,
		domain.PackageSilver: 6.49,
		domain.PackageGold:   8.99,
	}
	excelRates = map[domain.Complexity]float64{
		domain.ComplexityBasic:        49.99,
		domain.ComplexityIntermediate: 89.99,
		domain.ComplexityAdvanced:     149.99,
	}
	programmingRates = map[domain.Complexity]float64{
		domain.ComplexityBasic:        79.99,
		domain.ComplexityIntermediate: 149.99,
		domain.ComplexityAdvanced:     299.99,
	}
	memberDiscounts = map[domain.MemberTier]float64{
		domain.TierBronze: 5,
		domain.TierSilver: 10,
		domain.TierGold:   15,
	}
)

// coursePerWeek prices course-length engagements; minimumOrder floors custom
// quotes the rule table cannot ground.
const (
	coursePerWeek = 39.99
	minimumOrder  = 25.00

	// AI estimates outside [aiLowerBound, aiUpperBound] × rule price are
	// discarded for non-custom, non-course types.
	aiLowerBound = 0.5
	aiUpperBound = 2.0
)

// PricingService resolves quotes from the rule table, optionally consulting
// the LLM estimator, with the rule-based figure acting as a sanity bound.
type PricingService struct {
	estimator ports.PriceEstimator // nil disables AI estimates
	logger    zerolog.Logger
}

func NewPricingService(estimator ports.PriceEstimator, logger zerolog.Logger) *PricingService {
	return &PricingService{estimator: estimator, logger: logger}
}

// Quote computes the base price and applies the member discount last,
// multiplicatively. For custom and course orders an available AI estimate is
// trusted unconditionally; for everything else it must land within
// [0.5×, 2×] of the rule-based figure or it is discarded.
func (s *PricingService) Quote(ctx context.Context, input ports.QuoteInput) (*ports.Quote, error) {
	rulePrice, err := s.rulePrice(input)
	if err != nil {
		return nil, err
	}

	quote := &ports.Quote{
		BasePrice: rulePrice,
		Currency:  "USD",
		Source:    "rules",
	}

	if s.shouldConsultAI(input) {
		aiPrice, aiErr := s.estimator.Estimate(ctx, input)
		if aiErr != nil || aiPrice <= 0 {
			s.logger.Warn().Err(aiErr).Str("type", string(input.Type)).Msg("ai estimate unavailable, using rule price")
		} else {
			quote.AIPrice = round2(aiPrice)
			if s.acceptAI(input.Type, aiPrice, rulePrice) {
				quote.BasePrice = round2(aiPrice)
				quote.Source = "ai"
			} else {
				s.logger.Info().
					Float64("ai_price", aiPrice).
					Float64("rule_price", rulePrice).
					Msg("ai estimate outside bounds, rejected")
			}
		}
	}

	if input.Type == domain.OrderCustom && quote.BasePrice < minimumOrder {
		quote.BasePrice = minimumOrder
	}

	quote.Discount = memberDiscounts[input.MemberTier]
	quote.FinalPrice = round2(quote.BasePrice * (1 - quote.Discount/100))
	quote.BasePrice = round2(quote.BasePrice)

	return quote, nil
}

// rulePrice is the deterministic estimate keyed by {type, package, complexity}.
func (s *PricingService) rulePrice(input ports.QuoteInput) (float64, error) {
	switch input.Type {
	case domain.OrderStandard:
		rate, ok := pageRates[input.PackageType]
		if !ok || input.Pages <= 0 {
			return 0, fmt.Errorf("quote: %w: standard orders need a package type and page count", domain.ErrValidation)
		}
		return float64(input.Pages) * rate, nil

	case domain.OrderPresentation:
		rate, ok := slideRates[input.PackageType]
		if !ok || input.Slides <= 0 {
			return 0, fmt.Errorf("quote: %w: presentation orders need a package type and slide count", domain.ErrValidation)
		}
		return float64(input.Slides) * rate, nil

	case domain.OrderExcel:
		rate, ok := excelRates[input.Complexity]
		if !ok {
			return 0, fmt.Errorf("quote: %w: excel orders need a complexity", domain.ErrValidation)
		}
		return rate, nil

	case domain.OrderProgramming:
		rate, ok := programmingRates[input.Complexity]
		if !ok {
			return 0, fmt.Errorf("quote: %w: programming orders need a complexity", domain.ErrValidation)
		}
		return rate, nil

	case domain.OrderCourse:
		weeks := input.Weeks
		if weeks <= 0 {
			weeks = 1
		}
		return float64(weeks) * coursePerWeek, nil

	case domain.OrderCustom:
		// No rule can ground custom work; the floor stands in until the AI
		// estimate (if any) replaces it.
		return minimumOrder, nil

	default:
		return 0, fmt.Errorf("quote: %w: unknown order type %q", domain.ErrValidation, input.Type)
	}
}

// shouldConsultAI: custom and course types always consult the estimator when
// one is wired; other types only on explicit request.
func (s *PricingService) shouldConsultAI(input ports.QuoteInput) bool {
	if s.estimator == nil {
		return false
	}
	if input.Type == domain.OrderCustom || input.Type == domain.OrderCourse {
		return true
	}
	return input.UseAI
}

// acceptAI trusts custom/course estimates unconditionally; everything else is
// bounded by the rule-based figure.
func (s *PricingService) acceptAI(orderType domain.OrderType, aiPrice, rulePrice float64) bool {
	if orderType == domain.OrderCustom || orderType == domain.OrderCourse {
		return true
	}
	return aiPrice >= rulePrice*aiLowerBound && aiPrice <= rulePrice*aiUpperBound
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
