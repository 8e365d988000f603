package ports

import (
	"context"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// QuoteInput describes the work a client wants priced.
type QuoteInput struct {
	Type        domain.OrderType
	PackageType domain.PackageType
	Complexity  domain.Complexity
	Pages       int
	Slides      int
	Weeks       int
	Description string
	MemberTier  domain.MemberTier
	// UseAI requests an LLM estimate even for types that don't require one.
	UseAI bool
}

// Quote is the pricing result. BasePrice is pre-discount; FinalPrice has the
// member discount applied.
type Quote struct {
	BasePrice  float64
	FinalPrice float64
	Discount   float64 // percentage applied, 0 when no tier
	Currency   string
	// Source is "rules" or "ai", depending on which estimate won.
	Source string
	// AIPrice is the raw LLM estimate when one was consulted, accepted or not.
	AIPrice float64
}

// PriceEstimator is the LLM-backed estimator. Implementations must return an
// error rather than a zero price when the model output is unusable.
type PriceEstimator interface {
	Estimate(ctx context.Context, input QuoteInput) (float64, error)
}

// PricingService resolves quotes from the rule table and the estimator.
type PricingService interface {
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
}
