package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// OrderService handles client-portal intake. Each order snapshots the quote
// that was shown at submission time, so later rule changes never reprice it.
type OrderService struct {
	repo     ports.OrderRepository
	pricing  ports.PricingService
	userRepo ports.UserRepository
	notifier ports.Notifier
	logger   zerolog.Logger
}

func NewOrderService(
	repo ports.OrderRepository,
	pricing ports.PricingService,
	userRepo ports.UserRepository,
	notifier ports.Notifier,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{repo: repo, pricing: pricing, userRepo: userRepo, notifier: notifier, logger: logger}
}

func (s *OrderService) Create(ctx context.Context, input ports.CreateOrderInput) (*domain.ClientOrder, error) {
	if input.ClientEmail == "" {
		return nil, fmt.Errorf("create order: %w: client email required", domain.ErrValidation)
	}
	now := time.Now().UTC()
	if !input.Deadline.After(now) {
		return nil, fmt.Errorf("create order: %w", domain.ErrDeadlinePassed)
	}

	quote, err := s.pricing.Quote(ctx, input.Quote)
	if err != nil {
		return nil, err
	}

	order := &domain.ClientOrder{
		Reference:   generateReference(),
		ClientName:  input.ClientName,
		ClientEmail: input.ClientEmail,
		Type:        input.Quote.Type,
		PackageType: input.Quote.PackageType,
		Complexity:  input.Quote.Complexity,
		Pages:       input.Quote.Pages,
		Slides:      input.Quote.Slides,
		Weeks:       input.Quote.Weeks,
		Description: input.Description,
		Deadline:    input.Deadline.UTC(),
		MemberTier:  input.Quote.MemberTier,
		BasePrice:   quote.BasePrice,
		FinalPrice:  quote.FinalPrice,
		Currency:    quote.Currency,
		QuoteSource: quote.Source,
		Status:      domain.OrderUnpaid,
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("client_email", input.ClientEmail).Msg("failed to create order")
		return nil, err
	}

	s.logger.Info().
		Str("reference", order.Reference).
		Str("type", string(order.Type)).
		Float64("final_price", order.FinalPrice).
		Msg("client order created")

	s.notifyAdminsOfOrder(ctx, order)
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, reference string) (*domain.ClientOrder, error) {
	return s.repo.FindByReference(ctx, reference)
}

func (s *OrderService) List(ctx context.Context, page, limit int) ([]*domain.ClientOrder, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return s.repo.List(ctx, page, limit)
}

// MarkPaid is driven by the payment webhook cascade; replays are harmless.
func (s *OrderService) MarkPaid(ctx context.Context, orderID string, at time.Time) error {
	if err := s.repo.MarkPaid(ctx, orderID, at); err != nil {
		return err
	}
	s.logger.Info().Str("order_id", orderID).Msg("order marked paid")
	return nil
}

func (s *OrderService) notifyAdminsOfOrder(ctx context.Context, order *domain.ClientOrder) {
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to resolve admins for order notification")
		return
	}
	inputs := make([]ports.NotificationInput, 0, len(admins))
	for _, admin := range admins {
		inputs = append(inputs, ports.NotificationInput{
			UserID:  admin.ID,
			Title:   "New client order",
			Message: fmt.Sprintf("%s ordered %s work for %.2f %s.", order.ClientName, order.Type, order.FinalPrice, order.Currency),
			Type:    domain.NotifySystem,
			Link:    "/orders/" + order.Reference,
		})
	}
	s.notifier.Notify(inputs...)
}
