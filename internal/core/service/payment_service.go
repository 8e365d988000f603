package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// PaymentService covers the writer payout ledger and the Paystack
// integration: checkout initialize, verify, and webhook reconciliation.
type PaymentService struct {
	payments     ports.PaymentRepository
	transactions ports.TransactionRepository
	orders       ports.OrderService
	assignments  ports.AssignmentRepository
	gateway      ports.PaymentGateway
	dedup        ports.WebhookDedup
	notifier     ports.Notifier
	logger       zerolog.Logger
}

func NewPaymentService(
	payments ports.PaymentRepository,
	transactions ports.TransactionRepository,
	orders ports.OrderService,
	assignments ports.AssignmentRepository,
	gateway ports.PaymentGateway,
	dedup ports.WebhookDedup,
	notifier ports.Notifier,
	logger zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		payments:     payments,
		transactions: transactions,
		orders:       orders,
		assignments:  assignments,
		gateway:      gateway,
		dedup:        dedup,
		notifier:     notifier,
		logger:       logger,
	}
}

// RecordPayment appends a payout ledger entry. When the entry references an
// assignment it also flips the assignment to paid.
func (s *PaymentService) RecordPayment(ctx context.Context, input ports.RecordPaymentInput) (*domain.Payment, error) {
	if input.WriterID == "" || input.Amount <= 0 {
		return nil, fmt.Errorf("record payment: %w: writer and positive amount required", domain.ErrValidation)
	}

	now := time.Now().UTC()
	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}

	p := &domain.Payment{
		WriterID:  input.WriterID,
		Amount:    input.Amount,
		Method:    input.Method,
		Reference: input.Reference,
		Note:      input.Note,
		PaidAt:    paidAt,
		CreatedAt: now,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	if input.AssignmentID != "" {
		paid := domain.PaymentPaid
		status := domain.StatusPaid
		if err := s.assignments.UpdateByAdmin(ctx, input.AssignmentID, ports.AdminPatch{
			PaymentStatus: &paid,
			Status:        &status,
		}); err != nil {
			s.logger.Warn().Err(err).Str("assignment_id", input.AssignmentID).Msg("failed to mark assignment paid")
		}
	}

	s.notifier.Notify(ports.NotificationInput{
		UserID:  input.WriterID,
		Title:   "Payment received",
		Message: fmt.Sprintf("A payment of %.2f was recorded for you.", input.Amount),
		Type:    domain.NotifyPayment,
	})

	s.logger.Info().Str("writer_id", input.WriterID).Float64("amount", input.Amount).Msg("payment recorded")
	return p, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, writerID string) ([]*domain.Payment, error) {
	if writerID == "" {
		return s.payments.List(ctx)
	}
	return s.payments.ListByWriter(ctx, writerID)
}

// InitializeCheckout opens a gateway checkout session and persists a local
// pending transaction keyed by the generated reference.
func (s *PaymentService) InitializeCheckout(ctx context.Context, input ports.InitializeCheckoutInput) (*ports.CheckoutSession, error) {
	if input.Email == "" || input.Amount <= 0 {
		return nil, fmt.Errorf("initialize: %w: email and positive amount required", domain.ErrValidation)
	}

	reference := generateReference()
	metadata := map[string]string{}
	if input.OrderID != "" {
		metadata["order_id"] = input.OrderID
	}

	session, err := s.gateway.Initialize(ctx, input.Email, input.Amount, reference, metadata)
	if err != nil {
		s.logger.Error().Err(err).Str("reference", reference).Msg("gateway initialize failed")
		return nil, fmt.Errorf("initialize: %w: %v", domain.ErrGateway, err)
	}

	now := time.Now().UTC()
	txn := &domain.PaymentTransaction{
		Reference: session.Reference,
		OrderID:   input.OrderID,
		Email:     input.Email,
		Amount:    input.Amount,
		Currency:  "USD",
		Status:    domain.TransactionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.transactions.Upsert(ctx, txn); err != nil {
		return nil, err
	}

	s.logger.Info().Str("reference", session.Reference).Float64("amount", input.Amount).Msg("checkout initialized")
	return session, nil
}

// VerifyTransaction reconciles a local transaction from the gateway's view.
func (s *PaymentService) VerifyTransaction(ctx context.Context, reference string) (*domain.PaymentTransaction, error) {
	txn, err := s.transactions.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if txn.Status == domain.TransactionSuccess {
		return txn, nil
	}

	charge, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify: %w: %v", domain.ErrGateway, err)
	}

	if err := s.applyCharge(ctx, charge); err != nil {
		return nil, err
	}
	return s.transactions.FindByReference(ctx, reference)
}

// paystackEvent is the envelope Paystack posts to the webhook endpoint.
type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string  `json:"reference"`
		Status    string  `json:"status"`
		Amount    float64 `json:"amount"` // subunits
		Currency  string  `json:"currency"`
		Channel   string  `json:"channel"`
		PaidAt    string  `json:"paid_at"`
		Metadata  struct {
			OrderID string `json:"order_id"`
		} `json:"metadata"`
	} `json:"data"`
}

// HandleWebhook authenticates, deduplicates, and applies one gateway event.
// Must stay fast: heavy work is limited to two keyed writes.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.ValidSignature(body, signature) {
		s.logger.Warn().Msg("webhook rejected: bad signature")
		return domain.ErrInvalidSignature
	}

	var event paystackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("webhook: %w: malformed payload", domain.ErrValidation)
	}
	if event.Data.Reference == "" {
		return fmt.Errorf("webhook: %w: missing reference", domain.ErrValidation)
	}

	// Duplicate deliveries are acknowledged and skipped.
	if dup, err := s.dedup.IsDuplicate(ctx, event.Event, event.Data.Reference); err != nil {
		s.logger.Warn().Err(err).Msg("webhook dedup check failed, processing anyway")
	} else if dup {
		s.logger.Debug().Str("reference", event.Data.Reference).Str("event", event.Event).Msg("duplicate webhook skipped")
		return nil
	}

	if event.Event != "charge.success" {
		s.logger.Info().Str("event", event.Event).Msg("webhook event ignored")
		return nil
	}

	if err := s.dedup.Mark(ctx, event.Event, event.Data.Reference); err != nil {
		s.logger.Warn().Err(err).Msg("failed to set webhook dedup key")
	}

	paidAt, _ := time.Parse(time.RFC3339, event.Data.PaidAt)
	charge := &ports.GatewayCharge{
		Reference: event.Data.Reference,
		Status:    event.Data.Status,
		Amount:    event.Data.Amount / 100,
		Currency:  event.Data.Currency,
		Channel:   event.Data.Channel,
		OrderID:   event.Data.Metadata.OrderID,
		PaidAt:    paidAt,
	}
	return s.applyCharge(ctx, charge)
}

// applyCharge reconciles the local transaction and cascades a successful
// charge to its client order.
func (s *PaymentService) applyCharge(ctx context.Context, charge *ports.GatewayCharge) error {
	now := time.Now().UTC()

	// Only a terminal gateway verdict may settle the local transaction.
	// Pending, abandoned and other in-flight statuses stay pending so a
	// later verify or webhook can still resolve them.
	var status domain.TransactionStatus
	switch charge.Status {
	case "success":
		status = domain.TransactionSuccess
	case "failed", "reversed":
		status = domain.TransactionFailed
	default:
		status = domain.TransactionPending
	}
	if err := s.transactions.SetStatus(ctx, charge.Reference, status, charge.Channel, now); err != nil {
		return err
	}

	if status != domain.TransactionSuccess {
		s.logger.Info().Str("reference", charge.Reference).Str("status", charge.Status).Msg("transaction not successful")
		return nil
	}

	s.logger.Info().Str("reference", charge.Reference).Float64("amount", charge.Amount).Msg("transaction confirmed")

	orderID := charge.OrderID
	if orderID == "" {
		if txn, err := s.transactions.FindByReference(ctx, charge.Reference); err == nil {
			orderID = txn.OrderID
		}
	}
	if orderID != "" {
		if err := s.orders.MarkPaid(ctx, orderID, now); err != nil {
			s.logger.Warn().Err(err).Str("order_id", orderID).Msg("failed to mark order paid")
		}
	}
	return nil
}

// generateReference returns a unique transaction reference, SH-XXXXXXXXXXXX.
func generateReference() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("SH-%012X", time.Now().UnixNano()&0xFFFFFFFFFFFF)
	}
	return fmt.Sprintf("SH-%012X", b)
}
