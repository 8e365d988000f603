package ports

import (
	"context"
	"time"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

// PaymentRepository is the append-only writer payout ledger.
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	ListByWriter(ctx context.Context, writerID string) ([]*domain.Payment, error)
	List(ctx context.Context) ([]*domain.Payment, error)
}

// TransactionRepository persists gateway checkout sessions keyed by reference.
type TransactionRepository interface {
	// Upsert inserts or replaces by reference, keeping webhook replays harmless.
	Upsert(ctx context.Context, t *domain.PaymentTransaction) error
	FindByReference(ctx context.Context, reference string) (*domain.PaymentTransaction, error)
	SetStatus(ctx context.Context, reference string, status domain.TransactionStatus, channel string, at time.Time) error
}

// CheckoutSession is what the gateway hands back on initialize.
type CheckoutSession struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// GatewayCharge is the gateway's view of a transaction on verify/webhook.
type GatewayCharge struct {
	Reference string
	Status    string
	Amount    float64 // major currency units
	Currency  string
	Channel   string
	OrderID   string // from metadata, optional
	PaidAt    time.Time
}

// PaymentGateway abstracts the external processor (Paystack).
type PaymentGateway interface {
	Initialize(ctx context.Context, email string, amount float64, reference string, metadata map[string]string) (*CheckoutSession, error)
	Verify(ctx context.Context, reference string) (*GatewayCharge, error)
	// ValidSignature checks the webhook HMAC over the raw body.
	ValidSignature(body []byte, signature string) bool
}

// WebhookDedup guards against duplicate webhook deliveries.
type WebhookDedup interface {
	IsDuplicate(ctx context.Context, event, reference string) (bool, error)
	Mark(ctx context.Context, event, reference string) error
}

// InitializeCheckoutInput starts a gateway checkout for a client order.
type InitializeCheckoutInput struct {
	Email   string
	Amount  float64
	OrderID string
}

// RecordPaymentInput is an admin-entered payout ledger entry.
type RecordPaymentInput struct {
	WriterID     string
	AssignmentID string // optional: also marks the assignment paid
	Amount       float64
	Method       string
	Reference    string
	Note         string
	PaidAt       time.Time
}

// PaymentService covers payout ledgering and gateway integration.
type PaymentService interface {
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*domain.Payment, error)
	ListPayments(ctx context.Context, writerID string) ([]*domain.Payment, error)
	InitializeCheckout(ctx context.Context, input InitializeCheckoutInput) (*CheckoutSession, error)
	VerifyTransaction(ctx context.Context, reference string) (*domain.PaymentTransaction, error)
	// HandleWebhook authenticates and applies a raw gateway event.
	// domain.ErrInvalidSignature means the caller must answer 401.
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}
