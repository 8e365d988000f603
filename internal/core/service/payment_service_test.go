package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubPaymentRepo struct {
	created []*domain.Payment
}

func (r *stubPaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	p.ID = fmt.Sprintf("pay_%d", len(r.created)+1)
	clone := *p
	r.created = append(r.created, &clone)
	return nil
}

func (r *stubPaymentRepo) ListByWriter(_ context.Context, writerID string) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, p := range r.created {
		if p.WriterID == writerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPaymentRepo) List(_ context.Context) ([]*domain.Payment, error) {
	return r.created, nil
}

type stubTransactionRepo struct {
	byRef map[string]*domain.PaymentTransaction
}

func newStubTransactionRepo() *stubTransactionRepo {
	return &stubTransactionRepo{byRef: make(map[string]*domain.PaymentTransaction)}
}

func (r *stubTransactionRepo) Upsert(_ context.Context, t *domain.PaymentTransaction) error {
	clone := *t
	r.byRef[t.Reference] = &clone
	return nil
}

func (r *stubTransactionRepo) FindByReference(_ context.Context, reference string) (*domain.PaymentTransaction, error) {
	t, ok := r.byRef[reference]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTransactionRepo) SetStatus(_ context.Context, reference string, status domain.TransactionStatus, channel string, at time.Time) error {
	t, ok := r.byRef[reference]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.Status = status
	t.Channel = channel
	t.UpdatedAt = at
	return nil
}

// stubOrderService only records MarkPaid calls; the rest is unused here.
type stubOrderService struct {
	paidOrders []string
}

func (s *stubOrderService) Create(_ context.Context, _ ports.CreateOrderInput) (*domain.ClientOrder, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrderService) Get(_ context.Context, _ string) (*domain.ClientOrder, error) {
	return nil, domain.ErrOrderNotFound
}

func (s *stubOrderService) List(_ context.Context, _, _ int) ([]*domain.ClientOrder, int64, error) {
	return nil, 0, nil
}

func (s *stubOrderService) MarkPaid(_ context.Context, orderID string, _ time.Time) error {
	s.paidOrders = append(s.paidOrders, orderID)
	return nil
}

// stubGateway accepts only the signature "valid" and returns canned results.
type stubGateway struct {
	verifyCharge *ports.GatewayCharge
	verifyCalls  int
	initErr      error
}

func (g *stubGateway) Initialize(_ context.Context, email string, amount float64, reference string, _ map[string]string) (*ports.CheckoutSession, error) {
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &ports.CheckoutSession{
		AuthorizationURL: "https://checkout.example/" + reference,
		AccessCode:       "ac_" + reference,
		Reference:        reference,
	}, nil
}

func (g *stubGateway) Verify(_ context.Context, reference string) (*ports.GatewayCharge, error) {
	g.verifyCalls++
	if g.verifyCharge == nil {
		return nil, errors.New("unknown reference")
	}
	return g.verifyCharge, nil
}

func (g *stubGateway) ValidSignature(_ []byte, signature string) bool {
	return signature == "valid"
}

type stubDedup struct {
	seen map[string]bool
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]bool)}
}

func (d *stubDedup) IsDuplicate(_ context.Context, event, reference string) (bool, error) {
	return d.seen[event+":"+reference], nil
}

func (d *stubDedup) Mark(_ context.Context, event, reference string) error {
	d.seen[event+":"+reference] = true
	return nil
}

type paymentFixture struct {
	payments     *stubPaymentRepo
	transactions *stubTransactionRepo
	orders       *stubOrderService
	assignments  *stubAssignmentRepo
	gateway      *stubGateway
	dedup        *stubDedup
	notifier     *capturingNotifier
	svc          *PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		payments:     &stubPaymentRepo{},
		transactions: newStubTransactionRepo(),
		orders:       &stubOrderService{},
		assignments:  newStubAssignmentRepo(),
		gateway:      &stubGateway{},
		dedup:        newStubDedup(),
		notifier:     &capturingNotifier{},
	}
	f.svc = NewPaymentService(f.payments, f.transactions, f.orders, f.assignments, f.gateway, f.dedup, f.notifier, discardLogger)
	return f
}

// ---------------------------------------------------------------------------
// Payout ledger tests
// ---------------------------------------------------------------------------

func TestPaymentService_RecordPayment_Success(t *testing.T) {
	f := newPaymentFixture()

	p, err := f.svc.RecordPayment(context.Background(), ports.RecordPaymentInput{
		WriterID: "w1",
		Amount:   120.50,
		Method:   "bank_transfer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" {
		t.Error("expected a ledger entry ID")
	}
	if p.PaidAt.IsZero() {
		t.Error("PaidAt must default to now")
	}
	if len(f.notifier.sentTo("w1")) != 1 {
		t.Errorf("expected 1 notification for the writer, got %d", len(f.notifier.sentTo("w1")))
	}
}

func TestPaymentService_RecordPayment_Validation(t *testing.T) {
	f := newPaymentFixture()

	if _, err := f.svc.RecordPayment(context.Background(), ports.RecordPaymentInput{Amount: 10}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing writer: expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.RecordPayment(context.Background(), ports.RecordPaymentInput{WriterID: "w1", Amount: 0}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero amount: expected ErrValidation, got %v", err)
	}
}

func TestPaymentService_RecordPayment_MarksAssignmentPaid(t *testing.T) {
	f := newPaymentFixture()
	a := &domain.Assignment{
		Title:  "Essay",
		Status: domain.StatusCompleted, PaymentStatus: domain.PaymentUnpaid,
		WriterID: "w1",
	}
	if err := f.assignments.Create(context.Background(), a); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	if _, err := f.svc.RecordPayment(context.Background(), ports.RecordPaymentInput{
		WriterID: "w1", AssignmentID: a.ID, Amount: 200, Method: "paypal",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := f.assignments.byID[a.ID]
	if stored.PaymentStatus != domain.PaymentPaid {
		t.Errorf("expected assignment payment status paid, got %q", stored.PaymentStatus)
	}
	if stored.Status != domain.StatusPaid {
		t.Errorf("expected assignment status paid, got %q", stored.Status)
	}
}

func TestPaymentService_ListPayments_ScopedByWriter(t *testing.T) {
	f := newPaymentFixture()
	_, _ = f.svc.RecordPayment(context.Background(), ports.RecordPaymentInput{WriterID: "w1", Amount: 10})
	_, _ = f.svc.RecordPayment(context.Background(), ports.RecordPaymentInput{WriterID: "w2", Amount: 20})

	all, err := f.svc.ListPayments(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unscoped: expected 2 entries, got %d", len(all))
	}

	own, err := f.svc.ListPayments(context.Background(), "w1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(own) != 1 || own[0].WriterID != "w1" {
		t.Errorf("scoped: expected only w1's entries, got %+v", own)
	}
}

// ---------------------------------------------------------------------------
// Checkout tests
// ---------------------------------------------------------------------------

func TestPaymentService_InitializeCheckout_PersistsPendingTransaction(t *testing.T) {
	f := newPaymentFixture()

	session, err := f.svc.InitializeCheckout(context.Background(), ports.InitializeCheckoutInput{
		Email:   "client@example.com",
		Amount:  99.50,
		OrderID: "ord_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(session.Reference, "SH-") {
		t.Errorf("reference format wrong: %s", session.Reference)
	}

	txn, err := f.transactions.FindByReference(context.Background(), session.Reference)
	if err != nil {
		t.Fatalf("transaction not persisted: %v", err)
	}
	if txn.Status != domain.TransactionPending {
		t.Errorf("expected pending transaction, got %q", txn.Status)
	}
	if txn.OrderID != "ord_1" || txn.Amount != 99.50 {
		t.Errorf("transaction fields wrong: %+v", txn)
	}
}

func TestPaymentService_InitializeCheckout_GatewayFailure(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.initErr = errors.New("paystack down")

	_, err := f.svc.InitializeCheckout(context.Background(), ports.InitializeCheckoutInput{
		Email: "client@example.com", Amount: 10,
	})
	if !errors.Is(err, domain.ErrGateway) {
		t.Errorf("expected ErrGateway, got %v", err)
	}
	if len(f.transactions.byRef) != 0 {
		t.Error("no transaction must be persisted when the gateway fails")
	}
}

func TestPaymentService_VerifyTransaction_SuccessShortCircuits(t *testing.T) {
	f := newPaymentFixture()
	_ = f.transactions.Upsert(context.Background(), &domain.PaymentTransaction{
		Reference: "SH-AAA", Status: domain.TransactionSuccess,
	})

	txn, err := f.svc.VerifyTransaction(context.Background(), "SH-AAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Status != domain.TransactionSuccess {
		t.Errorf("expected success, got %q", txn.Status)
	}
	if f.gateway.verifyCalls != 0 {
		t.Errorf("already-confirmed transaction must not hit the gateway, calls=%d", f.gateway.verifyCalls)
	}
}

func TestPaymentService_VerifyTransaction_AppliesGatewayView(t *testing.T) {
	f := newPaymentFixture()
	_ = f.transactions.Upsert(context.Background(), &domain.PaymentTransaction{
		Reference: "SH-BBB", OrderID: "ord_9", Status: domain.TransactionPending,
	})
	f.gateway.verifyCharge = &ports.GatewayCharge{
		Reference: "SH-BBB", Status: "success", Amount: 50, Channel: "card",
	}

	txn, err := f.svc.VerifyTransaction(context.Background(), "SH-BBB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Status != domain.TransactionSuccess {
		t.Errorf("expected success after verify, got %q", txn.Status)
	}
	if len(f.orders.paidOrders) != 1 || f.orders.paidOrders[0] != "ord_9" {
		t.Errorf("expected order ord_9 marked paid, got %v", f.orders.paidOrders)
	}
}

func TestPaymentService_VerifyTransaction_PendingChargeStaysPending(t *testing.T) {
	f := newPaymentFixture()
	_ = f.transactions.Upsert(context.Background(), &domain.PaymentTransaction{
		Reference: "SH-EEE", OrderID: "ord_3", Status: domain.TransactionPending,
	})
	f.gateway.verifyCharge = &ports.GatewayCharge{
		Reference: "SH-EEE", Status: "pending", Amount: 50, Channel: "card",
	}

	txn, err := f.svc.VerifyTransaction(context.Background(), "SH-EEE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The gateway has not settled the charge yet; only failed and reversed
	// are terminal, everything else must stay open for a later retry.
	if txn.Status != domain.TransactionPending {
		t.Errorf("in-flight charge must stay pending, got %q", txn.Status)
	}
	if len(f.orders.paidOrders) != 0 {
		t.Errorf("no order must be marked paid, got %v", f.orders.paidOrders)
	}
}

func TestPaymentService_VerifyTransaction_AbandonedChargeStaysPending(t *testing.T) {
	f := newPaymentFixture()
	_ = f.transactions.Upsert(context.Background(), &domain.PaymentTransaction{
		Reference: "SH-FFF", Status: domain.TransactionPending,
	})
	f.gateway.verifyCharge = &ports.GatewayCharge{
		Reference: "SH-FFF", Status: "abandoned", Channel: "card",
	}

	txn, err := f.svc.VerifyTransaction(context.Background(), "SH-FFF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Status != domain.TransactionPending {
		t.Errorf("abandoned checkout must stay pending, got %q", txn.Status)
	}
}

func TestPaymentService_VerifyTransaction_ReversedChargeFails(t *testing.T) {
	f := newPaymentFixture()
	_ = f.transactions.Upsert(context.Background(), &domain.PaymentTransaction{
		Reference: "SH-GGG", Status: domain.TransactionPending,
	})
	f.gateway.verifyCharge = &ports.GatewayCharge{
		Reference: "SH-GGG", Status: "reversed", Channel: "card",
	}

	txn, err := f.svc.VerifyTransaction(context.Background(), "SH-GGG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txn.Status != domain.TransactionFailed {
		t.Errorf("reversed charge must settle as failed, got %q", txn.Status)
	}
	if len(f.orders.paidOrders) != 0 {
		t.Errorf("no order must be marked paid, got %v", f.orders.paidOrders)
	}
}

// ---------------------------------------------------------------------------
// Webhook tests
// ---------------------------------------------------------------------------

func successEvent(reference, orderID string) []byte {
	return []byte(fmt.Sprintf(`{
		"event": "charge.success",
		"data": {
			"reference": %q,
			"status": "success",
			"amount": 9950,
			"currency": "USD",
			"channel": "card",
			"metadata": {"order_id": %q}
		}
	}`, reference, orderID))
}

func TestPaymentService_HandleWebhook_InvalidSignature(t *testing.T) {
	f := newPaymentFixture()
	_ = f.transactions.Upsert(context.Background(), &domain.PaymentTransaction{
		Reference: "SH-CCC", Status: domain.TransactionPending,
	})

	err := f.svc.HandleWebhook(context.Background(), successEvent("SH-CCC", ""), "forged")
	if !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	// A rejected webhook must leave no trace.
	txn, _ := f.transactions.FindByReference(context.Background(), "SH-CCC")
	if txn.Status != domain.TransactionPending {
		t.Errorf("transaction must stay pending after rejected webhook, got %q", txn.Status)
	}
	if len(f.orders.paidOrders) != 0 {
		t.Error("no order must be marked paid after rejected webhook")
	}
}

func TestPaymentService_HandleWebhook_ChargeSuccessCascades(t *testing.T) {
	f := newPaymentFixture()
	_ = f.transactions.Upsert(context.Background(), &domain.PaymentTransaction{
		Reference: "SH-DDD", Status: domain.TransactionPending,
	})

	if err := f.svc.HandleWebhook(context.Background(), successEvent("SH-DDD", "ord_7"), "valid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	txn, _ := f.transactions.FindByReference(context.Background(), "SH-DDD")
	if txn.Status != domain.TransactionSuccess {
		t.Errorf("expected success, got %q", txn.Status)
	}
	if txn.Channel != "card" {
		t.Errorf("expected channel card, got %q", txn.Channel)
	}
	if len(f.orders.paidOrders) != 1 || f.orders.paidOrders[0] != "ord_7" {
		t.Errorf("expected order ord_7 marked paid, got %v", f.orders.paidOrders)
	}
}

func TestPaymentService_HandleWebhook_DuplicateSkipped(t *testing.T) {
	f := newPaymentFixture()
	_ = f.transactions.Upsert(context.Background(), &domain.PaymentTransaction{
		Reference: "SH-EEE", Status: domain.TransactionPending,
	})

	body := successEvent("SH-EEE", "ord_8")
	if err := f.svc.HandleWebhook(context.Background(), body, "valid"); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := f.svc.HandleWebhook(context.Background(), body, "valid"); err != nil {
		t.Fatalf("replay must be acknowledged, got %v", err)
	}

	if len(f.orders.paidOrders) != 1 {
		t.Errorf("replay must not re-apply the charge: %d MarkPaid calls", len(f.orders.paidOrders))
	}
}

func TestPaymentService_HandleWebhook_OtherEventsIgnored(t *testing.T) {
	f := newPaymentFixture()
	_ = f.transactions.Upsert(context.Background(), &domain.PaymentTransaction{
		Reference: "SH-FFF", Status: domain.TransactionPending,
	})

	body := []byte(`{"event": "transfer.success", "data": {"reference": "SH-FFF"}}`)
	if err := f.svc.HandleWebhook(context.Background(), body, "valid"); err != nil {
		t.Fatalf("ignored events must still be acknowledged, got %v", err)
	}

	txn, _ := f.transactions.FindByReference(context.Background(), "SH-FFF")
	if txn.Status != domain.TransactionPending {
		t.Errorf("ignored event must not change state, got %q", txn.Status)
	}
}

func TestPaymentService_HandleWebhook_MalformedPayload(t *testing.T) {
	f := newPaymentFixture()

	if err := f.svc.HandleWebhook(context.Background(), []byte("{broken"), "valid"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for malformed payload, got %v", err)
	}
	if err := f.svc.HandleWebhook(context.Background(), []byte(`{"event":"charge.success","data":{}}`), "valid"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for missing reference, got %v", err)
	}
}

func TestPaymentService_HandleWebhook_FailedChargeNoCascade(t *testing.T) {
	f := newPaymentFixture()
	_ = f.transactions.Upsert(context.Background(), &domain.PaymentTransaction{
		Reference: "SH-GGG", Status: domain.TransactionPending,
	})

	// Failed charge: reconciled but no cascade.
	body := []byte(`{"event": "charge.success", "data": {"reference": "SH-GGG", "status": "failed", "amount": 9950}}`)
	if err := f.svc.HandleWebhook(context.Background(), body, "valid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	txn, _ := f.transactions.FindByReference(context.Background(), "SH-GGG")
	if txn.Status != domain.TransactionFailed {
		t.Errorf("expected failed, got %q", txn.Status)
	}
	if len(f.orders.paidOrders) != 0 {
		t.Error("failed charge must not mark any order paid")
	}
}
