package domain

import (
	"errors"
	"time"
)

// TransactionStatus is the reconciliation state of a gateway transaction.
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrGateway             = errors.New("payment gateway error")
)

// Payment is an append-only ledger entry recording money paid to a writer.
type Payment struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	WriterID  string    `json:"writer_id" bson:"writer_id"`
	Amount    float64   `json:"amount" bson:"amount"`
	Method    string    `json:"method" bson:"method"`
	Reference string    `json:"reference,omitempty" bson:"reference,omitempty"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
	PaidAt    time.Time `json:"paid_at" bson:"paid_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// PaymentTransaction mirrors a gateway checkout session. Rows are keyed by the
// generated reference so webhook replays upsert idempotently.
type PaymentTransaction struct {
	ID        string            `json:"id" bson:"_id,omitempty"`
	Reference string            `json:"reference" bson:"reference"`
	OrderID   string            `json:"order_id,omitempty" bson:"order_id,omitempty"`
	Email     string            `json:"email" bson:"email"`
	Amount    float64           `json:"amount" bson:"amount"`
	Currency  string            `json:"currency" bson:"currency"`
	Status    TransactionStatus `json:"status" bson:"status"`
	Channel   string            `json:"channel,omitempty" bson:"channel,omitempty"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}
