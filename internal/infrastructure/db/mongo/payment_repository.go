package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
)

const (
	collectionPayments     = "payments"
	collectionTransactions = "payment_transactions"
)

// PaymentRepository is the append-only writer payout ledger.
type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(collectionPayments)}
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, p)
	return err
}

func (r *PaymentRepository) ListByWriter(ctx context.Context, writerID string) ([]*domain.Payment, error) {
	return r.find(ctx, bson.M{"writer_id": writerID})
}

func (r *PaymentRepository) List(ctx context.Context) ([]*domain.Payment, error) {
	return r.find(ctx, bson.M{})
}

func (r *PaymentRepository) find(ctx context.Context, filter bson.M) ([]*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "paid_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Payment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TransactionRepository persists gateway checkout sessions keyed by the
// generated reference, so webhook replays land on the same row.
type TransactionRepository struct {
	col *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{col: db.Collection(collectionTransactions)}
}

func (r *TransactionRepository) Upsert(ctx context.Context, t *domain.PaymentTransaction) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if t.ID == "" {
		t.ID = primitive.NewObjectID().Hex()
	}
	filter := bson.M{"reference": t.Reference}
	update := bson.M{"$set": bson.M{
		"order_id":   t.OrderID,
		"email":      t.Email,
		"amount":     t.Amount,
		"currency":   t.Currency,
		"status":     string(t.Status),
		"updated_at": t.UpdatedAt.UTC(),
	}, "$setOnInsert": bson.M{
		"_id":        t.ID,
		"created_at": t.CreatedAt.UTC(),
	}}

	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *TransactionRepository) FindByReference(ctx context.Context, reference string) (*domain.PaymentTransaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.PaymentTransaction
	err := r.col.FindOne(ctx, bson.M{"reference": reference}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) SetStatus(ctx context.Context, reference string, status domain.TransactionStatus, channel string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": string(status), "updated_at": at.UTC()}
	if channel != "" {
		set["channel"] = channel
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"reference": reference}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// EnsureIndexes creates the unique reference index on transactions.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "reference", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
