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

const collectionOrders = "client_orders"

// OrderRepository implements ports.OrderRepository on MongoDB.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.ClientOrder) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if o.ID == "" {
		o.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, o)
	return err
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.ClientOrder, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *OrderRepository) FindByReference(ctx context.Context, reference string) (*domain.ClientOrder, error) {
	return r.findOne(ctx, bson.M{"reference": reference})
}

func (r *OrderRepository) List(ctx context.Context, page, limit int) ([]*domain.ClientOrder, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*domain.ClientOrder
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// MarkPaid is idempotent: re-applying on an already-paid order keeps the
// original paid_at.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": string(domain.OrderUnpaid)}
	update := bson.M{"$set": bson.M{
		"status":  string(domain.OrderPaid),
		"paid_at": at.UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Already paid or unknown; distinguish for the caller's logs.
		if n, cErr := r.col.CountDocuments(ctx, bson.M{"_id": id}); cErr == nil && n > 0 {
			return nil
		}
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.M) (*domain.ClientOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var o domain.ClientOrder
	err := r.col.FindOne(ctx, filter).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}
