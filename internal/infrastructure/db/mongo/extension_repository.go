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

const collectionExtensions = "extension_requests"

// ExtensionRepository implements ports.ExtensionRepository on MongoDB.
type ExtensionRepository struct {
	col *mongo.Collection
}

func NewExtensionRepository(db *mongo.Database) *ExtensionRepository {
	return &ExtensionRepository{col: db.Collection(collectionExtensions)}
}

func (r *ExtensionRepository) Create(ctx context.Context, req *domain.ExtensionRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if req.ID == "" {
		req.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, req)
	return err
}

func (r *ExtensionRepository) FindByID(ctx context.Context, id string) (*domain.ExtensionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var req domain.ExtensionRequest
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrExtensionNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *ExtensionRepository) ListPending(ctx context.Context) ([]*domain.ExtensionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"status": string(domain.ExtensionPending)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.ExtensionRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve matches only while the request is still pending; a second
// concurrent resolution matches nothing and reports the conflict.
func (r *ExtensionRepository) Resolve(ctx context.Context, id string, status domain.ExtensionStatus, adminResponse string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": string(domain.ExtensionPending)}
	update := bson.M{"$set": bson.M{
		"status":         string(status),
		"admin_response": adminResponse,
		"resolved_at":    at.UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrExtensionResolved
	}
	return nil
}
