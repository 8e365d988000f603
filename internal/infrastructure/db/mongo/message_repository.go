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
	collectionMessages = "messages"
	collectionFiles    = "files"
)

// MessageRepository implements ports.MessageRepository on MongoDB.
type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(collectionMessages)}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, m)
	return err
}

func (r *MessageRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"assignment_id": assignmentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureIndexes creates the chat thread index.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "assignment_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}

// FileRepository implements ports.FileRepository on MongoDB. Only metadata
// lives here; file bytes stay on disk under the upload directory.
type FileRepository struct {
	col *mongo.Collection
}

func NewFileRepository(db *mongo.Database) *FileRepository {
	return &FileRepository{col: db.Collection(collectionFiles)}
}

func (r *FileRepository) Create(ctx context.Context, f *domain.File) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if f.ID == "" {
		f.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, f)
	return err
}

func (r *FileRepository) FindByID(ctx context.Context, id string) (*domain.File, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var f domain.File
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FileRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]*domain.File, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"assignment_id": assignmentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.File
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
