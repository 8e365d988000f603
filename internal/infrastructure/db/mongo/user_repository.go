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
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository on MongoDB.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if existing, _ := r.FindByEmail(ctx, u.Email); existing != nil {
		return nil, domain.ErrUserExists
	}

	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) List(ctx context.Context, role string) ([]*domain.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	return r.find(ctx, filter)
}

// ListActiveWriters returns active writers covering the given subject domain.
// Writers with no declared domains take work from any domain.
func (r *UserRepository) ListActiveWriters(ctx context.Context, subjectDomain string) ([]*domain.User, error) {
	filter := bson.M{"role": domain.RoleWriter, "status": domain.UserActive}
	users, err := r.find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if subjectDomain == "" {
		return users, nil
	}
	// Domain matching is case-insensitive over a comma list; filter in
	// process rather than with a regex per writer.
	out := users[:0]
	for _, u := range users {
		if u.CoversDomain(subjectDomain) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepository) ListAdmins(ctx context.Context) ([]*domain.User, error) {
	return r.find(ctx, bson.M{"role": domain.RoleAdmin, "status": domain.UserActive})
}

func (r *UserRepository) Update(ctx context.Context, id string, patch ports.UserPatch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Domains != nil {
		set["domains"] = *patch.Domains
	}
	if patch.RatePerWord != nil {
		set["rate_per_word"] = *patch.RatePerWord
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	return r.updateByID(ctx, id, bson.M{"$set": set})
}

func (r *UserRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}})
}

func (r *UserRepository) SetPresence(ctx context.Context, id string, online bool, seenAt time.Time) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"online":    online,
		"last_seen": seenAt.UTC(),
	}})
}

func (r *UserRepository) SetTelegramChat(ctx context.Context, id, chatID string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"telegram_chat_id": chatID}})
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     domain.UserInactive,
		"online":     false,
		"updated_at": time.Now().UTC(),
	}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) find(ctx context.Context, filter bson.M) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
