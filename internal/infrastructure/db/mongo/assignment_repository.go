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

const collectionAssignments = "assignments"

// AssignmentRepository implements ports.AssignmentRepository on MongoDB.
// The pick and release operations are single filtered updates, so the
// database is the arbiter of every claim race.
type AssignmentRepository struct {
	col *mongo.Collection
}

func NewAssignmentRepository(db *mongo.Database) *AssignmentRepository {
	return &AssignmentRepository{col: db.Collection(collectionAssignments)}
}

func (r *AssignmentRepository) Create(ctx context.Context, a *domain.Assignment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if a.ID == "" {
		a.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*domain.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Assignment
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAssignmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListBoard returns unassigned pending assignments visible to one writer:
// domain matches (or the assignment has none) and the writer is not
// denylisted. Ordered by deadline ascending, then newest first.
func (r *AssignmentRepository) ListBoard(ctx context.Context, writerID string, writerDomains []string) ([]*domain.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"writer_id":          "",
		"status":             string(domain.StatusPending),
		"ineligible_writers": bson.M{"$ne": writerID},
	}
	if len(writerDomains) > 0 {
		filter["$or"] = bson.A{
			bson.M{"domain": ""},
			bson.M{"domain": bson.M{"$exists": false}},
			bson.M{"domain": bson.M{"$in": writerDomains}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "deadline", Value: 1}, {Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Assignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AssignmentRepository) List(ctx context.Context, filter ports.ListAssignmentsFilter) ([]*domain.Assignment, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.WriterID != "" {
		q["writer_id"] = filter.WriterID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.Domain != "" {
		q["domain"] = filter.Domain
	}

	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []*domain.Assignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Claim is the compare-and-swap pick. The filter re-checks every
// precondition at write time; when another writer got there first the filter
// matches nothing and the caller gets domain.ErrAlreadyPicked.
func (r *AssignmentRepository) Claim(ctx context.Context, id, writerID string, writerDeadline time.Time, rate, amount float64, pickedAt time.Time) (*domain.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":                id,
		"writer_id":          "",
		"status":             string(domain.StatusPending),
		"ineligible_writers": bson.M{"$ne": writerID},
	}
	update := bson.M{"$set": bson.M{
		"writer_id":       writerID,
		"writer_deadline": writerDeadline.UTC(),
		"rate_per_word":   rate,
		"amount":          amount,
		"status":          string(domain.StatusInProgress),
		"picked_at":       pickedAt.UTC(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a domain.Assignment
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAlreadyPicked
		}
		return nil, err
	}
	return &a, nil
}

// Release puts a forfeited assignment back on the job board and appends the
// displaced writer to the denylist. Matches only while writerID still holds
// the assignment, so a concurrent submit or re-pick wins cleanly.
func (r *AssignmentRepository) Release(ctx context.Context, id, writerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "writer_id": writerID}
	update := bson.M{
		"$set": bson.M{
			"writer_id":           "",
			"status":              string(domain.StatusPending),
			"extension_requested": false,
			"extension_reason":    "",
		},
		"$unset":    bson.M{"picked_at": "", "writer_deadline": "", "submitted_amount": ""},
		"$addToSet": bson.M{"ineligible_writers": writerID},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

// ListOverdue finds assignments whose writer deadline has passed while the
// client deadline still stands.
func (r *AssignmentRepository) ListOverdue(ctx context.Context, now time.Time) ([]*domain.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"writer_id":       bson.M{"$ne": ""},
		"writer_deadline": bson.M{"$lt": now.UTC()},
		"status": bson.M{"$in": bson.A{
			string(domain.StatusPending),
			string(domain.StatusInProgress),
		}},
		"deadline": bson.M{"$gt": now.UTC()},
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Assignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AssignmentRepository) UpdateByWriter(ctx context.Context, id string, patch ports.WriterPatch, submittedAt *time.Time) error {
	set := bson.M{}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.SubmittedAmount != nil {
		set["submitted_amount"] = *patch.SubmittedAmount
		set["amount_approved"] = false
	}
	if submittedAt != nil {
		set["submitted_at"] = submittedAt.UTC()
	}
	if len(set) == 0 {
		return nil
	}
	return r.updateByID(ctx, id, bson.M{"$set": set})
}

func (r *AssignmentRepository) UpdateByAdmin(ctx context.Context, id string, patch ports.AdminPatch) error {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Domain != nil {
		set["domain"] = *patch.Domain
	}
	if patch.WordCountMin != nil {
		set["word_count_min"] = *patch.WordCountMin
	}
	if patch.WordCountMax != nil {
		set["word_count_max"] = *patch.WordCountMax
	}
	if patch.Amount != nil {
		set["amount"] = *patch.Amount
	}
	if patch.Deadline != nil {
		set["deadline"] = patch.Deadline.UTC()
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
		if *patch.Status == domain.StatusCompleted || *patch.Status == domain.StatusPaid {
			set["completed_at"] = time.Now().UTC()
		}
	}
	if patch.PaymentStatus != nil {
		set["payment_status"] = string(*patch.PaymentStatus)
	}
	if len(set) == 0 {
		return nil
	}
	return r.updateByID(ctx, id, bson.M{"$set": set})
}

// ApproveAmount promotes the writer's proposal into the real amount and
// clears the proposal in the same update.
func (r *AssignmentRepository) ApproveAmount(ctx context.Context, id string, amount float64) error {
	return r.updateByID(ctx, id, bson.M{
		"$set":   bson.M{"amount": amount, "amount_approved": true},
		"$unset": bson.M{"submitted_amount": ""},
	})
}

func (r *AssignmentRepository) SetWriterDeadline(ctx context.Context, id string, deadline time.Time, clearExtension bool) error {
	set := bson.M{"writer_deadline": deadline.UTC()}
	if clearExtension {
		set["extension_requested"] = false
		set["extension_reason"] = ""
	}
	return r.updateByID(ctx, id, bson.M{"$set": set})
}

func (r *AssignmentRepository) SetExtensionFlags(ctx context.Context, id string, requested bool, reason string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"extension_requested": requested,
		"extension_reason":    reason,
	}})
}

func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignmentRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes backing the job board and sweep queries.
func (r *AssignmentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "writer_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "deadline", Value: 1}}},
		{Keys: bson.D{{Key: "writer_deadline", Value: 1}}},
		{Keys: bson.D{{Key: "domain", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
