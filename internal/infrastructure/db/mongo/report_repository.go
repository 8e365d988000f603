package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// ReportRepository runs the admin report aggregations across the assignment
// and order collections.
type ReportRepository struct {
	assignments *mongo.Collection
	orders      *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{
		assignments: db.Collection(collectionAssignments),
		orders:      db.Collection(collectionOrders),
	}
}

// WriterEarnings groups delivered assignments per writer. Earned counts only
// paid work; outstanding is approved-but-unpaid.
func (r *ReportRepository) WriterEarnings(ctx context.Context) ([]ports.WriterEarnings, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	paid := bson.M{"$eq": bson.A{"$payment_status", string(domain.PaymentPaid)}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"writer_id": bson.M{"$ne": ""},
			"status": bson.M{"$in": bson.A{
				string(domain.StatusCompleted),
				string(domain.StatusPaid),
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$writer_id",
			"completed": bson.M{"$sum": 1},
			"paid":      bson.M{"$sum": bson.M{"$cond": bson.A{paid, 1, 0}}},
			"earned":    bson.M{"$sum": bson.M{"$cond": bson.A{paid, "$amount", 0}}},
			"outstanding": bson.M{"$sum": bson.M{
				"$cond": bson.A{paid, 0, "$amount"},
			}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "writer",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"writer_name": bson.M{"$ifNull": bson.A{
				bson.M{"$arrayElemAt": bson.A{"$writer.name", 0}}, "",
			}},
		}}},
		{{Key: "$project", Value: bson.M{"writer": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "earned", Value: -1}}}},
	}

	cur, err := r.assignments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ports.WriterEarnings
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportRepository) StatusCounts(ctx context.Context) ([]ports.StatusCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	cur, err := r.assignments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ports.StatusCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MonthlyRevenue buckets paid client orders by payment month, newest first.
func (r *ReportRepository) MonthlyRevenue(ctx context.Context, months int) ([]ports.MonthlyRevenue, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	since := time.Now().UTC().AddDate(0, -months, 0)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":  string(domain.OrderPaid),
			"paid_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m",
				"date":   "$paid_at",
			}},
			"orders":  bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$final_price"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	}

	cur, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ports.MonthlyRevenue
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
