package ports

import "context"

// WriterEarnings aggregates a writer's completed and paid work.
type WriterEarnings struct {
	WriterID   string  `json:"writer_id" bson:"_id"`
	WriterName string  `json:"writer_name" bson:"writer_name"`
	Completed  int64   `json:"completed" bson:"completed"`
	Paid       int64   `json:"paid" bson:"paid"`
	Earned     float64 `json:"earned" bson:"earned"`
	Outstanding float64 `json:"outstanding" bson:"outstanding"`
}

// StatusCount is one row of the assignment throughput report.
type StatusCount struct {
	Status string `json:"status" bson:"_id"`
	Count  int64  `json:"count" bson:"count"`
}

// MonthlyRevenue is one row of the revenue report.
type MonthlyRevenue struct {
	Month   string  `json:"month" bson:"_id"`
	Orders  int64   `json:"orders" bson:"orders"`
	Revenue float64 `json:"revenue" bson:"revenue"`
}

// ReportRepository runs the aggregate queries backing the reports module.
type ReportRepository interface {
	WriterEarnings(ctx context.Context) ([]WriterEarnings, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	MonthlyRevenue(ctx context.Context, months int) ([]MonthlyRevenue, error)
}

// ReportService exposes the aggregates to the API layer.
type ReportService interface {
	WriterEarnings(ctx context.Context) ([]WriterEarnings, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	MonthlyRevenue(ctx context.Context, months int) ([]MonthlyRevenue, error)
}
