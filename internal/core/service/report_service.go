package service

import (
	"context"

	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// ReportService exposes the aggregate queries. It is a thin pass-through;
// the pipelines live in the repository.
type ReportService struct {
	repo ports.ReportRepository
}

func NewReportService(repo ports.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

func (s *ReportService) WriterEarnings(ctx context.Context) ([]ports.WriterEarnings, error) {
	return s.repo.WriterEarnings(ctx)
}

func (s *ReportService) StatusCounts(ctx context.Context) ([]ports.StatusCount, error) {
	return s.repo.StatusCounts(ctx)
}

func (s *ReportService) MonthlyRevenue(ctx context.Context, months int) ([]ports.MonthlyRevenue, error) {
	if months <= 0 || months > 36 {
		months = 12
	}
	return s.repo.MonthlyRevenue(ctx, months)
}
