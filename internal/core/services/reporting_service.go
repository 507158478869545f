package services

import (
	"context"
	"fmt"
	"time"

	"github.com/corebooks/corebooks/internal/core/domain"
	portsrepo "github.com/corebooks/corebooks/internal/core/ports/repositories"
	portssvc "github.com/corebooks/corebooks/internal/core/ports/services"
)

// reportingService produces financial reports over posted journals. The
// heavy lifting happens in SQL; this layer validates inputs and logs.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepository) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// TrialBalance generates a trial balance report as of a specific date.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate trial balance")
		return nil, fmt.Errorf("failed to generate trial balance: %w", err)
	}
	if rows == nil {
		rows = []domain.TrialBalanceRow{}
	}
	return rows, nil
}

// ProfitAndLoss generates a profit and loss report for a period.
func (s *reportingService) ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.ProfitAndLossReport, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("period end %s is before period start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	report, err := s.reportingRepo.GetProfitAndLossData(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate profit and loss report")
		return nil, fmt.Errorf("failed to generate profit and loss report: %w", err)
	}
	return report, nil
}

// BalanceSheet generates a balance sheet report as of a specific date.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	report, err := s.reportingRepo.GetBalanceSheetData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate balance sheet")
		return nil, fmt.Errorf("failed to generate balance sheet: %w", err)
	}
	return report, nil
}
