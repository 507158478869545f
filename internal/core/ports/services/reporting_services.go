package services

import (
	"context"
	"time"

	"github.com/corebooks/corebooks/internal/core/domain"
)

// ReportingSvcFacade defines the financial report operations.
type ReportingSvcFacade interface {
	// TrialBalance generates a trial balance report as of a specific date.
	TrialBalance(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// ProfitAndLoss generates a profit and loss report for a period.
	ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.ProfitAndLossReport, error)

	// BalanceSheet generates a balance sheet report as of a specific date.
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)
}
