package repositories

import (
	"context"
	"time"

	"github.com/corebooks/corebooks/internal/core/domain"
)

// ReportingRepository defines read operations backing the financial reports.
// All queries consider POSTED journals only.
type ReportingRepository interface {
	// GetTrialBalanceData returns per-account debit/credit totals as of a date.
	GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error)

	// GetProfitAndLossData returns revenue and expense account totals for a period.
	GetProfitAndLossData(ctx context.Context, from, to time.Time) (*domain.ProfitAndLossReport, error)

	// GetBalanceSheetData returns asset/liability/equity account totals as of a date.
	GetBalanceSheetData(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)
}
