package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/corebooks/corebooks/internal/core/domain"
	portsrepo "github.com/corebooks/corebooks/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface.
// Every query considers POSTED journals only; a reversed pair cancels out
// because the original's status flips to REVERSED and the reversal journal
// carries original_journal_id.
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository.
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetTrialBalanceData returns per-account net balances as of a date, with the
// net placed on the debit or credit side depending on its sign.
func (r *reportingRepository) GetTrialBalanceData(ctx context.Context, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.account_id,
			a.code,
			a.name,
			a.account_type,
			SUM(CASE WHEN t.transaction_type = 'DEBIT' THEN t.amount ELSE -t.amount END) AS net
		FROM transactions t
		JOIN accounts a ON t.account_id = a.account_id
		JOIN journals j ON t.journal_id = j.journal_id
		WHERE j.journal_date <= $1
			AND j.status = 'POSTED'
			AND j.original_journal_id IS NULL
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code
	`

	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying trial balance data: %w", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		var net decimal.Decimal

		if err := rows.Scan(
			&row.AccountID,
			&row.AccountCode,
			&row.AccountName,
			&row.AccountType,
			&net,
		); err != nil {
			return nil, fmt.Errorf("error scanning trial balance row: %w", err)
		}

		if net.IsNegative() {
			row.Credit = net.Abs()
		} else {
			row.Debit = net
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}
	return result, nil
}

// GetProfitAndLossData returns revenue and expense totals for a period.
// Revenue is reported credit-positive, expenses debit-positive.
func (r *reportingRepository) GetProfitAndLossData(ctx context.Context, from, to time.Time) (*domain.ProfitAndLossReport, error) {
	query := `
		SELECT
			a.account_type,
			a.account_id,
			a.code,
			a.name,
			SUM(CASE WHEN t.transaction_type = 'DEBIT' THEN t.amount ELSE -t.amount END) AS net
		FROM transactions t
		JOIN accounts a ON t.account_id = a.account_id
		JOIN journals j ON t.journal_id = j.journal_id
		WHERE j.journal_date BETWEEN $1 AND $2
			AND j.status = 'POSTED'
			AND j.original_journal_id IS NULL
			AND a.account_type IN ('REVENUE', 'EXPENSE')
		GROUP BY a.account_type, a.account_id, a.code, a.name
		ORDER BY a.code
	`

	rows, err := r.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying profit and loss data: %w", err)
	}
	defer rows.Close()

	report := &domain.ProfitAndLossReport{
		Revenue:  []domain.AccountAmount{},
		Expenses: []domain.AccountAmount{},
	}

	for rows.Next() {
		var accountType domain.AccountType
		var entry domain.AccountAmount
		var net decimal.Decimal

		if err := rows.Scan(&accountType, &entry.AccountID, &entry.AccountCode, &entry.Name, &net); err != nil {
			return nil, fmt.Errorf("error scanning profit and loss row: %w", err)
		}

		switch accountType {
		case domain.Revenue:
			entry.Amount = net.Neg() // Revenue accumulates on the credit side
			report.Revenue = append(report.Revenue, entry)
			report.TotalRevenue = report.TotalRevenue.Add(entry.Amount)
		case domain.Expense:
			entry.Amount = net
			report.Expenses = append(report.Expenses, entry)
			report.TotalExpenses = report.TotalExpenses.Add(entry.Amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profit and loss rows: %w", err)
	}

	report.NetProfit = report.TotalRevenue.Sub(report.TotalExpenses)
	return report, nil
}

// GetBalanceSheetData returns asset, liability and equity totals as of a date.
// Assets are reported debit-positive, liabilities and equity credit-positive.
func (r *reportingRepository) GetBalanceSheetData(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	query := `
		SELECT
			a.account_type,
			a.account_id,
			a.code,
			a.name,
			SUM(CASE WHEN t.transaction_type = 'DEBIT' THEN t.amount ELSE -t.amount END) AS net
		FROM transactions t
		JOIN accounts a ON t.account_id = a.account_id
		JOIN journals j ON t.journal_id = j.journal_id
		WHERE j.journal_date <= $1
			AND j.status = 'POSTED'
			AND j.original_journal_id IS NULL
			AND a.account_type IN ('ASSET', 'LIABILITY', 'EQUITY')
		GROUP BY a.account_type, a.account_id, a.code, a.name
		ORDER BY a.code
	`

	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying balance sheet data: %w", err)
	}
	defer rows.Close()

	report := &domain.BalanceSheetReport{
		Assets:      []domain.AccountAmount{},
		Liabilities: []domain.AccountAmount{},
		Equity:      []domain.AccountAmount{},
	}

	for rows.Next() {
		var accountType domain.AccountType
		var entry domain.AccountAmount
		var net decimal.Decimal

		if err := rows.Scan(&accountType, &entry.AccountID, &entry.AccountCode, &entry.Name, &net); err != nil {
			return nil, fmt.Errorf("error scanning balance sheet row: %w", err)
		}

		switch accountType {
		case domain.Asset:
			entry.Amount = net
			report.Assets = append(report.Assets, entry)
			report.TotalAssets = report.TotalAssets.Add(entry.Amount)
		case domain.Liability:
			entry.Amount = net.Neg()
			report.Liabilities = append(report.Liabilities, entry)
			report.TotalLiabilities = report.TotalLiabilities.Add(entry.Amount)
		case domain.Equity:
			entry.Amount = net.Neg()
			report.Equity = append(report.Equity, entry)
			report.TotalEquity = report.TotalEquity.Add(entry.Amount)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance sheet rows: %w", err)
	}
	return report, nil
}
