package domain

import "github.com/shopspring/decimal"

// TrialBalanceRow is a single account row in the trial balance report.
// Exactly one of Debit/Credit is non-zero depending on which side the
// account's net balance falls.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// AccountAmount pairs an account with a report amount.
type AccountAmount struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
}

// ProfitAndLossReport summarises revenue versus expenses over a period.
type ProfitAndLossReport struct {
	Revenue       []AccountAmount
	Expenses      []AccountAmount
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	NetProfit     decimal.Decimal
}

// BalanceSheetReport summarises the accounting equation as of a date.
type BalanceSheetReport struct {
	Assets           []AccountAmount
	Liabilities      []AccountAmount
	Equity           []AccountAmount
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
}
