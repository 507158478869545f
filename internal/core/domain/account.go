package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting classification of a ledger account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five recognised classifications.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account represents a ledger account within the core domain.
// This is the primary representation used by services.
type Account struct {
	AccountID    string          `json:"accountID"`    // Primary key (UUID)
	Code         string          `json:"code"`         // Display code, e.g. "1000"
	Name         string          `json:"name"`         // User-defined name
	AccountType  AccountType     `json:"accountType"`  // ASSET, LIABILITY, etc.
	CurrencyCode string          `json:"currencyCode"` // ISO currency code (NOT NULL)
	Description  string          `json:"description"`  // Nullable user description
	IsActive     bool            `json:"isActive"`     // Soft delete flag
	AuditFields
	Balance decimal.Decimal `json:"balance"` // Persisted running balance, moves only on posting
}
