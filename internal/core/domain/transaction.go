package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a transaction line is a Debit or a Credit.
// A line carries exactly one positive amount and one side; there are no
// separate nullable debit/credit columns.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Opposite returns the flipped side, used when deriving reversal lines.
func (t TransactionType) Opposite() TransactionType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// Transaction represents a single line item within a Journal, affecting one account.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`   // Primary key (UUID)
	JournalID       string          `json:"journalID"`       // FK -> Journal.journalID
	AccountID       string          `json:"accountID"`       // FK -> Account.accountID
	Amount          decimal.Decimal `json:"amount"`          // Always positive
	TransactionType TransactionType `json:"transactionType"` // DEBIT or CREDIT
	CurrencyCode    string          `json:"currencyCode"`    // Must match the journal currency
	Notes           string          `json:"notes"`           // Optional line description
	TransactionDate time.Time       `json:"transactionDate"`
	AuditFields
	RunningBalance decimal.Decimal `json:"runningBalance"` // Account balance after this line posted
}

// Validate checks the line-local invariants: a referenced account, a strictly
// positive amount, and a recognised side.
func (t *Transaction) Validate() error {
	if t.AccountID == "" {
		return fmt.Errorf("transaction line must reference an account")
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("transaction amount must be positive for account %s", t.AccountID)
	}
	if t.TransactionType != Debit && t.TransactionType != Credit {
		return fmt.Errorf("transaction type must be DEBIT or CREDIT, got %q", t.TransactionType)
	}
	return nil
}
