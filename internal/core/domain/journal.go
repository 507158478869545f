package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal represents a single, balanced financial event composed of multiple
// transaction lines. The backend is the authoritative enforcement point for
// both the balance invariant and the status lifecycle.
type Journal struct {
	JournalID    string      `json:"journalID"`   // Primary key (UUID)
	JournalDate  time.Time   `json:"journalDate"` // Date the event occurred
	Reference    string      `json:"reference"`   // Optional human reference string
	Description  string      `json:"description"`
	CurrencyCode string      `json:"currencyCode"`
	Status       EntryStatus `json:"status"`
	// Reversal linkage. A reversing journal points back at the journal it
	// compensates; a reversed journal points forward at its reversal.
	OriginalJournalID  *string `json:"originalJournalID,omitempty"`
	ReversingJournalID *string `json:"reversingJournalID,omitempty"`
	AuditFields
	Amount       decimal.Decimal `json:"amount"` // Economic value: the debit-side total
	Transactions []Transaction   `json:"transactions,omitempty"`
}

// IsReversal reports whether this journal is itself a compensating entry.
func (j *Journal) IsReversal() bool {
	return j.OriginalJournalID != nil
}
