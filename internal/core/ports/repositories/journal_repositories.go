package repositories

import (
	"context"
	"time"

	"github.com/corebooks/corebooks/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data.
type JournalReader interface {
	// FindJournalByID retrieves a specific journal by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// ListJournals retrieves a paginated list of journals using token-based pagination.
	// It returns the journals, a token for the next page, and an error.
	ListJournals(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error)
}

// JournalWriter defines write operations for journal data.
type JournalWriter interface {
	// SaveJournal persists a journal and its transaction lines. When the
	// journal is POSTED, balanceChanges is applied to the affected accounts
	// within the same database transaction; for drafts it must be nil and
	// account balances are untouched.
	SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error

	// PostJournal transitions a stored DRAFT/PENDING journal to POSTED,
	// applying balance deltas and stamping running balances atomically.
	PostJournal(ctx context.Context, journalID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error

	// UpdateJournal updates header fields of a journal (date, reference, description).
	UpdateJournal(ctx context.Context, journal domain.Journal) error

	// UpdateJournalStatusAndLinks updates the status and reversal linkage of a journal.
	UpdateJournalStatusAndLinks(ctx context.Context, journalID string, status domain.EntryStatus, reversingJournalID *string, originalJournalID *string, updatedByUserID string, updatedAt time.Time) error

	// DeleteJournal removes a journal and its lines. Callers guarantee the
	// journal is still DRAFT or PENDING.
	DeleteJournal(ctx context.Context, journalID string) error
}

// TransactionReader defines read operations for transaction line data.
type TransactionReader interface {
	// FindTransactionsByJournalID retrieves all transactions associated with a single journal ID.
	FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error)

	// FindTransactionsByJournalIDs retrieves transactions for multiple journal IDs, grouped by journal ID.
	FindTransactionsByJournalIDs(ctx context.Context, journalIDs []string) (map[string][]domain.Transaction, error)

	// ListTransactionsByAccountID retrieves a paginated list of transactions for a specific account.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	TransactionReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities.
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
