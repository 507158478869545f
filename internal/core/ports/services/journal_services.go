package services

import (
	"context"

	"github.com/corebooks/corebooks/internal/core/domain"
	"github.com/corebooks/corebooks/internal/dto"
)

// JournalReaderSvc defines read operations for journal data.
type JournalReaderSvc interface {
	// GetJournalByID retrieves a specific journal with its transaction lines.
	GetJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// ListJournals retrieves a paginated list of journals.
	ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)
}

// JournalWriterSvc defines write operations for journal data.
type JournalWriterSvc interface {
	// CreateJournal validates and persists a new journal with its transactions,
	// either as a draft or posted immediately.
	CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error)

	// UpdateJournal updates header fields of a DRAFT/PENDING journal.
	UpdateJournal(ctx context.Context, journalID string, req dto.UpdateJournalRequest, userID string) (*domain.Journal, error)

	// PostJournal transitions a DRAFT/PENDING journal to POSTED, applying
	// account balance changes.
	PostJournal(ctx context.Context, journalID string, userID string) (*domain.Journal, error)

	// ReverseJournal creates a compensating journal for a POSTED journal and
	// marks the original REVERSED.
	ReverseJournal(ctx context.Context, journalID string, userID string) (*domain.Journal, error)

	// DeleteJournal removes a DRAFT/PENDING journal.
	DeleteJournal(ctx context.Context, journalID string, userID string) error
}

// TransactionReaderSvc defines read operations for transaction line data.
type TransactionReaderSvc interface {
	// ListTransactionsByAccount retrieves transactions for a specific account.
	ListTransactionsByAccount(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// JournalSvcFacade combines all journal-related service interfaces.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	TransactionReaderSvc
}
