package services

import (
	"context"

	"github.com/corebooks/corebooks/internal/core/domain"
	"github.com/corebooks/corebooks/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for ledger account data.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its ID.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByIDs retrieves multiple accounts keyed by ID.
	GetAccountByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// GetAccountBalance returns the persisted balance of an account.
	GetAccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// AccountWriterSvc defines write operations for ledger account data.
type AccountWriterSvc interface {
	// CreateAccount creates a new ledger account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// UpdateAccount updates account details (name, description).
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
