package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/corebooks/corebooks/internal/apperrors"
	"github.com/corebooks/corebooks/internal/core/domain"
	portsrepo "github.com/corebooks/corebooks/internal/core/ports/repositories"
	portssvc "github.com/corebooks/corebooks/internal/core/ports/services"
	"github.com/corebooks/corebooks/internal/dto"
	"github.com/corebooks/corebooks/internal/metrics"
	"github.com/corebooks/corebooks/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrJournalUnbalanced  = errors.New("debits and credits must be equal")
	ErrJournalMinEntries  = errors.New("journal must have at least two transaction lines")
	ErrJournalMinAccounts = errors.New("journal must affect at least two different accounts")
	ErrAccountNotFound    = errors.New("account not found")
	ErrCurrencyMismatch   = errors.New("account currency does not match journal currency")
	ErrDescriptionMissing = errors.New("journal description is required")
	ErrIllegalTransition  = errors.New("illegal status transition")
)

// journalService provides core journal and transaction operations. It is the
// authoritative enforcement point for the balance invariant and the entry
// lifecycle; clients only preview these rules.
type journalService struct {
	BaseService
	accountSvc  portssvc.AccountSvcFacade
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.AccountSvcFacade) portssvc.JournalSvcFacade {
	return &journalService{
		accountSvc:  accountSvc,
		journalRepo: journalRepo,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validateBalance checks the double-entry invariant over a set of lines:
// at least two lines, every amount positive, and debit total equal to credit
// total by exact decimal comparison. The unbalanced error carries the
// difference so callers can surface it.
func (s *journalService) validateBalance(transactions []domain.Transaction) error {
	if len(transactions) < 2 {
		return ErrJournalMinEntries
	}

	for i := range transactions {
		if err := transactions[i].Validate(); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	totalDebit, totalCredit, balanced := accounting.Totals(transactions)
	if !balanced {
		return fmt.Errorf("%w: difference is %s (debits %s, credits %s)",
			ErrJournalUnbalanced, totalDebit.Sub(totalCredit).Abs().String(), totalDebit.String(), totalCredit.String())
	}
	return nil
}

// fetchAndValidateAccounts resolves the accounts behind a set of lines and
// checks existence, active flag and currency match against the journal.
func (s *journalService) fetchAndValidateAccounts(ctx context.Context, transactions []domain.Transaction, currencyCode string) (map[string]domain.Account, error) {
	accountIDs := make([]string, 0, len(transactions))
	for _, txn := range transactions {
		accountIDs = append(accountIDs, txn.AccountID)
	}
	uniqueAccountIDs := uniqueStrings(accountIDs)

	accountsMap, err := s.accountSvc.GetAccountByIDs(ctx, uniqueAccountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for journal validation")
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for _, id := range uniqueAccountIDs {
		acc, found := accountsMap[id]
		if !found {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
		if acc.CurrencyCode != currencyCode {
			return nil, fmt.Errorf("%w: account currency %s does not match journal currency %s for account %s", ErrCurrencyMismatch, acc.CurrencyCode, currencyCode, id)
		}
	}
	return accountsMap, nil
}

// calculateBalanceChanges computes the net signed balance delta per account
// for a set of lines.
func (s *journalService) calculateBalanceChanges(transactions []domain.Transaction, accounts map[string]domain.Account) (map[string]decimal.Decimal, error) {
	balanceChanges := make(map[string]decimal.Decimal)
	for _, txn := range transactions {
		acc, ok := accounts[txn.AccountID]
		if !ok {
			return nil, fmt.Errorf("internal error: account %s not found during balance calculation", txn.AccountID)
		}
		signedAmount, err := accounting.CalculateSignedAmount(txn, acc.AccountType)
		if err != nil {
			return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
		}
		balanceChanges[txn.AccountID] = balanceChanges[txn.AccountID].Add(signedAmount)
	}
	return balanceChanges, nil
}

// debitTotal computes the economic value of a journal: the debit-side sum.
func debitTotal(transactions []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range transactions {
		if txn.TransactionType == domain.Debit {
			total = total.Add(txn.Amount)
		}
	}
	return total
}

// CreateJournal validates and persists a new journal entry with its lines.
// SaveAs selects the resulting status: DRAFT keeps account balances untouched,
// POSTED applies balance changes atomically.
func (s *journalService) CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error) {
	if len(req.Transactions) < 2 {
		return nil, ErrJournalMinEntries
	}

	accountSet := make(map[string]bool)
	for _, txn := range req.Transactions {
		accountSet[txn.AccountID] = true
	}
	if len(accountSet) < 2 {
		return nil, ErrJournalMinAccounts
	}

	if req.Description == "" {
		return nil, ErrDescriptionMissing
	}

	now := time.Now().UTC()
	journalID := uuid.NewString()

	domainTransactions := make([]domain.Transaction, len(req.Transactions))
	for i, txnReq := range req.Transactions {
		transactionDate := req.Date
		if txnReq.TransactionDate != nil {
			transactionDate = *txnReq.TransactionDate
		}
		domainTransactions[i] = domain.Transaction{
			TransactionID:   uuid.NewString(),
			JournalID:       journalID,
			AccountID:       txnReq.AccountID,
			Amount:          txnReq.Amount,
			TransactionType: txnReq.TransactionType,
			CurrencyCode:    req.CurrencyCode,
			Notes:           txnReq.Notes,
			TransactionDate: transactionDate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
	}

	// Validation failures stop here; nothing below runs until the entry
	// balances.
	if err := s.validateBalance(domainTransactions); err != nil {
		return nil, err
	}

	accountsMap, err := s.fetchAndValidateAccounts(ctx, domainTransactions, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	status := domain.StatusDraft
	if req.SaveAs == string(domain.StatusPosted) {
		status = domain.StatusPosted
	}

	journal := domain.Journal{
		JournalID:    journalID,
		JournalDate:  req.Date,
		Reference:    req.Reference,
		Description:  req.Description,
		CurrencyCode: req.CurrencyCode,
		Status:       status,
		Amount:       debitTotal(domainTransactions),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// Drafts never touch account balances; only posting moves money.
	var balanceChanges map[string]decimal.Decimal
	if status == domain.StatusPosted {
		balanceChanges, err = s.calculateBalanceChanges(domainTransactions, accountsMap)
		if err != nil {
			s.LogError(ctx, err, "Error calculating balance changes", slog.String("journal_id", journalID))
			return nil, err
		}
	}

	if err := s.journalRepo.SaveJournal(ctx, journal, domainTransactions, balanceChanges); err != nil {
		s.LogError(ctx, err, "Failed to save journal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	if status == domain.StatusPosted {
		metrics.JournalsPosted.WithLabelValues("entry").Inc()
	}

	s.LogInfo(ctx, "Journal created successfully", slog.String("journal_id", journalID), slog.String("status", string(status)))
	journal.Transactions = nil
	return &journal, nil
}

// GetJournalByID retrieves a specific journal entry with its transactions.
func (s *journalService) GetJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal by ID", slog.String("journal_id", journalID))
		}
		return nil, fmt.Errorf("failed to find journal by ID %s: %w", journalID, err)
	}

	transactions, err := s.journalRepo.FindTransactionsByJournalID(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch transactions for journal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve transactions for journal %s: %w", journalID, apperrors.ErrInternal)
	}
	journal.Transactions = transactions

	return journal, nil
}

// ListJournals retrieves a paginated list of journals.
func (s *journalService) ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	journals, nextToken, err := s.journalRepo.ListJournals(ctx, limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals from repository")
		return nil, fmt.Errorf("failed to retrieve journals: %w", err)
	}

	var transactionsMap map[string][]domain.Transaction
	if params.IncludeTransactions && len(journals) > 0 {
		journalIDs := make([]string, len(journals))
		for i, journal := range journals {
			journalIDs[i] = journal.JournalID
		}
		transactionsMap, err = s.journalRepo.FindTransactionsByJournalIDs(ctx, journalIDs)
		if err != nil {
			// Continue without transactions rather than failing the whole page.
			s.LogWarn(ctx, "Failed to fetch transactions for journals", "error", err)
		}
	}

	journalResponses := make([]dto.JournalResponse, len(journals))
	for i, journal := range journals {
		if transactionsMap != nil {
			journal.Transactions = transactionsMap[journal.JournalID]
		} else {
			journal.Transactions = nil
		}
		journalResponses[i] = dto.ToJournalResponse(&journal)
	}

	return &dto.ListJournalsResponse{
		Journals:  journalResponses,
		NextToken: nextToken,
	}, nil
}

// UpdateJournal updates header fields of a journal that is still mutable.
func (s *journalService) UpdateJournal(ctx context.Context, journalID string, req dto.UpdateJournalRequest, userID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal for update", slog.String("journal_id", journalID))
		}
		return nil, err
	}

	if !journal.Status.IsMutable() {
		return nil, fmt.Errorf("%w: journal status is %s, only DRAFT or PENDING entries are editable", apperrors.ErrConflict, journal.Status)
	}

	updated := false
	if req.Date != nil {
		journal.JournalDate = *req.Date
		updated = true
	}
	if req.Reference != nil {
		journal.Reference = *req.Reference
		updated = true
	}
	if req.Description != nil {
		if *req.Description == "" {
			return nil, ErrDescriptionMissing
		}
		journal.Description = *req.Description
		updated = true
	}
	if !updated {
		return journal, nil
	}

	journal.LastUpdatedAt = time.Now().UTC()
	journal.LastUpdatedBy = userID

	if err := s.journalRepo.UpdateJournal(ctx, *journal); err != nil {
		s.LogError(ctx, err, "Failed to save journal update", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to save journal update: %w", err)
	}

	s.LogInfo(ctx, "Journal updated successfully", slog.String("journal_id", journalID))
	journal.Transactions = nil
	return journal, nil
}

// PostJournal transitions a DRAFT/PENDING journal to POSTED, applying account
// balance changes atomically. The transition guard rejects everything else.
func (s *journalService) PostJournal(ctx context.Context, journalID string, userID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal for posting", slog.String("journal_id", journalID))
		}
		return nil, err
	}

	if !journal.Status.CanTransitionTo(domain.StatusPosted) {
		return nil, fmt.Errorf("%w: cannot post a %s journal", ErrIllegalTransition, journal.Status)
	}

	transactions, err := s.journalRepo.FindTransactionsByJournalID(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch transactions for posting", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	// Re-check the invariant at post time; the stored draft could predate an
	// account deactivation.
	if err := s.validateBalance(transactions); err != nil {
		return nil, err
	}
	accountsMap, err := s.fetchAndValidateAccounts(ctx, transactions, journal.CurrencyCode)
	if err != nil {
		return nil, err
	}
	balanceChanges, err := s.calculateBalanceChanges(transactions, accountsMap)
	if err != nil {
		s.LogError(ctx, err, "Error calculating balance changes for posting", slog.String("journal_id", journalID))
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.journalRepo.PostJournal(ctx, journalID, balanceChanges, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to post journal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to post journal: %w", err)
	}

	metrics.JournalsPosted.WithLabelValues("entry").Inc()
	s.LogInfo(ctx, "Journal posted successfully", slog.String("journal_id", journalID))

	journal.Status = domain.StatusPosted
	journal.LastUpdatedAt = now
	journal.LastUpdatedBy = userID
	journal.Transactions = nil
	return journal, nil
}

// ReverseJournal creates a compensating journal that undoes a previously
// posted journal. The reversal carries the same amounts with flipped sides,
// is posted immediately, and links both journals together.
func (s *journalService) ReverseJournal(ctx context.Context, journalID string, userID string) (*domain.Journal, error) {
	originalJournal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Original journal not found for reversal", "journal_id", journalID)
			return nil, apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to fetch original journal for reversal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve original journal: %w", err)
	}

	if !originalJournal.Status.CanTransitionTo(domain.StatusReversed) {
		return nil, fmt.Errorf("%w: journal status is %s, expected POSTED", ErrIllegalTransition, originalJournal.Status)
	}
	if originalJournal.IsReversal() {
		return nil, fmt.Errorf("%w: cannot reverse a journal that is already a reversal", apperrors.ErrConflict)
	}

	originalTransactions, err := s.journalRepo.FindTransactionsByJournalID(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch original transactions for reversal", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve original transactions: %w", err)
	}

	now := time.Now().UTC()
	newJournalID := uuid.NewString()

	reversingTransactions := make([]domain.Transaction, len(originalTransactions))
	for i, origTx := range originalTransactions {
		reversingTransactions[i] = domain.Transaction{
			TransactionID:   uuid.NewString(),
			JournalID:       newJournalID,
			AccountID:       origTx.AccountID,
			Amount:          origTx.Amount,
			TransactionType: origTx.TransactionType.Opposite(),
			CurrencyCode:    origTx.CurrencyCode,
			Notes:           origTx.Notes,
			TransactionDate: now,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	accountsMap, err := s.fetchAndValidateAccounts(ctx, reversingTransactions, originalJournal.CurrencyCode)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for reversal balance calculation", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to get account details for reversal: %w", err)
	}

	balanceChanges, err := s.calculateBalanceChanges(reversingTransactions, accountsMap)
	if err != nil {
		s.LogError(ctx, err, "Failed to calculate balance changes for reversal", slog.String("journal_id", journalID))
		return nil, err
	}

	reversingJournal := domain.Journal{
		JournalID:         newJournalID,
		JournalDate:       originalJournal.JournalDate,
		Reference:         originalJournal.Reference,
		Description:       fmt.Sprintf("Reversal of: %s", originalJournal.Description),
		CurrencyCode:      originalJournal.CurrencyCode,
		Status:            domain.StatusPosted,
		OriginalJournalID: &originalJournal.JournalID,
		Amount:            originalJournal.Amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.journalRepo.SaveJournal(ctx, reversingJournal, reversingTransactions, balanceChanges); err != nil {
		s.LogError(ctx, err, "Failed to save reversing journal entry", slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to save reversing journal: %w", err)
	}

	if err := s.journalRepo.UpdateJournalStatusAndLinks(ctx, originalJournal.JournalID, domain.StatusReversed, &newJournalID, nil, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to update original journal status after reversal",
			slog.String("original_journal_id", originalJournal.JournalID), slog.String("reversing_journal_id", newJournalID))
		return nil, fmt.Errorf("failed to update original journal status: %w", err)
	}

	metrics.JournalsPosted.WithLabelValues("reversal").Inc()
	s.LogInfo(ctx, "Journal reversed successfully", slog.String("reversing_journal_id", newJournalID))

	reversingJournal.Transactions = nil
	return &reversingJournal, nil
}

// DeleteJournal removes a journal that is still DRAFT or PENDING. Posted and
// reversed journals are permanent records.
func (s *journalService) DeleteJournal(ctx context.Context, journalID string, userID string) error {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal for deletion", slog.String("journal_id", journalID))
		}
		return err
	}

	if !journal.Status.IsDeletable() {
		return fmt.Errorf("%w: cannot delete a %s journal", apperrors.ErrConflict, journal.Status)
	}

	if err := s.journalRepo.DeleteJournal(ctx, journalID); err != nil {
		s.LogError(ctx, err, "Failed to delete journal", slog.String("journal_id", journalID))
		return fmt.Errorf("failed to delete journal: %w", err)
	}

	s.LogInfo(ctx, "Journal deleted successfully", slog.String("journal_id", journalID), slog.String("deleted_by", userID))
	return nil
}

// ListTransactionsByAccount retrieves transactions for a specific account.
func (s *journalService) ListTransactionsByAccount(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions, nextToken, err := s.journalRepo.ListTransactionsByAccountID(ctx, accountID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions by account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(transactions),
		NextToken:    nextToken,
	}, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
