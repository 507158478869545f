package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/corebooks/corebooks/internal/apperrors"
	"github.com/corebooks/corebooks/internal/core/domain"
	portsrepo "github.com/corebooks/corebooks/internal/core/ports/repositories"
	"github.com/corebooks/corebooks/internal/utils/accounting"
	"github.com/corebooks/corebooks/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const journalColumns = `journal_id, journal_date, reference, description, currency_code, status, original_journal_id, reversing_journal_id, amount, created_at, created_by, last_updated_at, last_updated_by`

const transactionColumns = `transaction_id, journal_id, account_id, amount, transaction_type, currency_code, notes, transaction_date, created_at, created_by, last_updated_at, last_updated_by, running_balance`

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal and transaction data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

func scanJournal(row pgx.Row) (domain.Journal, error) {
	var j domain.Journal
	var originalID, reversingID sql.NullString
	err := row.Scan(
		&j.JournalID,
		&j.JournalDate,
		&j.Reference,
		&j.Description,
		&j.CurrencyCode,
		&j.Status,
		&originalID,
		&reversingID,
		&j.Amount,
		&j.CreatedAt,
		&j.CreatedBy,
		&j.LastUpdatedAt,
		&j.LastUpdatedBy,
	)
	if err != nil {
		return j, err
	}
	if originalID.Valid {
		j.OriginalJournalID = &originalID.String
	}
	if reversingID.Valid {
		j.ReversingJournalID = &reversingID.String
	}
	return j, nil
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var t domain.Transaction
	var runningBalance *decimal.Decimal
	err := row.Scan(
		&t.TransactionID,
		&t.JournalID,
		&t.AccountID,
		&t.Amount,
		&t.TransactionType,
		&t.CurrencyCode,
		&t.Notes,
		&t.TransactionDate,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
		&runningBalance, // NULL until the journal is posted
	)
	if err != nil {
		return t, err
	}
	if runningBalance != nil {
		t.RunningBalance = *runningBalance
	}
	return t, nil
}

// SaveJournal saves a journal and its transactions within a DB transaction.
// When balanceChanges is non-nil the journal is being posted: affected
// accounts are locked, their balances updated, and running balances stamped
// onto the lines. Drafts skip all of that.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer r.Rollback(ctx, tx) // No-op once committed

	now := journal.CreatedAt
	userID := journal.CreatedBy

	journalQuery := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, journalQuery,
		journal.JournalID,
		journal.JournalDate,
		journal.Reference,
		journal.Description,
		journal.CurrencyCode,
		journal.Status,
		journal.OriginalJournalID,
		journal.ReversingJournalID,
		journal.Amount,
		journal.CreatedAt,
		journal.CreatedBy,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert journal "+journal.JournalID, err)
	}

	runningBalances := map[string]decimal.Decimal{}
	var lockedAccounts map[string]domain.Account
	if balanceChanges != nil {
		accountIDs := make([]string, 0, len(balanceChanges))
		for accID := range balanceChanges {
			accountIDs = append(accountIDs, accID)
		}

		lockedAccounts, err = r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
		if err != nil {
			return apperrors.NewAppError(500, "failed to lock accounts for update", err)
		}

		if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
			return apperrors.NewAppError(500, "failed to update account balances", err)
		}

		// Running balances start from the value before this journal's changes.
		for accID, acc := range lockedAccounts {
			runningBalances[accID] = acc.Balance
		}
	}

	// Deterministic order for running balance calculation within the journal.
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].TransactionID < transactions[j].TransactionID
	})

	batch := &pgx.Batch{}
	txnQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	for _, txn := range transactions {
		var runningBalance *decimal.Decimal
		if balanceChanges != nil {
			lockedAccount, ok := lockedAccounts[txn.AccountID]
			if !ok {
				return apperrors.NewAppError(500, "internal error: locked account "+txn.AccountID+" not found during transaction processing", nil)
			}
			signedAmount, err := accounting.CalculateSignedAmount(txn, lockedAccount.AccountType)
			if err != nil {
				return apperrors.NewAppError(500, "failed to calculate signed amount for transaction "+txn.TransactionID, err)
			}
			newBalance := runningBalances[txn.AccountID].Add(signedAmount)
			runningBalances[txn.AccountID] = newBalance
			runningBalance = &newBalance
		}

		batch.Queue(txnQuery,
			txn.TransactionID,
			txn.JournalID,
			txn.AccountID,
			txn.Amount,
			txn.TransactionType,
			txn.CurrencyCode,
			txn.Notes,
			txn.TransactionDate,
			now,
			userID,
			now,
			userID,
			runningBalance,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute transaction batch for journal "+journal.JournalID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction for journal "+journal.JournalID, err)
	}
	return nil
}

// PostJournal transitions a stored journal to POSTED: account rows are locked,
// balance deltas applied, running balances stamped onto the lines, and the
// status flipped, all in one database transaction.
func (r *PgxJournalRepository) PostJournal(ctx context.Context, journalID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer r.Rollback(ctx, tx)

	statusQuery := `
		UPDATE journals
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE journal_id = $1 AND status IN ('DRAFT', 'PENDING');
	`
	cmdTag, err := tx.Exec(ctx, statusQuery, journalID, domain.StatusPosted, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal status for "+journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either missing or already posted under a concurrent request.
		return apperrors.ErrConflict
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for posting", err)
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}

	txnRows, err := tx.Query(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE journal_id = $1 ORDER BY transaction_id;`, journalID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to query transactions for posting "+journalID, err)
	}
	transactions := []domain.Transaction{}
	for txnRows.Next() {
		t, scanErr := scanTransaction(txnRows)
		if scanErr != nil {
			txnRows.Close()
			return apperrors.NewAppError(500, "failed to scan transaction row for posting "+journalID, scanErr)
		}
		transactions = append(transactions, t)
	}
	txnRows.Close()
	if err := txnRows.Err(); err != nil {
		return apperrors.NewAppError(500, "error iterating transaction rows for posting "+journalID, err)
	}

	runningBalances := make(map[string]decimal.Decimal, len(lockedAccounts))
	for accID, acc := range lockedAccounts {
		runningBalances[accID] = acc.Balance
	}

	batch := &pgx.Batch{}
	stampQuery := `
		UPDATE transactions
		SET running_balance = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1;
	`
	for _, txn := range transactions {
		lockedAccount, ok := lockedAccounts[txn.AccountID]
		if !ok {
			return apperrors.NewAppError(500, "internal error: locked account "+txn.AccountID+" not found during posting", nil)
		}
		signedAmount, err := accounting.CalculateSignedAmount(txn, lockedAccount.AccountType)
		if err != nil {
			return apperrors.NewAppError(500, "failed to calculate signed amount for transaction "+txn.TransactionID, err)
		}
		newBalance := runningBalances[txn.AccountID].Add(signedAmount)
		runningBalances[txn.AccountID] = newBalance
		batch.Queue(stampQuery, txn.TransactionID, newBalance, now, userID)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to stamp running balances for journal "+journalID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit posting of journal "+journalID, err)
	}
	return nil
}

// FindJournalByID retrieves a journal by its ID.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE journal_id = $1;`

	journal, err := scanJournal(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal by ID "+journalID, err)
	}
	return &journal, nil
}

// ListJournals retrieves a paginated list of journals using token-based pagination.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row decides whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + journalColumns + ` FROM journals`
	filterClause := ``
	if !includeReversals {
		filterClause = `WHERE status != 'REVERSED' AND reversing_journal_id IS NULL AND original_journal_id IS NULL`
	}
	orderByClause := `ORDER BY journal_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `(journal_date, created_at) < ($1, $2)`
		if filterClause == "" {
			cursorClause = "WHERE " + cursorClause
		} else {
			cursorClause = filterClause + " AND " + cursorClause
		}
		args = append(args, lastDate, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $1;"
		rows, err = r.Pool.Query(ctx, query, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journals", err)
	}
	defer rows.Close()

	journals := make([]domain.Journal, 0, fetchLimit)
	for rows.Next() {
		j, scanErr := scanJournal(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal row", scanErr)
		}
		journals = append(journals, j)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal rows", err)
	}

	var nextTokenVal *string
	if len(journals) > limit {
		last := journals[limit-1]
		token := pagination.EncodeToken(last.JournalDate, last.CreatedAt)
		nextTokenVal = &token
		journals = journals[:limit]
	}
	return journals, nextTokenVal, nil
}

// FindTransactionsByJournalID retrieves all transactions associated with a specific journal.
func (r *PgxJournalRepository) FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE journal_id = $1 ORDER BY transaction_id;`

	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions for journal "+journalID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		t, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row for journal "+journalID, scanErr)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows for journal "+journalID, err)
	}
	return transactions, nil
}

// FindTransactionsByJournalIDs retrieves transactions for a list of journals,
// grouped by journal ID. Journals without lines get an empty slice.
func (r *PgxJournalRepository) FindTransactionsByJournalIDs(ctx context.Context, journalIDs []string) (map[string][]domain.Transaction, error) {
	if len(journalIDs) == 0 {
		return map[string][]domain.Transaction{}, nil
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE journal_id = ANY($1) ORDER BY journal_id, transaction_id;`

	rows, err := r.Pool.Query(ctx, query, journalIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions for journal IDs", err)
	}
	defer rows.Close()

	transactionsMap := make(map[string][]domain.Transaction)
	for rows.Next() {
		t, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row during batch fetch", scanErr)
		}
		transactionsMap[t.JournalID] = append(transactionsMap[t.JournalID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows during batch fetch", err)
	}

	for _, jid := range journalIDs {
		if _, exists := transactionsMap[jid]; !exists {
			transactionsMap[jid] = []domain.Transaction{}
		}
	}
	return transactionsMap, nil
}

// ListTransactionsByAccountID retrieves a paginated list of posted transactions for a specific account.
func (r *PgxJournalRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT t.transaction_id, t.journal_id, t.account_id, t.amount, t.transaction_type, t.currency_code, t.notes,
		       t.transaction_date, t.created_at, t.created_by, t.last_updated_at, t.last_updated_by, t.running_balance,
		       j.journal_date
		FROM transactions t
		JOIN journals j ON t.journal_id = j.journal_id
		WHERE t.account_id = $1 AND j.status IN ('POSTED', 'REVERSED')
	`
	orderByClause := `ORDER BY j.journal_date DESC, t.created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{accountID}

	if nextToken != nil && *nextToken != "" {
		lastJournalDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		cursorClause := `AND (j.journal_date, t.created_at) < ($2, $3)`
		args = append(args, lastJournalDate, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for account "+accountID, err)
	}
	defer rows.Close()

	// The journal date is carried alongside each line because the cursor
	// orders by (j.journal_date, t.created_at); a line's own transaction_date
	// may differ from its journal's date and cannot seed the token.
	type pagedTransaction struct {
		transaction domain.Transaction
		journalDate time.Time
	}

	transactions := make([]pagedTransaction, 0, fetchLimit)
	for rows.Next() {
		var t domain.Transaction
		var runningBalance *decimal.Decimal
		var journalDate time.Time
		scanErr := rows.Scan(
			&t.TransactionID,
			&t.JournalID,
			&t.AccountID,
			&t.Amount,
			&t.TransactionType,
			&t.CurrencyCode,
			&t.Notes,
			&t.TransactionDate,
			&t.CreatedAt,
			&t.CreatedBy,
			&t.LastUpdatedAt,
			&t.LastUpdatedBy,
			&runningBalance,
			&journalDate,
		)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row for account "+accountID, scanErr)
		}
		if runningBalance != nil {
			t.RunningBalance = *runningBalance
		}
		transactions = append(transactions, pagedTransaction{transaction: t, journalDate: journalDate})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows for account "+accountID, err)
	}

	var nextTokenVal *string
	if len(transactions) > limit {
		last := transactions[limit-1]
		token := pagination.EncodeToken(last.journalDate, last.transaction.CreatedAt)
		nextTokenVal = &token
		transactions = transactions[:limit]
	}

	results := make([]domain.Transaction, len(transactions))
	for i, pt := range transactions {
		results[i] = pt.transaction
	}
	return results, nextTokenVal, nil
}

// UpdateJournalStatusAndLinks updates the status and reversal links for a journal.
func (r *PgxJournalRepository) UpdateJournalStatusAndLinks(ctx context.Context, journalID string, status domain.EntryStatus, reversingJournalID *string, originalJournalID *string, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE journals
		SET status = $2,
		    reversing_journal_id = $3,
		    original_journal_id = COALESCE($4, original_journal_id),
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE journal_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		journalID,
		status,
		reversingJournalID,
		originalJournalID,
		updatedAt,
		updatedByUserID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal status/links for "+journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateJournal updates header fields of a journal entry. Status and reversal
// links go through UpdateJournalStatusAndLinks instead.
func (r *PgxJournalRepository) UpdateJournal(ctx context.Context, journal domain.Journal) error {
	query := `
		UPDATE journals
		SET journal_date = $2,
		    reference = $3,
		    description = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE journal_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		journal.JournalID,
		journal.JournalDate,
		journal.Reference,
		journal.Description,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to execute update journal "+journal.JournalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteJournal removes a journal and its lines. The status filter keeps a
// concurrent posting from losing data.
func (r *PgxJournalRepository) DeleteJournal(ctx context.Context, journalID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE journal_id = $1;`, journalID); err != nil {
		return apperrors.NewAppError(500, "failed to delete transactions for journal "+journalID, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM journals WHERE journal_id = $1 AND status IN ('DRAFT', 'PENDING');`, journalID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete journal "+journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit deletion of journal "+journalID, err)
	}
	return nil
}
