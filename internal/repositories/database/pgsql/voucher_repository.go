package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/corebooks/corebooks/internal/apperrors"
	"github.com/corebooks/corebooks/internal/core/domain"
	portsrepo "github.com/corebooks/corebooks/internal/core/ports/repositories"
	"github.com/corebooks/corebooks/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const voucherColumns = `voucher_id, voucher_no, voucher_type, voucher_date, amount, currency_code, cash_account_id, counter_account_id, beneficiary_kind, beneficiary_party_id, beneficiary_name, narration, status, journal_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxVoucherRepository struct {
	BaseRepository
}

// newPgxVoucherRepository creates a new repository for voucher data.
func newPgxVoucherRepository(pool *pgxpool.Pool) portsrepo.VoucherRepositoryFacade {
	return &PgxVoucherRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.VoucherRepositoryFacade = (*PgxVoucherRepository)(nil)

func scanVoucher(row pgx.Row) (domain.Voucher, error) {
	var v domain.Voucher
	var partyID, name, journalID sql.NullString
	err := row.Scan(
		&v.VoucherID,
		&v.VoucherNo,
		&v.VoucherType,
		&v.VoucherDate,
		&v.Amount,
		&v.CurrencyCode,
		&v.CashAccountID,
		&v.CounterAccountID,
		&v.Beneficiary.Kind,
		&partyID,
		&name,
		&v.Narration,
		&v.Status,
		&journalID,
		&v.CreatedAt,
		&v.CreatedBy,
		&v.LastUpdatedAt,
		&v.LastUpdatedBy,
	)
	if err != nil {
		return v, err
	}
	if partyID.Valid {
		v.Beneficiary.PartyID = partyID.String
	}
	if name.Valid {
		v.Beneficiary.Name = name.String
	}
	if journalID.Valid {
		v.JournalID = &journalID.String
	}
	return v, nil
}

// SaveVoucher persists a new voucher.
func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher) error {
	query := `
		INSERT INTO vouchers (` + voucherColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	var partyID, name sql.NullString
	if voucher.Beneficiary.PartyID != "" {
		partyID = sql.NullString{String: voucher.Beneficiary.PartyID, Valid: true}
	}
	if voucher.Beneficiary.Name != "" {
		name = sql.NullString{String: voucher.Beneficiary.Name, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		voucher.VoucherID,
		voucher.VoucherNo,
		voucher.VoucherType,
		voucher.VoucherDate,
		voucher.Amount,
		voucher.CurrencyCode,
		voucher.CashAccountID,
		voucher.CounterAccountID,
		voucher.Beneficiary.Kind,
		partyID,
		name,
		voucher.Narration,
		voucher.Status,
		voucher.JournalID,
		voucher.CreatedAt,
		voucher.CreatedBy,
		voucher.LastUpdatedAt,
		voucher.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save voucher "+voucher.VoucherID, err)
	}
	return nil
}

// FindVoucherByID retrieves a specific voucher by its ID.
func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE voucher_id = $1;`

	voucher, err := scanVoucher(r.Pool.QueryRow(ctx, query, voucherID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find voucher by ID "+voucherID, err)
	}
	return &voucher, nil
}

// ListVouchers retrieves a paginated list of vouchers, optionally filtered by type.
func (r *PgxVoucherRepository) ListVouchers(ctx context.Context, voucherType *domain.VoucherType, limit int, nextToken *string) ([]domain.Voucher, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + voucherColumns + ` FROM vouchers`
	orderByClause := `ORDER BY voucher_date DESC, created_at DESC`

	clauses := []string{}
	args := []interface{}{}
	if voucherType != nil {
		args = append(args, *voucherType)
		clauses = append(clauses, `voucher_type = $`+strconv.Itoa(len(args)))
	}
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		clauses = append(clauses, `(voucher_date, created_at) < ($`+strconv.Itoa(len(args)-1)+`, $`+strconv.Itoa(len(args))+`)`)
	}

	query := baseQuery
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	args = append(args, fetchLimit)
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query vouchers", err)
	}
	defer rows.Close()

	vouchers := make([]domain.Voucher, 0, fetchLimit)
	for rows.Next() {
		v, scanErr := scanVoucher(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan voucher row", scanErr)
		}
		vouchers = append(vouchers, v)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating voucher rows", err)
	}

	var nextTokenVal *string
	if len(vouchers) > limit {
		last := vouchers[limit-1]
		token := pagination.EncodeToken(last.VoucherDate, last.CreatedAt)
		nextTokenVal = &token
		vouchers = vouchers[:limit]
	}
	return vouchers, nextTokenVal, nil
}

// UpdateVoucherStatus transitions a voucher's status, optionally linking the
// journal produced by posting.
func (r *PgxVoucherRepository) UpdateVoucherStatus(ctx context.Context, voucherID string, status domain.EntryStatus, journalID *string, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE vouchers
		SET status = $2,
		    journal_id = COALESCE($3, journal_id),
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE voucher_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, voucherID, status, journalID, updatedAt, updatedByUserID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update voucher status for "+voucherID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteVoucher removes a voucher. The status filter keeps a concurrent
// posting from losing data.
func (r *PgxVoucherRepository) DeleteVoucher(ctx context.Context, voucherID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM vouchers WHERE voucher_id = $1 AND status IN ('DRAFT', 'PENDING');`, voucherID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete voucher "+voucherID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// voucherNumberPrefix maps a voucher type to its human-facing number prefix.
func voucherNumberPrefix(voucherType domain.VoucherType) string {
	switch voucherType {
	case domain.VoucherPayment:
		return "PV"
	case domain.VoucherReceipt:
		return "RV"
	default:
		return "DV"
	}
}

// NextVoucherNumber allocates the next sequential voucher number for the given
// type, e.g. "PV-000042". The upsert keeps allocation atomic under concurrency.
func (r *PgxVoucherRepository) NextVoucherNumber(ctx context.Context, voucherType domain.VoucherType) (string, error) {
	query := `
		INSERT INTO voucher_sequences (voucher_type, next_value)
		VALUES ($1, 2)
		ON CONFLICT (voucher_type)
		DO UPDATE SET next_value = voucher_sequences.next_value + 1
		RETURNING next_value - 1;
	`
	var seq int64
	if err := r.Pool.QueryRow(ctx, query, voucherType).Scan(&seq); err != nil {
		return "", apperrors.NewAppError(500, "failed to allocate voucher number", err)
	}
	return fmt.Sprintf("%s-%06d", voucherNumberPrefix(voucherType), seq), nil
}
