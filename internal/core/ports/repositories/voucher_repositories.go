package repositories

import (
	"context"
	"time"

	"github.com/corebooks/corebooks/internal/core/domain"
)

// VoucherReader defines read operations for voucher data.
type VoucherReader interface {
	// FindVoucherByID retrieves a specific voucher by its unique identifier.
	FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// ListVouchers retrieves a paginated list of vouchers, optionally filtered
	// by type, using token-based pagination.
	ListVouchers(ctx context.Context, voucherType *domain.VoucherType, limit int, nextToken *string) ([]domain.Voucher, *string, error)
}

// VoucherWriter defines write operations for voucher data.
type VoucherWriter interface {
	// SaveVoucher persists a new voucher.
	SaveVoucher(ctx context.Context, voucher domain.Voucher) error

	// UpdateVoucherStatus transitions a voucher's status, optionally linking
	// the journal produced by posting.
	UpdateVoucherStatus(ctx context.Context, voucherID string, status domain.EntryStatus, journalID *string, updatedByUserID string, updatedAt time.Time) error

	// DeleteVoucher removes a voucher. Callers guarantee it is still DRAFT or PENDING.
	DeleteVoucher(ctx context.Context, voucherID string) error

	// NextVoucherNumber allocates the next human-facing voucher number for the
	// given type, e.g. "PV-000042" for payments.
	NextVoucherNumber(ctx context.Context, voucherType domain.VoucherType) (string, error)
}

// VoucherRepositoryFacade combines all voucher-related repository interfaces.
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
}
