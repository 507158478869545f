package services

import (
	"context"

	"github.com/corebooks/corebooks/internal/core/domain"
	"github.com/corebooks/corebooks/internal/dto"
)

// VoucherReaderSvc defines read operations for voucher data.
type VoucherReaderSvc interface {
	// GetVoucherByID retrieves a specific voucher by its ID.
	GetVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// ListVouchers retrieves a paginated list of vouchers.
	ListVouchers(ctx context.Context, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error)

	// PreviewVoucher derives the two journal lines a voucher would produce,
	// without persisting anything.
	PreviewVoucher(ctx context.Context, req dto.PreviewVoucherRequest) (*dto.VoucherPreviewResponse, error)
}

// VoucherWriterSvc defines write operations for voucher data.
type VoucherWriterSvc interface {
	// CreateVoucher validates and persists a new voucher as a draft.
	CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, error)

	// SubmitVoucher transitions a DRAFT voucher to PENDING (submit for approval).
	SubmitVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error)

	// PostVoucher transitions a DRAFT/PENDING voucher to POSTED, creating and
	// posting its derived journal atomically.
	PostVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error)

	// CancelVoucher removes a DRAFT/PENDING voucher.
	CancelVoucher(ctx context.Context, voucherID string, userID string) error

	// ReverseVoucher reverses a POSTED voucher by reversing its journal and
	// marking the voucher REVERSED.
	ReverseVoucher(ctx context.Context, voucherID string, userID string) (*domain.Voucher, error)
}

// VoucherSvcFacade combines all voucher-related service interfaces.
type VoucherSvcFacade interface {
	VoucherReaderSvc
	VoucherWriterSvc
}
