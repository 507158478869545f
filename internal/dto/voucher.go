package dto

import (
	"time"

	"github.com/corebooks/corebooks/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BeneficiaryRequest carries the tagged beneficiary union over the wire.
// CLIENT/VENDOR/STAFF require partyID, OTHER requires name; the domain
// validation enforces the exclusivity.
type BeneficiaryRequest struct {
	Kind    domain.BeneficiaryKind `json:"kind" binding:"required,oneof=CLIENT VENDOR STAFF OTHER"`
	PartyID string                 `json:"partyID"`
	Name    string                 `json:"name"`
}

// ToBeneficiary converts the request to the domain union.
func (r BeneficiaryRequest) ToBeneficiary() domain.Beneficiary {
	return domain.Beneficiary{Kind: r.Kind, PartyID: r.PartyID, Name: r.Name}
}

// CreateVoucherRequest defines the simplified form a voucher is built from:
// a single amount plus a voucher type, two accounts and a beneficiary.
type CreateVoucherRequest struct {
	VoucherType      domain.VoucherType `json:"voucherType" binding:"required,oneof=PAYMENT RECEIPT DEPOSIT"`
	Date             time.Time          `json:"date" binding:"required"`
	Amount           decimal.Decimal    `json:"amount" binding:"required"`
	CurrencyCode     string             `json:"currencyCode" binding:"required,currencycode"`
	CashAccountID    string             `json:"cashAccountID" binding:"required"`
	CounterAccountID string             `json:"counterAccountID" binding:"required"`
	Beneficiary      BeneficiaryRequest `json:"beneficiary" binding:"required"`
	Narration        string             `json:"narration"`
}

// PreviewVoucherRequest is the subset of the create request needed to derive
// the two journal lines for display. Nothing is persisted.
type PreviewVoucherRequest struct {
	VoucherType      domain.VoucherType `json:"voucherType" binding:"required,oneof=PAYMENT RECEIPT DEPOSIT"`
	Amount           decimal.Decimal    `json:"amount" binding:"required"`
	CurrencyCode     string             `json:"currencyCode" binding:"required,currencycode"`
	CashAccountID    string             `json:"cashAccountID" binding:"required"`
	CounterAccountID string             `json:"counterAccountID" binding:"required"`
}

// ListVouchersParams holds query parameters for listing vouchers.
type ListVouchersParams struct {
	VoucherType *string `form:"voucherType" binding:"omitempty,oneof=PAYMENT RECEIPT DEPOSIT"`
	Limit       int     `form:"limit,default=20"`
	NextToken   *string `form:"nextToken"`
}

// VoucherLineResponse is one derived debit/credit line in a voucher preview.
type VoucherLineResponse struct {
	AccountID       string                 `json:"accountID"`
	Amount          decimal.Decimal        `json:"amount"`
	TransactionType domain.TransactionType `json:"transactionType"`
}

// VoucherPreviewResponse returns the two derived lines and their (always
// equal) side totals.
type VoucherPreviewResponse struct {
	Lines       []VoucherLineResponse `json:"lines"`
	TotalDebit  decimal.Decimal       `json:"totalDebit"`
	TotalCredit decimal.Decimal       `json:"totalCredit"`
}

// VoucherResponse defines the data returned for a voucher.
type VoucherResponse struct {
	VoucherID        string             `json:"voucherID"`
	VoucherNo        string             `json:"voucherNo"`
	VoucherType      domain.VoucherType `json:"voucherType"`
	Date             time.Time          `json:"date"`
	Amount           decimal.Decimal    `json:"amount"`
	CurrencyCode     string             `json:"currencyCode"`
	CashAccountID    string             `json:"cashAccountID"`
	CounterAccountID string             `json:"counterAccountID"`
	Beneficiary      domain.Beneficiary `json:"beneficiary"`
	Narration        string             `json:"narration"`
	Status           domain.EntryStatus `json:"status"`
	JournalID        *string            `json:"journalID,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	CreatedBy        string             `json:"createdBy"`
}

// ListVouchersResponse wraps a page of vouchers plus the next page token.
type ListVouchersResponse struct {
	Vouchers  []VoucherResponse `json:"vouchers"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToVoucherResponse converts a domain.Voucher to VoucherResponse DTO.
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	return VoucherResponse{
		VoucherID:        v.VoucherID,
		VoucherNo:        v.VoucherNo,
		VoucherType:      v.VoucherType,
		Date:             v.VoucherDate,
		Amount:           v.Amount,
		CurrencyCode:     v.CurrencyCode,
		CashAccountID:    v.CashAccountID,
		CounterAccountID: v.CounterAccountID,
		Beneficiary:      v.Beneficiary,
		Narration:        v.Narration,
		Status:           v.Status,
		JournalID:        v.JournalID,
		CreatedAt:        v.CreatedAt,
		CreatedBy:        v.CreatedBy,
	}
}

// ToListVoucherResponse converts a slice of domain.Voucher to response DTOs.
func ToListVoucherResponse(vouchers []domain.Voucher) []VoucherResponse {
	res := make([]VoucherResponse, len(vouchers))
	for i, v := range vouchers {
		res[i] = ToVoucherResponse(&v)
	}
	return res
}
