package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType selects which accounts a voucher moves money between.
type VoucherType string

const (
	VoucherPayment VoucherType = "PAYMENT"
	VoucherReceipt VoucherType = "RECEIPT"
	VoucherDeposit VoucherType = "DEPOSIT"
)

// IsValid reports whether t is a recognised voucher type.
func (t VoucherType) IsValid() bool {
	switch t {
	case VoucherPayment, VoucherReceipt, VoucherDeposit:
		return true
	}
	return false
}

// CounterAccountType returns the required classification of the counter
// account for this voucher type: expenses are paid, revenue is received,
// deposits move cash into another asset (bank) account.
func (t VoucherType) CounterAccountType() AccountType {
	switch t {
	case VoucherPayment:
		return Expense
	case VoucherReceipt:
		return Revenue
	default:
		return Asset
	}
}

// BeneficiaryKind tags the beneficiary union below.
type BeneficiaryKind string

const (
	BeneficiaryClient BeneficiaryKind = "CLIENT"
	BeneficiaryVendor BeneficiaryKind = "VENDOR"
	BeneficiaryStaff  BeneficiaryKind = "STAFF"
	BeneficiaryOther  BeneficiaryKind = "OTHER"
)

// PartyKind maps a beneficiary kind to the party registry kind it references.
// OTHER carries a free-text name and references no party.
func (k BeneficiaryKind) PartyKind() (PartyKind, bool) {
	switch k {
	case BeneficiaryClient:
		return PartyClient, true
	case BeneficiaryVendor:
		return PartyVendor, true
	case BeneficiaryStaff:
		return PartyStaff, true
	}
	return "", false
}

// Beneficiary is a tagged union: CLIENT/VENDOR/STAFF carry a PartyID into the
// party registry, OTHER carries a free-text Name. Each case uses only its own
// field.
type Beneficiary struct {
	Kind    BeneficiaryKind `json:"kind"`
	PartyID string          `json:"partyID,omitempty"`
	Name    string          `json:"name,omitempty"`
}

// Validate enforces the per-kind field rules.
func (b Beneficiary) Validate() error {
	switch b.Kind {
	case BeneficiaryClient, BeneficiaryVendor, BeneficiaryStaff:
		if b.PartyID == "" {
			return fmt.Errorf("beneficiary of kind %s requires a party reference", b.Kind)
		}
		if b.Name != "" {
			return fmt.Errorf("beneficiary of kind %s must not carry a free-text name", b.Kind)
		}
	case BeneficiaryOther:
		if b.Name == "" {
			return fmt.Errorf("beneficiary of kind OTHER requires a name")
		}
		if b.PartyID != "" {
			return fmt.Errorf("beneficiary of kind OTHER must not reference a party")
		}
	default:
		return fmt.Errorf("unknown beneficiary kind %q", b.Kind)
	}
	return nil
}

// Voucher is a constrained, always-balanced two-line journal: a single amount
// moved between a cash/bank account and a counter account, with a typed
// beneficiary attached.
type Voucher struct {
	VoucherID        string      `json:"voucherID"` // Primary key (UUID)
	VoucherNo        string      `json:"voucherNo"` // Human-facing sequential number, e.g. "PV-000042"
	VoucherType      VoucherType `json:"voucherType"`
	VoucherDate      time.Time   `json:"voucherDate"`
	Amount           decimal.Decimal `json:"amount"`
	CurrencyCode     string          `json:"currencyCode"`
	CashAccountID    string          `json:"cashAccountID"`    // ASSET account holding cash (or the source account for deposits)
	CounterAccountID string          `json:"counterAccountID"` // Expense, revenue or bank account per type
	Beneficiary      Beneficiary     `json:"beneficiary"`
	Narration        string          `json:"narration"`
	Status           EntryStatus     `json:"status"`
	JournalID        *string         `json:"journalID,omitempty"` // Set once posted
	AuditFields
}

// Lines mechanically derives the two journal lines for this voucher:
//
//	PAYMENT -> debit counter (expense), credit cash
//	RECEIPT -> debit cash, credit counter (revenue)
//	DEPOSIT -> debit counter (bank), credit cash
//
// Both lines carry the voucher amount, so the result balances by construction.
func (v *Voucher) Lines() ([]Transaction, error) {
	if !v.VoucherType.IsValid() {
		return nil, fmt.Errorf("unknown voucher type %q", v.VoucherType)
	}
	if v.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("voucher amount must be positive")
	}
	if v.CashAccountID == "" || v.CounterAccountID == "" {
		return nil, fmt.Errorf("voucher requires both a cash account and a counter account")
	}

	debitAccount, creditAccount := v.CounterAccountID, v.CashAccountID
	if v.VoucherType == VoucherReceipt {
		debitAccount, creditAccount = v.CashAccountID, v.CounterAccountID
	}

	return []Transaction{
		{
			AccountID:       debitAccount,
			Amount:          v.Amount,
			TransactionType: Debit,
			CurrencyCode:    v.CurrencyCode,
			Notes:           v.Narration,
			TransactionDate: v.VoucherDate,
		},
		{
			AccountID:       creditAccount,
			Amount:          v.Amount,
			TransactionType: Credit,
			CurrencyCode:    v.CurrencyCode,
			Notes:           v.Narration,
			TransactionDate: v.VoucherDate,
		},
	}, nil
}
