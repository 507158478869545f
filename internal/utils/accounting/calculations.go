package accounting

import (
	"fmt"

	"github.com/corebooks/corebooks/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the correct sign to a transaction amount based
// on account type and transaction side. Services and repositories both use it
// so balance arithmetic stays consistent.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func CalculateSignedAmount(txn domain.Transaction, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := txn.Amount
	isDebit := txn.TransactionType == domain.Debit

	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, txn.AccountID)
	}
	return signedAmount, nil
}

// Totals sums the two sides of a set of journal lines. Balance is exact
// decimal equality, never a float comparison.
func Totals(transactions []domain.Transaction) (totalDebit, totalCredit decimal.Decimal, balanced bool) {
	totalDebit = decimal.Zero
	totalCredit = decimal.Zero
	for _, txn := range transactions {
		if txn.TransactionType == domain.Debit {
			totalDebit = totalDebit.Add(txn.Amount)
		} else {
			totalCredit = totalCredit.Add(txn.Amount)
		}
	}
	return totalDebit, totalCredit, totalDebit.Equal(totalCredit)
}
