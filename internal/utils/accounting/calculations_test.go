package accounting_test

import (
	"testing"

	"github.com/corebooks/corebooks/internal/core/domain"
	"github.com/corebooks/corebooks/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSignedAmount(t *testing.T) {
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name        string
		accountType domain.AccountType
		side        domain.TransactionType
		want        decimal.Decimal
	}{
		{"debit asset", domain.Asset, domain.Debit, amount},
		{"credit asset", domain.Asset, domain.Credit, amount.Neg()},
		{"debit expense", domain.Expense, domain.Debit, amount},
		{"credit expense", domain.Expense, domain.Credit, amount.Neg()},
		{"debit liability", domain.Liability, domain.Debit, amount.Neg()},
		{"credit liability", domain.Liability, domain.Credit, amount},
		{"debit equity", domain.Equity, domain.Debit, amount.Neg()},
		{"credit equity", domain.Equity, domain.Credit, amount},
		{"debit revenue", domain.Revenue, domain.Debit, amount.Neg()},
		{"credit revenue", domain.Revenue, domain.Credit, amount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := domain.Transaction{Amount: amount, TransactionType: tt.side}
			got, err := accounting.CalculateSignedAmount(txn, tt.accountType)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestCalculateSignedAmount_UnknownAccountType(t *testing.T) {
	txn := domain.Transaction{Amount: decimal.NewFromInt(1), TransactionType: domain.Debit}
	_, err := accounting.CalculateSignedAmount(txn, domain.AccountType("BUCKET"))
	assert.Error(t, err)
}

func TestTotals(t *testing.T) {
	t.Run("balanced", func(t *testing.T) {
		lines := []domain.Transaction{
			{Amount: decimal.RequireFromString("10.50"), TransactionType: domain.Debit},
			{Amount: decimal.RequireFromString("4.50"), TransactionType: domain.Credit},
			{Amount: decimal.RequireFromString("6.00"), TransactionType: domain.Credit},
		}
		debit, credit, balanced := accounting.Totals(lines)
		assert.True(t, debit.Equal(decimal.RequireFromString("10.50")))
		assert.True(t, credit.Equal(decimal.RequireFromString("10.50")))
		assert.True(t, balanced)
	})

	t.Run("off by a cent", func(t *testing.T) {
		lines := []domain.Transaction{
			{Amount: decimal.RequireFromString("10.00"), TransactionType: domain.Debit},
			{Amount: decimal.RequireFromString("9.99"), TransactionType: domain.Credit},
		}
		_, _, balanced := accounting.Totals(lines)
		assert.False(t, balanced)
	})

	t.Run("exact decimal comparison not float", func(t *testing.T) {
		// 0.1 + 0.2 equals 0.3 exactly in decimal arithmetic.
		lines := []domain.Transaction{
			{Amount: decimal.RequireFromString("0.1"), TransactionType: domain.Debit},
			{Amount: decimal.RequireFromString("0.2"), TransactionType: domain.Debit},
			{Amount: decimal.RequireFromString("0.3"), TransactionType: domain.Credit},
		}
		_, _, balanced := accounting.Totals(lines)
		assert.True(t, balanced)
	})

	t.Run("empty", func(t *testing.T) {
		debit, credit, balanced := accounting.Totals(nil)
		assert.True(t, debit.IsZero())
		assert.True(t, credit.IsZero())
		assert.True(t, balanced)
	})
}
