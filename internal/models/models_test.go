package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_SignedConvertedAmount(t *testing.T) {
	income := &Transaction{Type: TransactionTypeIncome, ConvertedAmount: 1500}
	expense := &Transaction{Type: TransactionTypeExpense, ConvertedAmount: 1500}

	assert.Equal(t, int64(1500), income.SignedConvertedAmount())
	assert.Equal(t, int64(-1500), expense.SignedConvertedAmount())
}

func TestDailyBalanceSnapshot_Recompute(t *testing.T) {
	s := &DailyBalanceSnapshot{OpeningBalance: 10000, TotalIncome: 5000, TotalExpense: 9000}
	s.Recompute()

	assert.Equal(t, int64(-4000), s.NetChange)
	assert.Equal(t, int64(6000), s.ClosingBalance)
}

func TestIsValidTransactionType(t *testing.T) {
	assert.True(t, IsValidTransactionType("INCOME"))
	assert.True(t, IsValidTransactionType("EXPENSE"))
	assert.False(t, IsValidTransactionType("income"))
	assert.False(t, IsValidTransactionType("TRANSFER"))
}

func TestUserClaims_HasPermission(t *testing.T) {
	claims := &UserClaims{Permissions: GetDefaultPermissions("user")}

	assert.True(t, claims.HasPermission(PermissionTransactionWrite))
	assert.False(t, claims.HasPermission(PermissionCurrencyAdmin))
	assert.Empty(t, GetDefaultPermissions("nobody"))
}
