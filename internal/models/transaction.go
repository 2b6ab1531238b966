package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction types
const (
	TransactionTypeIncome  = "INCOME"
	TransactionTypeExpense = "EXPENSE"
)

// IsValidTransactionType reports whether t is INCOME or EXPENSE.
func IsValidTransactionType(t string) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type Transaction struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       string    `gorm:"type:varchar(36);index:idx_transactions_user_date,priority:1;not null" json:"user_id"`
	WalletID     string    `gorm:"type:varchar(36);index;not null" json:"wallet_id"`
	Amount       int64     `gorm:"not null" json:"amount"` // minor units of CurrencyCode
	CurrencyCode string    `gorm:"type:varchar(3);not null" json:"currency_code"`
	Type         string    `gorm:"not null" json:"type"`
	CategoryID   *string   `gorm:"type:varchar(36)" json:"category_id"`
	Date         time.Time `gorm:"index:idx_transactions_user_date,priority:2;not null" json:"date"`
	Description  string    `json:"description"`
	// ConvertedAmount is the main-currency amount that was applied to the
	// user's balance and snapshot chain when this row was last written.
	ConvertedAmount       int64     `gorm:"not null;default:0" json:"converted_amount"`
	ConvertedCurrencyCode string    `gorm:"type:varchar(3)" json:"converted_currency_code"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// SignedConvertedAmount is the effect of the transaction on the main
// currency balance: positive for income, negative for expense.
func (t *Transaction) SignedConvertedAmount() int64 {
	if t.Type == TransactionTypeExpense {
		return -t.ConvertedAmount
	}
	return t.ConvertedAmount
}
