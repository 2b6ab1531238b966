package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyBalanceSnapshot aggregates one user's ledger for one calendar day
// in the user's main currency.
//
//	ClosingBalance = OpeningBalance + NetChange
//	NetChange      = TotalIncome - TotalExpense
//	OpeningBalance = ClosingBalance of the previous snapshot, or 0
type DailyBalanceSnapshot struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string    `gorm:"type:varchar(36);uniqueIndex:idx_snapshots_user_date,priority:1;not null" json:"user_id"`
	Date           time.Time `gorm:"uniqueIndex:idx_snapshots_user_date,priority:2;not null" json:"date"`
	OpeningBalance int64     `gorm:"not null;default:0" json:"opening_balance"`
	ClosingBalance int64     `gorm:"not null;default:0" json:"closing_balance"`
	CurrencyCode   string    `gorm:"type:varchar(3);not null" json:"currency_code"`
	TotalIncome    int64     `gorm:"not null;default:0" json:"total_income"`
	TotalExpense   int64     `gorm:"not null;default:0" json:"total_expense"`
	NetChange      int64     `gorm:"not null;default:0" json:"net_change"`
	IncomeCount    int       `gorm:"not null;default:0" json:"income_count"`
	ExpenseCount   int       `gorm:"not null;default:0" json:"expense_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (DailyBalanceSnapshot) TableName() string {
	return "daily_balance_snapshots"
}

func (s *DailyBalanceSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Recompute derives NetChange and ClosingBalance from the totals and the
// current OpeningBalance.
func (s *DailyBalanceSnapshot) Recompute() {
	s.NetChange = s.TotalIncome - s.TotalExpense
	s.ClosingBalance = s.OpeningBalance + s.NetChange
}
