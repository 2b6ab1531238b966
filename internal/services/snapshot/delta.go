package snapshot

import (
	"time"

	"fintrack/internal/models"
)

// Delta is a change to one day's income and expense totals, in minor units
// of the user's main currency.
type Delta struct {
	Income       int64
	Expense      int64
	IncomeCount  int
	ExpenseCount int
}

// EntryDelta is the effect of adding one transaction of the given type and
// converted amount.
func EntryDelta(txType string, convertedAmount int64) Delta {
	if txType == models.TransactionTypeExpense {
		return Delta{Expense: convertedAmount, ExpenseCount: 1}
	}
	return Delta{Income: convertedAmount, IncomeCount: 1}
}

// NetChange is the delta's effect on the closing balance.
func (d Delta) NetChange() int64 {
	return d.Income - d.Expense
}

// Negate returns the delta that undoes d.
func (d Delta) Negate() Delta {
	return Delta{
		Income:       -d.Income,
		Expense:      -d.Expense,
		IncomeCount:  -d.IncomeCount,
		ExpenseCount: -d.ExpenseCount,
	}
}

// Add combines two deltas on the same day.
func (d Delta) Add(o Delta) Delta {
	return Delta{
		Income:       d.Income + o.Income,
		Expense:      d.Expense + o.Expense,
		IncomeCount:  d.IncomeCount + o.IncomeCount,
		ExpenseCount: d.ExpenseCount + o.ExpenseCount,
	}
}

func (d Delta) IsZero() bool {
	return d == Delta{}
}

func (d Delta) hasNegative() bool {
	return d.Income < 0 || d.Expense < 0 || d.IncomeCount < 0 || d.ExpenseCount < 0
}

// NormalizeDate truncates t to the start of its calendar day in UTC.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
