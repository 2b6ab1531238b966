package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/metrics"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
)

// ApplyResult describes what a delta changed.
type ApplyResult struct {
	// Snapshot is the snapshot of the mutated day after the delta, or nil
	// when a zero delta hit a day with no snapshot.
	Snapshot *models.DailyBalanceSnapshot
	// Cascaded counts the later snapshots whose balances were rewritten.
	Cascaded int
}

// Engine applies deltas to a user's snapshot chain and keeps every later
// snapshot's opening and closing balance consistent. An Engine performs no
// locking; callers serialize mutations per user.
type Engine struct {
	repo    repositories.SnapshotRepository
	metrics metrics.Collector
}

func NewEngine(repo repositories.SnapshotRepository, collector metrics.Collector) *Engine {
	if repo == nil {
		panic("snapshot repository is required")
	}
	return &Engine{repo: repo, metrics: metrics.OrNoop(collector)}
}

// ApplyDelta adds d to the snapshot of date's day, creating it if needed,
// and cascades the new closing balance forward through every later
// snapshot of the user.
func (e *Engine) ApplyDelta(ctx context.Context, userID string, date time.Time, currency string, d Delta) (*ApplyResult, error) {
	day := NormalizeDate(date)

	snap, err := e.repo.GetByUserAndDate(ctx, userID, day)
	switch {
	case errors.Is(err, apperrors.ErrSnapshotNotFound):
		if d.IsZero() {
			return &ApplyResult{}, nil
		}
		snap, err = e.create(ctx, userID, day, currency, d)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := e.accumulate(ctx, snap, d); err != nil {
			return nil, err
		}
	}

	cascaded, err := e.cascade(ctx, userID, day, snap.ClosingBalance)
	if err != nil {
		return nil, err
	}
	e.metrics.RecordCascade(cascaded)

	return &ApplyResult{Snapshot: snap, Cascaded: cascaded}, nil
}

func (e *Engine) create(ctx context.Context, userID string, day time.Time, currency string, d Delta) (*models.DailyBalanceSnapshot, error) {
	if d.hasNegative() {
		return nil, apperrors.Wrapf(apperrors.ErrInconsistent,
			"negative delta for %s on %s with no snapshot", userID, day.Format(time.DateOnly))
	}

	var opening int64
	prev, err := e.repo.GetLatestBefore(ctx, userID, day)
	switch {
	case err == nil:
		opening = prev.ClosingBalance
	case !errors.Is(err, apperrors.ErrSnapshotNotFound):
		return nil, err
	}

	snap := &models.DailyBalanceSnapshot{
		UserID:         userID,
		Date:           day,
		CurrencyCode:   currency,
		OpeningBalance: opening,
		TotalIncome:    d.Income,
		TotalExpense:   d.Expense,
		IncomeCount:    d.IncomeCount,
		ExpenseCount:   d.ExpenseCount,
	}
	snap.Recompute()

	if err := e.repo.Create(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (e *Engine) accumulate(ctx context.Context, snap *models.DailyBalanceSnapshot, d Delta) error {
	snap.TotalIncome += d.Income
	snap.TotalExpense += d.Expense
	snap.IncomeCount += d.IncomeCount
	snap.ExpenseCount += d.ExpenseCount

	if snap.TotalIncome < 0 || snap.TotalExpense < 0 || snap.IncomeCount < 0 || snap.ExpenseCount < 0 {
		return apperrors.Wrapf(apperrors.ErrInconsistent,
			"snapshot %s on %s would have negative totals", snap.ID, snap.Date.Format(time.DateOnly))
	}

	snap.Recompute()
	return e.repo.Update(ctx, snap)
}

// cascade rewrites the balances of every snapshot strictly after day,
// carrying closing forward. Rows whose balances already match are not
// written.
func (e *Engine) cascade(ctx context.Context, userID string, day time.Time, closing int64) (int, error) {
	later, err := e.repo.ListAfter(ctx, userID, day)
	if err != nil {
		return 0, err
	}

	carry := closing
	cascaded := 0
	for _, s := range later {
		newClosing := carry + s.NetChange
		if s.OpeningBalance != carry || s.ClosingBalance != newClosing {
			if err := e.repo.UpdateBalances(ctx, s.ID, carry, newClosing); err != nil {
				return cascaded, fmt.Errorf("failed to cascade snapshot %s: %w", s.ID, err)
			}
			s.OpeningBalance = carry
			s.ClosingBalance = newClosing
			cascaded++
		}
		carry = s.ClosingBalance
	}
	return cascaded, nil
}

// VerifyChain checks every at-rest invariant of the user's snapshot chain
// and reports the first violation as an inconsistency.
func (e *Engine) VerifyChain(ctx context.Context, userID string) error {
	chain, err := e.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	var carry int64
	var prevDate time.Time
	for i, s := range chain {
		day := s.Date.Format(time.DateOnly)
		switch {
		case i > 0 && !s.Date.After(prevDate):
			return apperrors.Wrapf(apperrors.ErrInconsistent, "snapshot %s is out of order", day)
		case s.NetChange != s.TotalIncome-s.TotalExpense:
			return apperrors.Wrapf(apperrors.ErrInconsistent, "snapshot %s net change %d != %d - %d",
				day, s.NetChange, s.TotalIncome, s.TotalExpense)
		case s.ClosingBalance != s.OpeningBalance+s.NetChange:
			return apperrors.Wrapf(apperrors.ErrInconsistent, "snapshot %s closing %d != %d + %d",
				day, s.ClosingBalance, s.OpeningBalance, s.NetChange)
		case s.OpeningBalance != carry:
			return apperrors.Wrapf(apperrors.ErrInconsistent, "snapshot %s opening %d != previous closing %d",
				day, s.OpeningBalance, carry)
		case s.TotalIncome < 0 || s.TotalExpense < 0 || s.IncomeCount < 0 || s.ExpenseCount < 0:
			return apperrors.Wrapf(apperrors.ErrInconsistent, "snapshot %s has negative totals", day)
		}
		carry = s.ClosingBalance
		prevDate = s.Date
	}
	return nil
}
