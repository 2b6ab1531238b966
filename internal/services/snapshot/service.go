// Package snapshot maintains the per-user chain of daily balance snapshots
// and answers balance history and summary queries over it.
//
// Every snapshot satisfies
//
//	ClosingBalance = OpeningBalance + NetChange
//	NetChange      = TotalIncome - TotalExpense
//
// and each OpeningBalance equals the ClosingBalance of the previous snapshot
// of the same user, or 0 for the first. Engine.ApplyDelta restores these
// after every change by cascading forward from the mutated day.
package snapshot

import (
	"context"
	"errors"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
)

var (
	minDate = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

// Summary aggregates the snapshots of a period in the user's main currency.
type Summary struct {
	TotalBalance      int64      `json:"total_balance"`
	CurrencyCode      string     `json:"currency_code"`
	TotalIncome       int64      `json:"total_income"`
	TotalExpense      int64      `json:"total_expense"`
	NetChange         int64      `json:"net_change"`
	IncomeCount       int        `json:"income_count"`
	ExpenseCount      int        `json:"expense_count"`
	TotalTransactions int        `json:"total_transactions"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	IsAllTime         bool       `json:"is_all_time"`
}

// BalancePoint is the closing balance at the end of one calendar day.
type BalancePoint struct {
	Date    time.Time `json:"date"`
	Balance int64     `json:"balance"`
}

// IncomeExpensePoint holds one day's flows; days without activity are zero.
type IncomeExpensePoint struct {
	Date         time.Time `json:"date"`
	Income       int64     `json:"income"`
	Expense      int64     `json:"expense"`
	IncomeCount  int       `json:"income_count"`
	ExpenseCount int       `json:"expense_count"`
}

// Service defines the read side of the snapshot chain
type Service interface {
	GetSnapshot(ctx context.Context, userID string, date time.Time) (*models.DailyBalanceSnapshot, error)
	GetBalanceHistory(ctx context.Context, userID string, from, to time.Time) ([]*models.DailyBalanceSnapshot, error)
	GetSummary(ctx context.Context, userID string, from, to *time.Time) (*Summary, error)
	// GetBalanceTrend returns one point per day in [from, to]. Days without a
	// snapshot carry the previous closing balance forward.
	GetBalanceTrend(ctx context.Context, userID string, from, to time.Time) ([]BalancePoint, error)
	GetIncomeExpenseTrend(ctx context.Context, userID string, from, to time.Time) ([]IncomeExpensePoint, error)
}

type service struct {
	users     repositories.UserRepository
	snapshots repositories.SnapshotRepository
}

func NewService(repos *repositories.Repositories) Service {
	if repos == nil {
		panic("repositories are required")
	}
	return &service{
		users:     repos.Users,
		snapshots: repos.Snapshots,
	}
}

func (s *service) GetSnapshot(ctx context.Context, userID string, date time.Time) (*models.DailyBalanceSnapshot, error) {
	snap, err := s.snapshots.GetByUserAndDate(ctx, userID, NormalizeDate(date))
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			return nil, apperrors.Wrapf(apperrors.ErrSnapshotNotFound,
				"no snapshot for %s", NormalizeDate(date).Format(time.DateOnly))
		}
		return nil, err
	}
	return snap, nil
}

func (s *service) GetBalanceHistory(ctx context.Context, userID string, from, to time.Time) ([]*models.DailyBalanceSnapshot, error) {
	from, to = NormalizeDate(from), NormalizeDate(to)
	if from.After(to) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidDateRange,
			"%s is after %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return s.snapshots.ListRange(ctx, userID, from, to)
}

func (s *service) GetBalanceTrend(ctx context.Context, userID string, from, to time.Time) ([]BalancePoint, error) {
	from, to, err := trendRange(from, to)
	if err != nil {
		return nil, err
	}

	var running int64
	prev, err := s.snapshots.GetLatestBefore(ctx, userID, from)
	switch {
	case err == nil:
		running = prev.ClosingBalance
	case !errors.Is(err, apperrors.ErrSnapshotNotFound):
		return nil, err
	}

	period, err := s.snapshots.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	points := make([]BalancePoint, 0, daysBetween(from, to))
	next := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if next < len(period) && NormalizeDate(period[next].Date).Equal(d) {
			running = period[next].ClosingBalance
			next++
		}
		points = append(points, BalancePoint{Date: d, Balance: running})
	}
	return points, nil
}

func (s *service) GetIncomeExpenseTrend(ctx context.Context, userID string, from, to time.Time) ([]IncomeExpensePoint, error) {
	from, to, err := trendRange(from, to)
	if err != nil {
		return nil, err
	}

	period, err := s.snapshots.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	points := make([]IncomeExpensePoint, 0, daysBetween(from, to))
	next := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		point := IncomeExpensePoint{Date: d}
		if next < len(period) && NormalizeDate(period[next].Date).Equal(d) {
			snap := period[next]
			point.Income, point.Expense = snap.TotalIncome, snap.TotalExpense
			point.IncomeCount, point.ExpenseCount = snap.IncomeCount, snap.ExpenseCount
			next++
		}
		points = append(points, point)
	}
	return points, nil
}

// trendRange normalizes both bounds; a zero bound counts as missing.
func trendRange(from, to time.Time) (time.Time, time.Time, error) {
	if from.IsZero() || to.IsZero() {
		return from, to, apperrors.Wrapf(apperrors.ErrInvalidDateRange, "from and to are required")
	}
	from, to = NormalizeDate(from), NormalizeDate(to)
	if from.After(to) {
		return from, to, apperrors.Wrapf(apperrors.ErrInvalidDateRange,
			"%s is after %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return from, to, nil
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}

func (s *service) GetSummary(ctx context.Context, userID string, from, to *time.Time) (*Summary, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{CurrencyCode: user.MainCurrencyCode}

	if from == nil && to == nil {
		summary.IsAllTime = true
		chain, err := s.snapshots.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(chain) == 0 {
			summary.TotalBalance = user.TotalBalance
			return summary, nil
		}
		summary.add(chain)
		summary.TotalBalance = chain[len(chain)-1].ClosingBalance
		return summary, nil
	}

	lo, hi := minDate, maxDate
	if from != nil {
		lo = NormalizeDate(*from)
		summary.StartDate = &lo
	}
	if to != nil {
		hi = NormalizeDate(*to)
		summary.EndDate = &hi
	}
	if lo.After(hi) {
		return nil, apperrors.ErrInvalidDateRange
	}

	period, err := s.snapshots.ListRange(ctx, userID, lo, hi)
	if err != nil {
		return nil, err
	}
	summary.add(period)

	switch {
	case len(period) > 0:
		summary.TotalBalance = period[len(period)-1].ClosingBalance
	case from != nil:
		prev, err := s.snapshots.GetLatestBefore(ctx, userID, lo)
		if err == nil {
			summary.TotalBalance = prev.ClosingBalance
		} else if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			return nil, err
		}
	}
	return summary, nil
}

func (s *Summary) add(chain []*models.DailyBalanceSnapshot) {
	for _, snap := range chain {
		s.TotalIncome += snap.TotalIncome
		s.TotalExpense += snap.TotalExpense
		s.IncomeCount += snap.IncomeCount
		s.ExpenseCount += snap.ExpenseCount
	}
	s.NetChange = s.TotalIncome - s.TotalExpense
	s.TotalTransactions = s.IncomeCount + s.ExpenseCount
}
