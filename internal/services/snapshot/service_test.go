package snapshot

import (
	"errors"
	"testing"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_GetSnapshotAndHistory(t *testing.T) {
	f := newEngineFixture(t)
	svc := NewService(f.repos)

	f.apply(t, day(1), EntryDelta(models.TransactionTypeIncome, 10000))
	f.apply(t, day(3), EntryDelta(models.TransactionTypeExpense, 4000))
	f.apply(t, day(5), EntryDelta(models.TransactionTypeIncome, 1000))

	snap, err := svc.GetSnapshot(f.ctx, f.userID, day(3).Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(6000), snap.ClosingBalance)

	_, err = svc.GetSnapshot(f.ctx, f.userID, day(2))
	assert.True(t, errors.Is(err, apperrors.ErrSnapshotNotFound))

	history, err := svc.GetBalanceHistory(f.ctx, f.userID, day(1), day(3))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Date.Equal(day(1)))
	assert.True(t, history[1].Date.Equal(day(3)))

	_, err = svc.GetBalanceHistory(f.ctx, f.userID, day(4), day(3))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDateRange))
}

func TestService_GetSummary(t *testing.T) {
	f := newEngineFixture(t)
	svc := NewService(f.repos)

	empty, err := svc.GetSummary(f.ctx, f.userID, nil, nil)
	require.NoError(t, err)
	assert.True(t, empty.IsAllTime)
	assert.Equal(t, int64(0), empty.TotalBalance)
	assert.Equal(t, "USD", empty.CurrencyCode)

	f.apply(t, day(1), EntryDelta(models.TransactionTypeIncome, 10000))
	f.apply(t, day(3), EntryDelta(models.TransactionTypeExpense, 4000))
	f.apply(t, day(5), EntryDelta(models.TransactionTypeIncome, 1000))

	tests := []struct {
		name        string
		from, to    *int
		wantBalance int64
		wantIncome  int64
		wantCount   int
	}{
		{name: "all time", wantBalance: 7000, wantIncome: 11000, wantCount: 3},
		{name: "closed range", from: ptr(2), to: ptr(4), wantBalance: 6000, wantCount: 1},
		{name: "empty range falls back to earlier closing", from: ptr(6), to: ptr(9), wantBalance: 7000},
		{name: "from only", from: ptr(3), wantBalance: 7000, wantIncome: 1000, wantCount: 2},
		{name: "to only", to: ptr(1), wantBalance: 10000, wantIncome: 10000, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := dayPtr(tt.from), dayPtr(tt.to)
			got, err := svc.GetSummary(f.ctx, f.userID, from, to)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBalance, got.TotalBalance)
			assert.Equal(t, tt.wantIncome, got.TotalIncome)
			assert.Equal(t, tt.wantCount, got.TotalTransactions)
			assert.Equal(t, got.TotalIncome-got.TotalExpense, got.NetChange)
		})
	}

	_, err = svc.GetSummary(f.ctx, "missing", nil, nil)
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}

func ptr(d int) *int { return &d }

func dayPtr(d *int) *time.Time {
	if d == nil {
		return nil
	}
	t := day(*d)
	return &t
}

func TestService_GetBalanceTrend(t *testing.T) {
	f := newEngineFixture(t)
	svc := NewService(f.repos)

	f.apply(t, day(1), EntryDelta(models.TransactionTypeIncome, 10000))
	f.apply(t, day(3), EntryDelta(models.TransactionTypeExpense, 4000))
	f.apply(t, day(6), EntryDelta(models.TransactionTypeIncome, 1000))

	balances := func(points []BalancePoint) []int64 {
		out := make([]int64, 0, len(points))
		for _, p := range points {
			out = append(out, p.Balance)
		}
		return out
	}

	t.Run("gap days carry the previous closing", func(t *testing.T) {
		points, err := svc.GetBalanceTrend(f.ctx, f.userID, day(1), day(7))
		require.NoError(t, err)
		require.Len(t, points, 7)
		assert.Equal(t, []int64{10000, 10000, 6000, 6000, 6000, 7000, 7000}, balances(points))
		for i, p := range points {
			assert.True(t, p.Date.Equal(day(i+1)), p.Date)
		}
	})

	t.Run("seeded from the snapshot before from", func(t *testing.T) {
		points, err := svc.GetBalanceTrend(f.ctx, f.userID, day(4), day(6).Add(18*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, []int64{6000, 6000, 7000}, balances(points))
	})

	t.Run("range without snapshots", func(t *testing.T) {
		points, err := svc.GetBalanceTrend(f.ctx, f.userID, day(4), day(5))
		require.NoError(t, err)
		assert.Equal(t, []int64{6000, 6000}, balances(points))

		points, err = svc.GetBalanceTrend(f.ctx, "nobody", day(1), day(2))
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 0}, balances(points))
	})

	t.Run("invalid bounds", func(t *testing.T) {
		_, err := svc.GetBalanceTrend(f.ctx, f.userID, day(5), day(4))
		assert.True(t, errors.Is(err, apperrors.ErrInvalidDateRange))
		_, err = svc.GetBalanceTrend(f.ctx, f.userID, time.Time{}, day(4))
		assert.True(t, errors.Is(err, apperrors.ErrInvalidDateRange))
	})
}

func TestService_GetIncomeExpenseTrend(t *testing.T) {
	f := newEngineFixture(t)
	svc := NewService(f.repos)

	f.apply(t, day(2), EntryDelta(models.TransactionTypeIncome, 10000))
	f.apply(t, day(2), EntryDelta(models.TransactionTypeExpense, 2500))
	f.apply(t, day(4), EntryDelta(models.TransactionTypeExpense, 4000))

	points, err := svc.GetIncomeExpenseTrend(f.ctx, f.userID, day(1), day(5))
	require.NoError(t, err)
	require.Len(t, points, 5)

	assert.Equal(t, IncomeExpensePoint{Date: day(1)}, points[0])
	assert.Equal(t, IncomeExpensePoint{Date: day(2), Income: 10000, Expense: 2500, IncomeCount: 1, ExpenseCount: 1}, points[1])
	assert.Equal(t, IncomeExpensePoint{Date: day(3)}, points[2])
	assert.Equal(t, IncomeExpensePoint{Date: day(4), Expense: 4000, ExpenseCount: 1}, points[3])
	assert.Equal(t, IncomeExpensePoint{Date: day(5)}, points[4])

	empty, err := svc.GetIncomeExpenseTrend(f.ctx, f.userID, day(10), day(10))
	require.NoError(t, err)
	assert.Equal(t, []IncomeExpensePoint{{Date: day(10)}}, empty)

	_, err = svc.GetIncomeExpenseTrend(f.ctx, f.userID, day(3), time.Time{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDateRange))
}
