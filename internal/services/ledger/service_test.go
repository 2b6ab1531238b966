package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/services/currency"
	"fintrack/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRates serves fixed rate tables and can be switched to failing.
type fakeRates struct {
	mu     sync.Mutex
	tables map[string]map[string]string
	fail   bool
}

func (f *fakeRates) Fetch(_ context.Context, base string) (*currency.RateTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("upstream unreachable")
	}
	t := &currency.RateTable{Base: base, Rates: map[string]decimal.Decimal{}}
	for code, r := range f.tables[base] {
		t.Rates[code] = decimal.RequireFromString(r)
	}
	return t, nil
}

func (f *fakeRates) set(base, code, rate string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tables[base] == nil {
		f.tables[base] = map[string]string{}
	}
	f.tables[base][code] = rate
}

func (f *fakeRates) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

type fixture struct {
	ctx    context.Context
	db     *gorm.DB
	repos  *repositories.Repositories
	rates  *fakeRates
	fx     currency.Service
	svc    Service
	user   *models.User
	wallet *models.Wallet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	repos := repositories.NewRepositories(db)
	rates := &fakeRates{tables: map[string]map[string]string{
		"eur": {"usd": "1.1"},
	}}
	fx := currency.NewService(rates, currency.NewMemoryRateCache(), currency.Config{}, nil)
	user := testutil.CreateUser(t, db, "USD")

	return &fixture{
		ctx:    context.Background(),
		db:     db,
		repos:  repos,
		rates:  rates,
		fx:     fx,
		svc:    NewService(repos, fx, Config{MaxQueuedMutations: DefaultMaxQueuedMutations}, nil),
		user:   user,
		wallet: testutil.CreateWallet(t, db, user.ID, "Cash", "USD", true),
	}
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) create(t *testing.T, txType string, amount int64, date time.Time) *models.Transaction {
	t.Helper()
	tx, err := f.svc.CreateTransaction(f.ctx, f.user.ID, CreateTransactionInput{
		Amount:       amount,
		CurrencyCode: "USD",
		Type:         txType,
		Date:         date,
	})
	require.NoError(t, err)
	return tx
}

func (f *fixture) totalBalance(t *testing.T) int64 {
	t.Helper()
	return testutil.ReloadUser(t, f.db, f.user.ID).TotalBalance
}

func (f *fixture) snapshot(t *testing.T, date time.Time) *models.DailyBalanceSnapshot {
	t.Helper()
	snap, err := f.repos.Snapshots.GetByUserAndDate(f.ctx, f.user.ID, date)
	require.NoError(t, err)
	return snap
}

func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	require.NoError(t, f.svc.VerifyUser(f.ctx, f.user.ID))
}

func assertSnapshot(t *testing.T, snap *models.DailyBalanceSnapshot, opening, closing int64) {
	t.Helper()
	assert.Equal(t, opening, snap.OpeningBalance, "opening on %s", snap.Date.Format(time.DateOnly))
	assert.Equal(t, closing, snap.ClosingBalance, "closing on %s", snap.Date.Format(time.DateOnly))
}

func TestService_LedgerScenario(t *testing.T) {
	f := newFixture(t)

	first := f.create(t, models.TransactionTypeIncome, 10000, day(1))
	jan1 := f.snapshot(t, day(1))
	assertSnapshot(t, jan1, 0, 10000)
	assert.Equal(t, int64(10000), jan1.TotalIncome)
	assert.Equal(t, int64(0), jan1.TotalExpense)
	assert.Equal(t, int64(10000), f.totalBalance(t))

	f.create(t, models.TransactionTypeExpense, 4000, day(3))
	assertSnapshot(t, f.snapshot(t, day(3)), 10000, 6000)
	assert.Equal(t, int64(6000), f.totalBalance(t))

	f.create(t, models.TransactionTypeIncome, 5000, day(2))
	assertSnapshot(t, f.snapshot(t, day(2)), 10000, 15000)
	assertSnapshot(t, f.snapshot(t, day(3)), 15000, 11000)
	assert.Equal(t, int64(11000), f.totalBalance(t))

	require.NoError(t, f.svc.DeleteTransaction(f.ctx, first.ID))
	jan1 = f.snapshot(t, day(1))
	assertSnapshot(t, jan1, 0, 0)
	assert.Equal(t, int64(0), jan1.TotalIncome)
	assertSnapshot(t, f.snapshot(t, day(2)), 0, 5000)
	assertSnapshot(t, f.snapshot(t, day(3)), 5000, 1000)
	assert.Equal(t, int64(1000), f.totalBalance(t))

	_, err := f.svc.GetTransaction(f.ctx, first.ID)
	assert.True(t, errors.Is(err, apperrors.ErrTransactionNotFound))
	f.assertConsistent(t)
}

func TestService_UpdateTransaction(t *testing.T) {
	tests := []struct {
		name  string
		input func() UpdateTransactionInput
		check func(t *testing.T, f *fixture)
	}{
		{
			name: "amount on the same day",
			input: func() UpdateTransactionInput {
				amount := int64(3000)
				return UpdateTransactionInput{Amount: &amount}
			},
			check: func(t *testing.T, f *fixture) {
				jan2 := f.snapshot(t, day(2))
				assert.Equal(t, int64(3000), jan2.TotalIncome)
				assert.Equal(t, 1, jan2.IncomeCount)
				assertSnapshot(t, f.snapshot(t, day(3)), 3000, 2000)
				assert.Equal(t, int64(2000), f.totalBalance(t))
			},
		},
		{
			name: "type flips income to expense",
			input: func() UpdateTransactionInput {
				kind := models.TransactionTypeExpense
				return UpdateTransactionInput{Type: &kind}
			},
			check: func(t *testing.T, f *fixture) {
				jan2 := f.snapshot(t, day(2))
				assert.Equal(t, 0, jan2.IncomeCount)
				assert.Equal(t, 1, jan2.ExpenseCount)
				assertSnapshot(t, jan2, 0, -5000)
				assert.Equal(t, int64(-6000), f.totalBalance(t))
			},
		},
		{
			name: "date moves past a later day",
			input: func() UpdateTransactionInput {
				d := day(4).Add(9 * time.Hour)
				return UpdateTransactionInput{Date: &d}
			},
			check: func(t *testing.T, f *fixture) {
				jan2 := f.snapshot(t, day(2))
				assertSnapshot(t, jan2, 0, 0)
				assert.Equal(t, 0, jan2.IncomeCount)
				assertSnapshot(t, f.snapshot(t, day(3)), 0, -1000)
				assertSnapshot(t, f.snapshot(t, day(4)), -1000, 4000)
				assert.Equal(t, int64(4000), f.totalBalance(t))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			income := f.create(t, models.TransactionTypeIncome, 5000, day(2))
			f.create(t, models.TransactionTypeExpense, 1000, day(3))

			before := f.totalBalance(t)
			updated, err := f.svc.UpdateTransaction(f.ctx, income.ID, tt.input())
			require.NoError(t, err)

			assert.Equal(t, updated.SignedConvertedAmount()-income.SignedConvertedAmount(),
				f.totalBalance(t)-before, "net movement is new signed minus old signed")
			tt.check(t, f)
			f.assertConsistent(t)
		})
	}
}

func TestService_ForeignCurrencyUndoIsExact(t *testing.T) {
	f := newFixture(t)
	eur := testutil.CreateWallet(t, f.db, f.user.ID, "Euro", "EUR", false)

	tx, err := f.svc.CreateTransaction(f.ctx, f.user.ID, CreateTransactionInput{
		WalletID: eur.ID,
		Amount:   1000,
		Type:     models.TransactionTypeIncome,
		Date:     day(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", tx.CurrencyCode, "defaults to the wallet currency")
	assert.Equal(t, int64(1100), tx.ConvertedAmount)
	assert.Equal(t, "USD", tx.ConvertedCurrencyCode)
	assert.Equal(t, int64(1100), f.totalBalance(t))

	f.rates.set("eur", "usd", "1.3")
	require.NoError(t, f.fx.ClearCache(f.ctx))

	require.NoError(t, f.svc.DeleteTransaction(f.ctx, tx.ID))
	assert.Equal(t, int64(0), f.totalBalance(t))
	assertSnapshot(t, f.snapshot(t, day(1)), 0, 0)
	f.assertConsistent(t)
}

func TestService_ConversionFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	eur := testutil.CreateWallet(t, f.db, f.user.ID, "Euro", "EUR", false)
	f.rates.setFail(true)

	_, err := f.svc.CreateTransaction(f.ctx, f.user.ID, CreateTransactionInput{
		WalletID: eur.ID,
		Amount:   1000,
		Type:     models.TransactionTypeIncome,
		Date:     day(1),
	})
	assert.Equal(t, apperrors.KindConversionUnavailable, apperrors.KindOf(err))

	var count int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&models.DailyBalanceSnapshot{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, int64(0), f.totalBalance(t))
}

func TestService_FailedCascadeRollsBack(t *testing.T) {
	f := newFixture(t)
	tx := f.create(t, models.TransactionTypeIncome, 1000, day(1))

	// Corrupt the day so undoing the entry drives its totals negative.
	require.NoError(t, f.db.Model(&models.DailyBalanceSnapshot{}).
		Where("user_id = ?", f.user.ID).
		Updates(map[string]interface{}{"total_income": 0, "net_change": 0, "closing_balance": 0}).Error)

	err := f.svc.DeleteTransaction(f.ctx, tx.ID)
	assert.True(t, errors.Is(err, apperrors.ErrInconsistent))

	_, err = f.svc.GetTransaction(f.ctx, tx.ID)
	assert.NoError(t, err, "transaction row survives the rollback")
	assert.Equal(t, int64(1000), f.totalBalance(t), "total balance is rolled back")
}

func TestService_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	archived := testutil.CreateWallet(t, f.db, f.user.ID, "Old", "USD", false)
	require.NoError(t, f.db.Model(archived).Update("is_archived", true).Error)
	stranger := testutil.CreateUser(t, f.db, "USD")
	foreign := testutil.CreateWallet(t, f.db, stranger.ID, "Theirs", "USD", true)
	homeless := testutil.CreateUser(t, f.db, "USD")

	valid := CreateTransactionInput{Amount: 100, CurrencyCode: "USD", Type: models.TransactionTypeIncome, Date: day(1)}

	tests := []struct {
		name   string
		userID string
		mutate func(*CreateTransactionInput)
		want   error
	}{
		{"zero amount", f.user.ID, func(in *CreateTransactionInput) { in.Amount = 0 }, apperrors.ErrInvalidAmount},
		{"unknown type", f.user.ID, func(in *CreateTransactionInput) { in.Type = "TRANSFER" }, apperrors.ErrInvalidTransactionType},
		{"malformed currency", f.user.ID, func(in *CreateTransactionInput) { in.CurrencyCode = "US1" }, apperrors.ErrInvalidCurrency},
		{"archived wallet", f.user.ID, func(in *CreateTransactionInput) { in.WalletID = archived.ID }, apperrors.ErrWalletArchived},
		{"foreign wallet", f.user.ID, func(in *CreateTransactionInput) { in.WalletID = foreign.ID }, apperrors.ErrWalletNotFound},
		{"no default wallet", homeless.ID, func(in *CreateTransactionInput) {}, apperrors.ErrNoDefaultWallet},
		{"unknown user", "missing", func(in *CreateTransactionInput) {}, apperrors.ErrUserNotFound},
		{"long description", f.user.ID, func(in *CreateTransactionInput) { in.Description = strings.Repeat("x", 501) }, apperrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.svc.CreateTransaction(f.ctx, tt.userID, in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)

	bad := int64(-5)
	_, err := f.svc.UpdateTransaction(f.ctx, "missing", UpdateTransactionInput{Amount: &bad})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidAmount))
	_, err = f.svc.UpdateTransaction(f.ctx, "missing", UpdateTransactionInput{})
	assert.True(t, errors.Is(err, apperrors.ErrTransactionNotFound))
	assert.True(t, errors.Is(f.svc.DeleteTransaction(f.ctx, "missing"), apperrors.ErrTransactionNotFound))
}

func TestService_ConcurrentCreatesLoseNothing(t *testing.T) {
	f := newFixture(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			txType := models.TransactionTypeIncome
			if i%4 == 0 {
				txType = models.TransactionTypeExpense
			}
			_, err := f.svc.CreateTransaction(f.ctx, f.user.ID, CreateTransactionInput{
				Amount:       100,
				CurrencyCode: "USD",
				Type:         txType,
				Date:         day(1 + i%5),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// 15 incomes and 5 expenses of 100
	assert.Equal(t, int64(1000), f.totalBalance(t))
	f.assertConsistent(t)
}

func TestService_BalanceConservation(t *testing.T) {
	f := newFixture(t)
	eur := testutil.CreateWallet(t, f.db, f.user.ID, "Euro", "EUR", false)

	var created []*models.Transaction
	for i := 0; i < 12; i++ {
		in := CreateTransactionInput{
			Amount:      int64(137 * (i + 1)),
			Type:        models.TransactionTypeIncome,
			Date:        day(12 - i),
			Description: fmt.Sprintf("entry %d", i),
		}
		if i%3 == 0 {
			in.Type = models.TransactionTypeExpense
		}
		if i%2 == 0 {
			in.WalletID = eur.ID
		}
		tx, err := f.svc.CreateTransaction(f.ctx, f.user.ID, in)
		require.NoError(t, err)
		created = append(created, tx)
	}

	newDate := day(20)
	_, err := f.svc.UpdateTransaction(f.ctx, created[3].ID, UpdateTransactionInput{Date: &newDate})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteTransaction(f.ctx, created[5].ID))

	txs, err := f.svc.ListTransactions(f.ctx, f.user.ID, repositories.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 11)

	var sum int64
	for _, tx := range txs {
		sum += tx.SignedConvertedAmount()
	}
	assert.Equal(t, sum, f.totalBalance(t))
	f.assertConsistent(t)
}
