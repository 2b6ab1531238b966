// Package ledger coordinates transaction mutations. Each create, update or
// delete runs under its user's FIFO lock and persists the transaction row,
// the user's total balance and the snapshot chain in one database
// transaction.
package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/metrics"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/services/currency"
	"fintrack/internal/services/snapshot"
	"fintrack/internal/validation"
)

// Service defines the ledger mutation interface
type Service interface {
	CreateTransaction(ctx context.Context, userID string, input CreateTransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, input UpdateTransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// Reads are not serialized.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, filter repositories.TransactionFilter) ([]*models.Transaction, error)

	// VerifyUser checks the user's snapshot chain and that its last closing
	// balance matches the user's total balance.
	VerifyUser(ctx context.Context, userID string) error
}

type service struct {
	repos    *repositories.Repositories
	currency currency.Service
	locker   *UserLocker
	metrics  metrics.Collector
}

// NewService creates a new ledger service
func NewService(repos *repositories.Repositories, currencySvc currency.Service, config Config, collector metrics.Collector) Service {
	if repos == nil {
		panic("repositories are required")
	}
	if currencySvc == nil {
		panic("currency service is required")
	}

	return &service{
		repos:    repos,
		currency: currencySvc,
		locker:   NewUserLocker(config.MaxQueuedMutations),
		metrics:  metrics.OrNoop(collector),
	}
}

func (s *service) CreateTransaction(ctx context.Context, userID string, input CreateTransactionInput) (tx *models.Transaction, err error) {
	defer s.observe(opCreate, time.Now(), &err)

	if input.Amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if !models.IsValidTransactionType(input.Type) {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.CurrencyCode != "" && !currency.ValidCode(input.CurrencyCode) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidCurrency, "currency code %q", input.CurrencyCode)
	}
	if err := validateText(input.Description, input.CategoryID); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.resolveWallet(ctx, userID, input.WalletID)
	if err != nil {
		return nil, err
	}

	tx = &models.Transaction{
		UserID:       userID,
		WalletID:     wallet.ID,
		Amount:       input.Amount,
		CurrencyCode: strings.ToUpper(input.CurrencyCode),
		Type:         input.Type,
		CategoryID:   input.CategoryID,
		Date:         input.Date.UTC(),
		Description:  input.Description,
	}
	if tx.CurrencyCode == "" {
		tx.CurrencyCode = wallet.CurrencyCode
	}
	if input.Date.IsZero() {
		tx.Date = time.Now().UTC()
	}

	// Conversion happens before anything is written.
	if err := s.convert(ctx, tx, user.MainCurrencyCode); err != nil {
		return nil, err
	}

	err = s.repos.ExecuteInTransaction(ctx, func(r *repositories.Repositories) error {
		if err := r.Transactions.Create(ctx, tx); err != nil {
			return err
		}
		if err := r.Users.AdjustTotalBalance(ctx, userID, tx.SignedConvertedAmount()); err != nil {
			return err
		}
		engine := snapshot.NewEngine(r.Snapshots, s.metrics)
		_, err := engine.ApplyDelta(ctx, userID, tx.Date, user.MainCurrencyCode,
			snapshot.EntryDelta(tx.Type, tx.ConvertedAmount))
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Transaction %s created for user %s: %s %d %s", tx.ID, userID, tx.Type, tx.Amount, tx.CurrencyCode)
	return tx, nil
}

func (s *service) UpdateTransaction(ctx context.Context, id string, input UpdateTransactionInput) (updated *models.Transaction, err error) {
	defer s.observe(opUpdate, time.Now(), &err)

	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	existing, err := s.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, existing.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Reload under the lock; an earlier mutation may have changed the row.
	existing, err = s.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByID(ctx, existing.UserID)
	if err != nil {
		return nil, err
	}

	oldConverted, err := s.appliedAmount(ctx, existing, user.MainCurrencyCode)
	if err != nil {
		return nil, err
	}

	next := *existing
	applyUpdate(&next, input)
	if input.WalletID != nil && *input.WalletID != existing.WalletID {
		wallet, err := s.resolveWallet(ctx, user.ID, *input.WalletID)
		if err != nil {
			return nil, err
		}
		next.WalletID = wallet.ID
	}
	if err := s.convert(ctx, &next, user.MainCurrencyCode); err != nil {
		return nil, err
	}

	undo := snapshot.EntryDelta(existing.Type, oldConverted).Negate()
	redo := snapshot.EntryDelta(next.Type, next.ConvertedAmount)
	oldSigned := signed(existing.Type, oldConverted)

	err = s.repos.ExecuteInTransaction(ctx, func(r *repositories.Repositories) error {
		if err := r.Transactions.Update(ctx, &next); err != nil {
			return err
		}
		if err := r.Users.AdjustTotalBalance(ctx, user.ID, next.SignedConvertedAmount()-oldSigned); err != nil {
			return err
		}

		engine := snapshot.NewEngine(r.Snapshots, s.metrics)
		oldDay, newDay := snapshot.NormalizeDate(existing.Date), snapshot.NormalizeDate(next.Date)
		if oldDay.Equal(newDay) {
			_, err := engine.ApplyDelta(ctx, user.ID, oldDay, user.MainCurrencyCode, undo.Add(redo))
			return err
		}
		if _, err := engine.ApplyDelta(ctx, user.ID, oldDay, user.MainCurrencyCode, undo); err != nil {
			return err
		}
		_, err := engine.ApplyDelta(ctx, user.ID, newDay, user.MainCurrencyCode, redo)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Transaction %s updated for user %s", id, user.ID)
	return &next, nil
}

func (s *service) DeleteTransaction(ctx context.Context, id string) (err error) {
	defer s.observe(opDelete, time.Now(), &err)

	existing, err := s.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return err
	}

	release, err := s.lock(ctx, existing.UserID)
	if err != nil {
		return err
	}
	defer release()

	existing, err = s.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user, err := s.repos.Users.GetByID(ctx, existing.UserID)
	if err != nil {
		return err
	}

	oldConverted, err := s.appliedAmount(ctx, existing, user.MainCurrencyCode)
	if err != nil {
		return err
	}

	err = s.repos.ExecuteInTransaction(ctx, func(r *repositories.Repositories) error {
		if err := r.Users.AdjustTotalBalance(ctx, user.ID, -signed(existing.Type, oldConverted)); err != nil {
			return err
		}
		engine := snapshot.NewEngine(r.Snapshots, s.metrics)
		if _, err := engine.ApplyDelta(ctx, user.ID, existing.Date, user.MainCurrencyCode,
			snapshot.EntryDelta(existing.Type, oldConverted).Negate()); err != nil {
			return err
		}
		return r.Transactions.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Printf("Transaction %s deleted for user %s", id, user.ID)
	return nil
}

func (s *service) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.repos.Transactions.GetByID(ctx, id)
}

func (s *service) ListTransactions(ctx context.Context, userID string, filter repositories.TransactionFilter) ([]*models.Transaction, error) {
	if filter.From != nil && filter.To != nil && snapshot.NormalizeDate(*filter.From).After(snapshot.NormalizeDate(*filter.To)) {
		return nil, apperrors.ErrInvalidDateRange
	}
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repos.Transactions.ListByUser(ctx, userID, filter)
}

func (s *service) VerifyUser(ctx context.Context, userID string) error {
	release, err := s.lock(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := snapshot.NewEngine(s.repos.Snapshots, s.metrics).VerifyChain(ctx, userID); err != nil {
		return err
	}

	var closing int64
	latest, err := s.repos.Snapshots.GetLatest(ctx, userID)
	switch {
	case err == nil:
		closing = latest.ClosingBalance
	case !apperrors.IsKind(err, apperrors.KindNotFound):
		return err
	}
	if closing != user.TotalBalance {
		return apperrors.Wrapf(apperrors.ErrInconsistent,
			"user %s total balance %d != latest closing %d", userID, user.TotalBalance, closing)
	}
	return nil
}

func (s *service) lock(ctx context.Context, userID string) (func(), error) {
	start := time.Now()
	release, err := s.locker.Acquire(ctx, userID)
	s.metrics.RecordLockWait(time.Since(start))
	return release, err
}

// resolveWallet returns the wallet a new entry is booked on: the given one,
// or the user's default when walletID is empty.
func (s *service) resolveWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error) {
	if walletID == "" {
		return s.repos.Wallets.GetDefault(ctx, userID)
	}

	wallet, err := s.repos.Wallets.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.UserID != userID {
		return nil, apperrors.Wrapf(apperrors.ErrWalletNotFound, "wallet %s", walletID)
	}
	if wallet.IsArchived {
		return nil, apperrors.Wrapf(apperrors.ErrWalletArchived, "wallet %s", walletID)
	}
	return wallet, nil
}

// convert sets tx's converted amount in mainCurrency.
func (s *service) convert(ctx context.Context, tx *models.Transaction, mainCurrency string) error {
	converted, err := s.currency.ConvertMinor(ctx, tx.Amount, tx.CurrencyCode, mainCurrency)
	if err != nil {
		return fmt.Errorf("failed to convert %d %s to %s: %w", tx.Amount, tx.CurrencyCode, mainCurrency, err)
	}
	tx.ConvertedAmount = converted
	tx.ConvertedCurrencyCode = mainCurrency
	return nil
}

// appliedAmount is the converted amount tx currently contributes to the
// user's balance. The stored value is exact; it is only recomputed when the
// user's main currency has changed since tx was written.
func (s *service) appliedAmount(ctx context.Context, tx *models.Transaction, mainCurrency string) (int64, error) {
	if strings.EqualFold(tx.ConvertedCurrencyCode, mainCurrency) {
		return tx.ConvertedAmount, nil
	}
	converted, err := s.currency.ConvertMinor(ctx, tx.Amount, tx.CurrencyCode, mainCurrency)
	if err != nil {
		return 0, fmt.Errorf("failed to convert %d %s to %s: %w", tx.Amount, tx.CurrencyCode, mainCurrency, err)
	}
	return converted, nil
}

func (s *service) observe(operation string, start time.Time, errp *error) {
	s.metrics.RecordOperationDuration(operation, time.Since(start))
	if err := *errp; err != nil {
		kind := apperrors.KindOf(err)
		s.metrics.RecordOperationResult(operation, metrics.ResultFailure)
		s.metrics.RecordError(operation, string(kind))
		if kind == apperrors.KindInconsistent || kind == apperrors.KindInternal {
			log.Printf("⚠️ %s failed: %v", operation, err)
		}
		return
	}
	s.metrics.RecordOperationResult(operation, metrics.ResultSuccess)
}

func validateUpdate(input UpdateTransactionInput) error {
	if input.Amount != nil && *input.Amount <= 0 {
		return apperrors.ErrInvalidAmount
	}
	if input.Type != nil && !models.IsValidTransactionType(*input.Type) {
		return apperrors.ErrInvalidTransactionType
	}
	if input.CurrencyCode != nil && !currency.ValidCode(*input.CurrencyCode) {
		return apperrors.Wrapf(apperrors.ErrInvalidCurrency, "currency code %q", *input.CurrencyCode)
	}
	description := ""
	if input.Description != nil {
		description = *input.Description
	}
	return validateText(description, input.CategoryID)
}

func validateText(description string, categoryID *string) error {
	v := validation.New()
	v.MaxLength("description", description, validation.MaxDescriptionLength)
	if categoryID != nil {
		v.MaxLength("category_id", *categoryID, validation.MaxCategoryIDLength)
	}
	return v.Err(apperrors.ErrInvalidInput)
}

func applyUpdate(tx *models.Transaction, input UpdateTransactionInput) {
	if input.Amount != nil {
		tx.Amount = *input.Amount
	}
	if input.CurrencyCode != nil {
		tx.CurrencyCode = strings.ToUpper(*input.CurrencyCode)
	}
	if input.Type != nil {
		tx.Type = *input.Type
	}
	if input.CategoryID != nil {
		tx.CategoryID = input.CategoryID
	}
	if input.Date != nil {
		tx.Date = input.Date.UTC()
	}
	if input.Description != nil {
		tx.Description = *input.Description
	}
}

func signed(txType string, amount int64) int64 {
	if txType == models.TransactionTypeExpense {
		return -amount
	}
	return amount
}
