package wallet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/metrics"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/services/currency"
	"fintrack/internal/validation"
)

// Service defines the main wallet service interface
type Service interface {
	// Balance operations
	GetBalance(ctx context.Context, walletID string) (int64, error)
	GetTotalBalance(ctx context.Context, userID string) (*TotalBalance, error)

	// Wallet management
	CreateWallet(ctx context.Context, userID string, input CreateWalletInput) (*models.Wallet, error)
	CreateDefaultWallet(ctx context.Context, userID, currencyCode string, initialBalance int64) (*models.Wallet, error)
	GetWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error)
	ListWallets(ctx context.Context, userID string, includeArchived bool) ([]*models.Wallet, error)
	UpdateWallet(ctx context.Context, userID, walletID string, input UpdateWalletInput) (*models.Wallet, error)

	// Lifecycle
	Archive(ctx context.Context, userID, walletID string) (*models.Wallet, error)
	Unarchive(ctx context.Context, userID, walletID string) (*models.Wallet, error)
	SetDefault(ctx context.Context, userID, walletID string) (*models.Wallet, error)
}

type service struct {
	repos    *repositories.Repositories
	currency currency.Service
	metrics  metrics.Collector
}

// NewService creates a new wallet service
func NewService(repos *repositories.Repositories, currencySvc currency.Service, collector metrics.Collector) Service {
	if repos == nil {
		panic("repositories are required")
	}
	if currencySvc == nil {
		panic("currency service is required")
	}

	return &service{
		repos:    repos,
		currency: currencySvc,
		metrics:  metrics.OrNoop(collector),
	}
}

func (s *service) GetBalance(ctx context.Context, walletID string) (int64, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(opGetBalance, time.Since(start)) }()

	wallet, err := s.repos.Wallets.GetByID(ctx, walletID)
	if err != nil {
		s.recordError(opGetBalance, err)
		return 0, err
	}

	balance, err := s.replay(ctx, wallet)
	if err != nil {
		s.recordError(opGetBalance, err)
		return 0, err
	}
	return balance, nil
}

// replay recomputes the balance of w from its full transaction history.
func (s *service) replay(ctx context.Context, w *models.Wallet) (int64, error) {
	txs, err := s.repos.Transactions.ListByWallet(ctx, w.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load wallet transactions: %w", err)
	}

	balance := w.InitialBalance
	for _, tx := range txs {
		amount, err := s.currency.ConvertMinor(ctx, tx.Amount, tx.CurrencyCode, w.CurrencyCode)
		if err != nil {
			return 0, fmt.Errorf("failed to convert transaction %s: %w", tx.ID, err)
		}
		if tx.Type == models.TransactionTypeExpense {
			balance -= amount
		} else {
			balance += amount
		}
	}
	return balance, nil
}

func (s *service) GetTotalBalance(ctx context.Context, userID string) (*TotalBalance, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(opGetTotalBalance, time.Since(start)) }()

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	wallets, err := s.repos.Wallets.ListByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	total := &TotalBalance{CurrencyCode: user.MainCurrencyCode, WalletsCount: len(wallets)}
	for _, w := range wallets {
		balance, err := s.replay(ctx, w)
		if err != nil {
			s.recordError(opGetTotalBalance, err)
			return nil, err
		}
		converted, err := s.currency.ConvertMinor(ctx, balance, w.CurrencyCode, user.MainCurrencyCode)
		if err != nil {
			s.recordError(opGetTotalBalance, err)
			return nil, fmt.Errorf("failed to convert wallet %s: %w", w.ID, err)
		}
		total.TotalBalance += converted
	}
	return total, nil
}

func (s *service) CreateWallet(ctx context.Context, userID string, input CreateWalletInput) (*models.Wallet, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateName(input.Name); err != nil {
		return nil, err
	}
	if !currency.ValidCode(input.CurrencyCode) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidCurrency, "currency code %q", input.CurrencyCode)
	}
	if input.Type == "" {
		input.Type = models.WalletTypeCash
	}
	if !isValidWalletType(input.Type) {
		return nil, ErrInvalidWalletType
	}

	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, userID, input.Name, ""); err != nil {
		return nil, err
	}

	active, err := s.repos.Wallets.CountActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	wallet := &models.Wallet{
		UserID:         userID,
		Name:           input.Name,
		CurrencyCode:   strings.ToUpper(input.CurrencyCode),
		Type:           input.Type,
		InitialBalance: input.InitialBalance,
		IsDefault:      active == 0,
	}
	if err := s.repos.Wallets.Create(ctx, wallet); err != nil {
		return nil, err
	}

	log.Printf("Wallet %s created for user %s (default=%t)", wallet.ID, userID, wallet.IsDefault)
	return wallet, nil
}

func (s *service) CreateDefaultWallet(ctx context.Context, userID, currencyCode string, initialBalance int64) (*models.Wallet, error) {
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	if !currency.ValidCode(currencyCode) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidCurrency, "currency code %q", currencyCode)
	}

	wallet := &models.Wallet{
		UserID:         userID,
		Name:           DefaultWalletName,
		CurrencyCode:   strings.ToUpper(currencyCode),
		Type:           models.WalletTypeCash,
		InitialBalance: initialBalance,
		IsDefault:      true,
	}

	err := s.repos.ExecuteInTransaction(ctx, func(tx *repositories.Repositories) error {
		if err := tx.Wallets.ClearDefault(ctx, userID); err != nil {
			return err
		}
		return tx.Wallets.Create(ctx, wallet)
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, userID, walletID string) (*models.Wallet, error) {
	return s.owned(ctx, s.repos, userID, walletID)
}

func (s *service) ListWallets(ctx context.Context, userID string, includeArchived bool) ([]*models.Wallet, error) {
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repos.Wallets.ListByUser(ctx, userID, includeArchived)
}

func (s *service) UpdateWallet(ctx context.Context, userID, walletID string, input UpdateWalletInput) (*models.Wallet, error) {
	wallet, err := s.owned(ctx, s.repos, userID, walletID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		if name != wallet.Name {
			if err := s.ensureNameFree(ctx, userID, name, wallet.ID); err != nil {
				return nil, err
			}
			wallet.Name = name
		}
	}
	if input.Type != nil {
		if !isValidWalletType(*input.Type) {
			return nil, ErrInvalidWalletType
		}
		wallet.Type = *input.Type
	}

	if err := s.repos.Wallets.Update(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *service) Archive(ctx context.Context, userID, walletID string) (*models.Wallet, error) {
	wallet, err := s.owned(ctx, s.repos, userID, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.IsArchived {
		return nil, apperrors.Wrapf(apperrors.ErrWalletArchived, "wallet %s is already archived", walletID)
	}

	active, err := s.repos.Wallets.CountActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active <= 1 {
		return nil, apperrors.ErrLastActiveWallet
	}
	if wallet.IsDefault {
		return nil, apperrors.ErrArchiveDefaultWallet
	}

	wallet.IsArchived = true
	if err := s.repos.Wallets.Update(ctx, wallet); err != nil {
		return nil, err
	}
	log.Printf("Wallet %s archived for user %s", walletID, userID)
	return wallet, nil
}

func (s *service) Unarchive(ctx context.Context, userID, walletID string) (*models.Wallet, error) {
	wallet, err := s.owned(ctx, s.repos, userID, walletID)
	if err != nil {
		return nil, err
	}
	if !wallet.IsArchived {
		return nil, apperrors.ErrWalletNotArchived
	}

	wallet.IsArchived = false
	if err := s.repos.Wallets.Update(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *service) SetDefault(ctx context.Context, userID, walletID string) (*models.Wallet, error) {
	var wallet *models.Wallet
	err := s.repos.ExecuteInTransaction(ctx, func(tx *repositories.Repositories) error {
		w, err := s.owned(ctx, tx, userID, walletID)
		if err != nil {
			return err
		}
		if w.IsArchived {
			return apperrors.Wrapf(apperrors.ErrWalletArchived, "cannot set archived wallet %s as default", walletID)
		}
		if err := tx.Wallets.ClearDefault(ctx, userID); err != nil {
			return err
		}
		w.IsDefault = true
		if err := tx.Wallets.Update(ctx, w); err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// owned loads a wallet and hides wallets of other users behind NotFound.
func (s *service) owned(ctx context.Context, repos *repositories.Repositories, userID, walletID string) (*models.Wallet, error) {
	wallet, err := repos.Wallets.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.UserID != userID {
		return nil, apperrors.Wrapf(apperrors.ErrWalletNotFound, "wallet %s", walletID)
	}
	return wallet, nil
}

func (s *service) ensureNameFree(ctx context.Context, userID, name, exceptID string) error {
	existing, err := s.repos.Wallets.GetByName(ctx, userID, name)
	switch {
	case errors.Is(err, apperrors.ErrWalletNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != exceptID:
		return apperrors.Wrapf(apperrors.ErrDuplicateWalletName, "wallet %q", name)
	}
	return nil
}

func (s *service) recordError(operation string, err error) {
	s.metrics.RecordError(operation, string(apperrors.KindOf(err)))
}

func validateName(name string) error {
	v := validation.New()
	v.Required("name", name)
	v.MaxLength("name", name, validation.MaxWalletNameLength)
	return v.Err(ErrInvalidWalletName)
}
