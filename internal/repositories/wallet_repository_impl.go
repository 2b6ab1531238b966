package repositories

import (
	"context"
	"errors"
	"fmt"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	result := r.db.WithContext(ctx).Create(wallet)
	if result.Error != nil {
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).First(&wallet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrapf(apperrors.ErrWalletNotFound, "wallet %s", id)
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Update(ctx context.Context, wallet *models.Wallet) error {
	result := r.db.WithContext(ctx).Save(wallet)
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetDefault(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ? AND is_archived = ?", userID, true, false).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoDefaultWallet
		}
		return nil, fmt.Errorf("failed to get default wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByName(ctx context.Context, userID, name string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by name: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*models.Wallet, error) {
	var wallets []*models.Wallet
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}
	if err := query.Order("is_default DESC").Order("created_at ASC").Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

func (r *walletRepository) CountActive(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ? AND is_archived = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active wallets: %w", err)
	}
	return count, nil
}

func (r *walletRepository) ClearDefault(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear default wallet: %w", err)
	}
	return nil
}
