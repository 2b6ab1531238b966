package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrapf(apperrors.ErrTransactionNotFound, "transaction %s", id)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Save(tx).Error; err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Wrapf(apperrors.ErrTransactionNotFound, "transaction %s", id)
	}
	return nil
}

func (r *transactionRepository) ListByWallet(ctx context.Context, walletID string) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("date ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string, filter TransactionFilter) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.From != nil {
		query = query.Where("date >= ?", startOfDay(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("date < ?", startOfDay(*filter.To).AddDate(0, 0, 1))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		query = query.Where("LOWER(description) LIKE ? ESCAPE '\\'", "%"+likeEscaper.Replace(strings.ToLower(term))+"%")
	}
	if err := query.Order("date DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list user transactions: %w", err)
	}
	return txs, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
