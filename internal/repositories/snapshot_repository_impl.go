package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *models.DailyBalanceSnapshot) error {
	if err := r.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) Update(ctx context.Context, snapshot *models.DailyBalanceSnapshot) error {
	if err := r.db.WithContext(ctx).Save(snapshot).Error; err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*models.DailyBalanceSnapshot, error) {
	var snapshot models.DailyBalanceSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&snapshot).Error
	if err != nil {
		return nil, notFoundOr(err, "failed to get snapshot")
	}
	return &snapshot, nil
}

func (r *snapshotRepository) GetLatestBefore(ctx context.Context, userID string, date time.Time) (*models.DailyBalanceSnapshot, error) {
	var snapshot models.DailyBalanceSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date < ?", userID, date).
		Order("date DESC").
		First(&snapshot).Error
	if err != nil {
		return nil, notFoundOr(err, "failed to get previous snapshot")
	}
	return &snapshot, nil
}

func (r *snapshotRepository) GetLatest(ctx context.Context, userID string) (*models.DailyBalanceSnapshot, error) {
	var snapshot models.DailyBalanceSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		First(&snapshot).Error
	if err != nil {
		return nil, notFoundOr(err, "failed to get latest snapshot")
	}
	return &snapshot, nil
}

func (r *snapshotRepository) ListAfter(ctx context.Context, userID string, date time.Time) ([]*models.DailyBalanceSnapshot, error) {
	var snapshots []*models.DailyBalanceSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date > ?", userID, date).
		Order("date ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subsequent snapshots: %w", err)
	}
	return snapshots, nil
}

func (r *snapshotRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]*models.DailyBalanceSnapshot, error) {
	var snapshots []*models.DailyBalanceSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}

func (r *snapshotRepository) ListByUser(ctx context.Context, userID string) ([]*models.DailyBalanceSnapshot, error) {
	var snapshots []*models.DailyBalanceSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}

func (r *snapshotRepository) UpdateBalances(ctx context.Context, id string, opening, closing int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.DailyBalanceSnapshot{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"opening_balance": opening,
			"closing_balance": closing,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update snapshot balances: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Wrapf(apperrors.ErrSnapshotNotFound, "snapshot %s", id)
	}
	return nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrSnapshotNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
