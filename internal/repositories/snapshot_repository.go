package repositories

import (
	"context"
	"time"

	"fintrack/internal/models"
)

// SnapshotRepository persists the per-user chain of daily balance snapshots.
// Every date argument is expected to be a UTC calendar day.
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *models.DailyBalanceSnapshot) error
	Update(ctx context.Context, snapshot *models.DailyBalanceSnapshot) error

	// GetByUserAndDate returns ErrSnapshotNotFound when the day has no snapshot.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*models.DailyBalanceSnapshot, error)

	// GetLatestBefore returns the latest snapshot strictly before date.
	GetLatestBefore(ctx context.Context, userID string, date time.Time) (*models.DailyBalanceSnapshot, error)

	// GetLatest returns the user's most recent snapshot.
	GetLatest(ctx context.Context, userID string) (*models.DailyBalanceSnapshot, error)

	// ListAfter returns snapshots strictly after date in ascending date order.
	ListAfter(ctx context.Context, userID string, date time.Time) ([]*models.DailyBalanceSnapshot, error)

	// ListRange returns snapshots with from <= date <= to in ascending order.
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]*models.DailyBalanceSnapshot, error)

	// ListByUser returns the whole chain in ascending order.
	ListByUser(ctx context.Context, userID string) ([]*models.DailyBalanceSnapshot, error)

	// UpdateBalances rewrites only the opening and closing balance of a row.
	UpdateBalances(ctx context.Context, id string, opening, closing int64) error
}
