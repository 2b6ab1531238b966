package repositories

import (
	"context"
	"time"

	"fintrack/internal/models"
)

// TransactionRepository defines the interface for ledger entry persistence
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, id string) error

	// ListByWallet returns every transaction booked on the wallet
	ListByWallet(ctx context.Context, walletID string) ([]*models.Transaction, error)

	// ListByUser returns the user's transactions matching filter, newest first
	ListByUser(ctx context.Context, userID string, filter TransactionFilter) ([]*models.Transaction, error)
}

// TransactionFilter narrows ListByUser. From and To are inclusive UTC
// calendar days: a To of 2024-01-05 keeps everything dated that day. Search
// matches the description case-insensitively; empty matches everything.
type TransactionFilter struct {
	From   *time.Time
	To     *time.Time
	Search string
}
