package repositories

import (
	"context"

	"fintrack/internal/models"
)

// WalletRepository defines the interface for wallet-related database operations
type WalletRepository interface {
	// Core wallet operations
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByID(ctx context.Context, id string) (*models.Wallet, error)
	Update(ctx context.Context, wallet *models.Wallet) error

	// Lookups
	GetDefault(ctx context.Context, userID string) (*models.Wallet, error)
	GetByName(ctx context.Context, userID, name string) (*models.Wallet, error)
	ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*models.Wallet, error)
	CountActive(ctx context.Context, userID string) (int64, error)

	// ClearDefault unsets IsDefault on every wallet of the user
	ClearDefault(ctx context.Context, userID string) error
}
