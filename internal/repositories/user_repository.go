package repositories

import (
	"context"

	"fintrack/internal/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	// Create creates a new user in the database
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail retrieves a user by their email address
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// AdjustTotalBalance adds delta to the user's cached total balance
	AdjustTotalBalance(ctx context.Context, id string, delta int64) error
}

// Implementation will be in user_repository_impl.go
