package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the repositories that share one *gorm.DB, so a
// mutation spanning several tables can run them all in one transaction.
type Repositories struct {
	db           *gorm.DB
	Users        UserRepository
	Wallets      WalletRepository
	Transactions TransactionRepository
	Snapshots    SnapshotRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:           db,
		Users:        NewUserRepository(db),
		Wallets:      NewWalletRepository(db),
		Transactions: NewTransactionRepository(db),
		Snapshots:    NewSnapshotRepository(db),
	}
}

// ExecuteInTransaction runs fn with repositories bound to a single database
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise.
func (r *Repositories) ExecuteInTransaction(ctx context.Context, fn func(*Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// DB exposes the underlying handle for health checks.
func (r *Repositories) DB() *gorm.DB {
	return r.db
}
