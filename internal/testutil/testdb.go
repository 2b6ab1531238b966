// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns a migrated, isolated in-memory sqlite database. The pool
// is pinned to one connection so every query sees the same memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repositories.AutoMigrate(db))
	return db
}

// CreateUser inserts a user with the given main currency.
func CreateUser(t *testing.T, db *gorm.DB, mainCurrency string) *models.User {
	t.Helper()

	user := &models.User{
		Name:             "Test User",
		Email:            uuid.NewString() + "@example.com",
		MainCurrencyCode: mainCurrency,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateWallet inserts a wallet for the user.
func CreateWallet(t *testing.T, db *gorm.DB, userID, name, currency string, isDefault bool) *models.Wallet {
	t.Helper()

	w := &models.Wallet{
		UserID:       userID,
		Name:         name,
		CurrencyCode: currency,
		IsDefault:    isDefault,
	}
	require.NoError(t, db.Create(w).Error)
	return w
}

// ReloadUser reads the user back from the database.
func ReloadUser(t *testing.T, db *gorm.DB, id string) *models.User {
	t.Helper()

	var u models.User
	require.NoError(t, db.WithContext(context.Background()).First(&u, "id = ?", id).Error)
	return &u
}
