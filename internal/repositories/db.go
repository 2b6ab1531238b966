// Package repositories provides data access layer implementations.
// It handles all database operations and data persistence logic.
package repositories

import (
	"fmt"
	"log"
	"os"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBConfig holds database connection pool configuration
type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadDBConfig reads pool settings from the environment.
func LoadDBConfig() DBConfig {
	return DBConfig{
		MaxIdleConns:    config.GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		MaxOpenConns:    config.GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		ConnMaxLifetime: config.GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: time.Minute * 30,
	}
}

// DSN builds the postgres connection string from the environment.
func DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.GetEnv("DB_HOST", "localhost"),
		config.GetEnv("DB_USER", "postgres"),
		config.GetEnv("DB_PASSWORD", "postgres"),
		config.GetEnv("DB_NAME", "fintrack"),
		config.GetEnv("DB_PORT", "5432"),
	)
}

// InitDB opens the postgres connection, configures the pool and applies
// migrations.
func InitDB() (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN()), &gorm.Config{
		Logger: NewGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	cfg := LoadDBConfig()
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("✅ PostgreSQL connected & migrations applied successfully!")
	return db, nil
}

// AutoMigrate creates or updates every ledger table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Transaction{},
		&models.DailyBalanceSnapshot{},
	)
}

// NewGormLogger only logs warnings and errors, and ignores "record not found".
func NewGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  !config.IsProduction(),
		},
	)
}

// DropAllTables removes every ledger table. Used by the seed command's
// reset flag.
func DropAllTables(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&models.DailyBalanceSnapshot{},
		&models.Transaction{},
		&models.Wallet{},
		&models.User{},
	)
}
