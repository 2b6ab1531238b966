package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet types
const (
	WalletTypeCash    = "CASH"
	WalletTypeCard    = "CARD"
	WalletTypeBank    = "BANK"
	WalletTypeSavings = "SAVINGS"
)

// Wallet is a named money container. Its current balance is never stored;
// it is replayed from transactions on demand.
type Wallet struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string    `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Name           string    `gorm:"not null" json:"name"`
	CurrencyCode   string    `gorm:"type:varchar(3);not null" json:"currency_code"`
	Type           string    `gorm:"not null;default:'CASH'" json:"type"`
	InitialBalance int64     `gorm:"not null;default:0" json:"initial_balance"`
	IsDefault      bool      `gorm:"not null;default:false" json:"is_default"`
	IsArchived     bool      `gorm:"not null;default:false" json:"is_archived"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Type == "" {
		w.Type = WalletTypeCash
	}
	return nil
}
