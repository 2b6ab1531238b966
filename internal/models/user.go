package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID               string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name             string `gorm:"not null" json:"name"`
	Email            string `gorm:"uniqueIndex;not null" json:"email"`
	MainCurrencyCode string `gorm:"type:varchar(3);not null;default:'USD'" json:"main_currency_code"`
	// TotalBalance is the sum of every transaction's converted effect, in
	// minor units of MainCurrencyCode.
	TotalBalance int64     `gorm:"not null;default:0" json:"total_balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
