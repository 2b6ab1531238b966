package wallet

import "fintrack/internal/models"

// CreateWalletInput describes a new wallet
type CreateWalletInput struct {
	Name           string `json:"name"`
	CurrencyCode   string `json:"currency_code"`
	Type           string `json:"type"`
	InitialBalance int64  `json:"initial_balance"`
}

// UpdateWalletInput holds the editable wallet fields; nil fields are kept.
type UpdateWalletInput struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

// TotalBalance is the sum of every active wallet's balance in the user's
// main currency.
type TotalBalance struct {
	TotalBalance int64  `json:"total_balance"`
	CurrencyCode string `json:"currency_code"`
	WalletsCount int    `json:"wallets_count"`
}

func isValidWalletType(t string) bool {
	switch t {
	case models.WalletTypeCash, models.WalletTypeCard, models.WalletTypeBank, models.WalletTypeSavings:
		return true
	}
	return false
}
