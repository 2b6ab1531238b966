package ledger

import "time"

// CreateTransactionInput describes a new ledger entry. Amount is in minor
// units of CurrencyCode.
type CreateTransactionInput struct {
	// WalletID selects the wallet; empty means the user's default wallet.
	WalletID     string    `json:"wallet_id"`
	Amount       int64     `json:"amount"`
	CurrencyCode string    `json:"currency_code"`
	Type         string    `json:"type"`
	CategoryID   *string   `json:"category_id"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
}

// UpdateTransactionInput holds the editable fields of a transaction; nil
// fields keep their current value.
type UpdateTransactionInput struct {
	WalletID     *string    `json:"wallet_id"`
	Amount       *int64     `json:"amount"`
	CurrencyCode *string    `json:"currency_code"`
	Type         *string    `json:"type"`
	CategoryID   *string    `json:"category_id"`
	Date         *time.Time `json:"date"`
	Description  *string    `json:"description"`
}

// Config holds configuration for the ledger service
type Config struct {
	// MaxQueuedMutations bounds the mutations waiting on one user.
	// Zero or less is unbounded.
	MaxQueuedMutations int
}

// DefaultMaxQueuedMutations is the queue bound used by cmd/server.
const DefaultMaxQueuedMutations = 64

// Metric operation names
const (
	opCreate = "create_transaction"
	opUpdate = "update_transaction"
	opDelete = "delete_transaction"
)
