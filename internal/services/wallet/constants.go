package wallet

// Default values
const (
	DefaultWalletName = "Main Wallet"
	DefaultCurrency   = "USD"
)

// Metric operation names
const (
	opGetBalance      = "wallet_balance"
	opGetTotalBalance = "wallet_total_balance"
)
