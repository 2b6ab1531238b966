/*
Package wallet provides wallet management and balance calculation.

Balances are never stored on a wallet. GetBalance replays every transaction
booked on the wallet, converts each into the wallet's currency and adds the
signed sum to the wallet's initial balance:

	balance, err := svc.GetBalance(ctx, walletID)

Lifecycle rules enforced by the service:
  - the first active wallet of a user becomes the default
  - wallet names are unique per user
  - a user always keeps at least one active wallet
  - the default wallet cannot be archived; set another default first
  - archived wallets cannot become the default

Usage:

	svc := wallet.NewService(repos, currencySvc, metrics)

	w, err := svc.CreateWallet(ctx, userID, wallet.CreateWalletInput{
	    Name:         "Savings",
	    CurrencyCode: "EUR",
	    Type:         models.WalletTypeSavings,
	})

	total, err := svc.GetTotalBalance(ctx, userID)

Error Handling:

The service returns internal/errors sentinels:
  - ErrWalletNotFound: unknown wallet, or a wallet owned by another user
  - ErrDuplicateWalletName: name already used by the user
  - ErrLastActiveWallet, ErrArchiveDefaultWallet: archive refused
  - ErrWalletArchived: archived wallet used where an active one is required
  - ErrConversionUnavailable: a transaction could not be converted
*/
package wallet
