package errors

var (
	ErrWalletNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrWalletArchived = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "WALLET_ARCHIVED",
		Message: "wallet is archived",
	}
	ErrNoDefaultWallet = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "NO_DEFAULT_WALLET",
		Message: "no default wallet found, create a wallet first",
	}
	ErrDuplicateWalletName = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "DUPLICATE_WALLET_NAME",
		Message: "wallet with this name already exists",
	}
	ErrLastActiveWallet = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "LAST_ACTIVE_WALLET",
		Message: "cannot archive the last active wallet",
	}
	ErrArchiveDefaultWallet = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "ARCHIVE_DEFAULT_WALLET",
		Message: "cannot archive default wallet, set another wallet as default first",
	}
	ErrWalletNotArchived = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "WALLET_NOT_ARCHIVED",
		Message: "wallet is not archived",
	}
)
