package wallet

import apperrors "fintrack/internal/errors"

// ErrInvalidWalletType is returned for a type outside CASH, CARD, BANK and
// SAVINGS.
var ErrInvalidWalletType = &apperrors.DomainError{
	Kind:    apperrors.KindInvalidRequest,
	Code:    "INVALID_WALLET_TYPE",
	Message: "wallet type must be CASH, CARD, BANK or SAVINGS",
}

// ErrInvalidWalletName is returned for a blank or overlong name.
var ErrInvalidWalletName = &apperrors.DomainError{
	Kind:    apperrors.KindInvalidRequest,
	Code:    "INVALID_WALLET_NAME",
	Message: "invalid wallet name",
}
