package errors

var (
	ErrInvalidCurrency = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "INVALID_CURRENCY",
		Message: "malformed currency code",
	}
	ErrConversionUnavailable = &DomainError{
		Kind:    KindConversionUnavailable,
		Code:    "CONVERSION_UNAVAILABLE",
		Message: "exchange rate unavailable",
	}
)
