package errors

var (
	ErrUserNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrTransactionNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}
	ErrSnapshotNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "SNAPSHOT_NOT_FOUND",
		Message: "snapshot not found",
	}
	ErrInvalidAmount = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "INVALID_AMOUNT",
		Message: "amount must be a positive number of minor units",
	}
	ErrInvalidTransactionType = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "INVALID_TRANSACTION_TYPE",
		Message: "transaction type must be INCOME or EXPENSE",
	}
	ErrInvalidDateRange = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "INVALID_DATE_RANGE",
		Message: "start date must not be after end date",
	}
	ErrLockQueueFull = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "MUTATION_QUEUE_FULL",
		Message: "too many pending mutations for this user",
	}
	ErrInvalidInput = &DomainError{
		Kind:    KindInvalidRequest,
		Code:    "INVALID_INPUT",
		Message: "invalid input",
	}
	ErrInconsistent = &DomainError{
		Kind:    KindInconsistent,
		Code:    "LEDGER_INCONSISTENT",
		Message: "ledger invariant violated",
	}
)
