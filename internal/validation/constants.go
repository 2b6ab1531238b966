package validation

const (
	// String lengths
	MaxDescriptionLength = 500
	MaxWalletNameLength  = 100
	MaxCategoryIDLength  = 36
)
