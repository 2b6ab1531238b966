package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	PermissionWalletRead       = "wallet:read"
	PermissionWalletWrite      = "wallet:write"
	PermissionTransactionRead  = "transaction:read"
	PermissionTransactionWrite = "transaction:write"
	PermissionReportRead       = "report:read"
	PermissionCurrencyAdmin    = "currency:admin"
)

// UserClaims is the bearer token payload. Tokens are issued elsewhere; this
// service only verifies them.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case "admin":
		return []string{
			PermissionWalletRead,
			PermissionWalletWrite,
			PermissionTransactionRead,
			PermissionTransactionWrite,
			PermissionReportRead,
			PermissionCurrencyAdmin,
		}
	case "user":
		return []string{
			PermissionWalletRead,
			PermissionWalletWrite,
			PermissionTransactionRead,
			PermissionTransactionWrite,
			PermissionReportRead,
		}
	default:
		return []string{}
	}
}
