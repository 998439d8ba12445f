package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions carried in gateway-issued tokens.
const (
	PermissionPayoutRead    = "payout:read"
	PermissionPayoutWrite   = "payout:write"
	PermissionBalanceRead   = "balance:read"
	PermissionReconcileRead = "reconcile:read"
)

// UserClaims are the JWT claims the platform gateway issues. The engine
// trusts them as-is; token lifecycle is the gateway's concern.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID      uint     `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission.
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
