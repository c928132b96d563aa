package models

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Merchant permissions
const (
	PermissionMerchantRead  = "merchant:read"
	PermissionMerchantWrite = "merchant:write"
)

// MerchantClaims identifies an authenticated merchant. The subject is the
// merchant's email.
type MerchantClaims struct {
	jwt.RegisteredClaims
	MerchantID  uint     `json:"merchant_id"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
}

// HasPermission checks if the claims include a specific permission
func (c *MerchantClaims) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, permission)
}

// DefaultMerchantPermissions returns the permissions granted to every
// authenticated merchant.
func DefaultMerchantPermissions() []string {
	return []string{
		PermissionMerchantRead,
		PermissionMerchantWrite,
	}
}
