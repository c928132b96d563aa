package cache

import "fmt"

type EntityType string

const (
	EntityMerchant  EntityType = "merchant"
	EntityMerchants EntityType = "merchants"
)

type KeyType string

const (
	KeyID  KeyType = "id"
	KeyAll KeyType = "all"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}

// MerchantListKey is the single well-known key holding the full merchant list.
func MerchantListKey() string {
	return fmt.Sprintf("%s:%s", EntityMerchants, KeyAll)
}

// MerchantKey is the per-record key for merchant id.
func MerchantKey(id uint) string {
	return GenerateKey(EntityMerchant, KeyID, id)
}
