package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "merchants:all", MerchantListKey())
	assert.Equal(t, "merchant:id:42", MerchantKey(42))
}
