package catalog

import (
	"testing"

	"pactify/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCatalog_Lookup(t *testing.T) {
	cat := New(Config{})

	t.Run("supported destination", func(t *testing.T) {
		c := cat.Lookup(models.RailStripe, "US", "USD")
		assert.True(t, c.Supported)
		assert.Equal(t, int64(25), c.FixedFee)
	})

	t.Run("unsupported country", func(t *testing.T) {
		c := cat.Lookup(models.RailMpesa, "US", "USD")
		assert.False(t, c.Supported)
	})

	t.Run("unsupported currency", func(t *testing.T) {
		c := cat.Lookup(models.RailPayPal, "US", "KES")
		assert.False(t, c.Supported)
	})

	t.Run("unknown rail", func(t *testing.T) {
		c := cat.Lookup("western_union", "US", "USD")
		assert.False(t, c.Supported)
	})

	t.Run("wise requires enhanced kyc", func(t *testing.T) {
		c := cat.Lookup(models.RailWise, "GB", "GBP")
		assert.True(t, c.Supported)
		assert.True(t, c.RequiresEnhancedKYC)
		assert.True(t, c.LowFXCost)
	})
}

func TestCatalog_Rails(t *testing.T) {
	cat := New(Config{})
	// Order is fixed so rail selection stays deterministic.
	assert.Equal(t, []string{
		models.RailStripe, models.RailPayPal, models.RailWise, models.RailMpesa,
	}, cat.Rails())
}

func TestCapability_AmountInBounds(t *testing.T) {
	c := Capability{MinAmount: 100, MaxAmount: 1000}
	assert.False(t, c.AmountInBounds(99))
	assert.True(t, c.AmountInBounds(100))
	assert.True(t, c.AmountInBounds(1000))
	assert.False(t, c.AmountInBounds(1001))
}
