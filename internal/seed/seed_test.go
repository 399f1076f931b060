package seed

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleProducts_AreWellFormed(t *testing.T) {
	require.Len(t, sampleProducts, 10)

	names := map[string]bool{}
	for _, p := range sampleProducts {
		assert.False(t, names[p.Name], "duplicate product name %q", p.Name)
		names[p.Name] = true

		price, err := decimal.NewFromString(p.Price)
		require.NoError(t, err, p.Name)
		assert.True(t, price.IsPositive(), p.Name)
		assert.NotEmpty(t, p.Category, p.Name)
		assert.NotEmpty(t, p.Image, p.Name)
		assert.Positive(t, p.Stock, p.Name)
	}
}
