package storefront

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	arroz  = Product{ID: 1, Name: "Arroz", Price: decimal.RequireFromString("3.5")}
	aceite = Product{ID: 2, Name: "Aceite", Price: decimal.RequireFromString("8.9")}
)

func TestCart_AddIncrementsExistingLine(t *testing.T) {
	var c Cart
	c.Add(arroz)
	c.Add(aceite)
	c.Add(arroz)

	require.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Quantity(arroz.ID))
	assert.Equal(t, 1, c.Quantity(aceite.ID))
	assert.Equal(t, "15.90", c.TotalString())
}

func TestCart_SetQuantityToZeroRemovesLine(t *testing.T) {
	var c Cart
	c.Add(arroz)
	c.Add(aceite)

	c.SetQuantity(arroz.ID, 0)

	assert.Equal(t, 0, c.Quantity(arroz.ID))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "8.90", c.TotalString())

	c.SetQuantity(aceite.ID, -1)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, "0.00", c.TotalString())
}

func TestCart_SetQuantityOverwrites(t *testing.T) {
	var c Cart
	c.Add(arroz)
	c.SetQuantity(arroz.ID, 4)
	c.SetQuantity(99, 3)

	assert.Equal(t, 4, c.Quantity(arroz.ID))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "14.00", c.TotalString())
}

func TestCart_RemoveAndClear(t *testing.T) {
	var c Cart
	c.Add(arroz)
	c.Add(aceite)

	c.Remove(arroz.ID)
	c.Remove(404)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, aceite.ID, lines[0].Product.ID)

	lines[0].Quantity = 50
	assert.Equal(t, 1, c.Quantity(aceite.ID))

	c.Clear()
	assert.True(t, c.IsEmpty())
}

func TestCart_TotalAvoidsFloatDrift(t *testing.T) {
	var c Cart
	pan := Product{ID: 5, Name: "Pan", Price: decimal.RequireFromString("0.1")}
	c.Add(pan)
	c.Add(pan)
	c.Add(pan)

	assert.Equal(t, "0.30", c.TotalString())
	assert.True(t, c.Total().Equal(decimal.RequireFromString("0.3")))
}

func TestSession_LogoutClearsTokenAndCart(t *testing.T) {
	s := NewSession()
	s.Cart.Add(arroz)
	s.Token = "tok"
	s.Email = "ana@example.com"
	require.True(t, s.SignedIn())

	s.Logout()

	assert.False(t, s.SignedIn())
	assert.Empty(t, s.Email)
	assert.True(t, s.Cart.IsEmpty())
}

func TestSession_ToggleAuthMode(t *testing.T) {
	s := NewSession()
	assert.Equal(t, AuthModeLogin, s.AuthMode)
	s.ToggleAuthMode()
	assert.Equal(t, AuthModeRegister, s.AuthMode)
	s.ToggleAuthMode()
	assert.Equal(t, AuthModeLogin, s.AuthMode)
}

func TestFallbackCatalog(t *testing.T) {
	products := fallbackCatalog()
	require.Len(t, products, 8)
	assert.Equal(t, "Arroz", products[0].Name)
	assert.Equal(t, "3.50", products[0].Price.StringFixed(2))
	for _, p := range products {
		assert.NotEmpty(t, p.Image, p.Name)
		assert.True(t, p.Price.IsPositive(), p.Name)
	}
}
