package storefront

import (
	"github.com/shopspring/decimal"
)

// fallbackCatalog is shown when the product listing cannot be fetched.
func fallbackCatalog() []Product {
	item := func(id int64, name, description, price, color, label string) Product {
		return Product{
			ID:          id,
			Name:        name,
			Description: description,
			Price:       decimal.RequireFromString(price),
			Image:       "https://via.placeholder.com/300x200/" + color + "/ffffff?text=" + label,
		}
	}
	return []Product{
		item(1, "Arroz", "Arroz superior 1kg", "3.5", "4caf50", "Arroz"),
		item(2, "Aceite", "Aceite vegetal 1L", "8.9", "66bb6a", "Aceite"),
		item(3, "Azúcar", "Azúcar blanca 1kg", "2.8", "81c784", "Azucar"),
		item(4, "Leche", "Leche evaporada", "4.2", "4caf50", "Leche"),
		item(5, "Pan", "Pan francés", "0.3", "66bb6a", "Pan"),
		item(6, "Cuaderno", "Cuaderno 100 hojas", "5.5", "81c784", "Cuaderno"),
		item(7, "Lapiceros", "Pack de 3 lapiceros", "2.0", "4caf50", "Lapiceros"),
		item(8, "Golosinas", "Caramelos variados", "2.5", "66bb6a", "Golosinas"),
	}
}
