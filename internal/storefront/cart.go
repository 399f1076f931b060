package storefront

import (
	"github.com/shopspring/decimal"
)

// Product is the catalog entry as served by /api/products.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"categoria"`
	Stock       int             `json:"stock"`
}

type CartLine struct {
	Product  Product
	Quantity int
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps at most one line per product, in insertion order.
type Cart struct {
	lines []CartLine
}

// Add puts one unit of p in the cart, incrementing an existing line.
func (c *Cart) Add(p Product) {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, CartLine{Product: p, Quantity: 1})
}

// SetQuantity overwrites a line's quantity; n <= 0 removes the line.
func (c *Cart) SetQuantity(productID int64, n int) {
	if n <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.index(productID); i >= 0 {
		c.lines[i].Quantity = n
	}
}

func (c *Cart) Remove(productID int64) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart contents.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Quantity(productID int64) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// TotalString renders the total with two decimals, e.g. "15.90".
func (c *Cart) TotalString() string {
	return c.Total().StringFixed(2)
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}
