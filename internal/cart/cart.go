package cart

import "github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"

// Cart is an ordered list of product copies. The same product may appear
// more than once.
type Cart []catalog.Product

// Add appends item and returns the new cart.
func (c Cart) Add(item catalog.Product) Cart {
	out := make(Cart, len(c), len(c)+1)
	copy(out, c)
	return append(out, item)
}

// Remove drops every entry with the given product id.
func (c Cart) Remove(id int) Cart {
	out := make(Cart, 0, len(c))
	for _, p := range c {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func (c Cart) Contains(id int) bool {
	for _, p := range c {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Total sums the prices in whole rupees.
func (c Cart) Total() int {
	total := 0
	for _, p := range c {
		total += p.Price
	}
	return total
}

func (c Cart) Len() int { return len(c) }
