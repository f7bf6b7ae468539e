package outfit

import "github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"

// Outfit holds at most one product per garment type. A dress excludes a top
// and a bottom; every other slot is independent.
type Outfit struct {
	Dress      *catalog.Product `json:"dress,omitempty"`
	Top        *catalog.Product `json:"top,omitempty"`
	Bottom     *catalog.Product `json:"bottom,omitempty"`
	Shoes      *catalog.Product `json:"shoes,omitempty"`
	Belt       *catalog.Product `json:"belt,omitempty"`
	Sunglasses *catalog.Product `json:"sunglasses,omitempty"`
	Bag        *catalog.Product `json:"bag,omitempty"`
}

// Start returns an outfit wearing only item.
func Start(item catalog.Product) Outfit {
	return Apply(Outfit{}, item)
}

// Apply puts item into its slot and returns the new outfit. A dress clears the
// top and bottom, a top or bottom clears the dress.
func Apply(o Outfit, item catalog.Product) Outfit {
	p := &item
	switch item.Type {
	case catalog.Dress:
		o.Dress, o.Top, o.Bottom = p, nil, nil
	case catalog.Top:
		o.Dress, o.Top = nil, p
	case catalog.Bottom:
		o.Dress, o.Bottom = nil, p
	case catalog.Shoes:
		o.Shoes = p
	case catalog.Belt:
		o.Belt = p
	case catalog.Sunglasses:
		o.Sunglasses = p
	case catalog.Bag:
		o.Bag = p
	}
	return o
}

// Remove clears one slot.
func (o Outfit) Remove(t catalog.GarmentType) Outfit {
	if s := o.slot(t); s != nil {
		*s = nil
	}
	return o
}

func (o *Outfit) slot(t catalog.GarmentType) **catalog.Product {
	switch t {
	case catalog.Dress:
		return &o.Dress
	case catalog.Top:
		return &o.Top
	case catalog.Bottom:
		return &o.Bottom
	case catalog.Shoes:
		return &o.Shoes
	case catalog.Belt:
		return &o.Belt
	case catalog.Sunglasses:
		return &o.Sunglasses
	case catalog.Bag:
		return &o.Bag
	}
	return nil
}

// Get returns the product worn in slot t.
func (o Outfit) Get(t catalog.GarmentType) (catalog.Product, bool) {
	s := o.slot(t)
	if s == nil || *s == nil {
		return catalog.Product{}, false
	}
	return **s, true
}

// Items lists worn products in slot order.
func (o Outfit) Items() []catalog.Product {
	var out []catalog.Product
	for _, t := range catalog.GarmentTypes {
		if p, ok := o.Get(t); ok {
			out = append(out, p)
		}
	}
	return out
}

// Wears reports whether a product with this id occupies any slot.
func (o Outfit) Wears(id int) bool {
	for _, p := range o.Items() {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (o Outfit) Empty() bool {
	return len(o.Items()) == 0
}

// Valid reports whether the dress exclusivity holds and every slot holds a
// product of its own type.
func (o Outfit) Valid() bool {
	if o.Dress != nil && (o.Top != nil || o.Bottom != nil) {
		return false
	}
	for _, t := range catalog.GarmentTypes {
		if p, ok := o.Get(t); ok && p.Type != t {
			return false
		}
	}
	return true
}

// State pairs the outfit with the focused item that drives suggestions.
type State struct {
	Outfit  Outfit           `json:"outfit"`
	Focused *catalog.Product `json:"focused,omitempty"`
}

// Try applies item and focuses it.
func (s State) Try(item catalog.Product) State {
	s.Outfit = Apply(s.Outfit, item)
	s.Focused = &item
	return s
}
