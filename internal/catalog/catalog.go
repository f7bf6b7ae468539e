package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed catalog.yaml
var defaultData []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is the read-only product list. Methods are safe for concurrent use.
type Catalog struct {
	products []Product
	byID     map[int]int
}

type document struct {
	Products []Product `yaml:"products"`
}

// Parse decodes a YAML catalog document and checks every entry.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(doc.Products)
}

// New builds a catalog from products, keeping their order.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for i, p := range products {
		if err := check(p); err != nil {
			return nil, fmt.Errorf("%w: product %d: %v", ErrInvalidCatalog, i, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %d", ErrInvalidCatalog, p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

func check(p Product) error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("id must be positive, got %d", p.ID)
	case p.Name == "":
		return errors.New("name is required")
	case p.Price <= 0:
		return fmt.Errorf("price must be positive, got %d", p.Price)
	case !p.Type.Valid():
		return fmt.Errorf("unknown garment type %q", p.Type)
	case !p.Color.Valid():
		return fmt.Errorf("unknown color %q", p.Color)
	case !p.Gender.Valid():
		return fmt.Errorf("unknown gender %q", p.Gender)
	}
	return nil
}

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
})

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	return loadDefault()
}

// All returns a copy of every product in catalog order.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int { return len(c.products) }

func (c *Catalog) ByID(id int) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// ByName returns the first product with exactly this name.
func (c *Catalog) ByName(name string) (Product, bool) {
	for _, p := range c.products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}

// ForGender returns products of the given gender plus every unisex product,
// in catalog order. Unisex yields only the unisex products.
func (c *Catalog) ForGender(g Gender) []Product {
	var out []Product
	for _, p := range c.products {
		if p.Gender == g || p.Gender == Unisex {
			out = append(out, p)
		}
	}
	return out
}

// FirstOfType returns the first product of type t within the gender's assortment.
func (c *Catalog) FirstOfType(g Gender, t GarmentType) (Product, bool) {
	for _, p := range c.ForGender(g) {
		if p.Type == t {
			return p, true
		}
	}
	return Product{}, false
}

// ProductsForGender filters the default catalog.
func ProductsForGender(g Gender) []Product {
	return Default().ForGender(g)
}
