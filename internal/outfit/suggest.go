package outfit

import "github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"

// MaxSuggestions caps the suggestion list.
const MaxSuggestions = 4

// Engine computes matching suggestions over a catalog.
type Engine struct {
	catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Suggest returns up to four products from the gender's assortment that
// complement focused by type and color. Products already worn and the focused
// item itself are skipped. The result follows catalog order.
func (e *Engine) Suggest(o Outfit, focused catalog.Product, g catalog.Gender) []catalog.Product {
	var out []catalog.Product
	for _, p := range e.catalog.ForGender(g) {
		if p.ID == focused.ID || o.Wears(p.ID) {
			continue
		}
		if !catalog.Matches(focused, p) {
			continue
		}
		out = append(out, p)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

// Suggest uses the default catalog.
func Suggest(o Outfit, focused catalog.Product, g catalog.Gender) []catalog.Product {
	return NewEngine(catalog.Default()).Suggest(o, focused, g)
}
