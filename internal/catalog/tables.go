package catalog

// colorMatches maps a color to the colors that pair well with it.
var colorMatches = map[Color][]Color{
	Orange: {Navy, White, Beige, Brown, Black},
	White:  {Navy, Black, Blue, Brown, Beige, Orange, Pink},
	Black:  {White, Beige, Red, Pink, Blue},
	Blue:   {White, Beige, Brown, Navy},
	Navy:   {White, Beige, Brown, Orange, Pink},
	Brown:  {White, Beige, Navy, Orange, Blue},
	Pink:   {White, Navy, Black, Beige},
	Beige:  {Navy, Brown, White, Black, Blue, Orange, Pink},
	Red:    {White, Black, Navy, Beige},
	Green:  {White, Beige, Brown, Black},
}

// complements maps a garment type to the types that complete an outfit around it.
// The relation is directional.
var complements = map[GarmentType][]GarmentType{
	Dress:      {Shoes, Bag, Sunglasses, Belt},
	Top:        {Bottom, Shoes, Bag, Sunglasses, Belt},
	Bottom:     {Top, Shoes, Bag, Sunglasses, Belt},
	Shoes:      {Top, Bottom, Dress, Bag, Sunglasses},
	Bag:        {Top, Bottom, Dress, Shoes},
	Belt:       {Top, Bottom, Dress, Shoes},
	Sunglasses: {Top, Bottom, Dress, Shoes, Bag},
}

// CompatibleColors returns a copy of the colors matching c. Unknown colors yield nil.
func CompatibleColors(c Color) []Color {
	m := colorMatches[c]
	if m == nil {
		return nil
	}
	return append([]Color(nil), m...)
}

// ComplementTypes returns a copy of the types complementing t. Unknown types yield nil.
func ComplementTypes(t GarmentType) []GarmentType {
	m := complements[t]
	if m == nil {
		return nil
	}
	return append([]GarmentType(nil), m...)
}

func matchesColor(focused, candidate Color) bool {
	for _, c := range colorMatches[focused] {
		if c == candidate {
			return true
		}
	}
	return false
}

func complementsType(focused, candidate GarmentType) bool {
	for _, t := range complements[focused] {
		if t == candidate {
			return true
		}
	}
	return false
}

// Matches reports whether candidate complements focused by both type and color.
func Matches(focused, candidate Product) bool {
	return complementsType(focused.Type, candidate.Type) && matchesColor(focused.Color, candidate.Color)
}
