package catalog

import "fmt"

// GarmentType names the outfit slot a product occupies.
type GarmentType string

const (
	Dress      GarmentType = "dress"
	Top        GarmentType = "top"
	Bottom     GarmentType = "bottom"
	Shoes      GarmentType = "shoes"
	Belt       GarmentType = "belt"
	Sunglasses GarmentType = "sunglasses"
	Bag        GarmentType = "bag"
)

// GarmentTypes lists every garment type in slot order.
var GarmentTypes = []GarmentType{Dress, Top, Bottom, Shoes, Belt, Sunglasses, Bag}

func (t GarmentType) Valid() bool {
	switch t {
	case Dress, Top, Bottom, Shoes, Belt, Sunglasses, Bag:
		return true
	}
	return false
}

func (t *GarmentType) UnmarshalText(b []byte) error {
	v := GarmentType(b)
	if !v.Valid() {
		return fmt.Errorf("unknown garment type %q", string(b))
	}
	*t = v
	return nil
}

type Color string

const (
	White  Color = "white"
	Black  Color = "black"
	Blue   Color = "blue"
	Orange Color = "orange"
	Brown  Color = "brown"
	Pink   Color = "pink"
	Navy   Color = "navy"
	Beige  Color = "beige"
	Red    Color = "red"
	Green  Color = "green"
)

func (c Color) Valid() bool {
	switch c {
	case White, Black, Blue, Orange, Brown, Pink, Navy, Beige, Red, Green:
		return true
	}
	return false
}

func (c *Color) UnmarshalText(b []byte) error {
	v := Color(b)
	if !v.Valid() {
		return fmt.Errorf("unknown color %q", string(b))
	}
	*c = v
	return nil
}

// Gender is the assortment a product belongs to.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Unisex Gender = "unisex"
)

func (g Gender) Valid() bool {
	return g == Male || g == Female || g == Unisex
}

func (g *Gender) UnmarshalText(b []byte) error {
	v := Gender(b)
	if !v.Valid() {
		return fmt.Errorf("unknown gender %q", string(b))
	}
	*g = v
	return nil
}

// Product is an immutable catalog entry. Price is in whole rupees.
type Product struct {
	ID       int         `json:"id" yaml:"id"`
	Name     string      `json:"name" yaml:"name"`
	Category string      `json:"category,omitempty" yaml:"category,omitempty"`
	Price    int         `json:"price" yaml:"price"`
	Image    string      `json:"image" yaml:"image"`
	Type     GarmentType `json:"type" yaml:"type"`
	Color    Color       `json:"color" yaml:"color"`
	Gender   Gender      `json:"gender" yaml:"gender"`
}
