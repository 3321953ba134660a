package domain

import (
	"math"
	"time"
)

// DefaultMinOrderQuantity is used when the catalog does not carry a minimum order quantity
const DefaultMinOrderQuantity = 12

// Categories lists the product types the storefront filters on
var Categories = []string{"Shawl", "Scarf", "Stole", "Mufler", "Blanket", "Sweater"}

// FringeStyles lists the accepted values of Product.FringeStyle
var FringeStyles = []string{"Tasselled", "Fringeless", "Knotted"}

// Product represents a catalog item as returned by the remote catalog API
type Product struct {
	ID               string      `json:"_id"`
	Name             string      `json:"name"`
	Category         string      `json:"category"`
	Color            string      `json:"color,omitempty"`
	Dimension1       float64     `json:"dimention1,omitempty"`
	Dimension2       float64     `json:"dimention2,omitempty"`
	FiberComposition string      `json:"fiberComposition,omitempty"`
	WeaveType        string      `json:"weaveType,omitempty"`
	Design           string      `json:"design,omitempty"`
	FringeStyle      string      `json:"fringeStyle,omitempty"`
	Origin           string      `json:"origin,omitempty"`
	CareInstruction  string      `json:"careInstruction,omitempty"`
	MinOrderQuantity int         `json:"minOrderQuantity,omitempty"`
	Images           []string    `json:"images"`
	Price            []PriceTier `json:"price"`
	IsHandpicked     bool        `json:"isHandpicked"`
	CreatedAt        time.Time   `json:"createdAt,omitempty"`
}

// PriceTier maps a quantity range to a wholesale unit price
type PriceTier struct {
	MinQuantity int     `json:"minQuantity"`
	MaxQuantity int     `json:"maxQuantity"`
	Price       float64 `json:"price"`
}

// Valid reports whether the tier carries all three values and a non-inverted range
func (t PriceTier) Valid() bool {
	return t.MinQuantity > 0 && t.MaxQuantity > 0 && t.Price > 0 && t.MinQuantity <= t.MaxQuantity
}

// EffectiveMinOrder returns the minimum order quantity, falling back to the default
func (p *Product) EffectiveMinOrder() int {
	if p.MinOrderQuantity <= 0 {
		return DefaultMinOrderQuantity
	}
	return p.MinOrderQuantity
}

// StartingPrice returns the lowest tier price. ok is false when the product has no tiers.
func StartingPrice(tiers []PriceTier) (price float64, ok bool) {
	if len(tiers) == 0 {
		return 0, false
	}
	price = math.Inf(1)
	for _, tier := range tiers {
		if math.IsNaN(tier.Price) {
			continue
		}
		if tier.Price < price {
			price = tier.Price
		}
	}
	if math.IsInf(price, 1) {
		return 0, false
	}
	return price, true
}

// IsCategory reports whether name is one of the storefront categories
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// ProductView is a product prepared for display: resolved image URLs and derived pricing
type ProductView struct {
	Product
	ImageURLs     []string `json:"imageUrls"`
	StartingPrice *float64 `json:"startingPrice"`
	MinOrder      int      `json:"minOrder"`
}

// NewDraft describes a product submitted from the admin form
type NewDraft struct {
	Fields map[string]string
	Tiers  []PriceTier
	Images []ImageUpload
}

// ImageUpload is one file attached to a product draft
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
