package domain

import "strings"

// Category is the skincare step a product belongs to
type Category string

const (
	CategoryCleanser    Category = "cleanser"
	CategoryToner       Category = "toner"
	CategorySerum       Category = "serum"
	CategoryTreatment   Category = "treatment"
	CategoryMoisturizer Category = "moisturizer"
	CategorySunscreen   Category = "sunscreen"
)

// CategoryAll disables category filtering
const CategoryAll = "all"

// Categories lists every valid category in routine order
var Categories = []Category{
	CategoryCleanser,
	CategoryToner,
	CategorySerum,
	CategoryTreatment,
	CategoryMoisturizer,
	CategorySunscreen,
}

// Valid reports whether c is one of the enumerated categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Step returns the human-readable routine step label for the category
func (c Category) Step() string {
	if !c.Valid() {
		return "Step"
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// StepOrder returns the position of a routine step label; unknown labels sort last
func StepOrder(step string) int {
	for i, c := range Categories {
		if c.Step() == step {
			return i + 1
		}
	}
	return 99
}

// PriceTier is an ordinal price bucket
type PriceTier string

const (
	PriceLow  PriceTier = "low"
	PriceMid  PriceTier = "mid"
	PriceHigh PriceTier = "high"
)

// Rank returns the ordinal of the tier for sort comparisons
func (p PriceTier) Rank() int {
	switch p {
	case PriceLow:
		return 1
	case PriceMid:
		return 2
	case PriceHigh:
		return 3
	default:
		return 0
	}
}

// Product is a catalog entry. Products are immutable once the catalog is loaded.
type Product struct {
	ID              string    `json:"id" yaml:"id" validate:"required"`
	Name            string    `json:"name" yaml:"name" validate:"required"`
	Brand           string    `json:"brand" yaml:"brand" validate:"required"`
	Category        Category  `json:"category" yaml:"category" validate:"required,oneof=cleanser toner serum treatment moisturizer sunscreen"`
	Price           PriceTier `json:"price" yaml:"price" validate:"required,oneof=low mid high"`
	Rating          float64   `json:"rating" yaml:"rating" validate:"gte=0,lte=5"`
	KeyIngredients  []string  `json:"keyIngredients" yaml:"key_ingredients" validate:"dive,required"`
	ForConcerns     []string  `json:"forConcerns" yaml:"for_concerns" validate:"dive,required"`
	AvoidIf         []string  `json:"avoidIf" yaml:"avoid_if" validate:"dive,required"`
	Claims          []string  `json:"claims" yaml:"claims"`
	IngredientsText string    `json:"ingredientsText" yaml:"ingredients_text"`
	HowToUse        string    `json:"howToUse" yaml:"how_to_use"`
}

// IngredientReason pairs an ingredient tag with a short explanation
type IngredientReason struct {
	Tag    string `json:"tag"`
	Reason string `json:"reason"`
}

// RecommendedProduct is a scored and explained catalog product.
// It is recomputed on every query and never persisted.
type RecommendedProduct struct {
	Product       Product            `json:"product"`
	Score         float64            `json:"score"`
	MatchPercent  int                `json:"matchPercent"`
	Why           []string           `json:"why"`
	Warnings      []string           `json:"warnings"`
	IngredientWhy []IngredientReason `json:"ingredientWhy"`
}

// RecommendFilters narrows the catalog before scoring
type RecommendFilters struct {
	Category string `json:"category,omitempty" form:"category"`
	Query    string `json:"query,omitempty" form:"q"`
	Limit    int    `json:"limit,omitempty" form:"limit"`
}

// SortKey selects a presentation ordering applied after ranking
type SortKey string

const (
	SortBestMatch SortKey = "best_match"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
	SortPriceLow  SortKey = "price_low"
	SortPriceHigh SortKey = "price_high"
)

// Valid reports whether s is a known sort key (empty means best match)
func (s SortKey) Valid() bool {
	switch s {
	case "", SortBestMatch, SortRating, SortName, SortPriceLow, SortPriceHigh:
		return true
	}
	return false
}
