package recipe

import "fmt"

// Ingredient is a single ingredient line inside a recipe. Quantity is
// relative to the recipe's baseline servings.
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Unit     string   `json:"unit"`
	Category Category `json:"category"`
}

// Recipe is the internal recipe schema. External stores may use different
// field names; mapping them is the persistence layer's concern.
type Recipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Servings     int          `json:"servings"`
	PrepTime     int          `json:"prep_time"` // minutes
	CookTime     int          `json:"cook_time"` // minutes
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Tags         []string     `json:"tags"`
}

// Validate checks the invariants a recipe must hold before it is stored:
// positive baseline servings, non-negative times and quantities, and every
// ingredient category inside the closed set.
func (r Recipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("recipe name is required")
	}
	if r.Servings <= 0 {
		return fmt.Errorf("servings must be positive, got %d", r.Servings)
	}
	if r.PrepTime < 0 || r.CookTime < 0 {
		return fmt.Errorf("prep and cook times must not be negative")
	}
	for _, ing := range r.Ingredients {
		if ing.Name == "" {
			return fmt.Errorf("ingredient name is required")
		}
		if ing.Quantity < 0 {
			return fmt.Errorf("ingredient %q has negative quantity %v", ing.Name, ing.Quantity)
		}
		if !ing.Category.Valid() {
			return fmt.Errorf("ingredient %q has unknown category %q", ing.Name, ing.Category)
		}
	}
	return nil
}
