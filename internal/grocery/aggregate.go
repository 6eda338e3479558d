package grocery

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/klaudiaxhika/grocer-ease-app/internal/mealplan"
)

// mergeKey identifies the line item an ingredient contributes to. Names are
// compared case-insensitively; units must match exactly. "Flour, cups" and
// "flour, grams" stay separate line items on purpose: summing across
// incompatible units would silently corrupt quantities, and no unit
// conversion table is in scope.
func mergeKey(name, unit string) string {
	return strings.ToLower(name) + "\x00" + unit
}

// Aggregate merges the ingredient requirements of a set of scheduled meals
// into grocery items. Each ingredient's quantity is scaled by the ratio of
// the meal's servings to the recipe's baseline servings, then summed into the
// item keyed by (lowercased name, unit). The whole batch fails with a
// DataIntegrityError if any recipe has non-positive servings or any
// ingredient a negative quantity.
func Aggregate(meals []mealplan.ScheduledMeal) ([]Item, error) {
	merged := make(map[string]*Item)
	var order []string

	for _, meal := range meals {
		if meal.Recipe.Servings <= 0 {
			return nil, &DataIntegrityError{
				RecipeID: meal.Recipe.ID,
				Reason:   fmt.Sprintf("servings must be positive, got %d", meal.Recipe.Servings),
			}
		}
		scale := float64(meal.Servings) / float64(meal.Recipe.Servings)

		for _, ing := range meal.Recipe.Ingredients {
			if ing.Quantity < 0 {
				return nil, &DataIntegrityError{
					RecipeID: meal.Recipe.ID,
					Reason:   fmt.Sprintf("ingredient %q has negative quantity %v", ing.Name, ing.Quantity),
				}
			}

			key := mergeKey(ing.Name, ing.Unit)
			contribution := ing.Quantity * scale

			if item, ok := merged[key]; ok {
				item.Quantity += contribution
				if !containsString(item.RecipeSources, meal.Recipe.Name) {
					item.RecipeSources = append(item.RecipeSources, meal.Recipe.Name)
				}
				continue
			}

			merged[key] = &Item{
				ID:            uuid.NewString(),
				Name:          ing.Name,
				Quantity:      contribution,
				Unit:          ing.Unit,
				Category:      ing.Category,
				Checked:       false,
				RecipeSources: []string{meal.Recipe.Name},
			}
			order = append(order, key)
		}
	}

	items := make([]Item, 0, len(merged))
	for _, key := range order {
		items = append(items, *merged[key])
	}
	return items, nil
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
