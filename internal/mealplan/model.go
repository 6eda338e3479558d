package mealplan

import (
	"fmt"
	"time"

	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

// MealType identifies which meal of the day an entry covers.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes lists every valid meal type.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Valid reports whether t is a known meal type.
func (t MealType) Valid() bool {
	for _, mt := range MealTypes {
		if t == mt {
			return true
		}
	}
	return false
}

// ScheduledMeal is one meal-plan entry: a recipe scheduled on a date with a
// serving count. Servings may differ from the recipe's baseline servings;
// the ratio between the two is the scale factor applied during aggregation.
type ScheduledMeal struct {
	ID       string        `json:"id"`
	UserID   string        `json:"-"`
	Date     time.Time     `json:"date"`
	MealType MealType      `json:"meal_type"`
	Recipe   recipe.Recipe `json:"recipe"`
	Servings int           `json:"servings"`
}

// Validate checks the entry's own invariants. The referenced recipe is
// validated separately when it is stored.
func (m ScheduledMeal) Validate() error {
	if !m.MealType.Valid() {
		return fmt.Errorf("unknown meal type %q", m.MealType)
	}
	if m.Servings <= 0 {
		return fmt.Errorf("servings must be positive, got %d", m.Servings)
	}
	if m.Recipe.ID == "" {
		return fmt.Errorf("scheduled meal must reference a recipe")
	}
	return nil
}
