package mealplan

import (
	"testing"
	"time"

	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

func TestScheduledMealValidate(t *testing.T) {
	valid := ScheduledMeal{
		ID:       "m-1",
		UserID:   "user-1",
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MealType: MealDinner,
		Recipe:   recipe.Recipe{ID: "r-1", Name: "Spaghetti Bolognese", Servings: 4},
		Servings: 2,
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	t.Run("UnknownMealType", func(t *testing.T) {
		m := valid
		m.MealType = "brunch"
		if err := m.Validate(); err == nil {
			t.Errorf("Expected an error for an unknown meal type, got nil")
		}
	})

	t.Run("ZeroServings", func(t *testing.T) {
		m := valid
		m.Servings = 0
		if err := m.Validate(); err == nil {
			t.Errorf("Expected an error for zero servings, got nil")
		}
	})

	t.Run("MissingRecipe", func(t *testing.T) {
		m := valid
		m.Recipe = recipe.Recipe{}
		if err := m.Validate(); err == nil {
			t.Errorf("Expected an error for a missing recipe, got nil")
		}
	})
}
