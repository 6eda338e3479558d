package grocery

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/klaudiaxhika/grocer-ease-app/internal/mealplan"
	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

func omeletteRecipe() recipe.Recipe {
	return recipe.Recipe{
		ID:       "r-omelette",
		Name:     "Classic Omelette",
		Servings: 1,
		Ingredients: []recipe.Ingredient{
			{Name: "Eggs", Quantity: 3, Unit: "large", Category: recipe.CategoryDairy},
			{Name: "Garlic", Quantity: 1, Unit: "clove", Category: recipe.CategoryProduce},
			{Name: "Salt", Quantity: 0.25, Unit: "tsp", Category: recipe.CategorySpices},
		},
	}
}

func saladRecipe() recipe.Recipe {
	return recipe.Recipe{
		ID:       "r-salad",
		Name:     "Caesar Salad",
		Servings: 2,
		Ingredients: []recipe.Ingredient{
			{Name: "garlic", Quantity: 2, Unit: "clove", Category: recipe.CategoryProduce},
			{Name: "Romaine Lettuce", Quantity: 1, Unit: "head", Category: recipe.CategoryProduce},
		},
	}
}

func scheduled(rec recipe.Recipe, servings int) mealplan.ScheduledMeal {
	return mealplan.ScheduledMeal{
		ID:       "m-" + rec.ID,
		Date:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MealType: mealplan.MealDinner,
		Recipe:   rec,
		Servings: servings,
	}
}

func findByNameUnit(t *testing.T, items []Item, name, unit string) Item {
	t.Helper()
	for _, item := range items {
		if item.Name == name && item.Unit == unit {
			return item
		}
	}
	t.Fatalf("Expected an item for %q/%q, found none", name, unit)
	return Item{}
}

func TestAggregateScaling(t *testing.T) {
	// Recipe baseline is 1 serving; scheduling 3 servings scales every
	// quantity by exactly 3.
	items, err := Aggregate([]mealplan.ScheduledMeal{scheduled(omeletteRecipe(), 3)})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}

	eggs := findByNameUnit(t, items, "Eggs", "large")
	if math.Abs(eggs.Quantity-9) > 1e-9 {
		t.Errorf("Expected eggs quantity 9, got %v", eggs.Quantity)
	}
	salt := findByNameUnit(t, items, "Salt", "tsp")
	if math.Abs(salt.Quantity-0.75) > 1e-9 {
		t.Errorf("Expected salt quantity 0.75, got %v", salt.Quantity)
	}
}

func TestAggregateMergesByNameAndUnit(t *testing.T) {
	// Both recipes need garlic (differing only in name case) in cloves.
	// One serving of the omelette contributes 1 clove; two servings of the
	// two-serving salad contribute 2.
	meals := []mealplan.ScheduledMeal{
		scheduled(omeletteRecipe(), 1),
		scheduled(saladRecipe(), 2),
	}
	items, err := Aggregate(meals)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	garlic := findByNameUnit(t, items, "Garlic", "clove")
	if math.Abs(garlic.Quantity-3) > 1e-9 {
		t.Errorf("Expected merged garlic quantity 3, got %v", garlic.Quantity)
	}
	if len(garlic.RecipeSources) != 2 {
		t.Fatalf("Expected 2 recipe sources, got %v", garlic.RecipeSources)
	}
	if garlic.RecipeSources[0] != "Classic Omelette" || garlic.RecipeSources[1] != "Caesar Salad" {
		t.Errorf("Expected sources in first-seen order, got %v", garlic.RecipeSources)
	}

	// The merged item keeps the first-seen spelling of the name.
	if garlic.Name != "Garlic" {
		t.Errorf("Expected first-seen name 'Garlic', got %q", garlic.Name)
	}
}

func TestAggregateNoDuplicateSources(t *testing.T) {
	// The same recipe scheduled twice contributes its name once.
	meals := []mealplan.ScheduledMeal{
		scheduled(omeletteRecipe(), 1),
		scheduled(omeletteRecipe(), 2),
	}
	items, err := Aggregate(meals)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	eggs := findByNameUnit(t, items, "Eggs", "large")
	if len(eggs.RecipeSources) != 1 {
		t.Errorf("Expected 1 recipe source, got %v", eggs.RecipeSources)
	}
	if math.Abs(eggs.Quantity-9) > 1e-9 {
		t.Errorf("Expected eggs quantity 9 (3 + 6), got %v", eggs.Quantity)
	}
}

func TestAggregateUnitIsolation(t *testing.T) {
	flourCups := recipe.Recipe{
		ID: "r-a", Name: "Pancakes", Servings: 1,
		Ingredients: []recipe.Ingredient{
			{Name: "Flour", Quantity: 2, Unit: "cup", Category: recipe.CategoryDryGoods},
		},
	}
	flourGrams := recipe.Recipe{
		ID: "r-b", Name: "Bread", Servings: 1,
		Ingredients: []recipe.Ingredient{
			{Name: "Flour", Quantity: 500, Unit: "g", Category: recipe.CategoryDryGoods},
		},
	}
	items, err := Aggregate([]mealplan.ScheduledMeal{
		scheduled(flourCups, 1),
		scheduled(flourGrams, 1),
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected flour in cups and grams to stay distinct, got %d item(s)", len(items))
	}
}

func TestAggregateZeroServingsRecipe(t *testing.T) {
	bad := omeletteRecipe()
	bad.Servings = 0
	_, err := Aggregate([]mealplan.ScheduledMeal{scheduled(bad, 2)})

	var integrityErr *DataIntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("Expected DataIntegrityError, got %v", err)
	}
	if integrityErr.RecipeID != "r-omelette" {
		t.Errorf("Expected offending recipe id 'r-omelette', got %q", integrityErr.RecipeID)
	}
}

func TestAggregateNegativeIngredientQuantity(t *testing.T) {
	bad := omeletteRecipe()
	bad.Ingredients[0].Quantity = -1
	_, err := Aggregate([]mealplan.ScheduledMeal{scheduled(bad, 1)})

	var integrityErr *DataIntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("Expected DataIntegrityError, got %v", err)
	}
}

func TestAggregateEmptyMealSet(t *testing.T) {
	items, err := Aggregate(nil)
	if err != nil {
		t.Fatalf("Aggregate over no meals should not fail: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no items, got %d", len(items))
	}
}

func TestAggregateNewItemsStartUnchecked(t *testing.T) {
	items, err := Aggregate([]mealplan.ScheduledMeal{scheduled(omeletteRecipe(), 1)})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	for _, item := range items {
		if item.Checked {
			t.Errorf("Expected item %q to start unchecked", item.Name)
		}
		if item.ID == "" {
			t.Errorf("Expected item %q to get a generated id", item.Name)
		}
	}
}
