package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/klaudiaxhika/grocer-ease-app/internal/mealplan"
	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

// SampleRecipes returns the built-in demo recipes with fresh ids.
func SampleRecipes() []recipe.Recipe {
	return []recipe.Recipe{
		{
			ID:          uuid.NewString(),
			Name:        "Classic Omelette",
			Description: "A simple and delicious breakfast option.",
			Servings:    1,
			PrepTime:    5,
			CookTime:    10,
			Ingredients: []recipe.Ingredient{
				{Name: "Eggs", Quantity: 3, Unit: "large", Category: recipe.CategoryDairy},
				{Name: "Milk", Quantity: 2, Unit: "tbsp", Category: recipe.CategoryDairy},
				{Name: "Bell Pepper", Quantity: 0.5, Unit: "medium", Category: recipe.CategoryProduce},
				{Name: "Onion", Quantity: 0.25, Unit: "medium", Category: recipe.CategoryProduce},
				{Name: "Cheddar Cheese", Quantity: 0.25, Unit: "cup", Category: recipe.CategoryDairy},
				{Name: "Salt", Quantity: 0.25, Unit: "tsp", Category: recipe.CategorySpices},
				{Name: "Black Pepper", Quantity: 0.125, Unit: "tsp", Category: recipe.CategorySpices},
			},
			Instructions: []string{
				"Whisk eggs and milk together in a bowl.",
				"Dice bell pepper and onion.",
				"Heat a non-stick pan over medium heat.",
				"Pour egg mixture into the pan and cook until edges start to set.",
				"Sprinkle vegetables and cheese over one half of the omelette.",
				"Fold omelette in half and cook until cheese is melted and eggs are set.",
				"Season with salt and pepper to taste.",
			},
			Tags: []string{"breakfast", "quick", "vegetarian", "high-protein"},
		},
		{
			ID:          uuid.NewString(),
			Name:        "Chicken Caesar Salad",
			Description: "A classic Caesar salad with grilled chicken.",
			Servings:    2,
			PrepTime:    15,
			CookTime:    15,
			Ingredients: []recipe.Ingredient{
				{Name: "Chicken Breast", Quantity: 1, Unit: "large", Category: recipe.CategoryMeat},
				{Name: "Romaine Lettuce", Quantity: 1, Unit: "head", Category: recipe.CategoryProduce},
				{Name: "Parmesan Cheese", Quantity: 0.25, Unit: "cup", Category: recipe.CategoryDairy},
				{Name: "Croutons", Quantity: 1, Unit: "cup", Category: recipe.CategoryBakery},
				{Name: "Caesar Dressing", Quantity: 0.25, Unit: "cup", Category: recipe.CategoryCondiments},
				{Name: "Olive Oil", Quantity: 1, Unit: "tbsp", Category: recipe.CategoryCondiments},
				{Name: "Lemon Juice", Quantity: 1, Unit: "tbsp", Category: recipe.CategoryProduce},
				{Name: "Garlic", Quantity: 1, Unit: "clove", Category: recipe.CategoryProduce},
				{Name: "Salt", Quantity: 0.5, Unit: "tsp", Category: recipe.CategorySpices},
				{Name: "Black Pepper", Quantity: 0.25, Unit: "tsp", Category: recipe.CategorySpices},
			},
			Instructions: []string{
				"Season chicken breast with salt, pepper, and olive oil.",
				"Grill chicken until fully cooked, about 6-7 minutes per side.",
				"Wash and chop romaine lettuce.",
				"Slice cooked chicken into strips.",
				"Toss lettuce with dressing, parmesan, and croutons.",
				"Top with sliced chicken and additional parmesan if desired.",
			},
			Tags: []string{"lunch", "salad", "high-protein", "low-carb"},
		},
		{
			ID:          uuid.NewString(),
			Name:        "Spaghetti Bolognese",
			Description: "Classic Italian pasta with meat sauce.",
			Servings:    4,
			PrepTime:    15,
			CookTime:    45,
			Ingredients: []recipe.Ingredient{
				{Name: "Ground Beef", Quantity: 1, Unit: "pound", Category: recipe.CategoryMeat},
				{Name: "Spaghetti", Quantity: 1, Unit: "pound", Category: recipe.CategoryDryGoods},
				{Name: "Onion", Quantity: 1, Unit: "medium", Category: recipe.CategoryProduce},
				{Name: "Garlic", Quantity: 3, Unit: "cloves", Category: recipe.CategoryProduce},
				{Name: "Carrot", Quantity: 1, Unit: "large", Category: recipe.CategoryProduce},
				{Name: "Celery", Quantity: 1, Unit: "stalk", Category: recipe.CategoryProduce},
				{Name: "Crushed Tomatoes", Quantity: 28, Unit: "oz", Category: recipe.CategoryCanned},
				{Name: "Tomato Paste", Quantity: 2, Unit: "tbsp", Category: recipe.CategoryCanned},
				{Name: "Red Wine", Quantity: 0.5, Unit: "cup", Category: recipe.CategoryBeverages},
				{Name: "Dried Oregano", Quantity: 1, Unit: "tsp", Category: recipe.CategorySpices},
				{Name: "Dried Basil", Quantity: 1, Unit: "tsp", Category: recipe.CategorySpices},
				{Name: "Bay Leaf", Quantity: 1, Unit: "", Category: recipe.CategorySpices},
				{Name: "Parmesan Cheese", Quantity: 0.25, Unit: "cup", Category: recipe.CategoryDairy},
				{Name: "Olive Oil", Quantity: 2, Unit: "tbsp", Category: recipe.CategoryCondiments},
				{Name: "Salt", Quantity: 1, Unit: "tsp", Category: recipe.CategorySpices},
				{Name: "Black Pepper", Quantity: 0.5, Unit: "tsp", Category: recipe.CategorySpices},
			},
			Instructions: []string{
				"Finely dice onion, carrot, celery, and garlic.",
				"Heat olive oil in a large pot over medium heat.",
				"Add vegetables and cook until softened, about 5-7 minutes.",
				"Add ground beef and cook until browned.",
				"Add tomato paste and stir for 1-2 minutes.",
				"Pour in red wine and simmer for 2-3 minutes.",
				"Add crushed tomatoes, herbs, bay leaf, salt, and pepper.",
				"Simmer sauce on low heat for 30 minutes, stirring occasionally.",
				"Cook spaghetti according to package instructions.",
				"Serve sauce over spaghetti and top with grated parmesan.",
			},
			Tags: []string{"dinner", "italian", "pasta", "family-friendly"},
		},
		{
			ID:          uuid.NewString(),
			Name:        "Greek Yogurt with Berries",
			Description: "A simple, healthy snack with protein and antioxidants.",
			Servings:    1,
			PrepTime:    5,
			CookTime:    0,
			Ingredients: []recipe.Ingredient{
				{Name: "Greek Yogurt", Quantity: 1, Unit: "cup", Category: recipe.CategoryDairy},
				{Name: "Mixed Berries", Quantity: 0.5, Unit: "cup", Category: recipe.CategoryProduce},
				{Name: "Honey", Quantity: 1, Unit: "tsp", Category: recipe.CategoryCondiments},
				{Name: "Granola", Quantity: 2, Unit: "tbsp", Category: recipe.CategoryDryGoods},
			},
			Instructions: []string{
				"Place yogurt in a bowl.",
				"Top with berries and granola.",
				"Drizzle with honey.",
			},
			Tags: []string{"snack", "quick", "healthy", "no-cook"},
		},
	}
}

// SampleMeals schedules the sample recipes across the week starting at
// weekStart (a Monday): omelette and salad and bolognese on Monday, a
// couple of repeats midweek.
func SampleMeals(userID string, weekStart time.Time, recipes []recipe.Recipe) []mealplan.ScheduledMeal {
	if len(recipes) < 4 {
		return nil
	}
	monday := weekStart
	tuesday := weekStart.AddDate(0, 0, 1)
	wednesday := weekStart.AddDate(0, 0, 2)

	meal := func(date time.Time, mealType mealplan.MealType, rec recipe.Recipe, servings int) mealplan.ScheduledMeal {
		return mealplan.ScheduledMeal{
			ID:       uuid.NewString(),
			UserID:   userID,
			Date:     date,
			MealType: mealType,
			Recipe:   rec,
			Servings: servings,
		}
	}

	return []mealplan.ScheduledMeal{
		meal(monday, mealplan.MealBreakfast, recipes[0], 1),
		meal(monday, mealplan.MealLunch, recipes[1], 1),
		meal(monday, mealplan.MealDinner, recipes[2], 2),
		meal(tuesday, mealplan.MealBreakfast, recipes[0], 1),
		meal(tuesday, mealplan.MealSnack, recipes[3], 1),
		meal(wednesday, mealplan.MealLunch, recipes[1], 1),
	}
}

// RecipeSaver is the slice of the recipe repository Apply needs.
type RecipeSaver interface {
	Save(ctx context.Context, userID string, rec recipe.Recipe) error
	Count(ctx context.Context, userID string) (int, error)
}

// MealSaver is the slice of the meal repository Apply needs.
type MealSaver interface {
	Save(ctx context.Context, m mealplan.ScheduledMeal) error
}

// Apply seeds the sample recipes and meals for a user. It is a no-op
// when the user already has recipes, so reruns stay safe.
func Apply(ctx context.Context, recipes RecipeSaver, meals MealSaver, userID string, weekStart time.Time) error {
	count, err := recipes.Count(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check existing recipes: %w", err)
	}
	if count > 0 {
		log.Printf("Seed skipped: user %s already has %d recipe(s)", userID, count)
		return nil
	}

	sampled := SampleRecipes()
	for _, rec := range sampled {
		if err := recipes.Save(ctx, userID, rec); err != nil {
			return fmt.Errorf("failed to seed recipe %q: %w", rec.Name, err)
		}
	}
	for _, m := range SampleMeals(userID, weekStart, sampled) {
		if err := meals.Save(ctx, m); err != nil {
			return fmt.Errorf("failed to seed meal %s: %w", m.ID, err)
		}
	}

	log.Printf("Seeded %d recipes and a sample week of meals for user %s", len(sampled), userID)
	return nil
}
