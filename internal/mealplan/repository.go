package mealplan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

// Repository is a database-backed repository for scheduled meals. The
// recipe snapshot is joined in from the recipes table so callers always
// get fully hydrated meals.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts or updates a scheduled meal.
func (r *Repository) Save(ctx context.Context, m ScheduledMeal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduled_meals (id, user_id, meal_date, meal_type, recipe_id, servings)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			meal_date = excluded.meal_date,
			meal_type = excluded.meal_type,
			recipe_id = excluded.recipe_id,
			servings = excluded.servings`,
		m.ID, m.UserID, m.Date.UTC().Format("2006-01-02"), string(m.MealType), m.Recipe.ID, m.Servings,
	)
	if err != nil {
		return fmt.Errorf("failed to save scheduled meal: %w", err)
	}
	return nil
}

// Get retrieves a scheduled meal by its ID, scoped to the owning user.
func (r *Repository) Get(ctx context.Context, userID, id string) (*ScheduledMeal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT m.id, m.user_id, m.meal_date, m.meal_type, m.servings, r.data
		FROM scheduled_meals m
		JOIN recipes r ON r.id = m.recipe_id
		WHERE m.id = ? AND m.user_id = ?`, id, userID,
	)
	m, err := scanMeal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Meal not found
		}
		return nil, fmt.Errorf("failed to get scheduled meal: %w", err)
	}
	return m, nil
}

// ListRange retrieves a user's scheduled meals with meal_date in
// [start, end] inclusive, ordered by date then meal type.
func (r *Repository) ListRange(ctx context.Context, userID string, start, end time.Time) ([]ScheduledMeal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.user_id, m.meal_date, m.meal_type, m.servings, r.data
		FROM scheduled_meals m
		JOIN recipes r ON r.id = m.recipe_id
		WHERE m.user_id = ? AND m.meal_date >= ? AND m.meal_date <= ?
		ORDER BY m.meal_date, m.meal_type, m.id`,
		userID, start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled meals: %w", err)
	}
	defer rows.Close()

	var meals []ScheduledMeal
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled meal row: %w", err)
		}
		meals = append(meals, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scheduled meal rows: %w", err)
	}
	return meals, nil
}

// Delete removes a scheduled meal. Returns sql.ErrNoRows if nothing matched.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM scheduled_meals WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled meal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeal(row rowScanner) (*ScheduledMeal, error) {
	var m ScheduledMeal
	var mealDate, mealType, recipeJSON string
	if err := row.Scan(&m.ID, &m.UserID, &mealDate, &mealType, &m.Servings, &recipeJSON); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", mealDate)
	if err != nil {
		// SQLite DATE columns may come back with a time component
		date, err = time.Parse(time.RFC3339, mealDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse meal date %q: %w", mealDate, err)
		}
	}
	m.Date = date
	m.MealType = MealType(mealType)

	var rec recipe.Recipe
	if err := json.Unmarshal([]byte(recipeJSON), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	m.Recipe = rec

	return &m, nil
}
