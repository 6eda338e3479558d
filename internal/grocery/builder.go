package grocery

import (
	"time"

	"github.com/google/uuid"

	"github.com/klaudiaxhika/grocer-ease-app/internal/mealplan"
)

// Build aggregates the given scheduled meals into a new grocery list named
// and dated by the caller. An empty meal set is an error, not a silently
// empty list; use NewEmpty when a blank list is actually wanted.
//
// Building twice from the same meal set yields the same items (names, units,
// quantities, categories, recipe sources) with fresh ids and timestamps.
func Build(meals []mealplan.ScheduledMeal, userID, name string, startDate, endDate time.Time) (*List, error) {
	if len(meals) == 0 {
		return nil, ErrEmptyRange
	}

	items, err := Aggregate(meals)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &List{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewEmpty creates a grocery list with no items, for users starting a list
// from scratch rather than from a meal plan.
func NewEmpty(userID, name string, startDate, endDate time.Time) *List {
	now := time.Now().UTC()
	return &List{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
