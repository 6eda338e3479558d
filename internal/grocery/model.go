package grocery

import (
	"time"

	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

// Item is a single merged line on a grocery list. RecipeSources holds the
// names of every recipe that contributed to it, in first-seen order with no
// duplicates. Checked starts false and changes only through explicit user
// action, never as a side effect of quantity edits.
type Item struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Quantity      float64         `json:"quantity"`
	Unit          string          `json:"unit"`
	Category      recipe.Category `json:"category"`
	Checked       bool            `json:"checked"`
	RecipeSources []string        `json:"recipe_sources"`
}

// List is a generated grocery list covering a date range of scheduled meals.
// Items are unique by id and by (lowercased name, unit) pair; the item set is
// fixed at creation except through the mutation operations.
type List struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *List) findItem(itemID string) *Item {
	for i := range l.Items {
		if l.Items[i].ID == itemID {
			return &l.Items[i]
		}
	}
	return nil
}
