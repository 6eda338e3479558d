package grocery

import (
	"errors"
	"fmt"
)

// ErrEmptyRange is returned when list generation is requested over a date
// range with no scheduled meals. Callers wanting a blank list to fill in by
// hand should use NewEmpty instead.
var ErrEmptyRange = errors.New("no scheduled meals in the requested range")

// DataIntegrityError signals that referenced data violates a core invariant,
// such as a recipe with non-positive baseline servings. Aggregation aborts
// for the whole batch rather than silently skipping the offending meal: a
// partial list would understate the ingredients actually needed.
type DataIntegrityError struct {
	RecipeID string
	Reason   string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("recipe %s: %s", e.RecipeID, e.Reason)
}

// NotFoundError signals that a mutation addressed a list or item id that no
// longer exists, typically after a concurrent deletion.
type NotFoundError struct {
	Kind string // "list" or "item"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// InvalidQuantityError signals an attempt to set a negative quantity. It is
// rejected before any store write.
type InvalidQuantityError struct {
	ItemID   string
	Quantity float64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %v for item %s: must not be negative", e.Quantity, e.ItemID)
}
