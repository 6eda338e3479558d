package grocery

import "github.com/klaudiaxhika/grocer-ease-app/internal/recipe"

// The mutation operations below work on the in-memory list; persisting the
// result is the Service's job. Batch operations return the ids of the items
// they changed so callers can write back exactly those rows.

// ToggleItem sets the checked flag of a single item. No other field changes.
func (l *List) ToggleItem(itemID string, checked bool) error {
	item := l.findItem(itemID)
	if item == nil {
		return &NotFoundError{Kind: "item", ID: itemID}
	}
	item.Checked = checked
	return nil
}

// ToggleCategory sets checked uniformly on every item in the given category
// and returns the ids of the items whose state actually changed. A category
// with no items is a no-op, not an error.
func (l *List) ToggleCategory(category recipe.Category, checked bool) []string {
	var changed []string
	for i := range l.Items {
		if l.Items[i].Category != category {
			continue
		}
		if l.Items[i].Checked != checked {
			l.Items[i].Checked = checked
			changed = append(changed, l.Items[i].ID)
		}
	}
	return changed
}

// ToggleAll sets checked uniformly on every item and returns the ids of the
// items whose state actually changed.
func (l *List) ToggleAll(checked bool) []string {
	var changed []string
	for i := range l.Items {
		if l.Items[i].Checked != checked {
			l.Items[i].Checked = checked
			changed = append(changed, l.Items[i].ID)
		}
	}
	return changed
}

// ShouldCheckAll is the "Check All" button policy: if any item is still
// unchecked the action checks everything; only when all items are already
// checked does it flip to unchecking.
func ShouldCheckAll(items []Item) bool {
	checked := 0
	for _, item := range items {
		if item.Checked {
			checked++
		}
	}
	return checked < len(items)
}

// UpdateItemQuantity replaces an item's quantity. Negative values are
// rejected with an InvalidQuantityError; the checked flag is never touched.
func (l *List) UpdateItemQuantity(itemID string, quantity float64) error {
	if quantity < 0 {
		return &InvalidQuantityError{ItemID: itemID, Quantity: quantity}
	}
	item := l.findItem(itemID)
	if item == nil {
		return &NotFoundError{Kind: "item", ID: itemID}
	}
	item.Quantity = quantity
	return nil
}

// RemoveItem deletes an item from the list. Other items' quantities and
// recipe sources are unaffected.
func (l *List) RemoveItem(itemID string) error {
	for i := range l.Items {
		if l.Items[i].ID == itemID {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Kind: "item", ID: itemID}
}

// QuantityStep is the increment/decrement step for a quantity control:
// quarter-unit steps below one unit for fine-grained control, whole units
// above.
func QuantityStep(current float64) float64 {
	if current < 1 {
		return 0.25
	}
	return 1
}
