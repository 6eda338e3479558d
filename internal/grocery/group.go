package grocery

import (
	"strings"

	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

// CategoryGroup is one shopping-aisle section of a list.
type CategoryGroup struct {
	Category recipe.Category `json:"category"`
	Label    string          `json:"label"`
	Items    []Item          `json:"items"`
}

// GroupByCategory partitions items into category sections. Sections appear
// in the order their category first occurs in the input; items keep their
// input order within a section. This is a stable partition, not a sort.
func GroupByCategory(items []Item) []CategoryGroup {
	index := make(map[recipe.Category]int)
	var groups []CategoryGroup
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, CategoryGroup{
				Category: item.Category,
				Label:    item.Category.Label(),
			})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// FilterOptions restrict a list of items. Every set predicate must match
// (they are ANDed); an unset predicate imposes no restriction.
type FilterOptions struct {
	// Category restricts to an exact category match when non-empty.
	Category recipe.Category
	// SearchTerm restricts to items whose name contains the term,
	// case-insensitively, when non-empty.
	SearchTerm string
	// ShowChecked excludes checked items when set to false. Nil or true
	// imposes no restriction.
	ShowChecked *bool
}

// FilterItems returns the items matching the given options, in input order.
func FilterItems(items []Item, opts FilterOptions) []Item {
	term := strings.ToLower(opts.SearchTerm)
	var out []Item
	for _, item := range items {
		if opts.ShowChecked != nil && !*opts.ShowChecked && item.Checked {
			continue
		}
		if opts.Category != "" && item.Category != opts.Category {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(item.Name), term) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// CountUnchecked returns how many items have not been checked off yet.
func CountUnchecked(items []Item) int {
	count := 0
	for _, item := range items {
		if !item.Checked {
			count++
		}
	}
	return count
}
