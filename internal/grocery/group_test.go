package grocery

import (
	"testing"

	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

func groupingItems() []Item {
	return []Item{
		{ID: "i-1", Name: "Eggs", Category: recipe.CategoryDairy},
		{ID: "i-2", Name: "Garlic", Category: recipe.CategoryProduce},
		{ID: "i-3", Name: "Milk", Category: recipe.CategoryDairy},
		{ID: "i-4", Name: "Salt", Category: recipe.CategorySpices, Checked: true},
		{ID: "i-5", Name: "Onion", Category: recipe.CategoryProduce},
	}
}

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory(groupingItems())

	if len(groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(groups))
	}

	// Category order follows first appearance, not the canonical order.
	wantOrder := []recipe.Category{recipe.CategoryDairy, recipe.CategoryProduce, recipe.CategorySpices}
	for i, want := range wantOrder {
		if groups[i].Category != want {
			t.Errorf("Expected group %d to be %q, got %q", i, want, groups[i].Category)
		}
	}

	// Items keep their input order within a group.
	dairy := groups[0]
	if len(dairy.Items) != 2 || dairy.Items[0].Name != "Eggs" || dairy.Items[1].Name != "Milk" {
		t.Errorf("Expected dairy items [Eggs Milk] in input order, got %v", dairy.Items)
	}
	if dairy.Label != "Dairy & Eggs" {
		t.Errorf("Expected dairy label 'Dairy & Eggs', got %q", dairy.Label)
	}
}

func TestGroupByCategoryEmpty(t *testing.T) {
	if groups := GroupByCategory(nil); len(groups) != 0 {
		t.Errorf("Expected no groups for no items, got %d", len(groups))
	}
}

func TestFilterItems(t *testing.T) {
	items := groupingItems()
	hideChecked := false

	t.Run("NoOptionsNoRestriction", func(t *testing.T) {
		got := FilterItems(items, FilterOptions{})
		if len(got) != len(items) {
			t.Errorf("Expected all %d items, got %d", len(items), len(got))
		}
	})

	t.Run("HideChecked", func(t *testing.T) {
		got := FilterItems(items, FilterOptions{ShowChecked: &hideChecked})
		if len(got) != 4 {
			t.Fatalf("Expected 4 unchecked items, got %d", len(got))
		}
		for _, item := range got {
			if item.Checked {
				t.Errorf("Expected only unchecked items, got %q", item.Name)
			}
		}
	})

	t.Run("HiddenCheckedIsSubset", func(t *testing.T) {
		unrestricted := FilterItems(items, FilterOptions{})
		restricted := FilterItems(items, FilterOptions{ShowChecked: &hideChecked})
		ids := make(map[string]bool)
		for _, item := range unrestricted {
			ids[item.ID] = true
		}
		for _, item := range restricted {
			if !ids[item.ID] {
				t.Errorf("Filtered result contains %q not present without the filter", item.Name)
			}
		}
	})

	t.Run("ByCategory", func(t *testing.T) {
		got := FilterItems(items, FilterOptions{Category: recipe.CategoryProduce})
		if len(got) != 2 {
			t.Errorf("Expected 2 produce items, got %d", len(got))
		}
	})

	t.Run("BySearchTermCaseInsensitive", func(t *testing.T) {
		got := FilterItems(items, FilterOptions{SearchTerm: "gAr"})
		if len(got) != 1 || got[0].Name != "Garlic" {
			t.Errorf("Expected [Garlic], got %v", got)
		}
	})

	t.Run("PredicatesAreANDed", func(t *testing.T) {
		// Intersection of category-alone and search-alone results.
		byCategory := FilterItems(items, FilterOptions{Category: recipe.CategoryProduce})
		bySearch := FilterItems(items, FilterOptions{SearchTerm: "on"})
		both := FilterItems(items, FilterOptions{Category: recipe.CategoryProduce, SearchTerm: "on"})

		inCategory := make(map[string]bool)
		for _, item := range byCategory {
			inCategory[item.ID] = true
		}
		inSearch := make(map[string]bool)
		for _, item := range bySearch {
			inSearch[item.ID] = true
		}

		if len(both) != 1 || both[0].Name != "Onion" {
			t.Fatalf("Expected combined filter to return [Onion], got %v", both)
		}
		for _, item := range both {
			if !inCategory[item.ID] || !inSearch[item.ID] {
				t.Errorf("Combined result %q is not in the intersection", item.Name)
			}
		}
	})
}

func TestCountUnchecked(t *testing.T) {
	items := groupingItems()
	if got := CountUnchecked(items); got != 4 {
		t.Errorf("Expected 4 unchecked, got %d", got)
	}
	if got := CountUnchecked(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %d", got)
	}
}
