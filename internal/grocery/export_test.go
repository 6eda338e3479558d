package grocery

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

func exportList() *List {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return &List{
		ID:        "list-1",
		Name:      "Weekly Grocery List",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 6),
		Items: []Item{
			{ID: "i-1", Name: "Eggs", Quantity: 6, Unit: "large", Category: recipe.CategoryDairy, RecipeSources: []string{"Classic Omelette"}},
			{ID: "i-2", Name: "Salt", Quantity: 0.5, Unit: "tsp", Category: recipe.CategorySpices, Checked: true, RecipeSources: []string{"Classic Omelette", "Caesar Salad"}},
			{ID: "i-3", Name: "Bay Leaf", Quantity: 1, Unit: "", Category: recipe.CategorySpices, RecipeSources: []string{"Bolognese"}},
		},
	}
}

func TestExportText(t *testing.T) {
	out := ExportText(exportList())

	if !strings.HasPrefix(out, "Weekly Grocery List\n") {
		t.Errorf("Expected output to start with the list name, got %q", out[:40])
	}
	if !strings.Contains(out, "Mar 2, 2026 - Mar 8, 2026") {
		t.Errorf("Expected the date range line, got:\n%s", out)
	}
	if !strings.Contains(out, "DAIRY & EGGS\n") || !strings.Contains(out, "SPICES & HERBS\n") {
		t.Errorf("Expected uppercased category headers, got:\n%s", out)
	}
	if !strings.Contains(out, "[ ] 6 large Eggs\n") {
		t.Errorf("Expected unchecked eggs line, got:\n%s", out)
	}
	if !strings.Contains(out, "[x] ½ tsp Salt\n") {
		t.Errorf("Expected checked salt line with fraction glyph, got:\n%s", out)
	}
	// An empty unit must not leave a double space.
	if !strings.Contains(out, "[ ] 1 Bay Leaf\n") {
		t.Errorf("Expected bay leaf line without unit gap, got:\n%s", out)
	}
}

func TestExportCSV(t *testing.T) {
	out, err := ExportCSV(exportList())
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("Output is not parseable CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d records", len(records))
	}
	if records[0][0] != "Category" || records[0][5] != "Recipes" {
		t.Errorf("Unexpected header: %v", records[0])
	}
	salt := records[2]
	if salt[1] != "Salt" || salt[2] != "½" || salt[4] != "yes" {
		t.Errorf("Unexpected salt row: %v", salt)
	}
	if salt[5] != "Classic Omelette, Caesar Salad" {
		t.Errorf("Expected joined recipe sources, got %q", salt[5])
	}
}
