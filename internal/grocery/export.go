package grocery

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// ExportText renders a list as a plain-text shopping checklist grouped by
// category, one "[ ] quantity unit name" line per item.
func ExportText(l *List) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s - %s\n\n",
		l.Name,
		l.StartDate.Format("Jan 2, 2006"),
		l.EndDate.Format("Jan 2, 2006"),
	)

	for _, group := range GroupByCategory(l.Items) {
		sb.WriteString(strings.ToUpper(group.Label))
		sb.WriteString("\n")
		for _, item := range group.Items {
			box := "[ ]"
			if item.Checked {
				box = "[x]"
			}
			line := fmt.Sprintf("%s %s %s %s", box, FormatQuantity(item.Quantity), item.Unit, item.Name)
			// Unit can be empty ("1  Bay Leaf" reads badly).
			sb.WriteString(strings.Join(strings.Fields(line), " "))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ExportCSV renders a list as CSV with one row per item.
func ExportCSV(l *List) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write([]string{"Category", "Item", "Quantity", "Unit", "Checked", "Recipes"}); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, item := range l.Items {
		checked := "no"
		if item.Checked {
			checked = "yes"
		}
		record := []string{
			string(item.Category),
			item.Name,
			FormatQuantity(item.Quantity),
			item.Unit,
			checked,
			strings.Join(item.RecipeSources, ", "),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return sb.String(), nil
}
