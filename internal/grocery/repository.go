package grocery

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

// Repository is a database-backed repository for grocery lists. A list
// and its items are written together in one transaction so a stored
// list is always internally consistent.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save inserts or replaces a grocery list and all of its items.
func (r *Repository) Save(ctx context.Context, list *List) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO grocery_lists (id, user_id, name, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			updated_at = excluded.updated_at`,
		list.ID, list.UserID, list.Name,
		list.StartDate.UTC().Format("2006-01-02"), list.EndDate.UTC().Format("2006-01-02"),
		list.CreatedAt, list.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save grocery list: %w", err)
	}

	// Replace items wholesale; item rows carry no state beyond the list
	if _, err := tx.ExecContext(ctx, "DELETE FROM grocery_items WHERE list_id = ?", list.ID); err != nil {
		return fmt.Errorf("failed to clear grocery items: %w", err)
	}

	for i, item := range list.Items {
		sources, err := json.Marshal(item.RecipeSources)
		if err != nil {
			return fmt.Errorf("failed to marshal recipe sources: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO grocery_items (id, list_id, name, quantity, unit, category, checked, recipe_sources, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, list.ID, item.Name, item.Quantity, item.Unit,
			string(item.Category), item.Checked, string(sources), i,
		)
		if err != nil {
			return fmt.Errorf("failed to save grocery item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit grocery list: %w", err)
	}
	return nil
}

// Get retrieves a grocery list with its items, scoped to the owning user.
func (r *Repository) Get(ctx context.Context, userID, id string) (*List, error) {
	var list List
	var startDate, endDate string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, start_date, end_date, created_at, updated_at
		FROM grocery_lists WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&list.ID, &list.UserID, &list.Name, &startDate, &endDate, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // List not found
		}
		return nil, fmt.Errorf("failed to get grocery list: %w", err)
	}

	if list.StartDate, err = parseDate(startDate); err != nil {
		return nil, err
	}
	if list.EndDate, err = parseDate(endDate); err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	list.Items = items

	return &list, nil
}

// ListByUser retrieves all of a user's grocery lists with items, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]List, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, start_date, end_date, created_at, updated_at
		FROM grocery_lists WHERE user_id = ? ORDER BY created_at DESC, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list grocery lists: %w", err)
	}
	defer rows.Close()

	var lists []List
	for rows.Next() {
		var list List
		var startDate, endDate string
		if err := rows.Scan(&list.ID, &list.UserID, &list.Name, &startDate, &endDate, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan grocery list row: %w", err)
		}
		if list.StartDate, err = parseDate(startDate); err != nil {
			return nil, err
		}
		if list.EndDate, err = parseDate(endDate); err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grocery list rows: %w", err)
	}

	for i := range lists {
		items, err := r.loadItems(ctx, lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Items = items
	}
	return lists, nil
}

// Delete removes a grocery list and its items. Returns sql.ErrNoRows if
// nothing matched.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Explicit item delete so the list goes cleanly even if the
	// connection was opened without the foreign_keys pragma
	if _, err := tx.ExecContext(ctx, "DELETE FROM grocery_items WHERE list_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete grocery items: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"DELETE FROM grocery_lists WHERE id = ? AND user_id = ?", id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete grocery list: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit grocery list delete: %w", err)
	}
	return nil
}

// UpdateItem persists the mutable fields of a single item.
func (r *Repository) UpdateItem(ctx context.Context, listID string, item Item) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE grocery_items SET quantity = ?, checked = ? WHERE id = ? AND list_id = ?`,
		item.Quantity, item.Checked, item.ID, listID,
	)
	if err != nil {
		return fmt.Errorf("failed to update grocery item: %w", err)
	}
	return nil
}

// DeleteItem removes a single item from a list.
func (r *Repository) DeleteItem(ctx context.Context, listID, itemID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM grocery_items WHERE id = ? AND list_id = ?", itemID, listID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete grocery item: %w", err)
	}
	return nil
}

// Touch bumps a list's updated_at after item-level mutations.
func (r *Repository) Touch(ctx context.Context, listID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE grocery_lists SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", listID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch grocery list: %w", err)
	}
	return nil
}

func (r *Repository) loadItems(ctx context.Context, listID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, quantity, unit, category, checked, recipe_sources
		FROM grocery_items WHERE list_id = ? ORDER BY position, id`, listID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load grocery items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var category, sources string
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.Unit, &category, &item.Checked, &sources); err != nil {
			return nil, fmt.Errorf("failed to scan grocery item row: %w", err)
		}
		item.Category = recipe.Category(category)
		if err := json.Unmarshal([]byte(sources), &item.RecipeSources); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recipe sources: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grocery item rows: %w", err)
	}
	return items, nil
}

func parseDate(s string) (t time.Time, err error) {
	t, err = time.Parse("2006-01-02", s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			err = fmt.Errorf("failed to parse date %q: %w", s, err)
		}
	}
	return t, err
}
