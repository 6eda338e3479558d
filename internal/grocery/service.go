package grocery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/klaudiaxhika/grocer-ease-app/internal/mealplan"
	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

// MealSource provides the scheduled meals a list is generated from.
type MealSource interface {
	ListRange(ctx context.Context, userID string, start, end time.Time) ([]mealplan.ScheduledMeal, error)
}

// Store persists grocery lists.
type Store interface {
	Save(ctx context.Context, list *List) error
	Get(ctx context.Context, userID, id string) (*List, error)
	ListByUser(ctx context.Context, userID string) ([]List, error)
	Delete(ctx context.Context, userID, id string) error
	UpdateItem(ctx context.Context, listID string, item Item) error
	DeleteItem(ctx context.Context, listID, itemID string) error
	Touch(ctx context.Context, listID string) error
}

// BatchFailure records one item a batch operation could not apply.
type BatchFailure struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// BatchResult reports the outcome of a batch mutation. A batch keeps
// going past individual failures so one bad row never blocks the rest.
type BatchResult struct {
	Applied []string       `json:"applied"`
	Failed  []BatchFailure `json:"failed,omitempty"`
}

// Service coordinates list generation, persistence and mutations.
type Service struct {
	meals MealSource
	store Store
}

// NewService creates a new Service.
func NewService(meals MealSource, store Store) *Service {
	return &Service{meals: meals, store: store}
}

// Generate builds and persists a grocery list from the user's scheduled
// meals in [start, end]. Returns ErrEmptyRange when no meals are scheduled.
func (s *Service) Generate(ctx context.Context, userID, name string, start, end time.Time) (*List, error) {
	scheduled, err := s.meals.ListRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduled meals: %w", err)
	}

	list, err := Build(scheduled, userID, name, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateEmpty persists a new list with no items for manual use.
func (s *Service) CreateEmpty(ctx context.Context, userID, name string, start, end time.Time) (*List, error) {
	list := NewEmpty(userID, name, start, end)
	if err := s.store.Save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get retrieves a list or a NotFoundError.
func (s *Service) Get(ctx context.Context, userID, listID string) (*List, error) {
	list, err := s.store.Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, &NotFoundError{Kind: "grocery list", ID: listID}
	}
	return list, nil
}

// List retrieves all of a user's lists.
func (s *Service) List(ctx context.Context, userID string) ([]List, error) {
	return s.store.ListByUser(ctx, userID)
}

// Delete removes a list or returns a NotFoundError.
func (s *Service) Delete(ctx context.Context, userID, listID string) error {
	err := s.store.Delete(ctx, userID, listID)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Kind: "grocery list", ID: listID}
	}
	return err
}

// SetItemChecked toggles one item and persists the change.
func (s *Service) SetItemChecked(ctx context.Context, userID, listID, itemID string, checked bool) (*List, error) {
	list, err := s.Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if err := list.ToggleItem(itemID, checked); err != nil {
		return nil, err
	}
	item := *list.findItem(itemID)
	if err := s.store.UpdateItem(ctx, listID, item); err != nil {
		return nil, err
	}
	if err := s.store.Touch(ctx, listID); err != nil {
		return nil, err
	}
	return list, nil
}

// SetItemQuantity updates one item's quantity and persists the change.
func (s *Service) SetItemQuantity(ctx context.Context, userID, listID, itemID string, quantity float64) (*List, error) {
	list, err := s.Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if err := list.UpdateItemQuantity(itemID, quantity); err != nil {
		return nil, err
	}
	item := *list.findItem(itemID)
	if err := s.store.UpdateItem(ctx, listID, item); err != nil {
		return nil, err
	}
	if err := s.store.Touch(ctx, listID); err != nil {
		return nil, err
	}
	return list, nil
}

// RemoveItem deletes one item from a list and persists the change.
func (s *Service) RemoveItem(ctx context.Context, userID, listID, itemID string) (*List, error) {
	list, err := s.Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if err := list.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteItem(ctx, listID, itemID); err != nil {
		return nil, err
	}
	if err := s.store.Touch(ctx, listID); err != nil {
		return nil, err
	}
	return list, nil
}

// CheckCategory sets every item in a category to the given state and
// persists each change, reporting per-item failures.
func (s *Service) CheckCategory(ctx context.Context, userID, listID string, category recipe.Category, checked bool) (*List, *BatchResult, error) {
	list, err := s.Get(ctx, userID, listID)
	if err != nil {
		return nil, nil, err
	}
	changed := list.ToggleCategory(category, checked)
	result := s.persistItems(ctx, list, changed)
	return list, result, nil
}

// CheckAll sets every item to the given state. When override is nil the
// two-phase policy applies: if any item is unchecked everything gets
// checked, otherwise everything gets unchecked. Returns the state it applied.
func (s *Service) CheckAll(ctx context.Context, userID, listID string, override *bool) (*List, *BatchResult, bool, error) {
	list, err := s.Get(ctx, userID, listID)
	if err != nil {
		return nil, nil, false, err
	}
	checked := ShouldCheckAll(list.Items)
	if override != nil {
		checked = *override
	}
	changed := list.ToggleAll(checked)
	result := s.persistItems(ctx, list, changed)
	return list, result, checked, nil
}

func (s *Service) persistItems(ctx context.Context, list *List, itemIDs []string) *BatchResult {
	result := &BatchResult{}
	for _, id := range itemIDs {
		item := list.findItem(id)
		if item == nil {
			result.Failed = append(result.Failed, BatchFailure{ItemID: id, Reason: "item not found"})
			continue
		}
		if err := s.store.UpdateItem(ctx, list.ID, *item); err != nil {
			result.Failed = append(result.Failed, BatchFailure{ItemID: id, Reason: err.Error()})
			continue
		}
		result.Applied = append(result.Applied, id)
	}
	if len(result.Applied) > 0 {
		if err := s.store.Touch(ctx, list.ID); err != nil {
			// The item writes already landed; surface the miss per item set
			result.Failed = append(result.Failed, BatchFailure{ItemID: list.ID, Reason: "failed to update list timestamp: " + err.Error()})
		}
	}
	return result
}
