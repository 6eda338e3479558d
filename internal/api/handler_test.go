package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klaudiaxhika/grocer-ease-app/internal/auth"
	"github.com/klaudiaxhika/grocer-ease-app/internal/grocery"
	"github.com/klaudiaxhika/grocer-ease-app/internal/mealplan"
	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
)

type stubRecipes struct {
	recipes map[string]recipe.Recipe
}

func (s *stubRecipes) Save(_ context.Context, _ string, rec recipe.Recipe) error {
	if s.recipes == nil {
		s.recipes = map[string]recipe.Recipe{}
	}
	s.recipes[rec.ID] = rec
	return nil
}

func (s *stubRecipes) Get(_ context.Context, _, id string) (*recipe.Recipe, error) {
	rec, ok := s.recipes[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *stubRecipes) List(_ context.Context, _ string) ([]recipe.Recipe, error) {
	var out []recipe.Recipe
	for _, rec := range s.recipes {
		out = append(out, rec)
	}
	return out, nil
}

func (s *stubRecipes) Delete(_ context.Context, _, id string) error {
	delete(s.recipes, id)
	return nil
}

type stubMeals struct{}

func (stubMeals) Save(context.Context, mealplan.ScheduledMeal) error { return nil }
func (stubMeals) Get(context.Context, string, string) (*mealplan.ScheduledMeal, error) {
	return nil, nil
}
func (stubMeals) ListRange(context.Context, string, time.Time, time.Time) ([]mealplan.ScheduledMeal, error) {
	return nil, nil
}
func (stubMeals) Delete(context.Context, string, string) error { return nil }

// stubGrocery lets each test pin the behavior it needs via func fields.
type stubGrocery struct {
	generate      func() (*grocery.List, error)
	get           func(listID string) (*grocery.List, error)
	setChecked    func() (*grocery.List, error)
	setQuantity   func() (*grocery.List, error)
	checkAll      func() (*grocery.List, *grocery.BatchResult, bool, error)
	checkCategory func() (*grocery.List, *grocery.BatchResult, error)
}

func (s *stubGrocery) Generate(context.Context, string, string, time.Time, time.Time) (*grocery.List, error) {
	return s.generate()
}
func (s *stubGrocery) CreateEmpty(_ context.Context, userID, name string, start, end time.Time) (*grocery.List, error) {
	return grocery.NewEmpty(userID, name, start, end), nil
}
func (s *stubGrocery) Get(_ context.Context, _, listID string) (*grocery.List, error) {
	return s.get(listID)
}
func (s *stubGrocery) List(context.Context, string) ([]grocery.List, error) { return nil, nil }
func (s *stubGrocery) Delete(_ context.Context, _, listID string) error {
	_, err := s.get(listID)
	return err
}
func (s *stubGrocery) SetItemChecked(context.Context, string, string, string, bool) (*grocery.List, error) {
	return s.setChecked()
}
func (s *stubGrocery) SetItemQuantity(context.Context, string, string, string, float64) (*grocery.List, error) {
	return s.setQuantity()
}
func (s *stubGrocery) RemoveItem(context.Context, string, string, string) (*grocery.List, error) {
	return nil, &grocery.NotFoundError{Kind: "item", ID: "gone"}
}
func (s *stubGrocery) CheckCategory(context.Context, string, string, recipe.Category, bool) (*grocery.List, *grocery.BatchResult, error) {
	return s.checkCategory()
}
func (s *stubGrocery) CheckAll(context.Context, string, string, *bool) (*grocery.List, *grocery.BatchResult, bool, error) {
	return s.checkAll()
}

func newTestRouter(t *testing.T, recipes RecipeStore, groceryService GroceryService) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := auth.NewManager("test-secret")
	token, err := manager.GenerateToken("user-1")
	require.NoError(t, err)

	h := NewHandler(recipes, stubMeals{}, groceryService, nil, nil, "/nonexistent")
	return NewRouter(h, manager, []string{"http://localhost"}), token
}

func doJSON(router *gin.Engine, token, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	router, _ := newTestRouter(t, &stubRecipes{}, &stubGrocery{})
	w := doJSON(router, "", http.MethodGet, "/api/recipes", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthzIsOpen(t *testing.T) {
	router, _ := newTestRouter(t, &stubRecipes{}, &stubGrocery{})
	w := doJSON(router, "", http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCreateRecipeValidation(t *testing.T) {
	router, token := newTestRouter(t, &stubRecipes{}, &stubGrocery{})

	t.Run("RejectsInvalid", func(t *testing.T) {
		w := doJSON(router, token, http.MethodPost, "/api/recipes", map[string]any{
			"name": "No servings",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CreatesValid", func(t *testing.T) {
		w := doJSON(router, token, http.MethodPost, "/api/recipes", map[string]any{
			"name":     "Omelette",
			"servings": 1,
			"ingredients": []map[string]any{
				{"name": "Eggs", "quantity": 3, "unit": "large", "category": "dairy"},
			},
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var created recipe.Recipe
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
	})
}

func TestGenerateStatusMapping(t *testing.T) {
	t.Run("EmptyRange", func(t *testing.T) {
		svc := &stubGrocery{generate: func() (*grocery.List, error) {
			return nil, grocery.ErrEmptyRange
		}}
		router, token := newTestRouter(t, &stubRecipes{}, svc)

		w := doJSON(router, token, http.MethodPost, "/api/grocery-lists/generate", map[string]any{
			"name": "Week", "start_date": "2026-03-02", "end_date": "2026-03-08",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("DataIntegrity", func(t *testing.T) {
		svc := &stubGrocery{generate: func() (*grocery.List, error) {
			return nil, &grocery.DataIntegrityError{RecipeID: "r-bad", Reason: "recipe has no servings"}
		}}
		router, token := newTestRouter(t, &stubRecipes{}, svc)

		w := doJSON(router, token, http.MethodPost, "/api/grocery-lists/generate", map[string]any{
			"name": "Week", "start_date": "2026-03-02", "end_date": "2026-03-08",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "r-bad")
	})

	t.Run("BadDateRange", func(t *testing.T) {
		router, token := newTestRouter(t, &stubRecipes{}, &stubGrocery{})
		w := doJSON(router, token, http.MethodPost, "/api/grocery-lists/generate", map[string]any{
			"name": "Week", "start_date": "2026-03-08", "end_date": "2026-03-02",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestItemUpdateStatusMapping(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		svc := &stubGrocery{setChecked: func() (*grocery.List, error) {
			return nil, &grocery.NotFoundError{Kind: "grocery item", ID: "i-404"}
		}}
		router, token := newTestRouter(t, &stubRecipes{}, svc)

		w := doJSON(router, token, http.MethodPatch, "/api/grocery-lists/l1/items/i-404", map[string]any{
			"checked": true,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		svc := &stubGrocery{setQuantity: func() (*grocery.List, error) {
			return nil, &grocery.InvalidQuantityError{ItemID: "i-1", Quantity: -2}
		}}
		router, token := newTestRouter(t, &stubRecipes{}, svc)

		w := doJSON(router, token, http.MethodPatch, "/api/grocery-lists/l1/items/i-1", map[string]any{
			"quantity": -2,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "i-1")
	})

	t.Run("EmptyBodyRejected", func(t *testing.T) {
		router, token := newTestRouter(t, &stubRecipes{}, &stubGrocery{})
		w := doJSON(router, token, http.MethodPatch, "/api/grocery-lists/l1/items/i-1", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBatchPartialFailureStatus(t *testing.T) {
	list := grocery.NewEmpty("user-1", "Week", time.Now(), time.Now())
	svc := &stubGrocery{checkAll: func() (*grocery.List, *grocery.BatchResult, bool, error) {
		return list, &grocery.BatchResult{
			Applied: []string{"i-1"},
			Failed:  []grocery.BatchFailure{{ItemID: "i-2", Reason: "disk full"}},
		}, true, nil
	}}
	router, token := newTestRouter(t, &stubRecipes{}, svc)

	w := doJSON(router, token, http.MethodPost, "/api/grocery-lists/l1/check-all", nil)
	assert.Equal(t, http.StatusMultiStatus, w.Code)
	assert.Contains(t, w.Body.String(), "i-2")
}

func TestCheckCategoryValidation(t *testing.T) {
	router, token := newTestRouter(t, &stubRecipes{}, &stubGrocery{})
	w := doJSON(router, token, http.MethodPost, "/api/grocery-lists/l1/categories/cryptid/check", map[string]any{
		"checked": true,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportList(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	list := grocery.NewEmpty("user-1", "Week of Mar 2", start, start.AddDate(0, 0, 6))
	list.Items = []grocery.Item{
		{ID: "i-1", Name: "Eggs", Quantity: 6, Unit: "large", Category: recipe.CategoryDairy},
	}
	svc := &stubGrocery{get: func(string) (*grocery.List, error) { return list, nil }}
	router, token := newTestRouter(t, &stubRecipes{}, svc)

	t.Run("Text", func(t *testing.T) {
		w := doJSON(router, token, http.MethodGet, "/api/grocery-lists/l1/export", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, w.Body.String(), "Week of Mar 2")
	})

	t.Run("CSV", func(t *testing.T) {
		w := doJSON(router, token, http.MethodGet, "/api/grocery-lists/l1/export?format=csv", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Body.String(), "Eggs")
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		w := doJSON(router, token, http.MethodGet, "/api/grocery-lists/l1/export?format=xml", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestImportNotConfigured(t *testing.T) {
	router, token := newTestRouter(t, &stubRecipes{}, &stubGrocery{})
	w := doJSON(router, token, http.MethodPost, "/api/import/url", map[string]any{"url": "https://example.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
