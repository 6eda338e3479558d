package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/klaudiaxhika/grocer-ease-app/internal/auth"
	"github.com/klaudiaxhika/grocer-ease-app/internal/grocery"
	"github.com/klaudiaxhika/grocer-ease-app/internal/importer"
	"github.com/klaudiaxhika/grocer-ease-app/internal/mealplan"
	"github.com/klaudiaxhika/grocer-ease-app/internal/metrics"
	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
	"github.com/klaudiaxhika/grocer-ease-app/internal/shared"
)

const dateLayout = "2006-01-02"

// RecipeStore is the recipe persistence the handler depends on.
type RecipeStore interface {
	Save(ctx context.Context, userID string, rec recipe.Recipe) error
	Get(ctx context.Context, userID, id string) (*recipe.Recipe, error)
	List(ctx context.Context, userID string) ([]recipe.Recipe, error)
	Delete(ctx context.Context, userID, id string) error
}

// MealStore is the scheduled-meal persistence the handler depends on.
type MealStore interface {
	Save(ctx context.Context, m mealplan.ScheduledMeal) error
	Get(ctx context.Context, userID, id string) (*mealplan.ScheduledMeal, error)
	ListRange(ctx context.Context, userID string, start, end time.Time) ([]mealplan.ScheduledMeal, error)
	Delete(ctx context.Context, userID, id string) error
}

// GroceryService is the grocery-list service the handler depends on.
type GroceryService interface {
	Generate(ctx context.Context, userID, name string, start, end time.Time) (*grocery.List, error)
	CreateEmpty(ctx context.Context, userID, name string, start, end time.Time) (*grocery.List, error)
	Get(ctx context.Context, userID, listID string) (*grocery.List, error)
	List(ctx context.Context, userID string) ([]grocery.List, error)
	Delete(ctx context.Context, userID, listID string) error
	SetItemChecked(ctx context.Context, userID, listID, itemID string, checked bool) (*grocery.List, error)
	SetItemQuantity(ctx context.Context, userID, listID, itemID string, quantity float64) (*grocery.List, error)
	RemoveItem(ctx context.Context, userID, listID, itemID string) (*grocery.List, error)
	CheckCategory(ctx context.Context, userID, listID string, category recipe.Category, checked bool) (*grocery.List, *grocery.BatchResult, error)
	CheckAll(ctx context.Context, userID, listID string, override *bool) (*grocery.List, *grocery.BatchResult, bool, error)
}

// Extractor turns URLs and free text into drafts.
type Extractor interface {
	FromURL(ctx context.Context, url string) (*importer.RecipeDraft, shared.ExtractionMeta, error)
	MealPlanFromText(ctx context.Context, text string, weekStart time.Time) ([]importer.MealDraft, shared.ExtractionMeta, error)
}

// MetricsRecorder persists extraction metadata.
type MetricsRecorder interface {
	RecordMeta(ctx context.Context, meta shared.ExtractionMeta) error
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	recipes   RecipeStore
	meals     MealStore
	grocery   GroceryService
	extractor Extractor
	metrics   MetricsRecorder
	dbPath    string
}

// NewHandler creates a new Handler. extractor and recorder may be nil
// when import support is not configured.
func NewHandler(recipes RecipeStore, meals MealStore, groceryService GroceryService, extractor Extractor, recorder MetricsRecorder, dbPath string) *Handler {
	return &Handler{
		recipes:   recipes,
		meals:     meals,
		grocery:   groceryService,
		extractor: extractor,
		metrics:   recorder,
		dbPath:    dbPath,
	}
}

// NewRouter builds the gin engine with CORS and all routes registered.
func NewRouter(h *Handler, authManager *auth.Manager, allowedOrigins []string) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", h.Health)

	api := router.Group("/api", authManager.Middleware())
	h.register(api)
	return router
}

func (h *Handler) register(api *gin.RouterGroup) {
	api.GET("/recipes", h.ListRecipes)
	api.POST("/recipes", h.CreateRecipe)
	api.GET("/recipes/:id", h.GetRecipe)
	api.PUT("/recipes/:id", h.UpdateRecipe)
	api.DELETE("/recipes/:id", h.DeleteRecipe)

	api.GET("/meals", h.ListMeals)
	api.POST("/meals", h.CreateMeal)
	api.DELETE("/meals/:id", h.DeleteMeal)

	api.GET("/grocery-lists", h.ListGroceryLists)
	api.POST("/grocery-lists", h.CreateEmptyList)
	api.POST("/grocery-lists/generate", h.GenerateList)
	api.GET("/grocery-lists/:id", h.GetGroceryList)
	api.DELETE("/grocery-lists/:id", h.DeleteGroceryList)
	api.PATCH("/grocery-lists/:id/items/:itemID", h.UpdateItem)
	api.DELETE("/grocery-lists/:id/items/:itemID", h.RemoveItem)
	api.POST("/grocery-lists/:id/check-all", h.CheckAll)
	api.POST("/grocery-lists/:id/categories/:category/check", h.CheckCategory)
	api.GET("/grocery-lists/:id/export", h.ExportList)

	api.POST("/import/url", h.ImportURL)
	api.POST("/import/text", h.ImportText)
}

// Health reports process health without requiring authentication.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"sys":    metrics.GetSysHealth(h.dbPath),
	})
}

// ListRecipes returns the user's recipes, optionally filtered by ?q=.
func (h *Handler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
		filtered := recipes[:0]
		for _, rec := range recipes {
			if strings.Contains(strings.ToLower(rec.Name), q) {
				filtered = append(filtered, rec)
			}
		}
		recipes = filtered
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// CreateRecipe validates and saves a new recipe.
func (h *Handler) CreateRecipe(c *gin.Context) {
	var rec recipe.Recipe
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := rec.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.recipes.Save(c.Request.Context(), auth.UserID(c), rec); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GetRecipe returns one recipe by id.
func (h *Handler) GetRecipe(c *gin.Context) {
	rec, err := h.recipes.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// UpdateRecipe replaces an existing recipe.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	userID := auth.UserID(c)
	existing, err := h.recipes.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	var rec recipe.Recipe
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	rec.ID = existing.ID
	if err := rec.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.recipes.Save(c.Request.Context(), userID, rec); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteRecipe removes a recipe.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	if err := h.recipes.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMeals returns scheduled meals in the ?start=&end= range.
func (h *Handler) ListMeals(c *gin.Context) {
	start, end, err := parseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	meals, err := h.meals.ListRange(c.Request.Context(), auth.UserID(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	if meals == nil {
		meals = []mealplan.ScheduledMeal{}
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

type createMealRequest struct {
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
	RecipeID string `json:"recipe_id"`
	Servings int    `json:"servings"`
}

// CreateMeal schedules a recipe for a date and meal slot.
func (h *Handler) CreateMeal(c *gin.Context) {
	var req createMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", req.Date)})
		return
	}

	userID := auth.UserID(c)
	rec, err := h.recipes.Get(c.Request.Context(), userID, req.RecipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	meal := mealplan.ScheduledMeal{
		ID:       uuid.NewString(),
		UserID:   userID,
		Date:     date,
		MealType: mealplan.MealType(req.MealType),
		Recipe:   *rec,
		Servings: req.Servings,
	}
	if err := meal.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.meals.Save(c.Request.Context(), meal); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// DeleteMeal removes a scheduled meal.
func (h *Handler) DeleteMeal(c *gin.Context) {
	if err := h.meals.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListGroceryLists returns all of the user's lists.
func (h *Handler) ListGroceryLists(c *gin.Context) {
	lists, err := h.grocery.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if lists == nil {
		lists = []grocery.List{}
	}
	c.JSON(http.StatusOK, gin.H{"grocery_lists": lists})
}

type listRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r listRequest) parse() (name string, start, end time.Time, err error) {
	start, end, err = parseRange(r.StartDate, r.EndDate)
	return r.Name, start, end, err
}

// GenerateList builds a grocery list from scheduled meals in the range.
func (h *Handler) GenerateList(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	name, start, end, err := req.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	list, err := h.grocery.Generate(c.Request.Context(), auth.UserID(c), name, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// CreateEmptyList creates a list with no items.
func (h *Handler) CreateEmptyList(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	name, start, end, err := req.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	list, err := h.grocery.CreateEmpty(c.Request.Context(), auth.UserID(c), name, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// GetGroceryList returns one list with its items.
func (h *Handler) GetGroceryList(c *gin.Context) {
	list, err := h.grocery.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// DeleteGroceryList removes a list and its items.
func (h *Handler) DeleteGroceryList(c *gin.Context) {
	if err := h.grocery.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateItemRequest struct {
	Checked  *bool    `json:"checked"`
	Quantity *float64 `json:"quantity"`
}

// UpdateItem toggles or requantifies one item.
func (h *Handler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Checked == nil && req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update: provide checked or quantity"})
		return
	}

	userID := auth.UserID(c)
	listID, itemID := c.Param("id"), c.Param("itemID")

	var list *grocery.List
	var err error
	if req.Quantity != nil {
		list, err = h.grocery.SetItemQuantity(c.Request.Context(), userID, listID, itemID, *req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Checked != nil {
		list, err = h.grocery.SetItemChecked(c.Request.Context(), userID, listID, itemID, *req.Checked)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, list)
}

// RemoveItem deletes one item from a list.
func (h *Handler) RemoveItem(c *gin.Context) {
	list, err := h.grocery.RemoveItem(c.Request.Context(), auth.UserID(c), c.Param("id"), c.Param("itemID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type checkAllRequest struct {
	Checked *bool `json:"checked"`
}

// CheckAll checks or unchecks every item. Without an explicit state the
// two-phase policy decides.
func (h *Handler) CheckAll(c *gin.Context) {
	var req checkAllRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
	}
	list, result, checked, err := h.grocery.CheckAll(c.Request.Context(), auth.UserID(c), c.Param("id"), req.Checked)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(batchStatus(result), gin.H{"list": list, "checked": checked, "result": result})
}

type checkCategoryRequest struct {
	Checked bool `json:"checked"`
}

// CheckCategory sets every item in one category to the given state.
func (h *Handler) CheckCategory(c *gin.Context) {
	category := recipe.Category(c.Param("category"))
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown category %q", c.Param("category"))})
		return
	}
	var req checkCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	list, result, err := h.grocery.CheckCategory(c.Request.Context(), auth.UserID(c), c.Param("id"), category, req.Checked)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(batchStatus(result), gin.H{"list": list, "result": result})
}

// ExportList renders a list as plain text or CSV.
func (h *Handler) ExportList(c *gin.Context) {
	list, err := h.grocery.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	switch format := c.DefaultQuery("format", "text"); format {
	case "text":
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(grocery.ExportText(list)))
	case "csv":
		data, err := grocery.ExportCSV(list)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="grocery-list.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(data))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown export format %q", format)})
	}
}

type importURLRequest struct {
	URL string `json:"url"`
}

// ImportURL extracts a recipe draft from a web page. The draft is
// returned for confirmation, never saved directly.
func (h *Handler) ImportURL(c *gin.Context) {
	if h.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "import is not configured"})
		return
	}
	var req importURLRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	draft, meta, err := h.extractor.FromURL(c.Request.Context(), req.URL)
	h.recordMeta(c.Request.Context(), meta)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

type importTextRequest struct {
	Text      string `json:"text"`
	WeekStart string `json:"week_start"`
}

// ImportText extracts meal-plan drafts from free text.
func (h *Handler) ImportText(c *gin.Context) {
	if h.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "import is not configured"})
		return
	}
	var req importTextRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	weekStart := time.Now().UTC()
	if req.WeekStart != "" {
		parsed, err := time.Parse(dateLayout, req.WeekStart)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid week_start %q, expected YYYY-MM-DD", req.WeekStart)})
			return
		}
		weekStart = parsed
	}

	meals, meta, err := h.extractor.MealPlanFromText(c.Request.Context(), req.Text, weekStart)
	h.recordMeta(c.Request.Context(), meta)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (h *Handler) recordMeta(ctx context.Context, meta shared.ExtractionMeta) {
	if h.metrics == nil {
		return
	}
	if err := h.metrics.RecordMeta(ctx, meta); err != nil {
		log.Printf("Warning: failed to record extraction metrics: %v", err)
	}
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", startStr)
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", endStr)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date is before start date")
	}
	return start, end, nil
}

// batchStatus maps a batch outcome to a status code: 200 when fully
// applied, 207 when partially applied.
func batchStatus(result *grocery.BatchResult) int {
	if len(result.Failed) > 0 {
		return http.StatusMultiStatus
	}
	return http.StatusOK
}

func respondError(c *gin.Context, err error) {
	var notFound *grocery.NotFoundError
	var invalidQty *grocery.InvalidQuantityError
	var integrity *grocery.DataIntegrityError

	switch {
	case errors.Is(err, grocery.ErrEmptyRange):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error(), "id": notFound.ID})
	case errors.As(err, &invalidQty):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidQty.Error(), "item_id": invalidQty.ItemID})
	case errors.As(err, &integrity):
		c.JSON(http.StatusBadRequest, gin.H{"error": integrity.Error(), "recipe_id": integrity.RecipeID})
	default:
		log.Printf("Error handling request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
