package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/klaudiaxhika/grocer-ease-app/internal/llm"
	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
	"github.com/klaudiaxhika/grocer-ease-app/internal/shared"
)

// Importer extracts recipe drafts from URLs and free text. Structured
// schema.org data is preferred; the LLM is a fallback for pages without
// it and the only path for free text.
type Importer struct {
	httpClient *http.Client
	textGen    llm.TextGenerator
}

// NewImporter creates a new Importer. textGen may be nil, in which case
// only schema.org extraction is available.
func NewImporter(textGen llm.TextGenerator) *Importer {
	return &Importer{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		textGen:    textGen,
	}
}

// IngredientDraft is one extracted ingredient line.
type IngredientDraft struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

// RecipeDraft is an extracted recipe awaiting user confirmation.
// Nothing is persisted until the draft is confirmed.
type RecipeDraft struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Servings     int               `json:"servings"`
	PrepTime     int               `json:"prep_time"`
	CookTime     int               `json:"cook_time"`
	Ingredients  []IngredientDraft `json:"ingredients"`
	Instructions []string          `json:"instructions"`
	Tags         []string          `json:"tags"`
	SourceURL    string            `json:"source_url,omitempty"`
}

// ToRecipe converts a confirmed draft into a recipe ready to save.
// Unknown categories collapse to "other" rather than failing the import.
func (d *RecipeDraft) ToRecipe() (recipe.Recipe, error) {
	rec := recipe.Recipe{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(d.Name),
		Description:  strings.TrimSpace(d.Description),
		Servings:     d.Servings,
		PrepTime:     d.PrepTime,
		CookTime:     d.CookTime,
		Instructions: d.Instructions,
		Tags:         d.Tags,
	}
	if rec.Servings <= 0 {
		rec.Servings = 1
	}
	for _, ing := range d.Ingredients {
		category := recipe.Category(strings.ToLower(strings.TrimSpace(ing.Category)))
		if !category.Valid() {
			category = recipe.CategoryOther
		}
		quantity := ing.Quantity
		if quantity < 0 {
			quantity = 0
		}
		rec.Ingredients = append(rec.Ingredients, recipe.Ingredient{
			Name:     strings.TrimSpace(ing.Name),
			Quantity: quantity,
			Unit:     strings.TrimSpace(ing.Unit),
			Category: category,
		})
	}
	if err := rec.Validate(); err != nil {
		return recipe.Recipe{}, fmt.Errorf("imported draft is not a valid recipe: %w", err)
	}
	return rec, nil
}

// FromURL fetches a page and extracts a recipe draft from it.
func (i *Importer) FromURL(ctx context.Context, url string) (*RecipeDraft, shared.ExtractionMeta, error) {
	started := time.Now()
	meta := shared.ExtractionMeta{Source: "url"}

	doc, err := i.fetchDocument(ctx, url)
	if err != nil {
		meta.Latency = time.Since(started)
		return nil, meta, err
	}

	// schema.org Recipe markup is authoritative when present
	if draft := extractSchemaOrgRecipe(doc); draft != nil {
		draft.SourceURL = url
		i.structureIngredients(ctx, draft, &meta)
		meta.Latency = time.Since(started)
		meta.Success = true
		return draft, meta, nil
	}

	if i.textGen == nil {
		meta.Latency = time.Since(started)
		return nil, meta, fmt.Errorf("no structured recipe data found and no model configured")
	}

	draft, err := i.extractWithModel(ctx, cleanDocumentText(doc), &meta)
	meta.Latency = time.Since(started)
	if err != nil {
		return nil, meta, err
	}
	draft.SourceURL = url
	meta.Success = true
	return draft, meta, nil
}

// RecipeFromText extracts a recipe draft from free text, e.g. a recipe
// pasted into a chat.
func (i *Importer) RecipeFromText(ctx context.Context, text string) (*RecipeDraft, shared.ExtractionMeta, error) {
	started := time.Now()
	meta := shared.ExtractionMeta{Source: "text"}

	if i.textGen == nil {
		return nil, meta, fmt.Errorf("no model configured for text extraction")
	}

	draft, err := i.extractWithModel(ctx, text, &meta)
	meta.Latency = time.Since(started)
	if err != nil {
		return nil, meta, err
	}
	meta.Success = true
	return draft, meta, nil
}

// MealDraft is one extracted meal-plan entry. RecipeName refers to a
// recipe by name; matching against saved recipes happens at confirmation.
type MealDraft struct {
	Date       string `json:"date"`
	MealType   string `json:"meal_type"`
	RecipeName string `json:"recipe_name"`
	Servings   int    `json:"servings"`
}

// MealPlanFromText extracts meal-plan entries from free text like
// "omelette for breakfast monday, salad for lunch".
func (i *Importer) MealPlanFromText(ctx context.Context, text string, weekStart time.Time) ([]MealDraft, shared.ExtractionMeta, error) {
	started := time.Now()
	meta := shared.ExtractionMeta{Source: "text"}

	if i.textGen == nil {
		return nil, meta, fmt.Errorf("no model configured for text extraction")
	}

	prompt := fmt.Sprintf(`You are a meal planning assistant. The week starts on %s.
Extract the meals described in the text below.
Return the result strictly as a JSON object with this structure:
{
  "meals": [
    {"date": "YYYY-MM-DD", "meal_type": "breakfast|lunch|dinner|snack", "recipe_name": "name as written", "servings": 2}
  ]
}
Use the week start to resolve weekday names to dates. Default servings to 2 when unstated.

Text:
%s`, weekStart.Format("2006-01-02"), text)

	resp, err := i.textGen.GenerateContent(ctx, prompt)
	meta.Usage = resp.Usage
	meta.Latency = time.Since(started)
	if err != nil {
		return nil, meta, fmt.Errorf("meal plan extraction failed: %w", err)
	}

	var parsed struct {
		Meals []MealDraft `json:"meals"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &parsed); err != nil {
		return nil, meta, fmt.Errorf("failed to parse model response: %w. Response: %s", err, resp.Content)
	}
	meta.Success = true
	return parsed.Meals, meta, nil
}

func (i *Importer) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "GrocerEase/1.0 (+recipe import)")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// structureIngredients asks the model to turn raw ingredient lines into
// quantity/unit/category triples. Without a model the raw lines survive
// as name-only ingredients for the user to fix up.
func (i *Importer) structureIngredients(ctx context.Context, draft *RecipeDraft, meta *shared.ExtractionMeta) {
	if i.textGen == nil || len(draft.Ingredients) == 0 {
		return
	}

	var lines []string
	for _, ing := range draft.Ingredients {
		lines = append(lines, ing.Name)
	}

	prompt := fmt.Sprintf(`Parse these ingredient lines into structured form.
Return strictly a JSON object: {"ingredients": [{"name": "...", "quantity": 1.5, "unit": "cup", "category": "..."}]}
category must be one of: %s. Quantities are numbers; use 0 when no amount is given.

Lines:
%s`, strings.Join(categoryNames(), ", "), strings.Join(lines, "\n"))

	resp, err := i.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return // keep the raw lines
	}
	meta.Usage = resp.Usage

	var parsed struct {
		Ingredients []IngredientDraft `json:"ingredients"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &parsed); err != nil {
		return
	}
	if len(parsed.Ingredients) > 0 {
		draft.Ingredients = parsed.Ingredients
	}
}

func (i *Importer) extractWithModel(ctx context.Context, content string, meta *shared.ExtractionMeta) (*RecipeDraft, error) {
	prompt := fmt.Sprintf(`You are a recipe extraction expert. Extract the recipe details from the following content.
Return the result strictly as a JSON object with this structure:
{
  "name": "Recipe Title",
  "description": "one sentence",
  "servings": 4,
  "prep_time": 15,
  "cook_time": 30,
  "ingredients": [{"name": "Eggs", "quantity": 3, "unit": "large", "category": "dairy"}],
  "instructions": ["Step 1", "Step 2"],
  "tags": ["dinner"]
}
prep_time and cook_time are minutes. category must be one of: %s.

Content:
%s`, strings.Join(categoryNames(), ", "), content)

	resp, err := i.textGen.GenerateContent(ctx, prompt)
	meta.Usage = resp.Usage
	if err != nil {
		return nil, fmt.Errorf("recipe extraction failed: %w", err)
	}

	var draft RecipeDraft
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w. Response: %s", err, resp.Content)
	}
	if strings.TrimSpace(draft.Name) == "" {
		return nil, fmt.Errorf("model response is missing a recipe name")
	}
	return &draft, nil
}

func categoryNames() []string {
	names := make([]string, len(recipe.Categories))
	for i, c := range recipe.Categories {
		names[i] = string(c)
	}
	return names
}

// cleanDocumentText strips noise so the model sees mostly recipe text.
func cleanDocumentText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})
	return doc.Find("body").Text()
}

// extractJSON pulls the JSON object out of a model response that may be
// wrapped in code fences or prose.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

// extractSchemaOrgRecipe looks for schema.org Recipe markup in ld+json
// script tags, including @graph containers.
func extractSchemaOrgRecipe(doc *goquery.Document) *RecipeDraft {
	var draft *RecipeDraft
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw interface{}
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true // malformed block, keep looking
		}
		if node := findRecipeNode(raw); node != nil {
			draft = draftFromSchemaOrg(node)
			return false
		}
		return true
	})
	return draft
}

func findRecipeNode(raw interface{}) map[string]interface{} {
	switch v := raw.(type) {
	case map[string]interface{}:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"].([]interface{}); ok {
			return findRecipeNode(graph)
		}
	case []interface{}:
		for _, item := range v {
			if node := findRecipeNode(item); node != nil {
				return node
			}
		}
	}
	return nil
}

func isRecipeType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func draftFromSchemaOrg(node map[string]interface{}) *RecipeDraft {
	draft := &RecipeDraft{
		Name:        stringField(node, "name"),
		Description: stringField(node, "description"),
		Servings:    parseYield(node["recipeYield"]),
		PrepTime:    parseISODurationMinutes(stringField(node, "prepTime")),
		CookTime:    parseISODurationMinutes(stringField(node, "cookTime")),
	}
	if draft.Servings <= 0 {
		draft.Servings = 1
	}

	if lines, ok := node["recipeIngredient"].([]interface{}); ok {
		for _, line := range lines {
			if s, ok := line.(string); ok && strings.TrimSpace(s) != "" {
				draft.Ingredients = append(draft.Ingredients, IngredientDraft{
					Name:     strings.TrimSpace(s),
					Category: string(recipe.CategoryOther),
				})
			}
		}
	}

	draft.Instructions = parseInstructions(node["recipeInstructions"])

	if keywords := stringField(node, "keywords"); keywords != "" {
		for _, kw := range strings.Split(keywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				draft.Tags = append(draft.Tags, strings.ToLower(kw))
			}
		}
	}

	if draft.Name == "" {
		return nil
	}
	return draft
}

func parseInstructions(raw interface{}) []string {
	var steps []string
	switch v := raw.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			steps = append(steps, s)
		}
	case []interface{}:
		for _, item := range v {
			switch step := item.(type) {
			case string:
				if s := strings.TrimSpace(step); s != "" {
					steps = append(steps, s)
				}
			case map[string]interface{}:
				// HowToStep has text; HowToSection nests itemListElement
				if text := stringField(step, "text"); text != "" {
					steps = append(steps, text)
				} else if nested, ok := step["itemListElement"]; ok {
					steps = append(steps, parseInstructions(nested)...)
				}
			}
		}
	}
	return steps
}

func stringField(node map[string]interface{}, key string) string {
	if s, ok := node[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

var yieldNumber = regexp.MustCompile(`\d+`)

func parseYield(raw interface{}) int {
	switch v := raw.(type) {
	case float64:
		return int(v)
	case string:
		if m := yieldNumber.FindString(v); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	case []interface{}:
		for _, item := range v {
			if n := parseYield(item); n > 0 {
				return n
			}
		}
	}
	return 0
}

var isoDuration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODurationMinutes converts durations like PT1H30M to minutes.
func parseISODurationMinutes(s string) int {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	total := hours*60 + minutes
	if seconds >= 30 {
		total++
	}
	return total
}
