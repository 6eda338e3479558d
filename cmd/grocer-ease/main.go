package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klaudiaxhika/grocer-ease-app/internal/api"
	"github.com/klaudiaxhika/grocer-ease-app/internal/auth"
	"github.com/klaudiaxhika/grocer-ease-app/internal/config"
	"github.com/klaudiaxhika/grocer-ease-app/internal/database"
	"github.com/klaudiaxhika/grocer-ease-app/internal/grocery"
	"github.com/klaudiaxhika/grocer-ease-app/internal/importer"
	"github.com/klaudiaxhika/grocer-ease-app/internal/llm"
	"github.com/klaudiaxhika/grocer-ease-app/internal/mealplan"
	"github.com/klaudiaxhika/grocer-ease-app/internal/metrics"
	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
	"github.com/klaudiaxhika/grocer-ease-app/internal/seed"
	"github.com/klaudiaxhika/grocer-ease-app/internal/telegram"
)

func main() {
	seedUser := flag.String("seed", "", "seed sample recipes and meals for the given user id, then continue serving")
	flag.Parse()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	recipeRepo := recipe.NewRepository(db.SQL)
	mealRepo := mealplan.NewRepository(db.SQL)
	groceryRepo := grocery.NewRepository(db.SQL)
	groceryService := grocery.NewService(mealRepo, groceryRepo)
	metricsStore := metrics.NewStore(db.SQL)

	// Without a model the importer still handles schema.org pages
	textGen := newTextGenerator(ctx, cfg)
	extractor := importer.NewImporter(textGen)

	if *seedUser != "" {
		weekStart := telegram.StartOfWeek(time.Now())
		if err := seed.Apply(ctx, recipeRepo, mealRepo, *seedUser, weekStart); err != nil {
			log.Fatalf("Failed to seed sample data: %v", err)
		}
	}

	authManager := auth.NewManager(cfg.JWTSecret)
	handler := api.NewHandler(recipeRepo, mealRepo, groceryService, extractor, metricsStore, cfg.DatabasePath)
	router := api.NewRouter(handler, authManager, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("API server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// newTextGenerator picks whichever model the environment configures,
// preferring Gemini. Returns nil when no key is set; the importer then
// stays limited to structured data.
func newTextGenerator(ctx context.Context, cfg *config.Config) llm.TextGenerator {
	if cfg.GeminiAPIKey != "" {
		gen, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		return gen
	}
	if cfg.OpenAIAPIKey != "" {
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	log.Println("No LLM API key configured; recipe import limited to structured data")
	return nil
}
