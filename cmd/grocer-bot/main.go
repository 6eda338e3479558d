package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klaudiaxhika/grocer-ease-app/internal/config"
	"github.com/klaudiaxhika/grocer-ease-app/internal/database"
	"github.com/klaudiaxhika/grocer-ease-app/internal/grocery"
	"github.com/klaudiaxhika/grocer-ease-app/internal/importer"
	"github.com/klaudiaxhika/grocer-ease-app/internal/llm"
	"github.com/klaudiaxhika/grocer-ease-app/internal/mealplan"
	"github.com/klaudiaxhika/grocer-ease-app/internal/metrics"
	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
	"github.com/klaudiaxhika/grocer-ease-app/internal/telegram"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN environment variable not set")
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
	sessionRepo := telegram.NewSessionRepository(db.SQL)

	var textGen llm.TextGenerator
	if cfg.GeminiAPIKey != "" {
		textGen, err = llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
	} else if cfg.OpenAIAPIKey != "" {
		textGen = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	imp := importer.NewImporter(textGen)

	bot, err := telegram.NewBot(cfg, groceryService, recipeRepo, imp, sessionRepo, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
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
