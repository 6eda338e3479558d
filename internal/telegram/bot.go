package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/klaudiaxhika/grocer-ease-app/internal/config"
	"github.com/klaudiaxhika/grocer-ease-app/internal/grocery"
	"github.com/klaudiaxhika/grocer-ease-app/internal/importer"
	"github.com/klaudiaxhika/grocer-ease-app/internal/metrics"
	"github.com/klaudiaxhika/grocer-ease-app/internal/recipe"
	"github.com/klaudiaxhika/grocer-ease-app/internal/shared"
)

// Bot wraps the Telegram API, the grocery service and the importer.
type Bot struct {
	api          *tgbotapi.BotAPI
	grocery      *grocery.Service
	recipes      *recipe.Repository
	imp          *importer.Importer
	sessions     *SessionRepository
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	groceryService *grocery.Service,
	recipes *recipe.Repository,
	imp *importer.Importer,
	sessions *SessionRepository,
	metricsStore *metrics.Store,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		grocery:      groceryService,
		recipes:      recipes,
		imp:          imp,
		sessions:     sessions,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.CallbackQuery != nil {
		if b.isAllowed(update.CallbackQuery.From.ID) {
			go b.handleCallbackQuery(update.CallbackQuery)
		}
		return
	}

	if update.Message == nil {
		return
	}

	if !b.isAllowed(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) isAllowed(userID int64) bool {
	for _, id := range b.cfg.TelegramAllowUserIDs {
		if userID == id {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := fmt.Sprintf("%d", msg.From.ID)
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/list":
		b.handleListRequest(ctx, userID, msg.Chat.ID)
	case text == "/generate":
		b.handleGenerateRequest(ctx, userID, msg.Chat.ID)
	case text == "/metrics":
		b.handleMetricsCommand(ctx, msg.Chat.ID)
	case strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://"):
		b.handleImportRequest(ctx, userID, msg.Chat.ID, text, func(ctx context.Context) (*importer.RecipeDraft, shared.ExtractionMeta, error) {
			return b.imp.FromURL(ctx, text)
		})
	case strings.Count(text, "\n") >= 2:
		// Multi-line text is treated as a pasted recipe.
		b.handleImportRequest(ctx, userID, msg.Chat.ID, "", func(ctx context.Context) (*importer.RecipeDraft, shared.ExtractionMeta, error) {
			return b.imp.RecipeFromText(ctx, text)
		})
	default:
		b.send(msg.Chat.ID, "Commands:\n/list — show your newest grocery list\n/generate — build this week's list\nPaste a recipe URL or the recipe text itself to import it.")
	}
}

func (b *Bot) handleListRequest(ctx context.Context, userID string, chatID int64) {
	lists, err := b.grocery.List(ctx, userID)
	if err != nil {
		log.Printf("Error listing grocery lists: %v", err)
		b.send(chatID, "❌ Error fetching your lists.")
		return
	}
	if len(lists) == 0 {
		b.send(chatID, "You have no grocery lists yet. Try /generate.")
		return
	}
	b.sendListMessage(chatID, 0, &lists[0])
}

// sendListMessage renders a list grouped by category with one inline
// button per unchecked item. messageID 0 sends a new message, otherwise
// the existing one is edited in place.
func (b *Bot) sendListMessage(chatID int64, messageID int, list *grocery.List) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *%s*\n%s – %s\n",
		list.Name, list.StartDate.Format("Jan 2"), list.EndDate.Format("Jan 2, 2006")))

	for _, group := range grocery.GroupByCategory(list.Items) {
		sb.WriteString(fmt.Sprintf("\n*%s*\n", group.Label))
		for _, item := range group.Items {
			box := "⬜"
			if item.Checked {
				box = "✅"
			}
			line := strings.Join(strings.Fields(fmt.Sprintf("%s %s %s %s",
				box, grocery.FormatQuantity(item.Quantity), item.Unit, item.Name)), " ")
			sb.WriteString(line + "\n")
		}
	}
	if remaining := grocery.CountUnchecked(list.Items); remaining > 0 {
		sb.WriteString(fmt.Sprintf("\n_%d item(s) left to buy_", remaining))
	} else if len(list.Items) > 0 {
		sb.WriteString("\n_All done!_ 🎉")
	}

	// Callback data is capped at 64 bytes; ids are uuids so one item
	// reference per button is all that fits
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, item := range list.Items {
		if item.Checked {
			continue
		}
		label := item.Name
		if len(label) > 28 {
			label = label[:28]
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("☑️ "+label, "chk|"+list.ID+"|"+item.ID),
		))
		if len(rows) == 10 {
			break
		}
	}

	if messageID == 0 {
		msg := tgbotapi.NewMessage(chatID, sb.String())
		msg.ParseMode = "Markdown"
		if len(rows) > 0 {
			msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
		}
		b.api.Send(msg)
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, sb.String())
	edit.ParseMode = "Markdown"
	if len(rows) > 0 {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
		edit.ReplyMarkup = &keyboard
	}
	b.api.Send(edit)
}

func (b *Bot) handleGenerateRequest(ctx context.Context, userID string, chatID int64) {
	start := StartOfWeek(time.Now())
	end := start.AddDate(0, 0, 6)
	name := "Week of " + start.Format("Jan 2")

	list, err := b.grocery.Generate(ctx, userID, name, start, end)
	if err != nil {
		if errors.Is(err, grocery.ErrEmptyRange) {
			b.send(chatID, "📭 No meals scheduled this week, so there is nothing to buy.")
			return
		}
		log.Printf("Error generating grocery list: %v", err)
		b.send(chatID, "❌ Error generating the list.")
		return
	}
	b.sendListMessage(chatID, 0, list)
}

func (b *Bot) handleImportRequest(ctx context.Context, userID string, chatID int64, sourceURL string, extract func(context.Context) (*importer.RecipeDraft, shared.ExtractionMeta, error)) {
	statusMsg := tgbotapi.NewMessage(chatID, "✂️ *Importing recipe...*")
	statusMsg.ParseMode = "Markdown"
	sent, err := b.api.Send(statusMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	draft, meta, err := extract(ctx)
	if b.metricsStore != nil {
		if recErr := b.metricsStore.RecordMeta(ctx, meta); recErr != nil {
			log.Printf("Warning: failed to record extraction metrics: %v", recErr)
		}
	}
	if err != nil {
		log.Printf("Error importing recipe: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		b.edit(chatID, sent.MessageID, fmt.Sprintf("❌ *Error importing recipe:*\n```\n%v\n```", safeErr))
		return
	}

	session, err := b.sessions.Create(ctx, chatID, userID, *draft, sourceURL)
	if err != nil {
		log.Printf("Error saving import session: %v", err)
		b.edit(chatID, sent.MessageID, "❌ Error saving the draft.")
		return
	}

	text := fmt.Sprintf("📋 *%s*\nServings: %d · %d ingredient(s)\n\nSave this recipe?",
		draft.Name, draft.Servings, len(draft.Ingredients))
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", "confirm|"+session.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Discard", "discard|"+session.ID),
		),
	)
	edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, text)
	edit.ParseMode = "Markdown"
	edit.ReplyMarkup = &keyboard
	b.api.Send(edit)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	parts := strings.Split(query.Data, "|")
	if len(parts) < 2 {
		return
	}

	// Answer callback to remove spinner
	b.api.Request(tgbotapi.NewCallback(query.ID, ""))

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	userID := fmt.Sprintf("%d", query.From.ID)

	switch parts[0] {
	case "chk":
		if len(parts) < 3 {
			return
		}
		list, err := b.grocery.SetItemChecked(ctx, userID, parts[1], parts[2], true)
		if err != nil {
			log.Printf("Error checking item: %v", err)
			return
		}
		b.sendListMessage(chatID, messageID, list)
	case "confirm":
		b.confirmDraft(ctx, chatID, messageID, userID, parts[1])
	case "discard":
		if err := b.sessions.Delete(ctx, parts[1]); err != nil {
			log.Printf("Error discarding session: %v", err)
		}
		b.edit(chatID, messageID, "🗑 Draft discarded.")
	}
}

func (b *Bot) confirmDraft(ctx context.Context, chatID int64, messageID int, userID, sessionID string) {
	session, err := b.sessions.GetByChat(ctx, chatID)
	if err != nil || session == nil || session.ID != sessionID {
		b.edit(chatID, messageID, "⚠️ That draft is no longer available.")
		return
	}

	rec, err := session.Draft.ToRecipe()
	if err != nil {
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		b.edit(chatID, messageID, fmt.Sprintf("❌ *Draft is not a valid recipe:*\n```\n%v\n```", safeErr))
		return
	}
	if err := b.recipes.Save(ctx, userID, rec); err != nil {
		log.Printf("Error saving recipe: %v", err)
		b.edit(chatID, messageID, "❌ Error saving the recipe.")
		return
	}
	if err := b.sessions.Delete(ctx, session.ID); err != nil {
		log.Printf("Warning: failed to delete session %s: %v", session.ID, err)
	}

	b.edit(chatID, messageID, fmt.Sprintf("✅ *Recipe saved:* %s", rec.Name))
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	usage, err := b.metricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		b.send(chatID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(b.cfg.DatabasePath)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Import Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d runs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalRuns))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Database: %s\n", health.DatabaseSize))

	b.send(chatID, sb.String())
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

// StartOfWeek returns the Monday of the week containing t, at midnight UTC.
func StartOfWeek(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}
