package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/storage"
)

// Commands is the command menu registered with Telegram.
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start reading with Tilawah Daily"},
	{Command: "read", Description: "Read a surah (/read 36) or continue where you left off"},
	{Command: "juz", Description: "Read a juz (/juz 30)"},
	{Command: "progress", Description: "Show your progress"},
	{Command: "streak", Description: "Show your reading streak"},
	{Command: "bookmarks", Description: "Your bookmarks"},
	{Command: "settings", Description: "Settings"},
	{Command: "stop", Description: "Finish the reading session"},
	{Command: "help", Description: "Help"},
}

type Handler struct {
	bot         Bot
	logger      *zap.Logger
	reading     ReadingService
	dashboard   DashboardService
	streak      StreakService
	preferences PreferenceService
	bookmarks   BookmarkService
	catalog     Catalog
	reminders   *storage.ReminderStorage
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	reading ReadingService,
	dashboard DashboardService,
	streak StreakService,
	preferences PreferenceService,
	bookmarks BookmarkService,
	catalog Catalog,
	reminders *storage.ReminderStorage,
) *Handler {
	return &Handler{
		bot:         bot,
		logger:      logger,
		reading:     reading,
		dashboard:   dashboard,
		streak:      streak,
		preferences: preferences,
		bookmarks:   bookmarks,
		catalog:     catalog,
		reminders:   reminders,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	from := update.Message.From
	userID := userKey(from.ID)
	h.preferences.EnsureUser(ctx, userID, "", displayName(from))

	chatID := update.Message.Chat.ID

	if !update.Message.IsCommand() {
		h.sendText(chatID, msgUnknownCommand)
		return
	}

	args := update.Message.CommandArguments()

	switch update.Message.Command() {
	case "start":
		_ = h.withErrorHandling(h.handleStart(userID))(ctx, chatID)
	case "read":
		_ = h.withErrorHandling(h.handleRead(userID, args))(ctx, chatID)
	case "juz":
		_ = h.withErrorHandling(h.handleJuz(userID, args))(ctx, chatID)
	case "progress":
		_ = h.withErrorHandling(h.handleProgress(userID))(ctx, chatID)
	case "streak":
		_ = h.withErrorHandling(h.handleStreak(userID))(ctx, chatID)
	case "bookmarks":
		_ = h.withErrorHandling(h.handleBookmarks(userID))(ctx, chatID)
	case "settings":
		_ = h.withErrorHandling(h.handleSettings(userID))(ctx, chatID)
	case "goal":
		_ = h.withErrorHandling(h.handleGoal(userID, args))(ctx, chatID)
	case "reciter":
		_ = h.withErrorHandling(h.handleReciter(userID, args))(ctx, chatID)
	case "translation":
		_ = h.withErrorHandling(h.handleTranslation(userID, args))(ctx, chatID)
	case "fontsize":
		_ = h.withErrorHandling(h.handleFontSize(userID, args))(ctx, chatID)
	case "timezone":
		_ = h.withErrorHandling(h.handleTimezone(userID, args))(ctx, chatID)
	case "reminder":
		_ = h.withErrorHandling(h.handleReminder(userID, args))(ctx, chatID)
	case "stop":
		_ = h.withErrorHandling(h.handleStop(userID))(ctx, chatID)
	case "help":
		h.sendText(chatID, msgHelp)
	default:
		h.sendText(chatID, msgUnknownCommand)
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	_ = h.send(newHTMLMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}
