package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
)

// Bot is the part of the Telegram client the handler uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type ReadingService interface {
	Open(ctx context.Context, userID string, surahID int) (service.ReadingView, error)
	Resume(ctx context.Context, userID string) (service.ReadingView, error)
	Current(ctx context.Context, userID string) (service.ReadingView, error)
	Next(ctx context.Context, userID string) (service.ReadingView, error)
	Previous(ctx context.Context, userID string) (service.ReadingView, error)
	Close(ctx context.Context, userID string) (time.Duration, bool)
	Juz(ctx context.Context, userID string, id int) ([]entities.Ayah, error)
}

type DashboardService interface {
	Summary(ctx context.Context, userID string) service.Summary
}

type StreakService interface {
	Streak(ctx context.Context, userID string) entities.StreakRecord
}

type PreferenceService interface {
	EnsureUser(ctx context.Context, userID, email, name string) *entities.User
	Get(ctx context.Context, userID string) entities.UserPreferences
	SetDailyGoal(ctx context.Context, userID string, goal entities.DailyGoal) (entities.UserPreferences, error)
	SetReciter(ctx context.Context, userID, reciterID string) (entities.UserPreferences, error)
	SetTranslation(ctx context.Context, userID, translationID string) (entities.UserPreferences, error)
	SetFontSize(ctx context.Context, userID string, size entities.FontSize) (entities.UserPreferences, error)
	SetTimezone(ctx context.Context, userID, tz string) (entities.UserPreferences, error)
	SetReminder(ctx context.Context, userID, at string, enabled bool) (entities.UserPreferences, error)
}

type BookmarkService interface {
	List(ctx context.Context, userID string) []entities.Bookmark
	Remove(ctx context.Context, userID, bookmarkID string) error
	Toggle(ctx context.Context, userID string, surahID, ayahNumber int) (bool, error)
}

type Catalog interface {
	Reciters() []entities.Reciter
	Translations() []entities.Translation
}
