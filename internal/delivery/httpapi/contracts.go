package httpapi

import (
	"context"
	"time"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*service.Account, error)
	Register(ctx context.Context, name, email, password string) (*service.Account, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*service.Account, error)
	LoginWithGoogleCode(ctx context.Context, code string) (*service.Account, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, userID string)
}

type ReadingService interface {
	Open(ctx context.Context, userID string, surahID int) (service.ReadingView, error)
	Next(ctx context.Context, userID string) (service.ReadingView, error)
	Close(ctx context.Context, userID string) (time.Duration, bool)
}

type SessionService interface {
	Start(ctx context.Context, userID string) *service.SessionTimer
	Refresh(userID string) bool
}

type DashboardService interface {
	Summary(ctx context.Context, userID string) service.Summary
}

type ProgressService interface {
	RecordAyahRead(ctx context.Context, userID string, surahID, ayahNumber int) entities.ProgressRecord
}

type StreakService interface {
	Streak(ctx context.Context, userID string) entities.StreakRecord
	RegisterActivityToday(ctx context.Context, userID string) (entities.StreakRecord, bool)
}

type PreferenceService interface {
	Get(ctx context.Context, userID string) entities.UserPreferences
	Update(ctx context.Context, userID string, patch entities.PreferencesPatch) (entities.UserPreferences, error)
}

type BookmarkService interface {
	List(ctx context.Context, userID string) []entities.Bookmark
	Add(ctx context.Context, userID string, surahID, ayahNumber int, note string) (entities.Bookmark, error)
	Remove(ctx context.Context, userID, bookmarkID string) error
}

type SubscriptionService interface {
	Purchase(ctx context.Context, userID string, plan service.Plan, platform string) (entities.Subscription, error)
	Cancel(ctx context.Context, userID string) error
	IsFeatureAvailable(ctx context.Context, userID, feature string) bool
}

type ContentService interface {
	Surahs(ctx context.Context) ([]entities.Surah, error)
	Surah(ctx context.Context, id int, translation string) (*entities.Surah, []entities.Ayah, error)
}

// Services are the dependencies of the API.
type Services struct {
	Auth          AuthService
	Reading       ReadingService
	Sessions      SessionService
	Dashboard     DashboardService
	Progress      ProgressService
	Streak        StreakService
	Preferences   PreferenceService
	Bookmarks     BookmarkService
	Subscriptions SubscriptionService
	Content       ContentService
}
