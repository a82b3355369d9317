package service

import (
	"context"
	"time"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

// Clock tells the current time. Tests substitute a fixed one.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// LocationSource resolves the timezone calendar days are computed in for a user.
type LocationSource interface {
	Location(ctx context.Context, userID string) *time.Location
}

// ContentSource fetches Quran text.
type ContentSource interface {
	Surahs(ctx context.Context) ([]entities.Surah, error)
	Surah(ctx context.Context, id int, translation string) (*entities.Surah, []entities.Ayah, error)
	Juz(ctx context.Context, id int, translation string) ([]entities.Ayah, error)
}

// ReminderNotifier sends reminder notifications to users.
type ReminderNotifier interface {
	SendReminder(ctx context.Context, chatID int64, payload entities.ReminderPayload) error
}

func today(ctx context.Context, clock Clock, locations LocationSource, userID string) entities.Date {
	loc := time.UTC
	if locations != nil {
		loc = locations.Location(ctx, userID)
	}
	return entities.DateOf(clock.Now(), loc)
}
