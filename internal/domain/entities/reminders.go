package entities

import (
	"fmt"
	"time"
)

// ReminderPayload is the content of one daily reading reminder.
type ReminderPayload struct {
	Title         string
	Body          string
	CurrentStreak int
	GoalPercent   float64
}

// NewReminderPayload builds the reminder text, personalized when the user
// has a running streak.
func NewReminderPayload(currentStreak int, goalPercent float64) ReminderPayload {
	body := "It's time for your daily reading. Connect with the Quran today."
	if currentStreak > 0 {
		body = fmt.Sprintf("Keep your %d-day streak alive! Open Tilawah Daily to read today's Ayah.", currentStreak)
	}
	return ReminderPayload{
		Title:         "📖 Daily Tilawah Reminder",
		Body:          body,
		CurrentStreak: currentStreak,
		GoalPercent:   goalPercent,
	}
}

// DailyReminder is the installed daily trigger of one identity.
type DailyReminder struct {
	UserID   string
	ChatID   int64
	Hour     int // 0-23 in Timezone
	Minute   int // 0-59
	Timezone string
}

// Next returns the next moment the reminder fires after now. It lets a
// DailyReminder act as a cron schedule in any location, fixed offsets included.
func (r DailyReminder) Next(now time.Time) time.Time {
	loc := LocationOrUTC(r.Timezone)
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), r.Hour, r.Minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next.UTC()
}
