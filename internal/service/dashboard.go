package service

import (
	"context"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

// GoalSummary is today's standing against the daily goal.
type GoalSummary struct {
	Type    entities.GoalType `json:"type"`
	Target  int               `json:"target"`
	Current int               `json:"current"`
	Percent float64           `json:"percent"`
}

// Summary is everything the progress screen shows.
type Summary struct {
	entities.Level

	Goal                 GoalSummary     `json:"goal"`
	CurrentStreak        int             `json:"currentStreak"`
	LongestStreak        int             `json:"longestStreak"`
	NextMilestone        int             `json:"nextMilestone"`
	TotalAyahsRead       int             `json:"totalAyahsRead"`
	TotalReadingSeconds  int             `json:"totalReadingSeconds"`
	DailyAyahsRead       int             `json:"dailyAyahsRead"`
	DailyReadingSeconds  int             `json:"dailyReadingSeconds"`
	CompletionPercentage float64         `json:"completionPercentage"`
	LastReadSurahID      int             `json:"lastReadSurahId"`
	LastReadAyahNumber   int             `json:"lastReadAyahNumber"`
	History              []entities.Date `json:"history"`
}

// Dashboard combines progress, streak and preferences into one read model.
type Dashboard struct {
	progress    *ProgressTracker
	streak      *StreakTracker
	preferences *PreferenceStore
}

func NewDashboard(progress *ProgressTracker, streak *StreakTracker, preferences *PreferenceStore) *Dashboard {
	return &Dashboard{
		progress:    progress,
		streak:      streak,
		preferences: preferences,
	}
}

// Summary builds the dashboard of userID as of the user's current day.
func (d *Dashboard) Summary(ctx context.Context, userID string) Summary {
	p := d.progress.Today(ctx, userID)
	s := d.streak.Streak(ctx, userID)
	goal := d.preferences.Get(ctx, userID).DailyGoal

	return Summary{
		Level: entities.LevelFor(p.TotalAyahsRead),
		Goal: GoalSummary{
			Type:    goal.Type,
			Target:  goal.Value,
			Current: goal.Current(p),
			Percent: goal.Percent(p),
		},
		CurrentStreak:        s.CurrentStreak,
		LongestStreak:        s.LongestStreak,
		NextMilestone:        s.NextMilestone(),
		TotalAyahsRead:       p.TotalAyahsRead,
		TotalReadingSeconds:  p.TotalReadingSeconds,
		DailyAyahsRead:       p.DailyAyahsRead,
		DailyReadingSeconds:  p.DailyReadingSeconds,
		CompletionPercentage: entities.QuranCompletion(p.TotalAyahsRead),
		LastReadSurahID:      p.LastReadSurahID,
		LastReadAyahNumber:   p.LastReadAyahNumber,
		History:              s.History,
	}
}

// GoalPercent returns today's daily goal completion of userID.
func (d *Dashboard) GoalPercent(ctx context.Context, userID string) float64 {
	p := d.progress.Today(ctx, userID)
	return d.preferences.Get(ctx, userID).DailyGoal.Percent(p)
}
