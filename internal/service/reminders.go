package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

var ErrNotifierNotSet = errors.New("notifier not initialized")

// ChatResolver maps an identity to the chat its reminders are sent to.
type ChatResolver func(userID string) (chatID int64, ok bool)

// ReminderScheduler keeps one repeating daily reminder per identity.
type ReminderScheduler struct {
	cron        *cron.Cron
	streak      *StreakTracker
	dashboard   *Dashboard
	preferences *PreferenceStore
	notifier    ReminderNotifier
	logger      *zap.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewReminderScheduler creates a scheduler. Reminders fire once Start runs.
func NewReminderScheduler(
	streak *StreakTracker,
	dashboard *Dashboard,
	preferences *PreferenceStore,
	logger *zap.Logger,
) *ReminderScheduler {
	return &ReminderScheduler{
		cron:        cron.New(cron.WithLocation(time.UTC)),
		streak:      streak,
		dashboard:   dashboard,
		preferences: preferences,
		logger:      logger,
		entries:     make(map[string]cron.EntryID),
	}
}

// SetNotifier sets the notifier (called after the delivery handler is created).
func (s *ReminderScheduler) SetNotifier(notifier ReminderNotifier) {
	s.notifier = notifier
}

// Start runs the scheduler until ctx is done.
func (s *ReminderScheduler) Start(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("reminder scheduler started", zap.Int("reminders", len(s.cron.Entries())))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("reminder scheduler stopped")
}

// ScheduleDailyReminder installs the daily reminder of r.UserID, replacing
// the previous one.
func (s *ReminderScheduler) ScheduleDailyReminder(ctx context.Context, r entities.DailyReminder) {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[r.UserID]; ok {
		s.cron.Remove(id)
	}
	s.entries[r.UserID] = s.cron.Schedule(r, cron.FuncJob(func() {
		if err := s.fire(ctx, r); err != nil {
			s.logger.Error("failed to send reminder",
				zap.String("user_id", r.UserID),
				zap.Error(err),
			)
		}
	}))

	s.logger.Debug("daily reminder scheduled",
		zap.String("user_id", r.UserID),
		zap.Int("hour", r.Hour),
		zap.Int("minute", r.Minute),
		zap.String("timezone", r.Timezone),
	)
}

// Cancel removes the daily reminder of userID.
func (s *ReminderScheduler) Cancel(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[userID]; ok {
		s.cron.Remove(id)
		delete(s.entries, userID)
	}
}

// Next returns when the reminder of userID fires next.
func (s *ReminderScheduler) Next(userID string, now time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[userID]
	if !ok {
		return time.Time{}, false
	}
	entry := s.cron.Entry(id)
	if entry.Schedule == nil {
		return time.Time{}, false
	}
	return entry.Schedule.Next(now), true
}

// Apply schedules or cancels the reminder of userID to match prefs.
func (s *ReminderScheduler) Apply(ctx context.Context, userID string, chatID int64, prefs entities.UserPreferences) {
	if !prefs.ReminderEnabled {
		s.Cancel(userID)
		return
	}

	hour, minute, err := entities.ParseReminderTime(prefs.ReminderTime)
	if err != nil {
		s.logger.Warn("invalid reminder time, reminder not scheduled",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		s.Cancel(userID)
		return
	}

	s.ScheduleDailyReminder(ctx, entities.DailyReminder{
		UserID:   userID,
		ChatID:   chatID,
		Hour:     hour,
		Minute:   minute,
		Timezone: prefs.Timezone,
	})
}

// Watch keeps reminders in step with preference and sign-in changes.
func (s *ReminderScheduler) Watch(chats ChatResolver) {
	s.preferences.Subscribe(func(ctx context.Context, userID string, state entities.AuthState) {
		chatID, ok := chats(userID)
		if !ok || !state.IsAuthenticated || state.User == nil {
			s.Cancel(userID)
			return
		}
		s.Apply(ctx, userID, chatID, state.User.Preferences)
	})
}

// Restore schedules the reminders of every persisted user.
func (s *ReminderScheduler) Restore(ctx context.Context, chats ChatResolver) int {
	restored := 0
	for _, userID := range s.preferences.Users(ctx) {
		chatID, ok := chats(userID)
		if !ok {
			continue
		}
		state := s.preferences.AuthState(ctx, userID)
		if !state.IsAuthenticated || state.User == nil {
			continue
		}
		s.Apply(ctx, userID, chatID, state.User.Preferences)
		restored++
	}

	s.logger.Info("reminders restored", zap.Int("users", restored))
	return restored
}

func (s *ReminderScheduler) fire(ctx context.Context, r entities.DailyReminder) error {
	if s.notifier == nil {
		return ErrNotifierNotSet
	}

	streak := s.streak.Streak(ctx, r.UserID)
	payload := entities.NewReminderPayload(streak.CurrentStreak, s.dashboard.GoalPercent(ctx, r.UserID))

	if err := s.notifier.SendReminder(ctx, r.ChatID, payload); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	s.logger.Info("reminder sent",
		zap.String("user_id", r.UserID),
		zap.Int("streak", streak.CurrentStreak),
	)
	return nil
}
