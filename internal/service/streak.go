package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/storage/kv"
)

type streakEnvelope struct {
	StreakData entities.StreakRecord `json:"streakData"`
}

// StreakTracker owns the reading streak of every user.
type StreakTracker struct {
	records   *projection[streakEnvelope]
	locations LocationSource
	clock     Clock
	logger    *zap.Logger
}

func NewStreakTracker(
	store *kv.SafeStore,
	writer *kv.AsyncWriter,
	locations LocationSource,
	clock Clock,
	logger *zap.Logger,
) *StreakTracker {
	return &StreakTracker{
		records: newProjection(store, writer, kv.StreakKey, func() streakEnvelope {
			return streakEnvelope{StreakData: entities.NewStreakRecord()}
		}),
		locations: locations,
		clock:     clock,
		logger:    logger,
	}
}

// Streak returns the stored streak of userID.
func (t *StreakTracker) Streak(ctx context.Context, userID string) entities.StreakRecord {
	t.records.mu.Lock()
	defer t.records.mu.Unlock()
	return cloneStreak(t.records.load(ctx, userID).StreakData)
}

// RegisterActivityToday counts the user's current day towards the streak.
// A day counts once; it reports whether this call changed the streak.
func (t *StreakTracker) RegisterActivityToday(ctx context.Context, userID string) (entities.StreakRecord, bool) {
	day := today(ctx, t.clock, t.locations, userID)

	t.records.mu.Lock()
	defer t.records.mu.Unlock()

	env := t.records.load(ctx, userID)
	changed, err := env.StreakData.RegisterActivity(day)
	if err != nil {
		// The stored last read date is unreadable; restart from today.
		t.logger.Warn("corrupted streak record, restarting streak",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		env.StreakData.LastReadDate = nil
		changed, _ = env.StreakData.RegisterActivity(day)
	}

	if changed {
		t.records.save(userID, env)
		if env.StreakData.ReachedMilestone() {
			t.logger.Info("streak milestone reached",
				zap.String("user_id", userID),
				zap.Int("streak", env.StreakData.CurrentStreak),
			)
		}
	}

	return cloneStreak(env.StreakData), changed
}

// Reset zeroes the streak of userID and clears its history.
func (t *StreakTracker) Reset(ctx context.Context, userID string) {
	t.records.mu.Lock()
	defer t.records.mu.Unlock()

	env := t.records.load(ctx, userID)
	env.StreakData.Reset()
	t.records.save(userID, env)
}

func cloneStreak(s entities.StreakRecord) entities.StreakRecord {
	s.History = append([]entities.Date(nil), s.History...)
	if s.History == nil {
		s.History = []entities.Date{}
	}
	if s.LastReadDate != nil {
		d := *s.LastReadDate
		s.LastReadDate = &d
	}
	return s
}
