package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/storage/kv"
)

type progressEnvelope struct {
	Progress entities.ProgressRecord `json:"progress"`
}

// ProgressTracker owns the cumulative and daily reading counters of every user.
type ProgressTracker struct {
	records   *projection[progressEnvelope]
	locations LocationSource
	clock     Clock
	logger    *zap.Logger
}

func NewProgressTracker(
	store *kv.SafeStore,
	writer *kv.AsyncWriter,
	locations LocationSource,
	clock Clock,
	logger *zap.Logger,
) *ProgressTracker {
	t := &ProgressTracker{
		locations: locations,
		clock:     clock,
		logger:    logger,
	}
	t.records = newProjection(store, writer, kv.ProgressKey, func() progressEnvelope {
		return progressEnvelope{Progress: entities.NewProgressRecord(entities.DateOf(t.clock.Now(), time.UTC))}
	})
	return t
}

// Progress returns the stored record of userID.
func (t *ProgressTracker) Progress(ctx context.Context, userID string) entities.ProgressRecord {
	t.records.mu.Lock()
	defer t.records.mu.Unlock()
	return t.records.load(ctx, userID).Progress
}

// Today returns the record of userID as seen on the user's current day.
func (t *ProgressTracker) Today(ctx context.Context, userID string) entities.ProgressRecord {
	day := today(ctx, t.clock, t.locations, userID)
	return t.Progress(ctx, userID).AsOf(day)
}

// UpdateProgress merges delta into the record of userID and persists it in
// the background. Daily fields of delta are increments, the rest replace
// the stored values.
func (t *ProgressTracker) UpdateProgress(ctx context.Context, userID string, delta entities.ProgressDelta) entities.ProgressRecord {
	day := today(ctx, t.clock, t.locations, userID)

	t.records.mu.Lock()
	defer t.records.mu.Unlock()

	env := t.records.load(ctx, userID)
	env.Progress.Apply(delta, day)
	t.records.save(userID, env)

	return env.Progress
}

// AddReadingTime credits seconds of reading to both the lifetime and the
// daily counters.
func (t *ProgressTracker) AddReadingTime(ctx context.Context, userID string, seconds int) entities.ProgressRecord {
	if seconds <= 0 {
		return t.Progress(ctx, userID)
	}
	day := today(ctx, t.clock, t.locations, userID)

	t.records.mu.Lock()
	defer t.records.mu.Unlock()

	env := t.records.load(ctx, userID)
	env.Progress.Apply(entities.ProgressDelta{
		TotalReadingSeconds: entities.Int(env.Progress.TotalReadingSeconds + seconds),
		DailyReadingSeconds: seconds,
	}, day)
	t.records.save(userID, env)

	t.logger.Debug("reading time synced",
		zap.String("user_id", userID),
		zap.Int("seconds", seconds),
	)

	return env.Progress
}

// RecordAyahRead counts one more ayah read and moves the reading position.
func (t *ProgressTracker) RecordAyahRead(ctx context.Context, userID string, surahID, ayahNumber int) entities.ProgressRecord {
	day := today(ctx, t.clock, t.locations, userID)

	t.records.mu.Lock()
	defer t.records.mu.Unlock()

	env := t.records.load(ctx, userID)
	total := env.Progress.TotalAyahsRead + 1
	env.Progress.Apply(entities.ProgressDelta{
		DailyAyahsRead:       1,
		TotalAyahsRead:       entities.Int(total),
		CompletionPercentage: entities.Float(entities.QuranCompletion(total)),
		LastReadSurahID:      entities.Int(surahID),
		LastReadAyahNumber:   entities.Int(ayahNumber),
	}, day)
	t.records.save(userID, env)

	return env.Progress
}

// Forget drops the record of userID.
func (t *ProgressTracker) Forget(userID string) {
	t.records.mu.Lock()
	defer t.records.mu.Unlock()
	t.records.forget(userID)
}
