package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

type sentReminder struct {
	chatID  int64
	payload entities.ReminderPayload
}

type fakeNotifier struct {
	sent []sentReminder
	err  error
}

func (n *fakeNotifier) SendReminder(_ context.Context, chatID int64, payload entities.ReminderPayload) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentReminder{chatID: chatID, payload: payload})
	return nil
}

func telegramChats(userID string) (int64, bool) {
	id, err := strconv.ParseInt(userID, 10, 64)
	return id, err == nil
}

func newScheduler(t *testing.T, e *env) (*ReminderScheduler, *fakeNotifier) {
	t.Helper()
	s := NewReminderScheduler(e.streak, e.dashboard, e.preferences, zap.NewNop())
	n := &fakeNotifier{}
	s.SetNotifier(n)
	return s, n
}

func TestReminderFirePersonalizesWithStreak(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, n := newScheduler(t, e)

	r := entities.DailyReminder{UserID: "7", ChatID: 7, Hour: 8}
	if err := s.fire(ctx, r); err != nil {
		t.Fatal(err)
	}

	for range 3 {
		e.streak.RegisterActivityToday(ctx, "7")
		e.clock.Advance(24 * time.Hour)
	}
	if err := s.fire(ctx, r); err != nil {
		t.Fatal(err)
	}

	if len(n.sent) != 2 {
		t.Fatalf("sent %d reminders", len(n.sent))
	}
	if strings.Contains(n.sent[0].payload.Body, "streak") {
		t.Fatalf("first body = %q", n.sent[0].payload.Body)
	}
	if !strings.Contains(n.sent[1].payload.Body, "Keep your 3-day streak alive!") {
		t.Fatalf("second body = %q", n.sent[1].payload.Body)
	}
}

func TestReminderFireWithoutNotifier(t *testing.T) {
	e := newEnv(t)
	s := NewReminderScheduler(e.streak, e.dashboard, e.preferences, zap.NewNop())

	if err := s.fire(context.Background(), entities.DailyReminder{UserID: "7"}); !errors.Is(err, ErrNotifierNotSet) {
		t.Fatalf("err = %v", err)
	}
}

func TestReminderScheduleReplacesPrevious(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, _ := newScheduler(t, e)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	s.ScheduleDailyReminder(ctx, entities.DailyReminder{UserID: "7", ChatID: 7, Hour: 8, Timezone: "UTC"})
	s.ScheduleDailyReminder(ctx, entities.DailyReminder{UserID: "7", ChatID: 7, Hour: 20, Minute: 15, Timezone: "UTC+3"})

	if got := len(s.cron.Entries()); got != 1 {
		t.Fatalf("entries = %d, want 1", got)
	}
	next, ok := s.Next("7", now)
	if !ok {
		t.Fatal("no reminder scheduled")
	}
	if want := time.Date(2024, 3, 10, 17, 15, 0, 0, time.UTC); !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}

	s.Cancel("7")
	if _, ok := s.Next("7", now); ok {
		t.Fatal("reminder not cancelled")
	}
}

func TestReminderWatchFollowsPreferences(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, _ := newScheduler(t, e)
	s.Watch(telegramChats)

	e.preferences.EnsureUser(ctx, "7", "", "Bilal")
	if _, ok := s.Next("7", e.clock.Now()); !ok {
		t.Fatal("default preferences enable the reminder")
	}

	if _, err := e.preferences.SetReminder(ctx, "7", "06:45", false); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Next("7", e.clock.Now()); ok {
		t.Fatal("disabled reminder still scheduled")
	}

	// Identities without a chat never get a reminder.
	e.preferences.EnsureUser(ctx, "fb-user", "a@b.c", "")
	if _, ok := s.Next("fb-user", e.clock.Now()); ok {
		t.Fatal("reminder scheduled without a chat")
	}
}

func TestReminderRestore(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.preferences.EnsureUser(ctx, "7", "", "")
	e.preferences.EnsureUser(ctx, "8", "", "")
	if _, err := e.preferences.SetReminder(ctx, "8", "08:00", false); err != nil {
		t.Fatal(err)
	}
	e.flush(t)

	s, _ := newScheduler(t, e)
	if got := s.Restore(ctx, telegramChats); got != 2 {
		t.Fatalf("restored = %d, want 2", got)
	}
	if _, ok := s.Next("7", e.clock.Now()); !ok {
		t.Fatal("user 7 not scheduled")
	}
	if _, ok := s.Next("8", e.clock.Now()); ok {
		t.Fatal("user 8 disabled the reminder")
	}
}

func TestReminderNextWithoutCronEntry(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, _ := newScheduler(t, e)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	s.ScheduleDailyReminder(ctx, entities.DailyReminder{UserID: "7", ChatID: 7, Hour: 8, Timezone: "UTC"})
	s.cron.Remove(s.entries["7"])

	if _, ok := s.Next("7", now); ok {
		t.Fatal("next reported a removed cron entry")
	}
}

func TestReminderNextRacesCancel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s, _ := newScheduler(t, e)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 500 {
			s.ScheduleDailyReminder(ctx, entities.DailyReminder{UserID: "7", ChatID: 7, Hour: 8, Timezone: "UTC"})
			s.Cancel("7")
		}
	}()
	go func() {
		defer wg.Done()
		for range 500 {
			if next, ok := s.Next("7", now); ok && next.IsZero() {
				t.Error("next returned a zero time")
				return
			}
		}
	}()
	wg.Wait()
}
