package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/quran"
)

type fakeContent struct {
	translations []string
}

func (c *fakeContent) Surahs(context.Context) ([]entities.Surah, error) {
	return []entities.Surah{{ID: 112, EnglishName: "Al-Ikhlaas", AyahCount: 4}}, nil
}

func (c *fakeContent) Surah(_ context.Context, id int, translation string) (*entities.Surah, []entities.Ayah, error) {
	c.translations = append(c.translations, translation)
	if id != 112 {
		return nil, nil, quran.ErrNotFound
	}
	surah := &entities.Surah{ID: 112, EnglishName: "Al-Ikhlaas", AyahCount: 4}
	ayahs := make([]entities.Ayah, 4)
	for i := range ayahs {
		ayahs[i] = entities.Ayah{
			SurahID:         112,
			AyahNumber:      i + 1,
			TextTranslation: fmt.Sprintf("verse %d", i+1),
		}
	}
	return surah, ayahs, nil
}

func (c *fakeContent) Juz(context.Context, int, string) ([]entities.Ayah, error) {
	return nil, errors.New("unavailable")
}

func newReadingService(t *testing.T, e *env) (*ReadingService, *fakeContent) {
	t.Helper()
	content := &fakeContent{}
	return NewReadingService(
		content,
		quran.NewCatalog(),
		e.progress,
		e.streak,
		e.sessions,
		e.preferences,
		e.bookmarks,
		zap.NewNop(),
	), content
}

func TestReadingOpenAndAdvance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reading, content := newReadingService(t, e)

	if _, err := e.preferences.SetTranslation(ctx, "u1", "en.yusufali"); err != nil {
		t.Fatal(err)
	}

	v, err := reading.Open(ctx, "u1", 112)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if v.Position != 1 || v.AyahCount != 4 || v.AudioURL != "https://everyayah.com/data/Alafasy_128kbps/112001.mp3" {
		t.Fatalf("view = %+v", v)
	}
	if content.translations[0] != "en.yusufali" {
		t.Fatalf("translation = %q", content.translations[0])
	}
	if p := e.progress.Progress(ctx, "u1"); p.LastReadSurahID != 112 || p.LastReadAyahNumber != 1 || p.TotalAyahsRead != 0 {
		t.Fatalf("progress after open = %+v", p)
	}
	if _, ok := e.sessions.Active("u1"); !ok {
		t.Fatal("opening a surah must start a session")
	}

	v, err = reading.Next(ctx, "u1")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if v.Position != 2 || v.Ayah.AyahNumber != 2 {
		t.Fatalf("view = %+v", v)
	}

	p := e.progress.Progress(ctx, "u1")
	if p.TotalAyahsRead != 1 || p.DailyAyahsRead != 1 || p.LastReadAyahNumber != 2 {
		t.Fatalf("progress after next = %+v", p)
	}
	if s := e.streak.Streak(ctx, "u1"); s.CurrentStreak != 1 {
		t.Fatalf("streak = %+v", s)
	}

	v, _ = reading.Previous(ctx, "u1")
	if v.Position != 1 {
		t.Fatalf("previous position = %d", v.Position)
	}
	if p := e.progress.Progress(ctx, "u1"); p.TotalAyahsRead != 1 {
		t.Fatal("previous must not count ayahs")
	}
}

func TestReadingFinishClosesSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reading, _ := newReadingService(t, e)

	if _, err := reading.Open(ctx, "u1", 112); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if _, err := reading.Next(ctx, "u1"); err != nil {
			t.Fatal(err)
		}
	}
	e.clock.Advance(7 * time.Second)

	v, err := reading.Next(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Finished || v.Elapsed != 7*time.Second {
		t.Fatalf("finish view = %+v", v)
	}
	if _, ok := e.sessions.Active("u1"); ok {
		t.Fatal("session still active")
	}
	if p := e.progress.Progress(ctx, "u1"); p.TotalAyahsRead != 3 || p.TotalReadingSeconds != 7 {
		t.Fatalf("progress = %+v", p)
	}
	if _, err := reading.Next(ctx, "u1"); !errors.Is(err, ErrNoOpenSurah) {
		t.Fatalf("next after finish: %v", err)
	}
}

func TestReadingResumeAndErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reading, _ := newReadingService(t, e)

	if _, err := reading.Open(ctx, "u1", 3); !errors.Is(err, ErrSurahUnavailable) {
		t.Fatalf("missing surah: %v", err)
	}
	if _, err := reading.Current(ctx, "u1"); !errors.Is(err, ErrNoOpenSurah) {
		t.Fatalf("current without surah: %v", err)
	}
	if _, err := reading.Juz(ctx, "u1", 30); !errors.Is(err, ErrSurahUnavailable) {
		t.Fatalf("juz: %v", err)
	}

	e.progress.UpdateProgress(ctx, "u1", entities.ProgressDelta{
		LastReadSurahID:    entities.Int(112),
		LastReadAyahNumber: entities.Int(3),
	})
	v, err := reading.Resume(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if v.Position != 3 {
		t.Fatalf("resumed at %d, want 3", v.Position)
	}

	if _, err := e.bookmarks.Toggle(ctx, "u1", 112, 3); err != nil {
		t.Fatal(err)
	}
	if v, _ := reading.Current(ctx, "u1"); !v.Bookmarked {
		t.Fatal("current verse should show as bookmarked")
	}

	if _, ok := reading.Close(ctx, "u1"); !ok {
		t.Fatal("close reported no session")
	}
}
