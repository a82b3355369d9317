package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

var (
	ErrSurahUnavailable = errors.New("surah not available")
	ErrNoOpenSurah      = errors.New("no surah is open")
)

// AudioLocator resolves the recitation audio of a verse.
type AudioLocator interface {
	AudioURL(surahID, ayahNumber int, reciterID string) string
}

// ReadingView is the verse currently shown to a user.
type ReadingView struct {
	Surah           entities.Surah    `json:"surah"`
	Ayah            entities.Ayah     `json:"ayah"`
	Position        int               `json:"position"` // 1-based index within the surah
	AyahCount       int               `json:"ayahCount"`
	AudioURL        string            `json:"audioUrl"`
	Bookmarked      bool              `json:"bookmarked"`
	ShowTranslation bool              `json:"showTranslation"`
	FontSize        entities.FontSize `json:"fontSize"`
	Elapsed         time.Duration     `json:"elapsed"`
	Finished        bool              `json:"finished"`
}

type cursor struct {
	surah entities.Surah
	ayahs []entities.Ayah
	index int
}

// ReadingService drives verse-by-verse reading: it moves the reading
// position, counts ayahs, registers streak activity and runs the session
// timer.
type ReadingService struct {
	content     ContentSource
	audio       AudioLocator
	progress    *ProgressTracker
	streak      *StreakTracker
	sessions    *SessionManager
	preferences *PreferenceStore
	bookmarks   *BookmarkStore
	logger      *zap.Logger

	mu      sync.Mutex
	cursors map[string]*cursor
}

func NewReadingService(
	content ContentSource,
	audio AudioLocator,
	progress *ProgressTracker,
	streak *StreakTracker,
	sessions *SessionManager,
	preferences *PreferenceStore,
	bookmarks *BookmarkStore,
	logger *zap.Logger,
) *ReadingService {
	return &ReadingService{
		content:     content,
		audio:       audio,
		progress:    progress,
		streak:      streak,
		sessions:    sessions,
		preferences: preferences,
		bookmarks:   bookmarks,
		logger:      logger,
		cursors:     make(map[string]*cursor),
	}
}

// Open loads surahID in the user's translation, moves the reading position
// to its first verse and starts a reading session.
func (s *ReadingService) Open(ctx context.Context, userID string, surahID int) (ReadingView, error) {
	return s.openAt(ctx, userID, surahID, 1, true)
}

// Resume reopens the last read surah at the last read verse.
func (s *ReadingService) Resume(ctx context.Context, userID string) (ReadingView, error) {
	p := s.progress.Progress(ctx, userID)
	if p.LastReadSurahID == 0 {
		return ReadingView{}, ErrNoOpenSurah
	}
	return s.openAt(ctx, userID, p.LastReadSurahID, p.LastReadAyahNumber, false)
}

func (s *ReadingService) openAt(ctx context.Context, userID string, surahID, ayahNumber int, movePosition bool) (ReadingView, error) {
	prefs := s.preferences.Get(ctx, userID)

	surah, ayahs, err := s.content.Surah(ctx, surahID, prefs.PreferredTranslation)
	if err != nil {
		s.logger.Warn("failed to load surah",
			zap.String("user_id", userID),
			zap.Int("surah_id", surahID),
			zap.Error(err),
		)
		return ReadingView{}, fmt.Errorf("%w: %d", ErrSurahUnavailable, surahID)
	}
	if surah == nil || len(ayahs) == 0 {
		return ReadingView{}, fmt.Errorf("%w: %d", ErrSurahUnavailable, surahID)
	}

	index := 0
	for i, a := range ayahs {
		if a.AyahNumber == ayahNumber {
			index = i
			break
		}
	}

	if movePosition {
		s.progress.UpdateProgress(ctx, userID, entities.ProgressDelta{
			LastReadSurahID:    entities.Int(surah.ID),
			LastReadAyahNumber: entities.Int(ayahs[index].AyahNumber),
		})
	}

	c := &cursor{surah: *surah, ayahs: ayahs, index: index}

	s.mu.Lock()
	s.cursors[userID] = c
	s.mu.Unlock()

	s.sessions.Start(ctx, userID)

	s.logger.Debug("surah opened",
		zap.String("user_id", userID),
		zap.Int("surah_id", surah.ID),
		zap.Int("ayah_number", ayahs[index].AyahNumber),
	)

	return s.view(ctx, userID, c, prefs), nil
}

// Current returns the verse the user is on. Like every reading action it
// keeps the session alive, restarting it if it ended for inactivity.
func (s *ReadingService) Current(ctx context.Context, userID string) (ReadingView, error) {
	s.mu.Lock()
	c, ok := s.cursors[userID]
	s.mu.Unlock()
	if !ok {
		return ReadingView{}, ErrNoOpenSurah
	}
	s.sessions.Touch(ctx, userID)
	return s.view(ctx, userID, c, s.preferences.Get(ctx, userID)), nil
}

// Next advances to the following verse, counting one ayah read and
// registering today's streak activity. On the last verse it closes the
// surah and returns a finished view.
func (s *ReadingService) Next(ctx context.Context, userID string) (ReadingView, error) {
	s.mu.Lock()
	c, ok := s.cursors[userID]
	if !ok {
		s.mu.Unlock()
		return ReadingView{}, ErrNoOpenSurah
	}
	if c.index >= len(c.ayahs)-1 {
		delete(s.cursors, userID)
		s.mu.Unlock()

		elapsed, _ := s.sessions.Stop(ctx, userID)
		v := s.view(ctx, userID, c, s.preferences.Get(ctx, userID))
		v.Finished = true
		v.Elapsed = elapsed
		return v, nil
	}
	c.index++
	ayah := c.ayahs[c.index]
	s.mu.Unlock()

	s.sessions.Touch(ctx, userID)
	s.progress.RecordAyahRead(ctx, userID, c.surah.ID, ayah.AyahNumber)
	s.streak.RegisterActivityToday(ctx, userID)

	return s.view(ctx, userID, c, s.preferences.Get(ctx, userID)), nil
}

// Previous steps back one verse without touching any counter.
func (s *ReadingService) Previous(ctx context.Context, userID string) (ReadingView, error) {
	s.mu.Lock()
	c, ok := s.cursors[userID]
	if !ok {
		s.mu.Unlock()
		return ReadingView{}, ErrNoOpenSurah
	}
	if c.index > 0 {
		c.index--
	}
	s.mu.Unlock()

	s.sessions.Touch(ctx, userID)

	return s.view(ctx, userID, c, s.preferences.Get(ctx, userID)), nil
}

// Close ends the reading session of userID and returns its duration.
func (s *ReadingService) Close(ctx context.Context, userID string) (time.Duration, bool) {
	s.mu.Lock()
	delete(s.cursors, userID)
	s.mu.Unlock()

	return s.sessions.Stop(ctx, userID)
}

// Juz returns the verses of juz id in the user's translation.
func (s *ReadingService) Juz(ctx context.Context, userID string, id int) ([]entities.Ayah, error) {
	prefs := s.preferences.Get(ctx, userID)
	ayahs, err := s.content.Juz(ctx, id, prefs.PreferredTranslation)
	if err != nil {
		s.logger.Warn("failed to load juz",
			zap.String("user_id", userID),
			zap.Int("juz", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("juz %d: %w", id, ErrSurahUnavailable)
	}
	return ayahs, nil
}

func (s *ReadingService) view(ctx context.Context, userID string, c *cursor, prefs entities.UserPreferences) ReadingView {
	s.mu.Lock()
	index := c.index
	s.mu.Unlock()

	ayah := c.ayahs[index]
	v := ReadingView{
		Surah:           c.surah,
		Ayah:            ayah,
		Position:        index + 1,
		AyahCount:       len(c.ayahs),
		ShowTranslation: prefs.ShowTranslation,
		FontSize:        prefs.FontSize,
		Bookmarked:      s.bookmarks.IsBookmarked(ctx, userID, c.surah.ID, ayah.AyahNumber),
	}
	if s.audio != nil {
		v.AudioURL = s.audio.AudioURL(c.surah.ID, ayah.AyahNumber, prefs.PreferredReciter)
	}
	if timer, ok := s.sessions.Active(userID); ok {
		v.Elapsed = timer.Elapsed()
	}
	return v
}
