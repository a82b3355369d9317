package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/storage/kv"
)

var (
	ErrBookmarkExists   = errors.New("ayah already bookmarked")
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrInvalidAyahRef   = errors.New("invalid ayah reference")
)

type bookmarkEnvelope struct {
	Bookmarks []entities.Bookmark `json:"bookmarks"`
}

// BookmarkStore keeps the bookmarked verses of every user, newest first.
type BookmarkStore struct {
	records *projection[bookmarkEnvelope]
	clock   Clock
	logger  *zap.Logger
}

func NewBookmarkStore(store *kv.SafeStore, writer *kv.AsyncWriter, clock Clock, logger *zap.Logger) *BookmarkStore {
	return &BookmarkStore{
		records: newProjection(store, writer, kv.BookmarkKey, func() bookmarkEnvelope {
			return bookmarkEnvelope{Bookmarks: []entities.Bookmark{}}
		}),
		clock:  clock,
		logger: logger,
	}
}

// List returns the bookmarks of userID.
func (s *BookmarkStore) List(ctx context.Context, userID string) []entities.Bookmark {
	s.records.mu.Lock()
	defer s.records.mu.Unlock()
	return slices.Clone(s.records.load(ctx, userID).Bookmarks)
}

// Add bookmarks surahID:ayahNumber for userID.
func (s *BookmarkStore) Add(ctx context.Context, userID string, surahID, ayahNumber int, note string) (entities.Bookmark, error) {
	if err := validateAyahRef(surahID, ayahNumber); err != nil {
		return entities.Bookmark{}, err
	}

	s.records.mu.Lock()
	defer s.records.mu.Unlock()

	env := s.records.load(ctx, userID)
	if indexOfAyah(env.Bookmarks, surahID, ayahNumber) >= 0 {
		return entities.Bookmark{}, fmt.Errorf("%d:%d: %w", surahID, ayahNumber, ErrBookmarkExists)
	}

	b := entities.NewBookmark(surahID, ayahNumber, note, s.clock.Now())
	env.Bookmarks = append([]entities.Bookmark{b}, env.Bookmarks...)
	s.records.save(userID, env)

	s.logger.Debug("bookmark added",
		zap.String("user_id", userID),
		zap.Int("surah_id", surahID),
		zap.Int("ayah_number", ayahNumber),
	)

	return b, nil
}

// Remove deletes the bookmark with the given id.
func (s *BookmarkStore) Remove(ctx context.Context, userID, bookmarkID string) error {
	s.records.mu.Lock()
	defer s.records.mu.Unlock()

	env := s.records.load(ctx, userID)
	i := slices.IndexFunc(env.Bookmarks, func(b entities.Bookmark) bool { return b.ID == bookmarkID })
	if i < 0 {
		return ErrBookmarkNotFound
	}

	env.Bookmarks = slices.Delete(env.Bookmarks, i, i+1)
	s.records.save(userID, env)
	return nil
}

// Toggle adds the bookmark of surahID:ayahNumber, or removes it when it
// exists. It reports whether the verse is bookmarked afterwards.
func (s *BookmarkStore) Toggle(ctx context.Context, userID string, surahID, ayahNumber int) (bool, error) {
	if err := validateAyahRef(surahID, ayahNumber); err != nil {
		return false, err
	}

	s.records.mu.Lock()
	defer s.records.mu.Unlock()

	env := s.records.load(ctx, userID)
	if i := indexOfAyah(env.Bookmarks, surahID, ayahNumber); i >= 0 {
		env.Bookmarks = slices.Delete(env.Bookmarks, i, i+1)
		s.records.save(userID, env)
		return false, nil
	}

	b := entities.NewBookmark(surahID, ayahNumber, "", s.clock.Now())
	env.Bookmarks = append([]entities.Bookmark{b}, env.Bookmarks...)
	s.records.save(userID, env)
	return true, nil
}

// IsBookmarked reports whether surahID:ayahNumber is bookmarked by userID.
func (s *BookmarkStore) IsBookmarked(ctx context.Context, userID string, surahID, ayahNumber int) bool {
	s.records.mu.Lock()
	defer s.records.mu.Unlock()
	return indexOfAyah(s.records.load(ctx, userID).Bookmarks, surahID, ayahNumber) >= 0
}

func indexOfAyah(bookmarks []entities.Bookmark, surahID, ayahNumber int) int {
	return slices.IndexFunc(bookmarks, func(b entities.Bookmark) bool {
		return b.SurahID == surahID && b.AyahNumber == ayahNumber
	})
}

func validateAyahRef(surahID, ayahNumber int) error {
	if surahID < 1 || surahID > entities.TotalSurahs || ayahNumber < 1 {
		return fmt.Errorf("%w: %d:%d", ErrInvalidAyahRef, surahID, ayahNumber)
	}
	return nil
}
