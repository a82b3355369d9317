package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
)

// handleRead opens surah N, or resumes the last read verse without an argument.
func (h *Handler) handleRead(userID, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		var (
			view service.ReadingView
			err  error
		)

		if strings.TrimSpace(args) == "" {
			view, err = h.reading.Resume(ctx, userID)
			if errors.Is(err, service.ErrNoOpenSurah) {
				return reply(msgNothingToResume)
			}
		} else {
			surahID, ok := parseNumberArg(args, 1, 114)
			if !ok {
				return reply(msgUseRead)
			}
			view, err = h.reading.Open(ctx, userID, surahID)
		}
		if err != nil {
			return err
		}

		return h.sendView(chatID, view)
	}
}

// handleJuz sends the verses of juz N.
func (h *Handler) handleJuz(userID, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		id, ok := parseNumberArg(args, 1, 30)
		if !ok {
			return reply(msgUseJuz)
		}

		ayahs, err := h.reading.Juz(ctx, userID, id)
		if err != nil {
			return err
		}

		prefs := h.preferences.Get(ctx, userID)
		return h.send(newHTMLMessage(chatID, renderJuz(id, ayahs, prefs.ShowTranslation)))
	}
}

// handleStop ends the reading session and reports its length.
func (h *Handler) handleStop(userID string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		elapsed, ok := h.reading.Close(ctx, userID)
		if !ok {
			return reply(msgNoSession)
		}
		return h.send(newHTMLMessage(chatID, renderFinished("", elapsed)))
	}
}

// handleBookmarks lists bookmarks with a remove button each.
func (h *Handler) handleBookmarks(userID string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		bookmarks := h.bookmarks.List(ctx, userID)
		if len(bookmarks) == 0 {
			return reply(msgNoBookmarks)
		}

		msg := newHTMLMessage(chatID, renderBookmarks(bookmarks))
		msg.ReplyMarkup = buildBookmarksKeyboard(bookmarks)
		return h.send(msg)
	}
}

// sendView sends a verse with its reading controls.
func (h *Handler) sendView(chatID int64, v service.ReadingView) error {
	msg := newHTMLMessage(chatID, renderAyah(v))
	msg.ReplyMarkup = buildReadingKeyboard(v)
	return h.send(msg)
}

// sendAudio sends the recitation of the current verse.
func (h *Handler) sendAudio(chatID int64, v service.ReadingView) error {
	if v.AudioURL == "" {
		return reply(msgContentFailed)
	}

	audio := tgbotapi.NewAudio(chatID, tgbotapi.FileURL(v.AudioURL))
	audio.Caption = fmt.Sprintf("%s %d:%d", v.Surah.EnglishName, v.Surah.ID, v.Ayah.AyahNumber)

	h.logger.Debug("sending verse audio",
		zap.Int64("chat_id", chatID),
		zap.String("url", v.AudioURL),
	)
	return h.send(audio)
}
