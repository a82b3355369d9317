package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.answer(cb, "")
		return
	}

	chatID := cb.Message.Chat.ID
	userID := userKey(cb.From.ID)
	cd := decodeCallback(cb.Data)

	var (
		notice string
		err    error
	)

	switch cd.Action {
	case actionRead:
		notice, err = h.handleReadCallback(ctx, cb, userID, cd)
	case actionGoal:
		var text string
		if text, err = h.applyGoalChoice(ctx, userID, cd); err == nil {
			h.edit(cb, text, nil)
		}
	case actionReminder:
		err = h.setReminder(ctx, chatID, userID, cd.param(0))
	case actionBookmark:
		notice, err = h.handleBookmarkCallback(ctx, cb, userID, cd)
	case actionProgress:
		kb := buildProgressKeyboard()
		h.edit(cb, renderProgress(h.dashboard.Summary(ctx, userID)), &kb)
	case actionSettings:
		err = h.handleSettings(userID)(ctx, chatID)
	default:
		h.logger.Debug("unknown callback", zap.String("data", cb.Data))
	}

	if err != nil {
		var uerr *userError
		switch {
		case errors.As(err, &uerr):
			notice = uerr.message
		default:
			h.logger.Error("callback failed",
				zap.Int64("chat_id", chatID),
				zap.String("data", cb.Data),
				zap.Error(err),
			)
			notice = userMessage(err)
		}
	}

	// Remove the user's "clock".
	h.answer(cb, notice)
}

func (h *Handler) handleReadCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, userID string, cd callbackData) (string, error) {
	chatID := cb.Message.Chat.ID

	var (
		view service.ReadingView
		err  error
	)

	switch cd.param(0) {
	case readNext:
		view, err = h.reading.Next(ctx, userID)
	case readPrev:
		view, err = h.reading.Previous(ctx, userID)
	case readResume:
		view, err = h.reading.Resume(ctx, userID)
		if errors.Is(err, service.ErrNoOpenSurah) {
			return "", reply(msgNothingToResume)
		}
		if err != nil {
			return "", err
		}
		return "", h.sendView(chatID, view)
	case readBookmark:
		if view, err = h.reading.Current(ctx, userID); err != nil {
			return "", err
		}
		added, err := h.bookmarks.Toggle(ctx, userID, view.Surah.ID, view.Ayah.AyahNumber)
		if err != nil {
			return "", err
		}
		view.Bookmarked = added
		h.editView(cb, view)
		if added {
			return msgBookmarkAdded, nil
		}
		return msgBookmarkDropped, nil
	case readAudio:
		if view, err = h.reading.Current(ctx, userID); err != nil {
			return "", err
		}
		return "", h.sendAudio(chatID, view)
	case readStop:
		elapsed, ok := h.reading.Close(ctx, userID)
		if !ok {
			return msgNoSession, nil
		}
		h.edit(cb, renderFinished("", elapsed), nil)
		return "", nil
	default:
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if view.Finished {
		h.edit(cb, renderFinished(view.Surah.EnglishName, view.Elapsed), nil)
		return "", nil
	}

	h.editView(cb, view)
	return "", nil
}

func (h *Handler) handleBookmarkCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, userID string, cd callbackData) (string, error) {
	if cd.param(0) != bookmarkRemove {
		return "", nil
	}
	if err := h.bookmarks.Remove(ctx, userID, cd.param(1)); err != nil && !errors.Is(err, service.ErrBookmarkNotFound) {
		return "", err
	}

	bookmarks := h.bookmarks.List(ctx, userID)
	if len(bookmarks) == 0 {
		h.edit(cb, msgNoBookmarks, nil)
	} else {
		kb := buildBookmarksKeyboard(bookmarks)
		h.edit(cb, renderBookmarks(bookmarks), &kb)
	}
	return msgBookmarkRemoved, nil
}

func (h *Handler) editView(cb *tgbotapi.CallbackQuery, v service.ReadingView) {
	kb := buildReadingKeyboard(v)
	h.edit(cb, renderAyah(v), &kb)
}

func (h *Handler) edit(cb *tgbotapi.CallbackQuery, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		edit.ReplyMarkup = kb
	}
	_ = h.send(edit)
}

func (h *Handler) answer(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}
