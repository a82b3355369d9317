package telegram

import (
	"context"
)

func (h *Handler) handleProgress(userID string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		msg := newHTMLMessage(chatID, renderProgress(h.dashboard.Summary(ctx, userID)))
		msg.ReplyMarkup = buildProgressKeyboard()
		return h.send(msg)
	}
}

func (h *Handler) handleStreak(userID string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.send(newHTMLMessage(chatID, renderStreak(h.streak.Streak(ctx, userID))))
	}
}
