package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

// SendReminder delivers a daily reminder and deletes the previous one so a
// chat holds at most one unread reminder.
func (h *Handler) SendReminder(_ context.Context, chatID int64, payload entities.ReminderPayload) error {
	msg := newHTMLMessage(chatID, renderReminder(payload))
	msg.ReplyMarkup = buildReminderKeyboard()

	sent, err := h.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	if h.reminders == nil {
		return nil
	}

	prev, hadPrev := h.reminders.UpsertAndGetPrev(chatID, sent.MessageID)
	if hadPrev && prev.MessageID != 0 {
		if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, prev.MessageID)); err != nil {
			h.logger.Debug("failed to delete previous reminder",
				zap.Int64("chat_id", chatID),
				zap.Int("message_id", prev.MessageID),
				zap.Error(err),
			)
		}
	}

	return nil
}
