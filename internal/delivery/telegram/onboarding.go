package telegram

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

// handleStart greets the user and offers the daily goal presets.
func (h *Handler) handleStart(userID string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		name := "friend"
		if u := h.preferences.EnsureUser(ctx, userID, "", ""); u != nil && u.Name != "" {
			name = u.Name
		}

		msg := newHTMLMessage(chatID, fmt.Sprintf(msgWelcome, esc(name)))
		msg.ReplyMarkup = buildGoalKeyboard()
		return h.send(msg)
	}
}

// applyGoalChoice stores a goal preset picked from the keyboard.
func (h *Handler) applyGoalChoice(ctx context.Context, userID string, cd callbackData) (string, error) {
	value, err := strconv.Atoi(cd.param(1))
	if err != nil {
		return "", fmt.Errorf("goal callback %q: %w", cd.Raw, err)
	}

	goal := entities.DailyGoal{Type: entities.GoalType(cd.param(0)), Value: value}
	if _, err := h.preferences.SetDailyGoal(ctx, userID, goal); err != nil {
		return "", err
	}

	h.logger.Info("daily goal chosen",
		zap.String("user_id", userID),
		zap.String("type", string(goal.Type)),
		zap.Int("value", goal.Value),
	)

	return fmt.Sprintf(
		"🎯 Your daily goal is <b>%d %s</b>.\n\nSend /read 1 to start with Al-Fatiha, or /read N for any surah.",
		value, goalUnit(goal.Type, value),
	), nil
}
