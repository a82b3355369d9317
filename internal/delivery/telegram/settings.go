package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

func (h *Handler) handleSettings(userID string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		text, prefs := h.renderSettingsFor(ctx, userID)

		msg := newHTMLMessage(chatID, text)
		msg.ReplyMarkup = buildSettingsKeyboard(prefs)
		return h.send(msg)
	}
}

func (h *Handler) renderSettingsFor(ctx context.Context, userID string) (string, entities.UserPreferences) {
	prefs := h.preferences.Get(ctx, userID)

	reciter, translation := prefs.PreferredReciter, prefs.PreferredTranslation
	for _, r := range h.catalog.Reciters() {
		if r.ID == prefs.PreferredReciter {
			reciter = r.Name
		}
	}
	for _, t := range h.catalog.Translations() {
		if t.ID == prefs.PreferredTranslation {
			translation = t.Name
		}
	}

	return renderSettings(prefs, reciter, translation), prefs
}

// handleGoal sets the daily goal from "/goal ayahs 20".
func (h *Handler) handleGoal(userID, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		fields := strings.Fields(args)
		if len(fields) != 2 {
			return reply(msgUseGoal)
		}
		value, err := strconv.Atoi(fields[1])
		if err != nil {
			return reply(msgUseGoal)
		}

		goal := entities.DailyGoal{Type: entities.GoalType(strings.ToLower(fields[0])), Value: value}
		if _, err := h.preferences.SetDailyGoal(ctx, userID, goal); err != nil {
			return err
		}
		return h.send(newHTMLMessage(chatID, fmt.Sprintf("🎯 Daily goal: <b>%d %s</b>", value, goalUnit(goal.Type, value))))
	}
}

// handleReciter lists reciters, or selects one by id.
func (h *Handler) handleReciter(userID, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		id := strings.TrimSpace(args)
		if id == "" {
			var items []catalogItem
			for _, r := range h.catalog.Reciters() {
				items = append(items, catalogItem{ID: r.ID, Name: r.Name, Premium: r.IsPremium})
			}
			current := h.preferences.Get(ctx, userID).PreferredReciter
			return h.send(newHTMLMessage(chatID, renderCatalog("🎙 Reciters", items, current)+"\nUse: /reciter ID"))
		}

		if _, err := h.preferences.SetReciter(ctx, userID, id); err != nil {
			return err
		}
		h.sendText(chatID, msgPreferenceSaved)
		return nil
	}
}

// handleTranslation lists translations, or selects one by id.
func (h *Handler) handleTranslation(userID, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		id := strings.TrimSpace(args)
		if id == "" {
			var items []catalogItem
			for _, t := range h.catalog.Translations() {
				items = append(items, catalogItem{ID: t.ID, Name: t.Name, Premium: t.IsPremium})
			}
			current := h.preferences.Get(ctx, userID).PreferredTranslation
			return h.send(newHTMLMessage(chatID, renderCatalog("🌐 Translations", items, current)+"\nUse: /translation ID"))
		}

		if _, err := h.preferences.SetTranslation(ctx, userID, id); err != nil {
			return err
		}
		h.sendText(chatID, msgPreferenceSaved)
		return nil
	}
}

func (h *Handler) handleFontSize(userID, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		size := strings.ToLower(strings.TrimSpace(args))
		if size == "" {
			return reply(msgUseFontSize)
		}
		if _, err := h.preferences.SetFontSize(ctx, userID, entities.FontSize(size)); err != nil {
			return err
		}
		h.sendText(chatID, msgPreferenceSaved)
		return nil
	}
}

func (h *Handler) handleTimezone(userID, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		tz := strings.TrimSpace(args)
		if tz == "" {
			return reply(msgUseTimezone)
		}
		if _, err := h.preferences.SetTimezone(ctx, userID, tz); err != nil {
			return err
		}
		h.sendText(chatID, msgPreferenceSaved)
		return nil
	}
}

// handleReminder sets the reminder time from "/reminder 07:30" or turns it off.
func (h *Handler) handleReminder(userID, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		arg := strings.ToLower(strings.TrimSpace(args))
		if arg == "" {
			return reply(msgUseReminder)
		}
		return h.setReminder(ctx, chatID, userID, arg)
	}
}

// setReminder applies "off", "on" (keeping the stored time) or an HH:MM time.
func (h *Handler) setReminder(ctx context.Context, chatID int64, userID, arg string) error {
	prefs := h.preferences.Get(ctx, userID)

	switch arg {
	case reminderOff:
		if _, err := h.preferences.SetReminder(ctx, userID, prefs.ReminderTime, false); err != nil {
			return err
		}
		h.sendText(chatID, msgReminderOff)
		return nil
	case reminderOn:
		arg = prefs.ReminderTime
	}

	prefs, err := h.preferences.SetReminder(ctx, userID, arg, true)
	if err != nil {
		return err
	}
	h.sendText(chatID, fmt.Sprintf(msgReminderOn, prefs.ReminderTime, esc(prefs.Timezone)))
	return nil
}
