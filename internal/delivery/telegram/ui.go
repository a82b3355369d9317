package telegram

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
)

// buildReadingKeyboard builds the controls under a verse.
func buildReadingKeyboard(v service.ReadingView) tgbotapi.InlineKeyboardMarkup {
	var nav []tgbotapi.InlineKeyboardButton
	if v.Position > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Previous", buildReadCallback(readPrev)))
	}
	if v.Position < v.AyahCount {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ▶️", buildReadCallback(readNext)))
	} else {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("✅ Finish surah", buildReadCallback(readNext)))
	}

	bookmark := "🔖 Bookmark"
	if v.Bookmarked {
		bookmark = "❌ Remove bookmark"
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		nav,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(bookmark, buildReadCallback(readBookmark)),
			tgbotapi.NewInlineKeyboardButtonData("🔊 Listen", buildReadCallback(readAudio)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏹ Stop", buildReadCallback(readStop)),
		),
	)
}

// buildGoalKeyboard offers the goal presets, one row per goal type.
func buildGoalKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, goalType := range []entities.GoalType{entities.GoalMinutes, entities.GoalAyahs, entities.GoalPages} {
		var row []tgbotapi.InlineKeyboardButton
		for _, v := range entities.GoalPresets[goalType] {
			label := fmt.Sprintf("%d %s", v, goalUnit(goalType, v))
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, buildGoalCallback(goalType, strconv.Itoa(v))))
			if len(row) == 4 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildProgressKeyboard builds keyboard for progress screen.
func buildProgressKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", buildProgressCallback()),
			tgbotapi.NewInlineKeyboardButtonData("📖 Continue reading", buildReadCallback(readResume)),
		),
	)
}

// buildSettingsKeyboard builds main settings keyboard.
func buildSettingsKeyboard(prefs entities.UserPreferences) tgbotapi.InlineKeyboardMarkup {
	reminder := tgbotapi.NewInlineKeyboardButtonData("🔕 Turn reminder off", buildReminderCallback(reminderOff))
	if !prefs.ReminderEnabled {
		reminder = tgbotapi.NewInlineKeyboardButtonData("🔔 Turn reminder on", buildReminderCallback(reminderOn))
	}

	rows := buildGoalKeyboard().InlineKeyboard
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(reminder),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 My progress", buildProgressCallback()),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildBookmarksKeyboard offers one remove button per bookmark.
func buildBookmarksKeyboard(bookmarks []entities.Bookmark) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(bookmarks))
	for _, b := range bookmarks {
		label := fmt.Sprintf("❌ %d:%d", b.SurahID, b.AyahNumber)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, buildBookmarkRemoveCallback(b.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildReminderKeyboard is attached to reminder notifications.
func buildReminderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(msgReminderReadNow, buildReadCallback(readResume)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(msgReminderSettings, buildSettingsCallback()),
		),
	)
}

func goalUnit(t entities.GoalType, n int) string {
	unit := string(t)
	switch {
	case t == entities.GoalMinutes:
		unit = "min"
	case n == 1:
		unit = unit[:len(unit)-1]
	}
	return unit
}
