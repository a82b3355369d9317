package telegram

import (
	"strings"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

// Callback action constants.
const (
	actionRead     = "read"
	actionGoal     = "goal"
	actionReminder = "reminder"
	actionBookmark = "bookmark"
	actionProgress = "progress"
	actionSettings = "settings"
)

// Reading sub-actions.
const (
	readNext     = "next"
	readPrev     = "prev"
	readBookmark = "bookmark"
	readAudio    = "audio"
	readStop     = "stop"
	readResume   = "resume"
)

// Reminder sub-actions.
const (
	reminderOn  = "on"
	reminderOff = "off"
)

// Bookmark sub-actions.
const (
	bookmarkRemove = "rm"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// param returns the i-th parameter or "".
func (cd callbackData) param(i int) string {
	if i < len(cd.Params) {
		return cd.Params[i]
	}
	return ""
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

func buildReadCallback(sub string) string {
	return callbackData{Action: actionRead, Params: []string{sub}}.encode()
}

// buildGoalCallback builds callback data for picking a daily goal preset.
func buildGoalCallback(goalType entities.GoalType, value string) string {
	return callbackData{Action: actionGoal, Params: []string{string(goalType), value}}.encode()
}

func buildReminderCallback(sub string) string {
	return callbackData{Action: actionReminder, Params: []string{sub}}.encode()
}

func buildBookmarkRemoveCallback(bookmarkID string) string {
	return callbackData{Action: actionBookmark, Params: []string{bookmarkRemove, bookmarkID}}.encode()
}

func buildProgressCallback() string {
	return actionProgress
}

func buildSettingsCallback() string {
	return actionSettings
}
