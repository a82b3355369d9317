package telegram

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const rlm = "\u200F"

// userKey is the identity of a Telegram user in the stores.
func userKey(telegramID int64) string {
	return strconv.FormatInt(telegramID, 10)
}

// ChatForUser resolves the private chat of a Telegram identity. Other
// identities have no chat.
func ChatForUser(userID string) (int64, bool) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

func esc(s string) string {
	return html.EscapeString(s)
}

// parseNumberArg parses a single number argument within [lo, hi].
func parseNumberArg(args string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

// formatDuration renders a reading time like "1h 05m" or "3m 20s".
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func formatBool(b bool) string {
	if b {
		return "on ✅"
	}
	return "off ❌"
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
