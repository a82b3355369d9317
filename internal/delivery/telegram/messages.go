// messages.go contains message templates and error texts for Telegram.

package telegram

import (
	"errors"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
)

const (
	msgWelcome = "<b>Assalamu alaikum, %s!</b>\n\n" +
		"Tilawah Daily helps you build a daily habit of reading the Quran.\n\n" +
		"Pick a daily goal to begin. You can change it any time in /settings."
	msgHelp = "<b>Commands</b>\n\n" +
		"/read N — read surah N, or continue where you left off\n" +
		"/juz N — read juz N\n" +
		"/progress — XP, level and today's goal\n" +
		"/streak — your reading streak\n" +
		"/bookmarks — saved verses\n" +
		"/settings — your preferences\n" +
		"/goal minutes|ayahs|pages N — set the daily goal\n" +
		"/reciter ID — choose the reciter\n" +
		"/translation ID — choose the translation\n" +
		"/fontsize small|medium|large|xlarge\n" +
		"/timezone Europe/Moscow or UTC+3\n" +
		"/reminder HH:MM or /reminder off\n" +
		"/stop — finish the reading session"
	msgUnknownCommand   = "Unknown command. Send /help to see what I can do."
	msgInternalError    = "Something went wrong. Please try again later."
	msgUseRead          = "Use: /read 36 (surah number from 1 to 114)."
	msgUseJuz           = "Use: /juz 30 (juz number from 1 to 30)."
	msgUseGoal          = "Use: /goal minutes 10, /goal ayahs 20 or /goal pages 2."
	msgUseFontSize      = "Use: /fontsize small, medium, large or xlarge."
	msgUseTimezone      = "Use: /timezone Europe/Moscow or /timezone UTC+3."
	msgUseReminder      = "Use: /reminder 08:00 or /reminder off."
	msgNothingToResume  = "You have not started reading yet. Use /read 1 to open Al-Fatiha."
	msgNoOpenSurah      = "No surah is open. Use /read to continue reading."
	msgNoSession        = "No reading session is running."
	msgContentFailed    = "Could not load the verses. Please try again later."
	msgNoBookmarks      = "You have no bookmarks yet. Tap 🔖 while reading to save a verse."
	msgBookmarkRemoved  = "Bookmark removed."
	msgBookmarkAdded    = "Bookmarked 🔖"
	msgBookmarkDropped  = "Bookmark removed"
	msgPremiumRequired  = "This option is part of Tilawah Premium."
	msgUnknownReciter   = "Unknown reciter. Send /reciter to see the list."
	msgUnknownTransl    = "Unknown translation. Send /translation to see the list."
	msgInvalidGoal      = "The goal must be minutes, ayahs or pages with a positive number."
	msgInvalidFontSize  = "Font size must be small, medium, large or xlarge."
	msgInvalidTimezone  = "Unknown timezone. Try an IANA name like Asia/Karachi or an offset like UTC+5."
	msgInvalidTime      = "Reminder time must look like 08:00."
	msgReminderOff      = "Daily reminder turned off."
	msgReminderOn       = "Daily reminder set for <b>%s</b> (%s)."
	msgPreferenceSaved  = "Saved ✅"
	msgSessionFinished  = "Session finished. You read for <b>%s</b>."
	msgSurahFinished    = "🎉 You finished <b>%s</b>!\nSession time: <b>%s</b>."
	msgReminderReadNow  = "📖 Read now"
	msgReminderSettings = "⚙️ Reminder settings"
)

// userError carries a message the chat sees instead of the generic one.
type userError struct {
	message string
}

func (e *userError) Error() string { return e.message }

func reply(message string) error {
	return &userError{message: message}
}

// userMessage picks the chat answer for a service error.
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNoOpenSurah):
		return msgNoOpenSurah
	case errors.Is(err, service.ErrSurahUnavailable):
		return msgContentFailed
	case errors.Is(err, service.ErrPremiumRequired):
		return msgPremiumRequired
	case errors.Is(err, service.ErrUnknownReciter):
		return msgUnknownReciter
	case errors.Is(err, service.ErrUnknownTranslation):
		return msgUnknownTransl
	case errors.Is(err, service.ErrBookmarkNotFound):
		return msgBookmarkRemoved
	case errors.Is(err, entities.ErrInvalidGoal):
		return msgInvalidGoal
	case errors.Is(err, entities.ErrInvalidFontSize):
		return msgInvalidFontSize
	case errors.Is(err, entities.ErrInvalidTimezone):
		return msgInvalidTimezone
	case errors.Is(err, entities.ErrInvalidTime):
		return msgInvalidTime
	default:
		return msgInternalError
	}
}
