package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/service"
)

// maxMessageLen stays under Telegram's 4096 character limit with room for markup.
const maxMessageLen = 3800

// renderAyah renders the verse a reading view points at.
func renderAyah(v service.ReadingView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>%s</b> · %d/%d\n\n", esc(v.Surah.EnglishName), v.Position, v.AyahCount)
	fmt.Fprintf(&b, "%s%s ﴿%d﴾\n", rlm, esc(v.Ayah.TextArabic), v.Ayah.AyahNumber)
	if v.ShowTranslation && v.Ayah.TextTranslation != "" {
		fmt.Fprintf(&b, "\n<i>%s</i>\n", esc(v.Ayah.TextTranslation))
	}
	if v.Bookmarked {
		b.WriteString("\n🔖")
	}

	return b.String()
}

// renderJuz renders as many verses of a juz as fit in one message.
func renderJuz(id int, ayahs []entities.Ayah, showTranslation bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Juz %d</b> · %d ayahs\n", id, len(ayahs))

	surahID := 0
	for i, a := range ayahs {
		var verse strings.Builder
		if a.SurahID != surahID {
			surahID = a.SurahID
			fmt.Fprintf(&verse, "\n<b>%s</b>\n", esc(a.SurahEnglishName))
		}
		fmt.Fprintf(&verse, "%s%s ﴿%d﴾\n", rlm, esc(a.TextArabic), a.AyahNumber)
		if showTranslation && a.TextTranslation != "" {
			fmt.Fprintf(&verse, "<i>%s</i>\n", esc(a.TextTranslation))
		}

		if b.Len()+verse.Len() > maxMessageLen {
			fmt.Fprintf(&b, "\n… %d more. Continue with /read %d.", len(ayahs)-i, a.SurahID)
			break
		}
		b.WriteString(verse.String())
	}

	return b.String()
}

// renderProgress renders the dashboard.
func renderProgress(s service.Summary) string {
	return fmt.Sprintf(
		"<b>📊 Your progress</b>\n\n"+
			"⭐ <b>Level %d</b> · %d XP\n"+
			"%s %d/%d XP\n\n"+
			"🎯 <b>Today's goal:</b> %d/%d %s (%.0f%%)\n"+
			"%s\n\n"+
			"🔥 <b>Streak:</b> %d days (best %d)\n"+
			"📖 <b>Ayahs read:</b> %d today, %d total\n"+
			"⏱ <b>Reading time:</b> %s today, %s total\n"+
			"🕌 <b>Quran completed:</b> %.1f%%",
		s.Level.Level, s.XP,
		buildProgressBar(s.XPInLevel, s.XPPerLevel, 10), s.XPInLevel, s.XPPerLevel,
		s.Goal.Current, s.Goal.Target, goalUnit(s.Goal.Type, s.Goal.Target), s.Goal.Percent,
		buildProgressBar(int(s.Goal.Percent), 100, 10),
		s.CurrentStreak, s.LongestStreak,
		s.DailyAyahsRead, s.TotalAyahsRead,
		formatDuration(seconds(s.DailyReadingSeconds)), formatDuration(seconds(s.TotalReadingSeconds)),
		s.CompletionPercentage,
	)
}

// renderStreak renders the streak with the next milestone.
func renderStreak(s entities.StreakRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>🔥 %d-day streak</b>\n\n", s.CurrentStreak)
	fmt.Fprintf(&b, "🏆 Longest: %d days\n", s.LongestStreak)
	if s.LastReadDate != nil {
		fmt.Fprintf(&b, "📅 Last read: %s\n", s.LastReadDate)
	}
	if next := s.NextMilestone(); next > 0 {
		fmt.Fprintf(&b, "🎯 Next milestone: %d days (%d to go)\n", next, next-s.CurrentStreak)
	}
	if s.ReachedMilestone() {
		b.WriteString("\n🎉 You reached a milestone. Keep going!")
	}
	if s.CurrentStreak == 0 {
		b.WriteString("\nRead one ayah today to start a new streak: /read")
	}

	return b.String()
}

// renderSettings renders the preferences screen.
func renderSettings(p entities.UserPreferences, reciter, translation string) string {
	reminder := formatBool(false)
	if p.ReminderEnabled {
		reminder = fmt.Sprintf("%s at %s", formatBool(true), p.ReminderTime)
	}

	return fmt.Sprintf(
		"<b>⚙️ Settings</b>\n\n"+
			"🎯 <b>Daily goal:</b> %d %s\n"+
			"🎙 <b>Reciter:</b> %s\n"+
			"🌐 <b>Translation:</b> %s\n"+
			"🔤 <b>Show translation:</b> %s\n"+
			"🔠 <b>Font size:</b> %s\n"+
			"🕰 <b>Timezone:</b> %s\n"+
			"🔔 <b>Reminder:</b> %s\n\n"+
			"Choose a goal below, or use /goal, /reciter, /translation, /fontsize, /timezone and /reminder.",
		p.DailyGoal.Value, goalUnit(p.DailyGoal.Type, p.DailyGoal.Value),
		esc(reciter),
		esc(translation),
		formatBool(p.ShowTranslation),
		p.FontSize,
		esc(p.Timezone),
		reminder,
	)
}

// renderBookmarks renders the bookmark list, newest first.
func renderBookmarks(bookmarks []entities.Bookmark) string {
	var b strings.Builder
	b.WriteString("<b>🔖 Bookmarks</b>\n\n")
	for _, bm := range bookmarks {
		fmt.Fprintf(&b, "• Surah %d, ayah %d", bm.SurahID, bm.AyahNumber)
		if bm.Note != "" {
			fmt.Fprintf(&b, " — %s", esc(bm.Note))
		}
		b.WriteString("\n")
	}
	return b.String()
}

type catalogItem struct {
	ID      string
	Name    string
	Premium bool
}

// renderCatalog lists reciters or translations with the current one marked.
func renderCatalog(title string, items []catalogItem, current string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", title)
	for _, it := range items {
		mark := "•"
		if it.ID == current {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s <code>%s</code> %s", mark, esc(it.ID), esc(it.Name))
		if it.Premium {
			b.WriteString(" ⭐")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// buildProgressBar creates a text progress bar.
func buildProgressBar(current, total, length int) string {
	if total <= 0 {
		return strings.Repeat("░", length)
	}

	filled := current * length / total
	filled = max(0, min(filled, length))

	return strings.Repeat("▓", filled) + strings.Repeat("░", length-filled)
}

// renderFinished reports the end of a session, naming the surah when one was completed.
func renderFinished(surahName string, elapsed time.Duration) string {
	if surahName == "" {
		return fmt.Sprintf(msgSessionFinished, formatDuration(elapsed))
	}
	return fmt.Sprintf(msgSurahFinished, esc(surahName), formatDuration(elapsed))
}

// renderReminder renders a reminder notification.
func renderReminder(p entities.ReminderPayload) string {
	text := fmt.Sprintf("<b>%s</b>\n\n%s", esc(p.Title), esc(p.Body))
	if p.GoalPercent > 0 {
		text += fmt.Sprintf("\n\n🎯 Today's goal: %.0f%%", p.GoalPercent)
	}
	return text
}
