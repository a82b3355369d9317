package entities

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	ErrInvalidGoal     = errors.New("invalid daily goal")
	ErrInvalidFontSize = errors.New("invalid font size")
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrInvalidTime     = errors.New("invalid reminder time")
)

// GoalType is the unit a daily goal is measured in.
type GoalType string

const (
	GoalMinutes GoalType = "minutes"
	GoalAyahs   GoalType = "ayahs"
	GoalPages   GoalType = "pages"
)

// GoalPresets are the values offered when choosing a goal.
var GoalPresets = map[GoalType][]int{
	GoalMinutes: {5, 10, 15, 20, 30, 45, 60},
	GoalAyahs:   {5, 10, 20, 30, 50, 100},
	GoalPages:   {1, 2, 3, 5, 10},
}

// DailyGoal is the user-configured target for one day of reading.
type DailyGoal struct {
	Type  GoalType `json:"type"`
	Value int      `json:"value"`
}

// Validate checks the goal type and that the value is positive.
func (g DailyGoal) Validate() error {
	switch g.Type {
	case GoalMinutes, GoalAyahs, GoalPages:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidGoal, g.Type)
	}
	if g.Value <= 0 {
		return fmt.Errorf("%w: value must be positive", ErrInvalidGoal)
	}
	return nil
}

// Current returns today's amount in the goal's unit.
func (g DailyGoal) Current(p ProgressRecord) int {
	switch g.Type {
	case GoalMinutes:
		return p.DailyReadingSeconds / 60
	case GoalPages:
		return p.DailyAyahsRead / AyahsPerPage
	default:
		return p.DailyAyahsRead
	}
}

// Percent returns today's completion of the goal, capped at 100.
func (g DailyGoal) Percent(p ProgressRecord) float64 {
	value := g.Value
	if value <= 0 {
		value = DefaultPreferences().DailyGoal.Value
	}
	return min(float64(g.Current(p))/float64(value)*100, 100)
}

// FontSize is the reading text size.
type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
	FontXLarge FontSize = "xlarge"
)

var (
	arabicFontPoints      = map[FontSize]int{FontSmall: 24, FontMedium: 30, FontLarge: 38, FontXLarge: 46}
	translationFontPoints = map[FontSize]int{FontSmall: 14, FontMedium: 17, FontLarge: 20, FontXLarge: 24}
)

// Points returns the arabic and translation text sizes for the font size.
func (f FontSize) Points() (arabic, translation int) {
	a, ok := arabicFontPoints[f]
	if !ok {
		return arabicFontPoints[FontMedium], translationFontPoints[FontMedium]
	}
	return a, translationFontPoints[f]
}

func (f FontSize) Validate() error {
	if _, ok := arabicFontPoints[f]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidFontSize, f)
	}
	return nil
}

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Validate() error {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidTheme, t)
}

var reminderTimeRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ParseReminderTime parses "HH:MM" into hour and minute.
func ParseReminderTime(s string) (hour, minute int, err error) {
	m := reminderTimeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

// UserPreferences stores reading preferences of one identity.
type UserPreferences struct {
	DailyGoal            DailyGoal `json:"dailyGoal"`
	ReminderTime         string    `json:"reminderTime"` // "HH:MM" in Timezone
	ReminderEnabled      bool      `json:"reminderEnabled"`
	FontSize             FontSize  `json:"fontSize"`
	Theme                Theme     `json:"theme"`
	ShowTranslation      bool      `json:"showTranslation"`
	PreferredTranslation string    `json:"preferredTranslation"`
	PreferredReciter     string    `json:"preferredReciter"`
	Timezone             string    `json:"timezone"`
}

// DefaultPreferences returns the preferences a new identity starts with.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		DailyGoal:            DailyGoal{Type: GoalMinutes, Value: 10},
		ReminderTime:         "08:00",
		ReminderEnabled:      true,
		FontSize:             FontMedium,
		Theme:                ThemeLight,
		ShowTranslation:      true,
		PreferredTranslation: "en.sahih",
		PreferredReciter:     "mishary_rashid",
		Timezone:             "UTC",
	}
}

// Validate checks every enumerated field.
func (p UserPreferences) Validate() error {
	if err := p.DailyGoal.Validate(); err != nil {
		return err
	}
	if err := p.FontSize.Validate(); err != nil {
		return err
	}
	if err := p.Theme.Validate(); err != nil {
		return err
	}
	if _, _, err := ParseReminderTime(p.ReminderTime); err != nil {
		return err
	}
	if _, err := ParseTimezoneLocation(p.Timezone); err != nil {
		return err
	}
	return nil
}

// PreferencesPatch is a partial update of UserPreferences.
// Nil fields are left untouched.
type PreferencesPatch struct {
	DailyGoal            *DailyGoal `json:"dailyGoal,omitempty"`
	ReminderTime         *string    `json:"reminderTime,omitempty"`
	ReminderEnabled      *bool      `json:"reminderEnabled,omitempty"`
	FontSize             *FontSize  `json:"fontSize,omitempty"`
	Theme                *Theme     `json:"theme,omitempty"`
	ShowTranslation      *bool      `json:"showTranslation,omitempty"`
	PreferredTranslation *string    `json:"preferredTranslation,omitempty"`
	PreferredReciter     *string    `json:"preferredReciter,omitempty"`
	Timezone             *string    `json:"timezone,omitempty"`
}

// Merge returns p with every non-nil patch field applied.
func (p UserPreferences) Merge(patch PreferencesPatch) UserPreferences {
	if patch.DailyGoal != nil {
		p.DailyGoal = *patch.DailyGoal
	}
	if patch.ReminderTime != nil {
		p.ReminderTime = *patch.ReminderTime
	}
	if patch.ReminderEnabled != nil {
		p.ReminderEnabled = *patch.ReminderEnabled
	}
	if patch.FontSize != nil {
		p.FontSize = *patch.FontSize
	}
	if patch.Theme != nil {
		p.Theme = *patch.Theme
	}
	if patch.ShowTranslation != nil {
		p.ShowTranslation = *patch.ShowTranslation
	}
	if patch.PreferredTranslation != nil {
		p.PreferredTranslation = *patch.PreferredTranslation
	}
	if patch.PreferredReciter != nil {
		p.PreferredReciter = *patch.PreferredReciter
	}
	if patch.Timezone != nil {
		p.Timezone = *patch.Timezone
	}
	return p
}
