package entities

import (
	"errors"
	"testing"
	"time"
)

func TestDailyGoalPercent(t *testing.T) {
	tests := []struct {
		name     string
		goal     DailyGoal
		progress ProgressRecord
		current  int
		percent  float64
	}{
		{
			name:     "minutes floors seconds",
			goal:     DailyGoal{Type: GoalMinutes, Value: 10},
			progress: ProgressRecord{DailyReadingSeconds: 299},
			current:  4,
			percent:  40,
		},
		{
			name:     "ayahs",
			goal:     DailyGoal{Type: GoalAyahs, Value: 20},
			progress: ProgressRecord{DailyAyahsRead: 5},
			current:  5,
			percent:  25,
		},
		{
			name:     "pages use fifteen ayahs per page",
			goal:     DailyGoal{Type: GoalPages, Value: 2},
			progress: ProgressRecord{DailyAyahsRead: 29},
			current:  1,
			percent:  50,
		},
		{
			name:     "capped at hundred",
			goal:     DailyGoal{Type: GoalAyahs, Value: 5},
			progress: ProgressRecord{DailyAyahsRead: 50},
			current:  50,
			percent:  100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.goal.Current(tt.progress); got != tt.current {
				t.Fatalf("current = %d, want %d", got, tt.current)
			}
			if got := tt.goal.Percent(tt.progress); got != tt.percent {
				t.Fatalf("percent = %v, want %v", got, tt.percent)
			}
		})
	}
}

func TestDailyGoalValidate(t *testing.T) {
	if err := (DailyGoal{Type: GoalPages, Value: 3}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (DailyGoal{Type: GoalPages, Value: 0}).Validate(); !errors.Is(err, ErrInvalidGoal) {
		t.Fatalf("expected ErrInvalidGoal for zero value, got %v", err)
	}
	if err := (DailyGoal{Type: "surahs", Value: 1}).Validate(); !errors.Is(err, ErrInvalidGoal) {
		t.Fatalf("expected ErrInvalidGoal for unknown type, got %v", err)
	}
}

func TestParseReminderTime(t *testing.T) {
	h, m, err := ParseReminderTime("07:45")
	if err != nil || h != 7 || m != 45 {
		t.Fatalf("ParseReminderTime(07:45) = %d, %d, %v", h, m, err)
	}

	for _, bad := range []string{"24:00", "7:45", "12:60", "noon", ""} {
		if _, _, err := ParseReminderTime(bad); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("ParseReminderTime(%q) err = %v, want ErrInvalidTime", bad, err)
		}
	}
}

func TestPreferencesMergeAndValidate(t *testing.T) {
	size := FontXLarge
	reciter := "abdul_basit"
	p := DefaultPreferences().Merge(PreferencesPatch{FontSize: &size, PreferredReciter: &reciter})

	if p.FontSize != FontXLarge || p.PreferredReciter != "abdul_basit" {
		t.Fatalf("merge did not apply: %+v", p)
	}
	if p.PreferredTranslation != "en.sahih" {
		t.Fatalf("untouched field changed: %q", p.PreferredTranslation)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	bad := FontSize("huge")
	if err := p.Merge(PreferencesPatch{FontSize: &bad}).Validate(); !errors.Is(err, ErrInvalidFontSize) {
		t.Fatalf("expected ErrInvalidFontSize, got %v", err)
	}
}

func TestFontSizePoints(t *testing.T) {
	a, tr := FontLarge.Points()
	if a != 38 || tr != 20 {
		t.Fatalf("large = %d/%d, want 38/20", a, tr)
	}
	a, tr = FontSize("unknown").Points()
	if a != 30 || tr != 17 {
		t.Fatalf("fallback = %d/%d, want 30/17", a, tr)
	}
}

func TestParseTimezoneLocation(t *testing.T) {
	tests := []struct {
		tz     string
		offset int
	}{
		{"UTC", 0},
		{"UTC+3", 3 * 3600},
		{"+5:30", 5*3600 + 30*60},
		{"-03:30", -(3*3600 + 30*60)},
	}
	for _, tt := range tests {
		loc, err := ParseTimezoneLocation(tt.tz)
		if err != nil {
			t.Fatalf("ParseTimezoneLocation(%q): %v", tt.tz, err)
		}
		_, off := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
		if off != tt.offset {
			t.Errorf("%q offset = %d, want %d", tt.tz, off, tt.offset)
		}
	}

	if _, err := ParseTimezoneLocation("Mars/Olympus"); !errors.Is(err, ErrInvalidTimezone) {
		t.Fatalf("expected ErrInvalidTimezone, got %v", err)
	}
}

func TestDateDaysSince(t *testing.T) {
	late := DateOf(time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC), time.UTC)
	early := DateOf(time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC), time.UTC)

	gap, err := early.DaysSince(late)
	if err != nil {
		t.Fatal(err)
	}
	if gap != 1 {
		t.Fatalf("gap = %d, want 1", gap)
	}

	if _, err := Date("2024-13-01").DaysSince(late); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	instant := time.Date(2024, 1, 1, 22, 30, 0, 0, time.UTC)
	loc := time.FixedZone("UTC+3", 3*3600)

	if got := DateOf(instant, loc); got != "2024-01-02" {
		t.Fatalf("DateOf in UTC+3 = %s, want 2024-01-02", got)
	}
}
