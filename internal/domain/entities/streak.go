package entities

import "slices"

// StreakMilestones are the streak lengths celebrated by the app.
var StreakMilestones = []int{7, 14, 30, 60, 90, 180, 365, 500, 1000}

// StreakRecord tracks consecutive reading days of one identity.
type StreakRecord struct {
	CurrentStreak int    `json:"currentStreak"` // consecutive days ending at LastReadDate
	LongestStreak int    `json:"longestStreak"` // historical maximum of CurrentStreak
	LastReadDate  *Date  `json:"lastReadDate"`  // nil until the first activity
	History       []Date `json:"history"`       // distinct days with activity
}

// NewStreakRecord returns an empty streak.
func NewStreakRecord() StreakRecord {
	return StreakRecord{History: []Date{}}
}

// RegisterActivity counts today towards the streak.
//
// A day counts at most once. A gap of exactly one calendar day continues the
// streak, a larger gap (or no prior activity) restarts it at 1. It reports
// whether the record changed.
func (s *StreakRecord) RegisterActivity(today Date) (bool, error) {
	if s.LastReadDate != nil && *s.LastReadDate == today {
		return false, nil
	}

	next := 1
	if s.LastReadDate != nil {
		gap, err := today.DaysSince(*s.LastReadDate)
		if err != nil {
			return false, err
		}
		if gap < 0 {
			// Clock moved backwards; keep the later day.
			return false, nil
		}
		if gap == 1 {
			next = s.CurrentStreak + 1
		}
	}

	s.CurrentStreak = next
	s.LongestStreak = max(s.LongestStreak, s.CurrentStreak)
	day := today
	s.LastReadDate = &day
	if !slices.Contains(s.History, today) {
		s.History = append(s.History, today)
	}

	return true, nil
}

// Reset zeroes the streak and clears the history.
func (s *StreakRecord) Reset() {
	*s = NewStreakRecord()
}

// NextMilestone returns the first milestone above the current streak, or 0
// when every milestone has been passed.
func (s *StreakRecord) NextMilestone() int {
	for _, m := range StreakMilestones {
		if m > s.CurrentStreak {
			return m
		}
	}
	return 0
}

// ReachedMilestone reports whether the current streak sits exactly on a milestone.
func (s *StreakRecord) ReachedMilestone() bool {
	return slices.Contains(StreakMilestones, s.CurrentStreak)
}
