package entities

// Whole-Quran constants used for completion and goal arithmetic.
const (
	TotalSurahs  = 114
	TotalAyahs   = 6236
	TotalJuzs    = 30
	TotalPages   = 604
	AyahsPerPage = 15
)

// ProgressRecord stores cumulative and daily reading counters of one identity.
type ProgressRecord struct {
	TotalAyahsRead       int     `json:"totalAyahsRead"`       // lifetime ayahs, never decreases
	TotalReadingSeconds  int     `json:"totalReadingSeconds"`  // lifetime seconds, never decreases
	DailyAyahsRead       int     `json:"dailyAyahsRead"`       // ayahs since LastTrackedDate became today
	DailyReadingSeconds  int     `json:"dailyReadingSeconds"`  // seconds since LastTrackedDate became today
	LastTrackedDate      Date    `json:"lastTrackedDate"`      // day the daily counters accumulate against
	CompletionPercentage float64 `json:"completionPercentage"` // cached whole-Quran completion, 0..100
	LastReadSurahID      int     `json:"lastReadSurahId"`
	LastReadAyahNumber   int     `json:"lastReadAyahNumber"`
}

// NewProgressRecord returns the zeroed record a new identity starts with.
func NewProgressRecord(today Date) ProgressRecord {
	return ProgressRecord{
		LastTrackedDate:    today,
		LastReadSurahID:    1,
		LastReadAyahNumber: 1,
	}
}

// ProgressDelta is a partial update of a ProgressRecord.
//
// DailyAyahsRead and DailyReadingSeconds are increments. Every non-nil
// pointer field replaces the stored value as is.
type ProgressDelta struct {
	DailyAyahsRead      int
	DailyReadingSeconds int

	TotalAyahsRead       *int
	TotalReadingSeconds  *int
	CompletionPercentage *float64
	LastReadSurahID      *int
	LastReadAyahNumber   *int
}

// Apply merges delta into the record as of today.
//
// When today differs from LastTrackedDate the previous daily counters are
// discarded and the increments start the new day. Totals are never derived
// from the daily counters: callers pass them explicitly.
func (p *ProgressRecord) Apply(delta ProgressDelta, today Date) {
	if p.LastTrackedDate != today {
		p.DailyAyahsRead = delta.DailyAyahsRead
		p.DailyReadingSeconds = delta.DailyReadingSeconds
		p.LastTrackedDate = today
	} else {
		p.DailyAyahsRead += delta.DailyAyahsRead
		p.DailyReadingSeconds += delta.DailyReadingSeconds
	}

	if delta.TotalAyahsRead != nil {
		p.TotalAyahsRead = *delta.TotalAyahsRead
	}
	if delta.TotalReadingSeconds != nil {
		p.TotalReadingSeconds = *delta.TotalReadingSeconds
	}
	if delta.CompletionPercentage != nil {
		p.CompletionPercentage = clampPercent(*delta.CompletionPercentage)
	}
	if delta.LastReadSurahID != nil {
		p.LastReadSurahID = *delta.LastReadSurahID
	}
	if delta.LastReadAyahNumber != nil {
		p.LastReadAyahNumber = *delta.LastReadAyahNumber
	}
}

// AsOf returns the record as seen on today: daily counters accumulated on an
// earlier day read as zero.
func (p ProgressRecord) AsOf(today Date) ProgressRecord {
	if p.LastTrackedDate != today {
		p.DailyAyahsRead = 0
		p.DailyReadingSeconds = 0
	}
	return p
}

// QuranCompletion estimates whole-Quran completion from lifetime ayahs read.
func QuranCompletion(totalAyahsRead int) float64 {
	return clampPercent(float64(totalAyahsRead) / TotalAyahs * 100)
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Int returns a pointer to v, for building deltas.
func Int(v int) *int {
	return &v
}

// Float returns a pointer to v, for building deltas.
func Float(v float64) *float64 {
	return &v
}
