package entities

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid calendar date")

// Date is a calendar day in YYYY-MM-DD form. It carries no time of day and
// no location: callers decide which timezone "today" is computed in.
type Date string

// DateOf returns the calendar day t falls on in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return Date(t.In(loc).Format(dateLayout))
}

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date(s), nil
}

func (d Date) String() string {
	return string(d)
}

// Time returns midnight UTC of the day.
func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, string(d))
	}
	return t, nil
}

// DaysSince returns the number of whole calendar days from prev to d.
// 23:59 on one day and 00:01 on the next are one day apart.
func (d Date) DaysSince(prev Date) (int, error) {
	cur, err := d.Time()
	if err != nil {
		return 0, err
	}
	p, err := prev.Time()
	if err != nil {
		return 0, err
	}
	return int(cur.Sub(p).Hours() / 24), nil
}

// AddDays shifts the day by n calendar days.
func (d Date) AddDays(n int) Date {
	t, err := d.Time()
	if err != nil {
		return d
	}
	return Date(t.AddDate(0, 0, n).Format(dateLayout))
}
