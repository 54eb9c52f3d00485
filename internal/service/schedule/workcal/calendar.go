// Package workcal implements workday-calendar date arithmetic.
// A Calendar is built from immutable calendar-day reference data and answers
// workday-aware offset, duration, and normalization queries. All dates are
// calendar dates normalized to midnight UTC (see domain.DateOf).
package workcal

import (
	"errors"
	"time"

	"github.com/harwell-homes/schedcast-backend/internal/domain"
)

// ErrOutOfRange is returned when a date walk leaves the loaded calendar
// horizon. This indicates the caller loaded too narrow a range, not a
// user-correctable condition.
var ErrOutOfRange = errors.New("workcal: date outside loaded calendar range")

// Calendar indexes which dates of a loaded horizon are workdays.
type Calendar struct {
	workdays map[time.Time]bool
	min      time.Time
	max      time.Time
}

// New builds a Calendar from calendar-day entries. Dates need not be
// contiguous or sorted; duplicate dates keep the last entry.
func New(days []domain.CalendarDay) *Calendar {
	c := &Calendar{workdays: make(map[time.Time]bool, len(days))}
	for i, d := range days {
		date := domain.DateOf(d.Date)
		c.workdays[date] = d.IsWorkday
		if i == 0 || date.Before(c.min) {
			c.min = date
		}
		if i == 0 || date.After(c.max) {
			c.max = date
		}
	}
	return c
}

// IsWorkday reports whether date is flagged as a workday. Dates outside the
// loaded range are not workdays.
func (c *Calendar) IsWorkday(date time.Time) bool {
	return c.workdays[domain.DateOf(date)]
}

// Covers reports whether date falls inside the loaded horizon.
func (c *Calendar) Covers(date time.Time) bool {
	d := domain.DateOf(date)
	return len(c.workdays) > 0 && !d.Before(c.min) && !d.After(c.max)
}

// AddWorkdays walks day by day in the sign of n, counting only workdays,
// until |n| workdays have been crossed. The from date itself is never
// counted. AddWorkdays(d, 0) returns d unchanged.
func (c *Calendar) AddWorkdays(from time.Time, n int) (time.Time, error) {
	current := domain.DateOf(from)
	if n == 0 {
		return current, nil
	}

	direction := 1
	remaining := n
	if n < 0 {
		direction = -1
		remaining = -n
	}

	for remaining > 0 {
		current = current.AddDate(0, 0, direction)
		if !c.Covers(current) {
			return time.Time{}, ErrOutOfRange
		}
		if c.workdays[current] {
			remaining--
		}
	}
	return current, nil
}

// CalcEndDate computes an end date from a start date and a workday duration.
// Duration counts the start day as day 1: duration <= 1 yields start itself,
// duration N yields N-1 workdays after start.
func (c *Calendar) CalcEndDate(start time.Time, duration int) (time.Time, error) {
	if duration <= 1 {
		return domain.DateOf(start), nil
	}
	return c.AddWorkdays(start, duration-1)
}

// CalcDuration counts workdays within [start, end] inclusive. Returns at
// least 1 even when the range holds no workdays.
func (c *Calendar) CalcDuration(start, end time.Time) int {
	s, e := domain.DateOf(start), domain.DateOf(end)
	if s.Equal(e) {
		return 1
	}
	count := 0
	for current := s; !current.After(e); current = current.AddDate(0, 0, 1) {
		if c.workdays[current] {
			count++
		}
	}
	if count < 1 {
		return 1
	}
	return count
}

// NextWorkday returns date unchanged if it is a workday, otherwise the first
// workday after it.
func (c *Calendar) NextWorkday(date time.Time) (time.Time, error) {
	current := domain.DateOf(date)
	for !c.workdays[current] {
		if !c.Covers(current) {
			return time.Time{}, ErrOutOfRange
		}
		current = current.AddDate(0, 0, 1)
	}
	return current, nil
}
