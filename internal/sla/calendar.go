package sla

import (
	"errors"
	"fmt"
	"time"

	"slawatch/internal/domain"
)

// ErrCalendarNeverOpen is returned when a deadline walk exhausts its
// iteration cap without finding working time, e.g. a calendar with an
// empty working-day set.
var ErrCalendarNeverOpen = errors.New("business calendar has no usable working time")

// maxDeadlineDays caps the day-by-day walk. Ten years of daily steps is
// far beyond any real budget; hitting the cap means the calendar can
// never absorb the budget.
const maxDeadlineDays = 3660

// Deadline computes the instant at which budgetMinutes of in-calendar time
// has elapsed from start. The walk moves forward in daily segments: skip
// non-working days, clamp to the opening time, and consume whatever fits
// before closing each day.
func Deadline(start time.Time, budgetMinutes int, cal domain.BusinessCalendar) (time.Time, error) {
	loc, err := time.LoadLocation(cal.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("loading calendar timezone %q: %w", cal.Timezone, err)
	}
	openHour, openMin, err := parseClock(cal.OpensAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar opening time %q: %w", cal.OpensAt, err)
	}
	closeHour, closeMin, err := parseClock(cal.ClosesAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar closing time %q: %w", cal.ClosesAt, err)
	}

	remaining := time.Duration(budgetMinutes) * time.Minute
	cur := start.In(loc)

	for i := 0; i < maxDeadlineDays; i++ {
		if !cal.WorksOn(cur.Weekday()) {
			cur = nextOpening(cur, openHour, openMin)
			continue
		}
		opens := time.Date(cur.Year(), cur.Month(), cur.Day(), openHour, openMin, 0, 0, loc)
		closes := time.Date(cur.Year(), cur.Month(), cur.Day(), closeHour, closeMin, 0, 0, loc)
		if cur.Before(opens) {
			cur = opens
			continue
		}
		if !cur.Before(closes) {
			cur = nextOpening(cur, openHour, openMin)
			continue
		}
		available := closes.Sub(cur)
		if remaining <= available {
			return cur.Add(remaining), nil
		}
		remaining -= available
		cur = nextOpening(cur, openHour, openMin)
	}
	return time.Time{}, ErrCalendarNeverOpen
}

func nextOpening(cur time.Time, hour, min int) time.Time {
	return time.Date(cur.Year(), cur.Month(), cur.Day()+1, hour, min, 0, 0, cur.Location())
}

func parseClock(s string) (int, int, error) {
	var hour, min int
	_, err := fmt.Sscanf(s, "%d:%d", &hour, &min)
	if err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("time out of range: %02d:%02d", hour, min)
	}
	return hour, min, nil
}
