// Package scheduler implements the background recurring-schedule and reminder
// processing engine.
package scheduler

import (
	"fmt"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/models"
)

// Frequency calculation errors
var (
	ErrInvalidInterval  = fmt.Errorf("repeat interval must be at least 1")
	ErrInvalidFrequency = fmt.Errorf("unknown recurrence frequency")
)

// NextRunDate computes the next occurrence date for a schedule, measured from
// the given occurrence date. Pure and deterministic; the result is always
// strictly after from.
//
// Daily: from + interval days.
// Weekly: interval weeks ahead, shifted forward to the schedule's DayOfWeek
// when one is set.
// Monthly: interval months ahead, clamped to DayOfMonth; when the target month
// is shorter than DayOfMonth the last day of the month is used instead of
// rolling over.
func NextRunDate(schedule *models.RecurringSchedule, from time.Time) (time.Time, error) {
	interval := schedule.RepeatInterval
	if interval <= 0 {
		return time.Time{}, fmt.Errorf("schedule %d: %w (got %d)", schedule.ID, ErrInvalidInterval, interval)
	}

	var next time.Time
	switch schedule.Frequency {
	case models.RecurringFrequencyDaily:
		next = from.AddDate(0, 0, interval)

	case models.RecurringFrequencyWeekly:
		next = from.AddDate(0, 0, 7*interval)
		if schedule.DayOfWeek != nil {
			target := time.Weekday(*schedule.DayOfWeek % 7)
			shift := (int(target) - int(next.Weekday()) + 7) % 7
			next = next.AddDate(0, 0, shift)
		}

	case models.RecurringFrequencyMonthly:
		next = addMonthsClamped(from, interval, schedule.DayOfMonth)

	default:
		return time.Time{}, fmt.Errorf("schedule %d: %w: %q", schedule.ID, ErrInvalidFrequency, schedule.Frequency)
	}

	if !next.After(from) {
		return time.Time{}, fmt.Errorf("schedule %d: computed next run %s is not after %s",
			schedule.ID, next.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return next, nil
}

// addMonthsClamped advances by the given number of months, targeting dayOfMonth
// (or the source day when unset) and clamping to the target month's length so
// e.g. a day-31 schedule lands on Feb 28/29 instead of rolling into March.
func addMonthsClamped(from time.Time, months int, dayOfMonth *int) time.Time {
	year, month, day := from.Date()
	hour, minute, sec := from.Clock()

	if dayOfMonth != nil && *dayOfMonth >= 1 {
		day = *dayOfMonth
	}

	// Normalize the target month via day 1 so the day clamp is applied against
	// the right month length.
	anchor := time.Date(year, month, 1, hour, minute, sec, from.Nanosecond(), from.Location())
	anchor = anchor.AddDate(0, months, 0)

	if last := daysInMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day, hour, minute, sec, from.Nanosecond(), from.Location())
}

// daysInMonth returns the number of days in the given month
func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
