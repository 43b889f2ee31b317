package reporting

import (
	"time"

	"lp-yield-reporter/internal/domain"
)

// PeriodEnd returns the most recent daily cutoff (endHour o'clock in loc)
// that is not after now. Runs before today's cutoff report on the period
// ending yesterday.
func PeriodEnd(now time.Time, loc *time.Location, endHour int) time.Time {
	local := now.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), endHour, 0, 0, 0, loc)
	if local.Before(end) {
		end = end.AddDate(0, 0, -1)
	}
	return end
}

// DailyWindow is the 24 hours ending at end, half-open.
func DailyWindow(end time.Time) domain.Window {
	return domain.Window{Start: end.Add(-24 * time.Hour).Unix(), End: end.Unix()}
}

// WeeklyWindow is the 7 days ending at end, half-open.
func WeeklyWindow(end time.Time) domain.Window {
	return domain.Window{Start: end.AddDate(0, 0, -7).Unix(), End: end.Unix()}
}

// AllTimeWindow covers everything up to end.
func AllTimeWindow(end time.Time) domain.Window {
	return domain.Window{Start: 0, End: end.Unix()}
}

// PeriodKey formats a period end for use as the ledger row key.
func PeriodKey(end time.Time) string {
	return end.Format("2006-01-02 15:04")
}
