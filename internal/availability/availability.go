// Package availability evaluates a subcontractor's weekly working-day
// configuration against calendar dates.
package availability

import (
	"time"

	"paintdash/scheduler-api/internal/timezone"
	"paintdash/scheduler-api/models"
)

// IsAvailableOnDate reports whether the subcontractor works on the given
// date's weekday, using the organizational calendar. A missing configuration
// fails open: the subcontractor counts as universally available.
func IsAvailableOnDate(wd *models.WorkingDays, date time.Time) bool {
	if wd == nil {
		return true
	}
	return wd.ForWeekday(date.In(timezone.Location()).Weekday())
}

// AvailableWeekdays lists the weekdays marked as working, Sunday first.
func AvailableWeekdays(wd *models.WorkingDays) []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if wd == nil || wd.ForWeekday(d) {
			days = append(days, d)
		}
	}
	return days
}

// WorkingDaysPerWeek counts the working days in the configuration.
func WorkingDaysPerWeek(wd *models.WorkingDays) int {
	return len(AvailableWeekdays(wd))
}

// NextAvailableDate finds the first date on or after from that the
// configuration marks as working. The search is bounded at seven days; a
// configuration with no working day at all yields false.
func NextAvailableDate(wd *models.WorkingDays, from time.Time) (time.Time, bool) {
	day := timezone.DayStart(from)
	for i := 0; i < 7; i++ {
		if IsAvailableOnDate(wd, day) {
			return day, true
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}
