package utils

import (
	"time"

	"spot-observer/src/logger"

	"github.com/scmhub/calendar"
)

// HelsinkiMIC is the Nasdaq Helsinki exchange, whose holidays match the
// Finnish public holidays.
const HelsinkiMIC = "xhel"

// HolidayCalendar tells business days from weekends and public holidays
// using scmhub/calendar.
type HolidayCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// NewHolidayCalendar loads the calendar for a MIC. When the library has no
// calendar for it, a Monday-to-Friday fallback in loc is used.
func NewHolidayCalendar(mic string, loc *time.Location, log *logger.Logger) *HolidayCalendar {
	if loc == nil {
		loc = time.UTC
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		if log != nil {
			log.Warning("No calendar for MIC '%s'. Using weekday fallback in %s.", mic, loc)
		}
		return &HolidayCalendar{Fallback: true, Timezone: loc}
	}

	tz := cal.Loc
	if tz == nil {
		tz = loc
	}
	return &HolidayCalendar{Calendar: cal, Timezone: tz}
}

// -----------------------------------------------------------------------------

// IsBusinessDay reports whether t's local date is a working day.
func (hc *HolidayCalendar) IsBusinessDay(t time.Time) bool {
	if hc.Timezone != nil {
		t = t.In(hc.Timezone)
	}

	if hc.Fallback || hc.Calendar == nil {
		weekday := t.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return hc.Calendar.IsBusinessDay(t)
}

// -----------------------------------------------------------------------------

// BusinessDaysBetween counts business days in [from, to) by local date.
func (hc *HolidayCalendar) BusinessDaysBetween(from, to time.Time) int {
	loc := hc.Timezone
	if loc == nil {
		loc = time.UTC
	}
	lf := from.In(loc)
	day := time.Date(lf.Year(), lf.Month(), lf.Day(), 0, 0, 0, 0, loc)

	n := 0
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		if hc.IsBusinessDay(day) {
			n++
		}
	}
	return n
}
