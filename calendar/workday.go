package calendar

import "time"

// =============================================================================
// ADMINISTRATIVE WORK RULE
// =============================================================================
// Administrative sections work Monday through Friday, minus holidays and
// optional days. This rule only annotates views; the operational rotation
// in the roster package runs every day of the year regardless.

// AdministrativeSections is the round-robin order for the daily
// administrative duty section.
var AdministrativeSections = []string{
	"OFICIAIS ADM",
	"SEÇÃO GARAGEM",
	"SEÇÃO PROJETOS",
	"SEÇÃO SECRIMPO",
	"SEÇÃO SJD",
	"SEÇÃO SLOG",
	"SEÇÃO SOI",
	"SEÇÃO SP",
	"SEÇÃO SVG",
	"SECRETARIA",
}

// WorksToday reports whether administrative sections work on the date:
// a weekday that is neither a holiday nor an optional day.
func WorksToday(d Date, cal HolidayCalendar) bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	if cal == nil {
		return true
	}
	return !cal.IsHoliday(d) && !cal.IsOptionalDay(d)
}

// OfficeHours returns the expedient window for a working weekday.
// Fridays run the morning shift; Monday through Thursday the afternoon.
// Empty for weekends.
func OfficeHours(d Date) string {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return ""
	case time.Friday:
		return "07:00h às 13:00h"
	default:
		return "13:00h às 19:00h"
	}
}

// SectionOnDuty returns the administrative section covering the date,
// rotating over working days elapsed since January 1 of the date's year.
// ok is false on non-working days.
func SectionOnDuty(d Date, cal HolidayCalendar) (section string, ok bool) {
	if !WorksToday(d, cal) {
		return "", false
	}
	workdays := 0
	for x := StartOfYear(d.Year()); x.Before(d); x = x.AddDays(1) {
		if WorksToday(x, cal) {
			workdays++
		}
	}
	return AdministrativeSections[workdays%len(AdministrativeSections)], true
}
