/*
Package calendar provides day-granularity date handling for the roster engine.

PURPOSE:
  Everything in this system is keyed by calendar days: duty rotations,
  manual alterations, leave installments, monthly quotas. This package
  defines the Date value type those components share, plus the holiday
  and optional-day ("ponto facultativo") calendars and the administrative
  work rule derived from them.

KEY CONCEPTS:
  - Date: a calendar day with no time component, UTC-normalized
  - HolidayCalendar: lookup of national holidays and optional days
  - BuiltinCalendar: the static Brasília tables for known years
  - WorksToday: whether administrative (non-rotating) sections work a date

DESIGN PRINCIPLES:
  1. Purity: every function here is deterministic and side-effect free
  2. Totality: dates far in the past or future are as valid as today
  3. Day granularity: no hidden hour/minute state leaks into comparisons

SEE ALSO:
  - workday.go: administrative work rule and section round-robin
  - roster/rotation.go: consumes Date and HolidayCalendar
  - leave/quota.go: consumes Date arithmetic for installment spans
*/
package calendar

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day, no time component
// =============================================================================

type Date struct {
	Time time.Time
}

// NewDate builds a Date at day granularity in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date ("2006-01-02").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// DaysBetween returns the whole-day span from one date to another.
// Negative when to precedes from.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) Date {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return Date{Time: t}
}

func StartOfYear(year int) Date { return NewDate(year, time.January, 1) }

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// Holiday is a non-working day. Optional marks a "ponto facultativo":
// administrative sections stay home, but it is not a legal holiday.
type Holiday struct {
	ID       string
	Date     Date
	Name     string
	Optional bool
}

// HolidayCalendar answers holiday and optional-day lookups.
// Implementations: BuiltinCalendar (static tables) and the SQLite store.
type HolidayCalendar interface {
	IsHoliday(d Date) bool
	IsOptionalDay(d Date) bool

	// Holidays returns all entries for a year, optional days included,
	// in ascending date order.
	Holidays(year int) []Holiday
}

// NoHolidays is a calendar with no entries at all.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(Date) bool      { return false }
func (NoHolidays) IsOptionalDay(Date) bool  { return false }
func (NoHolidays) Holidays(int) []Holiday   { return nil }
