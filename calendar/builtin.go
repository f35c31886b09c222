package calendar

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// BUILTIN CALENDAR - Static national holiday tables (Brasília)
// =============================================================================

type builtinEntry struct {
	month    time.Month
	day      int
	name     string
	optional bool
}

// Published tables for the years the battalion operates on. Years outside
// the map fall back to "no holidays"; production deployments load the
// current year into the SQLite-backed calendar instead.
var builtinYears = map[int][]builtinEntry{
	2025: {
		{time.January, 1, "Confraternização Universal", false},
		{time.March, 3, "Carnaval", false},
		{time.March, 4, "Carnaval", false},
		{time.April, 18, "Paixão de Cristo", false},
		{time.April, 21, "Tiradentes", false},
		{time.May, 1, "Dia Mundial do Trabalho", false},
		{time.June, 19, "Corpus Christi", false},
		{time.September, 7, "Independência do Brasil", false},
		{time.October, 12, "Nossa Senhora Aparecida", false},
		{time.November, 2, "Finados", false},
		{time.November, 15, "Proclamação da República", false},
		{time.November, 20, "Dia Nacional de Zumbi e da Consciência Negra", false},
		{time.December, 25, "Natal", false},
	},
	2026: {
		{time.January, 1, "Confraternização Universal", false},
		{time.January, 2, "Ponto facultativo", true},
		{time.February, 16, "Carnaval", true},
		{time.February, 17, "Carnaval", true},
		{time.February, 18, "Quarta-feira de Cinzas", true},
		{time.April, 3, "Paixão de Cristo", false},
		{time.April, 20, "Ponto facultativo", true},
		{time.April, 21, "Tiradentes", false},
		{time.May, 1, "Dia Mundial do Trabalho", false},
		{time.June, 4, "Corpus Christi", true},
		{time.June, 5, "Ponto facultativo", true},
		{time.September, 7, "Independência do Brasil", false},
		{time.October, 12, "Nossa Senhora Aparecida", false},
		{time.October, 28, "Dia do Servidor Público", true},
		{time.November, 2, "Finados", false},
		{time.November, 15, "Proclamação da República", false},
		{time.November, 20, "Dia Nacional de Zumbi e da Consciência Negra", false},
		{time.December, 24, "Véspera de Natal", true},
		{time.December, 25, "Natal", false},
		{time.December, 31, "Véspera de Ano Novo", true},
	},
}

// BuiltinCalendar serves the static tables above.
type BuiltinCalendar struct{}

func NewBuiltinCalendar() *BuiltinCalendar { return &BuiltinCalendar{} }

func (c *BuiltinCalendar) lookup(d Date) (builtinEntry, bool) {
	for _, e := range builtinYears[d.Year()] {
		if e.month == d.Month() && e.day == d.Day() {
			return e, true
		}
	}
	return builtinEntry{}, false
}

func (c *BuiltinCalendar) IsHoliday(d Date) bool {
	e, ok := c.lookup(d)
	return ok && !e.optional
}

func (c *BuiltinCalendar) IsOptionalDay(d Date) bool {
	e, ok := c.lookup(d)
	return ok && e.optional
}

func (c *BuiltinCalendar) Holidays(year int) []Holiday {
	entries := builtinYears[year]
	holidays := make([]Holiday, 0, len(entries))
	for _, e := range entries {
		d := NewDate(year, e.month, e.day)
		holidays = append(holidays, Holiday{
			ID:       fmt.Sprintf("builtin-%s", d),
			Date:     d,
			Name:     e.name,
			Optional: e.optional,
		})
	}
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays
}

// BuiltinYears lists the years the static tables cover.
func BuiltinYears() []int {
	years := make([]int, 0, len(builtinYears))
	for y := range builtinYears {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
