package calendar

import (
	"slices"
	"strings"
	"time"
)

// Layout is the ISO date layout used for every date string in a chart.
const Layout = "2006-01-02"

const dayMillis = 24 * 60 * 60 * 1000

// Weekend names which two weekdays form the weekend.
type Weekend string

const (
	// WeekendSaturdaySunday is the default convention.
	WeekendSaturdaySunday Weekend = "saturday-sunday"
	// WeekendFridaySaturday is selected by the "weekend friday" directive.
	WeekendFridaySaturday Weekend = "friday-saturday"
)

// Days returns the weekdays forming the weekend. Unknown or empty
// conventions fall back to Saturday and Sunday.
func (w Weekend) Days() [2]time.Weekday {
	if w == WeekendFridaySaturday {
		return [2]time.Weekday{time.Friday, time.Saturday}
	}
	return [2]time.Weekday{time.Saturday, time.Sunday}
}

// IsWeekendValue reports whether s is a value the weekend directive
// accepts: "friday", "saturday" or a full convention name.
func IsWeekendValue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "friday", "saturday", string(WeekendFridaySaturday), string(WeekendSaturdaySunday):
		return true
	}
	return false
}

// ParseWeekend maps directive values ("friday", "saturday", or a full
// convention name) to a Weekend. Anything else yields the default.
func ParseWeekend(s string) Weekend {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "friday", string(WeekendFridaySaturday):
		return WeekendFridaySaturday
	default:
		return WeekendSaturdaySunday
	}
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday resolves a case-insensitive English weekday name.
func ParseWeekday(name string) (time.Weekday, bool) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return wd, ok
}

// ParseISO parses a "YYYY-MM-DD" string as a UTC midnight.
func ParseISO(iso string) (time.Time, bool) {
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(iso), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsISO reports whether s is a well-formed ISO date.
func IsISO(s string) bool {
	_, ok := ParseISO(s)
	return ok
}

// FormatISO formats t's UTC calendar date.
func FormatISO(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Today returns the current UTC date as an ISO string.
func Today() string {
	return FormatISO(time.Now())
}

// ShiftISODate shifts iso by deltaDays calendar days, ignoring working-day
// rules. Invalid input is returned unchanged.
func ShiftISODate(iso string, deltaDays int) string {
	t, ok := ParseISO(iso)
	if !ok {
		return iso
	}
	return FormatISO(t.AddDate(0, 0, deltaDays))
}

// DaysBetween returns the floored number of calendar days from a to b.
// It returns 0 when either date is invalid.
func DaysBetween(a, b string) int {
	ta, okA := ParseISO(a)
	tb, okB := ParseISO(b)
	if !okA || !okB {
		return 0
	}
	ms := tb.UnixMilli() - ta.UnixMilli()
	days := ms / dayMillis
	if ms%dayMillis != 0 && ms < 0 {
		days--
	}
	return int(days)
}

// Weekday returns the weekday of iso.
func Weekday(iso string) (time.Weekday, bool) {
	t, ok := ParseISO(iso)
	if !ok {
		return 0, false
	}
	return t.Weekday(), true
}

// Calendar holds the exclusion rules of a chart.
//
// The weekend days of the convention are never working days, so an
// "excludes weekends" directive adds nothing. The zero value treats
// Saturday and Sunday as the weekend and excludes nothing else.
type Calendar struct {
	Excludes []string // weekday names or ISO dates; other values are ignored
	Includes []string // ISO dates that are always working days
	Weekend  Weekend
}

// IsWorkingDay reports whether iso is a working day.
func (c Calendar) IsWorkingDay(iso string) bool {
	t, ok := ParseISO(iso)
	if !ok {
		return false
	}
	return c.isWorking(t)
}

func (c Calendar) isWorking(t time.Time) bool {
	iso := FormatISO(t)
	if slices.Contains(c.Includes, iso) {
		return true
	}
	wd := t.Weekday()
	for _, d := range c.Weekend.Days() {
		if wd == d {
			return false
		}
	}
	for _, ex := range c.Excludes {
		ex = strings.ToLower(strings.TrimSpace(ex))
		if ex == iso {
			return false
		}
		if named, ok := weekdayNames[ex]; ok && named == wd {
			return false
		}
	}
	return true
}

// AddWorkingDays advances startISO by days working days.
//
// days == 0 returns startISO unchanged. Negative days walk backwards. The
// walk stops after 10*|days|+365 calendar steps and returns the date reached.
func (c Calendar) AddWorkingDays(startISO string, days int) string {
	if days == 0 {
		return startISO
	}
	t, ok := ParseISO(startISO)
	if !ok {
		return startISO
	}

	step, remaining := 1, days
	if days < 0 {
		step, remaining = -1, -days
	}
	limit := 10*remaining + 365

	for i := 0; remaining > 0 && i < limit; i++ {
		t = t.AddDate(0, 0, step)
		if c.isWorking(t) {
			remaining--
		}
	}
	return FormatISO(t)
}

// WorkingDaysBetween counts working days in the half-open range (a, b].
// It returns 0 when b is not after a.
func (c Calendar) WorkingDaysBetween(a, b string) int {
	ta, okA := ParseISO(a)
	tb, okB := ParseISO(b)
	if !okA || !okB || !tb.After(ta) {
		return 0
	}
	n := 0
	for t := ta.AddDate(0, 0, 1); !t.After(tb); t = t.AddDate(0, 0, 1) {
		if c.isWorking(t) {
			n++
		}
	}
	return n
}

// AddWorkingDays advances startISO by days working days, skipping weekend
// days of the given convention and anything matched by excludes.
func AddWorkingDays(startISO string, days int, excludes []string, weekend Weekend) string {
	return Calendar{Excludes: excludes, Weekend: weekend}.AddWorkingDays(startISO, days)
}
