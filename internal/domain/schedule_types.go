package domain

import "time"

// TimeOfDay is a wall-clock time within a day, used for supplier
// same-day order cutoffs (spec §3, §4.3).
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Before reports whether t is earlier than or equal to o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Hour < o.Hour || (t.Hour == o.Hour && t.Minute <= o.Minute)
}

// TimeOfDayFromTime extracts the wall-clock time of day from a timestamp.
func TimeOfDayFromTime(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// ScheduleKind tags the shape of a supplier's delivery-day pattern
// (spec §3, §9): represented as a tagged variant, not via inheritance.
type ScheduleKind int

const (
	ScheduleDaily ScheduleKind = iota
	ScheduleSpecificDays
	ScheduleWeekly
	ScheduleBiWeekly
)

// SchedulePattern is the tagged variant describing when a supplier
// accepts orders/deliveries (spec §3, §4.3).
type SchedulePattern struct {
	Kind ScheduleKind

	// SpecificDays holds the accepted weekdays for ScheduleSpecificDays.
	SpecificDays map[time.Weekday]bool

	// Weekday is the single accepted weekday for ScheduleWeekly and
	// ScheduleBiWeekly.
	Weekday time.Weekday

	// WeekParity selects even/odd ISO week number for ScheduleBiWeekly
	// (0 or 1); a date's week-of-year%2 must equal WeekParity.
	WeekParity int
}

// Daily returns a pattern accepting orders on every weekday.
func Daily() SchedulePattern {
	return SchedulePattern{Kind: ScheduleDaily}
}

// SpecificDaysPattern returns a pattern accepting orders only on the
// given weekdays.
func SpecificDaysPattern(days ...time.Weekday) SchedulePattern {
	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return SchedulePattern{Kind: ScheduleSpecificDays, SpecificDays: set}
}

// WeeklyPattern returns a pattern accepting orders on a single weekday
// every week.
func WeeklyPattern(day time.Weekday) SchedulePattern {
	return SchedulePattern{Kind: ScheduleWeekly, Weekday: day}
}

// BiWeeklyPattern returns a pattern accepting orders on a single weekday
// every second week, where weekParity selects which ISO weeks qualify.
func BiWeeklyPattern(day time.Weekday, weekParity int) SchedulePattern {
	return SchedulePattern{Kind: ScheduleBiWeekly, Weekday: day, WeekParity: weekParity % 2}
}
