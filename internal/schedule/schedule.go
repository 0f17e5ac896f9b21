// Package schedule implements supplier delivery-day arithmetic as pure
// functions over a tagged SchedulePattern variant (spec §4.3). It holds
// no state and performs no I/O, mirroring the shape of the teacher's
// stock_health calculator: a small struct-free set of pure helpers
// dispatching on a single tag instead of polymorphic types.
package schedule

import (
	"time"

	"github.com/rxreplenish/rde/internal/domain"
)

// maxSearchDays bounds how far ahead nextOrderDate searches before
// falling back, per spec §4.3.
const maxSearchDays = 14

// AcceptsOrderOn reports whether supplier accepts an order placed on
// date, given the time of day the order would be placed. timeOfDay is
// used only to evaluate the cutoff when isToday is true; callers
// checking a future date may pass a zero TimeOfDay.
func AcceptsOrderOn(s domain.Supplier, date time.Time, timeOfDay domain.TimeOfDay, isToday bool) bool {
	if !weekdayMatches(s.Schedule, date) {
		return false
	}

	if isToday && s.CutoffTime != nil {
		return timeOfDay.Before(*s.CutoffTime)
	}

	return true
}

func weekdayMatches(p domain.SchedulePattern, date time.Time) bool {
	switch p.Kind {
	case domain.ScheduleDaily:
		return true
	case domain.ScheduleSpecificDays:
		return p.SpecificDays[date.Weekday()]
	case domain.ScheduleWeekly:
		return date.Weekday() == p.Weekday
	case domain.ScheduleBiWeekly:
		if date.Weekday() != p.Weekday {
			return false
		}
		_, week := date.ISOWeek()
		return week%2 == p.WeekParity
	default:
		return false
	}
}

// CanOrderToday reports whether the supplier accepts an order placed
// right now (spec §4.3).
func CanOrderToday(s domain.Supplier, now time.Time) bool {
	return AcceptsOrderOn(s, truncateToDate(now), domain.TimeOfDayFromTime(now), true)
}

// NextOrderDate returns the smallest date >= from on which the supplier
// accepts an order, searching up to maxSearchDays ahead. If none is
// found, it falls back to from+7 (spec §4.3).
func NextOrderDate(s domain.Supplier, from time.Time, nowTimeOfDay domain.TimeOfDay) time.Time {
	from = truncateToDate(from)

	for i := 0; i <= maxSearchDays; i++ {
		candidate := from.AddDate(0, 0, i)
		if AcceptsOrderOn(s, candidate, nowTimeOfDay, i == 0) {
			return candidate
		}
	}

	return from.AddDate(0, 0, 7)
}

// DeliveryDate returns orderDate + supplier.LeadTimeDays (spec §4.3).
func DeliveryDate(s domain.Supplier, orderDate time.Time) time.Time {
	return truncateToDate(orderDate).AddDate(0, 0, s.LeadTimeDays)
}

// DaysUntilDelivery computes nextOrderDate then delivery, minus today
// (spec §4.3).
func DaysUntilDelivery(s domain.Supplier, now time.Time, nowTimeOfDay domain.TimeOfDay) int {
	today := truncateToDate(now)
	orderDate := NextOrderDate(s, today, nowTimeOfDay)
	delivery := DeliveryDate(s, orderDate)
	return int(delivery.Sub(today).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
