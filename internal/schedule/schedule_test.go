package schedule

import (
	"testing"
	"time"

	"github.com/rxreplenish/rde/internal/domain"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAcceptsOrderOn_Daily(t *testing.T) {
	s := domain.Supplier{Schedule: domain.Daily(), LeadTimeDays: 2}
	if !AcceptsOrderOn(s, mustDate("2026-08-03"), domain.TimeOfDay{}, false) {
		t.Fatal("daily supplier should accept any weekday")
	}
}

func TestAcceptsOrderOn_SpecificDays(t *testing.T) {
	s := domain.Supplier{Schedule: domain.SpecificDaysPattern(time.Monday, time.Friday)}
	monday := mustDate("2026-08-03") // a Monday
	tuesday := mustDate("2026-08-04")

	if !AcceptsOrderOn(s, monday, domain.TimeOfDay{}, false) {
		t.Error("expected Monday to be accepted")
	}
	if AcceptsOrderOn(s, tuesday, domain.TimeOfDay{}, false) {
		t.Error("expected Tuesday to be rejected")
	}
}

func TestAcceptsOrderOn_Cutoff(t *testing.T) {
	cutoff := domain.TimeOfDay{Hour: 14, Minute: 0}
	s := domain.Supplier{Schedule: domain.Daily(), CutoffTime: &cutoff}

	before := domain.TimeOfDay{Hour: 10, Minute: 0}
	after := domain.TimeOfDay{Hour: 16, Minute: 0}

	if !AcceptsOrderOn(s, mustDate("2026-08-03"), before, true) {
		t.Error("expected acceptance before cutoff")
	}
	if AcceptsOrderOn(s, mustDate("2026-08-03"), after, true) {
		t.Error("expected rejection after cutoff")
	}
	// Cutoff only applies to "today" checks.
	if !AcceptsOrderOn(s, mustDate("2026-08-04"), after, false) {
		t.Error("expected acceptance on a future date regardless of cutoff")
	}
}

func TestAcceptsOrderOn_BiWeekly(t *testing.T) {
	s := domain.Supplier{Schedule: domain.BiWeeklyPattern(time.Monday, 0)}
	_, week := mustDate("2026-08-03").ISOWeek()
	want := week%2 == 0

	got := AcceptsOrderOn(s, mustDate("2026-08-03"), domain.TimeOfDay{}, false)
	if got != want {
		t.Errorf("biweekly parity mismatch: got %v want %v", got, want)
	}
}

func TestNextOrderDate_Fallback(t *testing.T) {
	// A schedule with no matching weekday within the search window
	// (construct by using SpecificDays with no entries) should fall
	// back to from+7.
	s := domain.Supplier{Schedule: domain.SchedulePattern{Kind: domain.ScheduleSpecificDays, SpecificDays: map[time.Weekday]bool{}}}
	from := mustDate("2026-08-03")

	got := NextOrderDate(s, from, domain.TimeOfDay{})
	want := from.AddDate(0, 0, 7)
	if !got.Equal(want) {
		t.Errorf("expected fallback to from+7, got %v want %v", got, want)
	}
}

func TestDeliveryDate(t *testing.T) {
	s := domain.Supplier{LeadTimeDays: 4}
	order := mustDate("2026-08-03")
	got := DeliveryDate(s, order)
	want := mustDate("2026-08-07")
	if !got.Equal(want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestScenario1_CriticalCheaperButSlower(t *testing.T) {
	// Mirrors spec §8 scenario 1: today Monday, supplier A daily lead 2,
	// supplier B Mon/Fri lead 4.
	monday := mustDate("2026-08-03")
	a := domain.Supplier{Schedule: domain.Daily(), LeadTimeDays: 2}
	b := domain.Supplier{Schedule: domain.SpecificDaysPattern(time.Monday, time.Friday), LeadTimeDays: 4}

	aDelivery := DeliveryDate(a, NextOrderDate(a, monday, domain.TimeOfDay{}))
	bDelivery := DeliveryDate(b, NextOrderDate(b, monday, domain.TimeOfDay{}))

	if aDelivery.Sub(monday).Hours()/24 != 2 {
		t.Errorf("supplier A expected 2-day delivery, got %v", aDelivery.Sub(monday).Hours()/24)
	}
	if bDelivery.Sub(monday).Hours()/24 != 4 {
		t.Errorf("supplier B expected 4-day delivery, got %v", bDelivery.Sub(monday).Hours()/24)
	}
}
