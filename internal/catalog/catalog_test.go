package catalog

import (
	"testing"
	"time"

	"github.com/rxreplenish/rde/internal/domain"
)

func TestScheduleFromRow_Daily(t *testing.T) {
	r := supplierQuoteRow{ScheduleKind: int(domain.ScheduleDaily)}
	got := scheduleFromRow(r)
	if got.Kind != domain.ScheduleDaily {
		t.Fatalf("kind = %v, want Daily", got.Kind)
	}
}

func TestScheduleFromRow_Weekly(t *testing.T) {
	r := supplierQuoteRow{ScheduleKind: int(domain.ScheduleWeekly), Weekday: int(time.Tuesday)}
	got := scheduleFromRow(r)
	if got.Kind != domain.ScheduleWeekly {
		t.Fatalf("kind = %v, want Weekly", got.Kind)
	}
	if got.Weekday != time.Tuesday {
		t.Errorf("weekday = %v, want Tuesday", got.Weekday)
	}
}

func TestScheduleFromRow_BiWeekly(t *testing.T) {
	r := supplierQuoteRow{ScheduleKind: int(domain.ScheduleBiWeekly), Weekday: int(time.Friday), WeekParity: 1}
	got := scheduleFromRow(r)
	if got.Kind != domain.ScheduleBiWeekly {
		t.Fatalf("kind = %v, want BiWeekly", got.Kind)
	}
	if got.Weekday != time.Friday || got.WeekParity != 1 {
		t.Errorf("got weekday=%v parity=%d, want Friday/1", got.Weekday, got.WeekParity)
	}
}

func TestScheduleFromRow_SpecificDays(t *testing.T) {
	r := supplierQuoteRow{
		ScheduleKind: int(domain.ScheduleSpecificDays),
		SpecificDays: []int64{int64(time.Monday), int64(time.Thursday)},
	}
	got := scheduleFromRow(r)
	if got.Kind != domain.ScheduleSpecificDays {
		t.Fatalf("kind = %v, want SpecificDays", got.Kind)
	}
	if len(got.SpecificDays) != 2 || !got.SpecificDays[time.Monday] || !got.SpecificDays[time.Thursday] {
		t.Errorf("specificDays = %v, want {Monday, Thursday}", got.SpecificDays)
	}
}

func TestScheduleFromRow_UnknownDefaultsToDaily(t *testing.T) {
	r := supplierQuoteRow{ScheduleKind: 99}
	got := scheduleFromRow(r)
	if got.Kind != domain.ScheduleDaily {
		t.Fatalf("kind = %v, want Daily fallback", got.Kind)
	}
}

func TestParseMoney(t *testing.T) {
	m, err := parseMoney("12.50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.String() != "12.5000" && m.Float64() != 12.5 {
		t.Errorf("parsed money = %v, want 12.50", m)
	}
}
