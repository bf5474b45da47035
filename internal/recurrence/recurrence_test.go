package recurrence

import (
	"testing"
	"time"
)

func TestDatesBetweenWeekly(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatal(err)
	}

	exp := NewRRuleExpander()

	// Неделя с понедельника 9 июня 2025 по воскресенье включительно.
	from := time.Date(2025, time.June, 9, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 7)

	dates, err := exp.DatesBetween("FREQ=WEEKLY;BYDAY=MO,WE,FR", loc, from, to)
	if err != nil {
		t.Fatalf("DatesBetween: %v", err)
	}

	want := []string{"2025-06-09", "2025-06-11", "2025-06-13"}
	if len(dates) != len(want) {
		t.Fatalf("ожидалось %d дат, получено %d: %v", len(want), len(dates), dates)
	}
	for i, d := range dates {
		if got := d.Format("2006-01-02"); got != want[i] {
			t.Errorf("дата %d: ожидалось %s, получено %s", i, want[i], got)
		}
		if d.Hour() != 0 || d.Minute() != 0 {
			t.Errorf("дата %v не нормализована к полуночи", d)
		}
	}
}

func TestDatesBetweenRangeExclusive(t *testing.T) {
	loc := time.UTC
	exp := NewRRuleExpander()

	from := time.Date(2025, time.June, 9, 0, 0, 0, 0, loc)
	to := time.Date(2025, time.June, 11, 0, 0, 0, 0, loc)

	dates, err := exp.DatesBetween("FREQ=DAILY", loc, from, to)
	if err != nil {
		t.Fatalf("DatesBetween: %v", err)
	}

	// 11 июня — правая граница, не включается.
	if len(dates) != 2 {
		t.Fatalf("ожидалось 2 даты, получено %d: %v", len(dates), dates)
	}
}

func TestDatesBetweenRRulePrefix(t *testing.T) {
	loc := time.UTC
	exp := NewRRuleExpander()

	from := time.Date(2025, time.June, 9, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 7)

	dates, err := exp.DatesBetween("RRULE:FREQ=WEEKLY;BYDAY=TU", loc, from, to)
	if err != nil {
		t.Fatalf("DatesBetween: %v", err)
	}
	if len(dates) != 1 || dates[0].Weekday() != time.Tuesday {
		t.Fatalf("ожидался один вторник, получено %v", dates)
	}
}

func TestDatesBetweenInvalidRule(t *testing.T) {
	exp := NewRRuleExpander()
	_, err := exp.DatesBetween("каждый понедельник", time.UTC, time.Now(), time.Now().AddDate(0, 0, 7))
	if err == nil {
		t.Fatal("ожидалась ошибка разбора правила")
	}
}
