package timeutil

import (
	"testing"
	"time"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q): %v", name, err)
	}
	return loc
}

func TestLoadLocationInvalid(t *testing.T) {
	if _, err := LoadLocation("Europe/Nowhere"); err == nil {
		t.Fatal("ожидалась ошибка для несуществующего пояса")
	}
}

func TestPartsRoundTrip(t *testing.T) {
	loc := mustLocation(t, "Europe/Berlin")

	instant := time.Date(2025, time.July, 14, 7, 30, 0, 0, time.UTC)
	parts := PartsIn(instant, loc)

	// Летом Берлин — UTC+2.
	if parts.Hour != 9 || parts.Minute != 30 {
		t.Fatalf("ожидалось 09:30 по Берлину, получено %02d:%02d", parts.Hour, parts.Minute)
	}

	back := FromParts(parts, loc)
	if !back.Equal(instant) {
		t.Fatalf("обратное преобразование дало %v, ожидалось %v", back, instant)
	}
}

func TestPartsAcrossOffsetChange(t *testing.T) {
	loc := mustLocation(t, "Europe/Berlin")

	winter := FromParts(DateParts{Year: 2025, Month: time.January, Day: 15, Hour: 9}, loc)
	summer := FromParts(DateParts{Year: 2025, Month: time.July, Day: 15, Hour: 9}, loc)

	if winter.UTC().Hour() != 8 {
		t.Errorf("зимой 09:00 Берлина должно быть 08:00 UTC, получено %02d:00", winter.UTC().Hour())
	}
	if summer.UTC().Hour() != 7 {
		t.Errorf("летом 09:00 Берлина должно быть 07:00 UTC, получено %02d:00", summer.UTC().Hour())
	}
}

func TestStartOfDay(t *testing.T) {
	loc := mustLocation(t, "Europe/Moscow")

	// 23:30 UTC 1 марта — уже 02:30 2 марта по Москве.
	instant := time.Date(2025, time.March, 1, 23, 30, 0, 0, time.UTC)
	day := StartOfDay(instant, loc)

	parts := PartsIn(day, loc)
	if parts.Day != 2 || parts.Hour != 0 || parts.Minute != 0 {
		t.Fatalf("ожидалась полночь 2 марта по Москве, получено %+v", parts)
	}
}

func TestStartOfWeekMondayAnchor(t *testing.T) {
	loc := mustLocation(t, "Europe/Moscow")

	cases := []struct {
		name string
		in   time.Time
	}{
		{"среда", FromParts(DateParts{Year: 2025, Month: time.June, Day: 11, Hour: 15}, loc)},
		{"понедельник", FromParts(DateParts{Year: 2025, Month: time.June, Day: 9, Hour: 0}, loc)},
		{"воскресенье", FromParts(DateParts{Year: 2025, Month: time.June, Day: 15, Hour: 23}, loc)},
	}

	for _, tc := range cases {
		week := StartOfWeek(tc.in, loc)
		parts := PartsIn(week, loc)
		if week.In(loc).Weekday() != time.Monday {
			t.Errorf("%s: начало недели не понедельник: %v", tc.name, week.In(loc).Weekday())
		}
		if parts.Day != 9 || parts.Hour != 0 {
			t.Errorf("%s: ожидался понедельник 9 июня 00:00, получено %+v", tc.name, parts)
		}
	}
}

func TestStartOfMonthAndYear(t *testing.T) {
	loc := mustLocation(t, "Europe/Moscow")
	in := FromParts(DateParts{Year: 2025, Month: time.August, Day: 20, Hour: 13}, loc)

	month := PartsIn(StartOfMonth(in, loc), loc)
	if month.Day != 1 || month.Month != time.August || month.Hour != 0 {
		t.Errorf("начало месяца: %+v", month)
	}

	year := PartsIn(StartOfYear(in, loc), loc)
	if year.Day != 1 || year.Month != time.January || year.Hour != 0 {
		t.Errorf("начало года: %+v", year)
	}
}

func TestAddDaysKeepsWallClockAcrossDST(t *testing.T) {
	loc := mustLocation(t, "Europe/Berlin")

	// 29 марта 2025, 09:00 — за сутки до перевода стрелок.
	before := FromParts(DateParts{Year: 2025, Month: time.March, Day: 29, Hour: 9}, loc)
	after := AddDays(before, 1, loc)

	parts := PartsIn(after, loc)
	if parts.Day != 30 || parts.Hour != 9 {
		t.Fatalf("после +1 дня ожидалось 30 марта 09:00, получено %+v", parts)
	}

	// Фактический интервал короче суток из-за перехода на летнее время.
	if after.Sub(before) != 23*time.Hour {
		t.Fatalf("ожидалось 23 часа между моментами, получено %v", after.Sub(before))
	}
}

func TestAddMonths(t *testing.T) {
	loc := mustLocation(t, "Europe/Moscow")
	in := FromParts(DateParts{Year: 2025, Month: time.November, Day: 15, Hour: 10}, loc)

	out := PartsIn(AddMonths(in, 3, loc), loc)
	if out.Year != 2026 || out.Month != time.February || out.Day != 15 || out.Hour != 10 {
		t.Fatalf("ожидалось 15 февраля 2026 10:00, получено %+v", out)
	}
}

func TestCombineDateClock(t *testing.T) {
	loc := mustLocation(t, "Europe/Moscow")
	date := FromParts(DateParts{Year: 2025, Month: time.June, Day: 9}, loc)

	at, err := CombineDateClock(date, "09:30", loc)
	if err != nil {
		t.Fatalf("CombineDateClock: %v", err)
	}

	parts := PartsIn(at, loc)
	if parts.Hour != 9 || parts.Minute != 30 || parts.Day != 9 {
		t.Fatalf("ожидалось 9 июня 09:30, получено %+v", parts)
	}

	if _, err := CombineDateClock(date, "9:30am", loc); err == nil {
		t.Fatal("ожидалась ошибка для неверного формата времени")
	}
}

func TestParseDateAndKey(t *testing.T) {
	loc := mustLocation(t, "Europe/Moscow")

	date, err := ParseDate("2025-06-09", loc)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if DateKey(date, loc) != "2025-06-09" {
		t.Fatalf("DateKey: %s", DateKey(date, loc))
	}

	if _, err := ParseDate("09.06.2025", loc); err == nil {
		t.Fatal("ожидалась ошибка для неверного формата даты")
	}
}

func TestCalendarDateKeepsOwnZone(t *testing.T) {
	// DATE-полночь UTC: в поясе с отрицательным смещением это еще
	// предыдущий вечер, но календарная дата значения не меняется.
	date := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	if CalendarDate(date) != "2025-06-09" {
		t.Fatalf("CalendarDate: %s", CalendarDate(date))
	}

	bogota := mustLocation(t, "America/Bogota")
	if DateKey(date, bogota) == CalendarDate(date) {
		t.Fatal("перевод в западный пояс должен сдвигать DateKey на предыдущий день")
	}
}
