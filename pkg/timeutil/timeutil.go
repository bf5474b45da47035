package timeutil

import (
	"fmt"
	"time"
)

// Пакет timeutil переводит моменты времени в настенные дата/время выбранного
// часового пояса и обратно. Вся календарная арифметика выполняется в целевом
// поясе, а не в UTC, поэтому границы суток и "плюс день" не сдвигают
// настенное время при смене смещения пояса.

type DateParts struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// LoadLocation разбирает идентификатор часового пояса (например
// "Europe/Moscow"). Неверный идентификатор — ошибка вызывающей стороны.
func LoadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("неверный идентификатор часового пояса %q: %w", name, err)
	}
	return loc, nil
}

// PartsIn возвращает настенные составляющие момента t в поясе loc.
func PartsIn(t time.Time, loc *time.Location) DateParts {
	local := t.In(loc)
	return DateParts{
		Year:   local.Year(),
		Month:  local.Month(),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
		Second: local.Second(),
	}
}

// FromParts собирает абсолютный момент из настенных составляющих в поясе loc
// с учетом смещения пояса на эту конкретную дату.
func FromParts(p DateParts, loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month, p.Day, p.Hour, p.Minute, p.Second, 0, loc)
}

// StartOfDay — полночь суток, в которые попадает t, в поясе loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek — полночь понедельника недели, в которую попадает t, в поясе loc.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	weekday := day.Weekday()
	if weekday == time.Sunday {
		weekday = 7
	}
	return AddDays(day, -int(weekday-time.Monday), loc)
}

// StartOfMonth — полночь первого числа месяца, в который попадает t.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

// StartOfYear — полночь первого января года, в который попадает t.
func StartOfYear(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc)
}

// AddDays прибавляет n календарных дней, сохраняя настенное время в поясе loc.
func AddDays(t time.Time, n int, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+n,
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc)
}

// AddMonths прибавляет n календарных месяцев, сохраняя настенное время в поясе loc.
func AddMonths(t time.Time, n int, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month()+time.Month(n), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc)
}

// CombineDateClock совмещает календарную дату момента date (в поясе loc) и
// настенное время clock в формате "15:04".
func CombineDateClock(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("неверный формат времени %q, ожидается HH:MM: %w", clock, err)
	}

	local := date.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}

// DateKey — ключ календарной даты момента t в поясе loc ("2006-01-02").
// Используется для сопоставления исключений и праздников по датам.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// CalendarDate — календарная дата значения t в его собственном поясе
// ("2006-01-02"). Для значений колонок DATE, которые драйвер возвращает
// полночью UTC: перевод в другой пояс сдвинул бы дату на сутки.
func CalendarDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate разбирает дату "2006-01-02" как полночь в поясе loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("неверный формат даты %q, ожидается YYYY-MM-DD: %w", value, err)
	}
	return parsed, nil
}
