package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Expander превращает строку правила повторения в набор календарных дат
// внутри диапазона. Интерфейс позволяет заменить грамматику правил, не
// трогая логику разворачивания расписания.
type Expander interface {
	DatesBetween(rule string, loc *time.Location, from, to time.Time) ([]time.Time, error)
}

// RRuleExpander разбирает правила в стандартном формате RRULE (RFC 5545),
// например "FREQ=WEEKLY;BYDAY=MO,WE,FR".
type RRuleExpander struct{}

func NewRRuleExpander() RRuleExpander {
	return RRuleExpander{}
}

// DatesBetween возвращает полуночи (в поясе loc) всех дат, на которые правило
// срабатывает в [from, to). Даты отсортированы по возрастанию, без дублей.
func (RRuleExpander) DatesBetween(rule string, loc *time.Location, from, to time.Time) ([]time.Time, error) {
	opt, err := rrule.StrToROptionInLocation(strings.TrimPrefix(rule, "RRULE:"), loc)
	if err != nil {
		return nil, fmt.Errorf("неверное правило повторения %q: %w", rule, err)
	}

	if opt.Dtstart.IsZero() {
		local := from.In(loc)
		opt.Dtstart = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("неверное правило повторения %q: %w", rule, err)
	}

	var dates []time.Time
	seen := make(map[string]bool)

	for _, occ := range r.Between(from, to, true) {
		if !occ.Before(to) {
			continue
		}

		local := occ.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

		key := day.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		dates = append(dates, day)
	}

	return dates, nil
}
