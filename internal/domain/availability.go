package domain

import (
	"time"
)

// AvailabilityRule — повторяющееся окно приема специалиста. Правило задается
// строкой RRULE и настенным временем начала/окончания в часовом поясе
// правила. Отключенные правила (active=false) не разворачиваются.
type AvailabilityRule struct {
	ID           int64     `json:"id"`
	SpecialistID int64     `json:"specialist_id"`
	RRule        string    `json:"rrule"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Timezone     string    `json:"timezone"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateAvailabilityRuleDTO struct {
	RRule     string `json:"rrule" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Timezone  string `json:"timezone,omitempty"`
}

type UpdateAvailabilityRuleDTO struct {
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

// AvailabilityException — переопределение правил на конкретную дату: либо
// весь день недоступен (available=false), либо подставное окно вместо окна
// правила. Частичные вырезы внутри дня не выражаются. Если на одну дату
// создано несколько исключений, действует последнее созданное.
type AvailabilityException struct {
	ID           int64     `json:"id"`
	SpecialistID int64     `json:"specialist_id"`
	Date         time.Time `json:"date"`
	Available    bool      `json:"available"`
	StartTime    *string   `json:"start_time,omitempty"`
	EndTime      *string   `json:"end_time,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateAvailabilityExceptionDTO struct {
	Date      string  `json:"date" binding:"required"`
	Available bool    `json:"available"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// ClinicHoliday — общеклинический выходной. Подавляет разворачивание правил
// всех специалистов на эту дату независимо от их исключений.
type ClinicHoliday struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateClinicHolidayDTO struct {
	Date string `json:"date" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// OpenWindow — материализованное окно приема: абсолютные моменты начала и
// окончания плюс породившее окно правило.
type OpenWindow struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	RuleID  int64     `json:"rule_id"`
}
