package domain

import (
	"time"
)

type TimeSlotStatus string

const (
	TimeSlotStatusAvailable TimeSlotStatus = "available"
	TimeSlotStatusBooked    TimeSlotStatus = "booked"
	TimeSlotStatusBreak     TimeSlotStatus = "break"
)

func (s TimeSlotStatus) IsValid() bool {
	return s == TimeSlotStatusAvailable || s == TimeSlotStatusBooked || s == TimeSlotStatusBreak
}

// TimeSlot — атомарная единица записи. Тройка (specialist_id, start_at,
// end_at) уникальна: повторная генерация слотов по тому же окну не создает
// дублей. Переходы статуса выполняются только условным обновлением в
// хранилище.
type TimeSlot struct {
	ID           int64          `json:"id"`
	SpecialistID int64          `json:"specialist_id"`
	StartAt      time.Time      `json:"start_at"`
	EndAt        time.Time      `json:"end_at"`
	Status       TimeSlotStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type TimeSlotFilter struct {
	SpecialistID *int64          `json:"specialist_id"`
	Status       *TimeSlotStatus `json:"status"`
	From         *time.Time      `json:"from"`
	To           *time.Time      `json:"to"`
	Limit        int             `json:"limit"`
	Offset       int             `json:"offset"`
}

type GenerateSlotsDTO struct {
	DateFrom        string `json:"date_from" binding:"required"`
	DateTo          string `json:"date_to" binding:"required"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

type CreateBreakDTO struct {
	StartAt time.Time `json:"start_at" binding:"required"`
	EndAt   time.Time `json:"end_at" binding:"required"`
}

// SlotCandidate — кандидат слота до сохранения, результат нарезки окна.
type SlotCandidate struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}
