package domain

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Appointment связывает клиента, специалиста, услугу и ровно один слот
// времени. Специалист записи всегда равен специалисту ее слота. При отмене
// слот освобождается, а строка записи сохраняется в истории со статусом
// cancelled.
type Appointment struct {
	ID             int64             `json:"id"`
	ClientID       int64             `json:"client_id"`
	SpecialistID   int64             `json:"specialist_id"`
	ServiceID      int64             `json:"service_id"`
	TimeSlotID     int64             `json:"time_slot_id"`
	ServiceName    string            `json:"service_name"`
	Price          float64           `json:"price"`
	Reason         string            `json:"reason"`
	Notes          string            `json:"notes,omitempty"`
	Status         AppointmentStatus `json:"status"`
	ReminderSentAt *time.Time        `json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	StartAt        time.Time `json:"start_at,omitempty"`
	EndAt          time.Time `json:"end_at,omitempty"`
	ClientName     string    `json:"client_name,omitempty"`
	SpecialistName string    `json:"specialist_name,omitempty"`
}

type CreateAppointmentDTO struct {
	TimeSlotID   int64  `json:"time_slot_id" binding:"required"`
	ServiceID    int64  `json:"service_id" binding:"required"`
	SpecialistID *int64 `json:"specialist_id,omitempty"`
	// ClientID заполняет регистратура при записи от имени клиента. Для
	// обычного клиента поле игнорируется.
	ClientID *int64 `json:"client_id,omitempty"`
	Reason   string `json:"reason" binding:"required"`
	Notes    string `json:"notes,omitempty"`
}

type RescheduleAppointmentDTO struct {
	TimeSlotID int64 `json:"time_slot_id" binding:"required"`
}

type UpdateAppointmentDTO struct {
	Reason *string `json:"reason,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

type AppointmentFilter struct {
	ClientID     *int64             `json:"client_id"`
	SpecialistID *int64             `json:"specialist_id"`
	Status       *AppointmentStatus `json:"status"`
	StartDate    *time.Time         `json:"start_date"`
	EndDate      *time.Time         `json:"end_date"`
	Limit        int                `json:"limit"`
	Offset       int                `json:"offset"`
}

// BookingParams — параметры транзакции бронирования. Специалист берется из
// слота, название и цена услуги — снимок каталога на момент брони.
type BookingParams struct {
	ClientID     int64
	SpecialistID int64
	ServiceID    int64
	TimeSlotID   int64
	ServiceName  string
	Price        float64
	Reason       string
	Notes        string
}

// RescheduleResult — итог переноса. При конфликте сервис дополнительно
// подбирает альтернативные свободные слоты того же специалиста.
type RescheduleResult struct {
	Appointment *Appointment `json:"appointment,omitempty"`
	Suggestions []TimeSlot   `json:"suggestions,omitempty"`
}
