package domain

import (
	"time"
)

// ClinicService — услуга клиники. Название и цена фиксируются в записи на
// прием в момент бронирования, поэтому последующие правки каталога не меняют
// историю.
type ClinicService struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Price           float64   `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateClinicServiceDTO struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price" binding:"required,min=0"`
	DurationMinutes int     `json:"duration_minutes" binding:"required,min=5,max=240"`
}

type UpdateClinicServiceDTO struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Price           *float64 `json:"price,omitempty" binding:"omitempty,min=0"`
	DurationMinutes *int     `json:"duration_minutes,omitempty" binding:"omitempty,min=5,max=240"`
	Active          *bool    `json:"active,omitempty"`
}

type ClinicServiceFilter struct {
	Active *bool `json:"active"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
