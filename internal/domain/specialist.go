package domain

import (
	"time"
)

// Specialist — врач/специалист клиники, привязан к учетной записи
// пользователя с ролью specialist.
type Specialist struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Specialty       string    `json:"specialty"`
	Description     string    `json:"description,omitempty"`
	Room            string    `json:"room,omitempty"`
	ExperienceYears int       `json:"experience_years"`
	ProfilePhotoURL string    `json:"profile_photo_url,omitempty"`
	User            User      `json:"user"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateSpecialistDTO struct {
	UserID          int64  `json:"user_id,omitempty"`
	Specialty       string `json:"specialty" binding:"required"`
	Description     string `json:"description,omitempty"`
	Room            string `json:"room,omitempty"`
	ExperienceYears int    `json:"experience_years,omitempty" binding:"min=0"`
}

type UpdateSpecialistDTO struct {
	Specialty       *string `json:"specialty"`
	Description     *string `json:"description"`
	Room            *string `json:"room"`
	ExperienceYears *int    `json:"experience_years" binding:"omitempty,min=0"`
}

type SpecialistFilter struct {
	Specialty *string `json:"specialty"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}
