package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"clinika/config"
	"clinika/internal/domain"
	"clinika/internal/notification"
	"clinika/internal/recurrence"
	"clinika/internal/repository"
	"clinika/internal/storage"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
	Notifier    notification.Notifier
	Expander    recurrence.Expander
}

type Services struct {
	User         UserService
	Auth         AuthService
	Specialist   SpecialistService
	Catalog      CatalogService
	Availability AvailabilityService
	Slot         SlotService
	Appointment  AppointmentService
}

func NewServices(deps Deps) *Services {
	availability := NewAvailabilityService(deps.Repos.Availability, deps.Repos.Specialist, deps.Repos.TimeSlot, deps.Expander, deps.Config.Clinic, deps.Logger)
	slot := NewSlotService(deps.Repos.TimeSlot, deps.Repos.Specialist, availability, deps.Config.Clinic, deps.Logger)

	return &Services{
		User:         NewUserService(deps.Repos.User, deps.Repos.Auth, deps.Logger),
		Auth:         NewAuthService(deps.Repos.Auth, deps.Repos.User, deps.Config.JWT, deps.Logger),
		Specialist:   NewSpecialistService(deps.Repos.Specialist, deps.Repos.User, deps.FileStorage, deps.Logger),
		Catalog:      NewCatalogService(deps.Repos.Service, deps.Logger),
		Availability: availability,
		Slot:         slot,
		Appointment:  NewAppointmentService(deps.Repos.Appointment, deps.Repos.TimeSlot, deps.Repos.Service, deps.Repos.User, deps.Notifier, deps.Config.Clinic, deps.Logger),
	}
}

type UserService interface {
	Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterRequest) (int64, error)
	Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}

type SpecialistService interface {
	Create(ctx context.Context, userID int64, dto domain.CreateSpecialistDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Specialist, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Specialist, error)
	Update(ctx context.Context, id int64, dto domain.UpdateSpecialistDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.SpecialistFilter) ([]domain.Specialist, int, error)

	UploadProfilePhoto(ctx context.Context, specialistID int64, photo []byte, filename string) error
	DeleteProfilePhoto(ctx context.Context, specialistID int64) error
}

type CatalogService interface {
	Create(ctx context.Context, dto domain.CreateClinicServiceDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ClinicService, error)
	Update(ctx context.Context, id int64, dto domain.UpdateClinicServiceDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.ClinicServiceFilter) ([]domain.ClinicService, int, error)
}

type AvailabilityService interface {
	CreateRule(ctx context.Context, specialistID int64, dto domain.CreateAvailabilityRuleDTO) (int64, error)
	UpdateRule(ctx context.Context, id int64, dto domain.UpdateAvailabilityRuleDTO) error
	ListRules(ctx context.Context, specialistID int64) ([]domain.AvailabilityRule, error)

	CreateException(ctx context.Context, specialistID int64, dto domain.CreateAvailabilityExceptionDTO) (int64, error)
	DeleteException(ctx context.Context, id int64) error

	CreateHoliday(ctx context.Context, dto domain.CreateClinicHolidayDTO) (int64, error)
	ListHolidays(ctx context.Context, from, to time.Time) ([]domain.ClinicHoliday, error)
	DeleteHoliday(ctx context.Context, id int64) error

	// ExpandWindows разворачивает правила специалиста в окна приема на
	// полуинтервале [from, to) с учетом исключений и праздников клиники.
	ExpandWindows(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.OpenWindow, error)
}

type SlotService interface {
	Generate(ctx context.Context, specialistID int64, dto domain.GenerateSlotsDTO) (int64, error)
	List(ctx context.Context, filter domain.TimeSlotFilter) ([]domain.TimeSlot, error)
	// ListFree возвращает свободные слоты специалиста, отфильтрованные по
	// буферной зоне вокруг занятых слотов.
	ListFree(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.TimeSlot, error)
	CreateBreak(ctx context.Context, specialistID int64, startAt, endAt time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type AppointmentService interface {
	Book(ctx context.Context, clientID int64, dto domain.CreateAppointmentDTO) (*domain.Appointment, error)
	Reschedule(ctx context.Context, id int64, dto domain.RescheduleAppointmentDTO) (*domain.RescheduleResult, error)
	Cancel(ctx context.Context, id int64) error
	Confirm(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
}
