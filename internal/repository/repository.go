package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"clinika/internal/domain"
)

type Repositories struct {
	User         UserRepository
	Auth         AuthRepository
	Specialist   SpecialistRepository
	Service      ClinicServiceRepository
	Availability AvailabilityRepository
	TimeSlot     TimeSlotRepository
	Appointment  AppointmentRepository
}

func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Auth:         NewAuthRepository(db),
		Specialist:   NewSpecialistRepository(db),
		Service:      NewClinicServiceRepository(db),
		Availability: NewAvailabilityRepository(db),
		TimeSlot:     NewTimeSlotRepository(db),
		Appointment:  NewAppointmentRepository(db),
	}
}

type UserRepository interface {
	Create(ctx context.Context, user domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUserID(ctx context.Context, userID int64) error
}

type SpecialistRepository interface {
	Create(ctx context.Context, userID int64, specialist domain.CreateSpecialistDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Specialist, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Specialist, error)
	Update(ctx context.Context, id int64, specialist domain.UpdateSpecialistDTO) error
	UpdateProfilePhoto(ctx context.Context, id int64, photoURL string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.SpecialistFilter) ([]domain.Specialist, int, error)
}

type ClinicServiceRepository interface {
	Create(ctx context.Context, dto domain.CreateClinicServiceDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ClinicService, error)
	Update(ctx context.Context, id int64, dto domain.UpdateClinicServiceDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.ClinicServiceFilter) ([]domain.ClinicService, int, error)
}

type AvailabilityRepository interface {
	CreateRule(ctx context.Context, specialistID int64, dto domain.CreateAvailabilityRuleDTO, timezone string) (int64, error)
	GetRuleByID(ctx context.Context, id int64) (*domain.AvailabilityRule, error)
	UpdateRule(ctx context.Context, id int64, dto domain.UpdateAvailabilityRuleDTO) error
	ListActiveRules(ctx context.Context, specialistID int64) ([]domain.AvailabilityRule, error)
	ListRules(ctx context.Context, specialistID int64) ([]domain.AvailabilityRule, error)

	CreateException(ctx context.Context, specialistID int64, exc domain.AvailabilityException) (int64, error)
	// ListExceptions возвращает исключения в диапазоне дат, отсортированные по
	// дате создания по возрастанию: при нескольких исключениях на одну дату
	// последнее созданное перекрывает остальные.
	ListExceptions(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.AvailabilityException, error)
	DeleteException(ctx context.Context, id int64) error

	CreateHoliday(ctx context.Context, holiday domain.ClinicHoliday) (int64, error)
	ListHolidays(ctx context.Context, from, to time.Time) ([]domain.ClinicHoliday, error)
	DeleteHoliday(ctx context.Context, id int64) error
}

type TimeSlotRepository interface {
	// CreateBatch сохраняет кандидатов слотов, молча пропуская уже
	// существующие тройки (specialist_id, start_at, end_at). Возвращает число
	// фактически вставленных строк.
	CreateBatch(ctx context.Context, specialistID int64, candidates []domain.SlotCandidate) (int64, error)
	// Create вставляет один слот с заданным статусом (например перерыв).
	Create(ctx context.Context, slot domain.TimeSlot) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error)
	List(ctx context.Context, filter domain.TimeSlotFilter) ([]domain.TimeSlot, error)
	// UpdateStatus — условный переход статуса слота. Возвращает
	// domain.ErrSlotStateChanged, если слот не находится в ожидаемом статусе.
	UpdateStatus(ctx context.Context, id int64, from, to domain.TimeSlotStatus) error
	// ListNearestAvailable — свободные слоты специалиста, отсортированные по
	// близости к моменту around.
	ListNearestAvailable(ctx context.Context, specialistID int64, around time.Time, limit int) ([]domain.TimeSlot, error)
	Delete(ctx context.Context, id int64) error
}

type AppointmentRepository interface {
	// Book — атомарное бронирование: условный перевод слота
	// available→booked и вставка записи в одной транзакции.
	Book(ctx context.Context, params domain.BookingParams) (int64, error)
	// Reschedule — атомарный перенос: освобождение старого слота, захват
	// нового и перенаправление записи, все или ничего.
	Reschedule(ctx context.Context, appointmentID int64, newSlot domain.TimeSlot) error
	// Cancel переводит запись в cancelled и освобождает ее слот в одной
	// транзакции.
	Cancel(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error
	Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error)
	// ListDueReminders — активные записи, начинающиеся не позже until, по
	// которым напоминание еще не отправлялось.
	ListDueReminders(ctx context.Context, until time.Time, limit int) ([]domain.Appointment, error)
	MarkReminderSent(ctx context.Context, id int64, at time.Time) error
}
