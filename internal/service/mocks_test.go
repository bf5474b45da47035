package service

import (
	"context"
	"errors"
	"time"

	"clinika/internal/domain"
)

var errNotConfigured = errors.New("мок не настроен")

type mockSpecialistRepo struct {
	GetByIDFn func(ctx context.Context, id int64) (*domain.Specialist, error)
}

func (m *mockSpecialistRepo) Create(ctx context.Context, userID int64, dto domain.CreateSpecialistDTO) (int64, error) {
	return 0, errNotConfigured
}

func (m *mockSpecialistRepo) GetByID(ctx context.Context, id int64) (*domain.Specialist, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return &domain.Specialist{ID: id}, nil
}

func (m *mockSpecialistRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Specialist, error) {
	return nil, errNotConfigured
}

func (m *mockSpecialistRepo) Update(ctx context.Context, id int64, dto domain.UpdateSpecialistDTO) error {
	return errNotConfigured
}

func (m *mockSpecialistRepo) UpdateProfilePhoto(ctx context.Context, id int64, photoURL string) error {
	return errNotConfigured
}

func (m *mockSpecialistRepo) Delete(ctx context.Context, id int64) error {
	return errNotConfigured
}

func (m *mockSpecialistRepo) List(ctx context.Context, filter domain.SpecialistFilter) ([]domain.Specialist, int, error) {
	return nil, 0, errNotConfigured
}

type mockAvailabilityRepo struct {
	rules      []domain.AvailabilityRule
	exceptions []domain.AvailabilityException
	holidays   []domain.ClinicHoliday

	CreateRuleFn      func(ctx context.Context, specialistID int64, dto domain.CreateAvailabilityRuleDTO, timezone string) (int64, error)
	CreateExceptionFn func(ctx context.Context, specialistID int64, exc domain.AvailabilityException) (int64, error)
}

func (m *mockAvailabilityRepo) CreateRule(ctx context.Context, specialistID int64, dto domain.CreateAvailabilityRuleDTO, timezone string) (int64, error) {
	if m.CreateRuleFn != nil {
		return m.CreateRuleFn(ctx, specialistID, dto, timezone)
	}
	return 1, nil
}

func (m *mockAvailabilityRepo) GetRuleByID(ctx context.Context, id int64) (*domain.AvailabilityRule, error) {
	for i := range m.rules {
		if m.rules[i].ID == id {
			return &m.rules[i], nil
		}
	}
	return nil, domain.ErrRuleNotFound
}

func (m *mockAvailabilityRepo) UpdateRule(ctx context.Context, id int64, dto domain.UpdateAvailabilityRuleDTO) error {
	return nil
}

func (m *mockAvailabilityRepo) ListActiveRules(ctx context.Context, specialistID int64) ([]domain.AvailabilityRule, error) {
	var active []domain.AvailabilityRule
	for _, rule := range m.rules {
		if rule.Active && rule.SpecialistID == specialistID {
			active = append(active, rule)
		}
	}
	return active, nil
}

func (m *mockAvailabilityRepo) ListRules(ctx context.Context, specialistID int64) ([]domain.AvailabilityRule, error) {
	return m.rules, nil
}

func (m *mockAvailabilityRepo) CreateException(ctx context.Context, specialistID int64, exc domain.AvailabilityException) (int64, error) {
	if m.CreateExceptionFn != nil {
		return m.CreateExceptionFn(ctx, specialistID, exc)
	}
	m.exceptions = append(m.exceptions, exc)
	return int64(len(m.exceptions)), nil
}

func (m *mockAvailabilityRepo) ListExceptions(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.AvailabilityException, error) {
	return m.exceptions, nil
}

func (m *mockAvailabilityRepo) DeleteException(ctx context.Context, id int64) error {
	return nil
}

func (m *mockAvailabilityRepo) CreateHoliday(ctx context.Context, holiday domain.ClinicHoliday) (int64, error) {
	m.holidays = append(m.holidays, holiday)
	return int64(len(m.holidays)), nil
}

func (m *mockAvailabilityRepo) ListHolidays(ctx context.Context, from, to time.Time) ([]domain.ClinicHoliday, error) {
	return m.holidays, nil
}

func (m *mockAvailabilityRepo) DeleteHoliday(ctx context.Context, id int64) error {
	return nil
}

type mockTimeSlotRepo struct {
	slots []domain.TimeSlot

	CreateBatchFn          func(ctx context.Context, specialistID int64, candidates []domain.SlotCandidate) (int64, error)
	CreateFn               func(ctx context.Context, slot domain.TimeSlot) (int64, error)
	GetByIDFn              func(ctx context.Context, id int64) (*domain.TimeSlot, error)
	UpdateStatusFn         func(ctx context.Context, id int64, from, to domain.TimeSlotStatus) error
	ListNearestAvailableFn func(ctx context.Context, specialistID int64, around time.Time, limit int) ([]domain.TimeSlot, error)
	DeleteFn               func(ctx context.Context, id int64) error
}

func (m *mockTimeSlotRepo) CreateBatch(ctx context.Context, specialistID int64, candidates []domain.SlotCandidate) (int64, error) {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, specialistID, candidates)
	}
	return int64(len(candidates)), nil
}

func (m *mockTimeSlotRepo) Create(ctx context.Context, slot domain.TimeSlot) (int64, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, slot)
	}
	return 1, nil
}

func (m *mockTimeSlotRepo) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	for i := range m.slots {
		if m.slots[i].ID == id {
			return &m.slots[i], nil
		}
	}
	return nil, domain.ErrSlotNotFound
}

func (m *mockTimeSlotRepo) List(ctx context.Context, filter domain.TimeSlotFilter) ([]domain.TimeSlot, error) {
	var result []domain.TimeSlot
	for _, slot := range m.slots {
		if filter.SpecialistID != nil && slot.SpecialistID != *filter.SpecialistID {
			continue
		}
		if filter.Status != nil && slot.Status != *filter.Status {
			continue
		}
		if filter.From != nil && slot.StartAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !slot.StartAt.Before(*filter.To) {
			continue
		}
		result = append(result, slot)
	}
	return result, nil
}

func (m *mockTimeSlotRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.TimeSlotStatus) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, from, to)
	}
	return nil
}

func (m *mockTimeSlotRepo) ListNearestAvailable(ctx context.Context, specialistID int64, around time.Time, limit int) ([]domain.TimeSlot, error) {
	if m.ListNearestAvailableFn != nil {
		return m.ListNearestAvailableFn(ctx, specialistID, around, limit)
	}
	return nil, nil
}

func (m *mockTimeSlotRepo) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

type mockAppointmentRepo struct {
	BookFn             func(ctx context.Context, params domain.BookingParams) (int64, error)
	RescheduleFn       func(ctx context.Context, appointmentID int64, newSlot domain.TimeSlot) error
	CancelFn           func(ctx context.Context, id int64) error
	GetByIDFn          func(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatusFn     func(ctx context.Context, id int64, from, to domain.AppointmentStatus) error
	ListDueRemindersFn func(ctx context.Context, until time.Time, limit int) ([]domain.Appointment, error)

	remindersSent []int64
}

func (m *mockAppointmentRepo) Book(ctx context.Context, params domain.BookingParams) (int64, error) {
	if m.BookFn != nil {
		return m.BookFn(ctx, params)
	}
	return 0, errNotConfigured
}

func (m *mockAppointmentRepo) Reschedule(ctx context.Context, appointmentID int64, newSlot domain.TimeSlot) error {
	if m.RescheduleFn != nil {
		return m.RescheduleFn(ctx, appointmentID, newSlot)
	}
	return errNotConfigured
}

func (m *mockAppointmentRepo) Cancel(ctx context.Context, id int64) error {
	if m.CancelFn != nil {
		return m.CancelFn(ctx, id)
	}
	return errNotConfigured
}

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrAppointmentNotFound
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, from, to)
	}
	return errNotConfigured
}

func (m *mockAppointmentRepo) Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) error {
	return errNotConfigured
}

func (m *mockAppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	return nil, errNotConfigured
}

func (m *mockAppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	return 0, errNotConfigured
}

func (m *mockAppointmentRepo) ListDueReminders(ctx context.Context, until time.Time, limit int) ([]domain.Appointment, error) {
	if m.ListDueRemindersFn != nil {
		return m.ListDueRemindersFn(ctx, until, limit)
	}
	return nil, nil
}

func (m *mockAppointmentRepo) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	m.remindersSent = append(m.remindersSent, id)
	return nil
}

type mockServiceRepo struct {
	GetByIDFn func(ctx context.Context, id int64) (*domain.ClinicService, error)
}

func (m *mockServiceRepo) Create(ctx context.Context, dto domain.CreateClinicServiceDTO) (int64, error) {
	return 0, errNotConfigured
}

func (m *mockServiceRepo) GetByID(ctx context.Context, id int64) (*domain.ClinicService, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrServiceNotFound
}

func (m *mockServiceRepo) Update(ctx context.Context, id int64, dto domain.UpdateClinicServiceDTO) error {
	return errNotConfigured
}

func (m *mockServiceRepo) Delete(ctx context.Context, id int64) error {
	return errNotConfigured
}

func (m *mockServiceRepo) List(ctx context.Context, filter domain.ClinicServiceFilter) ([]domain.ClinicService, int, error) {
	return nil, 0, errNotConfigured
}

type mockUserRepo struct {
	GetByIDFn func(ctx context.Context, id int64) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.CreateUserDTO) (int64, error) {
	return 0, errNotConfigured
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return &domain.User{ID: id, Email: "client@example.com"}, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, errNotConfigured
}

func (m *mockUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return nil, errNotConfigured
}

func (m *mockUserRepo) Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error {
	return errNotConfigured
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return errNotConfigured
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	return errNotConfigured
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return nil, errNotConfigured
}

// mockNotifier запоминает отправленные уведомления.
type mockNotifier struct {
	booked      []int64
	rescheduled []int64
	cancelled   []int64
	reminded    []int64

	ReminderErr error
}

func (m *mockNotifier) AppointmentBooked(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	m.booked = append(m.booked, appointment.ID)
	return nil
}

func (m *mockNotifier) AppointmentRescheduled(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	m.rescheduled = append(m.rescheduled, appointment.ID)
	return nil
}

func (m *mockNotifier) AppointmentCancelled(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	m.cancelled = append(m.cancelled, appointment.ID)
	return nil
}

func (m *mockNotifier) AppointmentReminder(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	if m.ReminderErr != nil {
		return m.ReminderErr
	}
	m.reminded = append(m.reminded, appointment.ID)
	return nil
}
