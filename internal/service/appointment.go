package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"clinika/config"
	"clinika/internal/domain"
	"clinika/internal/notification"
	"clinika/internal/repository"
)

type AppointmentServiceImpl struct {
	repo        repository.AppointmentRepository
	slotRepo    repository.TimeSlotRepository
	serviceRepo repository.ClinicServiceRepository
	userRepo    repository.UserRepository
	notifier    notification.Notifier
	clinic      config.ClinicConfig
	logger      *zap.Logger
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	slotRepo repository.TimeSlotRepository,
	serviceRepo repository.ClinicServiceRepository,
	userRepo repository.UserRepository,
	notifier notification.Notifier,
	clinic config.ClinicConfig,
	logger *zap.Logger,
) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{
		repo:        repo,
		slotRepo:    slotRepo,
		serviceRepo: serviceRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		clinic:      clinic,
		logger:      logger,
	}
}

// Book записывает клиента на свободный слот. Предусловия проверяются до
// транзакции, но гонку за слот разрешает само хранилище: условный перевод
// статуса внутри транзакции бронирования. Специалист записи берется из слота,
// название и цена услуги фиксируются снимком на момент брони.
func (s *AppointmentServiceImpl) Book(ctx context.Context, clientID int64, dto domain.CreateAppointmentDTO) (*domain.Appointment, error) {
	slot, err := s.slotRepo.GetByID(ctx, dto.TimeSlotID)
	if err != nil {
		return nil, err
	}

	// Специалист, присланный клиентом, носит справочный характер: расхождение
	// со слотом — ошибка валидации до начала транзакции.
	if dto.SpecialistID != nil && *dto.SpecialistID != slot.SpecialistID {
		return nil, domain.ErrSpecialistMismatch
	}

	switch slot.Status {
	case domain.TimeSlotStatusAvailable:
	case domain.TimeSlotStatusBooked:
		return nil, domain.ErrSlotTaken
	default:
		return nil, domain.ErrSlotNotBookable
	}

	clinicService, err := s.serviceRepo.GetByID(ctx, dto.ServiceID)
	if err != nil {
		return nil, err
	}
	if !clinicService.Active {
		return nil, domain.ErrServiceInactive
	}

	id, err := s.repo.Book(ctx, domain.BookingParams{
		ClientID:     clientID,
		SpecialistID: slot.SpecialistID,
		ServiceID:    clinicService.ID,
		TimeSlotID:   slot.ID,
		ServiceName:  clinicService.Name,
		Price:        clinicService.Price,
		Reason:       dto.Reason,
		Notes:        dto.Notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			s.logger.Info("слот перехвачен конкурентным запросом",
				zap.Int64("time_slot_id", slot.ID),
				zap.Int64("client_id", clientID),
			)
			return nil, err
		}
		s.logger.Error("ошибка бронирования", zap.Int64("time_slot_id", slot.ID), zap.Error(err))
		return nil, err
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyAfterCommit(ctx, appointment, s.notifier.AppointmentBooked)

	return appointment, nil
}

// Reschedule переносит запись на новый слот. Повторная отправка того же слота
// после успешного переноса — успешный no-op. При проигрыше гонки за новый
// слот возвращается конфликт вместе со списком ближайших свободных слотов
// того же специалиста.
func (s *AppointmentServiceImpl) Reschedule(ctx context.Context, id int64, dto domain.RescheduleAppointmentDTO) (*domain.RescheduleResult, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if appointment.Status == domain.AppointmentStatusCancelled || appointment.Status == domain.AppointmentStatusCompleted {
		return nil, domain.ErrAppointmentFinished
	}

	if appointment.TimeSlotID == dto.TimeSlotID {
		return &domain.RescheduleResult{Appointment: appointment}, nil
	}

	newSlot, err := s.slotRepo.GetByID(ctx, dto.TimeSlotID)
	if err != nil {
		return nil, err
	}

	if newSlot.Status == domain.TimeSlotStatusBreak {
		return nil, domain.ErrSlotNotBookable
	}

	err = s.repo.Reschedule(ctx, id, *newSlot)
	if err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			suggestions := s.suggestAlternatives(ctx, newSlot)
			return &domain.RescheduleResult{Suggestions: suggestions}, err
		}
		s.logger.Error("ошибка переноса записи",
			zap.Int64("appointment_id", id),
			zap.Int64("new_slot_id", newSlot.ID),
			zap.Error(err),
		)
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifyAfterCommit(ctx, updated, s.notifier.AppointmentRescheduled)

	return &domain.RescheduleResult{Appointment: updated}, nil
}

// suggestAlternatives подбирает свободные слоты рядом с запрошенным временем.
// Подбор выполняется вне транзакции и не гарантирует, что слоты доживут до
// следующего запроса.
func (s *AppointmentServiceImpl) suggestAlternatives(ctx context.Context, around *domain.TimeSlot) []domain.TimeSlot {
	suggestions, err := s.slotRepo.ListNearestAvailable(ctx, around.SpecialistID, around.StartAt, s.clinic.SuggestionsLimit)
	if err != nil {
		s.logger.Warn("ошибка подбора альтернативных слотов",
			zap.Int64("specialist_id", around.SpecialistID),
			zap.Error(err),
		)
		return nil
	}
	return suggestions
}

func (s *AppointmentServiceImpl) Cancel(ctx context.Context, id int64) error {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Cancel(ctx, id); err != nil {
		return err
	}

	appointment.Status = domain.AppointmentStatusCancelled
	s.notifyAfterCommit(ctx, appointment, s.notifier.AppointmentCancelled)

	return nil
}

func (s *AppointmentServiceImpl) Confirm(ctx context.Context, id int64) error {
	return s.repo.UpdateStatus(ctx, id, domain.AppointmentStatusPending, domain.AppointmentStatusConfirmed)
}

func (s *AppointmentServiceImpl) Complete(ctx context.Context, id int64) error {
	err := s.repo.UpdateStatus(ctx, id, domain.AppointmentStatusConfirmed, domain.AppointmentStatusCompleted)
	if errors.Is(err, domain.ErrAppointmentFinished) {
		// Неподтвержденную запись тоже можно закрыть по факту визита.
		return s.repo.UpdateStatus(ctx, id, domain.AppointmentStatusPending, domain.AppointmentStatusCompleted)
	}
	return err
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) error {
	return s.repo.Update(ctx, id, dto)
}

func (s *AppointmentServiceImpl) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	appointments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

// notifyAfterCommit отправляет уведомление после коммита транзакции. Сбой
// доставки логируется и не влияет на результат операции.
func (s *AppointmentServiceImpl) notifyAfterCommit(
	ctx context.Context,
	appointment *domain.Appointment,
	send func(context.Context, *domain.Appointment, string) error,
) {
	client, err := s.userRepo.GetByID(ctx, appointment.ClientID)
	if err != nil {
		s.logger.Warn("клиент для уведомления не найден",
			zap.Int64("client_id", appointment.ClientID),
			zap.Error(err),
		)
		return
	}

	if err := send(ctx, appointment, client.Email); err != nil {
		s.logger.Warn("уведомление не доставлено",
			zap.Int64("appointment_id", appointment.ID),
			zap.Error(err),
		)
	}
}
