package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"clinika/internal/domain"
)

func newAppointmentFixture(
	repo *mockAppointmentRepo,
	slotRepo *mockTimeSlotRepo,
	serviceRepo *mockServiceRepo,
	notifier *mockNotifier,
) *AppointmentServiceImpl {
	if serviceRepo == nil {
		serviceRepo = &mockServiceRepo{
			GetByIDFn: func(ctx context.Context, id int64) (*domain.ClinicService, error) {
				return &domain.ClinicService{ID: id, Name: "Первичный прием", Price: 2500, Active: true}, nil
			},
		}
	}
	if notifier == nil {
		notifier = &mockNotifier{}
	}
	return NewAppointmentService(
		repo,
		slotRepo,
		serviceRepo,
		&mockUserRepo{},
		notifier,
		testClinicConfig(),
		zap.NewNop(),
	)
}

func availableSlot(loc *time.Location) domain.TimeSlot {
	return domain.TimeSlot{
		ID:           100,
		SpecialistID: 5,
		StartAt:      time.Date(2025, 6, 2, 10, 0, 0, 0, loc),
		EndAt:        time.Date(2025, 6, 2, 10, 30, 0, 0, loc),
		Status:       domain.TimeSlotStatusAvailable,
	}
}

func TestBookSpecialistMismatch(t *testing.T) {
	loc := moscow(t)
	slot := availableSlot(loc)
	slotRepo := &mockTimeSlotRepo{slots: []domain.TimeSlot{slot}}

	svc := newAppointmentFixture(&mockAppointmentRepo{}, slotRepo, nil, nil)

	wrongSpecialist := int64(99)
	_, err := svc.Book(context.Background(), 1, domain.CreateAppointmentDTO{
		TimeSlotID:   slot.ID,
		ServiceID:    1,
		SpecialistID: &wrongSpecialist,
		Reason:       "осмотр",
	})
	if !errors.Is(err, domain.ErrSpecialistMismatch) {
		t.Fatalf("ошибка = %v, ожидалась ErrSpecialistMismatch", err)
	}
}

func TestBookTakenSlot(t *testing.T) {
	loc := moscow(t)
	slot := availableSlot(loc)
	slot.Status = domain.TimeSlotStatusBooked
	slotRepo := &mockTimeSlotRepo{slots: []domain.TimeSlot{slot}}

	svc := newAppointmentFixture(&mockAppointmentRepo{}, slotRepo, nil, nil)

	_, err := svc.Book(context.Background(), 1, domain.CreateAppointmentDTO{
		TimeSlotID: slot.ID,
		ServiceID:  1,
		Reason:     "осмотр",
	})
	if !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("ошибка = %v, ожидалась ErrSlotTaken", err)
	}
}

func TestBookBreakSlot(t *testing.T) {
	loc := moscow(t)
	slot := availableSlot(loc)
	slot.Status = domain.TimeSlotStatusBreak
	slotRepo := &mockTimeSlotRepo{slots: []domain.TimeSlot{slot}}

	svc := newAppointmentFixture(&mockAppointmentRepo{}, slotRepo, nil, nil)

	_, err := svc.Book(context.Background(), 1, domain.CreateAppointmentDTO{
		TimeSlotID: slot.ID,
		ServiceID:  1,
		Reason:     "осмотр",
	})
	if !errors.Is(err, domain.ErrSlotNotBookable) {
		t.Fatalf("ошибка = %v, ожидалась ErrSlotNotBookable", err)
	}
}

func TestBookInactiveService(t *testing.T) {
	loc := moscow(t)
	slot := availableSlot(loc)
	slotRepo := &mockTimeSlotRepo{slots: []domain.TimeSlot{slot}}
	serviceRepo := &mockServiceRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*domain.ClinicService, error) {
			return &domain.ClinicService{ID: id, Name: "Архивная услуга", Price: 100, Active: false}, nil
		},
	}

	svc := newAppointmentFixture(&mockAppointmentRepo{}, slotRepo, serviceRepo, nil)

	_, err := svc.Book(context.Background(), 1, domain.CreateAppointmentDTO{
		TimeSlotID: slot.ID,
		ServiceID:  1,
		Reason:     "осмотр",
	})
	if !errors.Is(err, domain.ErrServiceInactive) {
		t.Fatalf("ошибка = %v, ожидалась ErrServiceInactive", err)
	}
}

func TestBookSnapshotsServiceAndSpecialist(t *testing.T) {
	loc := moscow(t)
	slot := availableSlot(loc)
	slotRepo := &mockTimeSlotRepo{slots: []domain.TimeSlot{slot}}

	var params domain.BookingParams
	repo := &mockAppointmentRepo{
		BookFn: func(ctx context.Context, p domain.BookingParams) (int64, error) {
			params = p
			return 42, nil
		},
		GetByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return &domain.Appointment{ID: id, ClientID: 1, Status: domain.AppointmentStatusPending}, nil
		},
	}
	notifier := &mockNotifier{}

	svc := newAppointmentFixture(repo, slotRepo, nil, notifier)

	appointment, err := svc.Book(context.Background(), 1, domain.CreateAppointmentDTO{
		TimeSlotID: slot.ID,
		ServiceID:  1,
		Reason:     "осмотр",
	})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if appointment.ID != 42 {
		t.Errorf("id записи = %d, ожидалось 42", appointment.ID)
	}
	if params.SpecialistID != slot.SpecialistID {
		t.Errorf("специалист = %d, ожидался специалист слота %d", params.SpecialistID, slot.SpecialistID)
	}
	if params.ServiceName != "Первичный прием" || params.Price != 2500 {
		t.Errorf("снимок услуги = (%q, %.2f), ожидалось (Первичный прием, 2500)", params.ServiceName, params.Price)
	}
	if len(notifier.booked) != 1 || notifier.booked[0] != 42 {
		t.Errorf("уведомления о брони = %v, ожидалось [42]", notifier.booked)
	}
}

func TestBookLosesRace(t *testing.T) {
	loc := moscow(t)
	slot := availableSlot(loc)
	slotRepo := &mockTimeSlotRepo{slots: []domain.TimeSlot{slot}}
	repo := &mockAppointmentRepo{
		BookFn: func(ctx context.Context, p domain.BookingParams) (int64, error) {
			return 0, domain.ErrSlotTaken
		},
	}
	notifier := &mockNotifier{}

	svc := newAppointmentFixture(repo, slotRepo, nil, notifier)

	_, err := svc.Book(context.Background(), 1, domain.CreateAppointmentDTO{
		TimeSlotID: slot.ID,
		ServiceID:  1,
		Reason:     "осмотр",
	})
	if !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("ошибка = %v, ожидалась ErrSlotTaken", err)
	}
	if len(notifier.booked) != 0 {
		t.Error("уведомление не должно отправляться при проигрыше гонки")
	}
}

func TestRescheduleIdempotentSameSlot(t *testing.T) {
	repo := &mockAppointmentRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return &domain.Appointment{ID: id, TimeSlotID: 100, Status: domain.AppointmentStatusConfirmed}, nil
		},
		RescheduleFn: func(ctx context.Context, appointmentID int64, newSlot domain.TimeSlot) error {
			t.Fatal("перенос на тот же слот не должен трогать хранилище")
			return nil
		},
	}

	svc := newAppointmentFixture(repo, &mockTimeSlotRepo{}, nil, nil)

	result, err := svc.Reschedule(context.Background(), 1, domain.RescheduleAppointmentDTO{TimeSlotID: 100})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if result.Appointment == nil || result.Appointment.TimeSlotID != 100 {
		t.Fatal("ожидалась запись без изменений")
	}
}

func TestRescheduleFinishedAppointment(t *testing.T) {
	repo := &mockAppointmentRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return &domain.Appointment{ID: id, TimeSlotID: 100, Status: domain.AppointmentStatusCancelled}, nil
		},
	}

	svc := newAppointmentFixture(repo, &mockTimeSlotRepo{}, nil, nil)

	_, err := svc.Reschedule(context.Background(), 1, domain.RescheduleAppointmentDTO{TimeSlotID: 200})
	if !errors.Is(err, domain.ErrAppointmentFinished) {
		t.Fatalf("ошибка = %v, ожидалась ErrAppointmentFinished", err)
	}
}

func TestRescheduleConflictReturnsSuggestions(t *testing.T) {
	loc := moscow(t)
	newSlot := domain.TimeSlot{
		ID:           200,
		SpecialistID: 5,
		StartAt:      time.Date(2025, 6, 3, 10, 0, 0, 0, loc),
		EndAt:        time.Date(2025, 6, 3, 10, 30, 0, 0, loc),
		Status:       domain.TimeSlotStatusAvailable,
	}
	alternatives := []domain.TimeSlot{
		{ID: 201, SpecialistID: 5, Status: domain.TimeSlotStatusAvailable},
		{ID: 202, SpecialistID: 5, Status: domain.TimeSlotStatusAvailable},
	}

	slotRepo := &mockTimeSlotRepo{
		slots: []domain.TimeSlot{newSlot},
		ListNearestAvailableFn: func(ctx context.Context, specialistID int64, around time.Time, limit int) ([]domain.TimeSlot, error) {
			if specialistID != 5 {
				t.Errorf("подбор для специалиста %d, ожидался 5", specialistID)
			}
			return alternatives, nil
		},
	}
	repo := &mockAppointmentRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return &domain.Appointment{ID: id, TimeSlotID: 100, Status: domain.AppointmentStatusConfirmed}, nil
		},
		RescheduleFn: func(ctx context.Context, appointmentID int64, slot domain.TimeSlot) error {
			return domain.ErrSlotTaken
		},
	}

	svc := newAppointmentFixture(repo, slotRepo, nil, nil)

	result, err := svc.Reschedule(context.Background(), 1, domain.RescheduleAppointmentDTO{TimeSlotID: 200})
	if !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("ошибка = %v, ожидалась ErrSlotTaken", err)
	}
	if result == nil || len(result.Suggestions) != 2 {
		t.Fatal("при конфликте ожидался список альтернативных слотов")
	}
}

func TestRescheduleToBreakSlot(t *testing.T) {
	loc := moscow(t)
	breakSlot := domain.TimeSlot{
		ID:           200,
		SpecialistID: 5,
		StartAt:      time.Date(2025, 6, 3, 13, 0, 0, 0, loc),
		EndAt:        time.Date(2025, 6, 3, 14, 0, 0, 0, loc),
		Status:       domain.TimeSlotStatusBreak,
	}
	slotRepo := &mockTimeSlotRepo{slots: []domain.TimeSlot{breakSlot}}
	repo := &mockAppointmentRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return &domain.Appointment{ID: id, TimeSlotID: 100, Status: domain.AppointmentStatusPending}, nil
		},
	}

	svc := newAppointmentFixture(repo, slotRepo, nil, nil)

	_, err := svc.Reschedule(context.Background(), 1, domain.RescheduleAppointmentDTO{TimeSlotID: 200})
	if !errors.Is(err, domain.ErrSlotNotBookable) {
		t.Fatalf("ошибка = %v, ожидалась ErrSlotNotBookable", err)
	}
}

func TestRescheduleSuccessNotifies(t *testing.T) {
	loc := moscow(t)
	newSlot := availableSlot(loc)
	newSlot.ID = 200
	slotRepo := &mockTimeSlotRepo{slots: []domain.TimeSlot{newSlot}}

	slotAfter := int64(100)
	repo := &mockAppointmentRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return &domain.Appointment{ID: id, ClientID: 1, TimeSlotID: slotAfter, Status: domain.AppointmentStatusConfirmed}, nil
		},
		RescheduleFn: func(ctx context.Context, appointmentID int64, slot domain.TimeSlot) error {
			slotAfter = slot.ID
			return nil
		},
	}
	notifier := &mockNotifier{}

	svc := newAppointmentFixture(repo, slotRepo, nil, notifier)

	result, err := svc.Reschedule(context.Background(), 1, domain.RescheduleAppointmentDTO{TimeSlotID: 200})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if result.Appointment == nil || result.Appointment.TimeSlotID != 200 {
		t.Fatal("запись должна указывать на новый слот")
	}
	if len(notifier.rescheduled) != 1 {
		t.Errorf("уведомления о переносе = %v, ожидалось одно", notifier.rescheduled)
	}
}

func TestCancelNotifiesClient(t *testing.T) {
	repo := &mockAppointmentRepo{
		GetByIDFn: func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return &domain.Appointment{ID: id, ClientID: 1, Status: domain.AppointmentStatusConfirmed}, nil
		},
		CancelFn: func(ctx context.Context, id int64) error {
			return nil
		},
	}
	notifier := &mockNotifier{}

	svc := newAppointmentFixture(repo, &mockTimeSlotRepo{}, nil, notifier)

	if err := svc.Cancel(context.Background(), 3); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(notifier.cancelled) != 1 || notifier.cancelled[0] != 3 {
		t.Errorf("уведомления об отмене = %v, ожидалось [3]", notifier.cancelled)
	}
}

func TestCompleteFallsBackToPending(t *testing.T) {
	var transitions [][2]domain.AppointmentStatus
	repo := &mockAppointmentRepo{
		UpdateStatusFn: func(ctx context.Context, id int64, from, to domain.AppointmentStatus) error {
			transitions = append(transitions, [2]domain.AppointmentStatus{from, to})
			if from == domain.AppointmentStatusConfirmed {
				return domain.ErrAppointmentFinished
			}
			return nil
		},
	}

	svc := newAppointmentFixture(repo, &mockTimeSlotRepo{}, nil, nil)

	if err := svc.Complete(context.Background(), 1); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(transitions) != 2 {
		t.Fatalf("переходов статуса %d, ожидалось 2", len(transitions))
	}
	if transitions[1][0] != domain.AppointmentStatusPending || transitions[1][1] != domain.AppointmentStatusCompleted {
		t.Errorf("второй переход = %v, ожидался pending→completed", transitions[1])
	}
}
