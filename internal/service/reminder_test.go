package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"clinika/config"
	"clinika/internal/domain"
)

type reminderFixture struct {
	worker   *ReminderWorker
	repo     *mockAppointmentRepo
	userRepo *mockUserRepo
	notifier *mockNotifier
}

func newReminderFixture() *reminderFixture {
	repo := &mockAppointmentRepo{}
	userRepo := &mockUserRepo{}
	notifier := &mockNotifier{}

	cfg := config.ClinicConfig{
		Timezone:            "Europe/Moscow",
		ReminderHoursBefore: 24,
		ReminderInterval:    10 * time.Minute,
	}

	return &reminderFixture{
		worker:   NewReminderWorker(repo, userRepo, notifier, cfg, zap.NewNop()),
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

func dueAppointments(startAt time.Time) []domain.Appointment {
	return []domain.Appointment{
		{ID: 1, ClientID: 10, StartAt: startAt, Status: domain.AppointmentStatusConfirmed},
		{ID: 2, ClientID: 11, StartAt: startAt.Add(time.Hour), Status: domain.AppointmentStatusPending},
	}
}

func TestDispatchDueSendsAndMarks(t *testing.T) {
	f := newReminderFixture()

	startAt := time.Now().Add(3 * time.Hour)
	f.repo.ListDueRemindersFn = func(ctx context.Context, until time.Time, limit int) ([]domain.Appointment, error) {
		if until.Before(time.Now().Add(23 * time.Hour)) {
			t.Errorf("горизонт выборки меньше настроенного: %v", until)
		}
		return dueAppointments(startAt), nil
	}

	f.worker.dispatchDue(context.Background())

	if len(f.notifier.reminded) != 2 {
		t.Fatalf("ожидалось 2 напоминания, отправлено %d", len(f.notifier.reminded))
	}
	if len(f.repo.remindersSent) != 2 {
		t.Fatalf("ожидалось 2 отметки об отправке, сделано %d", len(f.repo.remindersSent))
	}
	if f.repo.remindersSent[0] != 1 || f.repo.remindersSent[1] != 2 {
		t.Errorf("отмечены не те записи: %v", f.repo.remindersSent)
	}
}

func TestDispatchDueDeliveryFailureLeavesUnmarked(t *testing.T) {
	f := newReminderFixture()

	f.repo.ListDueRemindersFn = func(ctx context.Context, until time.Time, limit int) ([]domain.Appointment, error) {
		return dueAppointments(time.Now().Add(2 * time.Hour)), nil
	}
	f.notifier.ReminderErr = errors.New("smtp недоступен")

	f.worker.dispatchDue(context.Background())

	if len(f.repo.remindersSent) != 0 {
		t.Fatalf("недоставленные напоминания не должны отмечаться: %v", f.repo.remindersSent)
	}
}

func TestDispatchDueSkipsUnknownClient(t *testing.T) {
	f := newReminderFixture()

	f.repo.ListDueRemindersFn = func(ctx context.Context, until time.Time, limit int) ([]domain.Appointment, error) {
		return dueAppointments(time.Now().Add(2 * time.Hour)), nil
	}
	f.userRepo.GetByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
		if id == 10 {
			return nil, errors.New("пользователь не найден")
		}
		return &domain.User{ID: id, Email: "client@example.com"}, nil
	}

	f.worker.dispatchDue(context.Background())

	if len(f.notifier.reminded) != 1 || f.notifier.reminded[0] != 2 {
		t.Fatalf("ожидалось напоминание только по записи 2, получено %v", f.notifier.reminded)
	}
	if len(f.repo.remindersSent) != 1 || f.repo.remindersSent[0] != 2 {
		t.Fatalf("отметка должна быть только по записи 2, получено %v", f.repo.remindersSent)
	}
}
