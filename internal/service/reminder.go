package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"clinika/config"
	"clinika/internal/notification"
	"clinika/internal/repository"
)

const reminderBatchLimit = 100

// ReminderWorker периодически рассылает напоминания по предстоящим записям.
// Каждая запись получает не больше одного напоминания: отправка отмечается в
// reminder_sent_at, ошибка доставки логируется и повторяется на следующем
// тике.
type ReminderWorker struct {
	repo     repository.AppointmentRepository
	userRepo repository.UserRepository
	notifier notification.Notifier
	clinic   config.ClinicConfig
	logger   *zap.Logger
}

func NewReminderWorker(
	repo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	notifier notification.Notifier,
	clinic config.ClinicConfig,
	logger *zap.Logger,
) *ReminderWorker {
	return &ReminderWorker{
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
		clinic:   clinic,
		logger:   logger,
	}
}

// Run блокируется до отмены контекста. Запускается в отдельной горутине.
func (w *ReminderWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.clinic.ReminderInterval)
	defer ticker.Stop()

	w.logger.Info("рассылка напоминаний запущена",
		zap.Duration("interval", w.clinic.ReminderInterval),
		zap.Int("hours_before", w.clinic.ReminderHoursBefore),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("рассылка напоминаний остановлена")
			return
		case <-ticker.C:
			w.dispatchDue(ctx)
		}
	}
}

func (w *ReminderWorker) dispatchDue(ctx context.Context) {
	until := time.Now().Add(time.Duration(w.clinic.ReminderHoursBefore) * time.Hour)

	due, err := w.repo.ListDueReminders(ctx, until, reminderBatchLimit)
	if err != nil {
		w.logger.Error("ошибка выборки записей для напоминаний", zap.Error(err))
		return
	}

	for i := range due {
		appointment := &due[i]

		client, err := w.userRepo.GetByID(ctx, appointment.ClientID)
		if err != nil {
			w.logger.Warn("клиент для напоминания не найден",
				zap.Int64("client_id", appointment.ClientID),
				zap.Error(err),
			)
			continue
		}

		if err := w.notifier.AppointmentReminder(ctx, appointment, client.Email); err != nil {
			w.logger.Warn("напоминание не доставлено",
				zap.Int64("appointment_id", appointment.ID),
				zap.Error(err),
			)
			continue
		}

		if err := w.repo.MarkReminderSent(ctx, appointment.ID, time.Now()); err != nil {
			w.logger.Error("ошибка отметки напоминания",
				zap.Int64("appointment_id", appointment.ID),
				zap.Error(err),
			)
		}
	}
}
