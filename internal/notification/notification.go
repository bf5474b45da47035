package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"clinika/config"
	"clinika/internal/domain"
)

// Notifier уведомляет клиента об изменениях его записи на прием. Вызывается
// после коммита транзакции: сбой доставки логируется и не откатывает бронь.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appointment *domain.Appointment, recipient string) error
	AppointmentRescheduled(ctx context.Context, appointment *domain.Appointment, recipient string) error
	AppointmentCancelled(ctx context.Context, appointment *domain.Appointment, recipient string) error
	AppointmentReminder(ctx context.Context, appointment *domain.Appointment, recipient string) error
}

type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	copyTo string
	logger *zap.Logger
}

// NewEmailNotifier создает SMTP-уведомитель. copyTo — адрес регистратуры,
// получающий копию каждого письма; пустая строка отключает копии.
func NewEmailNotifier(cfg config.SMTPConfig, copyTo string, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		copyTo: copyTo,
		logger: logger,
	}
}

func (n *EmailNotifier) AppointmentBooked(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	subject := "Вы записаны на прием"
	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВы записаны на прием:\n\nУслуга: %s\nСпециалист: %s\nНачало: %s\nСтоимость: %.2f руб.\n\nЖдем вас в клинике.",
		appointment.ClientName,
		appointment.ServiceName,
		appointment.SpecialistName,
		appointment.StartAt.Format("02.01.2006 15:04"),
		appointment.Price,
	)
	return n.send(recipient, subject, body)
}

func (n *EmailNotifier) AppointmentRescheduled(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	subject := "Ваша запись перенесена"
	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВаша запись перенесена:\n\nУслуга: %s\nСпециалист: %s\nНовое время: %s",
		appointment.ClientName,
		appointment.ServiceName,
		appointment.SpecialistName,
		appointment.StartAt.Format("02.01.2006 15:04"),
	)
	return n.send(recipient, subject, body)
}

func (n *EmailNotifier) AppointmentCancelled(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	subject := "Ваша запись отменена"
	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВаша запись на %s (%s) отменена.",
		appointment.ClientName,
		appointment.StartAt.Format("02.01.2006 15:04"),
		appointment.ServiceName,
	)
	return n.send(recipient, subject, body)
}

func (n *EmailNotifier) AppointmentReminder(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	subject := "Напоминание о приеме"
	body := fmt.Sprintf(
		"Здравствуйте, %s!\n\nНапоминаем о записи на прием:\n\nУслуга: %s\nСпециалист: %s\nНачало: %s\n\nЕсли вы не сможете прийти, пожалуйста, отмените или перенесите запись заранее.",
		appointment.ClientName,
		appointment.ServiceName,
		appointment.SpecialistName,
		appointment.StartAt.Format("02.01.2006 15:04"),
	)
	return n.send(recipient, subject, body)
}

func (n *EmailNotifier) send(recipient, subject, body string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", n.from)
	message.SetHeader("To", recipient)
	if n.copyTo != "" {
		message.SetHeader("Cc", n.copyTo)
	}
	message.SetHeader("Subject", subject)
	message.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(message); err != nil {
		n.logger.Error("ошибка отправки письма",
			zap.String("recipient", recipient),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("ошибка отправки письма: %w", err)
	}

	return nil
}

// LogNotifier пишет уведомления в лог. Используется, когда SMTP не настроен.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) AppointmentBooked(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	n.logger.Info("уведомление о записи",
		zap.Int64("appointment_id", appointment.ID),
		zap.String("recipient", recipient),
		zap.Time("start_at", appointment.StartAt),
	)
	return nil
}

func (n *LogNotifier) AppointmentRescheduled(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	n.logger.Info("уведомление о переносе записи",
		zap.Int64("appointment_id", appointment.ID),
		zap.String("recipient", recipient),
		zap.Time("start_at", appointment.StartAt),
	)
	return nil
}

func (n *LogNotifier) AppointmentCancelled(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	n.logger.Info("уведомление об отмене записи",
		zap.Int64("appointment_id", appointment.ID),
		zap.String("recipient", recipient),
	)
	return nil
}

func (n *LogNotifier) AppointmentReminder(ctx context.Context, appointment *domain.Appointment, recipient string) error {
	n.logger.Info("напоминание о приеме",
		zap.Int64("appointment_id", appointment.ID),
		zap.String("recipient", recipient),
		zap.Time("start_at", appointment.StartAt),
	)
	return nil
}
