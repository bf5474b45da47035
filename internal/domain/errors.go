package domain

import "errors"

// Таксономия ошибок ядра планирования. Conflict-ошибки (слот перехвачен
// конкурентным запросом) — ожидаемый исход при нормальной работе, обработчики
// переводят их в 409, остальные — в 404/400/403.
var (
	ErrSlotNotFound        = errors.New("слот времени не найден")
	ErrServiceNotFound     = errors.New("услуга не найдена")
	ErrAppointmentNotFound = errors.New("запись на прием не найдена")
	ErrSpecialistNotFound  = errors.New("специалист не найден")
	ErrRuleNotFound        = errors.New("правило доступности не найдено")

	// ErrSlotTaken — проигрыш гонки за слот: условное обновление статуса
	// затронуло ноль строк.
	ErrSlotTaken = errors.New("слот времени уже занят")
	// ErrSlotStateChanged — состояние слота изменилось между чтением и
	// транзакцией (например, старый слот переносимой записи уже освобожден).
	ErrSlotStateChanged = errors.New("состояние слота времени изменилось, повторите запрос")

	ErrServiceInactive     = errors.New("услуга неактивна и недоступна для записи")
	ErrSpecialistMismatch  = errors.New("указанный специалист не соответствует выбранному слоту")
	ErrAppointmentFinished = errors.New("запись уже отменена или завершена")
	ErrSlotNotBookable     = errors.New("слот недоступен для записи")

	ErrAccessDenied = errors.New("доступ запрещен")
)
