package repository

import (
	"strings"
	"testing"
)

// Перенос обязан читать запись под блокировкой строки: иначе два параллельных
// переноса одной записи читают один и тот же time_slot_id, и отставшая
// транзакция освобождает слот, успевший перейти к другой записи.
func TestRescheduleReadsAppointmentUnderRowLock(t *testing.T) {
	if !strings.Contains(rescheduleLockQuery, "FOR UPDATE") {
		t.Fatal("чтение записи перед переносом должно блокировать строку (FOR UPDATE)")
	}
	if !strings.Contains(rescheduleLockQuery, "time_slot_id") {
		t.Fatal("под блокировкой должен читаться time_slot_id: он авторитетен для освобождения старого слота")
	}
}
