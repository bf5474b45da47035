package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinika/internal/domain"
)

type AppointmentRepo struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepo {
	return &AppointmentRepo{
		db: db,
	}
}

// Book бронирует слот и создает запись на прием в одной транзакции. Захват
// слота выполняется условным обновлением available -> booked: ноль затронутых
// строк означает, что слот перехвачен конкурентным запросом, и транзакция
// откатывается без записи.
func (r *AppointmentRepo) Book(ctx context.Context, params domain.BookingParams) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	claimQuery := `
		UPDATE time_slots
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := tx.Exec(ctx, claimQuery,
		domain.TimeSlotStatusBooked,
		now,
		params.TimeSlotID,
		domain.TimeSlotStatusAvailable,
	)
	if err != nil {
		return 0, fmt.Errorf("ошибка захвата слота: %w", err)
	}

	if result.RowsAffected() == 0 {
		return 0, domain.ErrSlotTaken
	}

	insertQuery := `
		INSERT INTO appointments (client_id, specialist_id, service_id, time_slot_id, service_name, price, reason, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id
	`

	var id int64
	err = tx.QueryRow(ctx, insertQuery,
		params.ClientID,
		params.SpecialistID,
		params.ServiceID,
		params.TimeSlotID,
		params.ServiceName,
		params.Price,
		params.Reason,
		params.Notes,
		domain.AppointmentStatusPending,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания записи на прием: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка коммита транзакции: %w", err)
	}

	return id, nil
}

// Блокировка строки записи сериализует конкурентные переносы, отмены и смены
// статуса одной и той же записи: без нее два параллельных переноса читают один
// time_slot_id, и отставшая транзакция освобождает слот, который к тому
// моменту уже занят другой записью.
const rescheduleLockQuery = `
	SELECT time_slot_id, status
	FROM appointments
	WHERE id = $1
	FOR UPDATE
`

// Reschedule переносит запись на новый слот: старый слот освобождается, новый
// захватывается, запись перенаправляется. Все три шага выполняются в одной
// транзакции, при любом сбое запись остается на старом слоте. Прочитанные под
// блокировкой time_slot_id и статус авторитетны до конца транзакции.
func (r *AppointmentRepo) Reschedule(ctx context.Context, appointmentID int64, newSlot domain.TimeSlot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldSlotID int64
	var status domain.AppointmentStatus
	err = tx.QueryRow(ctx, rescheduleLockQuery, appointmentID).
		Scan(&oldSlotID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAppointmentNotFound
		}
		return fmt.Errorf("ошибка получения записи на прием: %w", err)
	}

	if status != domain.AppointmentStatusPending && status != domain.AppointmentStatusConfirmed {
		return domain.ErrAppointmentFinished
	}

	now := time.Now()

	releaseQuery := `
		UPDATE time_slots
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := tx.Exec(ctx, releaseQuery,
		domain.TimeSlotStatusAvailable,
		now,
		oldSlotID,
		domain.TimeSlotStatusBooked,
	)
	if err != nil {
		return fmt.Errorf("ошибка освобождения старого слота: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSlotStateChanged
	}

	claimQuery := `
		UPDATE time_slots
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err = tx.Exec(ctx, claimQuery,
		domain.TimeSlotStatusBooked,
		now,
		newSlot.ID,
		domain.TimeSlotStatusAvailable,
	)
	if err != nil {
		return fmt.Errorf("ошибка захвата нового слота: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSlotTaken
	}

	updateQuery := `
		UPDATE appointments
		SET time_slot_id = $1, specialist_id = $2, updated_at = $3
		WHERE id = $4
	`

	if _, err = tx.Exec(ctx, updateQuery, newSlot.ID, newSlot.SpecialistID, now, appointmentID); err != nil {
		return fmt.Errorf("ошибка перенаправления записи: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка коммита транзакции: %w", err)
	}

	return nil
}

// Cancel переводит запись в cancelled и освобождает ее слот. Строка записи
// сохраняется в истории клиента.
func (r *AppointmentRepo) Cancel(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	cancelQuery := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status IN ($4, $5)
		RETURNING time_slot_id
	`

	var slotID int64
	err = tx.QueryRow(ctx, cancelQuery,
		domain.AppointmentStatusCancelled,
		now,
		id,
		domain.AppointmentStatusPending,
		domain.AppointmentStatusConfirmed,
	).Scan(&slotID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAppointmentFinished
		}
		return fmt.Errorf("ошибка отмены записи: %w", err)
	}

	releaseQuery := `
		UPDATE time_slots
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	if _, err = tx.Exec(ctx, releaseQuery,
		domain.TimeSlotStatusAvailable,
		now,
		slotID,
		domain.TimeSlotStatusBooked,
	); err != nil {
		return fmt.Errorf("ошибка освобождения слота: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка коммита транзакции: %w", err)
	}

	return nil
}

const appointmentSelect = `
	SELECT a.id, a.client_id, a.specialist_id, a.service_id, a.time_slot_id, a.service_name, a.price, a.reason, a.notes, a.status, a.reminder_sent_at, a.created_at, a.updated_at,
	       ts.start_at, ts.end_at,
	       cu.first_name || ' ' || cu.last_name AS client_name,
	       su.first_name || ' ' || su.last_name AS specialist_name
	FROM appointments a
	JOIN time_slots ts ON a.time_slot_id = ts.id
	JOIN users cu ON a.client_id = cu.id
	JOIN specialists s ON a.specialist_id = s.id
	JOIN users su ON s.user_id = su.id
`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var appointment domain.Appointment
	err := row.Scan(
		&appointment.ID,
		&appointment.ClientID,
		&appointment.SpecialistID,
		&appointment.ServiceID,
		&appointment.TimeSlotID,
		&appointment.ServiceName,
		&appointment.Price,
		&appointment.Reason,
		&appointment.Notes,
		&appointment.Status,
		&appointment.ReminderSentAt,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
		&appointment.StartAt,
		&appointment.EndAt,
		&appointment.ClientName,
		&appointment.SpecialistName,
	)
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := appointmentSelect + ` WHERE a.id = $1`

	appointment, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи на прием: %w", err)
	}

	return appointment, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.db.Exec(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса записи: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrAppointmentFinished
	}

	return nil
}

func (r *AppointmentRepo) Update(ctx context.Context, id int64, dto domain.UpdateAppointmentDTO) error {
	setValues := make([]string, 0)
	args := make([]interface{}, 0)
	argID := 1

	if dto.Reason != nil {
		setValues = append(setValues, fmt.Sprintf("reason = $%d", argID))
		args = append(args, *dto.Reason)
		argID++
	}

	if dto.Notes != nil {
		setValues = append(setValues, fmt.Sprintf("notes = $%d", argID))
		args = append(args, *dto.Notes)
		argID++
	}

	if len(setValues) == 0 {
		return nil
	}

	setValues = append(setValues, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE appointments
		SET %s
		WHERE id = $%d
	`, strings.Join(setValues, ", "), argID)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления записи на прием: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrAppointmentNotFound
	}

	return nil
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	conditions, args := appointmentConditions(filter, "a.")

	query := appointmentSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY ts.start_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки записи: %w", err)
		}
		appointments = append(appointments, *appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return appointments, nil
}

func (r *AppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	conditions, args := appointmentConditions(filter, "a.")

	query := `
		SELECT COUNT(*)
		FROM appointments a
		JOIN time_slots ts ON a.time_slot_id = ts.id
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}

	return count, nil
}

func (r *AppointmentRepo) ListDueReminders(ctx context.Context, until time.Time, limit int) ([]domain.Appointment, error) {
	query := appointmentSelect + `
		WHERE a.status IN ($1, $2)
		  AND a.reminder_sent_at IS NULL
		  AND ts.start_at > $3
		  AND ts.start_at <= $4
		ORDER BY ts.start_at
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.Query(ctx, query,
		domain.AppointmentStatusPending,
		domain.AppointmentStatusConfirmed,
		time.Now(),
		until,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки записи: %w", err)
		}
		appointments = append(appointments, *appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return appointments, nil
}

func (r *AppointmentRepo) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE appointments
		SET reminder_sent_at = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, at, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка отметки напоминания: %w", err)
	}

	return nil
}

func appointmentConditions(filter domain.AppointmentFilter, prefix string) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("%sclient_id = $%d", prefix, argCount))
		args = append(args, *filter.ClientID)
		argCount++
	}

	if filter.SpecialistID != nil {
		conditions = append(conditions, fmt.Sprintf("%sspecialist_id = $%d", prefix, argCount))
		args = append(args, *filter.SpecialistID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("%sstatus = $%d", prefix, argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("ts.start_at >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("ts.start_at <= $%d", argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}

	return conditions, args
}
