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

type TimeSlotRepo struct {
	db *pgxpool.Pool
}

func NewTimeSlotRepository(db *pgxpool.Pool) *TimeSlotRepo {
	return &TimeSlotRepo{
		db: db,
	}
}

func (r *TimeSlotRepo) CreateBatch(ctx context.Context, specialistID int64, candidates []domain.SlotCandidate) (int64, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO time_slots (specialist_id, start_at, end_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (specialist_id, start_at, end_at) DO NOTHING
	`

	now := time.Now()
	var inserted int64
	for _, candidate := range candidates {
		result, err := tx.Exec(ctx, query,
			specialistID,
			candidate.StartAt,
			candidate.EndAt,
			domain.TimeSlotStatusAvailable,
			now,
		)
		if err != nil {
			return 0, fmt.Errorf("ошибка вставки слота: %w", err)
		}
		inserted += result.RowsAffected()
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка коммита транзакции: %w", err)
	}

	return inserted, nil
}

func (r *TimeSlotRepo) Create(ctx context.Context, slot domain.TimeSlot) (int64, error) {
	query := `
		INSERT INTO time_slots (specialist_id, start_at, end_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (specialist_id, start_at, end_at) DO NOTHING
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		slot.SpecialistID,
		slot.StartAt,
		slot.EndAt,
		slot.Status,
		time.Now(),
	).Scan(&id)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrSlotTaken
		}
		return 0, fmt.Errorf("ошибка создания слота: %w", err)
	}

	return id, nil
}

func (r *TimeSlotRepo) GetByID(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	query := `
		SELECT id, specialist_id, start_at, end_at, status, created_at, updated_at
		FROM time_slots
		WHERE id = $1
	`

	var slot domain.TimeSlot
	err := r.db.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.SpecialistID,
		&slot.StartAt,
		&slot.EndAt,
		&slot.Status,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, fmt.Errorf("ошибка получения слота: %w", err)
	}

	return &slot, nil
}

func (r *TimeSlotRepo) List(ctx context.Context, filter domain.TimeSlotFilter) ([]domain.TimeSlot, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.SpecialistID != nil {
		conditions = append(conditions, fmt.Sprintf("specialist_id = $%d", argCount))
		args = append(args, *filter.SpecialistID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("start_at >= $%d", argCount))
		args = append(args, *filter.From)
		argCount++
	}

	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_at < $%d", argCount))
		args = append(args, *filter.To)
		argCount++
	}

	query := `
		SELECT id, specialist_id, start_at, end_at, status, created_at, updated_at
		FROM time_slots
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_at"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса списка слотов: %w", err)
	}
	defer rows.Close()

	slots := make([]domain.TimeSlot, 0)
	for rows.Next() {
		var slot domain.TimeSlot
		if err := rows.Scan(
			&slot.ID,
			&slot.SpecialistID,
			&slot.StartAt,
			&slot.EndAt,
			&slot.Status,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки слота: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return slots, nil
}

// UpdateStatus переводит слот из статуса from в статус to одним условным
// обновлением. Ноль затронутых строк означает, что слот либо не существует,
// либо уже в другом статусе.
func (r *TimeSlotRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.TimeSlotStatus) error {
	query := `
		UPDATE time_slots
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.db.Exec(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса слота: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSlotStateChanged
	}

	return nil
}

func (r *TimeSlotRepo) ListNearestAvailable(ctx context.Context, specialistID int64, around time.Time, limit int) ([]domain.TimeSlot, error) {
	query := `
		SELECT id, specialist_id, start_at, end_at, status, created_at, updated_at
		FROM time_slots
		WHERE specialist_id = $1 AND status = $2 AND start_at > $3
		ORDER BY ABS(EXTRACT(EPOCH FROM (start_at - $4::timestamptz)))
		LIMIT $5
	`

	rows, err := r.db.Query(ctx, query, specialistID, domain.TimeSlotStatusAvailable, time.Now(), around, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса ближайших слотов: %w", err)
	}
	defer rows.Close()

	slots := make([]domain.TimeSlot, 0)
	for rows.Next() {
		var slot domain.TimeSlot
		if err := rows.Scan(
			&slot.ID,
			&slot.SpecialistID,
			&slot.StartAt,
			&slot.EndAt,
			&slot.Status,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки слота: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return slots, nil
}

func (r *TimeSlotRepo) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM time_slots
		WHERE id = $1 AND status != $2
	`

	result, err := r.db.Exec(ctx, query, id, domain.TimeSlotStatusBooked)
	if err != nil {
		return fmt.Errorf("ошибка удаления слота: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM time_slots WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("ошибка проверки слота: %w", err)
		}
		if !exists {
			return domain.ErrSlotNotFound
		}
		return domain.ErrSlotTaken
	}

	return nil
}
