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

type AvailabilityRepo struct {
	db *pgxpool.Pool
}

func NewAvailabilityRepository(db *pgxpool.Pool) *AvailabilityRepo {
	return &AvailabilityRepo{
		db: db,
	}
}

func (r *AvailabilityRepo) CreateRule(ctx context.Context, specialistID int64, dto domain.CreateAvailabilityRuleDTO, timezone string) (int64, error) {
	query := `
		INSERT INTO availability_rules (specialist_id, rrule, start_time, end_time, timezone, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, true, $6, $6)
		RETURNING id
	`

	now := time.Now()
	var id int64
	err := r.db.QueryRow(ctx, query,
		specialistID,
		dto.RRule,
		dto.StartTime,
		dto.EndTime,
		timezone,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания правила расписания: %w", err)
	}

	return id, nil
}

func (r *AvailabilityRepo) GetRuleByID(ctx context.Context, id int64) (*domain.AvailabilityRule, error) {
	query := `
		SELECT id, specialist_id, rrule, start_time, end_time, timezone, active, created_at, updated_at
		FROM availability_rules
		WHERE id = $1
	`

	var rule domain.AvailabilityRule
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rule.ID,
		&rule.SpecialistID,
		&rule.RRule,
		&rule.StartTime,
		&rule.EndTime,
		&rule.Timezone,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRuleNotFound
		}
		return nil, fmt.Errorf("ошибка получения правила расписания: %w", err)
	}

	return &rule, nil
}

func (r *AvailabilityRepo) UpdateRule(ctx context.Context, id int64, dto domain.UpdateAvailabilityRuleDTO) error {
	setValues := make([]string, 0)
	args := make([]interface{}, 0)
	argID := 1

	if dto.StartTime != nil {
		setValues = append(setValues, fmt.Sprintf("start_time = $%d", argID))
		args = append(args, *dto.StartTime)
		argID++
	}

	if dto.EndTime != nil {
		setValues = append(setValues, fmt.Sprintf("end_time = $%d", argID))
		args = append(args, *dto.EndTime)
		argID++
	}

	if dto.Active != nil {
		setValues = append(setValues, fmt.Sprintf("active = $%d", argID))
		args = append(args, *dto.Active)
		argID++
	}

	setValues = append(setValues, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE availability_rules
		SET %s
		WHERE id = $%d
	`, strings.Join(setValues, ", "), argID)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления правила расписания: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}

	return nil
}

func (r *AvailabilityRepo) ListActiveRules(ctx context.Context, specialistID int64) ([]domain.AvailabilityRule, error) {
	return r.listRules(ctx, specialistID, true)
}

func (r *AvailabilityRepo) ListRules(ctx context.Context, specialistID int64) ([]domain.AvailabilityRule, error) {
	return r.listRules(ctx, specialistID, false)
}

func (r *AvailabilityRepo) listRules(ctx context.Context, specialistID int64, onlyActive bool) ([]domain.AvailabilityRule, error) {
	query := `
		SELECT id, specialist_id, rrule, start_time, end_time, timezone, active, created_at, updated_at
		FROM availability_rules
		WHERE specialist_id = $1
	`
	if onlyActive {
		query += " AND active = true"
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(ctx, query, specialistID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса правил расписания: %w", err)
	}
	defer rows.Close()

	rules := make([]domain.AvailabilityRule, 0)
	for rows.Next() {
		var rule domain.AvailabilityRule
		if err := rows.Scan(
			&rule.ID,
			&rule.SpecialistID,
			&rule.RRule,
			&rule.StartTime,
			&rule.EndTime,
			&rule.Timezone,
			&rule.Active,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования правила расписания: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return rules, nil
}

func (r *AvailabilityRepo) CreateException(ctx context.Context, specialistID int64, exc domain.AvailabilityException) (int64, error) {
	query := `
		INSERT INTO availability_exceptions (specialist_id, date, available, start_time, end_time, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		specialistID,
		exc.Date,
		exc.Available,
		exc.StartTime,
		exc.EndTime,
		exc.Reason,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания исключения расписания: %w", err)
	}

	return id, nil
}

func (r *AvailabilityRepo) ListExceptions(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.AvailabilityException, error) {
	query := `
		SELECT id, specialist_id, date, available, start_time, end_time, reason, created_at
		FROM availability_exceptions
		WHERE specialist_id = $1 AND date >= $2 AND date < $3
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, specialistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса исключений расписания: %w", err)
	}
	defer rows.Close()

	exceptions := make([]domain.AvailabilityException, 0)
	for rows.Next() {
		var exc domain.AvailabilityException
		if err := rows.Scan(
			&exc.ID,
			&exc.SpecialistID,
			&exc.Date,
			&exc.Available,
			&exc.StartTime,
			&exc.EndTime,
			&exc.Reason,
			&exc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования исключения: %w", err)
		}
		exceptions = append(exceptions, exc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return exceptions, nil
}

func (r *AvailabilityRepo) DeleteException(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM availability_exceptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления исключения расписания: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}

	return nil
}

func (r *AvailabilityRepo) CreateHoliday(ctx context.Context, holiday domain.ClinicHoliday) (int64, error) {
	query := `
		INSERT INTO clinic_holidays (date, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (date) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query, holiday.Date, holiday.Name, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания выходного дня: %w", err)
	}

	return id, nil
}

func (r *AvailabilityRepo) ListHolidays(ctx context.Context, from, to time.Time) ([]domain.ClinicHoliday, error) {
	query := `
		SELECT id, date, name, created_at
		FROM clinic_holidays
		WHERE date >= $1 AND date < $2
		ORDER BY date
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса выходных дней: %w", err)
	}
	defer rows.Close()

	holidays := make([]domain.ClinicHoliday, 0)
	for rows.Next() {
		var holiday domain.ClinicHoliday
		if err := rows.Scan(&holiday.ID, &holiday.Date, &holiday.Name, &holiday.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования выходного дня: %w", err)
		}
		holidays = append(holidays, holiday)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return holidays, nil
}

func (r *AvailabilityRepo) DeleteHoliday(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM clinic_holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления выходного дня: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}

	return nil
}
