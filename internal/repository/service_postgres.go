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

type ClinicServiceRepo struct {
	db *pgxpool.Pool
}

func NewClinicServiceRepository(db *pgxpool.Pool) *ClinicServiceRepo {
	return &ClinicServiceRepo{
		db: db,
	}
}

func (r *ClinicServiceRepo) Create(ctx context.Context, dto domain.CreateClinicServiceDTO) (int64, error) {
	query := `
		INSERT INTO services (name, description, price, duration_minutes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, $5, $5)
		RETURNING id
	`

	now := time.Now()
	var id int64
	err := r.db.QueryRow(ctx, query,
		dto.Name,
		dto.Description,
		dto.Price,
		dto.DurationMinutes,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания услуги: %w", err)
	}

	return id, nil
}

func (r *ClinicServiceRepo) GetByID(ctx context.Context, id int64) (*domain.ClinicService, error) {
	query := `
		SELECT id, name, description, price, duration_minutes, active, created_at, updated_at
		FROM services
		WHERE id = $1
	`

	var service domain.ClinicService
	err := r.db.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.DurationMinutes,
		&service.Active,
		&service.CreatedAt,
		&service.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, fmt.Errorf("ошибка получения услуги: %w", err)
	}

	return &service, nil
}

func (r *ClinicServiceRepo) Update(ctx context.Context, id int64, dto domain.UpdateClinicServiceDTO) error {
	setValues := make([]string, 0)
	args := make([]interface{}, 0)
	argID := 1

	if dto.Name != nil {
		setValues = append(setValues, fmt.Sprintf("name = $%d", argID))
		args = append(args, *dto.Name)
		argID++
	}

	if dto.Description != nil {
		setValues = append(setValues, fmt.Sprintf("description = $%d", argID))
		args = append(args, *dto.Description)
		argID++
	}

	if dto.Price != nil {
		setValues = append(setValues, fmt.Sprintf("price = $%d", argID))
		args = append(args, *dto.Price)
		argID++
	}

	if dto.DurationMinutes != nil {
		setValues = append(setValues, fmt.Sprintf("duration_minutes = $%d", argID))
		args = append(args, *dto.DurationMinutes)
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
		UPDATE services
		SET %s
		WHERE id = $%d
	`, strings.Join(setValues, ", "), argID)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления услуги: %w", err)
	}

	return nil
}

func (r *ClinicServiceRepo) Delete(ctx context.Context, id int64) error {
	query := `
		UPDATE services
		SET active = false, updated_at = $1
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка удаления услуги: %w", err)
	}

	return nil
}

func (r *ClinicServiceRepo) List(ctx context.Context, filter domain.ClinicServiceFilter) ([]domain.ClinicService, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argCount))
		args = append(args, *filter.Active)
		argCount++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM services
		%s
	`, whereClause)

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета услуг: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, price, duration_minutes, active, created_at, updated_at
		FROM services
		%s
		ORDER BY name
		LIMIT $%d OFFSET $%d
	`, whereClause, argCount, argCount+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка запроса списка услуг: %w", err)
	}
	defer rows.Close()

	services := make([]domain.ClinicService, 0)
	for rows.Next() {
		var service domain.ClinicService
		if err := rows.Scan(
			&service.ID,
			&service.Name,
			&service.Description,
			&service.Price,
			&service.DurationMinutes,
			&service.Active,
			&service.CreatedAt,
			&service.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования строки услуги: %w", err)
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return services, total, nil
}
