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

type SpecialistRepo struct {
	db *pgxpool.Pool
}

func NewSpecialistRepository(db *pgxpool.Pool) *SpecialistRepo {
	return &SpecialistRepo{
		db: db,
	}
}

func (r *SpecialistRepo) Create(ctx context.Context, userID int64, dto domain.CreateSpecialistDTO) (int64, error) {
	query := `
		INSERT INTO specialists (user_id, specialty, description, room, experience_years, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`

	now := time.Now()
	var id int64
	err := r.db.QueryRow(ctx, query,
		userID,
		dto.Specialty,
		dto.Description,
		dto.Room,
		dto.ExperienceYears,
		now,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания специалиста: %w", err)
	}

	return id, nil
}

func (r *SpecialistRepo) GetByID(ctx context.Context, id int64) (*domain.Specialist, error) {
	query := `
		SELECT s.id, s.user_id, s.specialty, s.description, s.room, s.experience_years, s.profile_photo_url, s.created_at, s.updated_at,
		       u.id, u.first_name, u.last_name, u.middle_name, u.email, u.phone, u.role, u.is_active, u.created_at, u.updated_at
		FROM specialists s
		JOIN users u ON s.user_id = u.id
		WHERE s.id = $1
	`

	var specialist domain.Specialist
	err := r.db.QueryRow(ctx, query, id).Scan(
		&specialist.ID,
		&specialist.UserID,
		&specialist.Specialty,
		&specialist.Description,
		&specialist.Room,
		&specialist.ExperienceYears,
		&specialist.ProfilePhotoURL,
		&specialist.CreatedAt,
		&specialist.UpdatedAt,
		&specialist.User.ID,
		&specialist.User.FirstName,
		&specialist.User.LastName,
		&specialist.User.MiddleName,
		&specialist.User.Email,
		&specialist.User.Phone,
		&specialist.User.Role,
		&specialist.User.IsActive,
		&specialist.User.CreatedAt,
		&specialist.User.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSpecialistNotFound
		}
		return nil, fmt.Errorf("ошибка получения специалиста: %w", err)
	}

	return &specialist, nil
}

func (r *SpecialistRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Specialist, error) {
	query := `
		SELECT s.id, s.user_id, s.specialty, s.description, s.room, s.experience_years, s.profile_photo_url, s.created_at, s.updated_at,
		       u.id, u.first_name, u.last_name, u.middle_name, u.email, u.phone, u.role, u.is_active, u.created_at, u.updated_at
		FROM specialists s
		JOIN users u ON s.user_id = u.id
		WHERE s.user_id = $1
	`

	var specialist domain.Specialist
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&specialist.ID,
		&specialist.UserID,
		&specialist.Specialty,
		&specialist.Description,
		&specialist.Room,
		&specialist.ExperienceYears,
		&specialist.ProfilePhotoURL,
		&specialist.CreatedAt,
		&specialist.UpdatedAt,
		&specialist.User.ID,
		&specialist.User.FirstName,
		&specialist.User.LastName,
		&specialist.User.MiddleName,
		&specialist.User.Email,
		&specialist.User.Phone,
		&specialist.User.Role,
		&specialist.User.IsActive,
		&specialist.User.CreatedAt,
		&specialist.User.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSpecialistNotFound
		}
		return nil, fmt.Errorf("ошибка получения специалиста: %w", err)
	}

	return &specialist, nil
}

func (r *SpecialistRepo) Update(ctx context.Context, id int64, dto domain.UpdateSpecialistDTO) error {
	setValues := make([]string, 0)
	args := make([]interface{}, 0)
	argID := 1

	if dto.Specialty != nil {
		setValues = append(setValues, fmt.Sprintf("specialty = $%d", argID))
		args = append(args, *dto.Specialty)
		argID++
	}

	if dto.Description != nil {
		setValues = append(setValues, fmt.Sprintf("description = $%d", argID))
		args = append(args, *dto.Description)
		argID++
	}

	if dto.Room != nil {
		setValues = append(setValues, fmt.Sprintf("room = $%d", argID))
		args = append(args, *dto.Room)
		argID++
	}

	if dto.ExperienceYears != nil {
		setValues = append(setValues, fmt.Sprintf("experience_years = $%d", argID))
		args = append(args, *dto.ExperienceYears)
		argID++
	}

	setValues = append(setValues, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE specialists
		SET %s
		WHERE id = $%d
	`, strings.Join(setValues, ", "), argID)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления специалиста: %w", err)
	}

	return nil
}

func (r *SpecialistRepo) UpdateProfilePhoto(ctx context.Context, id int64, photoURL string) error {
	query := `
		UPDATE specialists
		SET profile_photo_url = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, photoURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления фото специалиста: %w", err)
	}

	return nil
}

func (r *SpecialistRepo) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM specialists
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления специалиста: %w", err)
	}

	return nil
}

func (r *SpecialistRepo) List(ctx context.Context, filter domain.SpecialistFilter) ([]domain.Specialist, int, error) {
	conditions := []string{"u.is_active = true"}
	args := []interface{}{}
	argCount := 1

	if filter.Specialty != nil {
		conditions = append(conditions, fmt.Sprintf("s.specialty = $%d", argCount))
		args = append(args, *filter.Specialty)
		argCount++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM specialists s
		JOIN users u ON s.user_id = u.id
		%s
	`, whereClause)

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета специалистов: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT s.id, s.user_id, s.specialty, s.description, s.room, s.experience_years, s.profile_photo_url, s.created_at, s.updated_at,
		       u.id, u.first_name, u.last_name, u.middle_name, u.email, u.phone, u.role, u.is_active, u.created_at, u.updated_at
		FROM specialists s
		JOIN users u ON s.user_id = u.id
		%s
		ORDER BY u.last_name, u.first_name
		LIMIT $%d OFFSET $%d
	`, whereClause, argCount, argCount+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка запроса списка специалистов: %w", err)
	}
	defer rows.Close()

	specialists := make([]domain.Specialist, 0)
	for rows.Next() {
		var specialist domain.Specialist
		if err := rows.Scan(
			&specialist.ID,
			&specialist.UserID,
			&specialist.Specialty,
			&specialist.Description,
			&specialist.Room,
			&specialist.ExperienceYears,
			&specialist.ProfilePhotoURL,
			&specialist.CreatedAt,
			&specialist.UpdatedAt,
			&specialist.User.ID,
			&specialist.User.FirstName,
			&specialist.User.LastName,
			&specialist.User.MiddleName,
			&specialist.User.Email,
			&specialist.User.Phone,
			&specialist.User.Role,
			&specialist.User.IsActive,
			&specialist.User.CreatedAt,
			&specialist.User.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования строки специалиста: %w", err)
		}
		specialists = append(specialists, specialist)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}

	return specialists, total, nil
}
