package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"

	"clinika/config"
	"clinika/pkg/auth"
	"clinika/pkg/database"
)

// Наполняет базу демонстрационными данными: пользователи, специалисты,
// каталог услуг и правила расписания. Пароль у всех учетных записей —
// "password123".
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("запуск наполнения демо-данными")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	pool, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		log.Fatalf("подключение к БД: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	passwordHash, err := auth.HashPassword("password123")
	if err != nil {
		log.Fatalf("хеширование пароля: %v", err)
	}

	ctx := context.Background()

	if err := seedStaff(ctx, pool, passwordHash); err != nil {
		log.Fatalf("персонал: %v", err)
	}
	if err := seedSpecialists(ctx, pool, passwordHash, 10); err != nil {
		log.Fatalf("специалисты: %v", err)
	}
	if err := seedClients(ctx, pool, passwordHash, 50); err != nil {
		log.Fatalf("клиенты: %v", err)
	}
	if err := seedServices(ctx, pool); err != nil {
		log.Fatalf("услуги: %v", err)
	}

	log.Println("демо-данные загружены")
}

func seedStaff(ctx context.Context, pool *pgxpool.Pool, passwordHash string) error {
	staff := []struct {
		email string
		phone string
		role  string
	}{
		{"admin@clinika.local", "+79000000001", "admin"},
		{"reception@clinika.local", "+79000000002", "reception"},
	}

	for _, s := range staff {
		_, err := pool.Exec(ctx, `
			INSERT INTO users (first_name, last_name, email, phone, password_hash, role, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
			ON CONFLICT (email) DO NOTHING
		`, gofakeit.FirstName(), gofakeit.LastName(), s.email, s.phone, passwordHash, s.role)
		if err != nil {
			return err
		}
	}

	log.Println("персонал создан")
	return nil
}

func seedSpecialists(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) error {
	log.Printf("создание %d специалистов", count)

	specialties := []string{
		"Терапевт",
		"Кардиолог",
		"Невролог",
		"Офтальмолог",
		"Отоларинголог",
		"Эндокринолог",
		"Дерматолог",
		"Педиатр",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		email := fmt.Sprintf("specialist%d@clinika.local", i+1)
		phone := fmt.Sprintf("+7901%07d", i+1)

		var userID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO users (first_name, last_name, middle_name, email, phone, password_hash, role, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, 'specialist', TRUE, NOW(), NOW())
			ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
			RETURNING id
		`, gofakeit.FirstName(), gofakeit.LastName(), gofakeit.MiddleName(), email, phone, passwordHash).Scan(&userID)
		if err != nil {
			return err
		}

		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]

		var specialistID int64
		err = tx.QueryRow(ctx, `
			INSERT INTO specialists (user_id, specialty, description, room, experience_years, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
			RETURNING id
		`, userID, specialty, gofakeit.Sentence(10), fmt.Sprintf("%d", gofakeit.Number(100, 320)), gofakeit.Number(1, 30)).Scan(&specialistID)
		if err != nil {
			return err
		}

		// Будни 9:00-17:00 в поясе клиники.
		_, err = tx.Exec(ctx, `
			INSERT INTO availability_rules (specialist_id, rrule, start_time, end_time, timezone, active, created_at, updated_at)
			VALUES ($1, 'FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR', '09:00', '17:00', $2, TRUE, NOW(), NOW())
		`, specialistID, "Europe/Moscow")
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("специалисты созданы")
	return nil
}

func seedClients(ctx context.Context, pool *pgxpool.Pool, passwordHash string, count int) error {
	log.Printf("создание %d клиентов", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		email := fmt.Sprintf("client%d@example.com", i+1)
		phone := fmt.Sprintf("+7902%07d", i+1)

		_, err := tx.Exec(ctx, `
			INSERT INTO users (first_name, last_name, email, phone, password_hash, role, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 'client', TRUE, NOW(), NOW())
			ON CONFLICT (email) DO NOTHING
		`, gofakeit.FirstName(), gofakeit.LastName(), email, phone, passwordHash)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("клиенты созданы")
	return nil
}

func seedServices(ctx context.Context, pool *pgxpool.Pool) error {
	services := []struct {
		name     string
		price    float64
		duration int
	}{
		{"Первичный прием", 2500, 30},
		{"Повторный прием", 1800, 30},
		{"Расширенная консультация", 4000, 60},
		{"ЭКГ с расшифровкой", 1500, 20},
		{"УЗИ брюшной полости", 3200, 40},
		{"Профилактический осмотр", 2000, 30},
	}

	for _, s := range services {
		_, err := pool.Exec(ctx, `
			INSERT INTO services (name, description, price, duration_minutes, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		`, s.name, gofakeit.Sentence(8), s.price, s.duration)
		if err != nil {
			return err
		}
	}

	log.Println("услуги созданы")
	return nil
}
