package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"clinika/config"
	"clinika/internal/domain"
	"clinika/internal/recurrence"
)

func testClinicConfig() config.ClinicConfig {
	return config.ClinicConfig{
		Timezone:           "Europe/Moscow",
		BufferMinutes:      10,
		DefaultSlotMinutes: 30,
		SuggestionsLimit:   5,
		MaxGenerationDays:  92,
	}
}

func moscow(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatalf("загрузка часового пояса: %v", err)
	}
	return loc
}

func newAvailabilityFixture(availRepo *mockAvailabilityRepo, slotRepo *mockTimeSlotRepo) *AvailabilityServiceImpl {
	return NewAvailabilityService(
		availRepo,
		&mockSpecialistRepo{},
		slotRepo,
		recurrence.NewRRuleExpander(),
		testClinicConfig(),
		zap.NewNop(),
	)
}

func weekdayRule(id int64, byday, start, end string) domain.AvailabilityRule {
	return domain.AvailabilityRule{
		ID:           id,
		SpecialistID: 1,
		RRule:        "FREQ=WEEKLY;BYDAY=" + byday,
		StartTime:    start,
		EndTime:      end,
		Timezone:     "Europe/Moscow",
		Active:       true,
	}
}

func TestExpandWindowsMaterializesRuleDates(t *testing.T) {
	loc := moscow(t)
	repo := &mockAvailabilityRepo{
		rules: []domain.AvailabilityRule{weekdayRule(1, "MO,WE", "09:00", "12:00")},
	}

	svc := newAvailabilityFixture(repo, &mockTimeSlotRepo{})

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	to := time.Date(2025, 6, 9, 0, 0, 0, 0, loc)

	windows, err := svc.ExpandWindows(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if len(windows) != 2 {
		t.Fatalf("ожидалось 2 окна, получено %d", len(windows))
	}

	wantStart := time.Date(2025, 6, 2, 9, 0, 0, 0, loc)
	if !windows[0].StartAt.Equal(wantStart) {
		t.Errorf("начало первого окна = %v, ожидалось %v", windows[0].StartAt, wantStart)
	}
	wantEnd := time.Date(2025, 6, 2, 12, 0, 0, 0, loc)
	if !windows[0].EndAt.Equal(wantEnd) {
		t.Errorf("конец первого окна = %v, ожидалось %v", windows[0].EndAt, wantEnd)
	}
	if windows[0].RuleID != 1 {
		t.Errorf("RuleID = %d, ожидалось 1", windows[0].RuleID)
	}
}

func TestExpandWindowsHolidaySuppressesDay(t *testing.T) {
	loc := moscow(t)
	repo := &mockAvailabilityRepo{
		rules: []domain.AvailabilityRule{weekdayRule(1, "MO,WE", "09:00", "12:00")},
		holidays: []domain.ClinicHoliday{
			{ID: 1, Date: time.Date(2025, 6, 4, 0, 0, 0, 0, loc), Name: "Санитарный день"},
		},
	}

	svc := newAvailabilityFixture(repo, &mockTimeSlotRepo{})

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	to := time.Date(2025, 6, 9, 0, 0, 0, 0, loc)

	windows, err := svc.ExpandWindows(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if len(windows) != 1 {
		t.Fatalf("ожидалось 1 окно, получено %d", len(windows))
	}
	if windows[0].StartAt.Day() != 2 {
		t.Errorf("осталось окно на день %d, ожидался понедельник 2-е", windows[0].StartAt.Day())
	}
}

func TestExpandWindowsExceptionUnavailableSkipsDay(t *testing.T) {
	loc := moscow(t)
	repo := &mockAvailabilityRepo{
		rules: []domain.AvailabilityRule{weekdayRule(1, "MO,WE", "09:00", "12:00")},
		exceptions: []domain.AvailabilityException{
			{ID: 1, SpecialistID: 1, Date: time.Date(2025, 6, 2, 0, 0, 0, 0, loc), Available: false},
		},
	}

	svc := newAvailabilityFixture(repo, &mockTimeSlotRepo{})

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	to := time.Date(2025, 6, 9, 0, 0, 0, 0, loc)

	windows, err := svc.ExpandWindows(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if len(windows) != 1 {
		t.Fatalf("ожидалось 1 окно, получено %d", len(windows))
	}
	if windows[0].StartAt.Day() != 4 {
		t.Errorf("осталось окно на день %d, ожидалась среда 4-е", windows[0].StartAt.Day())
	}
}

func TestExpandWindowsExceptionSubstitutesWindow(t *testing.T) {
	loc := moscow(t)
	start, end := "14:00", "16:00"
	repo := &mockAvailabilityRepo{
		rules: []domain.AvailabilityRule{weekdayRule(1, "MO", "09:00", "12:00")},
		exceptions: []domain.AvailabilityException{
			{
				ID:           1,
				SpecialistID: 1,
				Date:         time.Date(2025, 6, 2, 0, 0, 0, 0, loc),
				Available:    true,
				StartTime:    &start,
				EndTime:      &end,
			},
		},
	}

	svc := newAvailabilityFixture(repo, &mockTimeSlotRepo{})

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	to := time.Date(2025, 6, 9, 0, 0, 0, 0, loc)

	windows, err := svc.ExpandWindows(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if len(windows) != 1 {
		t.Fatalf("ожидалось 1 окно, получено %d", len(windows))
	}

	wantStart := time.Date(2025, 6, 2, 14, 0, 0, 0, loc)
	wantEnd := time.Date(2025, 6, 2, 16, 0, 0, 0, loc)
	if !windows[0].StartAt.Equal(wantStart) || !windows[0].EndAt.Equal(wantEnd) {
		t.Errorf("окно = [%v, %v], ожидалось [%v, %v]", windows[0].StartAt, windows[0].EndAt, wantStart, wantEnd)
	}
}

func TestExpandWindowsLatestExceptionWins(t *testing.T) {
	loc := moscow(t)
	start, end := "14:00", "16:00"
	// Исключения в порядке created_at по возрастанию: последнее закрывает день.
	repo := &mockAvailabilityRepo{
		rules: []domain.AvailabilityRule{weekdayRule(1, "MO", "09:00", "12:00")},
		exceptions: []domain.AvailabilityException{
			{
				ID:           1,
				SpecialistID: 1,
				Date:         time.Date(2025, 6, 2, 0, 0, 0, 0, loc),
				Available:    true,
				StartTime:    &start,
				EndTime:      &end,
			},
			{
				ID:           2,
				SpecialistID: 1,
				Date:         time.Date(2025, 6, 2, 0, 0, 0, 0, loc),
				Available:    false,
			},
		},
	}

	svc := newAvailabilityFixture(repo, &mockTimeSlotRepo{})

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	to := time.Date(2025, 6, 9, 0, 0, 0, 0, loc)

	windows, err := svc.ExpandWindows(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if len(windows) != 0 {
		t.Fatalf("ожидалось 0 окон, получено %d", len(windows))
	}
}

func TestExpandWindowsDropsWindowCrossingRangeEnd(t *testing.T) {
	loc := moscow(t)
	repo := &mockAvailabilityRepo{
		rules: []domain.AvailabilityRule{weekdayRule(1, "MO,WE", "09:00", "13:00")},
	}

	svc := newAvailabilityFixture(repo, &mockTimeSlotRepo{})

	// Диапазон обрывается в среду в полдень: окно среды 09:00-13:00 пересекает
	// границу и отбрасывается целиком, без обрезки.
	from := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	to := time.Date(2025, 6, 4, 12, 0, 0, 0, loc)

	windows, err := svc.ExpandWindows(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if len(windows) != 1 {
		t.Fatalf("ожидалось 1 окно, получено %d", len(windows))
	}
	if windows[0].StartAt.Day() != 2 {
		t.Errorf("осталось окно на день %d, ожидался понедельник 2-е", windows[0].StartAt.Day())
	}
}

func TestExpandWindowsDropsWindowOverlappingBooked(t *testing.T) {
	loc := moscow(t)
	repo := &mockAvailabilityRepo{
		rules: []domain.AvailabilityRule{weekdayRule(1, "MO,WE", "09:00", "12:00")},
	}
	slotRepo := &mockTimeSlotRepo{
		slots: []domain.TimeSlot{
			{
				ID:           10,
				SpecialistID: 1,
				StartAt:      time.Date(2025, 6, 2, 10, 0, 0, 0, loc),
				EndAt:        time.Date(2025, 6, 2, 10, 30, 0, 0, loc),
				Status:       domain.TimeSlotStatusBooked,
			},
		},
	}

	svc := newAvailabilityFixture(repo, slotRepo)

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	to := time.Date(2025, 6, 9, 0, 0, 0, 0, loc)

	windows, err := svc.ExpandWindows(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if len(windows) != 1 {
		t.Fatalf("ожидалось 1 окно, получено %d", len(windows))
	}
	if windows[0].StartAt.Day() != 4 {
		t.Errorf("осталось окно на день %d, ожидалась среда 4-е", windows[0].StartAt.Day())
	}
}

func TestExpandWindowsSortedAscending(t *testing.T) {
	loc := moscow(t)
	repo := &mockAvailabilityRepo{
		rules: []domain.AvailabilityRule{
			weekdayRule(1, "WE", "09:00", "12:00"),
			weekdayRule(2, "MO", "09:00", "12:00"),
		},
	}

	svc := newAvailabilityFixture(repo, &mockTimeSlotRepo{})

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	to := time.Date(2025, 6, 9, 0, 0, 0, 0, loc)

	windows, err := svc.ExpandWindows(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if len(windows) != 2 {
		t.Fatalf("ожидалось 2 окна, получено %d", len(windows))
	}
	if !windows[0].StartAt.Before(windows[1].StartAt) {
		t.Errorf("окна не отсортированы: %v после %v", windows[0].StartAt, windows[1].StartAt)
	}
	if windows[0].RuleID != 2 {
		t.Errorf("первым должно идти окно правила 2 (понедельник), получено правило %d", windows[0].RuleID)
	}
}

func TestCreateExceptionRejectsHalfWindow(t *testing.T) {
	start := "10:00"
	svc := newAvailabilityFixture(&mockAvailabilityRepo{}, &mockTimeSlotRepo{})

	_, err := svc.CreateException(context.Background(), 1, domain.CreateAvailabilityExceptionDTO{
		Date:      "2025-06-02",
		Available: true,
		StartTime: &start,
	})
	if err == nil {
		t.Fatal("ожидалась ошибка для подставного окна без времени окончания")
	}
}

func TestCreateRuleRejectsInvertedWindow(t *testing.T) {
	svc := newAvailabilityFixture(&mockAvailabilityRepo{}, &mockTimeSlotRepo{})

	_, err := svc.CreateRule(context.Background(), 1, domain.CreateAvailabilityRuleDTO{
		RRule:     "FREQ=WEEKLY;BYDAY=MO",
		StartTime: "12:00",
		EndTime:   "09:00",
	})
	if err == nil {
		t.Fatal("ожидалась ошибка для окна с началом позже окончания")
	}
}

func TestCreateRuleRejectsInvalidRRule(t *testing.T) {
	svc := newAvailabilityFixture(&mockAvailabilityRepo{}, &mockTimeSlotRepo{})

	_, err := svc.CreateRule(context.Background(), 1, domain.CreateAvailabilityRuleDTO{
		RRule:     "FREQ=SOMETIMES",
		StartTime: "09:00",
		EndTime:   "12:00",
	})
	if err == nil {
		t.Fatal("ожидалась ошибка для неразбираемого правила повторения")
	}
}

func TestExpandWindowsHolidaySuppressesRuleInOtherTimezone(t *testing.T) {
	mskLoc := moscow(t)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("загрузка часового пояса: %v", err)
	}

	repo := &mockAvailabilityRepo{
		rules: []domain.AvailabilityRule{
			{
				ID:           1,
				SpecialistID: 1,
				RRule:        "FREQ=WEEKLY;BYDAY=MO",
				StartTime:    "09:00",
				EndTime:      "12:00",
				Timezone:     "Asia/Tokyo",
				Active:       true,
			},
		},
		holidays: []domain.ClinicHoliday{
			// Колонки DATE драйвер возвращает полночью UTC.
			{ID: 1, Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Name: "Санитарный день"},
		},
	}

	svc := newAvailabilityFixture(repo, &mockTimeSlotRepo{})

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, mskLoc)
	to := time.Date(2025, 6, 8, 0, 0, 0, 0, mskLoc)

	windows, err := svc.ExpandWindows(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if len(windows) != 0 {
		t.Fatalf("праздник должен подавить понедельник в поясе правила, получено %d окон, первое [%v, %v]",
			len(windows), windows[0].StartAt.In(tokyo), windows[0].EndAt.In(tokyo))
	}
}

func TestExpandWindowsExceptionMatchesWesternClinic(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Fatalf("загрузка часового пояса: %v", err)
	}

	repo := &mockAvailabilityRepo{
		rules: []domain.AvailabilityRule{
			{
				ID:           1,
				SpecialistID: 1,
				RRule:        "FREQ=WEEKLY;BYDAY=MO",
				StartTime:    "09:00",
				EndTime:      "12:00",
				Timezone:     "America/Bogota",
				Active:       true,
			},
		},
		exceptions: []domain.AvailabilityException{
			// Полночь UTC — это еще предыдущий вечер в Боготе: исключение
			// обязано сопоставляться по календарной дате значения, а не по
			// моменту в поясе клиники.
			{ID: 1, SpecialistID: 1, Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Available: false},
		},
	}

	cfg := testClinicConfig()
	cfg.Timezone = "America/Bogota"
	svc := NewAvailabilityService(
		repo,
		&mockSpecialistRepo{},
		&mockTimeSlotRepo{},
		recurrence.NewRRuleExpander(),
		cfg,
		zap.NewNop(),
	)

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, bogota)
	to := time.Date(2025, 6, 9, 0, 0, 0, 0, bogota)

	windows, err := svc.ExpandWindows(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if len(windows) != 0 {
		t.Fatalf("исключение должно закрыть понедельник, получено %d окон", len(windows))
	}
}
