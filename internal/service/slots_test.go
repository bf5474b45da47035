package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"clinika/internal/domain"
)

// mockAvailability подменяет разворачивание правил готовыми окнами.
type mockAvailability struct {
	AvailabilityService
	windows []domain.OpenWindow
}

func (m *mockAvailability) ExpandWindows(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.OpenWindow, error) {
	return m.windows, nil
}

func newSlotFixture(slotRepo *mockTimeSlotRepo, windows []domain.OpenWindow) *SlotServiceImpl {
	return NewSlotService(
		slotRepo,
		&mockSpecialistRepo{},
		&mockAvailability{windows: windows},
		testClinicConfig(),
		zap.NewNop(),
	)
}

func TestTileWindowExactFit(t *testing.T) {
	loc := moscow(t)
	window := domain.OpenWindow{
		StartAt: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
		EndAt:   time.Date(2025, 6, 2, 12, 0, 0, 0, loc),
	}

	tiles := TileWindow(window, 30)

	if len(tiles) != 6 {
		t.Fatalf("ожидалось 6 слотов, получено %d", len(tiles))
	}
	if !tiles[0].StartAt.Equal(window.StartAt) {
		t.Errorf("первый слот начинается в %v, ожидалось %v", tiles[0].StartAt, window.StartAt)
	}
	if !tiles[5].EndAt.Equal(window.EndAt) {
		t.Errorf("последний слот заканчивается в %v, ожидалось %v", tiles[5].EndAt, window.EndAt)
	}
	for i := 1; i < len(tiles); i++ {
		if !tiles[i].StartAt.Equal(tiles[i-1].EndAt) {
			t.Errorf("слоты %d и %d не встык: %v != %v", i-1, i, tiles[i-1].EndAt, tiles[i].StartAt)
		}
	}
}

func TestTileWindowDropsPartialTail(t *testing.T) {
	loc := moscow(t)
	// 100 минут при слоте в 30: три полных слота, хвост в 10 минут отбрасывается.
	window := domain.OpenWindow{
		StartAt: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
		EndAt:   time.Date(2025, 6, 2, 10, 40, 0, 0, loc),
	}

	tiles := TileWindow(window, 30)

	if len(tiles) != 3 {
		t.Fatalf("ожидалось 3 слота, получено %d", len(tiles))
	}
	wantEnd := time.Date(2025, 6, 2, 10, 30, 0, 0, loc)
	if !tiles[2].EndAt.Equal(wantEnd) {
		t.Errorf("последний слот заканчивается в %v, ожидалось %v", tiles[2].EndAt, wantEnd)
	}
}

func TestTileWindowShorterThanSlot(t *testing.T) {
	loc := moscow(t)
	window := domain.OpenWindow{
		StartAt: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
		EndAt:   time.Date(2025, 6, 2, 9, 20, 0, 0, loc),
	}

	if tiles := TileWindow(window, 30); len(tiles) != 0 {
		t.Fatalf("ожидалось 0 слотов, получено %d", len(tiles))
	}
}

func TestTileWindowInvalidDuration(t *testing.T) {
	loc := moscow(t)
	window := domain.OpenWindow{
		StartAt: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
		EndAt:   time.Date(2025, 6, 2, 12, 0, 0, 0, loc),
	}

	if tiles := TileWindow(window, 0); tiles != nil {
		t.Fatalf("ожидался nil, получено %d слотов", len(tiles))
	}
}

func TestConflictsWithBookedZeroBufferTouchAllowed(t *testing.T) {
	loc := moscow(t)
	booked := []domain.TimeSlot{
		{
			StartAt: time.Date(2025, 6, 2, 10, 0, 0, 0, loc),
			EndAt:   time.Date(2025, 6, 2, 10, 30, 0, 0, loc),
			Status:  domain.TimeSlotStatusBooked,
		},
	}

	// Кандидат встык к занятому слоту при нулевом буфере не конфликтует.
	touching := domain.SlotCandidate{
		StartAt: time.Date(2025, 6, 2, 10, 30, 0, 0, loc),
		EndAt:   time.Date(2025, 6, 2, 11, 0, 0, 0, loc),
	}
	if ConflictsWithBooked(touching, booked, 0) {
		t.Error("касание границ при нулевом буфере не должно считаться конфликтом")
	}

	overlapping := domain.SlotCandidate{
		StartAt: time.Date(2025, 6, 2, 10, 15, 0, 0, loc),
		EndAt:   time.Date(2025, 6, 2, 10, 45, 0, 0, loc),
	}
	if !ConflictsWithBooked(overlapping, booked, 0) {
		t.Error("пересечение интервалов должно считаться конфликтом")
	}
}

func TestConflictsWithBookedBufferBoundary(t *testing.T) {
	loc := moscow(t)
	buffer := 10 * time.Minute
	booked := []domain.TimeSlot{
		{
			StartAt: time.Date(2025, 6, 2, 11, 0, 0, 0, loc),
			EndAt:   time.Date(2025, 6, 2, 11, 30, 0, 0, loc),
			Status:  domain.TimeSlotStatusBooked,
		},
	}

	// Кандидат, заканчивающийся ровно за буфер до занятого слота, конфликтует.
	exact := domain.SlotCandidate{
		StartAt: time.Date(2025, 6, 2, 10, 20, 0, 0, loc),
		EndAt:   time.Date(2025, 6, 2, 10, 50, 0, 0, loc),
	}
	if !ConflictsWithBooked(exact, booked, buffer) {
		t.Error("зазор ровно в буфер должен считаться конфликтом")
	}

	// Зазор в буфер плюс минуту уже проходит.
	clear := domain.SlotCandidate{
		StartAt: time.Date(2025, 6, 2, 10, 19, 0, 0, loc),
		EndAt:   time.Date(2025, 6, 2, 10, 49, 0, 0, loc),
	}
	if ConflictsWithBooked(clear, booked, buffer) {
		t.Error("зазор больше буфера не должен считаться конфликтом")
	}

	// Симметрично после занятого слота.
	after := domain.SlotCandidate{
		StartAt: time.Date(2025, 6, 2, 11, 40, 0, 0, loc),
		EndAt:   time.Date(2025, 6, 2, 12, 10, 0, 0, loc),
	}
	if !ConflictsWithBooked(after, booked, buffer) {
		t.Error("зазор ровно в буфер после занятого слота должен считаться конфликтом")
	}
}

func TestGenerateTilesAllWindows(t *testing.T) {
	loc := moscow(t)
	windows := []domain.OpenWindow{
		{
			StartAt: time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
			EndAt:   time.Date(2025, 6, 2, 11, 0, 0, 0, loc),
			RuleID:  1,
		},
		{
			StartAt: time.Date(2025, 6, 3, 9, 0, 0, 0, loc),
			EndAt:   time.Date(2025, 6, 3, 10, 0, 0, 0, loc),
			RuleID:  1,
		},
	}

	var got []domain.SlotCandidate
	slotRepo := &mockTimeSlotRepo{
		CreateBatchFn: func(ctx context.Context, specialistID int64, candidates []domain.SlotCandidate) (int64, error) {
			got = candidates
			return int64(len(candidates)), nil
		},
	}

	svc := newSlotFixture(slotRepo, windows)

	inserted, err := svc.Generate(context.Background(), 1, domain.GenerateSlotsDTO{
		DateFrom: "2025-06-02",
		DateTo:   "2025-06-03",
	})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	// 4 слота из первого окна и 2 из второго при длительности по умолчанию 30.
	if inserted != 6 {
		t.Fatalf("вставлено %d слотов, ожидалось 6", inserted)
	}
	if len(got) != 6 {
		t.Fatalf("в хранилище передано %d кандидатов, ожидалось 6", len(got))
	}
}

func TestGenerateRejectsTooLongRange(t *testing.T) {
	svc := newSlotFixture(&mockTimeSlotRepo{}, nil)

	_, err := svc.Generate(context.Background(), 1, domain.GenerateSlotsDTO{
		DateFrom: "2025-06-02",
		DateTo:   "2025-12-31",
	})
	if err == nil {
		t.Fatal("ожидалась ошибка для диапазона длиннее лимита генерации")
	}
}

func TestGenerateRejectsBadDuration(t *testing.T) {
	svc := newSlotFixture(&mockTimeSlotRepo{}, nil)

	_, err := svc.Generate(context.Background(), 1, domain.GenerateSlotsDTO{
		DateFrom:        "2025-06-02",
		DateTo:          "2025-06-03",
		DurationMinutes: 3,
	})
	if err == nil {
		t.Fatal("ожидалась ошибка для слишком короткого слота")
	}
}

func TestListFreeAppliesBufferFilter(t *testing.T) {
	loc := moscow(t)
	slotRepo := &mockTimeSlotRepo{
		slots: []domain.TimeSlot{
			{
				ID:           1,
				SpecialistID: 1,
				StartAt:      time.Date(2025, 6, 2, 9, 0, 0, 0, loc),
				EndAt:        time.Date(2025, 6, 2, 9, 30, 0, 0, loc),
				Status:       domain.TimeSlotStatusAvailable,
			},
			{
				// Заканчивается ровно за буфер (10 минут) до занятого слота.
				ID:           2,
				SpecialistID: 1,
				StartAt:      time.Date(2025, 6, 2, 10, 20, 0, 0, loc),
				EndAt:        time.Date(2025, 6, 2, 10, 50, 0, 0, loc),
				Status:       domain.TimeSlotStatusAvailable,
			},
			{
				ID:           3,
				SpecialistID: 1,
				StartAt:      time.Date(2025, 6, 2, 11, 0, 0, 0, loc),
				EndAt:        time.Date(2025, 6, 2, 11, 30, 0, 0, loc),
				Status:       domain.TimeSlotStatusBooked,
			},
			{
				ID:           4,
				SpecialistID: 1,
				StartAt:      time.Date(2025, 6, 2, 12, 0, 0, 0, loc),
				EndAt:        time.Date(2025, 6, 2, 12, 30, 0, 0, loc),
				Status:       domain.TimeSlotStatusAvailable,
			},
		},
	}

	svc := newSlotFixture(slotRepo, nil)

	from := time.Date(2025, 6, 2, 0, 0, 0, 0, loc)
	to := time.Date(2025, 6, 3, 0, 0, 0, 0, loc)

	free, err := svc.ListFree(context.Background(), 1, from, to)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if len(free) != 2 {
		t.Fatalf("ожидалось 2 свободных слота, получено %d", len(free))
	}
	if free[0].ID != 1 || free[1].ID != 4 {
		t.Errorf("свободные слоты = [%d, %d], ожидалось [1, 4]", free[0].ID, free[1].ID)
	}
}

func TestCreateBreakRejectsInvertedInterval(t *testing.T) {
	loc := moscow(t)
	svc := newSlotFixture(&mockTimeSlotRepo{}, nil)

	_, err := svc.CreateBreak(context.Background(), 1,
		time.Date(2025, 6, 2, 13, 0, 0, 0, loc),
		time.Date(2025, 6, 2, 12, 0, 0, 0, loc),
	)
	if err == nil {
		t.Fatal("ожидалась ошибка для перерыва с началом позже окончания")
	}
}

func TestCreateBreakStoresBreakStatus(t *testing.T) {
	loc := moscow(t)
	var created domain.TimeSlot
	slotRepo := &mockTimeSlotRepo{
		CreateFn: func(ctx context.Context, slot domain.TimeSlot) (int64, error) {
			created = slot
			return 7, nil
		},
	}

	svc := newSlotFixture(slotRepo, nil)

	id, err := svc.CreateBreak(context.Background(), 1,
		time.Date(2025, 6, 2, 12, 0, 0, 0, loc),
		time.Date(2025, 6, 2, 13, 0, 0, 0, loc),
	)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d, ожидалось 7", id)
	}
	if created.Status != domain.TimeSlotStatusBreak {
		t.Errorf("статус = %s, ожидался break", created.Status)
	}
}

func TestDeleteMissingSlotReturnsNotFound(t *testing.T) {
	svc := newSlotFixture(&mockTimeSlotRepo{}, nil)

	err := svc.Delete(context.Background(), 999)
	if !errors.Is(err, domain.ErrSlotNotFound) {
		t.Fatalf("ожидалась ErrSlotNotFound для несуществующего слота, получено %v", err)
	}
}

func TestDeleteBookedSlotRejected(t *testing.T) {
	loc := moscow(t)
	slotRepo := &mockTimeSlotRepo{
		slots: []domain.TimeSlot{
			{
				ID:           5,
				SpecialistID: 1,
				StartAt:      time.Date(2025, 6, 2, 10, 0, 0, 0, loc),
				EndAt:        time.Date(2025, 6, 2, 10, 30, 0, 0, loc),
				Status:       domain.TimeSlotStatusBooked,
			},
		},
		DeleteFn: func(ctx context.Context, id int64) error {
			t.Fatal("забронированный слот не должен доходить до удаления")
			return nil
		},
	}

	svc := newSlotFixture(slotRepo, nil)

	err := svc.Delete(context.Background(), 5)
	if !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("ожидалась ErrSlotTaken для забронированного слота, получено %v", err)
	}
}
