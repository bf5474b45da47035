package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clinika/config"
	"clinika/internal/domain"
	"clinika/internal/repository"
	"clinika/pkg/timeutil"
)

type SlotServiceImpl struct {
	repo           repository.TimeSlotRepository
	specialistRepo repository.SpecialistRepository
	availability   AvailabilityService
	clinic         config.ClinicConfig
	logger         *zap.Logger
}

func NewSlotService(
	repo repository.TimeSlotRepository,
	specialistRepo repository.SpecialistRepository,
	availability AvailabilityService,
	clinic config.ClinicConfig,
	logger *zap.Logger,
) *SlotServiceImpl {
	return &SlotServiceImpl{
		repo:           repo,
		specialistRepo: specialistRepo,
		availability:   availability,
		clinic:         clinic,
		logger:         logger,
	}
}

// TileWindow нарезает окно приема на слоты фиксированной длительности встык,
// начиная с начала окна. Последний неполный слот отбрасывается, а не
// обрезается. Буфер между слотами при генерации не вставляется, он
// применяется при чтении фильтром конфликтов.
func TileWindow(window domain.OpenWindow, durationMinutes int) []domain.SlotCandidate {
	if durationMinutes <= 0 {
		return nil
	}

	duration := time.Duration(durationMinutes) * time.Minute
	candidates := make([]domain.SlotCandidate, 0)

	for start := window.StartAt; !start.Add(duration).After(window.EndAt); start = start.Add(duration) {
		candidates = append(candidates, domain.SlotCandidate{
			StartAt: start,
			EndAt:   start.Add(duration),
		})
	}

	return candidates
}

// ConflictsWithBooked — фильтр буферной зоны: кандидат конфликтует с занятым
// слотом, если их интервалы, расширенные на buffer, пересекаются. Кандидат,
// заканчивающийся ровно за buffer минут до занятого слота, конфликтует;
// за buffer+1 минуту — нет. При нулевом буфере фильтр вырождается в строгое
// пересечение интервалов.
func ConflictsWithBooked(candidate domain.SlotCandidate, booked []domain.TimeSlot, buffer time.Duration) bool {
	for _, slot := range booked {
		if buffer <= 0 {
			if candidate.StartAt.Before(slot.EndAt) && candidate.EndAt.After(slot.StartAt) {
				return true
			}
			continue
		}
		if !candidate.StartAt.After(slot.EndAt.Add(buffer)) && !candidate.EndAt.Add(buffer).Before(slot.StartAt) {
			return true
		}
	}
	return false
}

// Generate материализует слоты специалиста на диапазоне дат: окна приема
// разворачиваются из правил и нарезаются встык. Повторный запуск по тому же
// диапазону не создает дублей за счет уникальности тройки
// (specialist_id, start_at, end_at).
func (s *SlotServiceImpl) Generate(ctx context.Context, specialistID int64, dto domain.GenerateSlotsDTO) (int64, error) {
	if _, err := s.specialistRepo.GetByID(ctx, specialistID); err != nil {
		return 0, err
	}

	loc, err := timeutil.LoadLocation(s.clinic.Timezone)
	if err != nil {
		return 0, err
	}

	from, err := timeutil.ParseDate(dto.DateFrom, loc)
	if err != nil {
		return 0, err
	}

	toDate, err := timeutil.ParseDate(dto.DateTo, loc)
	if err != nil {
		return 0, err
	}
	// Верхняя дата включается в диапазон генерации.
	to := timeutil.AddDays(toDate, 1, loc)

	if !to.After(from) {
		return 0, errors.New("дата окончания должна быть не раньше даты начала")
	}
	if to.After(timeutil.AddDays(from, s.clinic.MaxGenerationDays, loc)) {
		return 0, fmt.Errorf("диапазон генерации не может превышать %d дней", s.clinic.MaxGenerationDays)
	}

	duration := dto.DurationMinutes
	if duration == 0 {
		duration = s.clinic.DefaultSlotMinutes
	}
	if duration < 5 || duration > 240 {
		return 0, errors.New("длительность слота должна быть от 5 до 240 минут")
	}

	windows, err := s.availability.ExpandWindows(ctx, specialistID, from, to)
	if err != nil {
		return 0, err
	}

	candidates := make([]domain.SlotCandidate, 0)
	for _, window := range windows {
		candidates = append(candidates, TileWindow(window, duration)...)
	}

	inserted, err := s.repo.CreateBatch(ctx, specialistID, candidates)
	if err != nil {
		s.logger.Error("ошибка сохранения слотов",
			zap.Int64("specialist_id", specialistID),
			zap.Error(err),
		)
		return 0, err
	}

	s.logger.Info("слоты сгенерированы",
		zap.Int64("specialist_id", specialistID),
		zap.Int("candidates", len(candidates)),
		zap.Int64("inserted", inserted),
	)

	return inserted, nil
}

func (s *SlotServiceImpl) List(ctx context.Context, filter domain.TimeSlotFilter) ([]domain.TimeSlot, error) {
	return s.repo.List(ctx, filter)
}

// ListFree возвращает свободные слоты специалиста на полуинтервале [from, to),
// исключая кандидатов, чья буферная зона пересекается с занятыми слотами.
// Буфер читается из конфигурации клиники на каждый запрос.
func (s *SlotServiceImpl) ListFree(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.TimeSlot, error) {
	availableStatus := domain.TimeSlotStatusAvailable
	available, err := s.repo.List(ctx, domain.TimeSlotFilter{
		SpecialistID: &specialistID,
		Status:       &availableStatus,
		From:         &from,
		To:           &to,
	})
	if err != nil {
		return nil, err
	}

	buffer := time.Duration(s.clinic.BufferMinutes) * time.Minute

	// Занятые слоты запрашиваются с запасом в buffer по обе стороны, чтобы
	// кандидаты у границ диапазона фильтровались против соседних броней.
	bookedFrom := from.Add(-buffer)
	bookedTo := to.Add(buffer)
	bookedStatus := domain.TimeSlotStatusBooked
	booked, err := s.repo.List(ctx, domain.TimeSlotFilter{
		SpecialistID: &specialistID,
		Status:       &bookedStatus,
		From:         &bookedFrom,
		To:           &bookedTo,
	})
	if err != nil {
		return nil, err
	}

	free := make([]domain.TimeSlot, 0, len(available))
	for _, slot := range available {
		candidate := domain.SlotCandidate{StartAt: slot.StartAt, EndAt: slot.EndAt}
		if ConflictsWithBooked(candidate, booked, buffer) {
			continue
		}
		free = append(free, slot)
	}

	return free, nil
}

// CreateBreak бронирует служебный перерыв: слот создается сразу в статусе
// break и никогда не предлагается клиентам.
func (s *SlotServiceImpl) CreateBreak(ctx context.Context, specialistID int64, startAt, endAt time.Time) (int64, error) {
	if _, err := s.specialistRepo.GetByID(ctx, specialistID); err != nil {
		return 0, err
	}

	if !endAt.After(startAt) {
		return 0, errors.New("время окончания перерыва должно быть позже времени начала")
	}

	id, err := s.repo.Create(ctx, domain.TimeSlot{
		SpecialistID: specialistID,
		StartAt:      startAt,
		EndAt:        endAt,
		Status:       domain.TimeSlotStatusBreak,
	})
	if err != nil {
		s.logger.Error("ошибка создания перерыва",
			zap.Int64("specialist_id", specialistID),
			zap.Error(err),
		)
		return 0, err
	}

	return id, nil
}

// Delete удаляет свободный слот или перерыв. Забронированный слот удалить
// нельзя: сначала запись отменяется или переносится.
func (s *SlotServiceImpl) Delete(ctx context.Context, id int64) error {
	slot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if slot.Status == domain.TimeSlotStatusBooked {
		return domain.ErrSlotTaken
	}

	return s.repo.Delete(ctx, id)
}
