package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"clinika/config"
	"clinika/internal/domain"
	"clinika/internal/recurrence"
	"clinika/internal/repository"
	"clinika/pkg/timeutil"
)

type AvailabilityServiceImpl struct {
	repo           repository.AvailabilityRepository
	specialistRepo repository.SpecialistRepository
	slotRepo       repository.TimeSlotRepository
	expander       recurrence.Expander
	clinic         config.ClinicConfig
	logger         *zap.Logger
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	specialistRepo repository.SpecialistRepository,
	slotRepo repository.TimeSlotRepository,
	expander recurrence.Expander,
	clinic config.ClinicConfig,
	logger *zap.Logger,
) *AvailabilityServiceImpl {
	return &AvailabilityServiceImpl{
		repo:           repo,
		specialistRepo: specialistRepo,
		slotRepo:       slotRepo,
		expander:       expander,
		clinic:         clinic,
		logger:         logger,
	}
}

func (s *AvailabilityServiceImpl) CreateRule(ctx context.Context, specialistID int64, dto domain.CreateAvailabilityRuleDTO) (int64, error) {
	if _, err := s.specialistRepo.GetByID(ctx, specialistID); err != nil {
		return 0, err
	}

	timezone := dto.Timezone
	if timezone == "" {
		timezone = s.clinic.Timezone
	}

	loc, err := timeutil.LoadLocation(timezone)
	if err != nil {
		return 0, err
	}

	start, err := timeutil.CombineDateClock(time.Now(), dto.StartTime, loc)
	if err != nil {
		return 0, err
	}
	end, err := timeutil.CombineDateClock(time.Now(), dto.EndTime, loc)
	if err != nil {
		return 0, err
	}
	if !end.After(start) {
		return 0, errors.New("время окончания окна должно быть позже времени начала")
	}

	probeTo := timeutil.AddDays(timeutil.StartOfDay(time.Now(), loc), 366, loc)
	if _, err := s.expander.DatesBetween(dto.RRule, loc, timeutil.StartOfDay(time.Now(), loc), probeTo); err != nil {
		return 0, fmt.Errorf("неверное правило повторения: %w", err)
	}

	id, err := s.repo.CreateRule(ctx, specialistID, dto, timezone)
	if err != nil {
		s.logger.Error("ошибка создания правила расписания", zap.Error(err))
		return 0, err
	}

	return id, nil
}

func (s *AvailabilityServiceImpl) UpdateRule(ctx context.Context, id int64, dto domain.UpdateAvailabilityRuleDTO) error {
	rule, err := s.repo.GetRuleByID(ctx, id)
	if err != nil {
		return err
	}

	loc, err := timeutil.LoadLocation(rule.Timezone)
	if err != nil {
		return err
	}

	startClock := rule.StartTime
	if dto.StartTime != nil {
		startClock = *dto.StartTime
	}
	endClock := rule.EndTime
	if dto.EndTime != nil {
		endClock = *dto.EndTime
	}

	start, err := timeutil.CombineDateClock(time.Now(), startClock, loc)
	if err != nil {
		return err
	}
	end, err := timeutil.CombineDateClock(time.Now(), endClock, loc)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return errors.New("время окончания окна должно быть позже времени начала")
	}

	if err := s.repo.UpdateRule(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления правила расписания", zap.Int64("rule_id", id), zap.Error(err))
		return err
	}

	return nil
}

func (s *AvailabilityServiceImpl) ListRules(ctx context.Context, specialistID int64) ([]domain.AvailabilityRule, error) {
	return s.repo.ListRules(ctx, specialistID)
}

func (s *AvailabilityServiceImpl) CreateException(ctx context.Context, specialistID int64, dto domain.CreateAvailabilityExceptionDTO) (int64, error) {
	if _, err := s.specialistRepo.GetByID(ctx, specialistID); err != nil {
		return 0, err
	}

	loc, err := timeutil.LoadLocation(s.clinic.Timezone)
	if err != nil {
		return 0, err
	}

	date, err := timeutil.ParseDate(dto.Date, loc)
	if err != nil {
		return 0, err
	}

	// Подставное окно задается только парой start/end. Исключение с одним
	// временем из двух не выражает ни целый день, ни подставное окно.
	if dto.Available {
		if (dto.StartTime == nil) != (dto.EndTime == nil) {
			return 0, errors.New("подставное окно требует и время начала, и время окончания")
		}
		if dto.StartTime != nil {
			start, err := timeutil.CombineDateClock(date, *dto.StartTime, loc)
			if err != nil {
				return 0, err
			}
			end, err := timeutil.CombineDateClock(date, *dto.EndTime, loc)
			if err != nil {
				return 0, err
			}
			if !end.After(start) {
				return 0, errors.New("время окончания окна должно быть позже времени начала")
			}
		}
	}

	exc := domain.AvailabilityException{
		SpecialistID: specialistID,
		Date:         date,
		Available:    dto.Available,
		StartTime:    dto.StartTime,
		EndTime:      dto.EndTime,
		Reason:       dto.Reason,
	}

	id, err := s.repo.CreateException(ctx, specialistID, exc)
	if err != nil {
		s.logger.Error("ошибка создания исключения расписания", zap.Error(err))
		return 0, err
	}

	return id, nil
}

func (s *AvailabilityServiceImpl) DeleteException(ctx context.Context, id int64) error {
	return s.repo.DeleteException(ctx, id)
}

func (s *AvailabilityServiceImpl) CreateHoliday(ctx context.Context, dto domain.CreateClinicHolidayDTO) (int64, error) {
	loc, err := timeutil.LoadLocation(s.clinic.Timezone)
	if err != nil {
		return 0, err
	}

	date, err := timeutil.ParseDate(dto.Date, loc)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.CreateHoliday(ctx, domain.ClinicHoliday{Date: date, Name: dto.Name})
	if err != nil {
		s.logger.Error("ошибка создания выходного дня", zap.Error(err))
		return 0, err
	}

	return id, nil
}

func (s *AvailabilityServiceImpl) ListHolidays(ctx context.Context, from, to time.Time) ([]domain.ClinicHoliday, error) {
	return s.repo.ListHolidays(ctx, from, to)
}

func (s *AvailabilityServiceImpl) DeleteHoliday(ctx context.Context, id int64) error {
	return s.repo.DeleteHoliday(ctx, id)
}

// ExpandWindows разворачивает активные правила специалиста в отсортированный
// список окон приема на полуинтервале [from, to).
//
// Порядок обработки каждой сработавшей даты: праздник клиники подавляет дату
// целиком; затем действует исключение (недоступный день или подставное окно);
// окно, пересекающее границу диапазона, отбрасывается целиком, без обрезки;
// окно, строго пересекающееся с занятым слотом, отбрасывается. Окна разных
// правил на одну дату не сливаются.
func (s *AvailabilityServiceImpl) ExpandWindows(ctx context.Context, specialistID int64, from, to time.Time) ([]domain.OpenWindow, error) {
	rules, err := s.repo.ListActiveRules(ctx, specialistID)
	if err != nil {
		return nil, err
	}

	exceptions, err := s.repo.ListExceptions(ctx, specialistID, from, to)
	if err != nil {
		return nil, err
	}

	holidays, err := s.repo.ListHolidays(ctx, from, to)
	if err != nil {
		return nil, err
	}

	bookedStatus := domain.TimeSlotStatusBooked
	booked, err := s.slotRepo.List(ctx, domain.TimeSlotFilter{
		SpecialistID: &specialistID,
		Status:       &bookedStatus,
		From:         &from,
		To:           &to,
	})
	if err != nil {
		return nil, err
	}

	// Исключения идут по возрастанию created_at: последнее созданное на дату
	// перекрывает предыдущие. Ключ — календарная дата значения как оно
	// хранится: перевод в пояс клиники сдвинул бы DATE-полночь на сутки.
	exceptionByDate := make(map[string]domain.AvailabilityException, len(exceptions))
	for _, exc := range exceptions {
		exceptionByDate[timeutil.CalendarDate(exc.Date)] = exc
	}

	holidayDates := make(map[string]struct{}, len(holidays))
	for _, holiday := range holidays {
		holidayDates[timeutil.CalendarDate(holiday.Date)] = struct{}{}
	}

	windows := make([]domain.OpenWindow, 0)

	for _, rule := range rules {
		loc, err := timeutil.LoadLocation(rule.Timezone)
		if err != nil {
			s.logger.Error("правило с неверным часовым поясом пропущено",
				zap.Int64("rule_id", rule.ID),
				zap.String("timezone", rule.Timezone),
				zap.Error(err),
			)
			continue
		}

		dates, err := s.expander.DatesBetween(rule.RRule, loc, from, to)
		if err != nil {
			return nil, fmt.Errorf("ошибка разворачивания правила %d: %w", rule.ID, err)
		}

		for _, date := range dates {
			// Сработавшая дата сопоставляется по своему календарю в поясе
			// правила, а не в поясе клиники.
			if _, ok := holidayDates[timeutil.DateKey(date, loc)]; ok {
				continue
			}

			startClock := rule.StartTime
			endClock := rule.EndTime

			if exc, ok := exceptionByDate[timeutil.DateKey(date, loc)]; ok {
				if !exc.Available {
					continue
				}
				if exc.StartTime != nil && exc.EndTime != nil {
					startClock = *exc.StartTime
					endClock = *exc.EndTime
				}
			}

			startAt, err := timeutil.CombineDateClock(date, startClock, loc)
			if err != nil {
				return nil, err
			}
			endAt, err := timeutil.CombineDateClock(date, endClock, loc)
			if err != nil {
				return nil, err
			}
			if !endAt.After(startAt) {
				continue
			}

			// Окно должно целиком лежать в [from, to): пересекающее границу
			// отбрасывается, а не обрезается.
			if startAt.Before(from) || endAt.After(to) {
				continue
			}

			if overlapsBooked(startAt, endAt, booked) {
				continue
			}

			windows = append(windows, domain.OpenWindow{
				StartAt: startAt,
				EndAt:   endAt,
				RuleID:  rule.ID,
			})
		}
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].StartAt.Before(windows[j].StartAt)
	})

	return windows, nil
}

// overlapsBooked — строгое пересечение интервалов: касание границ пересечением
// не считается.
func overlapsBooked(startAt, endAt time.Time, booked []domain.TimeSlot) bool {
	for _, slot := range booked {
		if startAt.Before(slot.EndAt) && endAt.After(slot.StartAt) {
			return true
		}
	}
	return false
}
