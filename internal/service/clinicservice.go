package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"clinika/internal/domain"
	"clinika/internal/repository"
)

// CatalogServiceImpl управляет каталогом услуг клиники. Удаление услуги —
// деактивация: исторические записи хранят снимок названия и цены и не зависят
// от текущего состояния каталога.
type CatalogServiceImpl struct {
	repo   repository.ClinicServiceRepository
	logger *zap.Logger
}

func NewCatalogService(repo repository.ClinicServiceRepository, logger *zap.Logger) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *CatalogServiceImpl) Create(ctx context.Context, dto domain.CreateClinicServiceDTO) (int64, error) {
	id, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка создания услуги", zap.Error(err))
		return 0, errors.New("ошибка при создании услуги")
	}

	return id, nil
}

func (s *CatalogServiceImpl) GetByID(ctx context.Context, id int64) (*domain.ClinicService, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CatalogServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateClinicServiceDTO) error {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления услуги", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при обновлении услуги")
	}

	return nil
}

func (s *CatalogServiceImpl) Delete(ctx context.Context, id int64) error {
	_, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка удаления услуги", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при удалении услуги")
	}

	return nil
}

func (s *CatalogServiceImpl) List(ctx context.Context, filter domain.ClinicServiceFilter) ([]domain.ClinicService, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	services, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка услуг", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка услуг")
	}

	return services, total, nil
}
