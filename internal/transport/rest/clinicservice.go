package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinika/internal/domain"
)

// @Summary Создать услугу
// @Description Добавляет услугу в каталог клиники. Доступно только администраторам
// @Tags Услуги
// @Accept json
// @Produce json
// @Param input body domain.CreateClinicServiceDTO true "Данные услуги"
// @Success 201 {object} map[string]interface{} "ID созданной услуги"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /services [post]
func (h *Handler) createClinicService(c *gin.Context) {
	var req domain.CreateClinicServiceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("ошибка создания услуги", zap.Error(err))
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Получить услугу по ID
// @Description Возвращает информацию об услуге клиники
// @Tags Услуги
// @Produce json
// @Param id path int true "ID услуги"
// @Success 200 {object} domain.ClinicService "Данные услуги"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Услуга не найдена"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /services/{id} [get]
func (h *Handler) getClinicServiceByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	clinicService, err := h.services.Catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, clinicService)
}

// @Summary Получить список услуг
// @Description Возвращает каталог услуг клиники с пагинацией. По умолчанию только активные услуги
// @Tags Услуги
// @Produce json
// @Param limit query int false "Лимит записей на странице (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Param include_inactive query bool false "Включить деактивированные услуги"
// @Success 200 {object} paginatedResponse "Список услуг с пагинацией"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /services [get]
func (h *Handler) getClinicServices(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := domain.ClinicServiceFilter{
		Limit:  limit,
		Offset: offset,
	}

	if c.Query("include_inactive") != "true" {
		active := true
		filter.Active = &active
	}

	services, total, err := h.services.Catalog.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка получения списка услуг", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1
	paginatedSuccessResponse(c, services, total, page, limit)
}

// @Summary Обновить услугу
// @Description Обновляет данные услуги. Уже созданные записи хранят снимок названия и цены и не меняются
// @Tags Услуги
// @Accept json
// @Produce json
// @Param id path int true "ID услуги"
// @Param input body domain.UpdateClinicServiceDTO true "Данные для обновления"
// @Success 200 {object} messageResponseType "Сообщение об успешном обновлении"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Услуга не найдена"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /services/{id} [put]
func (h *Handler) updateClinicService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var req domain.UpdateClinicServiceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Catalog.Update(c.Request.Context(), id, req); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "услуга успешно обновлена")
}

// @Summary Деактивировать услугу
// @Description Убирает услугу из каталога. Новые записи на нее недоступны, история сохраняется
// @Tags Услуги
// @Produce json
// @Param id path int true "ID услуги"
// @Success 200 {object} messageResponseType "Сообщение об успешной деактивации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Услуга не найдена"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /services/{id} [delete]
func (h *Handler) deleteClinicService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Catalog.Delete(c.Request.Context(), id); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "услуга деактивирована")
}
