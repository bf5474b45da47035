package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinika/internal/domain"
)

// @Summary Сгенерировать слоты
// @Description Материализует слоты специалиста на диапазоне дат из правил расписания. Повторный запуск не создает дублей
// @Tags Слоты
// @Accept json
// @Produce json
// @Param id path int true "ID специалиста"
// @Param input body domain.GenerateSlotsDTO true "Диапазон дат и длительность слота"
// @Success 201 {object} map[string]interface{} "Количество созданных слотов"
// @Failure 400 {object} errorResponseBody "Ошибка валидации диапазона"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Специалист не найден"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id}/slots/generate [post]
func (h *Handler) generateTimeSlots(c *gin.Context) {
	specialistID, ok := h.authorizeScheduleAccess(c)
	if !ok {
		return
	}

	var req domain.GenerateSlotsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	inserted, err := h.services.Slot.Generate(c.Request.Context(), specialistID, req)
	if err != nil {
		h.logger.Warn("ошибка генерации слотов",
			zap.Int64("specialist_id", specialistID),
			zap.Error(err),
		)
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, gin.H{"inserted": inserted})
}

// @Summary Получить слоты специалиста
// @Description Возвращает слоты специалиста с фильтрацией по статусу и датам
// @Tags Слоты
// @Produce json
// @Param id path int true "ID специалиста"
// @Param status query string false "Статус слота (available, booked, break)"
// @Param date_from query string true "Начальная дата (YYYY-MM-DD)"
// @Param date_to query string true "Конечная дата включительно (YYYY-MM-DD)"
// @Success 200 {array} domain.TimeSlot "Список слотов"
// @Failure 400 {object} errorResponseBody "Неверный формат параметров"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id}/slots [get]
func (h *Handler) getTimeSlots(c *gin.Context) {
	specialistID, ok := h.authorizeScheduleAccess(c)
	if !ok {
		return
	}

	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	filter := domain.TimeSlotFilter{
		SpecialistID: &specialistID,
		From:         &from,
		To:           &to,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.TimeSlotStatus(statusStr)
		if !status.IsValid() {
			badRequestResponse(c, "неверный статус слота")
			return
		}
		filter.Status = &status
	}

	slots, err := h.services.Slot.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка получения слотов", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, slots)
}

// @Summary Получить свободные слоты
// @Description Возвращает свободные для записи слоты специалиста с учетом буферной зоны вокруг занятых слотов
// @Tags Слоты
// @Produce json
// @Param id path int true "ID специалиста"
// @Param date_from query string true "Начальная дата (YYYY-MM-DD)"
// @Param date_to query string true "Конечная дата включительно (YYYY-MM-DD)"
// @Success 200 {array} domain.TimeSlot "Свободные слоты"
// @Failure 400 {object} errorResponseBody "Неверный формат дат"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /specialists/{id}/free-slots [get]
func (h *Handler) getFreeSlots(c *gin.Context) {
	specialistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	slots, err := h.services.Slot.ListFree(c.Request.Context(), specialistID, from, to)
	if err != nil {
		h.logger.Error("ошибка получения свободных слотов",
			zap.Int64("specialist_id", specialistID),
			zap.Error(err),
		)
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, slots)
}

// @Summary Создать перерыв
// @Description Резервирует служебный перерыв в расписании специалиста. Перерыв не предлагается клиентам для записи
// @Tags Слоты
// @Accept json
// @Produce json
// @Param id path int true "ID специалиста"
// @Param input body domain.CreateBreakDTO true "Время перерыва"
// @Success 201 {object} map[string]interface{} "ID созданного перерыва"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 409 {object} errorResponseBody "Интервал уже занят слотом"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id}/breaks [post]
func (h *Handler) createBreak(c *gin.Context) {
	specialistID, ok := h.authorizeScheduleAccess(c)
	if !ok {
		return
	}

	var req domain.CreateBreakDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Slot.CreateBreak(c.Request.Context(), specialistID, req.StartAt, req.EndAt)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Удалить слот
// @Description Удаляет свободный слот или перерыв. Занятый слот удалить нельзя
// @Tags Слоты
// @Produce json
// @Param id path int true "ID специалиста"
// @Param slot_id path int true "ID слота"
// @Success 200 {object} messageResponseType "Сообщение об успешном удалении"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 409 {object} errorResponseBody "Слот занят записью"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id}/slots/{slot_id} [delete]
func (h *Handler) deleteTimeSlot(c *gin.Context) {
	if _, ok := h.authorizeScheduleAccess(c); !ok {
		return
	}

	slotID, err := strconv.ParseInt(c.Param("slot_id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID слота")
		return
	}

	if err := h.services.Slot.Delete(c.Request.Context(), slotID); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "слот удален")
}
