package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinika/internal/domain"
)

// @Summary Записаться на прием
// @Description Бронирует свободный слот и создает запись на прием. Регистратура может записать клиента, указав client_id
// @Tags Записи
// @Accept json
// @Produce json
// @Param input body domain.CreateAppointmentDTO true "Данные для записи на прием"
// @Success 201 {object} domain.Appointment "Созданная запись"
// @Failure 400 {object} errorResponseBody "Ошибка валидации, услуга неактивна или специалист не соответствует слоту"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 404 {object} errorResponseBody "Слот или услуга не найдены"
// @Failure 409 {object} errorResponseBody "Слот уже занят"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /appointments [post]
func (h *Handler) createAppointment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.logger.Warn("ошибка получения ID пользователя", zap.Error(err))
		unauthorizedResponse(c)
		return
	}

	var req domain.CreateAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	clientID := userID
	if req.ClientID != nil && *req.ClientID != userID {
		role, _ := getUserRole(c)
		if !role.IsStaff() {
			forbiddenResponse(c, "запись от имени другого клиента доступна только регистратуре")
			return
		}
		clientID = *req.ClientID
	}

	appointment, err := h.services.Appointment.Book(c.Request.Context(), clientID, req)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, appointment)
}

// @Summary Перенести запись
// @Description Переносит запись на другой свободный слот. При конфликте возвращает список альтернативных слотов
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.RescheduleAppointmentDTO true "Новый слот"
// @Success 200 {object} domain.RescheduleResult "Перенесенная запись"
// @Failure 400 {object} errorResponseBody "Запись уже отменена или завершена"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись или слот не найдены"
// @Failure 409 {object} errorResponseBody "Новый слот занят, в data переданы альтернативы"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /appointments/{id}/reschedule [post]
func (h *Handler) rescheduleAppointment(c *gin.Context) {
	id, ok := h.authorizeAppointmentAccess(c)
	if !ok {
		return
	}

	var req domain.RescheduleAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	result, err := h.services.Appointment.Reschedule(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, domain.ErrSlotTaken) && result != nil {
			conflictWithDataResponse(c, err.Error(), gin.H{"suggestions": result.Suggestions})
			return
		}
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, result)
}

// @Summary Получить запись по ID
// @Description Возвращает информацию о записи на прием по указанному ID
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} domain.Appointment "Данные записи"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /appointments/{id} [get]
func (h *Handler) getAppointmentByID(c *gin.Context) {
	id, ok := h.authorizeAppointmentAccess(c)
	if !ok {
		return
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Обновить запись
// @Description Обновляет причину обращения и заметки записи
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.UpdateAppointmentDTO true "Данные для обновления записи"
// @Success 200 {object} messageResponseType "Сообщение об успешном обновлении"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /appointments/{id} [put]
func (h *Handler) updateAppointment(c *gin.Context) {
	id, ok := h.authorizeAppointmentAccess(c)
	if !ok {
		return
	}

	var req domain.UpdateAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Appointment.Update(c.Request.Context(), id, req); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "запись успешно обновлена")
}

// @Summary Отменить запись
// @Description Отменяет запись на прием и освобождает ее слот
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} messageResponseType "Сообщение об успешной отмене"
// @Failure 400 {object} errorResponseBody "Запись уже отменена или завершена"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /appointments/{id} [delete]
func (h *Handler) cancelAppointment(c *gin.Context) {
	id, ok := h.authorizeAppointmentAccess(c)
	if !ok {
		return
	}

	if err := h.services.Appointment.Cancel(c.Request.Context(), id); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "запись успешно отменена")
}

// @Summary Подтвердить запись
// @Description Переводит запись из статуса pending в confirmed. Доступно регистратуре и администраторам
// @Tags Записи
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} messageResponseType "Сообщение об успешном подтверждении"
// @Failure 400 {object} errorResponseBody "Запись не в статусе pending"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /appointments/{id}/confirm [post]
func (h *Handler) confirmAppointment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Appointment.Confirm(c.Request.Context(), id); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "запись подтверждена")
}

// @Summary Завершить запись
// @Description Закрывает запись по факту состоявшегося визита. Доступно регистратуре и администраторам
// @Tags Записи
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} messageResponseType "Сообщение об успешном завершении"
// @Failure 400 {object} errorResponseBody "Запись уже отменена или завершена"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /appointments/{id}/complete [post]
func (h *Handler) completeAppointment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Appointment.Complete(c.Request.Context(), id); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "запись завершена")
}

// @Summary Получить список записей
// @Description Возвращает список записей на прием с фильтрацией и пагинацией
// @Tags Записи
// @Accept json
// @Produce json
// @Param limit query int false "Лимит записей на странице (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Param client_id query int false "ID клиента (только для персонала)"
// @Param specialist_id query int false "ID специалиста (только для персонала)"
// @Param status query string false "Статус записи"
// @Param start_date query string false "Начальная дата (YYYY-MM-DD)"
// @Param end_date query string false "Конечная дата (YYYY-MM-DD)"
// @Success 200 {object} paginatedResponse "Список записей с пагинацией"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /appointments [get]
func (h *Handler) getAppointments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.logger.Warn("ошибка получения ID пользователя", zap.Error(err))
		unauthorizedResponse(c)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := domain.AppointmentFilter{
		Limit:  limit,
		Offset: offset,
	}

	role, _ := getUserRole(c)

	if role.IsStaff() {
		if clientIDStr := c.Query("client_id"); clientIDStr != "" {
			if clientID, err := strconv.ParseInt(clientIDStr, 10, 64); err == nil {
				filter.ClientID = &clientID
			}
		}
		if specialistIDStr := c.Query("specialist_id"); specialistIDStr != "" {
			if specialistID, err := strconv.ParseInt(specialistIDStr, 10, 64); err == nil {
				filter.SpecialistID = &specialistID
			}
		}
	}

	if filter.ClientID == nil && filter.SpecialistID == nil && !role.IsStaff() {
		specialist, err := h.services.Specialist.GetByUserID(c.Request.Context(), userID)
		if err == nil && specialist != nil {
			filter.SpecialistID = &specialist.ID
		} else {
			filter.ClientID = &userID
		}
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.AppointmentStatus(statusStr)
		filter.Status = &status
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			filter.StartDate = &startDate
		}
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			endDate = endDate.Add(24*time.Hour - time.Second)
			filter.EndDate = &endDate
		}
	}

	appointments, total, err := h.services.Appointment.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка получения списка записей", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1
	paginatedSuccessResponse(c, appointments, total, page, limit)
}

// authorizeAppointmentAccess разбирает ID записи из пути и проверяет, что
// вызывающий — клиент записи, ее специалист или персонал клиники.
func (h *Handler) authorizeAppointmentAccess(c *gin.Context) (int64, bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.logger.Warn("ошибка получения ID пользователя", zap.Error(err))
		unauthorizedResponse(c)
		return 0, false
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID", zap.Error(err))
		badRequestResponse(c, "неверный формат ID")
		return 0, false
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), id)
	if err != nil {
		domainErrorResponse(c, err)
		return 0, false
	}

	role, _ := getUserRole(c)
	if role.IsStaff() || appointment.ClientID == userID {
		return id, true
	}

	specialist, err := h.services.Specialist.GetByUserID(c.Request.Context(), userID)
	if err == nil && specialist != nil && specialist.ID == appointment.SpecialistID {
		return id, true
	}

	h.logger.Warn("попытка несанкционированного доступа",
		zap.Int64("userID", userID),
		zap.Int64("appointment_id", id),
	)
	forbiddenResponse(c)
	return 0, false
}
