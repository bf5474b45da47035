package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinika/internal/domain"
	"clinika/pkg/timeutil"
)

// @Summary Создать правило расписания
// @Description Создает повторяющееся окно приема специалиста по строке RRULE
// @Tags Расписание
// @Accept json
// @Produce json
// @Param id path int true "ID специалиста"
// @Param input body domain.CreateAvailabilityRuleDTO true "Данные правила"
// @Success 201 {object} map[string]interface{} "ID созданного правила"
// @Failure 400 {object} errorResponseBody "Ошибка валидации RRULE или времени"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Специалист не найден"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id}/availability-rules [post]
func (h *Handler) createAvailabilityRule(c *gin.Context) {
	specialistID, ok := h.authorizeScheduleAccess(c)
	if !ok {
		return
	}

	var req domain.CreateAvailabilityRuleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Availability.CreateRule(c.Request.Context(), specialistID, req)
	if err != nil {
		h.logger.Warn("ошибка создания правила расписания",
			zap.Int64("specialist_id", specialistID),
			zap.Error(err),
		)
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Получить правила расписания
// @Description Возвращает все правила расписания специалиста, включая отключенные
// @Tags Расписание
// @Produce json
// @Param id path int true "ID специалиста"
// @Success 200 {array} domain.AvailabilityRule "Список правил"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /specialists/{id}/availability-rules [get]
func (h *Handler) getAvailabilityRules(c *gin.Context) {
	specialistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	rules, err := h.services.Availability.ListRules(c.Request.Context(), specialistID)
	if err != nil {
		h.logger.Error("ошибка получения правил расписания", zap.Error(err))
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, rules)
}

// @Summary Обновить правило расписания
// @Description Меняет время приема или отключает правило. Отключенное правило перестает разворачиваться в окна, уже созданные слоты не затрагиваются
// @Tags Расписание
// @Accept json
// @Produce json
// @Param id path int true "ID специалиста"
// @Param rule_id path int true "ID правила"
// @Param input body domain.UpdateAvailabilityRuleDTO true "Данные для обновления"
// @Success 200 {object} messageResponseType "Сообщение об успешном обновлении"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Правило не найдено"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id}/availability-rules/{rule_id} [put]
func (h *Handler) updateAvailabilityRule(c *gin.Context) {
	if _, ok := h.authorizeScheduleAccess(c); !ok {
		return
	}

	ruleID, err := strconv.ParseInt(c.Param("rule_id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID правила")
		return
	}

	var req domain.UpdateAvailabilityRuleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Availability.UpdateRule(c.Request.Context(), ruleID, req); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "правило расписания обновлено")
}

// @Summary Создать исключение расписания
// @Description Переопределяет расписание на конкретную дату: выходной день или подставное окно приема
// @Tags Расписание
// @Accept json
// @Produce json
// @Param id path int true "ID специалиста"
// @Param input body domain.CreateAvailabilityExceptionDTO true "Данные исключения"
// @Success 201 {object} map[string]interface{} "ID созданного исключения"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Специалист не найден"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id}/availability-exceptions [post]
func (h *Handler) createAvailabilityException(c *gin.Context) {
	specialistID, ok := h.authorizeScheduleAccess(c)
	if !ok {
		return
	}

	var req domain.CreateAvailabilityExceptionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Availability.CreateException(c.Request.Context(), specialistID, req)
	if err != nil {
		h.logger.Warn("ошибка создания исключения",
			zap.Int64("specialist_id", specialistID),
			zap.Error(err),
		)
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Удалить исключение расписания
// @Description Удаляет исключение. Дата снова обслуживается по правилам
// @Tags Расписание
// @Produce json
// @Param id path int true "ID специалиста"
// @Param exception_id path int true "ID исключения"
// @Success 200 {object} messageResponseType "Сообщение об успешном удалении"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Исключение не найдено"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id}/availability-exceptions/{exception_id} [delete]
func (h *Handler) deleteAvailabilityException(c *gin.Context) {
	if _, ok := h.authorizeScheduleAccess(c); !ok {
		return
	}

	exceptionID, err := strconv.ParseInt(c.Param("exception_id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID исключения")
		return
	}

	if err := h.services.Availability.DeleteException(c.Request.Context(), exceptionID); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "исключение удалено")
}

// @Summary Развернуть окна приема
// @Description Материализует правила специалиста в окна приема на заданном диапазоне дат с учетом исключений и праздников клиники
// @Tags Расписание
// @Produce json
// @Param id path int true "ID специалиста"
// @Param date_from query string true "Начальная дата (YYYY-MM-DD)"
// @Param date_to query string true "Конечная дата включительно (YYYY-MM-DD)"
// @Success 200 {array} domain.OpenWindow "Окна приема"
// @Failure 400 {object} errorResponseBody "Неверный формат дат"
// @Failure 404 {object} errorResponseBody "Специалист не найден"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /specialists/{id}/windows [get]
func (h *Handler) getOpenWindows(c *gin.Context) {
	specialistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	windows, err := h.services.Availability.ExpandWindows(c.Request.Context(), specialistID, from, to)
	if err != nil {
		h.logger.Error("ошибка разворачивания окон приема",
			zap.Int64("specialist_id", specialistID),
			zap.Error(err),
		)
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, windows)
}

// @Summary Создать праздник клиники
// @Description Добавляет общеклинический выходной. Правила всех специалистов на эту дату не разворачиваются
// @Tags Расписание
// @Accept json
// @Produce json
// @Param input body domain.CreateClinicHolidayDTO true "Данные праздника"
// @Success 201 {object} map[string]interface{} "ID праздника"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /holidays [post]
func (h *Handler) createClinicHoliday(c *gin.Context) {
	var req domain.CreateClinicHolidayDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Availability.CreateHoliday(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("ошибка создания праздника", zap.Error(err))
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, gin.H{"id": id})
}

// @Summary Получить праздники клиники
// @Description Возвращает праздники клиники на диапазоне дат
// @Tags Расписание
// @Produce json
// @Param date_from query string true "Начальная дата (YYYY-MM-DD)"
// @Param date_to query string true "Конечная дата включительно (YYYY-MM-DD)"
// @Success 200 {array} domain.ClinicHoliday "Список праздников"
// @Failure 400 {object} errorResponseBody "Неверный формат дат"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /holidays [get]
func (h *Handler) getClinicHolidays(c *gin.Context) {
	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	holidays, err := h.services.Availability.ListHolidays(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("ошибка получения праздников", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, holidays)
}

// @Summary Удалить праздник клиники
// @Description Удаляет общеклинический выходной
// @Tags Расписание
// @Produce json
// @Param id path int true "ID праздника"
// @Success 200 {object} messageResponseType "Сообщение об успешном удалении"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Праздник не найден"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /holidays/{id} [delete]
func (h *Handler) deleteClinicHoliday(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Availability.DeleteHoliday(c.Request.Context(), id); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "праздник удален")
}

// authorizeScheduleAccess разбирает ID специалиста из пути и проверяет, что
// вызывающий управляет этим расписанием: персонал клиники — любым, специалист
// — только своим.
func (h *Handler) authorizeScheduleAccess(c *gin.Context) (int64, bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.logger.Warn("ошибка получения ID пользователя", zap.Error(err))
		unauthorizedResponse(c)
		return 0, false
	}

	specialistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return 0, false
	}

	role, _ := getUserRole(c)
	if role.IsStaff() {
		return specialistID, true
	}

	specialist, err := h.services.Specialist.GetByUserID(c.Request.Context(), userID)
	if err == nil && specialist != nil && specialist.ID == specialistID {
		return specialistID, true
	}

	h.logger.Warn("попытка управления чужим расписанием",
		zap.Int64("userID", userID),
		zap.Int64("specialist_id", specialistID),
	)
	forbiddenResponse(c, "можно управлять только своим расписанием")
	return 0, false
}

// parseDateRange читает date_from и date_to из query и переводит их в
// полуинтервал [from, to) в часовом поясе клиники: верхняя дата включается
// в диапазон целиком.
func (h *Handler) parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	loc, err := timeutil.LoadLocation(h.config.Clinic.Timezone)
	if err != nil {
		h.logger.Error("неверный часовой пояс клиники", zap.Error(err))
		internalServerErrorResponse(c)
		return time.Time{}, time.Time{}, false
	}

	from, err := timeutil.ParseDate(c.Query("date_from"), loc)
	if err != nil {
		badRequestResponse(c, "неверный формат date_from, ожидается YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}

	toDate, err := timeutil.ParseDate(c.Query("date_to"), loc)
	if err != nil {
		badRequestResponse(c, "неверный формат date_to, ожидается YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	to := timeutil.AddDays(toDate, 1, loc)

	if !to.After(from) {
		badRequestResponse(c, "date_to должна быть не раньше date_from")
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}
