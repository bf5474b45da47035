package rest

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinika/internal/domain"
)

const maxPhotoSizeBytes = 5 << 20

// @Summary Получить список специалистов
// @Description Возвращает список специалистов с фильтрацией по специальности и пагинацией
// @Tags Специалисты
// @Accept json
// @Produce json
// @Param limit query int false "Лимит записей на странице (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Param specialty query string false "Специальность (терапевт, кардиолог и т.д.)"
// @Success 200 {object} paginatedResponse "Список специалистов с пагинацией"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /specialists [get]
func (h *Handler) getSpecialists(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := domain.SpecialistFilter{
		Limit:  limit,
		Offset: offset,
	}

	if specialty := c.Query("specialty"); specialty != "" {
		filter.Specialty = &specialty
	}

	specialists, total, err := h.services.Specialist.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка при получении списка специалистов", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "ошибка при получении списка специалистов")
		return
	}

	page := offset/limit + 1
	paginatedSuccessResponse(c, specialists, total, page, limit)
}

// @Summary Получить специалиста по ID
// @Description Возвращает информацию о специалисте по указанному ID
// @Tags Специалисты
// @Accept json
// @Produce json
// @Param id path int true "ID специалиста"
// @Success 200 {object} domain.Specialist "Данные специалиста"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Специалист не найден"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /specialists/{id} [get]
func (h *Handler) getSpecialistByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	specialist, err := h.services.Specialist.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("ошибка при получении специалиста", zap.Int64("id", id), zap.Error(err))
		domainErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, specialist)
}

// @Summary Создать специалиста
// @Description Создает профиль специалиста для пользователя. Персонал клиники указывает user_id, специалист создает профиль себе
// @Tags Специалисты
// @Accept json
// @Produce json
// @Param input body domain.CreateSpecialistDTO true "Данные специалиста"
// @Success 201 {object} map[string]interface{} "ID созданного специалиста"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists [post]
func (h *Handler) createSpecialist(c *gin.Context) {
	var req domain.CreateSpecialistDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	userRole, err := getUserRole(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	if userRole != domain.UserRoleSpecialist && !userRole.IsStaff() {
		forbiddenResponse(c)
		return
	}

	targetUserID := userID
	if userRole.IsStaff() && req.UserID > 0 {
		targetUserID = req.UserID
	}

	id, err := h.services.Specialist.Create(c.Request.Context(), targetUserID, req)
	if err != nil {
		h.logger.Error("ошибка при создании специалиста", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Обновить специалиста
// @Description Обновляет информацию о специалисте
// @Tags Специалисты
// @Accept json
// @Produce json
// @Param id path int true "ID специалиста"
// @Param input body domain.UpdateSpecialistDTO true "Новые данные специалиста"
// @Success 204 {object} nil "Данные успешно обновлены"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Специалист не найден"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id} [put]
func (h *Handler) updateSpecialist(c *gin.Context) {
	id, ok := h.authorizeSpecialistOwner(c)
	if !ok {
		return
	}

	var req domain.UpdateSpecialistDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Specialist.Update(c.Request.Context(), id, req); err != nil {
		h.logger.Error("ошибка при обновлении специалиста", zap.Error(err))
		domainErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary Удалить специалиста
// @Description Удаляет профиль специалиста. Доступно только администраторам
// @Tags Специалисты
// @Produce json
// @Param id path int true "ID специалиста"
// @Success 204 {object} nil "Профиль удален"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Специалист не найден"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id} [delete]
func (h *Handler) deleteSpecialist(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Specialist.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("ошибка при удалении специалиста", zap.Error(err))
		domainErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary Получить профиль специалиста текущего пользователя
// @Description Возвращает профиль специалиста для текущего авторизованного пользователя
// @Tags Специалисты
// @Accept json
// @Produce json
// @Success 200 {object} domain.Specialist "Данные специалиста"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 404 {object} errorResponseBody "Профиль специалиста не найден"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/me [get]
func (h *Handler) getMySpecialistProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	specialist, err := h.services.Specialist.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Warn("ошибка при получении профиля специалиста", zap.Int64("userID", userID), zap.Error(err))
		notFoundResponse(c, "профиль специалиста не найден")
		return
	}

	successResponse(c, http.StatusOK, specialist)
}

// @Summary Загрузить фото специалиста
// @Description Загружает фото профиля специалиста в хранилище. Поддерживаются jpg, jpeg, png до 5 МБ
// @Tags Специалисты
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID специалиста"
// @Param photo formData file true "Файл изображения"
// @Success 200 {object} messageResponseType "Сообщение об успешной загрузке"
// @Failure 400 {object} errorResponseBody "Неверный файл"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Специалист не найден"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id}/photo [post]
func (h *Handler) uploadSpecialistPhoto(c *gin.Context) {
	id, ok := h.authorizeSpecialistOwner(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		badRequestResponse(c, "файл не передан, ожидается поле photo")
		return
	}

	if fileHeader.Size > maxPhotoSizeBytes {
		badRequestResponse(c, "размер файла не должен превышать 5 МБ")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		badRequestResponse(c, "поддерживаются только файлы jpg, jpeg и png")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("ошибка открытия файла", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("ошибка чтения файла", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	if err := h.services.Specialist.UploadProfilePhoto(c.Request.Context(), id, data, fileHeader.Filename); err != nil {
		h.logger.Error("ошибка загрузки фото", zap.Int64("specialist_id", id), zap.Error(err))
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "фото успешно загружено")
}

// @Summary Удалить фото специалиста
// @Description Удаляет фото профиля специалиста из хранилища
// @Tags Специалисты
// @Produce json
// @Param id path int true "ID специалиста"
// @Success 200 {object} messageResponseType "Сообщение об успешном удалении"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Специалист не найден"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialists/{id}/photo [delete]
func (h *Handler) deleteSpecialistPhoto(c *gin.Context) {
	id, ok := h.authorizeSpecialistOwner(c)
	if !ok {
		return
	}

	if err := h.services.Specialist.DeleteProfilePhoto(c.Request.Context(), id); err != nil {
		h.logger.Error("ошибка удаления фото", zap.Int64("specialist_id", id), zap.Error(err))
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "фото успешно удалено")
}

// authorizeSpecialistOwner разбирает ID специалиста из пути и пропускает
// владельца профиля или персонал клиники.
func (h *Handler) authorizeSpecialistOwner(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return 0, false
	}

	specialist, err := h.services.Specialist.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("специалист не найден", zap.Int64("id", id), zap.Error(err))
		domainErrorResponse(c, err)
		return 0, false
	}

	currentUserID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return 0, false
	}

	userRole, err := getUserRole(c)
	if err != nil {
		unauthorizedResponse(c)
		return 0, false
	}

	if specialist.UserID != currentUserID && !userRole.IsStaff() {
		forbiddenResponse(c)
		return 0, false
	}

	return id, true
}
