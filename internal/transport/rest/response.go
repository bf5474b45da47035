package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clinika/internal/domain"
)

type errorResponseBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

type successResponseBody struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type messageResponseType struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type paginatedResponse struct {
	Data       interface{} `json:"data"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

func successResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, successResponseBody{
		Status: "success",
		Data:   data,
	})
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, errorResponseBody{
		Status:  "error",
		Message: message,
		Code:    statusCode,
	})
}

func messageResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, messageResponseType{
		Status:  "success",
		Message: message,
	})
}

func paginatedSuccessResponse(c *gin.Context, data interface{}, totalCount, page, pageSize int) {
	totalPages := totalCount / pageSize
	if totalCount%pageSize > 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, paginatedResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func createdResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, successResponseBody{
		Status: "success",
		Data:   data,
	})
}

func noContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func badRequestResponse(c *gin.Context, message string) {
	errorResponse(c, http.StatusBadRequest, message)
}

func unauthorizedResponse(c *gin.Context) {
	errorResponse(c, http.StatusUnauthorized, "требуется авторизация")
}

func forbiddenResponse(c *gin.Context, message ...string) {
	msg := "доступ запрещен"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	errorResponse(c, http.StatusForbidden, msg)
}

func notFoundResponse(c *gin.Context, message string) {
	errorResponse(c, http.StatusNotFound, message)
}

func internalServerErrorResponse(c *gin.Context) {
	errorResponse(c, http.StatusInternalServerError, "внутренняя ошибка сервера")
}

func conflictResponse(c *gin.Context, message string) {
	errorResponse(c, http.StatusConflict, message)
}

// conflictWithDataResponse — 409 с полезной нагрузкой (например список
// альтернативных слотов при проигрыше гонки за слот).
func conflictWithDataResponse(c *gin.Context, message string, data interface{}) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{
		"status":  "error",
		"message": message,
		"code":    http.StatusConflict,
		"data":    data,
	})
}

// domainErrorResponse переводит ошибки ядра планирования в HTTP-статусы.
// Конфликт за слот — ожидаемый исход при нормальной работе, он отдается
// как 409, чтобы клиент мог предложить альтернативы.
func domainErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSlotNotFound),
		errors.Is(err, domain.ErrServiceNotFound),
		errors.Is(err, domain.ErrAppointmentNotFound),
		errors.Is(err, domain.ErrSpecialistNotFound),
		errors.Is(err, domain.ErrRuleNotFound):
		notFoundResponse(c, err.Error())
	case errors.Is(err, domain.ErrSlotTaken),
		errors.Is(err, domain.ErrSlotStateChanged):
		conflictResponse(c, err.Error())
	case errors.Is(err, domain.ErrServiceInactive),
		errors.Is(err, domain.ErrSpecialistMismatch),
		errors.Is(err, domain.ErrAppointmentFinished),
		errors.Is(err, domain.ErrSlotNotBookable):
		badRequestResponse(c, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		forbiddenResponse(c)
	default:
		internalServerErrorResponse(c)
	}
}
