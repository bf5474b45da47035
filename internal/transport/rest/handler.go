package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinika/config"
	"clinika/internal/service"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())

	router.Use(h.errorMiddleware())

	router.Use(h.corsMiddleware())

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
			auth.POST("/refresh", h.refreshTokens)
			auth.POST("/logout", h.logout)
		}

		users := api.Group("/users")
		users.Use(h.authMiddleware())
		{
			users.GET("/me", h.getCurrentUser)
			users.GET("/:id", h.getUserByID)
			users.PUT("/:id", h.updateUser)
			users.PUT("/:id/password", h.updatePassword)

			admin := users.Group("/")
			admin.Use(h.adminMiddleware())
			{
				admin.POST("/", h.createUser)
				admin.GET("/", h.getUsers)
				admin.DELETE("/:id", h.deleteUser)
			}
		}

		specialists := api.Group("/specialists")
		{
			specialists.GET("/", h.getSpecialists)
			specialists.GET("/:id", h.getSpecialistByID)
			specialists.GET("/me", h.authMiddleware(), h.getMySpecialistProfile)

			// Публичная витрина расписания: окна приема и свободные слоты.
			specialists.GET("/:id/windows", h.getOpenWindows)
			specialists.GET("/:id/free-slots", h.getFreeSlots)
			specialists.GET("/:id/availability-rules", h.getAvailabilityRules)

			auth := specialists.Group("/", h.authMiddleware())
			{
				auth.POST("/", h.createSpecialist)
				auth.PUT("/:id", h.updateSpecialist)
				auth.DELETE("/:id", h.adminMiddleware(), h.deleteSpecialist)

				auth.POST("/:id/photo", h.uploadSpecialistPhoto)
				auth.DELETE("/:id/photo", h.deleteSpecialistPhoto)

				// Управление расписанием: владелец профиля или персонал.
				auth.POST("/:id/availability-rules", h.createAvailabilityRule)
				auth.PUT("/:id/availability-rules/:rule_id", h.updateAvailabilityRule)

				auth.POST("/:id/availability-exceptions", h.createAvailabilityException)
				auth.DELETE("/:id/availability-exceptions/:exception_id", h.deleteAvailabilityException)

				auth.GET("/:id/slots", h.getTimeSlots)
				auth.POST("/:id/slots/generate", h.generateTimeSlots)
				auth.DELETE("/:id/slots/:slot_id", h.deleteTimeSlot)
				auth.POST("/:id/breaks", h.createBreak)
			}
		}

		services := api.Group("/services")
		{
			services.GET("/", h.getClinicServices)
			services.GET("/:id", h.getClinicServiceByID)

			admin := services.Group("/")
			admin.Use(h.authMiddleware(), h.adminMiddleware())
			{
				admin.POST("/", h.createClinicService)
				admin.PUT("/:id", h.updateClinicService)
				admin.DELETE("/:id", h.deleteClinicService)
			}
		}

		holidays := api.Group("/holidays")
		{
			holidays.GET("/", h.getClinicHolidays)

			staff := holidays.Group("/")
			staff.Use(h.authMiddleware(), h.staffMiddleware())
			{
				staff.POST("/", h.createClinicHoliday)
				staff.DELETE("/:id", h.deleteClinicHoliday)
			}
		}

		appointments := api.Group("/appointments")
		appointments.Use(h.authMiddleware())
		{
			appointments.POST("/", h.createAppointment)
			appointments.GET("/", h.getAppointments)
			appointments.GET("/:id", h.getAppointmentByID)
			appointments.PUT("/:id", h.updateAppointment)
			appointments.DELETE("/:id", h.cancelAppointment)
			appointments.POST("/:id/reschedule", h.rescheduleAppointment)

			staff := appointments.Group("/")
			staff.Use(h.staffMiddleware())
			{
				staff.POST("/:id/confirm", h.confirmAppointment)
				staff.POST("/:id/complete", h.completeAppointment)
			}
		}
	}
}
