package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"courtbook/internal/authz"
	"courtbook/internal/handlers"
	"courtbook/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	registrationHandler *handlers.RegistrationHandler,
	reservationHandler *handlers.ReservationHandler,
	reportHandler *handlers.ReportHandler,
	userHandler *handlers.UserHandler,
	passwordResetHandler *handlers.PasswordResetHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/register", registrationHandler.Register)
	r.POST("/register/verify", registrationHandler.Verify)
	r.POST("/register/resend", registrationHandler.Resend)
	r.POST("/password-reset/request", passwordResetHandler.Request)
	r.POST("/password-reset/confirm", passwordResetHandler.Confirm)

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	r.POST("/logout", authHandler.Logout)

	// RESERVATIONS
	reservations := r.Group("/reservations")
	{
		reservations.GET("/upcoming", reservationHandler.Upcoming)
		reservations.GET("/availability", reservationHandler.Availability)
		reservations.POST("/", reservationHandler.Book)
		reservations.DELETE("/:id", reservationHandler.Cancel)
	}

	// ADMIN
	admin := r.Group("/admin", middleware.RequireRoles(authz.RoleAdmin))
	{
		admin.GET("/reservations", reportHandler.GetSummary)
		admin.GET("/reservations/recent", reportHandler.RecentlyElapsed)
		admin.GET("/reservations/export", reportHandler.ExportPDF)
		admin.GET("/users", userHandler.ListUsers)
		admin.GET("/users/:id", userHandler.GetUserByID)
	}

	return r
}
