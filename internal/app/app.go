package app

import (
	"database/sql"
	"fmt"
	"log"

	"courtbook/internal/config"
	"courtbook/internal/handlers"
	"courtbook/internal/middleware"
	"courtbook/internal/migrations"
	"courtbook/internal/pdf"
	"courtbook/internal/repositories"
	"courtbook/internal/routes"
	"courtbook/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	_ "courtbook/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Ошибка подключения к БД: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка закрытия БД: %v", err)
		}
	}()

	if err := migrations.Run(db); err != nil {
		log.Fatal("Ошибка применения миграций: ", err)
	}

	// JWT-ключ берём из конфига, не из кода
	middleware.SetJWTKey([]byte(cfg.JWT.Secret))

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	registrationRepo := repositories.NewRegistrationRepository(db)
	passwordResetRepo := repositories.NewPasswordResetRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	userService := services.NewUserService(userRepo, authService)
	registrationService := services.NewRegistrationService(
		registrationRepo,
		userRepo,
		emailService,
		authService,
		cfg.CodeTTL(),
	)
	reservationService := services.NewReservationService(reservationRepo)
	reportService := services.NewReportService(reservationRepo)
	passwordResetService := services.NewPasswordResetService(userRepo, passwordResetRepo, emailService, authService)

	// PDF генератор (укажи реальный путь к TTF с кириллицей)
	// например, положи DejaVuSans.ttf в assets/fonts/DejaVuSans.ttf
	pdfGen := pdf.NewReportGenerator(cfg.Files.RootDir, "assets/fonts/DejaVuSans.ttf")

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	reservationHandler := handlers.NewReservationHandler(reservationService)
	reportHandler := handlers.NewReportHandler(reportService, pdfGen)
	userHandler := handlers.NewUserHandler(userService)
	passwordResetHandler := handlers.NewPasswordResetHandler(passwordResetService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Роуты (JWT/RBAC — внутри SetupRoutes)
	routes.SetupRoutes(
		router,
		authHandler,
		registrationHandler,
		reservationHandler,
		reportHandler,
		userHandler,
		passwordResetHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Ошибка запуска сервера: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
