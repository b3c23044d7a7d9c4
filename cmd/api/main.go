package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/flipflow/flipflow-backend/internal/apperror"
	"github.com/flipflow/flipflow-backend/internal/cache"
	"github.com/flipflow/flipflow-backend/internal/config"
	"github.com/flipflow/flipflow-backend/internal/handler"
	"github.com/flipflow/flipflow-backend/internal/middleware"
	"github.com/flipflow/flipflow-backend/internal/models"
	"github.com/flipflow/flipflow-backend/internal/repository"
	"github.com/flipflow/flipflow-backend/internal/service"
	"github.com/flipflow/flipflow-backend/pkg/database"
	"github.com/flipflow/flipflow-backend/pkg/email"
	jwtpkg "github.com/flipflow/flipflow-backend/pkg/jwt"
	"github.com/flipflow/flipflow-backend/pkg/logger"
	"github.com/flipflow/flipflow-backend/pkg/payment"
	"github.com/flipflow/flipflow-backend/pkg/storage"
	"github.com/flipflow/flipflow-backend/pkg/utils"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database initialization failed", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	flipbookRepo := repository.NewFlipbookRepository(db)
	viewRepo := repository.NewFlipbookViewRepository(db)
	orderRepo := repository.NewPaymentOrderRepository(db)

	// Infrastructure
	objectStorage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal("object storage initialization failed", zap.Error(err))
	}

	gateway, err := payment.NewGateway(cfg.Payment.KeyID, cfg.Payment.KeySecret)
	if err != nil {
		// Startup-time failure: a missing gateway secret must never turn
		// into silently unverifiable payments.
		log.Fatal("payment gateway initialization failed", zap.Error(err))
	}

	tokens := jwtpkg.NewManager(cfg.JWTSecret, cfg.JWTIssuer)
	emailService := email.NewEmailService(cfg, log)
	queryCache := cache.New(cache.Config{
		StaleTime:   cfg.Cache.StaleTime,
		BaseDelay:   cfg.Cache.BaseDelay,
		Multiplier:  cfg.Cache.Multiplier,
		MaxDelay:    cfg.Cache.MaxDelay,
		MaxAttempts: cfg.Cache.MaxAttempts,
	}, log)

	// Services
	authService := service.NewAuthService(userRepo, emailService, tokens, log)
	userService := service.NewUserService(userRepo)
	flipbookService := service.NewFlipbookService(flipbookRepo, userRepo, objectStorage, queryCache, log)
	analyticsService := service.NewAnalyticsService(flipbookRepo, viewRepo, userRepo, log)
	paymentService := service.NewPaymentService(gateway, userRepo, orderRepo, cfg.Payment, log)

	// Handlers
	validator := utils.NewValidator()
	authHandler := handler.NewAuthHandler(authService, validator)
	userHandler := handler.NewUserHandler(userService, validator)
	flipbookHandler := handler.NewFlipbookHandler(flipbookService, validator)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	paymentHandler := handler.NewPaymentHandler(paymentService, validator)

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{
		ErrorHandler: apperror.Handler(log),
		BodyLimit:    storage.MaxPDFSize + (1 << 20),
	})

	app.Use(fiberrecover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).
				JSON(models.ErrorResponse("Too many requests. Please slow down."))
		},
	}))

	api := app.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	api.Get("/plans", paymentHandler.GetPlans)

	// Viewer routes: anonymous for public flipbooks, the permission table
	// decides per row.
	api.Get("/flipbooks/:id", authMiddleware.Optional(), flipbookHandler.GetFlipbook)
	api.Post("/flipbooks/:id/view", authMiddleware.Optional(), analyticsHandler.RecordView)

	// Protected routes
	api.Use(authMiddleware.Required())
	{
		user := api.Group("/user")
		user.Get("/profile", userHandler.GetMyProfile)
		user.Put("/profile", userHandler.UpdateProfile)
		user.Post("/change-password", userHandler.ChangePassword)

		flipbooks := api.Group("/flipbooks")
		flipbooks.Post("/", flipbookHandler.CreateFlipbook)
		flipbooks.Get("/", flipbookHandler.GetUserFlipbooks)
		flipbooks.Put("/:id", flipbookHandler.UpdateFlipbook)
		flipbooks.Delete("/:id", flipbookHandler.DeleteFlipbook)
		flipbooks.Post("/:id/logo", flipbookHandler.UploadLogo)
		flipbooks.Get("/:id/export", flipbookHandler.ExportFlipbook)
		flipbooks.Get("/:id/stats", analyticsHandler.GetStats)

		payments := api.Group("/payments")
		payments.Post("/order", paymentHandler.CreateUpgradeOrder)
		payments.Post("/verify", paymentHandler.VerifyPayment)
		payments.Get("/history", paymentHandler.GetOrderHistory)
	}

	log.Info("starting server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
