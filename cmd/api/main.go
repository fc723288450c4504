package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"formpulse/internal/adapter"
	"formpulse/internal/adapter/narrative"
	"formpulse/internal/cache"
	"formpulse/internal/config"
	"formpulse/internal/database"
	"formpulse/internal/domain"
	"formpulse/internal/handler"
	"formpulse/internal/logger"
	"formpulse/internal/middleware"
	"formpulse/internal/repository"
	"formpulse/internal/service"
	"formpulse/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize repositories
	questionnaireRepository := repository.NewSQLXQuestionnaireRepository(db)
	userRepository := repository.NewSQLXUserRepository(db)

	// Initialize Redis client and cache adapter
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	// Narrative generator. The summary endpoint degrades to an error when
	// Ollama is not configured; analytics never depends on it.
	var narrativeGenerator domain.NarrativeGenerator
	if cfg.LLM.OllamaServerURL != "" {
		ollamaHTTPClient := &http.Client{Timeout: 60 * time.Second}
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.LLM.OllamaServerURL),
			ollama.WithModel(cfg.LLM.OllamaModel),
			ollama.WithHTTPClient(ollamaHTTPClient),
		)
		if err != nil {
			appLogger.Fatal("Failed to create LLM client", zap.Error(err))
		}
		narrativeGenerator = narrative.NewOllamaGenerator(llm)
		appLogger.Info("Narrative generator initialized",
			zap.String("server_url", cfg.LLM.OllamaServerURL),
			zap.String("model", cfg.LLM.OllamaModel))
	} else {
		appLogger.Warn("Ollama server URL not configured; AI summaries are disabled")
	}

	// Initialize services
	analyticsService := service.NewAnalyticsService(questionnaireRepository, cacheAdapter, cfg)
	summaryService := service.NewSummaryService(analyticsService, narrativeGenerator, cacheAdapter, cfg)
	questionnaireService := service.NewQuestionnaireService(questionnaireRepository, cacheAdapter)
	userService := service.NewUserService(userRepository)

	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}

	// Initialize handlers
	validator := validation.NewValidator()
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, summaryService, validator)
	questionnaireHandler := handler.NewQuestionnaireHandler(questionnaireService, validator)
	authHandler := handler.NewAuthHandler(authService, cfg)
	userHandler := handler.NewUserHandler(userService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	// API group
	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", middleware.Protected(authService), authHandler.Logout)

	// User routes (all protected)
	userGroup := apiGroup.Group("/users", middleware.Protected(authService))
	userGroup.Get("/me", userHandler.GetMyProfile)

	// Questionnaire and analytics routes (tenant-scoped, all protected)
	qGroup := apiGroup.Group("/questionnaires", middleware.Protected(authService))
	qGroup.Get("/", questionnaireHandler.ListQuestionnaires)
	qGroup.Get("/:id", questionnaireHandler.GetQuestionnaire)
	qGroup.Get("/:id/analytics", analyticsHandler.GetAnalytics)
	qGroup.Get("/:id/analytics/grounding", analyticsHandler.GetGrounding)
	qGroup.Get("/:id/analytics/summary", analyticsHandler.GetSummary)

	// Public response submission via share links; respondents are anonymous.
	apiGroup.Post("/public/:tenantId/questionnaires/:id/responses", questionnaireHandler.SubmitResponse)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
