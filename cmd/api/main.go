package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"exam-eval/internal/adapter"
	"exam-eval/internal/adapter/explainer"
	"exam-eval/internal/adapter/extractor"
	"exam-eval/internal/adapter/ragging"
	"exam-eval/internal/cache"
	"exam-eval/internal/config"
	"exam-eval/internal/database"
	"exam-eval/internal/handler"
	"exam-eval/internal/logger"
	"exam-eval/internal/middleware"
	"exam-eval/internal/repository"
	"exam-eval/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

const reportCacheTTL = 1 * time.Hour

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

	ctx := context.Background()

	// Connect to database
	db, err := database.NewSQLXDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, "database/migrations"); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	questionRepository := repository.NewQuestionDatabaseAdapter(db)
	explanationRepository := repository.NewExplanationDatabaseAdapter(db)
	scoreRepository := repository.NewScoreDatabaseAdapter(db)

	// Initialize Redis client
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("RedisCacheAdapter initialized")

	// Initialize LLM adapters
	geminiExplainer, err := explainer.NewGeminiExplainer(ctx, cfg.Gemini)
	if err != nil {
		appLogger.Fatal("Failed to create Gemini explainer", zap.Error(err))
	}

	ragLLM, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.Gemini.APIKeys[0]),
		googleai.WithDefaultModel(cfg.Gemini.Model))
	if err != nil {
		appLogger.Fatal("Failed to create Gemini client for report Q&A", zap.Error(err))
	}
	reportAnswerer := ragging.NewGeminiReportAnswerer(ragLLM)

	pdfExtractor := extractor.NewPDFExtractor()

	// Initialize services
	reconcilerService := service.NewReconcilerService(questionRepository)
	explanationService := service.NewExplanationService(geminiExplainer, explanationRepository, cfg.Gemini.MaxConcurrent)
	scoringService := service.NewScoringService(questionRepository, explanationRepository, scoreRepository)
	evaluationService := service.NewEvaluationService(
		pdfExtractor,
		reconcilerService,
		explanationService,
		scoringService,
		cacheAdapter,
		cfg.Artifacts.Dir,
	)
	reportService := service.NewReportService(scoreRepository, cacheAdapter, reportCacheTTL)
	ragService := service.NewRagService(reportService, reportAnswerer, cacheAdapter, reportCacheTTL)
	appLogger.Info("Services initialized")

	// Initialize handlers
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, reportService)
	ragHandler := handler.NewRagHandler(ragService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", MaxAge: 300}))
	app.Use(recover.New())

	// API group
	apiGroup := app.Group("/api")
	apiGroup.Post("/evaluations", evaluationHandler.StartEvaluation)
	apiGroup.Get("/evaluations/:id", evaluationHandler.GetRunStatus)
	apiGroup.Get("/reports/:student_id/:paper_id", evaluationHandler.GetReport)
	apiGroup.Post("/rag", ragHandler.AnswerQuestion)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
