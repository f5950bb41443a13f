// @title Quizgen API
// @version 1.0
// @description Uploads study material, searches it and generates multiple-choice quizzes from it.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quiz-byte/internal/adapter/embedding"
	"quiz-byte/internal/adapter/llm"
	"quiz-byte/internal/adapter/search"
	"quiz-byte/internal/config"
	"quiz-byte/internal/extractor"
	"quiz-byte/internal/handler"
	"quiz-byte/internal/logger"
	"quiz-byte/internal/middleware"
	"quiz-byte/internal/service"

	_ "quiz-byte/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	esClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		appLogger.Fatal("Failed to create Elasticsearch client", zap.Error(err))
	}
	store := search.NewElasticStore(esClient, cfg.Elastic, appLogger.Named("elastic"))
	if err := store.EnsureIndex(ctx); err != nil {
		// Not fatal: every request ensures the index again.
		appLogger.Warn("Search index not ready", zap.Error(err))
	}

	model, err := llm.NewModel(ctx, cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	generation := service.NewGenerationService(llm.NewGenerator(model, cfg.LLM), cfg.LLM.Model, appLogger.Named("generation"))
	appLogger.Info("LLM initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.Strings("candidates", generation.Candidates()),
	)

	embedder, redisCache := embedding.Setup(ctx, cfg, appLogger.Named("embedding"))

	retrieval := service.NewRetrievalService(store, embedder, cfg.Retrieval, appLogger.Named("retrieval"))
	ingest := service.NewIngestService(store, embedder, cfg.Ingest, appLogger.Named("ingest"))
	quiz := service.NewQuizService(store, store, retrieval, generation, appLogger.Named("quiz"))

	if err := extractor.CheckAvailable(); err != nil {
		appLogger.Info("pdftotext fallback unavailable, PDFs use the in-process reader only", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)
	handler.RegisterRoutes(app,
		handler.NewHealthHandler(redisCache),
		handler.NewQuizHandler(quiz, retrieval),
		handler.NewUploadHandler(ingest, extractor.New(appLogger.Named("extractor"))),
		middleware.NewValidationMiddleware(),
	)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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
