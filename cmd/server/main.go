package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mpetrov/chatbot-api/internal/ai"
	"github.com/mpetrov/chatbot-api/internal/api"
	"github.com/mpetrov/chatbot-api/internal/auth"
	"github.com/mpetrov/chatbot-api/internal/chat"
	"github.com/mpetrov/chatbot-api/internal/config"
	"github.com/mpetrov/chatbot-api/internal/db"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.Error(err),
			zap.String("dbPath", cfg.DBPath))
	}
	defer database.Close()

	// The responder variant is chosen once here and injected everywhere.
	var responder ai.Responder
	if cfg.UseStubAI {
		responder = ai.Stub{}
		logger.Info("using stub AI responder")
	} else {
		responder, err = ai.NewOpenAI(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout)
		if err != nil {
			logger.Fatal("failed to initialize AI responder", zap.Error(err))
		}
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	service := chat.NewService(database)
	usecases := chat.NewUseCases(tokens, service, responder, database)
	handler := api.NewHandler(usecases, logger)

	app := fiber.New()
	app.Use(api.RequestLogger(logger))
	handler.Register(app)

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("error shutting down server", zap.Error(err))
	}
}
