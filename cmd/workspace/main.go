package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/codecraft-workspace/internal/config"
	"github.com/noah-isme/codecraft-workspace/internal/database"
	"github.com/noah-isme/codecraft-workspace/internal/handler"
	"github.com/noah-isme/codecraft-workspace/internal/middleware"
	"github.com/noah-isme/codecraft-workspace/internal/models"
	"github.com/noah-isme/codecraft-workspace/internal/router"
	"github.com/noah-isme/codecraft-workspace/internal/service"
	"github.com/noah-isme/codecraft-workspace/internal/workspace"
	"github.com/noah-isme/codecraft-workspace/pkg/ai"
	"github.com/noah-isme/codecraft-workspace/pkg/platform"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "codecraft-workspace").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.AppEnv == "production" {
		logger = logger.Level(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		messages   service.MessagePublisher
		natsStatus handler.ConnectionStatus
	)
	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer natsConn.Drain()
		messages = natsConn
		natsStatus = natsConn
	}

	platformClient, err := platform.New(platform.Config{
		BaseURL:       cfg.PlatformBaseURL,
		Timeout:       cfg.PlatformTimeout,
		SessionCookie: cfg.PlatformSessionCookie,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create platform client")
	}

	var assistant workspace.Assistant
	if cfg.AssistantProvider == "openai" {
		openaiAssistant, err := ai.NewOpenAIAssistant(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AssistantModel,
			Logger: logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create openai assistant")
		}
		assistant = openaiAssistant
	}

	defaultLanguage, err := models.ParseLanguage(cfg.WorkspaceDefaultLang)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid default language")
	}
	policy, err := workspace.ParseLanguagePolicy(cfg.WorkspaceLanguagePolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid language policy")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	clients := service.NewPlatformFactory(platformClient)
	publisher := service.NewEventPublisher(messages, cfg.NATSSubject, redisClient, logger)

	workspaceService := service.NewWorkspaceService(clients, assistant, redisClient, publisher, validate, service.WorkspaceOptions{
		DefaultLanguage: defaultLanguage,
		LanguagePolicy:  policy,
		History:         workspace.HistoryMode(cfg.WorkspaceChatHistory),
		IdleTTL:         cfg.WorkspaceIdleTTL,
		ProblemCacheTTL: cfg.ProblemCacheTTL,
	}, logger)
	workspaceService.Start(ctx)

	catalogService := service.NewCatalogService(clients, redisClient, cfg.CatalogCacheTTL, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	if cfg.JWTSecret == "" {
		logger.Warn().Str("env", cfg.AppEnv).Msg("jwt secret not set; session claims are trusted without verification")
	}

	middleware.Register(app, middleware.Config{
		Logger: &logger,
		Session: middleware.SessionConfig{
			CookieName: cfg.PlatformSessionCookie,
			Secret:     cfg.JWTSecret,
		},
		AllowOrigins: cfg.CORSOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		HealthHandler: handler.NewHealthHandler(cfg, handler.HealthDependencies{
			Redis:      redisClient,
			NATS:       natsStatus,
			Workspaces: workspaceService,
		}),
		WorkspaceHandler: handler.NewWorkspaceHandler(workspaceService, cfg.EvaluationRateLimit, logger),
		StreamHandler:    handler.NewWorkspaceStreamHandler(workspaceService, logger),
		CatalogHandler:   handler.NewCatalogHandler(catalogService, logger),
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Msg("workspace service listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(ctx, app, logger)
}

func waitForShutdown(ctx context.Context, app *fiber.App, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
