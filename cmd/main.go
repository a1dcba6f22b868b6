package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daniel-lerner/lerners-game-tournament/config"
	"github.com/daniel-lerner/lerners-game-tournament/db"
	"github.com/daniel-lerner/lerners-game-tournament/handlers"
	"github.com/daniel-lerner/lerners-game-tournament/narrator"
	"github.com/daniel-lerner/lerners-game-tournament/realtime"
	"github.com/daniel-lerner/lerners-game-tournament/repositories"
	api "github.com/daniel-lerner/lerners-game-tournament/routes"
	"github.com/daniel-lerner/lerners-game-tournament/services"
	"github.com/daniel-lerner/lerners-game-tournament/storage"
	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
)

const shutdownTimeout = 15 * time.Second

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == config.LogFormatText {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel, TimeFormat: time.TimeOnly}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage", cfg.Storage),
		slog.String("edition", cfg.CurrentEdition),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Хранилище: Postgres с LISTEN/NOTIFY или память
	var (
		gameRepo   repositories.GameRepository
		playerRepo repositories.PlayerRepository
		matchRepo  repositories.MatchRepository
		changes    <-chan struct{}
	)
	switch cfg.Storage {
	case config.StorageMemory:
		store := repositories.NewMemoryStore()
		gameRepo, playerRepo, matchRepo = store.Games(), store.Players(), store.Matches()
		changes = store.Changes()
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		logger.Info("database connection established")

		if err := db.Migrate(ctx, dbConn); err != nil {
			logger.Error("failed to apply schema", slog.Any("error", err))
			os.Exit(1)
		}

		listener, err := db.NewListener(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to start change listener", slog.Any("error", err))
			os.Exit(1)
		}
		go listener.Run(ctx)
		changes = listener.Signals()

		gameRepo = repositories.NewPostgresGameRepository(dbConn)
		playerRepo = repositories.NewPostgresPlayerRepository(dbConn)
		matchRepo = repositories.NewPostgresMatchRepository(dbConn)
	}
	logger.Info("Repositories initialized")

	// Загрузчик аватаров: Cloudflare R2 или data URL
	uploader := storage.NewInlineUploader()
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 is not configured, avatars are stored inline")
	}

	// Комментатор
	var host narrator.Narrator = narrator.Disabled{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := narrator.NewGemini(ctx, narrator.GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			TextModel: cfg.GeminiTextModel,
			TTSModel:  cfg.GeminiTTSModel,
			Voice:     cfg.GeminiVoice,
			Persona:   cfg.NarratorPersona,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize narrator, commentary disabled", slog.Any("error", err))
		} else {
			host = gemini
		}
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Инициализация сервисов
	cache := services.NewStateCache()
	syncer := services.NewSyncer(gameRepo, playerRepo, matchRepo, cache, cfg.CurrentEdition, wsHub, logger)
	if err := syncer.Resync(ctx); err != nil {
		logger.Error("initial sync failed, serving offline until the store is reachable", slog.Any("error", err))
	}
	go syncer.Run(ctx, changes, cfg.SyncInterval)

	authService := services.NewAuthService(cfg.AdminPasscodeHash, cfg.JWTSecretKey, cfg.AdminTokenTTL)
	matchService := services.NewMatchService(matchRepo, playerRepo, cache, syncer, services.MatchServiceConfig{
		Edition:    cfg.CurrentEdition,
		Compensate: cfg.SagaCompensate,
	}, logger)
	playerService := services.NewPlayerService(playerRepo, uploader, cache, syncer, services.PlayerServiceConfig{
		Edition:         cfg.CurrentEdition,
		PreviousEdition: cfg.PreviousEdition,
		PointsColumn:    cfg.LegacyPointsColumn,
	}, logger)
	gameService := services.NewGameService(gameRepo, cache, syncer, logger)
	dashboardService := services.NewDashboardService(cache, cfg.CurrentEdition, cfg.PreviousEdition)
	commentaryService := services.NewCommentaryService(host, cache, cfg.CurrentEdition, wsHub, logger)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{Logger: logger, AllowedOrigins: cfg.CORSAllowedOrigins, Admin: authService},
		handlers.NewAuthHandler(authService),
		handlers.NewDashboardHandler(dashboardService),
		handlers.NewGameHandler(gameService),
		handlers.NewPlayerHandler(playerService),
		handlers.NewMatchHandler(matchService),
		handlers.NewCommentaryHandler(commentaryService),
		handlers.NewAdminHandler(syncer),
		handlers.NewWebSocketHandler(wsHub, logger),
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// генерация текста и речи занимает десятки секунд
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			cancel()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	// Останавливаем hub, syncer и listener
	cancel()
	logger.Info("application exited")
}
