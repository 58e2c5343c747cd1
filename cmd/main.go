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

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/gaming-portal/config"
	"github.com/Dosada05/gaming-portal/db"
	"github.com/Dosada05/gaming-portal/handlers"
	"github.com/Dosada05/gaming-portal/live"
	"github.com/Dosada05/gaming-portal/middleware"
	"github.com/Dosada05/gaming-portal/repositories"
	api "github.com/Dosada05/gaming-portal/routes"
	"github.com/Dosada05/gaming-portal/services"
	"github.com/Dosada05/gaming-portal/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

// run serves until ctx is cancelled or the server fails. Every resource it
// opens is released before it returns.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Подключение к базе данных
	dbConn, err := db.ConnectWithPool(cfg.DatabaseURL, cfg.DBConnectTimeout, db.DefaultPoolSettings)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.DBAutoMigrate {
		if err := db.Migrate(dbConn); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		version, err := db.MigrationVersion(dbConn)
		if err != nil {
			logger.Warn("failed to read schema version", slog.Any("error", err))
		}
		logger.Info("database schema is up to date", slog.Int64("version", version))
	}

	// Хранилище резервных копий (S3-совместимое)
	var documentStore services.DocumentStore
	if cfg.Backup.Enabled() {
		store, err := storage.NewS3DocumentStore(storage.S3DocumentStoreConfig{
			Endpoint:        cfg.Backup.Endpoint,
			Region:          cfg.Backup.Region,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
			Bucket:          cfg.Backup.Bucket,
			Prefix:          cfg.Backup.Prefix,
			UsePathStyle:    cfg.Backup.Endpoint != "",
		})
		if err != nil {
			return fmt.Errorf("initialize backup store: %w", err)
		}
		documentStore = store
		logger.Info("backup store initialized", slog.String("bucket", cfg.Backup.Bucket))
	} else {
		logger.Warn("backup destination is not configured, exports are disabled")
	}

	appCtx, stopApp := context.WithCancel(ctx)
	defer stopApp()

	// Инициализация WebSocket Hub
	hub := live.NewHub(logger)
	go hub.Run(appCtx)
	logger.Info("live hub started")

	// Инициализация репозиториев
	tx := repositories.NewPostgresTransactor(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	statsRepo := repositories.NewPostgresStatsRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	playerGameRepo := repositories.NewPostgresPlayerGameRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	tableScanner := repositories.NewPostgresTableScanner(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo, logger)
	playerService := services.NewPlayerService(tx, userRepo, statsRepo, playerGameRepo, teamRepo, participantRepo, hub, logger)
	gameService := services.NewGameService(tx, gameRepo, playerGameRepo, hub, logger)
	teamService := services.NewTeamService(tx, teamRepo, hub, logger)
	tournamentService := services.NewTournamentService(tx, tournamentRepo, participantRepo, gameRepo, userRepo, statsRepo, hub, logger)
	matchService := services.NewMatchService(tx, matchRepo, userRepo, gameRepo, statsRepo, hub, logger)
	backupService := services.NewBackupService(tableScanner, documentStore, logger)
	logger.Info("services initialized")

	if cfg.AdminUsername != "" {
		if err := authService.EnsureAdmin(appCtx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return fmt.Errorf("ensure bootstrap admin: %w", err)
		}
	}

	// Инициализация обработчиков HTTP
	tokens := middleware.NewTokenManager(cfg.JWTSecretKey, cfg.TokenTTL)
	h := api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, playerService, tokens, logger),
		Player:     handlers.NewPlayerHandler(playerService, logger),
		Game:       handlers.NewGameHandler(gameService, logger),
		Team:       handlers.NewTeamHandler(teamService, logger),
		Tournament: handlers.NewTournamentHandler(tournamentService, logger),
		Match:      handlers.NewMatchHandler(matchService, logger),
		Backup:     handlers.NewBackupHandler(backupService, logger),
		Live:       handlers.NewLiveHandler(hub, cfg.CORSAllowedOrigins, logger),
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, h, tokens, cfg.CORSAllowedOrigins, logger)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received", slog.Any("cause", context.Cause(ctx)))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		stopApp()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}
