package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/turyildiz/screenshot-archive/internal/api/handlers"
	"github.com/turyildiz/screenshot-archive/internal/api/middleware"
	"github.com/turyildiz/screenshot-archive/internal/api/openapi"
	"github.com/turyildiz/screenshot-archive/internal/config"
	"github.com/turyildiz/screenshot-archive/internal/database"
	"github.com/turyildiz/screenshot-archive/internal/objectstore"
	"github.com/turyildiz/screenshot-archive/internal/repository"
	"github.com/turyildiz/screenshot-archive/internal/server"
	"github.com/turyildiz/screenshot-archive/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP API",
	Long:  `Применяет миграции, подключается к PostgreSQL и бакету и обслуживает HTTP API до сигнала завершения.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// 1. Конфигурация и логгер
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	logger := config.SetupLogger(cfg)
	logger.Info("screenshot-archive запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("SA_DEPHEALTH_GROUP") == "" && cfg.DephealthEnabled {
		logger.Warn("SA_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 2. Контракт API должен быть валиден до старта
	if _, err := openapi.Load(ctx); err != nil {
		return fmt.Errorf("некорректный OpenAPI-контракт: %w", err)
	}

	// 3. Миграции и пул PostgreSQL
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		return err
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	// 4. Объектное хранилище
	store, err := objectstore.New(objectstore.OptionsFromConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("ошибка создания клиента хранилища: %w", err)
	}
	logger.Info("Клиент объектного хранилища создан",
		slog.String("endpoint", cfg.S3Endpoint),
		slog.String("bucket", store.Bucket()),
	)

	// 5. Репозиторий, кэш, сервисы
	repo := repository.NewScreenshotRepository(pool)
	cache := service.NewScreenshotCache(cfg.CacheSize, cfg.CacheTTL)

	uploadSvc := service.NewUploadService(repo, store, logger)
	screenshotSvc := service.NewScreenshotService(
		repo, cache, store,
		cfg.S3PresignTTL,
		cfg.PageDefaultLimit, cfg.PageMaxLimit,
		logger,
	)
	statsSvc := service.NewStatsService(repo, logger)

	// 6. topologymetrics через адаптер pgxpool → *sql.DB
	if cfg.DephealthEnabled {
		pgDB := stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()

		dephealthSvc, dhErr := service.NewDephealthService(service.DephealthConfig{
			ServiceID:       "screenshot-archive",
			Group:           cfg.DephealthGroup,
			DB:              pgDB,
			PostgresURL:     cfg.PostgresURL(),
			StoreURL:        cfg.S3Endpoint,
			StoreHealthPath: cfg.S3HealthPath,
			CheckInterval:   cfg.DephealthCheckInterval,
		}, logger)
		if dhErr != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", dhErr.Error()),
			)
		} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			defer dephealthSvc.Stop()
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 7. Обработчики и HTTP-сервер
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool), store)
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		screenshotSvc,
		uploadSvc,
		statsSvc,
		cfg.UploadMaxBytes,
		logger,
	)

	srv := server.New(cfg, logger, apiHandler,
		middleware.RequestLogger(logger),
		middleware.MetricsMiddleware(),
	)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		return err
	}

	logger.Info("screenshot-archive остановлен")
	return nil
}
