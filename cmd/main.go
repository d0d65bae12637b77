package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/satarknity/community_alerts/internal/config"
	"github.com/satarknity/community_alerts/internal/geocode"
	v1 "github.com/satarknity/community_alerts/internal/handler/http/v1"
	"github.com/satarknity/community_alerts/internal/identity"
	"github.com/satarknity/community_alerts/internal/repository"
	"github.com/satarknity/community_alerts/internal/service"
	"github.com/satarknity/community_alerts/internal/storage"
	"github.com/satarknity/community_alerts/internal/webhook"
	"github.com/satarknity/community_alerts/pkg/logger"
	"github.com/satarknity/community_alerts/pkg/postgres"
	redisclient "github.com/satarknity/community_alerts/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/satarknity/community_alerts/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Satarknity Community Alerts API
// @version 1.0
// @description Community incident reporting service: authentication, report submission with media attachments and a reverse-chronological feed.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Отсутствие учетных данных внешнего бэкенда не валит процесс:
	// репортинг деградирует до отключенного состояния с предупреждением
	if !cfg.BackendConfigured() {
		log.Warn("SUPABASE_URL and SUPABASE_ANON_KEY are not set: community reporting is disabled")
	}

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Клиенты внешних сервисов конструируются явно и передаются сервисам
	identityClient := identity.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	storageClient := storage.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.MediaBucket)
	geocoderClient := geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderAPIKey)

	// Инициализация издателя событий и воркера вебхуков
	eventPublisher := webhook.NewRedisEventPublisher(redisClient)
	webhookWorker := webhook.NewWorker(redisClient, log, cfg)
	webhookWorker.Start(ctx)

	// Инициализация репозиториев
	incidentRepo := repository.NewIncidentRepository(dbpool, redisClient, cfg.FeedCacheTTL)

	// Инициализация сервисов
	authService := service.NewAuthService(identityClient, log)
	incidentService := service.NewIncidentService(incidentRepo, storageClient, identityClient, geocoderClient, eventPublisher, log)

	// Инициализация хэндлеров
	handler := v1.NewHandler(authService, incidentService, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
