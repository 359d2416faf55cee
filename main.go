package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/explore-events/internal/di"
	"github.com/prohmpiriya/explore-events/internal/metrics"
	"github.com/prohmpiriya/explore-events/internal/migrations"
	"github.com/prohmpiriya/explore-events/internal/service"
	"github.com/prohmpiriya/explore-events/internal/stats"
	"github.com/prohmpiriya/explore-events/pkg/config"
	"github.com/prohmpiriya/explore-events/pkg/database"
	"github.com/prohmpiriya/explore-events/pkg/kafka"
	"github.com/prohmpiriya/explore-events/pkg/logger"
	"github.com/prohmpiriya/explore-events/pkg/middleware"
	pkgredis "github.com/prohmpiriya/explore-events/pkg/redis"
	"github.com/prohmpiriya/explore-events/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting events service...", zap.String("version", cfg.App.Version))

	ctx := context.Background()

	// Initialize telemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn("Telemetry disabled", zap.Error(err))
	}
	if err := metrics.Init(); err != nil {
		appLog.Warn("Failed to register metrics", zap.Error(err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MinIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected", zap.Int32("max_conns", dbCfg.MaxConns))

	if cfg.Database.AutoMigrate {
		if err := migrate(dbCfg.URL()); err != nil {
			appLog.Fatal("Database migration failed", zap.Error(err))
		}
	}

	// Initialize Redis connection (optional)
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, &pkgredis.Config{
			Host:          cfg.Redis.Host,
			Port:          cfg.Redis.Port,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			MinIdleConns:  cfg.Redis.MinIdleConns,
			DialTimeout:   cfg.Redis.DialTimeout,
			ReadTimeout:   cfg.Redis.ReadTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
			MaxRetries:    3,
			RetryInterval: 500 * time.Millisecond,
			EnableTracing: cfg.OTel.Enabled,
		})
		if err != nil {
			appLog.Warn("Redis connection failed, running without cache and idempotency", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	// Initialize the statistics gateway
	gateway, closeGateway := newStatsGateway(ctx, cfg)
	defer closeGateway()

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:          db,
		Redis:       redisClient,
		CategoryTTL: cfg.Redis.CacheTTL,
		Stats:       gateway,
		ServiceConfig: &service.Config{
			AppName: cfg.Stats.AppName,
		},
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(cfg, container, redisClient)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		appLog.Info("Events service listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("Telemetry shutdown failed", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}

func migrate(databaseURL string) error {
	m, err := database.NewMigrator(migrations.FS, migrations.Dir, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	logger.Get().Info("Database schema up to date", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// newStatsGateway wires the collector client. Views are always queried over
// HTTP; hits go over HTTP or Kafka. The returned func releases the producer.
func newStatsGateway(ctx context.Context, cfg *config.Config) (stats.Gateway, func()) {
	client := stats.NewHTTPClient(cfg.Stats.ServerURL, stats.RetryPolicy(cfg.Stats.MaxRetries))
	gateway := stats.Gateway{HitRecorder: client, ViewCounter: client}

	if cfg.Stats.HitTransport != config.HitTransportKafka {
		return gateway, func() {}
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: cfg.Kafka.ClientID,
	})
	if err != nil {
		logger.Get().Warn("Kafka connection failed, recording hits over HTTP", zap.Error(err))
		return gateway, func() {}
	}
	logger.Get().Info("Recording hits through Kafka", zap.String("topic", cfg.Stats.HitTopic))

	gateway.HitRecorder = stats.NewKafkaHitRecorder(producer, cfg.Stats.HitTopic)
	return gateway, func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = producer.Flush(flushCtx)
		producer.Close()
	}
}

func setupRouter(cfg *config.Config, container *di.Container, redisClient *pkgredis.Client) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(telemetry.TracingMiddleware())
	router.Use(middleware.Logger(logger.Get()))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// Replay of POSTs carrying X-Idempotency-Key
	writes := []gin.HandlerFunc{}
	if cfg.Idempotency.Enabled && redisClient != nil {
		idempotencyConfig := middleware.DefaultIdempotencyConfig(redisClient.Client())
		idempotencyConfig.TTL = cfg.Idempotency.TTL
		writes = append(writes, middleware.Idempotency(idempotencyConfig))
	}

	users := router.Group("/users/:userId", writes...)
	{
		users.POST("/events", container.EventHandler.Create)
		users.GET("/events", container.EventHandler.List)
		users.GET("/events/:eventId", container.EventHandler.Get)
		users.PATCH("/events/:eventId", container.EventHandler.Update)

		users.GET("/events/:eventId/requests", container.RequestHandler.ListForEvent)
		users.PATCH("/events/:eventId/requests", container.RequestHandler.UpdateStatuses)

		users.POST("/events/:eventId/rating", container.RatingHandler.Add)
		users.DELETE("/events/:eventId/rating", container.RatingHandler.Delete)

		users.GET("/requests", container.RequestHandler.ListOwn)
		users.POST("/requests", container.RequestHandler.Create)
		users.PATCH("/requests/:requestId/cancel", container.RequestHandler.Cancel)
	}

	admin := router.Group("/admin")
	{
		admin.GET("/events", container.AdminHandler.Search)
		admin.PATCH("/events/:eventId", container.AdminHandler.Update)
	}

	public := router.Group("/events")
	{
		public.GET("", container.PublicHandler.Search)
		public.GET("/:id", container.PublicHandler.Get)
	}

	return router
}
