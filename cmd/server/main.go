package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/slotbook/backend/config"
	"github.com/slotbook/backend/internal/audit"
	"github.com/slotbook/backend/internal/auth"
	"github.com/slotbook/backend/internal/catalog"
	"github.com/slotbook/backend/internal/customers"
	"github.com/slotbook/backend/internal/exports"
	"github.com/slotbook/backend/internal/middleware"
	"github.com/slotbook/backend/internal/realtime"
	"github.com/slotbook/backend/internal/reservations"
	"github.com/slotbook/backend/internal/worker"
	"github.com/slotbook/backend/pkg/database"
	"github.com/slotbook/backend/pkg/queue"
	"github.com/slotbook/backend/pkg/redis"
	"github.com/slotbook/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kept as the interface type so a missing S3 config stays an untyped nil.
	var objects exports.ObjectStore
	if cfg.AWS.Enabled() {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Fatal("s3", zap.Error(err))
		}
		objects = s3Client
	} else {
		logger.Warn("AWS not configured, attendee exports disabled")
	}

	var verifierOpts []auth.Option
	if url := cfg.Auth.JWKS(); url != "" {
		keys, err := auth.NewJWKS(ctx, url)
		if err != nil {
			logger.Fatal("jwks", zap.Error(err))
		}
		verifierOpts = append(verifierOpts, auth.WithKeySource(keys))
		logger.Info("verifying asymmetric tokens", zap.String("jwks_url", url))
	}
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience, cfg.Auth.Issuer(), verifierOpts...)
	authRepo := auth.NewRepository(pool)
	customersRepo := customers.NewRepository(pool)
	auditRepo := audit.NewRepository(pool)
	catalogRepo := catalog.NewRepository(pool)
	reservationsRepo := reservations.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, pubsub, pubsub)
	availability := realtime.NewAvailabilityPublisher(hub, catalogRepo, logger)

	manager := reservations.NewManager(
		reservations.NewPostgresStore(pool),
		customersRepo,
		reservations.Sinks{availability, audit.NewQueueSink(jobQueue, logger)},
		logger,
	)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Run(ctx)
	}

	if cfg.Worker.Inline {
		processor := worker.NewProcessor(auditRepo, customersRepo, jobQueue, logger)
		go processor.Run(ctx)
		logger.Info("inline job worker started")
	}

	r := newRouter(routeDeps{
		logger:      logger,
		corsOrigins: cfg.Server.CORSAllowedOrigins,
		health: []healthCheck{
			{name: "postgres", check: pool.Ping},
			{name: "redis", check: rdb.Check},
		},
		verifier:     verifier,
		roles:        authRepo,
		limiter:      limiter,
		auth:         auth.NewHandler(),
		reservations: reservations.NewHandler(manager, reservationsRepo, logger),
		catalog:      catalog.NewHandler(catalogRepo, availability, logger),
		customers:    customers.NewHandler(jobQueue, logger),
		audit:        audit.NewHandler(auditRepo, logger),
		exports:      exports.NewHandler(reservationsRepo, objects, logger),
		ws:           realtime.ServeWs(hub, catalogRepo, logger),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
