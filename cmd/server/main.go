package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/api"
	"github.com/d60-Lab/gin-blog/internal/api/handler"
	"github.com/d60-Lab/gin-blog/internal/cache"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/database"
	"github.com/d60-Lab/gin-blog/pkg/logger"
	"github.com/d60-Lab/gin-blog/pkg/tracing"
)

// @title gin-blog API
// @version 1.0
// @description Multi-user blog with private-post access requests.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Encoding); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Fatal("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	if cfg.Trace.Enabled {
		shutdown, err := tracing.Init(ctx, cfg)
		if err != nil {
			logger.Fatal("tracing init failed", zap.Error(err))
		}
		defer func() { _ = shutdown(ctx) }()
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	var fanCache *cache.FollowerCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, running without follower cache", zap.Error(err))
		} else {
			fanCache = cache.NewFollowerCache(rdb, cfg.Redis.CacheTTL)
		}
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	accessRepo := repository.NewAccessRequestRepository(db)
	inboxRepo := repository.NewInboxRepository(db)

	replicator := service.NewFanReplicator(fanRepo, 0)
	stopReplicator := replicator.Start(4)

	fanout := service.NewFanoutWorker(db, fanRepo, inboxRepo,
		cfg.Feed.Workers, cfg.Feed.BatchSize, cfg.Feed.ClaimLimit, cfg.Feed.PollInterval)
	stopFanout := fanout.Start()

	h := handler.New(
		service.NewAuthService(userRepo, cfg.JWT),
		service.NewPostService(db, postRepo, tagRepo),
		service.NewCommentService(commentRepo, postRepo),
		service.NewAccessService(accessRepo, postRepo),
		service.NewRelationshipService(followRepo, fanRepo, replicator, fanCache),
		service.NewFeedService(inboxRepo),
	)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewRouter(cfg, h),
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	_ = stopFanout(shutdownCtx)
	_ = stopReplicator(shutdownCtx)
}
