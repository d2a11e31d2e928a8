package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/HyperCol/taipo-fire-php-re/common/database"
	"github.com/HyperCol/taipo-fire-php-re/common/logger"
	commonredis "github.com/HyperCol/taipo-fire-php-re/common/redis"
	"github.com/HyperCol/taipo-fire-php-re/internal/config"
	httpapi "github.com/HyperCol/taipo-fire-php-re/internal/http"
	"github.com/HyperCol/taipo-fire-php-re/internal/repository"
	"github.com/HyperCol/taipo-fire-php-re/internal/service"
	"github.com/HyperCol/taipo-fire-php-re/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "safeboard")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var checks []httpapi.HealthCheck

	// KV: Redis when reachable, otherwise process memory (sessions are lost on restart)
	var kv store.KV
	var redisClient *commonredis.Client
	if cfg.RedisEnabled {
		c := commonredis.NewRedisClient(&cfg.Redis)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := commonredis.Ping(pingCtx, c)
		cancel()
		if err == nil {
			redisClient = c
			kv = store.NewRedisKV(c)
			checks = append(checks, httpapi.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
				return commonredis.Ping(ctx, c)
			}})
			log.Info("Redis enabled", zap.String("addr", cfg.Redis.Addr))
		} else {
			_ = c.Close()
			log.Warn("Redis enabled but connection failed, falling back to memory", zap.Error(err))
		}
	}
	if kv == nil {
		kv = store.NewMemoryKV()
	}

	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			checks = append(checks, httpapi.HealthCheck{Name: "postgres", Check: d.PingContext})
			log.Info("DB enabled for safeboard")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}

	var (
		statusRepo repository.StatusRepository
		newsRepo   repository.NewsRepository
		usersRepo  repository.UsersRepository
	)
	if db != nil {
		statusRepo = repository.NewPostgresStatusRepository(db)
		newsRepo = repository.NewPostgresNewsRepository(db)
		usersRepo = repository.NewPostgresUsersRepository(db)
	} else {
		statusRepo = repository.NewMemoryStatusRepository()
		newsRepo = repository.NewMemoryNewsRepository()
		usersRepo = repository.NewMemoryUsersRepository()
	}

	auth := service.NewAuthService(usersRepo, service.NewKVSessionStore(kv), cfg.Session.TTL, log)
	status := service.NewStatusService(statusRepo, kv, cfg.Board.BlockCacheTTL, log)
	news := service.NewNewsService(newsRepo, cfg.Board.NewsDefaultSize, log)

	if cfg.Seed.Enabled {
		seedCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := auth.EnsureUser(seedCtx, cfg.Seed.Email, cfg.Seed.Password, cfg.Seed.Username, true); err != nil {
			log.Warn("Failed to seed admin account", zap.String("email", cfg.Seed.Email), zap.Error(err))
		} else {
			log.Info("Admin account ready", zap.String("email", cfg.Seed.Email))
		}
		cancel()
	}

	cookie := httpapi.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}
	router := httpapi.NewRouter(cfg.HTTP.CORSOrigin, log)
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(auth, cookie, log))
	router.RegisterBoardRoutes(httpapi.NewBoardHandler(status, auth, cookie, log))
	router.RegisterNewsRoutes(httpapi.NewNewsHandler(news, auth, cookie, log))
	router.RegisterHealthRoutes(checks...)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("Graceful shutdown failed", zap.Error(err))
	}
	_ = commonredis.Close(redisClient)
	_ = database.Close(db)
}
