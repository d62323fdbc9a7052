package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memory_game/internal/config"
	"memory_game/internal/db"
	httpServer "memory_game/internal/http"
	"memory_game/internal/http/handlers"
	"memory_game/internal/http/middleware"
	"memory_game/internal/logger"
	"memory_game/internal/repository"
	"memory_game/internal/service"
	"memory_game/internal/symbols"
	"memory_game/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret, cfg.SessionTokenTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Check{}

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		p, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database unavailable", "error", err)
		}
		pool = p
		defer pool.Close()
		checks["database"] = pool.Ping
	}

	rdb := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	middleware.SetRedisClient(rdb)

	source := &symbols.CachedSource{
		Next:   lettersSource(cfg, pool),
		Client: rdb,
		TTL:    cfg.LettersCacheTTL,
	}

	sessions := service.NewSessionService(source, service.SessionConfig{SessionTTL: cfg.SessionTTL})
	go sessions.RunCleanup(ctx, time.Minute)
	hub := ws.NewHub(sessions, cfg.SelectRatePerMinute)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(), middleware.CORS(cfg.AllowedOrigin))

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Config:   cfg,
		Sessions: sessions,
		Hub:      hub,
		Checks:   checks,
		Version:  version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "letters_source", cfg.LettersSource, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessions.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}

// lettersSource picks the vocabulary backend named by LETTERS_SOURCE.
func lettersSource(cfg *config.Config, pool *pgxpool.Pool) symbols.Source {
	switch cfg.LettersSource {
	case config.SourceHTTP:
		return symbols.NewHTTPSource(cfg.LettersURL)
	case config.SourcePostgres:
		return symbols.PostgresSource{Repo: repository.NewLettersRepository(pool)}
	default:
		return symbols.FileSource{Path: cfg.LettersPath}
	}
}

