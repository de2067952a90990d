package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"adstudio/internal/bootstrap"
	"adstudio/internal/http/handlers"
	httpapi "adstudio/internal/http/httpapi"
	"adstudio/internal/infra"
	"adstudio/internal/pipeline"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to connect database")
	}
	defer dbpool.Close()
	runner := infra.NewSQLRunner(dbpool, logger)

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("api: failed to connect redis")
		}
		defer redisClient.Close()
	}

	services, err := bootstrap.NewServices(cfg, runner, bootstrap.NewLocker(redisClient, logger), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure pipeline")
	}

	app := &handlers.App{
		Projects:    services.Projects,
		Settings:    services.Credentials,
		Batches:     services.Batch,
		Artifacts:   services.Store,
		EventBuffer: cfg.EventBuffer,
		Logger:      &logger,
	}
	if redisClient != nil {
		app.Queue = pipeline.NewQueue(redisClient)
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:                logger,
		AllowedOrigins:        cfg.CORSAllowedOrigins,
		BatchRateLimitPerHour: cfg.BatchRateLimitPerHour,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("port", cfg.Port).Str("output_root", services.Store.BasePath()).Msg("api: listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("api: http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: failed to shutdown server")
	}
	logger.Info().Msg("api: stopped")
}
