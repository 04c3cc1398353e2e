package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/config"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/db"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/handler"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/middleware"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/repository"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/router"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/service"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	middleware.InitLogger(cfg.LogLevel, "pulsefeed-attention")

	ctx := context.Background()

	// The wallet database is optional: without it the engine serves
	// local session state only.
	var dbPool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("database unavailable, running local-only: %v", err)
		} else {
			dbPool = pool
			defer dbPool.Close()
		}
	}

	redisStore := storage.NewRedisStore(cfg.RedisURL)
	defer redisStore.Close()

	progressSvc := service.NewProgressService(ctx, redisStore)

	var reporter service.AttentionReporter = service.NoopReporter{}
	if cfg.ReportEndpoint != "" {
		reporter = service.NewHTTPReporter(cfg.ReportEndpoint)
	}

	manager := service.NewSessionManager(service.SessionManagerConfig{
		Reporter: reporter,
		Repo:     repository.NewSessionRepo(dbPool),
	})
	defer manager.Close(ctx)

	handler.InitMetrics(dbPool, manager)

	accrualMgr := service.NewAccrualManager(service.AccrualConfig{}, service.NewWallScheduler(),
		func(videoID string, units float64) {
			progressSvc.AddRewardCredited(ctx, videoID, units)
			handler.Metrics.AccrualUnitsEmitted.Add(units)
		})
	defer accrualMgr.Close()

	app := fiber.New(fiber.Config{
		AppName:      "PulseFeed Attention API",
		ServerHeader: "PulseFeed",
	})

	router.Setup(app, &router.Handlers{
		Session:   handler.NewSessionHandler(manager, accrualMgr, repository.NewAccountRepo(dbPool)),
		Attention: handler.NewAttentionHandler(manager),
		Accrual:   handler.NewAccrualHandler(accrualMgr, manager, progressSvc),
		Progress:  handler.NewProgressHandler(progressSvc),
		Health:    handler.NewHealthHandler(dbPool, redisStore.Client()),
	}, cfg.CORSOrigins)

	log.Printf("attention engine starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	log.Fatal(app.Listen(":" + cfg.Port))
}
