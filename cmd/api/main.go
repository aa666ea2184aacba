package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/sajor2000/labmanager-sub005/internal/compression"
	"github.com/sajor2000/labmanager-sub005/internal/config"
	"github.com/sajor2000/labmanager-sub005/internal/database"
	"github.com/sajor2000/labmanager-sub005/internal/database/migration"
	handlers "github.com/sajor2000/labmanager-sub005/internal/http/handler"
	"github.com/sajor2000/labmanager-sub005/internal/http/middleware"
	"github.com/sajor2000/labmanager-sub005/internal/otel"
	"github.com/sajor2000/labmanager-sub005/internal/quota"
	"github.com/sajor2000/labmanager-sub005/internal/repository/postgres"
	"github.com/sajor2000/labmanager-sub005/internal/service"
	"github.com/sajor2000/labmanager-sub005/internal/storage"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	codec, err := compression.NewCodec(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize compression codec")
	}

	docRepo := postgres.NewDocumentPostgres(db)
	labRepo := postgres.NewLabPostgres(db)
	ledger := quota.NewLedger(labRepo, log)

	retention := time.Duration(cfg.Maintenance.RetentionDays) * 24 * time.Hour
	docSvc := service.NewDocumentService(objStore, docRepo, labRepo, ledger, codec, retention, log)
	statsSvc := service.NewStatsService(labRepo, docRepo)

	if cfg.Maintenance.ScheduleEnabled {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.Maintenance.PurgeSchedule, func() {
			removed, err := docSvc.Purge(context.Background())
			if err != nil {
				log.Error().Err(err).Msg("scheduled purge failed")
				return
			}
			log.Info().Int("removed", removed).Msg("scheduled purge complete")
		}); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Maintenance.PurgeSchedule).Msg("invalid purge schedule")
		}
		if _, err := scheduler.AddFunc(cfg.Maintenance.ReconcileSchedule, func() {
			results, err := docSvc.Reconcile(context.Background(), "")
			if err != nil {
				log.Error().Err(err).Msg("scheduled reconcile failed")
				return
			}
			corrected := 0
			for _, r := range results {
				if r.Drift != 0 {
					corrected++
				}
			}
			log.Info().Int("labs", len(results)).Int("corrected", corrected).Msg("scheduled reconcile complete")
		}); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Maintenance.ReconcileSchedule).Msg("invalid reconcile schedule")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    32 << 20,
	})

	promMw, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMw.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, docSvc, statsSvc, log)

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
