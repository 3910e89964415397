// Package main provides the entry point for the ingestion and refit daemon.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/preference-engine/internal/config"
	"github.com/yourusername/preference-engine/internal/database"
	"github.com/yourusername/preference-engine/internal/datasource"
	"github.com/yourusername/preference-engine/internal/health"
	"github.com/yourusername/preference-engine/internal/logger"
	"github.com/yourusername/preference-engine/internal/metrics"
	"github.com/yourusername/preference-engine/internal/repository"
	"github.com/yourusername/preference-engine/internal/scheduler"
	"github.com/yourusername/preference-engine/internal/service"
	"github.com/yourusername/preference-engine/internal/thurstonian"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		once       = flag.Bool("once", false, "Run one ingestion pass and exit")
		source     = flag.String("source", "", "Restrict one-shot ingestion to a single source")
		startDate  = flag.String("start-date", "", "One-shot window start (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "One-shot window end (YYYY-MM-DD)")
	)
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logrus.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logrus.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Preference engine ingestion service starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.InitRegistry()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	sources := buildSources(cfg, appLog)
	ingestionSvc := service.NewIngestionService(sources, repos.Comparison, appLog, batchSize(cfg))

	estimator, err := thurstonian.NewEstimator(estimatorConfig(cfg))
	if err != nil {
		appLog.WithError(err).Fatal("Invalid estimator config")
	}
	estimationSvc := service.NewEstimationService(repos.Comparison, repos.FitRun, estimator, appLog)

	cacheTTL := time.Duration(cfg.Estimator.ParameterCacheTTLSeconds) * time.Second
	probabilitySvc := service.NewProbabilityService(repos.FitRun, cacheTTL, appLog)

	if *once {
		runOnce(ctx, ingestionSvc, appLog, *source, *startDate, *endDate)
		return
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Port:        cfg.Health.Port,
		Logger:      appLog,
	})
	healthServer.RegisterCheck("database", db.Ping)
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	sched := scheduler.NewScheduler(ingestionSvc, estimationSvc, probabilitySvc, appLog)
	if err := sched.ScheduleIngestion(cfg.Ingestion.Schedule.IngestIntervalMinutes); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule ingestion")
	}
	if err := sched.ScheduleRefit(cfg.Ingestion.Schedule.RefitCron); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule refit")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	healthServer.SetReady(true)

	appLog.WithField("next_run", sched.GetNextRun()).Info("Scheduler running")

	<-ctx.Done()
	appLog.Info("Shutdown signal received")

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Scheduler shutdown failed")
	}
	appLog.Info("Preference engine ingestion service stopped")
}

func runOnce(ctx context.Context, ingestionSvc *service.IngestionService, appLog *logrus.Logger, source, startDate, endDate string) {
	end := time.Now()
	start := end.Add(-7 * 24 * time.Hour)
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			appLog.Fatalf("Invalid start date: %v", err)
		}
		start = parsed
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			appLog.Fatalf("Invalid end date: %v", err)
		}
		end = parsed
	}

	if source != "" {
		m, err := ingestionSvc.IngestFromSource(ctx, source, start, end)
		if err != nil {
			appLog.WithError(err).Fatal("Ingestion failed")
		}
		appLog.Info(m.String())
		return
	}

	m, err := ingestionSvc.IngestAll(ctx, start, end)
	if err != nil {
		appLog.WithError(err).Fatal("Ingestion failed")
	}
	appLog.Info(m.String())
}

func buildSources(cfg *config.Config, appLog *logrus.Logger) []datasource.ComparisonSource {
	httpClient := datasource.NewRateLimitedHTTPClient(datasource.DefaultHTTPClientConfig(), appLog)
	factory := datasource.NewFactory(httpClient, appLog)

	sources := make([]datasource.ComparisonSource, 0, len(cfg.Ingestion.Sources))
	for _, sourceCfg := range cfg.Ingestion.Sources {
		source, err := factory.NewSource(sourceCfg)
		if err != nil {
			appLog.WithError(err).WithField("source", sourceCfg.Name).Fatal("Failed to build data source")
		}
		sources = append(sources, source)
	}
	return sources
}

func batchSize(cfg *config.Config) int {
	for _, source := range cfg.Ingestion.Sources {
		if source.BatchSize > 0 {
			return source.BatchSize
		}
	}
	return 100
}

func estimatorConfig(cfg *config.Config) thurstonian.Config {
	ec := thurstonian.DefaultConfig()
	ec.MuBound = cfg.Estimator.MuBound
	ec.LogSigmaMin = cfg.Estimator.LogSigmaMin
	ec.LogSigmaMax = cfg.Estimator.LogSigmaMax
	ec.MaxIterations = cfg.Estimator.MaxIterations
	ec.GradientTolerance = cfg.Estimator.GradientTolerance
	return ec
}
