// Package main provides the entry point for the fit CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/preference-engine/internal/config"
	"github.com/yourusername/preference-engine/internal/database"
	"github.com/yourusername/preference-engine/internal/datasource"
	"github.com/yourusername/preference-engine/internal/logger"
	"github.com/yourusername/preference-engine/internal/models"
	"github.com/yourusername/preference-engine/internal/repository"
	"github.com/yourusername/preference-engine/internal/service"
	"github.com/yourusername/preference-engine/internal/thurstonian"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		dataset    = flag.String("dataset", "", "Dataset name to fit (required)")
		csvPath    = flag.String("csv", "", "Fit directly from a CSV file instead of the database")
		store      = flag.Bool("store", false, "Store the fit run in the database")
	)
	flag.Parse()

	if *dataset == "" {
		fmt.Fprintln(os.Stderr, "Usage: fit -dataset <name> [-csv <path>] [-store]")
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := loadConfigWithSecrets(*configPath)
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)

	estimator, err := thurstonian.NewEstimator(estimatorConfig(cfg))
	if err != nil {
		appLog.Fatalf("Invalid estimator config: %v", err)
	}

	var run *models.FitRun
	if *csvPath != "" {
		run = fitFromCSV(ctx, cfg, estimator, appLog, *dataset, *csvPath, *store)
	} else {
		run = fitFromDatabase(ctx, cfg, estimator, appLog, *dataset)
	}

	printRun(run)
}

func loadConfigWithSecrets(path string) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
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
	return cfg
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

func fitFromDatabase(ctx context.Context, cfg *config.Config, estimator *thurstonian.Estimator, appLog *logrus.Logger, dataset string) *models.FitRun {
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.Fatalf("Failed to initialize repositories: %v", err)
	}

	svc := service.NewEstimationService(repos.Comparison, repos.FitRun, estimator, appLog)
	run, err := svc.FitDataset(ctx, dataset)
	if err != nil {
		appLog.Fatalf("Fit failed: %v", err)
	}
	return run
}

func fitFromCSV(ctx context.Context, cfg *config.Config, estimator *thurstonian.Estimator, appLog *logrus.Logger, dataset, csvPath string, store bool) *models.FitRun {
	source := datasource.NewCSVSource("cli", dataset, csvPath, true, appLog)

	// Wide open window so every record in the file is included
	records, err := source.FetchComparisons(ctx, time.Time{}, time.Now().Add(24*time.Hour))
	if err != nil {
		appLog.Fatalf("Failed to read CSV: %v", err)
	}

	comparisons := make([]*models.Comparison, 0, len(records))
	for _, r := range records {
		comparisons = append(comparisons, &models.Comparison{
			DatasetName: dataset,
			OptionA:     r.OptionA,
			OptionB:     r.OptionB,
			Chosen:      r.Chosen,
			ObservedAt:  r.ObservedAt,
		})
	}

	svc := service.NewEstimationService(nil, nil, estimator, appLog)
	run, err := svc.FitComparisons(ctx, dataset, comparisons)
	if err != nil {
		appLog.Fatalf("Fit failed: %v", err)
	}

	if store {
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			appLog.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		repos, err := repository.NewRepositories(db)
		if err != nil {
			appLog.Fatalf("Failed to initialize repositories: %v", err)
		}
		if err := repos.FitRun.Create(ctx, run); err != nil {
			appLog.Fatalf("Failed to store fit run: %v", err)
		}
	}

	return run
}

func printRun(run *models.FitRun) {
	ps, err := run.ParameterSet()
	if err != nil {
		logrus.Fatalf("Failed to decode parameters: %v", err)
	}

	fmt.Printf("Dataset:        %s\n", run.DatasetName)
	fmt.Printf("Comparisons:    %d\n", run.ComparisonCount)
	fmt.Printf("Options:        %d\n", run.OptionCount)
	fmt.Printf("Log-likelihood: %.4f\n", run.LogLikelihood)
	fmt.Printf("Cross-entropy:  %.4f\n", run.CrossEntropy)
	fmt.Printf("Converged:      %v\n", run.Converged)
	fmt.Println()
	fmt.Printf("%-4s %-24s %10s %10s\n", "#", "option", "mu", "sigma")
	for i, option := range ps.RankedByMu() {
		p := ps[option]
		fmt.Printf("%-4d %-24s %10.4f %10.4f\n", i+1, option, p.Mu, p.Sigma)
	}
}
