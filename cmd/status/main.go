package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/preference-engine/internal/config"
	"github.com/yourusername/preference-engine/internal/database"
	"github.com/yourusername/preference-engine/internal/repository"
	"github.com/yourusername/preference-engine/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	logger     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(probabilityCmd)
	rootCmd.AddCommand(rankingCmd)
}

var rootCmd = &cobra.Command{
	Use:   "status",
	Short: "Inspect stored datasets and fit runs",
	Long:  `Displays comparison counts and the latest fitted parameters for every stored dataset.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		displayStatus()
	},
}

var probabilityCmd = &cobra.Command{
	Use:   "probability <dataset> <optionX> <optionY>",
	Short: "Query the win probability of optionX over optionY",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		svc := service.NewProbabilityService(repos.FitRun, time.Minute, logger)
		p, err := svc.WinProbability(ctx, args[0], args[1], args[2])
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		fmt.Printf("P(%s beats %s) = %.4f\n", args[1], args[2], p)
	},
}

var rankingCmd = &cobra.Command{
	Use:   "ranking <dataset>",
	Short: "Show options ranked by fitted mean utility",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		run, err := repos.FitRun.GetLatestByDataset(ctx, args[0])
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		ps, err := run.ParameterSet()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		fmt.Printf("Dataset %s (fitted %s)\n\n", args[0], run.FittedAt.Format(time.RFC3339))
		fmt.Printf("%-4s %-24s %10s %10s\n", "#", "option", "mu", "sigma")
		for i, option := range ps.RankedByMu() {
			p := ps[option]
			fmt.Printf("%-4d %-24s %10.4f %10.4f\n", i+1, option, p.Mu, p.Sigma)
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setupDependencies() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger = logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func displayStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Printf("Preference Engine Status (version %s, commit %s)\n\n", Version, GitCommit)

	datasets, err := repos.Comparison.ListDatasets(ctx)
	if err != nil {
		log.Fatalf("Error listing datasets: %v", err)
	}

	if len(datasets) == 0 {
		fmt.Println("No datasets stored.")
		return
	}

	fmt.Printf("%-24s %12s %8s %12s %12s %10s %s\n",
		"dataset", "comparisons", "options", "log-lik", "cross-ent", "converged", "fitted at")

	for _, dataset := range datasets {
		count, err := repos.Comparison.CountByDataset(ctx, dataset)
		if err != nil {
			log.Fatalf("Error counting comparisons for %s: %v", dataset, err)
		}

		run, err := repos.FitRun.GetLatestByDataset(ctx, dataset)
		if err != nil {
			fmt.Printf("%-24s %12d %8s %12s %12s %10s %s\n",
				dataset, count, "-", "-", "-", "-", "never fitted")
			continue
		}

		fmt.Printf("%-24s %12d %8d %12.4f %12.4f %10v %s\n",
			dataset, count, run.OptionCount, run.LogLikelihood, run.CrossEntropy,
			run.Converged, run.FittedAt.Format(time.RFC3339))
	}
}
