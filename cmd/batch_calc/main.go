package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tradecalc/config"
	"tradecalc/internal/adapters/logger"
	"tradecalc/internal/adapters/sqlite"
	"tradecalc/internal/analytics"
	"tradecalc/internal/app"
	"tradecalc/internal/domain"
	"tradecalc/internal/ports"
	"tradecalc/internal/report"
	"tradecalc/internal/utils"
)

func main() {
	// Stop feeding the worker pool on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("batch_calc", flag.ContinueOnError)
	file := fs.String("file", "", "CSV file with signals (required)")
	out := fs.String("out", "", "Optional CSV file for the results")
	exit := fs.Float64("exit", 0, "Exit price applied to every signal (omit to evaluate targets only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer syncLogger(appLogger)

	// 2. Load signals
	signals, err := utils.ReadSignalsFromCSV(*file)
	if err != nil {
		return fmt.Errorf("failed to read signals from %s: %w", *file, err)
	}
	appLogger.Info(ctx, "Loaded signals", ports.Fields{"file": *file, "count": len(signals)})

	// 3. Initialize Repository and Service
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		return fmt.Errorf("failed to initialize database repository: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing database repository")
		}
	}()

	svc, err := app.NewCalculatorService(cfg, appLogger, repo)
	if err != nil {
		return fmt.Errorf("failed to initialize calculator service: %w", err)
	}

	// 4. Evaluate
	var exitPrice *float64
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "exit" {
			exitPrice = domain.Price(*exit)
		}
	})
	evals := svc.EvaluateSignals(ctx, signals, exitPrice)

	// 5. Report
	if err := report.WriteBatch(stdout, evals, analytics.Summarize(evals), cfg.CurrencySymbol); err != nil {
		return fmt.Errorf("failed to write batch report: %w", err)
	}

	if *out != "" {
		if err := utils.WriteEvaluationsToCSV(evals, *out); err != nil {
			return fmt.Errorf("failed to write results to %s: %w", *out, err)
		}
		appLogger.Info(ctx, "Results written", ports.Fields{"file": *out})
	}
	return nil
}

func syncLogger(l ports.Logger) {
	if s, ok := l.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
