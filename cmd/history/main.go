package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"tradecalc/config"
	"tradecalc/internal/adapters/logger"
	"tradecalc/internal/adapters/sqlite"
	"tradecalc/internal/app"
	"tradecalc/internal/domain"
	"tradecalc/internal/report"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "Number of calculations to list")
	symbol := fs.String("symbol", "", "Only list calculations for this symbol")
	id := fs.Int64("id", 0, "Show the full report of one calculation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	appLogger, err := logger.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		return fmt.Errorf("failed to initialize database repository: %w", err)
	}
	defer repo.Close()

	svc, err := app.NewCalculatorService(cfg, appLogger, repo)
	if err != nil {
		return fmt.Errorf("failed to initialize calculator service: %w", err)
	}

	if *id != 0 {
		calc, err := svc.Calculation(ctx, *id)
		if err != nil {
			return err
		}
		return report.WriteCalculation(stdout, calc, cfg.CurrencySymbol)
	}

	var calcs []*domain.Calculation
	if *symbol != "" {
		calcs, err = svc.SymbolHistory(ctx, strings.ToUpper(*symbol), *limit)
	} else {
		calcs, err = svc.History(ctx, *limit)
	}
	if err != nil {
		return err
	}
	if len(calcs) == 0 {
		_, err := fmt.Fprintln(stdout, "No calculations stored yet.")
		return err
	}
	return report.WriteHistory(stdout, calcs, cfg.CurrencySymbol)
}
